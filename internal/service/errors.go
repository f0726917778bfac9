package service

import "errors"

// 服务层错误定义，handler 层统一映射为响应码
var (
	ErrNotFound           = errors.New("记录不存在")
	ErrInvalidCredentials = errors.New("账号或密码错误")
	ErrInvalidPassword    = errors.New("密码错误")
	ErrEmailExists        = errors.New("邮箱已注册")

	ErrCouponInvalid      = errors.New("优惠券无效")
	ErrCouponNotFound     = errors.New("优惠券不存在")
	ErrCouponInactive     = errors.New("优惠券已停用")
	ErrCouponNotStarted   = errors.New("优惠券尚未生效")
	ErrCouponExpired      = errors.New("优惠券已过期")
	ErrCouponMinAmount    = errors.New("未达到优惠券使用门槛")
	ErrCouponUsageLimit   = errors.New("优惠券已达使用上限")
	ErrCouponPerUserLimit = errors.New("已达到个人使用上限")
	ErrCouponCodeExists   = errors.New("优惠码已存在")
	ErrCouponInUse        = errors.New("优惠券已有使用记录，无法删除")

	ErrProductNotAvailable  = errors.New("菜品不可购买")
	ErrProductSlugExists    = errors.New("菜品标识已存在")
	ErrProductOptionInvalid = errors.New("菜品规格选项无效")
	ErrStockInsufficient    = errors.New("菜品库存不足")

	ErrCategoryNotFound   = errors.New("分类不存在")
	ErrCategorySlugExists = errors.New("分类标识已存在")
	ErrCategoryInUse      = errors.New("分类下仍有菜品，无法删除")

	ErrCartEmpty = errors.New("购物车为空")

	ErrInvalidOrderItem      = errors.New("订单项无效")
	ErrMissingPaymentMethod  = errors.New("缺少支付方式")
	ErrInvalidOrderAmount    = errors.New("订单金额无效")
	ErrOrderNotFound         = errors.New("订单不存在")
	ErrOrderFetchFailed      = errors.New("获取订单失败")
	ErrOrderCreateFailed     = errors.New("创建订单失败")
	ErrOrderUpdateFailed     = errors.New("更新订单失败")
	ErrOrderCancelNotAllowed = errors.New("当前状态不允许取消")
	ErrOrderStatusInvalid    = errors.New("订单状态流转不合法")
	ErrOrderNotTerminal      = errors.New("订单未进入终态，无法归档")
	ErrForbidden             = errors.New("无权操作")

	ErrStoreUnavailable = errors.New("存储服务不可用")
	ErrQueueUnavailable = errors.New("队列服务不可用")
)

package constants

// 订单状态
const (
	OrderStatusPending        = "pending"          // 待确认
	OrderStatusConfirmed      = "confirmed"        // 已确认
	OrderStatusPreparing      = "preparing"        // 备餐中
	OrderStatusReady          = "ready"            // 待取餐/待配送
	OrderStatusOutForDelivery = "out_for_delivery" // 配送中
	OrderStatusDelivered      = "delivered"        // 已送达（终态）
	OrderStatusCancelled      = "cancelled"        // 已取消（终态）
)

// 支付状态（仅标记位，不接入支付网关）
const (
	PaymentStatusUnpaid = "unpaid" // 未支付
	PaymentStatusPaid   = "paid"   // 已支付
)

// 用户状态
const (
	UserStatusActive   = "active"   // 正常
	UserStatusDisabled = "disabled" // 禁用
)

// 优惠券类型
const (
	CouponTypePercentage = "percentage" // 百分比折扣
	CouponTypeFixed      = "fixed"      // 固定金额折扣
)

// TaxRatePercent 订单税率（百分比，固定策略常量，不随商品或地区变化）
const TaxRatePercent = 8

// OrderNoPrefix 订单编号前缀
const OrderNoPrefix = "ORD-"

// 订单状态流水的操作者
const (
	StatusActorSystem = "system" // 系统自动写入
)

// 订单状态流水备注
const (
	StatusNoteOrderReceived = "order received" // 下单成功
)

// 异步任务名称
const (
	TaskOrderStatusNotify = "order:status_notify" // 订单状态变更通知
)

// QueueDefault 默认队列名称
const QueueDefault = "default"

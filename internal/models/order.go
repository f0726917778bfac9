package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo        string         `gorm:"uniqueIndex;not null" json:"order_no"`                         // 订单编号（ORD-XXXXXX）
	UserID         uint           `gorm:"index;not null" json:"user_id,omitempty"`                      // 用户ID（游客订单为 0）
	CustomerName   string         `gorm:"not null" json:"customer_name"`                                // 顾客姓名
	CustomerPhone  string         `gorm:"type:varchar(40)" json:"customer_phone,omitempty"`             // 顾客电话
	CustomerEmail  string         `gorm:"index" json:"customer_email,omitempty"`                        // 顾客邮箱
	Status         string         `gorm:"index;not null" json:"status"`                                 // 订单状态
	PaymentMethod  string         `gorm:"type:varchar(40);not null;default:''" json:"payment_method"`   // 支付方式（cash/card/...）
	PaymentStatus  string         `gorm:"index;not null;default:'unpaid'" json:"payment_status"`        // 支付状态
	Subtotal       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`        // 商品小计
	TaxAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`      // 税费
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	TotalAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`    // 实付金额
	CouponID       *uint          `gorm:"index" json:"coupon_id,omitempty"`                             // 优惠券ID
	CouponCode     string         `gorm:"index" json:"coupon_code,omitempty"`                           // 优惠码快照
	DeliveryType   string         `gorm:"not null;default:'pickup'" json:"delivery_type"`               // 配送方式（pickup/delivery）
	DeliveryAddr   string         `gorm:"type:text" json:"delivery_address,omitempty"`                  // 配送地址
	Note           string         `gorm:"type:text" json:"note,omitempty"`                              // 备注
	ClientIP       string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`                  // 下单客户端IP
	EstimatedAt    *time.Time     `gorm:"column:estimated_delivery_at" json:"estimated_delivery_at"`    // 预计送达时间
	CourierLat     *float64       `gorm:"type:decimal(10,7)" json:"courier_lat,omitempty"`              // 骑手纬度
	CourierLng     *float64       `gorm:"type:decimal(10,7)" json:"courier_lng,omitempty"`              // 骑手经度
	CanceledAt     *time.Time     `gorm:"index" json:"canceled_at"`                                     // 取消时间
	CanceledBy     string         `gorm:"type:varchar(64)" json:"canceled_by,omitempty"`                // 取消操作者
	CancelReason   string         `gorm:"type:text" json:"cancel_reason,omitempty"`                     // 取消原因
	DeliveredAt    *time.Time     `gorm:"index" json:"delivered_at"`                                    // 送达时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间

	Items   []OrderItem          `gorm:"foreignKey:OrderID" json:"items,omitempty"`   // 订单项
	History []OrderStatusHistory `gorm:"foreignKey:OrderID" json:"history,omitempty"` // 状态流转记录
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

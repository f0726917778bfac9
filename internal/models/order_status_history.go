package models

import (
	"time"
)

// OrderStatusHistory 订单状态流转记录
type OrderStatusHistory struct {
	ID         uint      `gorm:"primarykey" json:"id"`                            // 主键
	OrderID    uint      `gorm:"index;not null" json:"order_id"`                  // 订单ID
	FromStatus string    `gorm:"not null" json:"from_status"`                     // 原状态（创建时为空）
	ToStatus   string    `gorm:"not null" json:"to_status"`                       // 新状态
	Actor      string    `gorm:"not null;default:''" json:"actor"`                // 操作者（system / admin:<id> / user:<id>）
	Note       string    `gorm:"type:text" json:"note,omitempty"`                 // 备注
	CourierLat *float64  `gorm:"type:decimal(10,7)" json:"courier_lat,omitempty"` // 变更时骑手纬度
	CourierLng *float64  `gorm:"type:decimal(10,7)" json:"courier_lng,omitempty"` // 变更时骑手经度
	CreatedAt  time.Time `gorm:"index;not null" json:"created_at"`                // 变更时间
}

// TableName 指定表名
func (OrderStatusHistory) TableName() string {
	return "order_status_histories"
}

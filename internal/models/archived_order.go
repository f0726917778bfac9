package models

import (
	"time"
)

// ArchivedOrder 历史订单归档表（终态订单快照）
type ArchivedOrder struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                      // 主键
	OrderID     uint      `gorm:"uniqueIndex;not null" json:"order_id"`                      // 原订单ID
	OrderNo     string    `gorm:"uniqueIndex;not null" json:"order_no"`                      // 原订单编号
	UserID      uint      `gorm:"index" json:"user_id,omitempty"`                            // 用户ID
	Status      string    `gorm:"index;not null" json:"status"`                              // 归档时的终态
	TotalAmount Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"` // 实付金额
	Snapshot    JSON      `gorm:"type:json;not null" json:"snapshot"`                        // 订单完整快照（含订单项与流转记录）
	OrderedAt   time.Time `gorm:"index;not null" json:"ordered_at"`                          // 原下单时间
	ArchivedAt  time.Time `gorm:"index;not null" json:"archived_at"`                         // 归档时间
}

// TableName 指定表名
func (ArchivedOrder) TableName() string {
	return "archived_orders"
}

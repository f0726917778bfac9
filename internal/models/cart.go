package models

import (
	"time"

	"gorm.io/gorm"
)

// Cart 购物车聚合根，承载整车级状态（当前为已应用的优惠码）
type Cart struct {
	ID         uint           `gorm:"primarykey" json:"id"`                // 主键
	UserID     uint           `gorm:"uniqueIndex;not null" json:"user_id"` // 用户ID
	CouponCode string         `gorm:"index" json:"coupon_code,omitempty"`  // 已应用的优惠码
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`             // 创建时间
	UpdatedAt  time.Time      `gorm:"index" json:"updated_at"`             // 更新时间
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`                      // 软删除时间
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// CartItem 购物车项
// 同一菜品不同规格选项视为不同购物车行，CartKey 由菜品ID与规格选项派生
type CartItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                   // 主键
	UserID    uint           `gorm:"not null;uniqueIndex:idx_cart_user_key" json:"user_id"`  // 用户ID
	CartKey   string         `gorm:"not null;uniqueIndex:idx_cart_user_key" json:"cart_key"` // 购物车行键（菜品ID+规格）
	ProductID uint           `gorm:"index;not null" json:"product_id"`                       // 菜品ID
	Quantity  int            `gorm:"not null" json:"quantity"`                               // 数量
	Options   JSON           `gorm:"type:json" json:"options,omitempty"`                     // 规格选项（key -> value）
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`                                // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                         // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联菜品
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

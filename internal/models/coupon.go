package models

import (
	"time"

	"gorm.io/gorm"
)

// Coupon 优惠券
type Coupon struct {
	ID                    uint           `gorm:"primarykey" json:"id"`                                           // 主键
	Name                  string         `gorm:"not null" json:"name"`                                           // 优惠券名称
	Code                  string         `gorm:"uniqueIndex;not null" json:"code"`                               // 优惠码（统一大写存储）
	Type                  string         `gorm:"not null" json:"type"`                                           // 类型（percentage/fixed）
	Value                 Money          `gorm:"type:decimal(20,2);not null" json:"value"`                       // 数值（百分比或固定金额）
	MinOrderAmount        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_order_amount"`  // 使用门槛（0 表示无门槛）
	MaxDiscount           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount"`      // 百分比折扣封顶金额（0 表示不封顶）
	UsageLimit            int            `gorm:"not null;default:0" json:"usage_limit"`                          // 总使用上限（0 表示不限制）
	UsedCount             int            `gorm:"not null;default:0" json:"used_count"`                           // 已使用次数
	PerUserLimit          int            `gorm:"not null;default:0" json:"per_user_limit"`                       // 每人使用上限（0 表示不限制）
	ValidFrom             *time.Time     `gorm:"index" json:"valid_from"`                                        // 生效时间
	ValidUntil            *time.Time     `gorm:"index" json:"valid_until"`                                       // 失效时间
	IsActive              bool           `gorm:"not null;default:true" json:"is_active"`                         // 是否启用
	ApplicableProductIDs  UintArray      `gorm:"type:json" json:"applicable_product_ids"`                        // 适用商品集合（仅存储，校验不启用）
	ApplicableCategoryIDs UintArray      `gorm:"type:json" json:"applicable_category_ids"`                       // 适用分类集合（仅存储，校验不启用）
	Description           string         `gorm:"type:text" json:"description"`                                   // 描述
	CreatedAt             time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt             time.Time      `gorm:"index" json:"updated_at"`                                        // 更新时间
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间
}

// TableName 指定表名
func (Coupon) TableName() string {
	return "coupons"
}

package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// OptionChoice 规格选项的候选值
type OptionChoice struct {
	Value string `json:"value"` // 选项值（写入订单快照）
	Label string `json:"label"` // 展示名称
}

// ProductOption 商品规格选项（如 size / spice-level）
type ProductOption struct {
	Key     string         `json:"key"`  // 选项键
	Name    string         `json:"name"` // 展示名称
	Choices []OptionChoice `json:"choices"`
}

// OptionList 规格选项列表（JSON 存储）
type OptionList []ProductOption

// Value 实现 driver.Valuer 接口
func (o OptionList) Value() (driver.Value, error) {
	if o == nil {
		return nil, nil
	}
	return json.Marshal(o)
}

// Scan 实现 sql.Scanner 接口
func (o *OptionList) Scan(value interface{}) error {
	if value == nil {
		*o = OptionList{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, o)
}

// Product 菜品表
type Product struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                      // 主键
	Slug            string         `gorm:"uniqueIndex;not null" json:"slug"`                          // 唯一标识
	Name            string         `gorm:"not null" json:"name"`                                      // 菜品名称
	Description     string         `gorm:"type:text" json:"description"`                              // 菜品描述
	PriceAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price_amount"` // 售价
	OriginalPrice   *Money         `gorm:"type:decimal(20,2)" json:"original_price,omitempty"`        // 原价（可选，用于展示折扣）
	DiscountPercent int            `gorm:"not null;default:0" json:"discount_percent"`                // 折扣百分比（0-100，由原价派生）
	CategoryIDs     UintArray      `gorm:"type:json" json:"category_ids"`                             // 所属分类集合（规范多分类字段）
	Tags            StringArray    `gorm:"type:json" json:"tags"`                                     // 标签数组
	Images          StringArray    `gorm:"type:json" json:"images"`                                   // 图片数组
	Options         OptionList     `gorm:"type:json" json:"options"`                                  // 规格选项
	Stock           *int           `gorm:"default:null" json:"stock"`                                 // 库存（nil 表示不限量）
	IsActive        bool           `gorm:"default:true;index" json:"is_active"`                       // 是否上架
	SortOrder       int            `gorm:"default:0;index" json:"sort_order"`                         // 排序权重
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                                // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                            // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// PrimaryCategoryID 兼容旧的单分类访问方式，返回首个分类 ID
func (p *Product) PrimaryCategoryID() uint {
	if p == nil || len(p.CategoryIDs) == 0 {
		return 0
	}
	return p.CategoryIDs[0]
}

// FindOption 根据键查找规格选项
func (p *Product) FindOption(key string) *ProductOption {
	if p == nil {
		return nil
	}
	for i := range p.Options {
		if p.Options[i].Key == key {
			return &p.Options[i]
		}
	}
	return nil
}

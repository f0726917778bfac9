package repository

import "time"

// ProductListFilter 查询菜品列表的过滤条件
type ProductListFilter struct {
	Page       int
	PageSize   int
	CategoryID uint
	Search     string
	OnlyActive bool
}

// CategoryListFilter 查询分类列表的过滤条件
type CategoryListFilter struct {
	Page       int
	PageSize   int
	OnlyActive bool
}

// CouponListFilter 查询优惠券列表的过滤条件
type CouponListFilter struct {
	Page     int
	PageSize int
	Code     string
	Type     string
	IsActive *bool
}

// CouponUsageListFilter 查询优惠券使用记录列表的过滤条件
type CouponUsageListFilter struct {
	Page     int
	PageSize int
	CouponID uint
	UserID   uint
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ArchivedOrderListFilter 查询归档订单列表的过滤条件
type ArchivedOrderListFilter struct {
	Page         int
	PageSize     int
	UserID       uint
	Status       string
	OrderNo      string
	ArchivedFrom *time.Time
	ArchivedTo   *time.Time
}

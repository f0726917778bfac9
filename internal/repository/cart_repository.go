package repository

import (
	"errors"
	"time"

	"github.com/bistro-next/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	ListByUser(userID uint) ([]models.CartItem, error)
	GetByUserAndKey(userID uint, cartKey string) (*models.CartItem, error)
	Upsert(item *models.CartItem) error
	DeleteByUserAndKey(userID uint, cartKey string) error
	ClearByUser(userID uint) error
	GetCart(userID uint) (*models.Cart, error)
	SetCartCoupon(userID uint, code string) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

// ListByUser 获取用户购物车项
func (r *GormCartRepository) ListByUser(userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Preload("Product").Where("user_id = ?", userID).Order("updated_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetByUserAndKey 获取购物车行
func (r *GormCartRepository) GetByUserAndKey(userID uint, cartKey string) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.Where("user_id = ? AND cart_key = ?", userID, cartKey).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Upsert 添加或更新购物车行
func (r *GormCartRepository) Upsert(item *models.CartItem) error {
	if item == nil {
		return nil
	}
	var existing models.CartItem
	err := r.db.Where("user_id = ? AND cart_key = ?", item.UserID, item.CartKey).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(item).Error
	}
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"quantity": item.Quantity,
		"options":  item.Options,
	}
	return r.db.Model(&existing).Updates(updates).Error
}

// DeleteByUserAndKey 删除购物车行
func (r *GormCartRepository) DeleteByUserAndKey(userID uint, cartKey string) error {
	return r.db.Where("user_id = ? AND cart_key = ?", userID, cartKey).Delete(&models.CartItem{}).Error
}

// ClearByUser 清空购物车，整车已应用的优惠码一并失效
func (r *GormCartRepository) ClearByUser(userID uint) error {
	if err := r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return r.db.Where("user_id = ?", userID).Delete(&models.Cart{}).Error
}

// GetCart 获取购物车聚合根，不存在返回 nil
func (r *GormCartRepository) GetCart(userID uint) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cart, nil
}

// SetCartCoupon 设置整车优惠码，空串表示移除
func (r *GormCartRepository) SetCartCoupon(userID uint, code string) error {
	cart, err := r.GetCart(userID)
	if err != nil {
		return err
	}
	now := time.Now()
	if cart == nil {
		if code == "" {
			return nil
		}
		return r.db.Create(&models.Cart{
			UserID:     userID,
			CouponCode: code,
			CreatedAt:  now,
			UpdatedAt:  now,
		}).Error
	}
	return r.db.Model(cart).Updates(map[string]interface{}{
		"coupon_code": code,
		"updated_at":  now,
	}).Error
}

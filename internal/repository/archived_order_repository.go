package repository

import (
	"errors"

	"github.com/bistro-next/internal/models"

	"gorm.io/gorm"
)

// ArchivedOrderRepository 归档订单数据访问接口
type ArchivedOrderRepository interface {
	Create(archived *models.ArchivedOrder) error
	GetByOrderNo(orderNo string) (*models.ArchivedOrder, error)
	List(filter ArchivedOrderListFilter) ([]models.ArchivedOrder, int64, error)
	WithTx(tx *gorm.DB) *GormArchivedOrderRepository
}

// GormArchivedOrderRepository GORM 实现
type GormArchivedOrderRepository struct {
	db *gorm.DB
}

// NewArchivedOrderRepository 创建归档订单仓库
func NewArchivedOrderRepository(db *gorm.DB) *GormArchivedOrderRepository {
	return &GormArchivedOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormArchivedOrderRepository) WithTx(tx *gorm.DB) *GormArchivedOrderRepository {
	if tx == nil {
		return r
	}
	return &GormArchivedOrderRepository{db: tx}
}

// Create 写入归档记录
func (r *GormArchivedOrderRepository) Create(archived *models.ArchivedOrder) error {
	return r.db.Create(archived).Error
}

// GetByOrderNo 根据原订单编号获取归档记录
func (r *GormArchivedOrderRepository) GetByOrderNo(orderNo string) (*models.ArchivedOrder, error) {
	var archived models.ArchivedOrder
	if err := r.db.Where("order_no = ?", orderNo).First(&archived).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &archived, nil
}

// List 获取归档订单列表
func (r *GormArchivedOrderRepository) List(filter ArchivedOrderListFilter) ([]models.ArchivedOrder, int64, error) {
	query := r.db.Model(&models.ArchivedOrder{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	if filter.ArchivedFrom != nil {
		query = query.Where("archived_at >= ?", *filter.ArchivedFrom)
	}
	if filter.ArchivedTo != nil {
		query = query.Where("archived_at <= ?", *filter.ArchivedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var archived []models.ArchivedOrder
	if err := query.Order("id desc").Find(&archived).Error; err != nil {
		return nil, 0, err
	}
	return archived, total, nil
}

package service

import (
	"strings"
	"time"

	"github.com/bistro-next/internal/constants"
	"github.com/bistro-next/internal/models"
	"github.com/bistro-next/internal/repository"

	"github.com/shopspring/decimal"
)

// CouponAdminService 优惠券管理服务
type CouponAdminService struct {
	repo      repository.CouponRepository
	usageRepo repository.CouponUsageRepository
}

// NewCouponAdminService 创建优惠券管理服务
func NewCouponAdminService(repo repository.CouponRepository, usageRepo repository.CouponUsageRepository) *CouponAdminService {
	return &CouponAdminService{repo: repo, usageRepo: usageRepo}
}

// CreateCouponInput 创建优惠券输入
type CreateCouponInput struct {
	Name                  string
	Code                  string
	Type                  string
	Value                 models.Money
	MinOrderAmount        models.Money
	MaxDiscount           models.Money
	UsageLimit            int
	PerUserLimit          int
	ValidFrom             *time.Time
	ValidUntil            *time.Time
	IsActive              *bool
	ApplicableProductIDs  []uint
	ApplicableCategoryIDs []uint
	Description           string
}

// UpdateCouponInput 更新优惠券输入（nil 字段表示不修改）
type UpdateCouponInput struct {
	Name                  *string
	Type                  *string
	Value                 *models.Money
	MinOrderAmount        *models.Money
	MaxDiscount           *models.Money
	UsageLimit            *int
	PerUserLimit          *int
	ValidFrom             *time.Time
	ValidUntil            *time.Time
	IsActive              *bool
	ApplicableProductIDs  []uint
	ApplicableCategoryIDs []uint
	Description           *string
}

// Create 创建优惠券
func (s *CouponAdminService) Create(input CreateCouponInput) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" || strings.TrimSpace(input.Name) == "" {
		return nil, ErrCouponInvalid
	}
	couponType := strings.ToLower(strings.TrimSpace(input.Type))
	if err := validateCouponValue(couponType, input.Value); err != nil {
		return nil, err
	}
	if input.MinOrderAmount.Decimal.LessThan(decimal.Zero) ||
		input.MaxDiscount.Decimal.LessThan(decimal.Zero) {
		return nil, ErrCouponInvalid
	}
	if input.UsageLimit < 0 || input.PerUserLimit < 0 {
		return nil, ErrCouponInvalid
	}
	if input.ValidFrom != nil && input.ValidUntil != nil && input.ValidUntil.Before(*input.ValidFrom) {
		return nil, ErrCouponInvalid
	}

	exist, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, ErrStoreUnavailable
	}
	if exist != nil {
		return nil, ErrCouponCodeExists
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	coupon := &models.Coupon{
		Name:                  strings.TrimSpace(input.Name),
		Code:                  code,
		Type:                  couponType,
		Value:                 input.Value,
		MinOrderAmount:        input.MinOrderAmount,
		MaxDiscount:           input.MaxDiscount,
		UsageLimit:            input.UsageLimit,
		UsedCount:             0,
		PerUserLimit:          input.PerUserLimit,
		ValidFrom:             input.ValidFrom,
		ValidUntil:            input.ValidUntil,
		IsActive:              isActive,
		ApplicableProductIDs:  models.UintArray(input.ApplicableProductIDs),
		ApplicableCategoryIDs: models.UintArray(input.ApplicableCategoryIDs),
		Description:           strings.TrimSpace(input.Description),
	}

	if err := s.repo.Create(coupon); err != nil {
		return nil, ErrStoreUnavailable
	}
	return coupon, nil
}

// Get 获取优惠券详情
func (s *CouponAdminService) Get(id uint) (*models.Coupon, error) {
	if id == 0 {
		return nil, ErrCouponNotFound
	}
	coupon, err := s.repo.GetByID(id)
	if err != nil {
		return nil, ErrStoreUnavailable
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// Update 部分更新优惠券。优惠码不可修改，已发出的核销台账以码为快照。
func (s *CouponAdminService) Update(id uint, input UpdateCouponInput) (*models.Coupon, error) {
	existing, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrCouponInvalid
		}
		existing.Name = name
	}
	if input.Type != nil {
		existing.Type = strings.ToLower(strings.TrimSpace(*input.Type))
	}
	if input.Value != nil {
		existing.Value = *input.Value
	}
	if err := validateCouponValue(existing.Type, existing.Value); err != nil {
		return nil, err
	}
	if input.MinOrderAmount != nil {
		if input.MinOrderAmount.Decimal.LessThan(decimal.Zero) {
			return nil, ErrCouponInvalid
		}
		existing.MinOrderAmount = *input.MinOrderAmount
	}
	if input.MaxDiscount != nil {
		if input.MaxDiscount.Decimal.LessThan(decimal.Zero) {
			return nil, ErrCouponInvalid
		}
		existing.MaxDiscount = *input.MaxDiscount
	}
	if input.UsageLimit != nil {
		if *input.UsageLimit < 0 {
			return nil, ErrCouponInvalid
		}
		existing.UsageLimit = *input.UsageLimit
	}
	if input.PerUserLimit != nil {
		if *input.PerUserLimit < 0 {
			return nil, ErrCouponInvalid
		}
		existing.PerUserLimit = *input.PerUserLimit
	}
	if input.ValidFrom != nil {
		existing.ValidFrom = input.ValidFrom
	}
	if input.ValidUntil != nil {
		existing.ValidUntil = input.ValidUntil
	}
	if existing.ValidFrom != nil && existing.ValidUntil != nil && existing.ValidUntil.Before(*existing.ValidFrom) {
		return nil, ErrCouponInvalid
	}
	if input.IsActive != nil {
		existing.IsActive = *input.IsActive
	}
	if input.ApplicableProductIDs != nil {
		existing.ApplicableProductIDs = models.UintArray(input.ApplicableProductIDs)
	}
	if input.ApplicableCategoryIDs != nil {
		existing.ApplicableCategoryIDs = models.UintArray(input.ApplicableCategoryIDs)
	}
	if input.Description != nil {
		existing.Description = strings.TrimSpace(*input.Description)
	}

	if err := s.repo.Update(existing); err != nil {
		return nil, ErrStoreUnavailable
	}
	return existing, nil
}

// Delete 删除优惠券。已有核销台账的券不允许删除，保持账目可追溯。
func (s *CouponAdminService) Delete(id uint) error {
	existing, err := s.Get(id)
	if err != nil {
		return err
	}
	usages, _, err := s.usageRepo.List(repository.CouponUsageListFilter{CouponID: existing.ID, PageSize: 1})
	if err != nil {
		return ErrStoreUnavailable
	}
	if len(usages) > 0 {
		return ErrCouponInUse
	}
	return s.repo.Delete(existing.ID)
}

// List 获取优惠券列表
func (s *CouponAdminService) List(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	return s.repo.List(filter)
}

// ListUsages 获取优惠券核销台账
func (s *CouponAdminService) ListUsages(filter repository.CouponUsageListFilter) ([]models.CouponUsage, int64, error) {
	return s.usageRepo.List(filter)
}

func validateCouponValue(couponType string, value models.Money) error {
	switch couponType {
	case constants.CouponTypePercentage:
		if value.Decimal.LessThan(decimal.NewFromInt(1)) ||
			value.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return ErrCouponInvalid
		}
	case constants.CouponTypeFixed:
		if value.Decimal.LessThanOrEqual(decimal.Zero) {
			return ErrCouponInvalid
		}
	default:
		return ErrCouponInvalid
	}
	return nil
}

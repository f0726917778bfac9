package service

import (
	"strings"
	"time"

	"github.com/bistro-next/internal/constants"
	"github.com/bistro-next/internal/models"
	"github.com/bistro-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponService 优惠券服务
type CouponService struct {
	couponRepo repository.CouponRepository
	usageRepo  repository.CouponUsageRepository
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository, usageRepo repository.CouponUsageRepository) *CouponService {
	return &CouponService{
		couponRepo: couponRepo,
		usageRepo:  usageRepo,
	}
}

// Validate 校验优惠券并计算折扣金额。
// 只读预检，不改动 used_count；核销发生在订单提交事务内（见 Redeem）。
// 校验按固定顺序短路：查码、启用、时间窗、门槛、总上限、个人上限。
// 小计必须为正，否则固定券封顶逻辑会得出负折扣。
func (s *CouponService) Validate(code string, subtotal models.Money, userID uint) (models.Money, *models.Coupon, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return models.Money{}, nil, ErrCouponInvalid
	}
	if subtotal.Decimal.LessThanOrEqual(decimal.Zero) {
		return models.Money{}, nil, ErrInvalidOrderAmount
	}

	coupon, err := s.couponRepo.GetByCode(normalized)
	if err != nil {
		return models.Money{}, nil, ErrStoreUnavailable
	}
	if coupon == nil {
		return models.Money{}, nil, ErrCouponNotFound
	}
	if !coupon.IsActive {
		return models.Money{}, coupon, ErrCouponInactive
	}

	now := time.Now()
	if coupon.ValidFrom != nil && now.Before(*coupon.ValidFrom) {
		return models.Money{}, coupon, ErrCouponNotStarted
	}
	if coupon.ValidUntil != nil && now.After(*coupon.ValidUntil) {
		return models.Money{}, coupon, ErrCouponExpired
	}

	if coupon.MinOrderAmount.Decimal.GreaterThan(decimal.Zero) &&
		subtotal.Decimal.LessThan(coupon.MinOrderAmount.Decimal) {
		return models.Money{}, coupon, &CouponMinAmountError{MinOrderAmount: coupon.MinOrderAmount}
	}

	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return models.Money{}, coupon, ErrCouponUsageLimit
	}

	if coupon.PerUserLimit > 0 && userID != 0 {
		count, err := s.usageRepo.CountByUser(coupon.ID, userID)
		if err != nil {
			return models.Money{}, coupon, ErrStoreUnavailable
		}
		if int(count) >= coupon.PerUserLimit {
			return models.Money{}, coupon, &CouponPerUserLimitError{Limit: coupon.PerUserLimit}
		}
	}

	discount, err := s.ComputeDiscount(coupon, subtotal)
	if err != nil {
		return models.Money{}, coupon, err
	}

	return discount, coupon, nil
}

// ComputeDiscount 计算折扣金额。
// 百分比券按比例计算并受 max_discount 封顶；固定券不超过小计金额。
func (s *CouponService) ComputeDiscount(coupon *models.Coupon, subtotal models.Money) (models.Money, error) {
	if coupon == nil {
		return models.Money{}, ErrCouponInvalid
	}
	switch strings.ToLower(strings.TrimSpace(coupon.Type)) {
	case constants.CouponTypePercentage:
		if coupon.Value.Decimal.LessThanOrEqual(decimal.Zero) ||
			coupon.Value.Decimal.GreaterThan(decimal.NewFromInt(100)) {
			return models.Money{}, ErrCouponInvalid
		}
		percent := coupon.Value.Decimal.Div(decimal.NewFromInt(100))
		discount := subtotal.Decimal.Mul(percent).Round(2)
		if coupon.MaxDiscount.Decimal.GreaterThan(decimal.Zero) &&
			discount.GreaterThan(coupon.MaxDiscount.Decimal) {
			discount = coupon.MaxDiscount.Decimal
		}
		return models.NewMoneyFromDecimal(discount), nil
	case constants.CouponTypeFixed:
		if coupon.Value.Decimal.LessThanOrEqual(decimal.Zero) {
			return models.Money{}, ErrCouponInvalid
		}
		discount := coupon.Value.Decimal
		if discount.GreaterThan(subtotal.Decimal) {
			discount = subtotal.Decimal
		}
		return models.NewMoneyFromDecimal(discount), nil
	default:
		return models.Money{}, ErrCouponInvalid
	}
}

// RedeemInput 核销输入
type RedeemInput struct {
	Coupon         *models.Coupon
	UserID         uint
	UserEmail      string
	OrderID        uint
	OrderTotal     models.Money
	DiscountAmount models.Money
}

// Redeem 在订单提交事务内核销优惠券：
// 条件自增 used_count（未达上限才生效）并写入使用台账。
// 并发核销竞争到上限时条件更新不命中，返回 ErrCouponUsageLimit 让整单回滚。
func (s *CouponService) Redeem(tx *gorm.DB, input RedeemInput) error {
	if input.Coupon == nil || input.OrderID == 0 {
		return ErrCouponInvalid
	}
	couponRepo := s.couponRepo.WithTx(tx)
	usageRepo := s.usageRepo.WithTx(tx)

	updated, err := couponRepo.IncrementUsedCount(input.Coupon.ID, 1)
	if err != nil {
		return ErrStoreUnavailable
	}
	if !updated {
		return ErrCouponUsageLimit
	}

	usage := &models.CouponUsage{
		CouponID:       input.Coupon.ID,
		CouponCode:     input.Coupon.Code,
		UserID:         input.UserID,
		UserEmail:      input.UserEmail,
		OrderID:        input.OrderID,
		OrderTotal:     input.OrderTotal,
		DiscountAmount: input.DiscountAmount,
		CreatedAt:      time.Now(),
	}
	return usageRepo.Create(usage)
}

// Rollback 订单取消时回滚核销：删除该订单的使用台账并按数量回减 used_count。
// used_count 不会减到 0 以下，重复调用是安全的空操作。
func (s *CouponService) Rollback(tx *gorm.DB, orderID uint) error {
	if orderID == 0 {
		return nil
	}
	couponRepo := s.couponRepo.WithTx(tx)
	usageRepo := s.usageRepo.WithTx(tx)

	usages, err := usageRepo.ListByOrderID(orderID)
	if err != nil {
		return err
	}
	if len(usages) == 0 {
		return nil
	}
	if err := usageRepo.DeleteByOrderID(orderID); err != nil {
		return err
	}
	counts := make(map[uint]int)
	for _, usage := range usages {
		counts[usage.CouponID]++
	}
	for couponID, count := range counts {
		if count <= 0 {
			continue
		}
		if err := couponRepo.DecrementUsedCount(couponID, count); err != nil {
			return err
		}
	}
	return nil
}

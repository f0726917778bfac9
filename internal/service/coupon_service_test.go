package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bistro-next/internal/constants"
	"github.com/bistro-next/internal/models"
	"github.com/bistro-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCouponServiceTest(t *testing.T) (*CouponService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:coupon_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Coupon{}, &models.CouponUsage{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewCouponService(
		repository.NewCouponRepository(db),
		repository.NewCouponUsageRepository(db),
	)
	return svc, db
}

func money(v int64) models.Money {
	return models.NewMoneyFromDecimal(decimal.NewFromInt(v))
}

func TestComputeDiscountPercentage(t *testing.T) {
	svc, _ := setupCouponServiceTest(t)
	coupon := &models.Coupon{
		Type:  constants.CouponTypePercentage,
		Value: money(10),
	}
	discount, err := svc.ComputeDiscount(coupon, money(100))
	if err != nil {
		t.Fatalf("ComputeDiscount error: %v", err)
	}
	if !discount.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected 10, got %s", discount.String())
	}
}

func TestComputeDiscountPercentageCappedByMaxDiscount(t *testing.T) {
	svc, _ := setupCouponServiceTest(t)
	coupon := &models.Coupon{
		Type:        constants.CouponTypePercentage,
		Value:       money(50),
		MaxDiscount: money(20),
	}
	discount, err := svc.ComputeDiscount(coupon, money(100))
	if err != nil {
		t.Fatalf("ComputeDiscount error: %v", err)
	}
	if !discount.Decimal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected cap at 20, got %s", discount.String())
	}
}

func TestComputeDiscountFixedCappedAtSubtotal(t *testing.T) {
	svc, _ := setupCouponServiceTest(t)
	coupon := &models.Coupon{
		Type:  constants.CouponTypeFixed,
		Value: money(150),
	}
	discount, err := svc.ComputeDiscount(coupon, money(100))
	if err != nil {
		t.Fatalf("ComputeDiscount error: %v", err)
	}
	if !discount.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 100, got %s", discount.String())
	}
}

func TestComputeDiscountRejectsInvalidValue(t *testing.T) {
	svc, _ := setupCouponServiceTest(t)
	cases := []*models.Coupon{
		{Type: constants.CouponTypePercentage, Value: money(0)},
		{Type: constants.CouponTypePercentage, Value: money(101)},
		{Type: constants.CouponTypeFixed, Value: money(0)},
		{Type: "unknown", Value: money(10)},
	}
	for _, coupon := range cases {
		if _, err := svc.ComputeDiscount(coupon, money(100)); !errors.Is(err, ErrCouponInvalid) {
			t.Fatalf("expected invalid for %+v, got: %v", coupon, err)
		}
	}
}

func TestValidateNormalizesCodeToUppercase(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	coupon := models.Coupon{
		Name:     "welcome",
		Code:     "WELCOME10",
		Type:     constants.CouponTypePercentage,
		Value:    money(10),
		IsActive: true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	discount, got, err := svc.Validate("  welcome10 ", money(100), 1)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if got.ID != coupon.ID {
		t.Fatalf("unexpected coupon: %+v", got)
	}
	if !discount.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected 10, got %s", discount.String())
	}
}

func TestValidateUnknownCode(t *testing.T) {
	svc, _ := setupCouponServiceTest(t)
	if _, _, err := svc.Validate("NOPE", money(100), 1); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected not found, got: %v", err)
	}
}

func TestValidateInactiveCoupon(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	coupon := models.Coupon{
		Name:     "off",
		Code:     "OFF",
		Type:     constants.CouponTypeFixed,
		Value:    money(5),
		IsActive: false,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	// gorm 对带 default 标签的零值字段在 Create 时不写入，需显式落库 false
	if err := db.Model(&coupon).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate coupon failed: %v", err)
	}
	if _, _, err := svc.Validate("OFF", money(100), 1); !errors.Is(err, ErrCouponInactive) {
		t.Fatalf("expected inactive, got: %v", err)
	}
}

func TestValidateTimeWindow(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)

	notStarted := models.Coupon{
		Name:      "soon",
		Code:      "SOON",
		Type:      constants.CouponTypeFixed,
		Value:     money(5),
		ValidFrom: &future,
		IsActive:  true,
	}
	expired := models.Coupon{
		Name:       "gone",
		Code:       "GONE",
		Type:       constants.CouponTypeFixed,
		Value:      money(5),
		ValidUntil: &past,
		IsActive:   true,
	}
	if err := db.Create(&notStarted).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	if err := db.Create(&expired).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	if _, _, err := svc.Validate("SOON", money(100), 1); !errors.Is(err, ErrCouponNotStarted) {
		t.Fatalf("expected not started, got: %v", err)
	}
	if _, _, err := svc.Validate("GONE", money(100), 1); !errors.Is(err, ErrCouponExpired) {
		t.Fatalf("expected expired, got: %v", err)
	}
}

func TestValidateMinOrderAmount(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	coupon := models.Coupon{
		Name:           "big-order",
		Code:           "BIG",
		Type:           constants.CouponTypeFixed,
		Value:          money(5),
		MinOrderAmount: money(50),
		IsActive:       true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	_, _, err := svc.Validate("BIG", money(49), 1)
	if !errors.Is(err, ErrCouponMinAmount) {
		t.Fatalf("expected min amount, got: %v", err)
	}
	// 提示必须携带门槛金额
	var minErr *CouponMinAmountError
	if !errors.As(err, &minErr) {
		t.Fatalf("expected CouponMinAmountError, got: %T", err)
	}
	if !minErr.MinOrderAmount.Decimal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected threshold 50 carried, got %s", minErr.MinOrderAmount.String())
	}
	if !strings.Contains(err.Error(), "50.00") {
		t.Fatalf("expected message to contain threshold, got %q", err.Error())
	}
	if _, _, err := svc.Validate("BIG", money(50), 1); err != nil {
		t.Fatalf("expected success at threshold, got: %v", err)
	}
}

func TestValidateRejectsNonPositiveSubtotal(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	coupon := models.Coupon{
		Name:     "five-off",
		Code:     "FIVE",
		Type:     constants.CouponTypeFixed,
		Value:    money(5),
		IsActive: true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	for _, subtotal := range []int64{0, -100} {
		discount, _, err := svc.Validate("FIVE", money(subtotal), 1)
		if !errors.Is(err, ErrInvalidOrderAmount) {
			t.Fatalf("subtotal %d: expected invalid amount, got: %v", subtotal, err)
		}
		if discount.Decimal.LessThan(decimal.Zero) {
			t.Fatalf("subtotal %d: discount must never be negative, got %s", subtotal, discount.String())
		}
	}
}

func TestValidateUsageLimitReached(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	coupon := models.Coupon{
		Name:       "once",
		Code:       "ONCE",
		Type:       constants.CouponTypeFixed,
		Value:      money(5),
		UsageLimit: 1,
		UsedCount:  1,
		IsActive:   true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	if _, _, err := svc.Validate("ONCE", money(100), 1); !errors.Is(err, ErrCouponUsageLimit) {
		t.Fatalf("expected usage limit, got: %v", err)
	}
}

func TestValidatePerUserLimitReached(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	coupon := models.Coupon{
		Name:         "twice",
		Code:         "TWICE",
		Type:         constants.CouponTypeFixed,
		Value:        money(5),
		PerUserLimit: 2,
		IsActive:     true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		usage := models.CouponUsage{
			CouponID:   coupon.ID,
			CouponCode: coupon.Code,
			UserID:     7,
			OrderID:    uint(100 + i),
			CreatedAt:  time.Now(),
		}
		if err := db.Create(&usage).Error; err != nil {
			t.Fatalf("create usage failed: %v", err)
		}
	}
	_, _, err := svc.Validate("TWICE", money(100), 7)
	if !errors.Is(err, ErrCouponPerUserLimit) {
		t.Fatalf("expected per-user limit, got: %v", err)
	}
	// 提示必须携带上限次数
	var limitErr *CouponPerUserLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected CouponPerUserLimitError, got: %T", err)
	}
	if limitErr.Limit != 2 {
		t.Fatalf("expected limit 2 carried, got %d", limitErr.Limit)
	}
	// 其他用户不受影响
	if _, _, err := svc.Validate("TWICE", money(100), 8); err != nil {
		t.Fatalf("expected success for another user, got: %v", err)
	}
}

func TestRedeemStopsAtUsageLimit(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	coupon := models.Coupon{
		Name:       "limited",
		Code:       "LIMITED",
		Type:       constants.CouponTypeFixed,
		Value:      money(5),
		UsageLimit: 1,
		IsActive:   true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	if err := svc.Redeem(db, RedeemInput{
		Coupon:         &coupon,
		UserID:         1,
		OrderID:        100,
		OrderTotal:     money(100),
		DiscountAmount: money(5),
	}); err != nil {
		t.Fatalf("first redeem failed: %v", err)
	}
	err := svc.Redeem(db, RedeemInput{
		Coupon:         &coupon,
		UserID:         2,
		OrderID:        101,
		OrderTotal:     money(100),
		DiscountAmount: money(5),
	})
	if !errors.Is(err, ErrCouponUsageLimit) {
		t.Fatalf("expected usage limit on second redeem, got: %v", err)
	}

	var fresh models.Coupon
	if err := db.First(&fresh, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if fresh.UsedCount != 1 {
		t.Fatalf("expected used_count 1, got %d", fresh.UsedCount)
	}
}

func TestRollbackRestoresUsedCount(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	coupon := models.Coupon{
		Name:     "back",
		Code:     "BACK",
		Type:     constants.CouponTypeFixed,
		Value:    money(5),
		IsActive: true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	if err := svc.Redeem(db, RedeemInput{
		Coupon:         &coupon,
		UserID:         1,
		OrderID:        200,
		OrderTotal:     money(100),
		DiscountAmount: money(5),
	}); err != nil {
		t.Fatalf("redeem failed: %v", err)
	}
	if err := svc.Rollback(db, 200); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}

	var fresh models.Coupon
	if err := db.First(&fresh, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if fresh.UsedCount != 0 {
		t.Fatalf("expected used_count back to 0, got %d", fresh.UsedCount)
	}
	var count int64
	if err := db.Model(&models.CouponUsage{}).Where("order_id = ?", 200).Count(&count).Error; err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected usage ledger cleared, got %d rows", count)
	}

	// 重复回滚是空操作，计数不会降到 0 以下
	if err := svc.Rollback(db, 200); err != nil {
		t.Fatalf("second rollback failed: %v", err)
	}
	if err := db.First(&fresh, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if fresh.UsedCount != 0 {
		t.Fatalf("expected used_count floored at 0, got %d", fresh.UsedCount)
	}
}

package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bistro-next/internal/constants"
	"github.com/bistro-next/internal/models"
	"github.com/bistro-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Coupon{},
		&models.CouponUsage{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	couponSvc := NewCouponService(
		repository.NewCouponRepository(db),
		repository.NewCouponUsageRepository(db),
	)
	svc := NewCartService(
		repository.NewCartRepository(db),
		repository.NewProductRepository(db),
		couponSvc,
	)
	return svc, db
}

func TestBuildCartKey(t *testing.T) {
	if key := BuildCartKey(7, nil); key != "7" {
		t.Fatalf("expected bare product key, got %q", key)
	}
	key := BuildCartKey(7, map[string]string{"size": "large", "spice": "hot"})
	if key != "7|size=large|spice=hot" {
		t.Fatalf("unexpected key: %q", key)
	}
	// 键名排序后相同选项必须得到同一行键
	again := BuildCartKey(7, map[string]string{"spice": "hot", "size": "large"})
	if key != again {
		t.Fatalf("key must be deterministic: %q vs %q", key, again)
	}
	other := BuildCartKey(7, map[string]string{"size": "small", "spice": "hot"})
	if key == other {
		t.Fatalf("different options must produce different keys")
	}
}

func TestUpsertItemMergesSameKey(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "milk-tea", 6, nil)

	input := UpsertCartItemInput{
		UserID:    1,
		ProductID: product.ID,
		Quantity:  1,
	}
	if err := svc.UpsertItem(input); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	input.Quantity = 3
	if err := svc.UpsertItem(input); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	var items []models.CartItem
	if err := db.Where("user_id = ?", 1).Find(&items).Error; err != nil {
		t.Fatalf("list cart failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one merged row, got %d", len(items))
	}
	if items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", items[0].Quantity)
	}
}

func TestUpsertItemRejectsInvalidInput(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "lemonade", 4, nil)

	if err := svc.UpsertItem(UpsertCartItemInput{UserID: 0, ProductID: product.ID, Quantity: 1}); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("expected invalid item for missing user, got: %v", err)
	}
	if err := svc.UpsertItem(UpsertCartItemInput{UserID: 1, ProductID: product.ID, Quantity: 0}); !errors.Is(err, ErrInvalidOrderItem) {
		t.Fatalf("expected invalid item for zero quantity, got: %v", err)
	}
	if err := svc.UpsertItem(UpsertCartItemInput{UserID: 1, ProductID: 9999, Quantity: 1}); !errors.Is(err, ErrProductNotAvailable) {
		t.Fatalf("expected product not available, got: %v", err)
	}
}

func TestUpsertItemValidatesOptions(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := models.Product{
		Slug:        "bubble-tea",
		Name:        "bubble-tea",
		PriceAmount: money(5),
		IsActive:    true,
		Options: models.OptionList{
			{Key: "sugar", Name: "甜度", Choices: []models.OptionChoice{
				{Value: "half", Label: "半糖"},
				{Value: "full", Label: "全糖"},
			}},
		},
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	err := svc.UpsertItem(UpsertCartItemInput{
		UserID:    1,
		ProductID: product.ID,
		Quantity:  1,
		Options:   map[string]string{"sugar": "double"},
	})
	if !errors.Is(err, ErrProductOptionInvalid) {
		t.Fatalf("expected option invalid, got: %v", err)
	}
	err = svc.UpsertItem(UpsertCartItemInput{
		UserID:    1,
		ProductID: product.ID,
		Quantity:  1,
		Options:   map[string]string{"sugar": "half"},
	})
	if err != nil {
		t.Fatalf("valid option rejected: %v", err)
	}
}

func TestListByUserComputesSubtotalAndPrunesInactive(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	active := createTestProduct(t, db, "iced-coffee", 5, nil)
	retired := createTestProduct(t, db, "retired-drink", 9, nil)

	if err := svc.UpsertItem(UpsertCartItemInput{UserID: 2, ProductID: active.ID, Quantity: 3}); err != nil {
		t.Fatalf("upsert active failed: %v", err)
	}
	if err := svc.UpsertItem(UpsertCartItemInput{UserID: 2, ProductID: retired.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert retired failed: %v", err)
	}
	if err := db.Model(&models.Product{}).Where("id = ?", retired.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	summary, err := svc.ListByUser(2)
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(summary.Items) != 1 {
		t.Fatalf("expected inactive row pruned, got %d items", len(summary.Items))
	}
	if !summary.Subtotal.Decimal.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected subtotal 15, got %s", summary.Subtotal.Decimal.String())
	}

	var count int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 2).Count(&count).Error; err != nil {
		t.Fatalf("count cart rows failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected stale row deleted, got %d rows", count)
	}
}

func TestRemoveItemAndClear(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "soda", 3, nil)

	if err := svc.UpsertItem(UpsertCartItemInput{UserID: 5, ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	cartKey := BuildCartKey(product.ID, nil)
	if err := svc.RemoveItem(5, cartKey); err != nil {
		t.Fatalf("RemoveItem error: %v", err)
	}
	var count int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 5).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected row removed, got %d", count)
	}

	if err := svc.UpsertItem(UpsertCartItemInput{UserID: 5, ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if err := svc.Clear(5); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 5).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected cart cleared, got %d", count)
	}
}

func TestAttachCouponStoresCodeOnCart(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "ramen", 20, nil)

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
	if err := svc.UpsertItem(UpsertCartItemInput{UserID: 9, ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	discount, got, err := svc.AttachCoupon(9, "five")
	if err != nil {
		t.Fatalf("AttachCoupon error: %v", err)
	}
	if got.ID != coupon.ID {
		t.Fatalf("unexpected coupon: %+v", got)
	}
	if !discount.Decimal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("expected discount 5, got %s", discount.String())
	}

	summary, err := svc.ListByUser(9)
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if summary.CouponCode != "FIVE" {
		t.Fatalf("expected applied code FIVE on cart, got %q", summary.CouponCode)
	}
	if svc.AppliedCouponCode(9) != "FIVE" {
		t.Fatalf("expected AppliedCouponCode FIVE, got %q", svc.AppliedCouponCode(9))
	}

	if err := svc.DetachCoupon(9); err != nil {
		t.Fatalf("DetachCoupon error: %v", err)
	}
	if svc.AppliedCouponCode(9) != "" {
		t.Fatalf("expected coupon detached, got %q", svc.AppliedCouponCode(9))
	}
}

func TestAttachCouponRejectsInvalidCode(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "gyoza", 9, nil)

	if err := svc.UpsertItem(UpsertCartItemInput{UserID: 9, ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if _, _, err := svc.AttachCoupon(9, "NOPE"); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected coupon not found, got: %v", err)
	}
	if svc.AppliedCouponCode(9) != "" {
		t.Fatalf("rejected code must not be stored")
	}
}

func TestAttachCouponRequiresItems(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	coupon := models.Coupon{
		Name:     "empty-cart",
		Code:     "EMPTY",
		Type:     constants.CouponTypeFixed,
		Value:    money(2),
		IsActive: true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	if _, _, err := svc.AttachCoupon(9, "EMPTY"); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected empty cart, got: %v", err)
	}
}

func TestClearCartDetachesCoupon(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	product := createTestProduct(t, db, "karaage", 12, nil)

	coupon := models.Coupon{
		Name:     "three-off",
		Code:     "THREE",
		Type:     constants.CouponTypeFixed,
		Value:    money(3),
		IsActive: true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}
	if err := svc.UpsertItem(UpsertCartItemInput{UserID: 4, ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if _, _, err := svc.AttachCoupon(4, "THREE"); err != nil {
		t.Fatalf("AttachCoupon error: %v", err)
	}

	if err := svc.Clear(4); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if svc.AppliedCouponCode(4) != "" {
		t.Fatalf("expected coupon detached after clear")
	}
}

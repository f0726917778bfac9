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

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.Coupon{},
		&models.CouponUsage{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.ArchivedOrder{},
		&models.Cart{},
		&models.CartItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	couponSvc := NewCouponService(
		repository.NewCouponRepository(db),
		repository.NewCouponUsageRepository(db),
	)
	svc := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewArchivedOrderRepository(db),
		repository.NewProductRepository(db),
		repository.NewCartRepository(db),
		couponSvc,
		nil,
		30,
	)
	return svc, db
}

func createTestProduct(t *testing.T, db *gorm.DB, slug string, price int64, stock *int) *models.Product {
	t.Helper()
	product := models.Product{
		Slug:        slug,
		Name:        slug,
		PriceAmount: money(price),
		Stock:       stock,
		IsActive:    true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return &product
}

func TestGenerateOrderNo(t *testing.T) {
	now := time.UnixMilli(1700000123456)
	orderNo := generateOrderNo(now)
	if orderNo != "ORD-123456" {
		t.Fatalf("unexpected order no: %s", orderNo)
	}
	if !strings.HasPrefix(orderNo, constants.OrderNoPrefix) {
		t.Fatalf("missing prefix: %s", orderNo)
	}
}

func TestBuildOrderResultPercentageCoupon(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "pad-thai", 100, nil)
	coupon := models.Coupon{
		Name:     "ten",
		Code:     "TEN",
		Type:     constants.CouponTypePercentage,
		Value:    money(10),
		IsActive: true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	result, err := svc.buildOrderResult(CreateOrderInput{
		UserID:        1,
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: "cash",
		CouponCode:    "TEN",
	})
	if err != nil {
		t.Fatalf("buildOrderResult error: %v", err)
	}
	if !result.Subtotal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected subtotal 100, got %s", result.Subtotal.String())
	}
	if !result.TaxAmount.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("expected tax 8, got %s", result.TaxAmount.String())
	}
	if !result.DiscountAmount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected discount 10, got %s", result.DiscountAmount.String())
	}
	if !result.TotalAmount.Equal(decimal.NewFromInt(98)) {
		t.Fatalf("expected total 98, got %s", result.TotalAmount.String())
	}
}

func TestBuildOrderResultFixedCouponCappedAtSubtotal(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "green-curry", 100, nil)
	coupon := models.Coupon{
		Name:     "mega",
		Code:     "MEGA",
		Type:     constants.CouponTypeFixed,
		Value:    money(150),
		IsActive: true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	result, err := svc.buildOrderResult(CreateOrderInput{
		UserID:        1,
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: "cash",
		CouponCode:    "MEGA",
	})
	if err != nil {
		t.Fatalf("buildOrderResult error: %v", err)
	}
	// 折扣封顶到小计 100，总额 108 - 100 = 8
	if !result.DiscountAmount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected discount 100, got %s", result.DiscountAmount.String())
	}
	if !result.TotalAmount.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("expected total 8, got %s", result.TotalAmount.String())
	}
}

func TestBuildOrderResultRejectsEmptyCartAndMissingPayment(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "satay", 10, nil)

	if _, err := svc.buildOrderResult(CreateOrderInput{
		UserID:        1,
		PaymentMethod: "cash",
	}); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected empty cart, got: %v", err)
	}
	if _, err := svc.buildOrderResult(CreateOrderInput{
		UserID: 1,
		Items:  []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	}); !errors.Is(err, ErrMissingPaymentMethod) {
		t.Fatalf("expected missing payment method, got: %v", err)
	}
}

func TestBuildOrderResultTotalNeverNegative(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "spring-roll", 10, nil)
	coupon := models.Coupon{
		Name:        "all-off",
		Code:        "ALLOFF",
		Type:        constants.CouponTypePercentage,
		Value:       money(100),
		MaxDiscount: money(1000),
		IsActive:    true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	result, err := svc.buildOrderResult(CreateOrderInput{
		UserID:        1,
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: "cash",
		CouponCode:    "ALLOFF",
	})
	if err != nil {
		t.Fatalf("buildOrderResult error: %v", err)
	}
	if result.TotalAmount.LessThan(decimal.Zero) {
		t.Fatalf("total must not be negative, got %s", result.TotalAmount.String())
	}
}

func TestCreateOrderPersistsHistoryAndRedeemsCoupon(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	stock := 10
	product := createTestProduct(t, db, "tom-yum", 50, &stock)
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

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:        1,
		UserEmail:     "diner@example.com",
		UserName:      "Diner",
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 2}},
		PaymentMethod: "cash",
		CouponCode:    "FIVE",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", order.Items)
	}
	if len(order.History) != 1 || order.History[0].ToStatus != constants.OrderStatusPending {
		t.Fatalf("expected one pending history entry, got: %+v", order.History)
	}
	if order.History[0].Note != constants.StatusNoteOrderReceived {
		t.Fatalf("unexpected history note: %s", order.History[0].Note)
	}

	var fresh models.Coupon
	if err := db.First(&fresh, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if fresh.UsedCount != 1 {
		t.Fatalf("expected used_count 1, got %d", fresh.UsedCount)
	}
	var usage models.CouponUsage
	if err := db.Where("order_id = ?", order.ID).First(&usage).Error; err != nil {
		t.Fatalf("expected usage ledger row: %v", err)
	}
	if usage.CouponCode != "FIVE" || usage.UserEmail != "diner@example.com" {
		t.Fatalf("unexpected usage snapshot: %+v", usage)
	}

	var freshProduct models.Product
	if err := db.First(&freshProduct, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if freshProduct.Stock == nil || *freshProduct.Stock != 8 {
		t.Fatalf("expected stock 8, got %+v", freshProduct.Stock)
	}
}

func TestCreateOrderMergesDuplicateItems(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	stock := 10
	product := createTestProduct(t, db, "gyoza", 12, &stock)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID: 1,
		Items: []CreateOrderItem{
			{ProductID: product.ID, Quantity: 1, Options: map[string]string{}},
			{ProductID: product.ID, Quantity: 2},
		},
		PaymentMethod: "cash",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	// 同一商品同一选项的重复行合并为一行，数量累加
	if len(order.Items) != 1 {
		t.Fatalf("expected merged into 1 item, got %d", len(order.Items))
	}
	if order.Items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", order.Items[0].Quantity)
	}
	if !order.Subtotal.Equal(decimal.NewFromInt(36)) {
		t.Fatalf("expected subtotal 36, got %s", order.Subtotal.String())
	}

	var freshProduct models.Product
	if err := db.First(&freshProduct, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if freshProduct.Stock == nil || *freshProduct.Stock != 7 {
		t.Fatalf("expected stock 7, got %+v", freshProduct.Stock)
	}
}

func TestCreateOrderRejectsInsufficientStock(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	stock := 1
	product := createTestProduct(t, db, "mango-rice", 20, &stock)

	_, err := svc.CreateOrder(CreateOrderInput{
		UserID:        1,
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 2}},
		PaymentMethod: "cash",
	})
	if !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("expected stock insufficient, got: %v", err)
	}

	var count int64
	if err := db.Model(&models.Order{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected order rolled back, got %d orders", count)
	}
}

func TestCreateOrderValidatesOptionAgainstProduct(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := models.Product{
		Slug:        "noodles",
		Name:        "noodles",
		PriceAmount: money(12),
		IsActive:    true,
		Options: models.OptionList{
			{Key: "spice", Name: "辣度", Choices: []models.OptionChoice{
				{Value: "mild", Label: "微辣"},
				{Value: "hot", Label: "重辣"},
			}},
		},
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	if _, err := svc.CreateOrder(CreateOrderInput{
		UserID:        1,
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 1, Options: map[string]string{"spice": "nuclear"}}},
		PaymentMethod: "cash",
	}); !errors.Is(err, ErrProductOptionInvalid) {
		t.Fatalf("expected option invalid, got: %v", err)
	}

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:        1,
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 1, Options: map[string]string{"spice": "hot"}}},
		PaymentMethod: "cash",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if order.Items[0].Options["spice"] != "hot" {
		t.Fatalf("expected option snapshot, got: %+v", order.Items[0].Options)
	}
}

func TestCancelOrderRollsBackCouponAndStock(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	stock := 5
	product := createTestProduct(t, db, "basil-chicken", 40, &stock)
	coupon := models.Coupon{
		Name:     "cut",
		Code:     "CUT",
		Type:     constants.CouponTypeFixed,
		Value:    money(10),
		IsActive: true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:        3,
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: "cash",
		CouponCode:    "CUT",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	cancelled, err := svc.CancelOrder(order.ID, 3, false, "changed my mind")
	if err != nil {
		t.Fatalf("CancelOrder error: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	var fresh models.Coupon
	if err := db.First(&fresh, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if fresh.UsedCount != 0 {
		t.Fatalf("expected used_count back to 0, got %d", fresh.UsedCount)
	}
	var count int64
	if err := db.Model(&models.CouponUsage{}).Where("order_id = ?", order.ID).Count(&count).Error; err != nil {
		t.Fatalf("count usages failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected usage ledger removed, got %d", count)
	}
	var freshProduct models.Product
	if err := db.First(&freshProduct, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if freshProduct.Stock == nil || *freshProduct.Stock != 5 {
		t.Fatalf("expected stock restored to 5, got %+v", freshProduct.Stock)
	}
}

func TestCancelOrderRejectsNonOwner(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "dumplings", 15, nil)
	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:        3,
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: "cash",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if _, err := svc.CancelOrder(order.ID, 99, false, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got: %v", err)
	}
}

func TestCancelOrderRejectedFromPreparing(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "fried-rice", 18, nil)
	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:        3,
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: "cash",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", constants.OrderStatusPreparing).Error; err != nil {
		t.Fatalf("force status failed: %v", err)
	}

	if _, err := svc.CancelOrder(order.ID, 3, false, ""); !errors.Is(err, ErrOrderCancelNotAllowed) {
		t.Fatalf("expected not cancellable, got: %v", err)
	}
}

func TestCancelOrderIdempotenceRejected(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "laksa", 22, nil)
	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:        3,
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: "cash",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if _, err := svc.CancelOrder(order.ID, 3, false, ""); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	if _, err := svc.CancelOrder(order.ID, 3, false, ""); !errors.Is(err, ErrOrderCancelNotAllowed) {
		t.Fatalf("expected second cancel rejected, got: %v", err)
	}
}

func TestUpdateOrderStatusFollowsGraph(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "pho", 30, nil)
	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:        3,
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: "cash",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	// pending 不允许直接跳到 delivered
	if _, err := svc.UpdateOrderStatus(UpdateStatusInput{
		OrderID: order.ID,
		Status:  constants.OrderStatusDelivered,
		Actor:   "admin:1",
	}); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected invalid transition, got: %v", err)
	}

	chain := []string{
		constants.OrderStatusConfirmed,
		constants.OrderStatusPreparing,
		constants.OrderStatusReady,
		constants.OrderStatusOutForDelivery,
		constants.OrderStatusDelivered,
	}
	for _, status := range chain {
		updated, err := svc.UpdateOrderStatus(UpdateStatusInput{
			OrderID: order.ID,
			Status:  status,
			Actor:   "admin:1",
		})
		if err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
		if updated.Status != status {
			t.Fatalf("expected %s, got %s", status, updated.Status)
		}
	}

	// delivered 为终态
	if _, err := svc.UpdateOrderStatus(UpdateStatusInput{
		OrderID: order.ID,
		Status:  constants.OrderStatusPending,
		Actor:   "admin:1",
	}); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected terminal state locked, got: %v", err)
	}

	full, err := svc.GetOrderForAdmin(order.ID)
	if err != nil {
		t.Fatalf("GetOrderForAdmin error: %v", err)
	}
	// 创建 1 条 + 5 次流转
	if len(full.History) != 6 {
		t.Fatalf("expected 6 history entries, got %d", len(full.History))
	}
	if full.DeliveredAt == nil {
		t.Fatalf("expected delivered_at set")
	}
}

func TestUpdateOrderStatusRecordsCourierAndEta(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "bibimbap", 26, nil)
	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:        3,
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: "cash",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	for _, status := range []string{
		constants.OrderStatusConfirmed,
		constants.OrderStatusPreparing,
		constants.OrderStatusReady,
	} {
		if _, err := svc.UpdateOrderStatus(UpdateStatusInput{
			OrderID: order.ID,
			Status:  status,
			Actor:   "admin:1",
		}); err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
	}

	lat, lng := 31.2304, 121.4737
	eta := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	updated, err := svc.UpdateOrderStatus(UpdateStatusInput{
		OrderID:     order.ID,
		Status:      constants.OrderStatusOutForDelivery,
		Actor:       "admin:1",
		CourierLat:  &lat,
		CourierLng:  &lng,
		EstimatedAt: &eta,
	})
	if err != nil {
		t.Fatalf("UpdateOrderStatus error: %v", err)
	}
	if updated.CourierLat == nil || *updated.CourierLat != lat {
		t.Fatalf("expected courier lat %v, got %v", lat, updated.CourierLat)
	}
	if updated.EstimatedAt == nil {
		t.Fatalf("expected estimated delivery time set")
	}

	full, err := svc.GetOrderForAdmin(order.ID)
	if err != nil {
		t.Fatalf("GetOrderForAdmin error: %v", err)
	}
	if full.CourierLng == nil || *full.CourierLng != lng {
		t.Fatalf("expected persisted courier lng %v, got %v", lng, full.CourierLng)
	}
	last := full.History[len(full.History)-1]
	if last.CourierLat == nil || *last.CourierLat != lat {
		t.Fatalf("expected history courier lat %v, got %v", lat, last.CourierLat)
	}
}

func TestCancelOrderStampsCancelMeta(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "udon", 14, nil)
	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:        3,
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: "cash",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	canceled, err := svc.CancelOrder(order.ID, 3, false, "changed my mind")
	if err != nil {
		t.Fatalf("CancelOrder error: %v", err)
	}
	if canceled.CanceledBy != "user:3" {
		t.Fatalf("expected canceled_by user:3, got %s", canceled.CanceledBy)
	}
	if canceled.CancelReason != "changed my mind" {
		t.Fatalf("expected cancel reason kept, got %q", canceled.CancelReason)
	}

	full, err := svc.GetOrderForAdmin(order.ID)
	if err != nil {
		t.Fatalf("GetOrderForAdmin error: %v", err)
	}
	if full.CanceledAt == nil || full.CanceledBy != "user:3" || full.CancelReason != "changed my mind" {
		t.Fatalf("expected persisted cancel metadata, got at=%v by=%s reason=%q", full.CanceledAt, full.CanceledBy, full.CancelReason)
	}
}

func TestMoveToHistorySkipsNonTerminal(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "bao", 8, nil)

	pending, err := svc.CreateOrder(CreateOrderInput{
		UserID:        3,
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: "cash",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	done, err := svc.CreateOrder(CreateOrderInput{
		UserID:        3,
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: "cash",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if _, err := svc.CancelOrder(done.ID, 3, false, ""); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	result, err := svc.MoveToHistory([]uint{pending.ID, done.ID})
	if err != nil {
		t.Fatalf("MoveToHistory error: %v", err)
	}
	if result.Archived != 1 || result.Skipped != 1 {
		t.Fatalf("expected 1 archived / 1 skipped, got %+v", result)
	}

	var activeCount int64
	if err := db.Model(&models.Order{}).Count(&activeCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if activeCount != 1 {
		t.Fatalf("expected 1 active order left, got %d", activeCount)
	}
	var archived models.ArchivedOrder
	if err := db.Where("order_id = ?", done.ID).First(&archived).Error; err != nil {
		t.Fatalf("expected archive row: %v", err)
	}
	if archived.Status != constants.OrderStatusCancelled {
		t.Fatalf("unexpected archived status: %s", archived.Status)
	}
	if archived.Snapshot["order_no"] != done.OrderNo {
		t.Fatalf("expected snapshot to keep order_no, got: %v", archived.Snapshot["order_no"])
	}
}

func TestAutoCleanupArchivesOldTerminalOrders(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	product := createTestProduct(t, db, "congee", 9, nil)

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:        3,
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: "cash",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if _, err := svc.CancelOrder(order.ID, 3, false, ""); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	old := time.Now().AddDate(0, 0, -60)
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("updated_at", old).Error; err != nil {
		t.Fatalf("age order failed: %v", err)
	}

	archived, err := svc.AutoCleanup()
	if err != nil {
		t.Fatalf("AutoCleanup error: %v", err)
	}
	if archived != 1 {
		t.Fatalf("expected 1 archived, got %d", archived)
	}

	// 再次执行是空操作
	archived, err = svc.AutoCleanup()
	if err != nil {
		t.Fatalf("second AutoCleanup error: %v", err)
	}
	if archived != 0 {
		t.Fatalf("expected idempotent cleanup, got %d", archived)
	}
}

package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/bistro-next/internal/constants"
	"github.com/bistro-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupOrderRepoTest(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:order_repo_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.OrderStatusHistory{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return db
}

func TestUpdateStatusConditionalOnCurrent(t *testing.T) {
	db := setupOrderRepoTest(t)
	repo := NewOrderRepository(db)

	order := &models.Order{
		OrderNo:      "ORD-000001",
		UserID:       1,
		CustomerName: "guest",
		Status:       constants.OrderStatusPending,
	}
	if err := repo.Create(order, nil); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	affected, err := repo.UpdateStatus(order.ID, constants.OrderStatusConfirmed, nil, []string{constants.OrderStatusPending})
	if err != nil {
		t.Fatalf("conditional update failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row updated, got %d", affected)
	}

	// 原状态不再命中，输掉竞争的一方不能写入
	affected, err = repo.UpdateStatus(order.ID, constants.OrderStatusCancelled, nil, []string{constants.OrderStatusPending})
	if err != nil {
		t.Fatalf("stale conditional update errored: %v", err)
	}
	if affected != 0 {
		t.Fatalf("stale condition must not apply, got %d rows", affected)
	}

	reloaded, err := repo.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusConfirmed {
		t.Fatalf("status want confirmed got %s", reloaded.Status)
	}

	// 不带条件时保持原有无条件语义
	affected, err = repo.UpdateStatus(order.ID, constants.OrderStatusPreparing, nil, nil)
	if err != nil {
		t.Fatalf("unconditional update failed: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected unconditional update to apply, got %d rows", affected)
	}
}

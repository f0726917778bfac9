package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bistro-next/internal/constants"
	"github.com/bistro-next/internal/logger"
	"github.com/bistro-next/internal/models"
	"github.com/bistro-next/internal/queue"
	"github.com/bistro-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo     repository.OrderRepository
	archiveRepo   repository.ArchivedOrderRepository
	productRepo   repository.ProductRepository
	cartRepo      repository.CartRepository
	couponSvc     *CouponService
	queueClient   *queue.Client
	retentionDays int
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, archiveRepo repository.ArchivedOrderRepository, productRepo repository.ProductRepository, cartRepo repository.CartRepository, couponSvc *CouponService, queueClient *queue.Client, retentionDays int) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		archiveRepo:   archiveRepo,
		productRepo:   productRepo,
		cartRepo:      cartRepo,
		couponSvc:     couponSvc,
		queueClient:   queueClient,
		retentionDays: retentionDays,
	}
}

// CreateOrderItem 创建订单项输入
type CreateOrderItem struct {
	ProductID uint
	Quantity  int
	Options   map[string]string
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID          uint
	UserEmail       string
	UserName        string
	Items           []CreateOrderItem
	PaymentMethod   string
	DeliveryType    string
	DeliveryAddress string
	Phone           string
	Note            string
	CouponCode      string
	ClientIP        string
	ClearCart       bool
}

// OrderPreview 订单金额预览
type OrderPreview struct {
	Subtotal       models.Money `json:"subtotal"`
	TaxAmount      models.Money `json:"tax_amount"`
	DiscountAmount models.Money `json:"discount_amount"`
	TotalAmount    models.Money `json:"total_amount"`
}

type orderBuildResult struct {
	Items          []models.OrderItem
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
	AppliedCoupon  *models.Coupon
}

// CreateOrder 创建订单。
// 金额计算固定顺序：小计、税费（8%）、优惠，总额不为负。
// 订单、订单项、状态流水、库存扣减与优惠券核销在同一事务内提交。
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	result, err := s.buildOrderResult(input)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &models.Order{
		OrderNo:        generateOrderNo(now),
		UserID:         input.UserID,
		CustomerName:   strings.TrimSpace(input.UserName),
		CustomerPhone:  strings.TrimSpace(input.Phone),
		CustomerEmail:  strings.ToLower(strings.TrimSpace(input.UserEmail)),
		Status:         constants.OrderStatusPending,
		PaymentMethod:  strings.ToLower(strings.TrimSpace(input.PaymentMethod)),
		PaymentStatus:  constants.PaymentStatusUnpaid,
		Subtotal:       models.NewMoneyFromDecimal(result.Subtotal),
		TaxAmount:      models.NewMoneyFromDecimal(result.TaxAmount),
		DiscountAmount: models.NewMoneyFromDecimal(result.DiscountAmount),
		TotalAmount:    models.NewMoneyFromDecimal(result.TotalAmount),
		DeliveryType:   normalizeDeliveryType(input.DeliveryType),
		DeliveryAddr:   strings.TrimSpace(input.DeliveryAddress),
		Note:           strings.TrimSpace(input.Note),
		ClientIP:       strings.TrimSpace(input.ClientIP),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if result.AppliedCoupon != nil {
		order.CouponID = &result.AppliedCoupon.ID
		order.CouponCode = result.AppliedCoupon.Code
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		if err := orderRepo.Create(order, result.Items); err != nil {
			return err
		}

		for _, item := range result.Items {
			affected, err := productRepo.ReserveStock(item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrStockInsufficient
			}
		}

		history := &models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: "",
			ToStatus:   constants.OrderStatusPending,
			Actor:      constants.StatusActorSystem,
			Note:       constants.StatusNoteOrderReceived,
			CreatedAt:  now,
		}
		if err := orderRepo.AppendHistory(history); err != nil {
			return err
		}

		if result.AppliedCoupon != nil {
			if err := s.couponSvc.Redeem(tx, RedeemInput{
				Coupon:         result.AppliedCoupon,
				UserID:         input.UserID,
				UserEmail:      order.CustomerEmail,
				OrderID:        order.ID,
				OrderTotal:     order.TotalAmount,
				DiscountAmount: order.DiscountAmount,
			}); err != nil {
				return err
			}
		}

		if input.ClearCart && input.UserID != 0 && s.cartRepo != nil {
			if err := s.cartRepo.WithTx(tx).ClearByUser(input.UserID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStockInsufficient) || errors.Is(err, ErrCouponUsageLimit) {
			return nil, err
		}
		logger.Errorw("order_create_tx_failed", "order_no", order.OrderNo, "error", err)
		return nil, ErrOrderCreateFailed
	}

	s.enqueueStatusNotify(order.ID, constants.OrderStatusPending)

	full, err := s.orderRepo.GetByID(order.ID)
	if err == nil && full != nil {
		return full, nil
	}
	return order, nil
}

// PreviewOrder 订单金额预览（不落库）
func (s *OrderService) PreviewOrder(input CreateOrderInput) (*OrderPreview, error) {
	result, err := s.buildOrderResult(input)
	if err != nil {
		return nil, err
	}
	return &OrderPreview{
		Subtotal:       models.NewMoneyFromDecimal(result.Subtotal),
		TaxAmount:      models.NewMoneyFromDecimal(result.TaxAmount),
		DiscountAmount: models.NewMoneyFromDecimal(result.DiscountAmount),
		TotalAmount:    models.NewMoneyFromDecimal(result.TotalAmount),
	}, nil
}

func (s *OrderService) buildOrderResult(input CreateOrderInput) (*orderBuildResult, error) {
	if len(input.Items) == 0 {
		return nil, ErrCartEmpty
	}
	if strings.TrimSpace(input.PaymentMethod) == "" {
		return nil, ErrMissingPaymentMethod
	}

	// 相同菜品相同规格的重复行合并数量后再下单
	merged := make([]CreateOrderItem, 0, len(input.Items))
	keyIndex := make(map[string]int, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, ErrInvalidOrderItem
		}
		key := BuildCartKey(item.ProductID, item.Options)
		if pos, ok := keyIndex[key]; ok {
			merged[pos].Quantity += item.Quantity
			continue
		}
		keyIndex[key] = len(merged)
		merged = append(merged, item)
	}

	now := time.Now()
	subtotal := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(merged))
	for _, item := range merged {
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, ErrStoreUnavailable
		}
		if product == nil || !product.IsActive {
			return nil, ErrProductNotAvailable
		}
		options, err := normalizeItemOptions(product, item.Options)
		if err != nil {
			return nil, err
		}

		unitPrice := product.PriceAmount.Decimal.Round(2)
		if unitPrice.LessThan(decimal.Zero) {
			return nil, ErrInvalidOrderAmount
		}
		total := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		subtotal = subtotal.Add(total).Round(2)

		orderItems = append(orderItems, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   models.NewMoneyFromDecimal(unitPrice),
			Quantity:    item.Quantity,
			TotalPrice:  models.NewMoneyFromDecimal(total),
			Options:     options,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	taxAmount := subtotal.
		Mul(decimal.NewFromInt(constants.TaxRatePercent)).
		Div(decimal.NewFromInt(100)).
		Round(2)

	discountAmount := decimal.Zero
	var appliedCoupon *models.Coupon
	if code := strings.TrimSpace(input.CouponCode); code != "" {
		discount, coupon, err := s.couponSvc.Validate(code, models.NewMoneyFromDecimal(subtotal), input.UserID)
		if err != nil {
			return nil, err
		}
		discountAmount = discount.Decimal.Round(2)
		appliedCoupon = coupon
	}

	totalAmount := subtotal.Add(taxAmount).Sub(discountAmount).Round(2)
	if totalAmount.LessThan(decimal.Zero) {
		totalAmount = decimal.Zero
	}

	return &orderBuildResult{
		Items:          orderItems,
		Subtotal:       subtotal,
		TaxAmount:      taxAmount,
		DiscountAmount: discountAmount,
		TotalAmount:    totalAmount,
		AppliedCoupon:  appliedCoupon,
	}, nil
}

// CancelOrder 取消订单。
// 仅允许订单归属人或管理员操作，且仅 pending / confirmed 可取消。
// 状态更新、流水与库存回补在事务内；优惠券回滚在事务后尽力执行，
// 回滚失败只记日志，不回退已生效的取消。
func (s *OrderService) CancelOrder(orderID uint, userID uint, isAdmin bool, reason string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !isAdmin && order.UserID != userID {
		return nil, ErrForbidden
	}
	if !isCancellableStatus(order.Status) {
		return nil, ErrOrderCancelNotAllowed
	}

	actor := constants.StatusActorSystem
	if isAdmin {
		actor = fmt.Sprintf("admin:%d", userID)
	} else if userID != 0 {
		actor = fmt.Sprintf("user:%d", userID)
	}

	now := time.Now()
	fromStatus := order.Status
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		updates := map[string]interface{}{
			"canceled_at":   now,
			"canceled_by":   actor,
			"cancel_reason": strings.TrimSpace(reason),
			"updated_at":    now,
		}
		// 条件写入：并发取消竞争时只有一方命中，输家回滚整个事务
		affected, err := orderRepo.UpdateStatus(order.ID, constants.OrderStatusCancelled, updates, cancellableStatuses())
		if err != nil {
			return ErrOrderUpdateFailed
		}
		if affected == 0 {
			return ErrOrderCancelNotAllowed
		}
		for _, item := range order.Items {
			if _, err := productRepo.ReleaseStock(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		history := &models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: fromStatus,
			ToStatus:   constants.OrderStatusCancelled,
			Actor:      actor,
			Note:       strings.TrimSpace(reason),
			CreatedAt:  now,
		}
		return orderRepo.AppendHistory(history)
	})
	if err != nil {
		if errors.Is(err, ErrOrderCancelNotAllowed) {
			return nil, err
		}
		return nil, ErrOrderUpdateFailed
	}

	if order.CouponID != nil {
		if err := models.DB.Transaction(func(tx *gorm.DB) error {
			return s.couponSvc.Rollback(tx, order.ID)
		}); err != nil {
			logger.Warnw("order_coupon_rollback_failed",
				"order_id", order.ID,
				"order_no", order.OrderNo,
				"coupon_id", *order.CouponID,
				"error", err,
			)
		}
	}

	s.enqueueStatusNotify(order.ID, constants.OrderStatusCancelled)

	order.Status = constants.OrderStatusCancelled
	order.CanceledAt = &now
	order.CanceledBy = actor
	order.CancelReason = strings.TrimSpace(reason)
	order.UpdatedAt = now
	return order, nil
}

// UpdateStatusInput 管理端状态更新输入
type UpdateStatusInput struct {
	OrderID     uint
	Status      string
	Actor       string
	Note        string
	CourierLat  *float64
	CourierLng  *float64
	EstimatedAt *time.Time
}

// UpdateOrderStatus 管理端更新订单状态，按状态流转表校验合法性。
func (s *OrderService) UpdateOrderStatus(input UpdateStatusInput) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(input.OrderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	target := strings.TrimSpace(input.Status)
	if !isValidOrderStatus(target) {
		return nil, ErrOrderStatusInvalid
	}
	if order.Status == target {
		return order, nil
	}
	if target == constants.OrderStatusCancelled {
		adminID := parseActorID(input.Actor)
		return s.CancelOrder(order.ID, adminID, true, input.Note)
	}
	if !isTransitionAllowed(order.Status, target) {
		return nil, ErrOrderStatusInvalid
	}

	now := time.Now()
	updates := map[string]interface{}{
		"updated_at": now,
	}
	if target == constants.OrderStatusDelivered {
		updates["delivered_at"] = now
	}
	if input.CourierLat != nil && input.CourierLng != nil {
		updates["courier_lat"] = *input.CourierLat
		updates["courier_lng"] = *input.CourierLng
	}
	if input.EstimatedAt != nil {
		updates["estimated_delivery_at"] = *input.EstimatedAt
	}
	fromStatus := order.Status
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		// 以读到的原状态为条件写入，挡掉并发流转的丢失更新
		affected, err := orderRepo.UpdateStatus(order.ID, target, updates, []string{fromStatus})
		if err != nil {
			return ErrOrderUpdateFailed
		}
		if affected == 0 {
			return ErrOrderStatusInvalid
		}
		history := &models.OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: fromStatus,
			ToStatus:   target,
			Actor:      strings.TrimSpace(input.Actor),
			Note:       strings.TrimSpace(input.Note),
			CourierLat: input.CourierLat,
			CourierLng: input.CourierLng,
			CreatedAt:  now,
		}
		return orderRepo.AppendHistory(history)
	})
	if err != nil {
		if errors.Is(err, ErrOrderStatusInvalid) {
			return nil, err
		}
		return nil, ErrOrderUpdateFailed
	}

	s.enqueueStatusNotify(order.ID, target)

	order.Status = target
	order.UpdatedAt = now
	if target == constants.OrderStatusDelivered {
		order.DeliveredAt = &now
	}
	if input.CourierLat != nil && input.CourierLng != nil {
		order.CourierLat = input.CourierLat
		order.CourierLng = input.CourierLng
	}
	if input.EstimatedAt != nil {
		order.EstimatedAt = input.EstimatedAt
	}
	return order, nil
}

// GetOrderByUser 获取用户订单详情
func (s *OrderService) GetOrderByUser(orderID uint, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetOrderForAdmin 管理端订单详情
func (s *OrderService) GetOrderForAdmin(orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrdersByUser 获取用户订单列表
func (s *OrderService) ListOrdersByUser(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.UserID == 0 {
		return nil, 0, ErrOrderFetchFailed
	}
	orders, total, err := s.orderRepo.ListByUser(filter)
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	return orders, total, nil
}

// ListOrdersForAdmin 管理端订单列表
func (s *OrderService) ListOrdersForAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	orders, total, err := s.orderRepo.ListAdmin(filter)
	if err != nil {
		return nil, 0, ErrOrderFetchFailed
	}
	return orders, total, nil
}

// ListArchivedOrders 归档订单列表
func (s *OrderService) ListArchivedOrders(filter repository.ArchivedOrderListFilter) ([]models.ArchivedOrder, int64, error) {
	return s.archiveRepo.List(filter)
}

// MoveToHistoryResult 归档结果
type MoveToHistoryResult struct {
	Archived int `json:"archived"`
	Skipped  int `json:"skipped"`
}

// MoveToHistory 批量归档终态订单。
// 非终态订单跳过不报错；每单独立事务，单笔失败不影响其余。
func (s *OrderService) MoveToHistory(orderIDs []uint) (*MoveToHistoryResult, error) {
	result := &MoveToHistoryResult{}
	for _, id := range orderIDs {
		order, err := s.orderRepo.GetByID(id)
		if err != nil {
			return result, ErrOrderFetchFailed
		}
		if order == nil || !isTerminalStatus(order.Status) {
			result.Skipped++
			continue
		}
		if err := s.archiveOrder(order); err != nil {
			logger.Errorw("order_archive_failed", "order_id", id, "error", err)
			result.Skipped++
			continue
		}
		result.Archived++
	}
	return result, nil
}

// AutoCleanup 归档超过保留期的终态订单，返回归档数量。
func (s *OrderService) AutoCleanup() (int, error) {
	retention := s.retentionDays
	if retention <= 0 {
		retention = 30
	}
	cutoff := time.Now().AddDate(0, 0, -retention)
	orders, err := s.orderRepo.ListTerminalBefore(terminalStatuses(), cutoff, 200)
	if err != nil {
		return 0, ErrOrderFetchFailed
	}
	archived := 0
	for i := range orders {
		if err := s.archiveOrder(&orders[i]); err != nil {
			logger.Errorw("order_auto_cleanup_archive_failed", "order_id", orders[i].ID, "error", err)
			continue
		}
		archived++
	}
	return archived, nil
}

// archiveOrder 单笔订单归档：快照写入归档表并从活动表删除，同一事务内完成。
func (s *OrderService) archiveOrder(order *models.Order) error {
	if order == nil {
		return ErrOrderNotFound
	}
	if !isTerminalStatus(order.Status) {
		return ErrOrderNotTerminal
	}
	snapshot, err := buildOrderSnapshot(order)
	if err != nil {
		return err
	}
	now := time.Now()
	archived := &models.ArchivedOrder{
		OrderID:     order.ID,
		OrderNo:     order.OrderNo,
		UserID:      order.UserID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Snapshot:    snapshot,
		OrderedAt:   order.CreatedAt,
		ArchivedAt:  now,
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.archiveRepo.WithTx(tx).Create(archived); err != nil {
			return err
		}
		return s.orderRepo.WithTx(tx).Delete(order.ID)
	})
}

func (s *OrderService) enqueueStatusNotify(orderID uint, status string) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	if err := s.queueClient.EnqueueOrderStatusNotify(queue.OrderStatusNotifyPayload{
		OrderID: orderID,
		Status:  status,
	}); err != nil {
		logger.Warnw("order_enqueue_status_notify_failed",
			"order_id", orderID,
			"status", status,
			"error", err,
		)
	}
}

// buildOrderSnapshot 生成订单完整 JSON 快照
func buildOrderSnapshot(order *models.Order) (models.JSON, error) {
	raw, err := json.Marshal(order)
	if err != nil {
		return nil, err
	}
	snapshot := models.JSON{}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// generateOrderNo 生成订单编号：前缀 + 创建时间毫秒戳末 6 位
func generateOrderNo(now time.Time) string {
	millis := now.UnixMilli()
	return fmt.Sprintf("%s%06d", constants.OrderNoPrefix, millis%1000000)
}

func normalizeDeliveryType(raw string) string {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "delivery":
		return "delivery"
	default:
		return "pickup"
	}
}

// normalizeItemOptions 校验下单项的规格选项并生成快照
func normalizeItemOptions(product *models.Product, selected map[string]string) (models.JSON, error) {
	if len(selected) == 0 {
		return models.JSON{}, nil
	}
	normalized := models.JSON{}
	for key, value := range selected {
		option := product.FindOption(key)
		if option == nil {
			return nil, ErrProductOptionInvalid
		}
		valid := false
		for _, choice := range option.Choices {
			if choice.Value == value {
				valid = true
				break
			}
		}
		if !valid {
			return nil, ErrProductOptionInvalid
		}
		normalized[key] = value
	}
	return normalized, nil
}

func parseActorID(actor string) uint {
	trimmed := strings.TrimSpace(actor)
	idx := strings.IndexByte(trimmed, ':')
	if idx < 0 {
		return 0
	}
	var id uint
	if _, err := fmt.Sscanf(trimmed[idx+1:], "%d", &id); err != nil {
		return 0
	}
	return id
}

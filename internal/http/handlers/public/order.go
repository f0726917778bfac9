package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/bistro-next/internal/http/response"
	"github.com/bistro-next/internal/repository"
	"github.com/bistro-next/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest 订单项请求
type OrderItemRequest struct {
	ProductID uint              `json:"product_id" binding:"required"`
	Quantity  int               `json:"quantity" binding:"required"`
	Options   map[string]string `json:"options"`
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" binding:"required"`
	PaymentMethod   string             `json:"payment_method"`
	DeliveryType    string             `json:"delivery_type"`
	DeliveryAddress string             `json:"delivery_address"`
	Phone           string             `json:"phone"`
	Note            string             `json:"order_note"`
	CouponCode      string             `json:"coupon_code"`
	CustomerName    string             `json:"customer_name"`
	ClearCart       bool               `json:"clear_cart"`
}

func (h *Handler) buildCreateOrderInput(c *gin.Context, uid uint, req CreateOrderRequest) service.CreateOrderInput {
	var items []service.CreateOrderItem
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Options:   item.Options,
		})
	}
	// 请求未显式携码时沿用挂在购物车上的优惠码
	couponCode := strings.TrimSpace(req.CouponCode)
	if couponCode == "" {
		couponCode = h.CartService.AppliedCouponCode(uid)
	}
	return service.CreateOrderInput{
		UserID:          uid,
		UserEmail:       getUserEmail(c),
		UserName:        req.CustomerName,
		Items:           items,
		PaymentMethod:   req.PaymentMethod,
		DeliveryType:    req.DeliveryType,
		DeliveryAddress: req.DeliveryAddress,
		Phone:           req.Phone,
		Note:            req.Note,
		CouponCode:      couponCode,
		ClientIP:        c.ClientIP(),
		ClearCart:       req.ClearCart,
	}
}

// PreviewOrder 订单金额预览（不落库）
func (h *Handler) PreviewOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	preview, err := h.OrderService.PreviewOrder(h.buildCreateOrderInput(c, uid, req))
	if err != nil {
		respondOrderPreviewError(c, err)
		return
	}
	response.Success(c, preview)
}

// CreateOrder 创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	order, err := h.OrderService.CreateOrder(h.buildCreateOrderInput(c, uid, req))
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}
	response.Success(c, order)
}

// ListOrders 获取订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	orders, total, err := h.OrderService.ListOrdersByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   strings.TrimSpace(c.Query("status")),
		OrderNo:  strings.TrimSpace(c.Query("order_no")),
	})
	if err != nil {
		respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		return
	}

	pagination := response.BuildPagination(page, pageSize, total)
	response.SuccessWithPage(c, orders, pagination)
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id is invalid", nil)
		return
	}

	order, err := h.OrderService.GetOrderByUser(uint(orderID), uid)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		return
	}
	response.Success(c, order)
}

// CancelOrder 用户取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id is invalid", nil)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	order, err := h.OrderService.CancelOrder(uint(orderID), uid, false, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrForbidden):
			respondError(c, response.CodeForbidden, "you cannot cancel this order", nil)
		case errors.Is(err, service.ErrOrderCancelNotAllowed):
			respondError(c, response.CodeBadRequest, "order can no longer be cancelled", nil)
		default:
			respondError(c, response.CodeInternal, "order cancellation failed", err)
		}
		return
	}
	response.Success(c, order)
}

package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/bistro-next/internal/http/response"
	"github.com/bistro-next/internal/repository"
	"github.com/bistro-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminListOrders 后台订单列表
func (h *Handler) AdminListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		OrderNo:  strings.TrimSpace(c.Query("order_no")),
	}
	if userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64); userID > 0 {
		filter.UserID = uint(userID)
	}
	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "created_from must be RFC3339", nil)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "created_to must be RFC3339", nil)
		return
	}
	filter.CreatedFrom = createdFrom
	filter.CreatedTo = createdTo

	orders, total, err := h.OrderService.ListOrdersForAdmin(filter)
	if err != nil {
		respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// AdminGetOrder 后台订单详情，带状态流水
func (h *Handler) AdminGetOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id is invalid", nil)
		return
	}

	order, err := h.OrderService.GetOrderForAdmin(uint(orderID))
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

// AdminUpdateOrderStatusRequest 状态更新请求
type AdminUpdateOrderStatusRequest struct {
	Status   string `json:"status" binding:"required"`
	Note     string `json:"note"`
	Location *struct {
		Lat float64 `json:"lat" binding:"required"`
		Lng float64 `json:"lng" binding:"required"`
	} `json:"location"`
	EstimatedDeliveryTime string `json:"estimated_delivery_time"`
}

// AdminUpdateOrderStatus 后台更新订单状态
func (h *Handler) AdminUpdateOrderStatus(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id is invalid", nil)
		return
	}

	var req AdminUpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	estimatedAt, err := parseTimeNullable(strings.TrimSpace(req.EstimatedDeliveryTime))
	if err != nil {
		respondError(c, response.CodeBadRequest, "estimated_delivery_time must be RFC3339", nil)
		return
	}

	input := service.UpdateStatusInput{
		OrderID:     uint(orderID),
		Status:      req.Status,
		Actor:       adminActor(adminID),
		Note:        req.Note,
		EstimatedAt: estimatedAt,
	}
	if req.Location != nil {
		input.CourierLat = &req.Location.Lat
		input.CourierLng = &req.Location.Lng
	}

	order, err := h.OrderService.UpdateOrderStatus(input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "status transition is not allowed", nil)
		case errors.Is(err, service.ErrStoreUnavailable):
			respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		default:
			respondError(c, response.CodeInternal, "order status update failed", err)
		}
		return
	}
	response.Success(c, order)
}

// AdminMoveOrdersToHistoryRequest 手动归档请求
type AdminMoveOrdersToHistoryRequest struct {
	OrderIDs []uint `json:"order_ids" binding:"required"`
}

// AdminMoveOrdersToHistory 将终态订单移入历史表
func (h *Handler) AdminMoveOrdersToHistory(c *gin.Context) {
	var req AdminMoveOrdersToHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if len(req.OrderIDs) == 0 {
		respondError(c, response.CodeBadRequest, "order_ids must not be empty", nil)
		return
	}

	result, err := h.OrderService.MoveToHistory(req.OrderIDs)
	if err != nil {
		respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		return
	}
	response.Success(c, result)
}

// AdminOrderMaintenance 运维入口，?action=auto-cleanup 触发过期终态订单归档
func (h *Handler) AdminOrderMaintenance(c *gin.Context) {
	action := strings.TrimSpace(c.Query("action"))
	if action != "auto-cleanup" {
		respondError(c, response.CodeBadRequest, "unsupported action", nil)
		return
	}

	archived, err := h.OrderService.AutoCleanup()
	if err != nil {
		respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		return
	}
	response.Success(c, gin.H{"archived": archived})
}

// AdminListArchivedOrders 历史订单列表
func (h *Handler) AdminListArchivedOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ArchivedOrderListFilter{
		Page:     page,
		PageSize: pageSize,
		Status:   strings.TrimSpace(c.Query("status")),
		OrderNo:  strings.TrimSpace(c.Query("order_no")),
	}
	if userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64); userID > 0 {
		filter.UserID = uint(userID)
	}

	orders, total, err := h.OrderService.ListArchivedOrders(filter)
	if err != nil {
		respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

package public

import (
	"errors"
	"strings"

	"github.com/bistro-next/internal/http/response"
	"github.com/bistro-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CartItemRequest 购物车项请求
type CartItemRequest struct {
	ProductID uint              `json:"product_id" binding:"required"`
	Quantity  int               `json:"quantity" binding:"required"`
	Options   map[string]string `json:"options"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	summary, err := h.CartService.ListByUser(uid)
	if err != nil {
		respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		return
	}
	response.Success(c, summary)
}

// UpsertCartItem 添加/更新购物车项
func (h *Handler) UpsertCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	if req.Quantity <= 0 {
		cartKey := service.BuildCartKey(req.ProductID, req.Options)
		if err := h.CartService.RemoveItem(uid, cartKey); err != nil {
			respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
			return
		}
		response.Success(c, gin.H{"updated": true})
		return
	}
	if err := h.CartService.UpsertItem(service.UpsertCartItemInput{
		UserID:    uid,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Options:   req.Options,
	}); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrderItem):
			respondError(c, response.CodeBadRequest, "cart item is invalid", nil)
		case errors.Is(err, service.ErrProductNotAvailable):
			respondError(c, response.CodeBadRequest, "product is not available", nil)
		case errors.Is(err, service.ErrProductOptionInvalid):
			respondError(c, response.CodeBadRequest, "selected product option is invalid", nil)
		default:
			respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		}
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// DeleteCartItem 删除购物车行
func (h *Handler) DeleteCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	cartKey := strings.TrimSpace(c.Param("cart_key"))
	if cartKey == "" {
		respondError(c, response.CodeBadRequest, "cart item is invalid", nil)
		return
	}
	if err := h.CartService.RemoveItem(uid, cartKey); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOrderItem):
			respondError(c, response.CodeBadRequest, "cart item is invalid", nil)
		default:
			respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		}
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// AttachCartCouponRequest 整车优惠码请求
type AttachCartCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// AttachCartCoupon 校验并应用整车优惠码
func (h *Handler) AttachCartCoupon(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req AttachCartCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}
	discount, coupon, err := h.CartService.AttachCoupon(uid, req.Code)
	if err != nil {
		if errors.Is(err, service.ErrCartEmpty) {
			respondError(c, response.CodeBadRequest, "cart is empty", nil)
			return
		}
		respondCouponValidateError(c, err)
		return
	}
	response.Success(c, gin.H{
		"coupon":          coupon,
		"discount_amount": discount,
	})
}

// DetachCartCoupon 移除整车优惠码
func (h *Handler) DetachCartCoupon(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CartService.DetachCoupon(uid); err != nil {
		respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		return
	}
	response.Success(c, gin.H{"removed": true})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	if err := h.CartService.Clear(uid); err != nil {
		respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}

package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/bistro-next/internal/http/response"
	"github.com/bistro-next/internal/models"
	"github.com/bistro-next/internal/repository"
	"github.com/bistro-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateCouponRequest 创建优惠券请求
type CreateCouponRequest struct {
	Name                  string  `json:"name" binding:"required"`
	Code                  string  `json:"code" binding:"required"`
	Type                  string  `json:"type" binding:"required"`
	Value                 float64 `json:"value" binding:"required"`
	MinOrderAmount        float64 `json:"min_order_amount"`
	MaxDiscount           float64 `json:"max_discount"`
	UsageLimit            int     `json:"usage_limit"`
	PerUserLimit          int     `json:"per_user_limit"`
	ValidFrom             string  `json:"valid_from"`
	ValidUntil            string  `json:"valid_until"`
	IsActive              *bool   `json:"is_active"`
	ApplicableProductIDs  []uint  `json:"applicable_product_ids"`
	ApplicableCategoryIDs []uint  `json:"applicable_category_ids"`
	Description           string  `json:"description"`
}

// UpdateCouponRequest 更新优惠券请求，nil 字段保持原值
type UpdateCouponRequest struct {
	Name                  *string  `json:"name"`
	Type                  *string  `json:"type"`
	Value                 *float64 `json:"value"`
	MinOrderAmount        *float64 `json:"min_order_amount"`
	MaxDiscount           *float64 `json:"max_discount"`
	UsageLimit            *int     `json:"usage_limit"`
	PerUserLimit          *int     `json:"per_user_limit"`
	ValidFrom             *string  `json:"valid_from"`
	ValidUntil            *string  `json:"valid_until"`
	IsActive              *bool    `json:"is_active"`
	ApplicableProductIDs  []uint   `json:"applicable_product_ids"`
	ApplicableCategoryIDs []uint   `json:"applicable_category_ids"`
	Description           *string  `json:"description"`
}

func respondCouponAdminError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrCouponNotFound):
		respondError(c, response.CodeNotFound, "coupon not found", nil)
	case errors.Is(err, service.ErrCouponCodeExists):
		respondError(c, response.CodeConflict, "coupon code already exists", nil)
	case errors.Is(err, service.ErrCouponInUse):
		respondError(c, response.CodeConflict, "coupon has redemption records and cannot be deleted", nil)
	case errors.Is(err, service.ErrCouponInvalid):
		respondError(c, response.CodeBadRequest, "coupon fields are invalid", nil)
	case errors.Is(err, service.ErrStoreUnavailable):
		respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
	default:
		respondError(c, response.CodeInternal, fallback, err)
	}
}

// CreateCoupon 创建优惠券
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	validFrom, err := parseTimeNullable(req.ValidFrom)
	if err != nil {
		respondError(c, response.CodeBadRequest, "valid_from must be RFC3339", nil)
		return
	}
	validUntil, err := parseTimeNullable(req.ValidUntil)
	if err != nil {
		respondError(c, response.CodeBadRequest, "valid_until must be RFC3339", nil)
		return
	}

	coupon, err := h.CouponAdminService.Create(service.CreateCouponInput{
		Name:                  req.Name,
		Code:                  req.Code,
		Type:                  req.Type,
		Value:                 models.NewMoneyFromDecimal(decimal.NewFromFloat(req.Value)),
		MinOrderAmount:        models.NewMoneyFromDecimal(decimal.NewFromFloat(req.MinOrderAmount)),
		MaxDiscount:           models.NewMoneyFromDecimal(decimal.NewFromFloat(req.MaxDiscount)),
		UsageLimit:            req.UsageLimit,
		PerUserLimit:          req.PerUserLimit,
		ValidFrom:             validFrom,
		ValidUntil:            validUntil,
		IsActive:              req.IsActive,
		ApplicableProductIDs:  req.ApplicableProductIDs,
		ApplicableCategoryIDs: req.ApplicableCategoryIDs,
		Description:           req.Description,
	})
	if err != nil {
		respondCouponAdminError(c, err, "coupon creation failed")
		return
	}
	response.Success(c, coupon)
}

// GetAdminCoupons 获取优惠券列表
func (h *Handler) GetAdminCoupons(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.CouponListFilter{
		Page:     page,
		PageSize: pageSize,
		Code:     strings.TrimSpace(c.Query("code")),
		Type:     strings.TrimSpace(c.Query("type")),
	}
	if raw := strings.TrimSpace(c.Query("is_active")); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "is_active must be a boolean", nil)
			return
		}
		filter.IsActive = &active
	}

	coupons, total, err := h.CouponAdminService.List(filter)
	if err != nil {
		respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		return
	}
	response.SuccessWithPage(c, coupons, response.BuildPagination(page, pageSize, total))
}

// GetAdminCoupon 获取优惠券详情
func (h *Handler) GetAdminCoupon(c *gin.Context) {
	couponID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || couponID == 0 {
		respondError(c, response.CodeBadRequest, "coupon id is invalid", nil)
		return
	}

	coupon, err := h.CouponAdminService.Get(uint(couponID))
	if err != nil {
		respondCouponAdminError(c, err, "coupon fetch failed")
		return
	}
	response.Success(c, coupon)
}

// UpdateCoupon 部分更新优惠券
func (h *Handler) UpdateCoupon(c *gin.Context) {
	couponID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || couponID == 0 {
		respondError(c, response.CodeBadRequest, "coupon id is invalid", nil)
		return
	}

	var req UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	input := service.UpdateCouponInput{
		Name:                  req.Name,
		Type:                  req.Type,
		UsageLimit:            req.UsageLimit,
		PerUserLimit:          req.PerUserLimit,
		IsActive:              req.IsActive,
		ApplicableProductIDs:  req.ApplicableProductIDs,
		ApplicableCategoryIDs: req.ApplicableCategoryIDs,
		Description:           req.Description,
	}
	if req.Value != nil {
		value := models.NewMoneyFromDecimal(decimal.NewFromFloat(*req.Value))
		input.Value = &value
	}
	if req.MinOrderAmount != nil {
		amount := models.NewMoneyFromDecimal(decimal.NewFromFloat(*req.MinOrderAmount))
		input.MinOrderAmount = &amount
	}
	if req.MaxDiscount != nil {
		amount := models.NewMoneyFromDecimal(decimal.NewFromFloat(*req.MaxDiscount))
		input.MaxDiscount = &amount
	}
	if req.ValidFrom != nil {
		parsed, err := parseTimeNullable(*req.ValidFrom)
		if err != nil {
			respondError(c, response.CodeBadRequest, "valid_from must be RFC3339", nil)
			return
		}
		input.ValidFrom = parsed
	}
	if req.ValidUntil != nil {
		parsed, err := parseTimeNullable(*req.ValidUntil)
		if err != nil {
			respondError(c, response.CodeBadRequest, "valid_until must be RFC3339", nil)
			return
		}
		input.ValidUntil = parsed
	}

	coupon, err := h.CouponAdminService.Update(uint(couponID), input)
	if err != nil {
		respondCouponAdminError(c, err, "coupon update failed")
		return
	}
	response.Success(c, coupon)
}

// DeleteCoupon 删除优惠券
func (h *Handler) DeleteCoupon(c *gin.Context) {
	couponID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || couponID == 0 {
		respondError(c, response.CodeBadRequest, "coupon id is invalid", nil)
		return
	}

	if err := h.CouponAdminService.Delete(uint(couponID)); err != nil {
		respondCouponAdminError(c, err, "coupon deletion failed")
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// GetCouponUsages 获取核销台账
func (h *Handler) GetCouponUsages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	couponID, _ := strconv.ParseUint(c.Query("coupon_id"), 10, 64)
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)

	usages, total, err := h.CouponAdminService.ListUsages(repository.CouponUsageListFilter{
		Page:     page,
		PageSize: pageSize,
		CouponID: uint(couponID),
		UserID:   uint(userID),
	})
	if err != nil {
		respondError(c, response.CodeUnavailable, "store temporarily unavailable", err)
		return
	}
	response.SuccessWithPage(c, usages, response.BuildPagination(page, pageSize, total))
}

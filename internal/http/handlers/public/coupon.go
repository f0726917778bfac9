package public

import (
	"github.com/bistro-next/internal/http/response"
	"github.com/bistro-next/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ValidateCouponRequest 校验优惠券请求
type ValidateCouponRequest struct {
	Code       string          `json:"code" binding:"required"`
	OrderTotal decimal.Decimal `json:"order_total"`
}

// ValidateCoupon 校验优惠券并返回折扣金额。
// 只读预检，不占用券额度；真正的核销发生在下单事务内。
func (h *Handler) ValidateCoupon(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	discount, coupon, err := h.CouponService.Validate(req.Code, models.NewMoneyFromDecimal(req.OrderTotal), uid)
	if err != nil {
		respondCouponValidateError(c, err)
		return
	}

	response.Success(c, gin.H{
		"coupon":          coupon,
		"discount_amount": discount,
	})
}

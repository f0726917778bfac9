package public

import (
	"errors"
	"fmt"

	"github.com/bistro-next/internal/http/response"
	"github.com/bistro-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
// msgf 非空时从错误中提取细节拼出消息，取不到再退回静态 msg。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
	msgf   func(err error) string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			msg := rule.msg
			if rule.msgf != nil {
				if detailed := rule.msgf(err); detailed != "" {
					msg = detailed
				}
			}
			respondError(c, rule.code, msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

// couponMinAmountMessage 门槛不足的提示必须带上门槛金额
func couponMinAmountMessage(err error) string {
	var minErr *service.CouponMinAmountError
	if !errors.As(err, &minErr) {
		return ""
	}
	return fmt.Sprintf("order total is below the coupon minimum of %s", minErr.MinOrderAmount.Decimal.StringFixed(2))
}

// couponPerUserLimitMessage 个人上限的提示必须带上限次数
func couponPerUserLimitMessage(err error) string {
	var limitErr *service.CouponPerUserLimitError
	if !errors.As(err, &limitErr) {
		return ""
	}
	return fmt.Sprintf("you have already used this coupon the maximum of %d times", limitErr.Limit)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

// couponValidateErrorRules 券校验失败一律 400，消息区分具体原因
var couponValidateErrorRules = []mappedHandlerError{
	{target: service.ErrCouponInvalid, code: response.CodeBadRequest, msg: "coupon code is invalid"},
	{target: service.ErrCouponNotFound, code: response.CodeBadRequest, msg: "coupon code not found"},
	{target: service.ErrCouponInactive, code: response.CodeBadRequest, msg: "coupon is not active"},
	{target: service.ErrCouponNotStarted, code: response.CodeBadRequest, msg: "coupon is not valid yet"},
	{target: service.ErrCouponExpired, code: response.CodeBadRequest, msg: "coupon has expired"},
	{target: service.ErrCouponMinAmount, code: response.CodeBadRequest, msg: "order total is below the coupon minimum", msgf: couponMinAmountMessage},
	{target: service.ErrCouponUsageLimit, code: response.CodeBadRequest, msg: "coupon usage limit reached"},
	{target: service.ErrCouponPerUserLimit, code: response.CodeBadRequest, msg: "you have already used this coupon the maximum number of times", msgf: couponPerUserLimitMessage},
	{target: service.ErrInvalidOrderAmount, code: response.CodeBadRequest, msg: "order total must be greater than zero"},
	{target: service.ErrStoreUnavailable, code: response.CodeUnavailable, msg: "store temporarily unavailable"},
}

var orderCommonErrorRules = []mappedHandlerError{
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, msg: "order must contain at least one item"},
	{target: service.ErrMissingPaymentMethod, code: response.CodeBadRequest, msg: "payment method is required"},
	{target: service.ErrInvalidOrderItem, code: response.CodeBadRequest, msg: "order item is invalid"},
	{target: service.ErrInvalidOrderAmount, code: response.CodeBadRequest, msg: "order amount is invalid"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, msg: "product is not available"},
	{target: service.ErrProductOptionInvalid, code: response.CodeBadRequest, msg: "selected product option is invalid"},
	{target: service.ErrStoreUnavailable, code: response.CodeUnavailable, msg: "store temporarily unavailable"},
}

var orderCreateExtraErrorRules = []mappedHandlerError{
	{target: service.ErrStockInsufficient, code: response.CodeConflict, msg: "insufficient stock for one or more items"},
	// 条件核销竞争到上限
	{target: service.ErrCouponUsageLimit, code: response.CodeConflict, msg: "coupon usage limit reached"},
}

func respondOrderPreviewError(c *gin.Context, err error) {
	respondWithMappedError(c, err,
		concatMappedHandlerErrors(orderCommonErrorRules, couponValidateErrorRules),
		response.CodeInternal, "order preview failed")
}

func respondOrderCreateError(c *gin.Context, err error) {
	respondWithMappedError(c, err,
		concatMappedHandlerErrors(orderCommonErrorRules, orderCreateExtraErrorRules, couponValidateErrorRules),
		response.CodeInternal, "order creation failed")
}

func respondCouponValidateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, couponValidateErrorRules,
		response.CodeInternal, "coupon validation failed")
}

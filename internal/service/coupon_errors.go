package service

import (
	"fmt"

	"github.com/bistro-next/internal/models"
)

// CouponMinAmountError 未达使用门槛，携带门槛金额供提示拼接
type CouponMinAmountError struct {
	MinOrderAmount models.Money
}

func (e *CouponMinAmountError) Error() string {
	return fmt.Sprintf("%s（最低消费 %s）", ErrCouponMinAmount.Error(), e.MinOrderAmount.Decimal.StringFixed(2))
}

func (e *CouponMinAmountError) Unwrap() error { return ErrCouponMinAmount }

// CouponPerUserLimitError 达到个人使用上限，携带上限次数
type CouponPerUserLimitError struct {
	Limit int
}

func (e *CouponPerUserLimitError) Error() string {
	return fmt.Sprintf("%s（限 %d 次）", ErrCouponPerUserLimit.Error(), e.Limit)
}

func (e *CouponPerUserLimitError) Unwrap() error { return ErrCouponPerUserLimit }

package orders

import (
	"errors"
	"fmt"
)

var (
	ErrItemNotFound         = errors.New("item not found")
	ErrInvalidPlan          = errors.New("invalid plan type")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInstallmentsDisabled = errors.New("installments not enabled for this course")
	ErrCouponUnusable       = errors.New("coupon is invalid or fully used")
	ErrCouponExpired        = errors.New("coupon has expired")
	ErrInvalidSignature     = errors.New("payment signature verification failed")
	ErrOrderNotFound        = errors.New("order not found")
)

// MinOrderError is returned when the cart total is below a coupon's minimum.
type MinOrderError struct {
	Min float64
}

func (e MinOrderError) Error() string {
	return fmt.Sprintf("min order value is ₹%g", e.Min)
}

package orders

import (
	"math"
	"time"

	"github.com/vidyaprep/backend/internal/models"
)

// CoursePrice resolves the chargeable base amount for a course purchase.
// Installment purchases are charged the first part only; the second part is
// collected through a later order against the same course.
func CoursePrice(course *models.Course, plan models.PlanType, payment models.PaymentType) (float64, error) {
	if plan != models.PlanLive && plan != models.PlanRecorded {
		return 0, ErrInvalidPlan
	}
	var amount float64
	if payment == models.PaymentInstallment {
		if !course.Pricing.Installment.Enabled {
			return 0, ErrInstallmentsDisabled
		}
		amount = course.Pricing.Installment.PricePart1
	} else if plan == models.PlanLive {
		amount = course.Pricing.Live
	} else {
		amount = course.Pricing.Recorded
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// MasterclassPrice resolves the chargeable amount for a masterclass seat. The
// discounted price is always the one charged.
func MasterclassPrice(mc *models.Masterclass) (float64, error) {
	amount := mc.Price.Discounted
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return amount, nil
}

// ApplyCoupon checks a claimed coupon against the base amount and returns the
// discounted total. The caller has already consumed the claim; a failure here
// does not hand the use back. The charged amount keeps the exact discount;
// rounding only happens at the paise conversion.
func ApplyCoupon(base float64, cp *models.Coupon, now time.Time) (float64, error) {
	if cp.Expired(now) {
		return 0, ErrCouponExpired
	}
	if base < cp.MinOrderValue {
		return 0, MinOrderError{Min: cp.MinOrderValue}
	}
	return base - cp.Discount(base), nil
}

// Paise converts a rupee amount to the integer paise the gateway expects.
func Paise(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Coupon discount kinds.
const (
	DiscountFlat       = "flat"
	DiscountPercentage = "percentage"
)

// Coupon is a discount code with an optional usage limit. UsedCount only moves
// through the atomic claim in the coupons repository and never exceeds
// UsageLimit when a limit is set.
type Coupon struct {
	ID            uuid.UUID  `json:"id"`
	Code          string     `json:"code"`
	DiscountType  string     `json:"discount_type"`
	DiscountValue float64    `json:"discount_value"`
	MinOrderValue float64    `json:"min_order_value"`
	ValidUntil    *time.Time `json:"valid_until,omitempty"`
	IsActive      bool       `json:"is_active"`
	UsageLimit    *int       `json:"usage_limit,omitempty"` // nil = unlimited
	UsedCount     int        `json:"used_count"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Expired reports whether the coupon's expiry has passed. Coupons without a
// ValidUntil never expire.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ValidUntil != nil && now.After(*c.ValidUntil)
}

// Discount returns the discount for a base amount, capped at the base so the
// payable amount never goes negative.
func (c *Coupon) Discount(base float64) float64 {
	var d float64
	if c.DiscountType == DiscountPercentage {
		d = base * c.DiscountValue / 100
	} else {
		d = c.DiscountValue
	}
	if d > base {
		d = base
	}
	return d
}

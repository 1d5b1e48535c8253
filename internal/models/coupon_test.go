package models

import (
	"testing"
	"time"
)

func TestCouponDiscount(t *testing.T) {
	tests := []struct {
		name   string
		coupon Coupon
		base   float64
		want   float64
	}{
		{"ten percent", Coupon{DiscountType: DiscountPercentage, DiscountValue: 10}, 1000, 100},
		{"percentage of odd base", Coupon{DiscountType: DiscountPercentage, DiscountValue: 10}, 999, 99.9},
		{"flat", Coupon{DiscountType: DiscountFlat, DiscountValue: 150}, 1000, 150},
		{"flat capped at base", Coupon{DiscountType: DiscountFlat, DiscountValue: 500}, 300, 300},
		{"hundred percent", Coupon{DiscountType: DiscountPercentage, DiscountValue: 100}, 800, 800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.coupon.Discount(tt.base); got != tt.want {
				t.Fatalf("Discount(%v) = %v, want %v", tt.base, got, tt.want)
			}
		})
	}
}

func TestCouponExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	c := Coupon{}
	if c.Expired(now) {
		t.Fatal("coupon without ValidUntil must never expire")
	}
	c.ValidUntil = &future
	if c.Expired(now) {
		t.Fatal("future expiry reported as expired")
	}
	c.ValidUntil = &past
	if !c.Expired(now) {
		t.Fatal("past expiry not reported")
	}
	c.ValidUntil = &now
	if c.Expired(now) {
		t.Fatal("a coupon is usable through its exact expiry instant")
	}
}

package orders

import (
	"errors"
	"testing"
	"time"

	"github.com/vidyaprep/backend/internal/models"
)

func testCourse() *models.Course {
	return &models.Course{
		Title: "Algebra Crash Course",
		Pricing: models.CoursePricing{
			Recorded: 1000,
			Live:     1500,
			Installment: models.InstallmentPlan{
				Enabled:    true,
				PricePart1: 500,
				PricePart2: 600,
				TotalParts: 2,
			},
		},
	}
}

func TestCoursePrice(t *testing.T) {
	tests := []struct {
		name    string
		plan    models.PlanType
		payment models.PaymentType
		mutate  func(*models.Course)
		want    float64
		wantErr error
	}{
		{"recorded full", models.PlanRecorded, models.PaymentFull, nil, 1000, nil},
		{"live full", models.PlanLive, models.PaymentFull, nil, 1500, nil},
		{"installment charges first part", models.PlanRecorded, models.PaymentInstallment, nil, 500, nil},
		{"live installment charges first part", models.PlanLive, models.PaymentInstallment, nil, 500, nil},
		{"masterclass plan rejected for courses", models.PlanMasterclass, models.PaymentFull, nil, 0, ErrInvalidPlan},
		{"unknown plan rejected", models.PlanType("weekend"), models.PaymentFull, nil, 0, ErrInvalidPlan},
		{
			"installment disabled",
			models.PlanRecorded, models.PaymentInstallment,
			func(c *models.Course) { c.Pricing.Installment.Enabled = false },
			0, ErrInstallmentsDisabled,
		},
		{
			"zero price rejected",
			models.PlanRecorded, models.PaymentFull,
			func(c *models.Course) { c.Pricing.Recorded = 0 },
			0, ErrInvalidAmount,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			course := testCourse()
			if tt.mutate != nil {
				tt.mutate(course)
			}
			got, err := CoursePrice(course, tt.plan, tt.payment)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("amount = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMasterclassPrice(t *testing.T) {
	mc := &models.Masterclass{Price: models.MasterclassPrice{Original: 999, Discounted: 499}}
	got, err := MasterclassPrice(mc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 499 {
		t.Fatalf("amount = %v, want the discounted price 499", got)
	}

	mc.Price.Discounted = 0
	if _, err := MasterclassPrice(mc); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
}

func TestApplyCoupon(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(24 * time.Hour)

	tests := []struct {
		name    string
		base    float64
		coupon  models.Coupon
		want    float64
		wantErr error
	}{
		{
			"ten percent off",
			1000,
			models.Coupon{DiscountType: models.DiscountPercentage, DiscountValue: 10},
			900, nil,
		},
		{
			"fractional percentage discount kept exact",
			1015,
			models.Coupon{DiscountType: models.DiscountPercentage, DiscountValue: 10},
			// the full 101.5 comes off; rounding waits for the paise conversion
			913.5, nil,
		},
		{
			"flat fifty",
			500,
			models.Coupon{DiscountType: models.DiscountFlat, DiscountValue: 50},
			450, nil,
		},
		{
			"flat discount capped at base",
			100,
			models.Coupon{DiscountType: models.DiscountFlat, DiscountValue: 500},
			0, nil,
		},
		{
			"cap on fractional base still reaches zero",
			99.5,
			models.Coupon{DiscountType: models.DiscountFlat, DiscountValue: 200},
			0, nil,
		},
		{
			"expired coupon",
			1000,
			models.Coupon{DiscountType: models.DiscountFlat, DiscountValue: 50, ValidUntil: &past},
			0, ErrCouponExpired,
		},
		{
			"future expiry still valid",
			1000,
			models.Coupon{DiscountType: models.DiscountFlat, DiscountValue: 50, ValidUntil: &future},
			950, nil,
		},
		{
			"below minimum order",
			400,
			models.Coupon{DiscountType: models.DiscountFlat, DiscountValue: 50, MinOrderValue: 500},
			0, MinOrderError{Min: 500},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyCoupon(tt.base, &tt.coupon, now)
			if tt.wantErr != nil {
				var minErr MinOrderError
				if errors.As(tt.wantErr, &minErr) {
					var gotMin MinOrderError
					if !errors.As(err, &gotMin) || gotMin.Min != minErr.Min {
						t.Fatalf("err = %v, want %v", err, tt.wantErr)
					}
				} else if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("total = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPaise(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{1000, 100000},
		{499.99, 49999},
		{0.1 + 0.2, 30}, // float noise must round away
		{900, 90000},
	}
	for _, tt := range tests {
		if got := Paise(tt.amount); got != tt.want {
			t.Fatalf("Paise(%v) = %d, want %d", tt.amount, got, tt.want)
		}
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanType selects the delivery variant of a purchase.
type PlanType string

const (
	PlanRecorded    PlanType = "recorded"
	PlanLive        PlanType = "live"
	PlanMasterclass PlanType = "masterclass"
)

// PaymentType selects full payment or the two-part installment schedule.
type PaymentType string

const (
	PaymentFull        PaymentType = "full"
	PaymentInstallment PaymentType = "installment"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending OrderStatus = "pending"
	OrderPaid    OrderStatus = "paid"
	OrderFailed  OrderStatus = "failed"
)

// orderTransitions is the explicit transition table for OrderStatus.
// pending -> failed is defined but currently unreachable: the gateway callback
// only ever reports success, and no handler marks an order failed yet.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderPaid, OrderFailed},
	OrderPaid:    {},
	OrderFailed:  {},
}

// CanTransition reports whether status from can move to status to.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, t := range orderTransitions[s] {
		if t == to {
			return true
		}
	}
	return false
}

// Order is a persisted intent-to-pay for exactly one catalog item. It is
// created pending before the gateway charge exists and becomes paid only via a
// verified checkout callback. Amount is in rupees; paise rounding happens at
// the gateway boundary only.
type Order struct {
	ID                uuid.UUID   `json:"id"`
	UserID            uuid.UUID   `json:"user_id"`
	ItemKind          ItemKind    `json:"item_kind"`
	ItemID            uuid.UUID   `json:"item_id"`
	Amount            float64     `json:"amount"`
	PlanType          PlanType    `json:"plan_type"`
	PaymentType       PaymentType `json:"payment_type"`
	RazorpayOrderID   string      `json:"razorpay_order_id"`
	RazorpayPaymentID string      `json:"razorpay_payment_id,omitempty"`
	RazorpaySignature string      `json:"-"`
	Status            OrderStatus `json:"status"`
	CouponUsed        string      `json:"coupon_used,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment payment completion values. An installment purchase starts partial
// and becomes full when the second part is verified.
const (
	EnrollmentPartial = "partial"
	EnrollmentFull    = "full"
)

// Enrollment is a buyer's access record for one catalog item. The store holds
// at most one row per (user, item kind, item id).
type Enrollment struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	ItemKind         ItemKind  `json:"item_kind"`
	ItemID           uuid.UUID `json:"item_id"`
	PlanType         PlanType  `json:"plan_type"`
	PaymentStatus    string    `json:"payment_status"`
	AmountPaid       float64   `json:"amount_paid"`
	PurchasedAt      time.Time `json:"purchased_at"`
	Progress         float64   `json:"progress"`
	CompletedLessons []string  `json:"completed_lessons,omitempty"`
	CertificateURL   *string   `json:"certificate_url,omitempty"`
}

// EnrollmentWithItem is an enrollment joined with the catalog item's display
// fields, for the buyer's library page.
type EnrollmentWithItem struct {
	Enrollment
	ItemTitle string `json:"item_title"`
	ItemSlug  string `json:"item_slug"`
	ItemImage string `json:"item_image,omitempty"`
}

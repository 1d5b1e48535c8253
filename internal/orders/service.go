package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vidyaprep/backend/internal/models"
	"github.com/vidyaprep/backend/internal/payments"
	"github.com/vidyaprep/backend/pkg/queue"
)

// Store persists orders.
type Store interface {
	Create(ctx context.Context, o *models.Order) error
	GetByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*models.Order, error)
	MarkPaid(ctx context.Context, id uuid.UUID, paymentID, signature string) error
}

// CouponClaimer atomically consumes one use of a coupon. A nil coupon with a
// nil error means the code was missing, inactive or fully used.
type CouponClaimer interface {
	Claim(ctx context.Context, code string) (*models.Coupon, error)
}

// UserStore looks up buyers.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// CourseStore is the slice of the course repository the order flow needs.
type CourseStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	IncrementEnrolled(ctx context.Context, id uuid.UUID) error
}

// MasterclassStore is the slice of the masterclass repository the order flow
// needs.
type MasterclassStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Masterclass, error)
	IncrementEnrolled(ctx context.Context, id uuid.UUID) error
}

// EnrollmentStore grants and upgrades access records.
type EnrollmentStore interface {
	Find(ctx context.Context, userID uuid.UUID, kind models.ItemKind, itemID uuid.UUID) (*models.Enrollment, error)
	Create(ctx context.Context, e *models.Enrollment) error
	CompleteInstallment(ctx context.Context, id uuid.UUID, amount float64) error
}

// Enqueuer hands confirmation jobs to the background worker.
type Enqueuer interface {
	EnqueueConfirmation(ctx context.Context, p queue.ConfirmationPayload) error
}

// Service runs order creation and payment verification.
type Service struct {
	orders        Store
	coupons       CouponClaimer
	users         UserStore
	courses       CourseStore
	masterclasses MasterclassStore
	enrollments   EnrollmentStore
	gateway       payments.Gateway
	enqueuer      Enqueuer
	logger        *zap.Logger
	now           func() time.Time
}

func NewService(orders Store, coupons CouponClaimer, users UserStore,
	courses CourseStore, masterclasses MasterclassStore, enrollments EnrollmentStore,
	gateway payments.Gateway, enqueuer Enqueuer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		orders:        orders,
		coupons:       coupons,
		users:         users,
		courses:       courses,
		masterclasses: masterclasses,
		enrollments:   enrollments,
		gateway:       gateway,
		enqueuer:      enqueuer,
		logger:        logger,
		now:           time.Now,
	}
}

// CreateOrderInput describes a purchase request.
type CreateOrderInput struct {
	UserID      uuid.UUID
	ItemKind    models.ItemKind
	ItemID      uuid.UUID
	PlanType    models.PlanType
	PaymentType models.PaymentType
	CouponCode  string
}

// CreateOrderResult is what the checkout page needs to open the gateway widget.
type CreateOrderResult struct {
	Order     *models.Order `json:"order"`
	KeyID     string        `json:"key_id"`
	Currency  string        `json:"currency"`
	Amount    int64         `json:"amount_paise"`
	ItemTitle string        `json:"item_title"`
}

// CreateOrder prices the item, consumes any coupon, registers the charge with
// the gateway and persists a pending order. A coupon use claimed here is not
// handed back if a later step fails.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderResult, error) {
	var (
		amount  float64
		receipt string
		title   string
		err     error
	)

	switch in.ItemKind {
	case models.ItemCourse:
		course, cerr := s.courses.GetByID(ctx, in.ItemID)
		if cerr != nil {
			return nil, cerr
		}
		if course == nil {
			return nil, ErrItemNotFound
		}
		amount, err = CoursePrice(course, in.PlanType, in.PaymentType)
		if err != nil {
			return nil, err
		}
		title = course.Title
		receipt = fmt.Sprintf("rcpt_%d", s.now().UnixMilli())
	case models.ItemMasterclass:
		mc, merr := s.masterclasses.GetByID(ctx, in.ItemID)
		if merr != nil {
			return nil, merr
		}
		if mc == nil {
			return nil, ErrItemNotFound
		}
		amount, err = MasterclassPrice(mc)
		if err != nil {
			return nil, err
		}
		title = mc.Title
		in.PlanType = models.PlanMasterclass
		in.PaymentType = models.PaymentFull
		uid := in.UserID.String()
		receipt = fmt.Sprintf("mc_rcpt_%d_%s", s.now().UnixMilli(), uid[len(uid)-6:])
	default:
		return nil, ErrItemNotFound
	}

	if in.CouponCode != "" {
		cp, cerr := s.coupons.Claim(ctx, in.CouponCode)
		if cerr != nil {
			return nil, cerr
		}
		if cp == nil {
			return nil, ErrCouponUnusable
		}
		amount, err = ApplyCoupon(amount, cp, s.now())
		if err != nil {
			return nil, err
		}
	}

	paise := Paise(amount)
	gwOrderID, err := s.gateway.CreateOrder(paise, "INR", receipt, map[string]interface{}{
		"user_id":   in.UserID.String(),
		"item_id":   in.ItemID.String(),
		"item_kind": string(in.ItemKind),
	})
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:          in.UserID,
		ItemKind:        in.ItemKind,
		ItemID:          in.ItemID,
		Amount:          amount,
		PlanType:        in.PlanType,
		PaymentType:     in.PaymentType,
		RazorpayOrderID: gwOrderID,
		Status:          models.OrderPending,
		CouponUsed:      in.CouponCode,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	return &CreateOrderResult{
		Order:     order,
		KeyID:     s.gateway.KeyID(),
		Currency:  "INR",
		Amount:    paise,
		ItemTitle: title,
	}, nil
}

// VerifyPayment checks the checkout signature, marks the order paid and grants
// or upgrades the enrollment. The whole flow is idempotent: replaying a
// verified callback changes nothing.
func (s *Service) VerifyPayment(ctx context.Context, razorpayOrderID, paymentID, signature string) error {
	if !s.gateway.Verify(razorpayOrderID, paymentID, signature) {
		return ErrInvalidSignature
	}

	order, err := s.orders.GetByRazorpayOrderID(ctx, razorpayOrderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}

	if !order.Status.CanTransition(models.OrderPaid) {
		// Already settled, so this is a replayed callback. The enrollment for
		// this order was granted on the first delivery; touching it again
		// would let a replayed first installment pass for the second.
		return nil
	}
	if err := s.orders.MarkPaid(ctx, order.ID, paymentID, signature); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, order.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		// The payment is real even if the account vanished; keep the money
		// trail and surface nothing to the gateway.
		s.logger.Warn("verified payment for missing user",
			zap.String("order_id", order.ID.String()),
			zap.String("user_id", order.UserID.String()))
		return nil
	}

	if err := s.applyEnrollment(ctx, order); err != nil {
		return err
	}

	s.enqueueConfirmation(ctx, order, user)
	return nil
}

// applyEnrollment grants access for a paid order. First payment creates the
// enrollment and bumps the item's enrolled count; an installment completion
// upgrades partial to full and accumulates the amount without a count bump.
func (s *Service) applyEnrollment(ctx context.Context, order *models.Order) error {
	existing, err := s.enrollments.Find(ctx, order.UserID, order.ItemKind, order.ItemID)
	if err != nil {
		return err
	}

	switch {
	case existing == nil:
		status := models.EnrollmentFull
		if order.PaymentType == models.PaymentInstallment {
			status = models.EnrollmentPartial
		}
		e := &models.Enrollment{
			UserID:        order.UserID,
			ItemKind:      order.ItemKind,
			ItemID:        order.ItemID,
			PlanType:      order.PlanType,
			PaymentStatus: status,
			AmountPaid:    order.Amount,
		}
		if err := s.enrollments.Create(ctx, e); err != nil {
			return err
		}
		if order.ItemKind == models.ItemCourse {
			return s.courses.IncrementEnrolled(ctx, order.ItemID)
		}
		return s.masterclasses.IncrementEnrolled(ctx, order.ItemID)

	case existing.PaymentStatus == models.EnrollmentPartial:
		return s.enrollments.CompleteInstallment(ctx, existing.ID, order.Amount)

	default:
		// Already fully enrolled. Replay of a verified callback.
		return nil
	}
}

func (s *Service) enqueueConfirmation(ctx context.Context, order *models.Order, user *models.User) {
	if s.enqueuer == nil || user.Email == nil || *user.Email == "" {
		return
	}
	title, _ := s.itemTitle(ctx, order.ItemKind, order.ItemID)
	p := queue.ConfirmationPayload{
		OrderID:        order.ID,
		UserID:         user.ID,
		RecipientEmail: *user.Email,
		RecipientName:  user.Name,
		ItemKind:       string(order.ItemKind),
		ItemTitle:      title,
		Amount:         order.Amount,
		PaymentStatus:  string(order.PaymentType),
	}
	if err := s.enqueuer.EnqueueConfirmation(ctx, p); err != nil {
		s.logger.Warn("enqueue confirmation", zap.Error(err), zap.String("order_id", order.ID.String()))
	}
}

func (s *Service) itemTitle(ctx context.Context, kind models.ItemKind, id uuid.UUID) (string, error) {
	if kind == models.ItemCourse {
		course, err := s.courses.GetByID(ctx, id)
		if err != nil || course == nil {
			return "", err
		}
		return course.Title, nil
	}
	mc, err := s.masterclasses.GetByID(ctx, id)
	if err != nil || mc == nil {
		return "", err
	}
	return mc.Title, nil
}

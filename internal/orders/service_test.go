package orders

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vidyaprep/backend/internal/models"
	"github.com/vidyaprep/backend/pkg/queue"
)

type fakeOrderStore struct {
	byGatewayID map[string]*models.Order
	created     []*models.Order
	paid        map[uuid.UUID]string // order id -> payment id
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{byGatewayID: map[string]*models.Order{}, paid: map[uuid.UUID]string{}}
}

func (s *fakeOrderStore) Create(ctx context.Context, o *models.Order) error {
	o.ID = uuid.New()
	s.created = append(s.created, o)
	s.byGatewayID[o.RazorpayOrderID] = o
	return nil
}

func (s *fakeOrderStore) GetByRazorpayOrderID(ctx context.Context, id string) (*models.Order, error) {
	return s.byGatewayID[id], nil
}

func (s *fakeOrderStore) MarkPaid(ctx context.Context, id uuid.UUID, paymentID, signature string) error {
	s.paid[id] = paymentID
	for _, o := range s.created {
		if o.ID == id {
			o.Status = models.OrderPaid
		}
	}
	return nil
}

type fakeCouponClaimer struct {
	coupon *models.Coupon
	claims int
}

func (f *fakeCouponClaimer) Claim(ctx context.Context, code string) (*models.Coupon, error) {
	f.claims++
	return f.coupon, nil
}

type fakeUserStore struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return f.users[id], nil
}

type fakeCourseStore struct {
	courses    map[uuid.UUID]*models.Course
	increments int
}

func (f *fakeCourseStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	return f.courses[id], nil
}

func (f *fakeCourseStore) IncrementEnrolled(ctx context.Context, id uuid.UUID) error {
	f.increments++
	return nil
}

type fakeMasterclassStore struct {
	classes    map[uuid.UUID]*models.Masterclass
	increments int
}

func (f *fakeMasterclassStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Masterclass, error) {
	return f.classes[id], nil
}

func (f *fakeMasterclassStore) IncrementEnrolled(ctx context.Context, id uuid.UUID) error {
	f.increments++
	return nil
}

type fakeEnrollmentStore struct {
	existing   *models.Enrollment
	created    []*models.Enrollment
	completed  []uuid.UUID
	completeBy float64
}

func (f *fakeEnrollmentStore) Find(ctx context.Context, userID uuid.UUID, kind models.ItemKind, itemID uuid.UUID) (*models.Enrollment, error) {
	return f.existing, nil
}

func (f *fakeEnrollmentStore) Create(ctx context.Context, e *models.Enrollment) error {
	e.ID = uuid.New()
	f.created = append(f.created, e)
	return nil
}

func (f *fakeEnrollmentStore) CompleteInstallment(ctx context.Context, id uuid.UUID, amount float64) error {
	f.completed = append(f.completed, id)
	f.completeBy = amount
	return nil
}

type fakeGateway struct {
	orderID   string
	lastPaise int64
	lastRcpt  string
	calls     int
	verifyOK  bool
	createErr error
}

func (g *fakeGateway) CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	g.calls++
	g.lastPaise = amountPaise
	g.lastRcpt = receipt
	if g.createErr != nil {
		return "", g.createErr
	}
	return g.orderID, nil
}

func (g *fakeGateway) KeyID() string { return "rzp_test_key" }

func (g *fakeGateway) Verify(orderID, paymentID, signature string) bool { return g.verifyOK }

type fakeEnqueuer struct {
	jobs []queue.ConfirmationPayload
}

func (f *fakeEnqueuer) EnqueueConfirmation(ctx context.Context, p queue.ConfirmationPayload) error {
	f.jobs = append(f.jobs, p)
	return nil
}

type fixture struct {
	svc          *Service
	orders       *fakeOrderStore
	coupons      *fakeCouponClaimer
	users        *fakeUserStore
	courses      *fakeCourseStore
	classes      *fakeMasterclassStore
	enrollments  *fakeEnrollmentStore
	gateway      *fakeGateway
	enqueuer     *fakeEnqueuer
	userID       uuid.UUID
	courseID     uuid.UUID
	classID      uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		orders:      newFakeOrderStore(),
		coupons:     &fakeCouponClaimer{},
		courses:     &fakeCourseStore{courses: map[uuid.UUID]*models.Course{}},
		classes:     &fakeMasterclassStore{classes: map[uuid.UUID]*models.Masterclass{}},
		enrollments: &fakeEnrollmentStore{},
		gateway:     &fakeGateway{orderID: "order_fake001", verifyOK: true},
		enqueuer:    &fakeEnqueuer{},
		userID:      uuid.New(),
		courseID:    uuid.New(),
		classID:     uuid.New(),
	}
	email := "student@example.com"
	f.users = &fakeUserStore{users: map[uuid.UUID]*models.User{
		f.userID: {ID: f.userID, Name: "Asha", Phone: "+919876543210", Email: &email},
	}}
	f.courses.courses[f.courseID] = testCourse()
	f.courses.courses[f.courseID].ID = f.courseID
	f.classes.classes[f.classID] = &models.Masterclass{
		ID:    f.classID,
		Title: "Exam Strategy Session",
		Price: models.MasterclassPrice{Original: 999, Discounted: 499},
	}
	f.svc = NewService(f.orders, f.coupons, f.users, f.courses, f.classes,
		f.enrollments, f.gateway, f.enqueuer, nil)
	f.svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) courseInput() CreateOrderInput {
	return CreateOrderInput{
		UserID:      f.userID,
		ItemKind:    models.ItemCourse,
		ItemID:      f.courseID,
		PlanType:    models.PlanRecorded,
		PaymentType: models.PaymentFull,
	}
}

func TestCreateOrderCourse(t *testing.T) {
	f := newFixture(t)
	result, err := f.svc.CreateOrder(context.Background(), f.courseInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Order.Amount != 1000 {
		t.Fatalf("amount = %v, want 1000", result.Order.Amount)
	}
	if result.Order.Status != models.OrderPending {
		t.Fatalf("status = %q, want pending", result.Order.Status)
	}
	if result.Amount != 100000 {
		t.Fatalf("gateway paise = %d, want 100000", result.Amount)
	}
	if result.KeyID != "rzp_test_key" {
		t.Fatalf("key id = %q", result.KeyID)
	}
	if !strings.HasPrefix(f.gateway.lastRcpt, "rcpt_") {
		t.Fatalf("receipt = %q, want rcpt_ prefix", f.gateway.lastRcpt)
	}
	if result.ItemTitle != "Algebra Crash Course" {
		t.Fatalf("item title = %q", result.ItemTitle)
	}
}

func TestCreateOrderWithCoupon(t *testing.T) {
	f := newFixture(t)
	f.coupons.coupon = &models.Coupon{
		Code: "SAVE10", DiscountType: models.DiscountPercentage, DiscountValue: 10, IsActive: true,
	}
	in := f.courseInput()
	in.CouponCode = "SAVE10"

	result, err := f.svc.CreateOrder(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Order.Amount != 900 {
		t.Fatalf("amount = %v, want 900 after 10%% off", result.Order.Amount)
	}
	if f.coupons.claims != 1 {
		t.Fatalf("claims = %d, want 1", f.coupons.claims)
	}
	if result.Order.CouponUsed != "SAVE10" {
		t.Fatalf("coupon_used = %q", result.Order.CouponUsed)
	}
}

// A claimed use is consumed even when a check after the claim fails. The count
// is not handed back.
func TestCreateOrderCouponClaimNotRefunded(t *testing.T) {
	f := newFixture(t)
	f.coupons.coupon = &models.Coupon{
		Code: "BIG", DiscountType: models.DiscountFlat, DiscountValue: 200, MinOrderValue: 5000,
	}
	in := f.courseInput()
	in.CouponCode = "BIG"

	_, err := f.svc.CreateOrder(context.Background(), in)
	var minErr MinOrderError
	if !errors.As(err, &minErr) || minErr.Min != 5000 {
		t.Fatalf("err = %v, want MinOrderError{5000}", err)
	}
	if f.coupons.claims != 1 {
		t.Fatalf("claims = %d, the use must stay consumed", f.coupons.claims)
	}
	if f.gateway.calls != 0 {
		t.Fatal("gateway order created despite coupon failure")
	}
	if len(f.orders.created) != 0 {
		t.Fatal("order persisted despite coupon failure")
	}
}

func TestCreateOrderCouponUnusable(t *testing.T) {
	f := newFixture(t)
	f.coupons.coupon = nil // claim finds nothing claimable
	in := f.courseInput()
	in.CouponCode = "GONE"

	_, err := f.svc.CreateOrder(context.Background(), in)
	if !errors.Is(err, ErrCouponUnusable) {
		t.Fatalf("err = %v, want ErrCouponUnusable", err)
	}
}

func TestCreateOrderExpiredCouponStaysConsumed(t *testing.T) {
	f := newFixture(t)
	past := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f.coupons.coupon = &models.Coupon{
		Code: "OLD", DiscountType: models.DiscountFlat, DiscountValue: 50, ValidUntil: &past,
	}
	in := f.courseInput()
	in.CouponCode = "OLD"

	_, err := f.svc.CreateOrder(context.Background(), in)
	if !errors.Is(err, ErrCouponExpired) {
		t.Fatalf("err = %v, want ErrCouponExpired", err)
	}
	if f.coupons.claims != 1 {
		t.Fatalf("claims = %d, the use must stay consumed", f.coupons.claims)
	}
}

func TestCreateOrderMasterclass(t *testing.T) {
	f := newFixture(t)
	in := CreateOrderInput{
		UserID:      f.userID,
		ItemKind:    models.ItemMasterclass,
		ItemID:      f.classID,
		PaymentType: models.PaymentInstallment, // must be overridden to full
	}
	result, err := f.svc.CreateOrder(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Order.Amount != 499 {
		t.Fatalf("amount = %v, want the discounted 499", result.Order.Amount)
	}
	if result.Order.PlanType != models.PlanMasterclass {
		t.Fatalf("plan = %q, want masterclass", result.Order.PlanType)
	}
	if result.Order.PaymentType != models.PaymentFull {
		t.Fatalf("payment type = %q, masterclasses are full payment only", result.Order.PaymentType)
	}
	if !strings.HasPrefix(f.gateway.lastRcpt, "mc_rcpt_") {
		t.Fatalf("receipt = %q, want mc_rcpt_ prefix", f.gateway.lastRcpt)
	}
}

func TestCreateOrderItemNotFound(t *testing.T) {
	f := newFixture(t)
	in := f.courseInput()
	in.ItemID = uuid.New()
	if _, err := f.svc.CreateOrder(context.Background(), in); !errors.Is(err, ErrItemNotFound) {
		t.Fatalf("err = %v, want ErrItemNotFound", err)
	}
}

func paidOrder(f *fixture, payment models.PaymentType) *models.Order {
	o := &models.Order{
		UserID:          f.userID,
		ItemKind:        models.ItemCourse,
		ItemID:          f.courseID,
		Amount:          1000,
		PlanType:        models.PlanRecorded,
		PaymentType:     payment,
		RazorpayOrderID: "order_fake001",
		Status:          models.OrderPending,
	}
	_ = f.orders.Create(context.Background(), o)
	return o
}

func TestVerifyPaymentInvalidSignature(t *testing.T) {
	f := newFixture(t)
	paidOrder(f, models.PaymentFull)
	f.gateway.verifyOK = false

	err := f.svc.VerifyPayment(context.Background(), "order_fake001", "pay_1", "bad")
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("err = %v, want ErrInvalidSignature", err)
	}
	if len(f.orders.paid) != 0 {
		t.Fatal("order mutated despite bad signature")
	}
	if len(f.enrollments.created) != 0 {
		t.Fatal("enrollment created despite bad signature")
	}
}

func TestVerifyPaymentUnknownOrder(t *testing.T) {
	f := newFixture(t)
	err := f.svc.VerifyPayment(context.Background(), "order_missing", "pay_1", "sig")
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("err = %v, want ErrOrderNotFound", err)
	}
}

func TestVerifyPaymentFullPurchase(t *testing.T) {
	f := newFixture(t)
	o := paidOrder(f, models.PaymentFull)

	if err := f.svc.VerifyPayment(context.Background(), "order_fake001", "pay_1", "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.orders.paid[o.ID] != "pay_1" {
		t.Fatal("order not marked paid")
	}
	if len(f.enrollments.created) != 1 {
		t.Fatalf("enrollments created = %d, want 1", len(f.enrollments.created))
	}
	e := f.enrollments.created[0]
	if e.PaymentStatus != models.EnrollmentFull {
		t.Fatalf("payment status = %q, want full", e.PaymentStatus)
	}
	if e.AmountPaid != 1000 {
		t.Fatalf("amount paid = %v, want 1000", e.AmountPaid)
	}
	if f.courses.increments != 1 {
		t.Fatalf("enrolled count increments = %d, want 1", f.courses.increments)
	}
	if len(f.enqueuer.jobs) != 1 {
		t.Fatalf("confirmation jobs = %d, want 1", len(f.enqueuer.jobs))
	}
	if f.enqueuer.jobs[0].RecipientEmail != "student@example.com" {
		t.Fatalf("recipient = %q", f.enqueuer.jobs[0].RecipientEmail)
	}
}

func TestVerifyPaymentInstallmentFirstPart(t *testing.T) {
	f := newFixture(t)
	o := paidOrder(f, models.PaymentInstallment)
	o.Amount = 500

	if err := f.svc.VerifyPayment(context.Background(), "order_fake001", "pay_1", "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.enrollments.created) != 1 {
		t.Fatalf("enrollments created = %d, want 1", len(f.enrollments.created))
	}
	e := f.enrollments.created[0]
	if e.PaymentStatus != models.EnrollmentPartial {
		t.Fatalf("payment status = %q, want partial", e.PaymentStatus)
	}
	if e.AmountPaid != 500 {
		t.Fatalf("amount paid = %v, want 500", e.AmountPaid)
	}
	if f.courses.increments != 1 {
		t.Fatalf("enrolled count increments = %d, want 1", f.courses.increments)
	}
}

func TestVerifyPaymentSecondInstallmentUpgrades(t *testing.T) {
	f := newFixture(t)
	o := paidOrder(f, models.PaymentInstallment)
	o.Amount = 600
	enrollmentID := uuid.New()
	f.enrollments.existing = &models.Enrollment{
		ID:            enrollmentID,
		UserID:        f.userID,
		ItemKind:      models.ItemCourse,
		ItemID:        f.courseID,
		PaymentStatus: models.EnrollmentPartial,
		AmountPaid:    500,
	}

	if err := f.svc.VerifyPayment(context.Background(), "order_fake001", "pay_2", "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.enrollments.created) != 0 {
		t.Fatal("second installment must not create a new enrollment")
	}
	if len(f.enrollments.completed) != 1 || f.enrollments.completed[0] != enrollmentID {
		t.Fatalf("completed = %v, want [%s]", f.enrollments.completed, enrollmentID)
	}
	if f.enrollments.completeBy != 600 {
		t.Fatalf("accumulated amount = %v, want 600", f.enrollments.completeBy)
	}
	if f.courses.increments != 0 {
		t.Fatal("enrolled count must not bump on installment completion")
	}
}

func TestVerifyPaymentReplayIsNoop(t *testing.T) {
	f := newFixture(t)
	paidOrder(f, models.PaymentFull)
	f.enrollments.existing = &models.Enrollment{
		ID:            uuid.New(),
		UserID:        f.userID,
		ItemKind:      models.ItemCourse,
		ItemID:        f.courseID,
		PaymentStatus: models.EnrollmentFull,
		AmountPaid:    1000,
	}

	if err := f.svc.VerifyPayment(context.Background(), "order_fake001", "pay_1", "sig"); err != nil {
		t.Fatalf("replay must succeed, got %v", err)
	}
	if len(f.enrollments.created) != 0 || len(f.enrollments.completed) != 0 {
		t.Fatal("replay mutated the enrollment")
	}
	if f.courses.increments != 0 {
		t.Fatal("replay bumped the enrolled count")
	}
}

// Redelivering the first installment's callback must not pass for the second
// installment: the order is already settled, so the partial enrollment stays
// partial and no amount is added.
func TestVerifyPaymentInstallmentReplayStaysPartial(t *testing.T) {
	f := newFixture(t)
	o := paidOrder(f, models.PaymentInstallment)
	o.Amount = 500

	if err := f.svc.VerifyPayment(context.Background(), "order_fake001", "pay_1", "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.enrollments.created) != 1 {
		t.Fatalf("enrollments created = %d, want 1", len(f.enrollments.created))
	}
	f.enrollments.existing = f.enrollments.created[0]

	if err := f.svc.VerifyPayment(context.Background(), "order_fake001", "pay_1", "sig"); err != nil {
		t.Fatalf("replay must succeed, got %v", err)
	}
	if len(f.enrollments.completed) != 0 {
		t.Fatal("replay upgraded the partial enrollment")
	}
	if len(f.enrollments.created) != 1 {
		t.Fatal("replay created another enrollment")
	}
	if f.courses.increments != 1 {
		t.Fatalf("enrolled count increments = %d, want 1", f.courses.increments)
	}
	if len(f.enqueuer.jobs) != 1 {
		t.Fatalf("confirmation jobs = %d, replay must not enqueue again", len(f.enqueuer.jobs))
	}
}

// A verified payment for a deleted account keeps the money trail and reports
// success; there is just no one to enroll.
func TestVerifyPaymentMissingBuyer(t *testing.T) {
	f := newFixture(t)
	o := paidOrder(f, models.PaymentFull)
	delete(f.users.users, f.userID)

	if err := f.svc.VerifyPayment(context.Background(), "order_fake001", "pay_1", "sig"); err != nil {
		t.Fatalf("missing buyer must soft-fail, got %v", err)
	}
	if f.orders.paid[o.ID] != "pay_1" {
		t.Fatal("order must still be marked paid")
	}
	if len(f.enrollments.created) != 0 {
		t.Fatal("enrollment created for a missing buyer")
	}
}

func TestVerifyPaymentNoEmailSkipsConfirmation(t *testing.T) {
	f := newFixture(t)
	paidOrder(f, models.PaymentFull)
	f.users.users[f.userID].Email = nil

	if err := f.svc.VerifyPayment(context.Background(), "order_fake001", "pay_1", "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.enqueuer.jobs) != 0 {
		t.Fatal("confirmation enqueued without a recipient email")
	}
}

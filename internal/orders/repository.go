package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidyaprep/backend/internal/models"
)

// Repository is the Postgres order store.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const orderColumns = `id, user_id, item_kind, item_id, amount, plan_type, payment_type,
	razorpay_order_id, razorpay_payment_id, razorpay_signature, status, coupon_used, created_at, updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	var paymentID, signature, coupon *string
	err := row.Scan(&o.ID, &o.UserID, &o.ItemKind, &o.ItemID, &o.Amount, &o.PlanType,
		&o.PaymentType, &o.RazorpayOrderID, &paymentID, &signature, &o.Status,
		&coupon, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if paymentID != nil {
		o.RazorpayPaymentID = *paymentID
	}
	if signature != nil {
		o.RazorpaySignature = *signature
	}
	if coupon != nil {
		o.CouponUsed = *coupon
	}
	return &o, nil
}

func (r *Repository) Create(ctx context.Context, o *models.Order) error {
	o.ID = uuid.New()
	var coupon *string
	if o.CouponUsed != "" {
		coupon = &o.CouponUsed
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO orders (id, user_id, item_kind, item_id, amount, plan_type, payment_type,
			razorpay_order_id, status, coupon_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`,
		o.ID, o.UserID, o.ItemKind, o.ItemID, o.Amount, o.PlanType, o.PaymentType,
		o.RazorpayOrderID, o.Status, coupon,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *Repository) GetByRazorpayOrderID(ctx context.Context, razorpayOrderID string) (*models.Order, error) {
	o, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE razorpay_order_id = $1`, razorpayOrderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return o, err
}

// MarkPaid moves a pending order to paid and records the gateway references.
// The status guard makes the update a no-op on replay.
func (r *Repository) MarkPaid(ctx context.Context, id uuid.UUID, paymentID, signature string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET status = $2, razorpay_payment_id = $3, razorpay_signature = $4, updated_at = now()
		WHERE id = $1 AND status = $5`,
		id, models.OrderPaid, paymentID, signature, models.OrderPending)
	return err
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

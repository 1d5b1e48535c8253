package coupons

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidyaprep/backend/internal/models"
)

// ErrDuplicateCode is returned when creating a coupon whose code already exists.
var ErrDuplicateCode = errors.New("coupon code already exists")

// Repository handles coupon persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a coupons repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const couponColumns = `id, code, discount_type, discount_value, min_order_value, valid_until, is_active, usage_limit, used_count, created_at`

func scanCoupon(row pgx.Row) (*models.Coupon, error) {
	var cp models.Coupon
	err := row.Scan(&cp.ID, &cp.Code, &cp.DiscountType, &cp.DiscountValue, &cp.MinOrderValue,
		&cp.ValidUntil, &cp.IsActive, &cp.UsageLimit, &cp.UsedCount, &cp.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

// Claim atomically reserves one use of the coupon: the usage-limit check and
// the counter increment run as a single conditional UPDATE, so concurrent
// claims can never push used_count past usage_limit. Returns nil when the code
// does not exist, is inactive, or the limit is reached — with no state change.
// A successful claim is never refunded; expiry and minimum-order checks happen
// afterwards in the pricing engine.
func (r *Repository) Claim(ctx context.Context, code string) (*models.Coupon, error) {
	const q = `UPDATE coupons
		SET used_count = used_count + 1
		WHERE code = $1
		  AND is_active
		  AND (usage_limit IS NULL OR used_count < usage_limit)
		RETURNING ` + couponColumns
	cp, err := scanCoupon(r.pool.QueryRow(ctx, q, strings.ToUpper(code)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return cp, err
}

// GetActiveByCode returns an active coupon by code, or nil. Used by the public
// preview endpoint, which does not claim.
func (r *Repository) GetActiveByCode(ctx context.Context, code string) (*models.Coupon, error) {
	const q = `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1 AND is_active`
	cp, err := scanCoupon(r.pool.QueryRow(ctx, q, strings.ToUpper(code)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return cp, err
}

// Create inserts a coupon. Codes are stored uppercase.
func (r *Repository) Create(ctx context.Context, cp *models.Coupon) error {
	const q = `INSERT INTO coupons (id, code, discount_type, discount_value, min_order_value, valid_until, is_active, usage_limit)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
		RETURNING id, used_count, created_at`
	err := r.pool.QueryRow(ctx, q, strings.ToUpper(cp.Code), cp.DiscountType, cp.DiscountValue,
		cp.MinOrderValue, cp.ValidUntil, cp.IsActive, cp.UsageLimit).
		Scan(&cp.ID, &cp.UsedCount, &cp.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateCode
	}
	if err != nil {
		return err
	}
	cp.Code = strings.ToUpper(cp.Code)
	return nil
}

// List returns all coupons, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Coupon, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Coupon
	for rows.Next() {
		cp, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *cp)
	}
	return list, rows.Err()
}

// Delete removes a coupon by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	return err
}

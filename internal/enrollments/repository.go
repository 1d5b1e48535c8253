package enrollments

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidyaprep/backend/internal/models"
)

// Repository is the Postgres enrollment store. The table holds at most one row
// per (user, item kind, item id).
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const enrollmentColumns = `id, user_id, item_kind, item_id, plan_type, payment_status,
	amount_paid, purchased_at, progress, completed_lessons, certificate_url`

func scanEnrollment(row pgx.Row) (*models.Enrollment, error) {
	var e models.Enrollment
	var lessons []byte
	err := row.Scan(&e.ID, &e.UserID, &e.ItemKind, &e.ItemID, &e.PlanType,
		&e.PaymentStatus, &e.AmountPaid, &e.PurchasedAt, &e.Progress,
		&lessons, &e.CertificateURL)
	if err != nil {
		return nil, err
	}
	if len(lessons) > 0 {
		if err := json.Unmarshal(lessons, &e.CompletedLessons); err != nil {
			return nil, err
		}
	}
	return &e, nil
}

func (r *Repository) Find(ctx context.Context, userID uuid.UUID, kind models.ItemKind, itemID uuid.UUID) (*models.Enrollment, error) {
	e, err := scanEnrollment(r.pool.QueryRow(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments
		 WHERE user_id = $1 AND item_kind = $2 AND item_id = $3`,
		userID, kind, itemID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return e, err
}

func (r *Repository) Create(ctx context.Context, e *models.Enrollment) error {
	e.ID = uuid.New()
	if e.CompletedLessons == nil {
		e.CompletedLessons = []string{}
	}
	lessons, err := json.Marshal(e.CompletedLessons)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO enrollments (id, user_id, item_kind, item_id, plan_type, payment_status, amount_paid, completed_lessons)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING purchased_at`,
		e.ID, e.UserID, e.ItemKind, e.ItemID, e.PlanType, e.PaymentStatus, e.AmountPaid, lessons,
	).Scan(&e.PurchasedAt)
}

// CompleteInstallment upgrades a partial enrollment to full and adds the
// second payment to the running total.
func (r *Repository) CompleteInstallment(ctx context.Context, id uuid.UUID, amount float64) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE enrollments
		SET payment_status = $2, amount_paid = amount_paid + $3
		WHERE id = $1`,
		id, models.EnrollmentFull, amount)
	return err
}

// HasAccess reports whether a user holds any enrollment for an item.
func (r *Repository) HasAccess(ctx context.Context, userID uuid.UUID, kind models.ItemKind, itemID uuid.UUID) (bool, error) {
	e, err := r.Find(ctx, userID, kind, itemID)
	if err != nil {
		return false, err
	}
	return e != nil, nil
}

// ListByUser returns a user's enrollments joined with the catalog display
// fields, newest purchase first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.EnrollmentWithItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+prefixed(enrollmentColumns)+`,
			COALESCE(c.title, m.title, '') AS item_title,
			COALESCE(c.slug, m.slug, '') AS item_slug,
			COALESCE(c.thumbnail, m.banner_image, '') AS item_image
		FROM enrollments e
		LEFT JOIN courses c ON e.item_kind = 'course' AND c.id = e.item_id
		LEFT JOIN masterclasses m ON e.item_kind = 'masterclass' AND m.id = e.item_id
		WHERE e.user_id = $1
		ORDER BY e.purchased_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.EnrollmentWithItem
	for rows.Next() {
		var e models.EnrollmentWithItem
		var lessons []byte
		err := rows.Scan(&e.ID, &e.UserID, &e.ItemKind, &e.ItemID, &e.PlanType,
			&e.PaymentStatus, &e.AmountPaid, &e.PurchasedAt, &e.Progress,
			&lessons, &e.CertificateURL,
			&e.ItemTitle, &e.ItemSlug, &e.ItemImage)
		if err != nil {
			return nil, err
		}
		if len(lessons) > 0 {
			if err := json.Unmarshal(lessons, &e.CompletedLessons); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// MarkLessonComplete records a lesson id as completed and recomputes progress
// against the course's lesson total.
func (r *Repository) MarkLessonComplete(ctx context.Context, id uuid.UUID, lessonID string, totalLessons int) (*models.Enrollment, error) {
	e, err := scanEnrollment(r.pool.QueryRow(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	for _, l := range e.CompletedLessons {
		if l == lessonID {
			return e, nil
		}
	}
	e.CompletedLessons = append(e.CompletedLessons, lessonID)
	if totalLessons > 0 {
		e.Progress = float64(len(e.CompletedLessons)) / float64(totalLessons) * 100
		if e.Progress > 100 {
			e.Progress = 100
		}
	}
	lessons, err := json.Marshal(e.CompletedLessons)
	if err != nil {
		return nil, err
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE enrollments SET completed_lessons = $2, progress = $3 WHERE id = $1`,
		id, lessons, e.Progress)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// prefixed qualifies the shared column list with the enrollments alias for the
// joined query.
func prefixed(cols string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = "e." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

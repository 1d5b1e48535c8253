package emaillogs

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidyaprep/backend/internal/models"
)

// Repository persists outbound email audit records.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, l *models.EmailLog) error {
	l.ID = uuid.New()
	var errMsg *string
	if l.ErrorMessage != "" {
		errMsg = &l.ErrorMessage
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO email_logs (id, user_id, order_id, email_type, recipient_email, subject, status, sent_at, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		l.ID, l.UserID, l.OrderID, l.EmailType, l.RecipientEmail, l.Subject, l.Status, l.SentAt, errMsg,
	).Scan(&l.CreatedAt)
}

// ListByOrder returns the email history for one order, oldest first.
func (r *Repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.EmailLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, order_id, email_type, recipient_email, COALESCE(subject, ''),
			status, sent_at, COALESCE(error_message, ''), created_at
		FROM email_logs WHERE order_id = $1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.EmailLog
	for rows.Next() {
		var l models.EmailLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.OrderID, &l.EmailType, &l.RecipientEmail,
			&l.Subject, &l.Status, &l.SentAt, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

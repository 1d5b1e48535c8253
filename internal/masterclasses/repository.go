package masterclasses

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidyaprep/backend/internal/models"
	"github.com/vidyaprep/backend/pkg/utils"
)

// ErrDuplicateSlug is returned when a title slugs to an existing slug.
// Masterclass slugs have no uniqueness suffix, so titles must differ.
var ErrDuplicateSlug = errors.New("masterclass slug already exists")

// Repository provides masterclass persistence.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const masterclassColumns = `id, title, slug, tagline, banner_image, expert, start_date, start_time, end_time,
	price_original, price_discounted, what_you_will_learn, who_is_this_for, faqs, reviews,
	meeting_link, total_seats, enrolled_count, manual_status, created_at, updated_at`

func scanMasterclass(row pgx.Row) (*models.Masterclass, error) {
	var m models.Masterclass
	var tagline, meetingLink *string
	var expert, learn, audience, faqs, reviews []byte
	err := row.Scan(&m.ID, &m.Title, &m.Slug, &tagline, &m.BannerImage, &expert,
		&m.Schedule.StartDate, &m.Schedule.StartTime, &m.Schedule.EndTime,
		&m.Price.Original, &m.Price.Discounted, &learn, &audience, &faqs, &reviews,
		&meetingLink, &m.TotalSeats, &m.EnrolledCount, &m.ManualStatus,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if tagline != nil {
		m.Tagline = *tagline
	}
	if meetingLink != nil {
		m.MeetingLink = *meetingLink
	}
	for _, f := range []struct {
		raw []byte
		dst interface{}
	}{
		{expert, &m.Expert},
		{learn, &m.WhatYouWillLearn},
		{audience, &m.WhoIsThisFor},
		{faqs, &m.FAQs},
		{reviews, &m.Reviews},
	} {
		if len(f.raw) > 0 {
			if err := json.Unmarshal(f.raw, f.dst); err != nil {
				return nil, err
			}
		}
	}
	return &m, nil
}

type jsonbFields struct {
	expert, learn, audience, faqs, reviews []byte
}

func marshalFields(m *models.Masterclass) (jsonbFields, error) {
	var out jsonbFields
	var err error
	if out.expert, err = json.Marshal(m.Expert); err != nil {
		return out, err
	}
	if out.learn, err = json.Marshal(m.WhatYouWillLearn); err != nil {
		return out, err
	}
	if out.audience, err = json.Marshal(m.WhoIsThisFor); err != nil {
		return out, err
	}
	if out.faqs, err = json.Marshal(m.FAQs); err != nil {
		return out, err
	}
	out.reviews, err = json.Marshal(m.Reviews)
	return out, err
}

func (r *Repository) Create(ctx context.Context, m *models.Masterclass) error {
	m.ID = uuid.New()
	m.Slug = utils.Slugify(m.Title)
	if m.Slug == "" {
		m.Slug = utils.UniqueSlug("masterclass")
	}
	if m.ManualStatus == "" {
		m.ManualStatus = models.MasterclassPublished
	}
	if m.TotalSeats == 0 {
		m.TotalSeats = 50
	}
	jb, err := marshalFields(m)
	if err != nil {
		return err
	}
	err = r.pool.QueryRow(ctx, `
		INSERT INTO masterclasses (id, title, slug, tagline, banner_image, expert,
			start_date, start_time, end_time, price_original, price_discounted,
			what_you_will_learn, who_is_this_for, faqs, reviews,
			meeting_link, total_seats, manual_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at, updated_at`,
		m.ID, m.Title, m.Slug, nullable(m.Tagline), m.BannerImage, jb.expert,
		m.Schedule.StartDate, m.Schedule.StartTime, m.Schedule.EndTime,
		m.Price.Original, m.Price.Discounted,
		jb.learn, jb.audience, jb.faqs, jb.reviews,
		nullable(m.MeetingLink), m.TotalSeats, m.ManualStatus,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	return duplicateSlug(err)
}

// Update rewrites a masterclass. The slug only changes when the title does.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, m *models.Masterclass) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return pgx.ErrNoRows
	}
	m.ID = id
	m.Slug = existing.Slug
	if m.Title != existing.Title {
		m.Slug = utils.Slugify(m.Title)
		if m.Slug == "" {
			m.Slug = utils.UniqueSlug("masterclass")
		}
	}
	jb, err := marshalFields(m)
	if err != nil {
		return err
	}
	err = r.pool.QueryRow(ctx, `
		UPDATE masterclasses
		SET title = $2, slug = $3, tagline = $4, banner_image = $5, expert = $6,
			start_date = $7, start_time = $8, end_time = $9,
			price_original = $10, price_discounted = $11,
			what_you_will_learn = $12, who_is_this_for = $13, faqs = $14, reviews = $15,
			meeting_link = $16, total_seats = $17, manual_status = $18, updated_at = now()
		WHERE id = $1
		RETURNING enrolled_count, created_at, updated_at`,
		id, m.Title, m.Slug, nullable(m.Tagline), m.BannerImage, jb.expert,
		m.Schedule.StartDate, m.Schedule.StartTime, m.Schedule.EndTime,
		m.Price.Original, m.Price.Discounted,
		jb.learn, jb.audience, jb.faqs, jb.reviews,
		nullable(m.MeetingLink), m.TotalSeats, m.ManualStatus,
	).Scan(&m.EnrolledCount, &m.CreatedAt, &m.UpdatedAt)
	return duplicateSlug(err)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Masterclass, error) {
	m, err := scanMasterclass(r.pool.QueryRow(ctx,
		`SELECT `+masterclassColumns+` FROM masterclasses WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Masterclass, error) {
	m, err := scanMasterclass(r.pool.QueryRow(ctx,
		`SELECT `+masterclassColumns+` FROM masterclasses WHERE slug = $1`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// ListUpcoming returns published masterclasses starting today or later,
// soonest first.
func (r *Repository) ListUpcoming(ctx context.Context, now time.Time) ([]models.Masterclass, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	rows, err := r.pool.Query(ctx, `
		SELECT `+masterclassColumns+` FROM masterclasses
		WHERE start_date >= $1 AND manual_status = $2
		ORDER BY start_date ASC`,
		midnight, models.MasterclassPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *Repository) ListAll(ctx context.Context) ([]models.Masterclass, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+masterclassColumns+` FROM masterclasses ORDER BY start_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]models.Masterclass, error) {
	var out []models.Masterclass
	for rows.Next() {
		m, err := scanMasterclass(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM masterclasses WHERE id = $1`, id)
	return err
}

func (r *Repository) IncrementEnrolled(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE masterclasses SET enrolled_count = enrolled_count + 1, updated_at = now() WHERE id = $1`, id)
	return err
}

func duplicateSlug(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateSlug
	}
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

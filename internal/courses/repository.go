package courses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vidyaprep/backend/internal/models"
	"github.com/vidyaprep/backend/pkg/utils"
)

// Repository handles course persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a courses repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const courseColumns = `id, title, slug, category,
	price_recorded, price_original, price_live, installment_enabled, price_part1, price_part2,
	thumbnail, demo_video_url, description, tags, level, language, live_start_date,
	enrolled_count, is_published, average_rating, reviews, content, created_at, updated_at`

func scanCourse(row pgx.Row) (*models.Course, error) {
	var c models.Course
	var demoURL, description *string
	var tags, reviews, content []byte
	err := row.Scan(&c.ID, &c.Title, &c.Slug, &c.Category,
		&c.Pricing.Recorded, &c.Pricing.Original, &c.Pricing.Live,
		&c.Pricing.Installment.Enabled, &c.Pricing.Installment.PricePart1, &c.Pricing.Installment.PricePart2,
		&c.Thumbnail, &demoURL, &description, &tags, &c.Level, &c.Language, &c.LiveStartDate,
		&c.EnrolledCount, &c.IsPublished, &c.AverageRating, &reviews, &content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Pricing.Installment.TotalParts = 2
	if demoURL != nil {
		c.DemoVideoURL = *demoURL
	}
	if description != nil {
		c.Description = *description
	}
	if err := json.Unmarshal(tags, &c.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	if err := json.Unmarshal(reviews, &c.Reviews); err != nil {
		return nil, fmt.Errorf("decode reviews: %w", err)
	}
	if err := json.Unmarshal(content, &c.Content); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return &c, nil
}

func marshalJSONB(v interface{}) ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v)
}

// Create inserts a course. The slug is derived from the title with a
// uniqueness suffix, generated once here.
func (r *Repository) Create(ctx context.Context, c *models.Course) error {
	c.Slug = utils.UniqueSlug(c.Title)
	tags, err := marshalJSONB(c.Tags)
	if err != nil {
		return err
	}
	reviews, err := marshalJSONB(c.Reviews)
	if err != nil {
		return err
	}
	content, err := marshalJSONB(c.Content)
	if err != nil {
		return err
	}
	const q = `INSERT INTO courses (id, title, slug, category,
			price_recorded, price_original, price_live, installment_enabled, price_part1, price_part2,
			thumbnail, demo_video_url, description, tags, level, language, live_start_date,
			is_published, average_rating, reviews, content)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, enrolled_count, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, c.Title, c.Slug, c.Category,
		c.Pricing.Recorded, c.Pricing.Original, c.Pricing.Live,
		c.Pricing.Installment.Enabled, c.Pricing.Installment.PricePart1, c.Pricing.Installment.PricePart2,
		c.Thumbnail, nullable(c.DemoVideoURL), nullable(c.Description), tags, c.Level, c.Language, c.LiveStartDate,
		c.IsPublished, c.AverageRating, reviews, content).
		Scan(&c.ID, &c.EnrolledCount, &c.CreatedAt, &c.UpdatedAt)
}

// Update replaces a course's editable fields. The slug is regenerated only
// when the title changed.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, c *models.Course) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return pgx.ErrNoRows
	}
	slug := existing.Slug
	if existing.Title != c.Title {
		slug = utils.UniqueSlug(c.Title)
	}
	tags, err := marshalJSONB(c.Tags)
	if err != nil {
		return err
	}
	reviews, err := marshalJSONB(c.Reviews)
	if err != nil {
		return err
	}
	content, err := marshalJSONB(c.Content)
	if err != nil {
		return err
	}
	const q = `UPDATE courses SET title = $1, slug = $2, category = $3,
			price_recorded = $4, price_original = $5, price_live = $6,
			installment_enabled = $7, price_part1 = $8, price_part2 = $9,
			thumbnail = $10, demo_video_url = $11, description = $12, tags = $13,
			level = $14, language = $15, live_start_date = $16,
			is_published = $17, average_rating = $18, reviews = $19, content = $20,
			updated_at = NOW()
		WHERE id = $21`
	_, err = r.pool.Exec(ctx, q, c.Title, slug, c.Category,
		c.Pricing.Recorded, c.Pricing.Original, c.Pricing.Live,
		c.Pricing.Installment.Enabled, c.Pricing.Installment.PricePart1, c.Pricing.Installment.PricePart2,
		c.Thumbnail, nullable(c.DemoVideoURL), nullable(c.Description), tags,
		c.Level, c.Language, c.LiveStartDate,
		c.IsPublished, c.AverageRating, reviews, content, id)
	if err != nil {
		return err
	}
	c.ID = id
	c.Slug = slug
	return nil
}

// GetByID returns a course by ID, or nil when absent.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	c, err := scanCourse(r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// GetBySlug returns a course by slug, or nil when absent.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Course, error) {
	c, err := scanCourse(r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE slug = $1`, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

// List returns courses, optionally only published ones.
func (r *Repository) List(ctx context.Context, publishedOnly bool) ([]models.Course, error) {
	q := `SELECT ` + courseColumns + ` FROM courses`
	if publishedOnly {
		q += ` WHERE is_published`
	}
	q += ` ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *c)
	}
	return list, rows.Err()
}

// Delete removes a course by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	return err
}

// IncrementEnrolled bumps the enrolled counter atomically in the store.
func (r *Repository) IncrementEnrolled(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE courses SET enrolled_count = enrolled_count + 1 WHERE id = $1`, id)
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

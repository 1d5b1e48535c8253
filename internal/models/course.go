package models

import (
	"time"

	"github.com/google/uuid"
)

// Course category and level values.
const (
	CategoryBitsize       = "bitsize"
	CategoryCohort        = "cohort"
	CategoryComprehensive = "comprehensive"
)

// InstallmentPlan is the optional two-part payment schedule of a course.
// TotalParts is fixed at 2.
type InstallmentPlan struct {
	Enabled    bool    `json:"enabled"`
	PricePart1 float64 `json:"price_part1"`
	PricePart2 float64 `json:"price_part2"`
	TotalParts int     `json:"total_parts"`
}

// CoursePricing holds the independent recorded and live full prices plus the
// installment schedule. Original is the crossed-out display price.
type CoursePricing struct {
	Recorded    float64         `json:"recorded"`
	Original    *float64        `json:"original,omitempty"`
	Live        float64         `json:"live"`
	Installment InstallmentPlan `json:"installment"`
}

// LessonResource is a downloadable attachment on a lesson.
type LessonResource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Lesson is a single video lesson inside a chapter.
type Lesson struct {
	Title         string           `json:"title"`
	VideoID       string           `json:"video_id,omitempty"`
	Duration      string           `json:"duration"`
	IsFreePreview bool             `json:"is_free_preview"`
	Resources     []LessonResource `json:"resources,omitempty"`
}

// Chapter groups lessons under a title.
type Chapter struct {
	Title   string   `json:"title"`
	Lessons []Lesson `json:"lessons"`
}

// Review is a student review on a catalog item.
type Review struct {
	StudentName string  `json:"student_name"`
	Rating      float64 `json:"rating"`
	Comment     string  `json:"comment"`
}

// Course is a purchasable recorded/live course.
type Course struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	Slug          string        `json:"slug"`
	Category      string        `json:"category"`
	Pricing       CoursePricing `json:"pricing"`
	Thumbnail     string        `json:"thumbnail"`
	DemoVideoURL  string        `json:"demo_video_url,omitempty"`
	Description   string        `json:"description,omitempty"`
	Tags          []string      `json:"tags,omitempty"`
	Level         string        `json:"level"`
	Language      string        `json:"language"`
	LiveStartDate *time.Time    `json:"live_start_date,omitempty"`
	EnrolledCount int           `json:"enrolled_count"`
	IsPublished   bool          `json:"is_published"`
	AverageRating float64       `json:"average_rating"`
	Reviews       []Review      `json:"reviews,omitempty"`
	Content       []Chapter     `json:"content,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// LessonCount returns the total number of lessons across all chapters.
func (c *Course) LessonCount() int {
	n := 0
	for _, ch := range c.Content {
		n += len(ch.Lessons)
	}
	return n
}

// WithoutVideoIDs returns a copy of the content with lesson video ids blanked,
// for unauthenticated catalog pages.
func (c *Course) WithoutVideoIDs() []Chapter {
	out := make([]Chapter, len(c.Content))
	for i, ch := range c.Content {
		lessons := make([]Lesson, len(ch.Lessons))
		for j, l := range ch.Lessons {
			l.VideoID = ""
			lessons[j] = l
		}
		out[i] = Chapter{Title: ch.Title, Lessons: lessons}
	}
	return out
}

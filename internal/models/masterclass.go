package models

import (
	"time"

	"github.com/google/uuid"
)

// Masterclass manual status values. Cancelled and draft hide a class before its
// scheduled date; expiry past the date is derived, not stored.
const (
	MasterclassPublished = "published"
	MasterclassCancelled = "cancelled"
	MasterclassDraft     = "draft"
)

// Expert is the presenter of a masterclass.
type Expert struct {
	Name        string `json:"name"`
	Designation string `json:"designation,omitempty"`
	Image       string `json:"image,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

// FAQ is a question/answer pair on a masterclass page.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// MasterclassSchedule is the scheduled date plus display times.
type MasterclassSchedule struct {
	StartDate time.Time `json:"start_date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
}

// MasterclassPrice is the original/discounted price pair. The discounted price
// is what the buyer is charged.
type MasterclassPrice struct {
	Original   float64 `json:"original"`
	Discounted float64 `json:"discounted"`
}

// Masterclass is a single live session sold as a one-off seat.
type Masterclass struct {
	ID               uuid.UUID           `json:"id"`
	Title            string              `json:"title"`
	Slug             string              `json:"slug"`
	Tagline          string              `json:"tagline,omitempty"`
	BannerImage      string              `json:"banner_image"`
	Expert           Expert              `json:"expert"`
	Schedule         MasterclassSchedule `json:"schedule"`
	Price            MasterclassPrice    `json:"price"`
	WhatYouWillLearn []string            `json:"what_you_will_learn,omitempty"`
	WhoIsThisFor     []string            `json:"who_is_this_for,omitempty"`
	FAQs             []FAQ               `json:"faqs,omitempty"`
	Reviews          []Review            `json:"reviews,omitempty"`
	MeetingLink      string              `json:"meeting_link,omitempty"`
	TotalSeats       int                 `json:"total_seats"`
	EnrolledCount    int                 `json:"enrolled_count"`
	ManualStatus     string              `json:"manual_status"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// Expired reports whether now is past the end of the scheduled day. A class
// stays live for the whole of its start date and expires at midnight.
func (m *Masterclass) Expired(now time.Time) bool {
	d := m.Schedule.StartDate
	endOfDay := time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(999*time.Millisecond), d.Location())
	return now.After(endOfDay)
}

package models

import (
	"testing"
	"time"
)

func TestMasterclassExpired(t *testing.T) {
	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	m := Masterclass{Schedule: MasterclassSchedule{StartDate: start}}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"day before", time.Date(2026, 3, 9, 18, 0, 0, 0, time.UTC), false},
		{"morning of", time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), false},
		{"late evening of", time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC), false},
		{"midnight after", time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), true},
		{"day after", time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Expired(tt.now); got != tt.want {
				t.Fatalf("Expired(%s) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

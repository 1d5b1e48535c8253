package utils

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Algebra Crash Course", "algebra-crash-course"},
		{"NEET 2026: Biology!", "neet-2026-biology"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUniqueSlug(t *testing.T) {
	s := UniqueSlug("Algebra Crash Course")
	if !strings.HasPrefix(s, "algebra-crash-course-") {
		t.Fatalf("slug = %q, want title prefix", s)
	}
	if s == "algebra-crash-course-" {
		t.Fatal("slug missing the timestamp suffix")
	}
}

func TestUniqueSlugFallback(t *testing.T) {
	s := UniqueSlug("!!!")
	if !strings.HasPrefix(s, "item-") {
		t.Fatalf("slug = %q, want item- fallback for symbol-only titles", s)
	}
}

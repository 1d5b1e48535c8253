package utils

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
)

// Slugify returns a URL slug for a title. Empty or symbol-only titles produce
// an empty slug; callers supply their own fallback.
func Slugify(title string) string {
	return slug.Make(title)
}

// UniqueSlug returns the title slug with a millisecond suffix, so repeated
// creations with the same title never collide. Generated once at creation and
// regenerated only when the title changes.
func UniqueSlug(title string) string {
	base := slug.Make(title)
	if base == "" {
		return fmt.Sprintf("item-%d", time.Now().UnixMilli())
	}
	return fmt.Sprintf("%s-%d", base, time.Now().UnixMilli())
}

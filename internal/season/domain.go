package season

import (
	"fmt"
	"time"
)

// Season represents a named accounting period (e.g. "Eiri2025"). Seasons are
// created lazily on first use and never mutated or deleted afterwards.
type Season struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NameAt derives the Eiri season name for a point in time. January through
// July belong to the current year's season; August through December already
// book against the next year.
func NameAt(t time.Time) string {
	year := t.Year()
	if t.Month() >= time.August {
		year++
	}
	return fmt.Sprintf("Eiri%d", year)
}

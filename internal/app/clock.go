package app

import (
	"time"

	"github.com/quietbay/innkeep/internal/domain"
)

// Compile-time check: SystemClock implements domain.Clock.
var _ domain.Clock = (*SystemClock)(nil)

// SystemClock reads the wall clock in the guesthouse's timezone. All date
// comparisons (conflict checks, checkout passes) run against this location.
type SystemClock struct {
	Loc *time.Location
}

// NewSystemClock creates a clock for the given location, defaulting to UTC.
func NewSystemClock(loc *time.Location) SystemClock {
	if loc == nil {
		loc = time.UTC
	}
	return SystemClock{Loc: loc}
}

func (c SystemClock) Now() time.Time {
	return time.Now().In(c.Loc)
}

// Today returns midnight of the current day in the guesthouse's timezone.
func (c SystemClock) Today() time.Time {
	now := c.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.Loc)
}

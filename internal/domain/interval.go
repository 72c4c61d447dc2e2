package domain

import "time"

// Interval is a half-open date range [Entry, Exit). Because the exit bound is
// exclusive, a stay ending on day D never overlaps one starting on day D:
// same-day back-to-back occupancy of a room is allowed.
type Interval struct {
	Entry time.Time
	Exit  time.Time
}

// Overlaps reports whether two half-open intervals share at least one day:
// [a1,a2) and [b1,b2) overlap iff a1 < b2 and b1 < a2.
func (i Interval) Overlaps(other Interval) bool {
	return i.Entry.Before(other.Exit) && other.Entry.Before(i.Exit)
}

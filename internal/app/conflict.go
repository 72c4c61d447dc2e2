package app

import (
	"context"
	"fmt"
	"time"

	"github.com/quietbay/innkeep/internal/domain"
)

// ConflictExclusions names records an overlap check should ignore. Edit
// operations exclude the record being edited; editing a stay created from a
// reservation also excludes its source reservation, which covers the same
// interval by construction.
type ConflictExclusions struct {
	ReservationID string
	StayID        string
}

// ConflictChecker determines whether a candidate [entry, exit) interval for
// a room overlaps any pending/confirmed reservation or any non-past stay of
// the same room. Intervals are half-open, so back-to-back occupancy on the
// boundary day is never a conflict.
type ConflictChecker struct {
	reservations domain.ReservationRepository
	stays        domain.StayRepository
	clock        domain.Clock
}

// NewConflictChecker creates a checker over the given repositories.
func NewConflictChecker(reservations domain.ReservationRepository, stays domain.StayRepository, clock domain.Clock) *ConflictChecker {
	return &ConflictChecker{
		reservations: reservations,
		stays:        stays,
		clock:        clock,
	}
}

// HasConflict reports whether the candidate interval collides with existing
// occupancy of the room.
func (c *ConflictChecker) HasConflict(ctx context.Context, roomID string, entry, exit time.Time, excl ConflictExclusions) (bool, error) {
	reservations, err := c.reservations.FindOverlapping(ctx, roomID, entry, exit, excl.ReservationID)
	if err != nil {
		return false, fmt.Errorf("checking reservation overlaps: %w", err)
	}
	if len(reservations) > 0 {
		return true, nil
	}

	stays, err := c.stays.FindOverlapping(ctx, roomID, entry, exit, c.clock.Today(), excl.StayID)
	if err != nil {
		return false, fmt.Errorf("checking stay overlaps: %w", err)
	}
	return len(stays) > 0, nil
}

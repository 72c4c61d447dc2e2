package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrReservationNotFound = errors.New("reservation not found")
	ErrStayNotFound        = errors.New("stay not found")
	ErrLedgerEntryNotFound = errors.New("ledger entry not found")

	// ErrCodeTaken signals a uniqueness violation on a generated sequence
	// code; the caller retries once with a freshly computed code.
	ErrCodeTaken = errors.New("sequence code already in use")
)

// ValidationError is returned when an input field is missing or malformed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConflictError is returned when a room is already booked or occupied for
// the requested interval.
type ConflictError struct {
	RoomID string
	Entry  time.Time
	Exit   time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("room %s is already booked between %s and %s",
		e.RoomID, e.Entry.Format("2006-01-02"), e.Exit.Format("2006-01-02"))
}

// StateError is returned when an operation is invalid for the current
// lifecycle phase, such as editing a finalized stay or confirming a
// cancelled reservation.
type StateError struct {
	Op     string
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// NumberConflictError is returned when a room number is already in use.
type NumberConflictError struct {
	Number string
}

func (e *NumberConflictError) Error() string {
	return fmt.Sprintf("room number %q is already in use", e.Number)
}

// TransitionError is returned when a room status transition is not allowed.
type TransitionError struct {
	Event   RoomEvent
	Current RoomStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from status %q", e.Event, e.Current)
}

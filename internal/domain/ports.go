package domain

import (
	"context"
	"time"
)

// RoomRepository defines the persistence contract for rooms.
type RoomRepository interface {
	Create(ctx context.Context, room Room) error
	GetByID(ctx context.Context, id string) (Room, error)
	GetByNumber(ctx context.Context, number string) (Room, error)
	List(ctx context.Context, filter RoomFilter) ([]Room, error)
	Update(ctx context.Context, room Room) error
	Delete(ctx context.Context, id string) error
}

// RoomFilter holds optional criteria for listing rooms.
type RoomFilter struct {
	Status *RoomStatus
}

// ReservationRepository defines the persistence contract for reservations.
type ReservationRepository interface {
	Create(ctx context.Context, res Reservation) error
	GetByID(ctx context.Context, id string) (Reservation, error)
	List(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	Update(ctx context.Context, res Reservation) error

	// MaxCodeWithPrefix returns the lexicographically greatest reservation
	// code starting with prefix, or "" when none exists.
	MaxCodeWithPrefix(ctx context.Context, prefix string) (string, error)

	// FindOverlapping returns pending or confirmed reservations for the room
	// whose [check-in, check-out) interval overlaps [entry, exit), excluding
	// the reservation with excludeID when non-empty.
	FindOverlapping(ctx context.Context, roomID string, entry, exit time.Time, excludeID string) ([]Reservation, error)
}

// ReservationFilter holds optional criteria for listing reservations.
type ReservationFilter struct {
	Status *ReservationStatus
	RoomID string
	Limit  int
	Offset int
}

// StayRepository defines the persistence contract for stays.
type StayRepository interface {
	Create(ctx context.Context, stay Stay) error
	GetByID(ctx context.Context, id string) (Stay, error)
	List(ctx context.Context, filter StayFilter) ([]Stay, error)
	Update(ctx context.Context, stay Stay) error
	Delete(ctx context.Context, id string) error

	// MaxCodeWithPrefix returns the lexicographically greatest stay code
	// starting with prefix, or "" when none exists.
	MaxCodeWithPrefix(ctx context.Context, prefix string) (string, error)

	// FindOverlapping returns non-cancelled stays for the room whose
	// [check-in, check-out) interval overlaps [entry, exit) and whose
	// check-out is not before today (past stays cannot conflict), excluding
	// the stay with excludeID when non-empty.
	FindOverlapping(ctx context.Context, roomID string, entry, exit, today time.Time, excludeID string) ([]Stay, error)

	// LatestForRoom returns the most recently created non-cancelled stay for
	// the room, or ErrStayNotFound.
	LatestForRoom(ctx context.Context, roomID string) (Stay, error)

	// ListByCheckoutDate returns non-cancelled stays whose check-out date
	// equals day. Used by the checkout scheduler.
	ListByCheckoutDate(ctx context.Context, day time.Time) ([]Stay, error)
}

// StayFilter holds optional criteria for listing stays.
type StayFilter struct {
	RoomID    string
	Cancelled *bool
	Limit     int
	Offset    int
}

// LedgerRepository defines the persistence contract for ledger entries.
type LedgerRepository interface {
	Create(ctx context.Context, entry LedgerEntry) error
	GetByID(ctx context.Context, id string) (LedgerEntry, error)
	List(ctx context.Context, filter LedgerFilter) ([]LedgerEntry, error)
	Update(ctx context.Context, entry LedgerEntry) error

	// MaxCodeWithPrefix returns the lexicographically greatest entry code
	// starting with prefix, or "" when none exists.
	MaxCodeWithPrefix(ctx context.Context, prefix string) (string, error)

	// ActiveByReference returns the non-cancelled entries with the given
	// origin and reference. The at-most-one-active-entry-per-stay invariant
	// means this returns zero or one entry for stay-origin references.
	ActiveByReference(ctx context.Context, origin LedgerOrigin, referenceID string) ([]LedgerEntry, error)

	// Balance returns the sum of non-cancelled entry values, expenses
	// counted negative.
	Balance(ctx context.Context) (int64, error)
}

// LedgerFilter holds optional criteria for listing ledger entries.
type LedgerFilter struct {
	Origin *LedgerOrigin
	Kind   *LedgerKind
	Limit  int
	Offset int
}

// Event identifies a lifecycle notification emitted by the services.
type Event string

const (
	EventReservationCreated   Event = "reservation.created"
	EventReservationEdited    Event = "reservation.edited"
	EventReservationConfirmed Event = "reservation.confirmed"
	EventReservationCancelled Event = "reservation.cancelled"
	EventStayCreated          Event = "stay.created"
	EventStayEdited           Event = "stay.edited"
	EventStayCheckedOut       Event = "stay.checked_out"
	EventStayAutoCheckedOut   Event = "stay.auto_checked_out"
	EventStayDeleted          Event = "stay.deleted"
	EventCheckoutReminder     Event = "stay.checkout_reminder"
	EventLedgerRegistered     Event = "ledger.registered"
	EventLedgerCancelled      Event = "ledger.cancelled"
)

// Notification carries the data a downstream consumer needs to format a
// message without querying the database.
type Notification struct {
	EntityID   string
	Code       string
	RoomNumber string
	GuestName  string
	Detail     string
}

// EventPublisher defines the contract for emitting lifecycle notifications.
// Publishing is fire-and-forget from the caller's perspective: failures are
// logged by the calling service and never abort the triggering operation.
type EventPublisher interface {
	Publish(ctx context.Context, event Event, n Notification) error
}

// TransitionValidator checks room status transitions against the
// RoomTransitions table and returns the destination status.
type TransitionValidator interface {
	Apply(ctx context.Context, current RoomStatus, event RoomEvent) (RoomStatus, error)
}

// Clock abstracts time so conflict checks and scheduled jobs are
// deterministically testable. Today returns midnight of the current day in
// the guesthouse's timezone.
type Clock interface {
	Now() time.Time
	Today() time.Time
}

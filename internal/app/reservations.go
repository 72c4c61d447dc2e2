package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quietbay/innkeep/internal/domain"
)

// ReservationService creates, edits, confirms and cancels reservations.
// Confirmation hands off to StayService; confirmed and cancelled are
// terminal states.
type ReservationService struct {
	reservations domain.ReservationRepository
	rooms        domain.RoomRepository
	stays        *StayService
	conflicts    *ConflictChecker
	codes        *CodeAllocator
	publisher    domain.EventPublisher
	clock        domain.Clock
}

// NewReservationService creates a service with the given collaborators.
func NewReservationService(
	reservations domain.ReservationRepository,
	rooms domain.RoomRepository,
	stays *StayService,
	conflicts *ConflictChecker,
	codes *CodeAllocator,
	publisher domain.EventPublisher,
	clock domain.Clock,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		rooms:        rooms,
		stays:        stays,
		conflicts:    conflicts,
		codes:        codes,
		publisher:    publisher,
		clock:        clock,
	}
}

// CreateReservationInput holds the fields for booking a room ahead.
type CreateReservationInput struct {
	RoomID         string
	GuestName      string
	GuestType      string
	CheckIn        time.Time
	Nights         int
	DailyRateCents int64 // 0 means use the room's default rate
	PaymentMethod  string
	Notes          string
}

// Create books a room for a future date range. Check-in must be strictly
// after today; the interval must not collide with other reservations or
// stays of the room.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput, actor domain.Actor) (domain.Reservation, error) {
	if in.GuestName == "" {
		return domain.Reservation{}, &domain.ValidationError{Field: "guest_name", Reason: "required"}
	}
	if in.Nights <= 0 {
		return domain.Reservation{}, &domain.ValidationError{Field: "nights", Reason: "must be positive"}
	}
	if in.PaymentMethod == "" {
		return domain.Reservation{}, &domain.ValidationError{Field: "payment_method", Reason: "required"}
	}
	if !in.CheckIn.After(s.clock.Today()) {
		return domain.Reservation{}, &domain.ValidationError{Field: "check_in", Reason: "must be after today"}
	}

	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return domain.Reservation{}, err
	}

	rate := in.DailyRateCents
	if rate == 0 {
		rate = room.DailyRateCents
	}
	if rate <= 0 {
		return domain.Reservation{}, &domain.ValidationError{Field: "daily_rate", Reason: "must be positive"}
	}

	checkOut := in.CheckIn.AddDate(0, 0, in.Nights)
	conflict, err := s.conflicts.HasConflict(ctx, room.ID, in.CheckIn, checkOut, ConflictExclusions{})
	if err != nil {
		return domain.Reservation{}, err
	}
	if conflict {
		return domain.Reservation{}, &domain.ConflictError{RoomID: room.ID, Entry: in.CheckIn, Exit: checkOut}
	}

	res, err := s.insertWithRetry(ctx, func(id, code string) domain.Reservation {
		r := domain.NewReservation(id, code, in.GuestName, room.ID, in.CheckIn, in.Nights, rate, in.PaymentMethod, actor.ID)
		r.GuestType = in.GuestType
		r.Notes = in.Notes
		return r
	})
	if err != nil {
		return domain.Reservation{}, err
	}

	s.notify(ctx, domain.EventReservationCreated, domain.Notification{
		EntityID:   res.ID,
		Code:       res.Code,
		RoomNumber: room.Number,
		GuestName:  res.GuestName,
	})

	return res, nil
}

// EditReservationInput holds optional edits to a pending reservation.
type EditReservationInput struct {
	GuestName      *string
	GuestType      *string
	CheckIn        *time.Time
	Nights         *int
	DailyRateCents *int64
	PaymentMethod  *string
	Notes          *string
}

// Edit updates a reservation while it is still pending. Check-out and
// total are recomputed from the possibly-changed check-in and night count;
// the conflict check re-runs excluding the reservation itself.
func (s *ReservationService) Edit(ctx context.Context, id string, in EditReservationInput, actor domain.Actor) (domain.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if res.Status != domain.ReservationPending {
		return domain.Reservation{}, &domain.StateError{
			Op:     "edit reservation",
			Reason: fmt.Sprintf("reservation is %s", res.Status),
		}
	}

	var changes domain.ChangeSet

	if in.GuestName != nil {
		if *in.GuestName == "" {
			return domain.Reservation{}, &domain.ValidationError{Field: "guest_name", Reason: "required"}
		}
		changes.Record("guest_name", res.GuestName, *in.GuestName)
		res.GuestName = *in.GuestName
	}
	if in.GuestType != nil {
		changes.Record("guest_type", res.GuestType, *in.GuestType)
		res.GuestType = *in.GuestType
	}
	if in.CheckIn != nil {
		if !in.CheckIn.After(s.clock.Today()) {
			return domain.Reservation{}, &domain.ValidationError{Field: "check_in", Reason: "must be after today"}
		}
		changes.Record("check_in", res.CheckIn.Format("2006-01-02"), in.CheckIn.Format("2006-01-02"))
		res.CheckIn = *in.CheckIn
	}
	if in.Nights != nil {
		if *in.Nights <= 0 {
			return domain.Reservation{}, &domain.ValidationError{Field: "nights", Reason: "must be positive"}
		}
		changes.RecordInt("nights", int64(res.Nights), int64(*in.Nights))
		res.Nights = *in.Nights
	}
	if in.DailyRateCents != nil {
		if *in.DailyRateCents <= 0 {
			return domain.Reservation{}, &domain.ValidationError{Field: "daily_rate", Reason: "must be positive"}
		}
		changes.RecordInt("daily_rate_cents", res.DailyRateCents, *in.DailyRateCents)
		res.DailyRateCents = *in.DailyRateCents
	}
	if in.PaymentMethod != nil {
		changes.Record("payment_method", res.PaymentMethod, *in.PaymentMethod)
		res.PaymentMethod = *in.PaymentMethod
	}
	if in.Notes != nil {
		res.Notes = *in.Notes
	}

	res.CheckOut = res.CheckIn.AddDate(0, 0, res.Nights)
	res.TotalCents = res.DailyRateCents * int64(res.Nights)

	conflict, err := s.conflicts.HasConflict(ctx, res.RoomID, res.CheckIn, res.CheckOut, ConflictExclusions{ReservationID: res.ID})
	if err != nil {
		return domain.Reservation{}, err
	}
	if conflict {
		return domain.Reservation{}, &domain.ConflictError{RoomID: res.RoomID, Entry: res.CheckIn, Exit: res.CheckOut}
	}

	if err := s.reservations.Update(ctx, res); err != nil {
		return domain.Reservation{}, fmt.Errorf("updating reservation: %w", err)
	}

	s.notify(ctx, domain.EventReservationEdited, domain.Notification{
		EntityID:  res.ID,
		Code:      res.Code,
		GuestName: res.GuestName,
		Detail:    changes.Summary(),
	})

	return res, nil
}

// ConfirmInput optionally updates guest details at confirmation time.
type ConfirmInput struct {
	GuestType *string
	Notes     *string
}

// Confirm marks the reservation confirmed and opens the stay for it. When
// stay creation fails (the room became occupied concurrently), the
// confirmation is rolled back and the stay error surfaces as-is.
func (s *ReservationService) Confirm(ctx context.Context, id string, in *ConfirmInput, actor domain.Actor) (domain.Stay, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return domain.Stay{}, err
	}
	switch res.Status {
	case domain.ReservationCancelled:
		return domain.Stay{}, &domain.StateError{Op: "confirm reservation", Reason: "reservation is cancelled"}
	case domain.ReservationConfirmed:
		return domain.Stay{}, &domain.StateError{Op: "confirm reservation", Reason: "reservation is already confirmed"}
	}

	if in != nil {
		if in.GuestType != nil {
			res.GuestType = *in.GuestType
		}
		if in.Notes != nil {
			res.Notes = *in.Notes
		}
	}

	now := s.clock.Now()
	res.Status = domain.ReservationConfirmed
	res.ConfirmedBy = actor.ID
	res.ConfirmedAt = &now

	if err := s.reservations.Update(ctx, res); err != nil {
		return domain.Stay{}, fmt.Errorf("confirming reservation: %w", err)
	}

	stay, err := s.stays.CreateFromReservation(ctx, res, actor)
	if err != nil {
		// Roll back to pending so the reservation can be retried or cancelled.
		res.Status = domain.ReservationPending
		res.ConfirmedBy = ""
		res.ConfirmedAt = nil
		if rbErr := s.reservations.Update(ctx, res); rbErr != nil {
			slog.ErrorContext(ctx, "rolling back confirmation failed",
				"reservation_id", res.ID, "error", rbErr)
		}
		return domain.Stay{}, err
	}

	s.notify(ctx, domain.EventReservationConfirmed, domain.Notification{
		EntityID:  res.ID,
		Code:      res.Code,
		GuestName: res.GuestName,
		Detail:    "stay " + stay.Code,
	})

	return stay, nil
}

// Cancel soft-cancels a pending reservation with a reason. Idempotent:
// cancelling an already cancelled reservation is a no-op. Confirmed
// reservations are terminal and cannot be cancelled.
func (s *ReservationService) Cancel(ctx context.Context, id, reason string, actor domain.Actor) error {
	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if res.Status == domain.ReservationCancelled {
		return nil
	}
	if res.Status == domain.ReservationConfirmed {
		return &domain.StateError{Op: "cancel reservation", Reason: "reservation is already confirmed"}
	}

	now := s.clock.Now()
	res.Status = domain.ReservationCancelled
	res.CancelledBy = actor.ID
	res.CancelledAt = &now
	res.CancelReason = reason

	if err := s.reservations.Update(ctx, res); err != nil {
		return fmt.Errorf("cancelling reservation: %w", err)
	}

	s.notify(ctx, domain.EventReservationCancelled, domain.Notification{
		EntityID:  res.ID,
		Code:      res.Code,
		GuestName: res.GuestName,
		Detail:    reason,
	})

	return nil
}

// GetByID returns a reservation by its unique identifier.
func (s *ReservationService) GetByID(ctx context.Context, id string) (domain.Reservation, error) {
	return s.reservations.GetByID(ctx, id)
}

// List returns reservations matching the given filter.
func (s *ReservationService) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	return s.reservations.List(ctx, filter)
}

func (s *ReservationService) notify(ctx context.Context, event domain.Event, n domain.Notification) {
	if err := s.publisher.Publish(ctx, event, n); err != nil {
		slog.ErrorContext(ctx, "publishing reservation event failed",
			"event", event, "reservation_id", n.EntityID, "error", err)
	}
}

// insertWithRetry allocates a monthly reservation code, builds the
// reservation and inserts it, retrying exactly once on a code collision.
func (s *ReservationService) insertWithRetry(ctx context.Context, build func(id, code string) domain.Reservation) (domain.Reservation, error) {
	var res domain.Reservation
	for attempt := 0; attempt < 2; attempt++ {
		id, err := generateID()
		if err != nil {
			return domain.Reservation{}, fmt.Errorf("generating reservation id: %w", err)
		}
		code, err := s.codes.Next(ctx, ScopeReservations, s.clock.Today())
		if err != nil {
			return domain.Reservation{}, err
		}

		res = build(id, code)
		err = s.reservations.Create(ctx, res)
		if err == nil {
			return res, nil
		}
		if !isCodeTaken(err) || attempt == 1 {
			return domain.Reservation{}, fmt.Errorf("creating reservation: %w", err)
		}
	}
	return res, nil
}

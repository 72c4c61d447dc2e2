package app

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/quietbay/innkeep/internal/domain"
)

// StayService drives the stay lifecycle: check-in, edits, manual and
// automatic checkout, and deletion. It orchestrates room status transitions
// and keeps the ledger in sync through LedgerService. Ledger and
// notification side effects are best-effort: their failures are logged with
// the stay id and never fail the stay operation, favoring correct room and
// stay state over strict ledger consistency.
type StayService struct {
	stays        domain.StayRepository
	reservations domain.ReservationRepository
	rooms        *RoomService
	conflicts    *ConflictChecker
	codes        *CodeAllocator
	ledger       *LedgerService
	publisher    domain.EventPublisher
	clock        domain.Clock
}

// NewStayService creates a service with the given collaborators.
func NewStayService(
	stays domain.StayRepository,
	reservations domain.ReservationRepository,
	rooms *RoomService,
	conflicts *ConflictChecker,
	codes *CodeAllocator,
	ledger *LedgerService,
	publisher domain.EventPublisher,
	clock domain.Clock,
) *StayService {
	return &StayService{
		stays:        stays,
		reservations: reservations,
		rooms:        rooms,
		conflicts:    conflicts,
		codes:        codes,
		ledger:       ledger,
		publisher:    publisher,
		clock:        clock,
	}
}

// CheckInInput holds the fields for a walk-in check-in.
type CheckInInput struct {
	RoomID         string
	GuestName      string
	Nights         int
	DailyRateCents int64 // 0 means use the room's default rate
	PaymentMethod  string
	Notes          string
}

// CheckIn starts a manual stay today. The room must be available, free of
// reservations covering today, and free of interval conflicts for the
// whole stay.
func (s *StayService) CheckIn(ctx context.Context, in CheckInInput, actor domain.Actor) (domain.Stay, error) {
	if in.GuestName == "" {
		return domain.Stay{}, &domain.ValidationError{Field: "guest_name", Reason: "required"}
	}
	if in.Nights <= 0 {
		return domain.Stay{}, &domain.ValidationError{Field: "nights", Reason: "must be positive"}
	}
	if in.PaymentMethod == "" {
		return domain.Stay{}, &domain.ValidationError{Field: "payment_method", Reason: "required"}
	}

	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return domain.Stay{}, err
	}

	today := s.clock.Today()
	checkOut := today.AddDate(0, 0, in.Nights)

	switch room.Status {
	case domain.RoomOccupied:
		return domain.Stay{}, &domain.ConflictError{RoomID: room.ID, Entry: today, Exit: checkOut}
	case domain.RoomMaintenance:
		return domain.Stay{}, &domain.StateError{Op: "check in", Reason: "room is under maintenance"}
	}

	// A reservation covering today blocks a walk-in: the room is promised.
	covering, err := s.reservations.FindOverlapping(ctx, room.ID, today, today.AddDate(0, 0, 1), "")
	if err != nil {
		return domain.Stay{}, fmt.Errorf("checking reservations for today: %w", err)
	}
	if len(covering) > 0 {
		return domain.Stay{}, &domain.ConflictError{RoomID: room.ID, Entry: today, Exit: checkOut}
	}

	rate := in.DailyRateCents
	if rate == 0 {
		rate = room.DailyRateCents
	}
	if rate <= 0 {
		return domain.Stay{}, &domain.ValidationError{Field: "daily_rate", Reason: "must be positive"}
	}

	conflict, err := s.conflicts.HasConflict(ctx, room.ID, today, checkOut, ConflictExclusions{})
	if err != nil {
		return domain.Stay{}, err
	}
	if conflict {
		return domain.Stay{}, &domain.ConflictError{RoomID: room.ID, Entry: today, Exit: checkOut}
	}

	stay, err := s.insertWithRetry(ctx, func(id, code string) domain.Stay {
		st := domain.NewStay(id, code, room.ID, in.GuestName, today, checkOut,
			rate, rate*int64(in.Nights), in.PaymentMethod, domain.StayManual, actor.ID)
		st.Notes = in.Notes
		return st
	})
	if err != nil {
		return domain.Stay{}, err
	}

	if _, err := s.rooms.Occupy(ctx, room.ID); err != nil {
		return domain.Stay{}, fmt.Errorf("occupying room %s: %w", room.Number, err)
	}

	s.syncLedger(ctx, "check-in", stay, actor)
	s.notify(ctx, domain.EventStayCreated, stayNotification(stay, room.Number, ""))

	return stay, nil
}

// EditStayInput holds optional edits to a stay. A nil field is untouched.
type EditStayInput struct {
	GuestName      *string
	Nights         *int
	DailyRateCents *int64
	PaymentMethod  *string
	RoomID         *string
	Notes          *string
}

// Edit updates an active stay. Night-count and rate changes recompute the
// total; interval changes re-run the conflict check excluding the stay
// itself (and its source reservation, which covers the same dates). Moving
// to another room frees the old one and occupies the new one under the
// same conflict rules. A total change of at least one cent resyncs the
// ledger entry.
func (s *StayService) Edit(ctx context.Context, id string, in EditStayInput, actor domain.Actor) (domain.Stay, error) {
	stay, err := s.stays.GetByID(ctx, id)
	if err != nil {
		return domain.Stay{}, err
	}

	today := s.clock.Today()
	if stay.Cancelled {
		return domain.Stay{}, &domain.StateError{Op: "edit stay", Reason: "stay is cancelled"}
	}
	if stay.CheckOut.Before(today) {
		return domain.Stay{}, &domain.StateError{Op: "edit stay", Reason: "stay is finalized"}
	}

	var changes domain.ChangeSet
	oldTotal := stay.TotalCents

	if in.GuestName != nil {
		if *in.GuestName == "" {
			return domain.Stay{}, &domain.ValidationError{Field: "guest_name", Reason: "required"}
		}
		changes.Record("guest_name", stay.GuestName, *in.GuestName)
		stay.GuestName = *in.GuestName
	}
	if in.Nights != nil {
		if *in.Nights <= 0 {
			return domain.Stay{}, &domain.ValidationError{Field: "nights", Reason: "must be positive"}
		}
		newCheckOut := stay.CheckIn.AddDate(0, 0, *in.Nights)
		changes.Record("check_out", stay.CheckOut.Format("2006-01-02"), newCheckOut.Format("2006-01-02"))
		stay.CheckOut = newCheckOut
	}
	if in.DailyRateCents != nil {
		if *in.DailyRateCents <= 0 {
			return domain.Stay{}, &domain.ValidationError{Field: "daily_rate", Reason: "must be positive"}
		}
		changes.RecordInt("daily_rate_cents", stay.DailyRateCents, *in.DailyRateCents)
		stay.DailyRateCents = *in.DailyRateCents
	}
	if in.PaymentMethod != nil {
		changes.Record("payment_method", stay.PaymentMethod, *in.PaymentMethod)
		stay.PaymentMethod = *in.PaymentMethod
	}
	if in.Notes != nil {
		stay.Notes = *in.Notes
	}

	stay.TotalCents = stay.DailyRateCents * int64(nightsBetween(stay.CheckIn, stay.CheckOut))
	changes.RecordInt("total_cents", oldTotal, stay.TotalCents)

	excl := ConflictExclusions{StayID: stay.ID, ReservationID: stay.ReservationID}

	if in.RoomID != nil && *in.RoomID != stay.RoomID {
		if err := s.moveRoom(ctx, &stay, *in.RoomID, excl, &changes); err != nil {
			return domain.Stay{}, err
		}
	} else {
		conflict, err := s.conflicts.HasConflict(ctx, stay.RoomID, stay.CheckIn, stay.CheckOut, excl)
		if err != nil {
			return domain.Stay{}, err
		}
		if conflict {
			return domain.Stay{}, &domain.ConflictError{RoomID: stay.RoomID, Entry: stay.CheckIn, Exit: stay.CheckOut}
		}
	}

	if err := s.stays.Update(ctx, stay); err != nil {
		return domain.Stay{}, fmt.Errorf("updating stay: %w", err)
	}

	if delta(oldTotal, stay.TotalCents) >= resyncThresholdCents {
		s.resyncLedger(ctx, "edit", stay, actor)
	}

	s.notify(ctx, domain.EventStayEdited, stayNotification(stay, "", changes.Summary()))

	return stay, nil
}

// CheckoutInput holds the fields for a manual checkout.
type CheckoutInput struct {
	RoomID string
	Reason string
}

// CheckoutManual finalizes the most recent stay of an occupied room. The
// total is recomputed from the nights actually elapsed (minimum one) and
// the room is freed.
func (s *StayService) CheckoutManual(ctx context.Context, in CheckoutInput, actor domain.Actor) (domain.Stay, error) {
	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return domain.Stay{}, err
	}
	if room.Status != domain.RoomOccupied {
		return domain.Stay{}, &domain.StateError{Op: "checkout", Reason: "room is not occupied"}
	}

	stay, err := s.stays.LatestForRoom(ctx, room.ID)
	if err != nil {
		return domain.Stay{}, err
	}

	return s.checkout(ctx, stay, room, in.Reason, actor, domain.EventStayCheckedOut)
}

// CheckoutAutomatic finalizes a stay on its exit date without user-supplied
// reason text. Only the checkout scheduler calls this, for stays whose
// checkout date is today and whose room is still occupied.
func (s *StayService) CheckoutAutomatic(ctx context.Context, stay domain.Stay, actor domain.Actor) (domain.Stay, error) {
	room, err := s.rooms.GetByID(ctx, stay.RoomID)
	if err != nil {
		return domain.Stay{}, err
	}
	if room.Status != domain.RoomOccupied {
		return domain.Stay{}, &domain.StateError{Op: "automatic checkout", Reason: "room is not occupied"}
	}

	return s.checkout(ctx, stay, room, "", actor, domain.EventStayAutoCheckedOut)
}

// CreateFromReservation opens the stay for a confirmed reservation. It
// mirrors CheckIn, sourcing the guest, rate and nights from the
// reservation; the stay code is the reservation code under an "R" prefix
// rather than a fresh monthly sequence. The source reservation is excluded
// from the conflict check since it covers the same dates by construction.
func (s *StayService) CreateFromReservation(ctx context.Context, res domain.Reservation, actor domain.Actor) (domain.Stay, error) {
	room, err := s.rooms.GetByID(ctx, res.RoomID)
	if err != nil {
		return domain.Stay{}, err
	}

	today := s.clock.Today()
	checkOut := today.AddDate(0, 0, res.Nights)

	switch room.Status {
	case domain.RoomOccupied:
		return domain.Stay{}, &domain.ConflictError{RoomID: room.ID, Entry: today, Exit: checkOut}
	case domain.RoomMaintenance:
		return domain.Stay{}, &domain.StateError{Op: "create stay", Reason: "room is under maintenance"}
	}

	excl := ConflictExclusions{ReservationID: res.ID}
	conflict, err := s.conflicts.HasConflict(ctx, room.ID, today, checkOut, excl)
	if err != nil {
		return domain.Stay{}, err
	}
	if conflict {
		return domain.Stay{}, &domain.ConflictError{RoomID: room.ID, Entry: today, Exit: checkOut}
	}

	id, err := generateID()
	if err != nil {
		return domain.Stay{}, fmt.Errorf("generating stay id: %w", err)
	}

	stay := domain.NewStay(id, "R"+res.Code, room.ID, res.GuestName, today, checkOut,
		res.DailyRateCents, res.TotalCents, res.PaymentMethod, domain.StayFromReservation, actor.ID)
	stay.ReservationID = res.ID
	stay.Notes = res.Notes

	if err := s.stays.Create(ctx, stay); err != nil {
		return domain.Stay{}, fmt.Errorf("creating stay: %w", err)
	}

	if _, err := s.rooms.Occupy(ctx, room.ID); err != nil {
		return domain.Stay{}, fmt.Errorf("occupying room %s: %w", room.Number, err)
	}

	s.syncLedger(ctx, "reservation confirmation", stay, actor)
	s.notify(ctx, domain.EventStayCreated, stayNotification(stay, room.Number, "from reservation "+res.Code))

	return stay, nil
}

// Delete removes a stay permanently. Active stays cannot be deleted; the
// linked ledger entry is cancelled first, and the room freed if this stay
// still holds it.
func (s *StayService) Delete(ctx context.Context, id string, actor domain.Actor) error {
	stay, err := s.stays.GetByID(ctx, id)
	if err != nil {
		return err
	}

	room, err := s.rooms.GetByID(ctx, stay.RoomID)
	if err != nil {
		return err
	}

	if domain.IsActive(stay, room.Status, s.clock.Today()) {
		return &domain.StateError{Op: "delete stay", Reason: "stay is active"}
	}

	// Ledger first: a deleted stay must not leave a live income row behind.
	if err := s.ledger.CancelStayEntries(ctx, stay.ID, "stay deleted", actor); err != nil {
		return err
	}

	if room.Status == domain.RoomOccupied {
		latest, err := s.stays.LatestForRoom(ctx, room.ID)
		if err == nil && latest.ID == stay.ID {
			if _, err := s.rooms.Free(ctx, room.ID); err != nil {
				return fmt.Errorf("freeing room %s: %w", room.Number, err)
			}
		}
	}

	if err := s.stays.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting stay: %w", err)
	}

	s.notify(ctx, domain.EventStayDeleted, stayNotification(stay, room.Number, ""))
	return nil
}

// GetByID returns a stay by its unique identifier.
func (s *StayService) GetByID(ctx context.Context, id string) (domain.Stay, error) {
	return s.stays.GetByID(ctx, id)
}

// List returns stays matching the given filter.
func (s *StayService) List(ctx context.Context, filter domain.StayFilter) ([]domain.Stay, error) {
	return s.stays.List(ctx, filter)
}

// ReminderPass notifies about stays due to check out today whose room is
// still occupied. It mutates nothing; each stay is handled independently.
func (s *StayService) ReminderPass(ctx context.Context) int {
	due, err := s.dueToday(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "reminder pass: listing due stays failed", "error", err)
		return 0
	}

	reminded := 0
	for _, stay := range due {
		s.notify(ctx, domain.EventCheckoutReminder, stayNotification(stay, "", "checkout due today"))
		reminded++
	}
	return reminded
}

// CheckoutPass automatically checks out every stay whose exit date is today
// and whose room is still occupied. One stay's failure is logged and does
// not block the rest of the run.
func (s *StayService) CheckoutPass(ctx context.Context, actor domain.Actor) int {
	due, err := s.dueToday(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "checkout pass: listing due stays failed", "error", err)
		return 0
	}

	processed := 0
	for _, stay := range due {
		if _, err := s.CheckoutAutomatic(ctx, stay, actor); err != nil {
			slog.ErrorContext(ctx, "automatic checkout failed",
				"stay_id", stay.ID, "stay_code", stay.Code, "error", err)
			continue
		}
		processed++
	}
	return processed
}

// dueToday returns stays whose checkout date is today and whose room is
// still occupied.
func (s *StayService) dueToday(ctx context.Context) ([]domain.Stay, error) {
	today := s.clock.Today()
	stays, err := s.stays.ListByCheckoutDate(ctx, today)
	if err != nil {
		return nil, err
	}

	due := make([]domain.Stay, 0, len(stays))
	for _, stay := range stays {
		room, err := s.rooms.GetByID(ctx, stay.RoomID)
		if err != nil {
			slog.ErrorContext(ctx, "loading room for due stay failed",
				"stay_id", stay.ID, "room_id", stay.RoomID, "error", err)
			continue
		}
		if domain.IsActive(stay, room.Status, today) && room.Status == domain.RoomOccupied {
			due = append(due, stay)
		}
	}
	return due, nil
}

func (s *StayService) checkout(ctx context.Context, stay domain.Stay, room domain.Room, reason string, actor domain.Actor, event domain.Event) (domain.Stay, error) {
	today := s.clock.Today()

	nights := nightsBetween(stay.CheckIn, today)
	stay.CheckOut = today
	stay.TotalCents = stay.DailyRateCents * int64(nights)
	if reason != "" {
		stay.Notes = appendNote(stay.Notes, "checkout: "+reason)
	}

	if err := s.stays.Update(ctx, stay); err != nil {
		return domain.Stay{}, fmt.Errorf("updating stay: %w", err)
	}

	if _, err := s.rooms.Free(ctx, room.ID); err != nil {
		return domain.Stay{}, fmt.Errorf("freeing room %s: %w", room.Number, err)
	}

	s.resyncLedger(ctx, "checkout", stay, actor)
	s.notify(ctx, event, stayNotification(stay, room.Number, reason))

	return stay, nil
}

func (s *StayService) moveRoom(ctx context.Context, stay *domain.Stay, newRoomID string, excl ConflictExclusions, changes *domain.ChangeSet) error {
	newRoom, err := s.rooms.GetByID(ctx, newRoomID)
	if err != nil {
		return err
	}
	if newRoom.Status == domain.RoomMaintenance {
		return &domain.StateError{Op: "edit stay", Reason: "target room is under maintenance"}
	}
	if newRoom.Status == domain.RoomOccupied {
		return &domain.ConflictError{RoomID: newRoom.ID, Entry: stay.CheckIn, Exit: stay.CheckOut}
	}

	conflict, err := s.conflicts.HasConflict(ctx, newRoom.ID, stay.CheckIn, stay.CheckOut, excl)
	if err != nil {
		return err
	}
	if conflict {
		return &domain.ConflictError{RoomID: newRoom.ID, Entry: stay.CheckIn, Exit: stay.CheckOut}
	}

	oldRoomID := stay.RoomID
	if _, err := s.rooms.Free(ctx, oldRoomID); err != nil {
		return fmt.Errorf("freeing room %s: %w", oldRoomID, err)
	}
	if _, err := s.rooms.Occupy(ctx, newRoom.ID); err != nil {
		return fmt.Errorf("occupying room %s: %w", newRoom.Number, err)
	}

	changes.Record("room_id", oldRoomID, newRoom.ID)
	stay.RoomID = newRoom.ID
	return nil
}

// syncLedger registers the stay's income entry. Best-effort: a failure here
// must not corrupt the stay and room state that already committed, so it is
// logged for manual reconciliation instead of propagated.
func (s *StayService) syncLedger(ctx context.Context, op string, stay domain.Stay, actor domain.Actor) {
	outcome, err := s.ledger.RegisterStayEntry(ctx, stay, actor)
	if err != nil {
		slog.ErrorContext(ctx, "ledger registration failed, needs manual reconciliation",
			"op", op, "stay_id", stay.ID, "stay_code", stay.Code, "error", err)
		return
	}
	slog.InfoContext(ctx, "ledger entry synced",
		"op", op, "stay_id", stay.ID, "outcome", string(outcome))
}

// resyncLedger realigns the stay's ledger entry with its current total,
// under the same best-effort policy as syncLedger.
func (s *StayService) resyncLedger(ctx context.Context, op string, stay domain.Stay, actor domain.Actor) {
	outcome, err := s.ledger.Resync(ctx, stay, actor)
	if err != nil {
		slog.ErrorContext(ctx, "ledger resync failed, needs manual reconciliation",
			"op", op, "stay_id", stay.ID, "stay_code", stay.Code, "error", err)
		return
	}
	slog.InfoContext(ctx, "ledger entry synced",
		"op", op, "stay_id", stay.ID, "outcome", string(outcome))
}

func (s *StayService) notify(ctx context.Context, event domain.Event, n domain.Notification) {
	if err := s.publisher.Publish(ctx, event, n); err != nil {
		slog.ErrorContext(ctx, "publishing stay event failed",
			"event", event, "stay_id", n.EntityID, "error", err)
	}
}

// insertWithRetry allocates a monthly stay code, builds the stay and
// inserts it, retrying exactly once on a code collision.
func (s *StayService) insertWithRetry(ctx context.Context, build func(id, code string) domain.Stay) (domain.Stay, error) {
	var stay domain.Stay
	for attempt := 0; attempt < 2; attempt++ {
		id, err := generateID()
		if err != nil {
			return domain.Stay{}, fmt.Errorf("generating stay id: %w", err)
		}
		code, err := s.codes.Next(ctx, ScopeStays, s.clock.Today())
		if err != nil {
			return domain.Stay{}, err
		}

		stay = build(id, code)
		err = s.stays.Create(ctx, stay)
		if err == nil {
			return stay, nil
		}
		if !isCodeTaken(err) || attempt == 1 {
			return domain.Stay{}, fmt.Errorf("creating stay: %w", err)
		}
	}
	return stay, nil
}

// nightsBetween counts calendar nights from from to to, minimum one. Used
// for checkout recomputation from actual elapsed time.
func nightsBetween(from, to time.Time) int {
	n := int(math.Round(to.Sub(from).Hours() / 24))
	if n < 1 {
		n = 1
	}
	return n
}

func delta(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}

func appendNote(notes, line string) string {
	if notes == "" {
		return line
	}
	return strings.TrimRight(notes, "\n") + "\n" + line
}

func stayNotification(stay domain.Stay, roomNumber, detail string) domain.Notification {
	return domain.Notification{
		EntityID:   stay.ID,
		Code:       stay.Code,
		RoomNumber: roomNumber,
		GuestName:  stay.GuestName,
		Detail:     detail,
	}
}

package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/quietbay/innkeep/internal/app"
	"github.com/quietbay/innkeep/internal/domain"
)

// seedStay plants a stay directly in the repository, bypassing the service,
// so tests can set up check-ins that happened before "today".
func seedStay(t *testing.T, f *fixture, id, code, roomID string, checkIn, checkOut time.Time, rateCents int64) domain.Stay {
	t.Helper()
	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	stay := domain.NewStay(id, code, roomID, "Ana", checkIn, checkOut,
		rateCents, rateCents*int64(nights), "cash", domain.StayManual, testActor.ID)
	if err := f.stays.Create(context.Background(), stay); err != nil {
		t.Fatalf("seeding stay: %v", err)
	}
	return stay
}

func occupyRoom(t *testing.T, f *fixture, roomID string) {
	t.Helper()
	if _, err := f.roomSvc.Occupy(context.Background(), roomID); err != nil {
		t.Fatalf("occupying room: %v", err)
	}
}

func TestCheckIn_Success(t *testing.T) {
	today := day(2025, 11, 10)
	f := newFixture(today)
	f.addRoom("r-101", "101", 10000)
	ctx := context.Background()

	stay, err := f.staySvc.CheckIn(ctx, app.CheckInInput{
		RoomID:        "r-101",
		GuestName:     "Ana",
		Nights:        3,
		PaymentMethod: "cash",
	}, testActor)
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}

	if stay.Origin != domain.StayManual {
		t.Errorf("Origin = %q, want %q", stay.Origin, domain.StayManual)
	}
	if !stay.CheckIn.Equal(today) {
		t.Errorf("CheckIn = %v, want today", stay.CheckIn)
	}
	if !stay.CheckOut.Equal(day(2025, 11, 13)) {
		t.Errorf("CheckOut = %v, want 2025-11-13", stay.CheckOut)
	}
	// Rate defaults from the room: 3 nights at 100.00.
	if stay.TotalCents != 30000 {
		t.Errorf("TotalCents = %d, want 30000", stay.TotalCents)
	}
	if stay.Code != "202511001" {
		t.Errorf("Code = %q, want 202511001", stay.Code)
	}

	room, _ := f.rooms.GetByID(ctx, "r-101")
	if room.Status != domain.RoomOccupied {
		t.Errorf("room Status = %q, want %q", room.Status, domain.RoomOccupied)
	}

	active, _ := f.ledger.ActiveByReference(ctx, domain.LedgerFromStay, stay.ID)
	if len(active) != 1 {
		t.Fatalf("got %d active ledger entries, want 1", len(active))
	}
	if active[0].Kind != domain.LedgerIn || active[0].ValueCents != 30000 {
		t.Errorf("ledger entry = %s %d, want in 30000", active[0].Kind, active[0].ValueCents)
	}
	if f.publisher.count(domain.EventStayCreated) != 1 {
		t.Errorf("expected one stay.created event")
	}
}

func TestCheckIn_Validation(t *testing.T) {
	f := newFixture(day(2025, 11, 10))
	f.addRoom("r-101", "101", 10000)

	cases := []struct {
		name string
		in   app.CheckInInput
	}{
		{"missing guest name", app.CheckInInput{RoomID: "r-101", Nights: 2, PaymentMethod: "cash"}},
		{"zero nights", app.CheckInInput{RoomID: "r-101", GuestName: "Ana", PaymentMethod: "cash"}},
		{"missing payment method", app.CheckInInput{RoomID: "r-101", GuestName: "Ana", Nights: 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.staySvc.CheckIn(context.Background(), tc.in, testActor)
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCheckIn_RoomStateBlocks(t *testing.T) {
	f := newFixture(day(2025, 11, 10))
	f.addRoom("r-101", "101", 10000)
	f.addRoom("r-102", "102", 10000)
	ctx := context.Background()

	occupyRoom(t, f, "r-101")
	_, err := f.staySvc.CheckIn(ctx, app.CheckInInput{
		RoomID: "r-101", GuestName: "Ana", Nights: 2, PaymentMethod: "cash",
	}, testActor)
	var cErr *domain.ConflictError
	if !errors.As(err, &cErr) {
		t.Errorf("occupied room: expected ConflictError, got %v", err)
	}

	if _, err := f.roomSvc.EnterMaintenance(ctx, "r-102"); err != nil {
		t.Fatalf("EnterMaintenance failed: %v", err)
	}
	_, err = f.staySvc.CheckIn(ctx, app.CheckInInput{
		RoomID: "r-102", GuestName: "Ana", Nights: 2, PaymentMethod: "cash",
	}, testActor)
	var stErr *domain.StateError
	if !errors.As(err, &stErr) {
		t.Errorf("maintenance room: expected StateError, got %v", err)
	}
}

func TestCheckIn_ReservationCoveringTodayBlocks(t *testing.T) {
	today := day(2025, 11, 10)
	f := newFixture(today)
	f.addRoom("r-101", "101", 10000)
	ctx := context.Background()

	// Seed a pending reservation spanning today.
	res := domain.NewReservation("res-1", "202511001", "Bea", "r-101",
		day(2025, 11, 9), 3, 10000, "card", testActor.ID)
	if err := f.reservations.Create(ctx, res); err != nil {
		t.Fatalf("seeding reservation: %v", err)
	}

	_, err := f.staySvc.CheckIn(ctx, app.CheckInInput{
		RoomID: "r-101", GuestName: "Ana", Nights: 1, PaymentMethod: "cash",
	}, testActor)
	var cErr *domain.ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestEditStay_ExtendResyncsLedger(t *testing.T) {
	today := day(2025, 11, 10)
	f := newFixture(today)
	f.addRoom("r-101", "101", 10000)
	ctx := context.Background()

	stay, err := f.staySvc.CheckIn(ctx, app.CheckInInput{
		RoomID: "r-101", GuestName: "Ana", Nights: 3, PaymentMethod: "cash",
	}, testActor)
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}

	nights := 5
	edited, err := f.staySvc.Edit(ctx, stay.ID, app.EditStayInput{Nights: &nights}, testActor)
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}

	if !edited.CheckOut.Equal(day(2025, 11, 15)) {
		t.Errorf("CheckOut = %v, want 2025-11-15", edited.CheckOut)
	}
	if edited.TotalCents != 50000 {
		t.Errorf("TotalCents = %d, want 50000", edited.TotalCents)
	}

	// The old income entry is cancelled and a fresh one carries the new total.
	active, _ := f.ledger.ActiveByReference(ctx, domain.LedgerFromStay, stay.ID)
	if len(active) != 1 {
		t.Fatalf("got %d active ledger entries, want 1", len(active))
	}
	if active[0].ValueCents != 50000 {
		t.Errorf("ledger ValueCents = %d, want 50000", active[0].ValueCents)
	}
	if len(f.ledger.entries) != 2 {
		t.Errorf("got %d ledger entries total, want 2 (original kept cancelled)", len(f.ledger.entries))
	}
}

func TestEditStay_SameTotalKeepsLedger(t *testing.T) {
	today := day(2025, 11, 10)
	f := newFixture(today)
	f.addRoom("r-101", "101", 10000)
	ctx := context.Background()

	stay, err := f.staySvc.CheckIn(ctx, app.CheckInInput{
		RoomID: "r-101", GuestName: "Ana", Nights: 3, PaymentMethod: "cash",
	}, testActor)
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}

	name := "Ana Maria"
	if _, err := f.staySvc.Edit(ctx, stay.ID, app.EditStayInput{GuestName: &name}, testActor); err != nil {
		t.Fatalf("Edit failed: %v", err)
	}

	if len(f.ledger.entries) != 1 {
		t.Errorf("got %d ledger entries, want 1 (no resync on unchanged total)", len(f.ledger.entries))
	}
}

func TestEditStay_FinalizedRejected(t *testing.T) {
	today := day(2025, 11, 10)
	f := newFixture(today)
	f.addRoom("r-101", "101", 10000)

	// Checked out before today.
	stay := seedStay(t, f, "s-old", "202511001", "r-101", day(2025, 11, 5), day(2025, 11, 8), 10000)

	name := "Bea"
	_, err := f.staySvc.Edit(context.Background(), stay.ID, app.EditStayInput{GuestName: &name}, testActor)
	var stErr *domain.StateError
	if !errors.As(err, &stErr) {
		t.Fatalf("expected StateError, got %v", err)
	}
}

func TestEditStay_MoveRoom(t *testing.T) {
	today := day(2025, 11, 10)
	f := newFixture(today)
	f.addRoom("r-101", "101", 10000)
	f.addRoom("r-102", "102", 10000)
	ctx := context.Background()

	stay, err := f.staySvc.CheckIn(ctx, app.CheckInInput{
		RoomID: "r-101", GuestName: "Ana", Nights: 3, PaymentMethod: "cash",
	}, testActor)
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}

	newRoom := "r-102"
	moved, err := f.staySvc.Edit(ctx, stay.ID, app.EditStayInput{RoomID: &newRoom}, testActor)
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if moved.RoomID != "r-102" {
		t.Errorf("RoomID = %q, want r-102", moved.RoomID)
	}

	old, _ := f.rooms.GetByID(ctx, "r-101")
	if old.Status != domain.RoomAvailable {
		t.Errorf("old room Status = %q, want %q", old.Status, domain.RoomAvailable)
	}
	target, _ := f.rooms.GetByID(ctx, "r-102")
	if target.Status != domain.RoomOccupied {
		t.Errorf("new room Status = %q, want %q", target.Status, domain.RoomOccupied)
	}
}

func TestEditStay_MoveToOccupiedRoomRejected(t *testing.T) {
	today := day(2025, 11, 10)
	f := newFixture(today)
	f.addRoom("r-101", "101", 10000)
	f.addRoom("r-102", "102", 10000)
	ctx := context.Background()

	stay, err := f.staySvc.CheckIn(ctx, app.CheckInInput{
		RoomID: "r-101", GuestName: "Ana", Nights: 3, PaymentMethod: "cash",
	}, testActor)
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}
	occupyRoom(t, f, "r-102")

	newRoom := "r-102"
	_, err = f.staySvc.Edit(ctx, stay.ID, app.EditStayInput{RoomID: &newRoom}, testActor)
	var cErr *domain.ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
}

func TestCheckoutManual_RecomputesFromElapsedNights(t *testing.T) {
	today := day(2025, 11, 10)
	f := newFixture(today)
	f.addRoom("r-101", "101", 10000)
	ctx := context.Background()

	// Checked in two days ago for five nights, leaving early today.
	stay := seedStay(t, f, "s-1", "202511001", "r-101", day(2025, 11, 8), day(2025, 11, 13), 10000)
	occupyRoom(t, f, "r-101")

	out, err := f.staySvc.CheckoutManual(ctx, app.CheckoutInput{
		RoomID: "r-101",
		Reason: "early departure",
	}, testActor)
	if err != nil {
		t.Fatalf("CheckoutManual failed: %v", err)
	}

	if !out.CheckOut.Equal(today) {
		t.Errorf("CheckOut = %v, want today", out.CheckOut)
	}
	// Two nights actually slept, not the five booked.
	if out.TotalCents != 20000 {
		t.Errorf("TotalCents = %d, want 20000", out.TotalCents)
	}
	if !strings.Contains(out.Notes, "checkout: early departure") {
		t.Errorf("Notes = %q, want checkout reason recorded", out.Notes)
	}

	room, _ := f.rooms.GetByID(ctx, "r-101")
	if room.Status != domain.RoomAvailable {
		t.Errorf("room Status = %q, want %q", room.Status, domain.RoomAvailable)
	}

	active, _ := f.ledger.ActiveByReference(ctx, domain.LedgerFromStay, stay.ID)
	if len(active) != 1 || active[0].ValueCents != 20000 {
		t.Errorf("ledger not aligned with final total: %+v", active)
	}
}

func TestCheckoutManual_RoomNotOccupied(t *testing.T) {
	f := newFixture(day(2025, 11, 10))
	f.addRoom("r-101", "101", 10000)

	_, err := f.staySvc.CheckoutManual(context.Background(), app.CheckoutInput{RoomID: "r-101"}, testActor)
	var stErr *domain.StateError
	if !errors.As(err, &stErr) {
		t.Fatalf("expected StateError, got %v", err)
	}
}

func TestCheckoutManual_SameDayMinimumOneNight(t *testing.T) {
	today := day(2025, 11, 10)
	f := newFixture(today)
	f.addRoom("r-101", "101", 10000)
	ctx := context.Background()

	if _, err := f.staySvc.CheckIn(ctx, app.CheckInInput{
		RoomID: "r-101", GuestName: "Ana", Nights: 3, PaymentMethod: "cash",
	}, testActor); err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}

	out, err := f.staySvc.CheckoutManual(ctx, app.CheckoutInput{RoomID: "r-101", Reason: "changed plans"}, testActor)
	if err != nil {
		t.Fatalf("CheckoutManual failed: %v", err)
	}
	if out.TotalCents != 10000 {
		t.Errorf("TotalCents = %d, want 10000 (one night minimum)", out.TotalCents)
	}
}

func TestCheckoutPass_FreesDueRooms(t *testing.T) {
	today := day(2025, 11, 10)
	f := newFixture(today)
	f.addRoom("r-101", "101", 10000)
	f.addRoom("r-102", "102", 10000)
	f.addRoom("r-103", "103", 10000)
	ctx := context.Background()

	// Due today, room occupied: gets checked out.
	due := seedStay(t, f, "s-due", "202511001", "r-101", day(2025, 11, 8), today, 10000)
	occupyRoom(t, f, "r-101")

	// Due today but the room was already freed by hand: skipped.
	seedStay(t, f, "s-gone", "202511002", "r-102", day(2025, 11, 9), today, 10000)

	// Not due yet: untouched.
	seedStay(t, f, "s-later", "202511003", "r-103", today, day(2025, 11, 12), 10000)
	occupyRoom(t, f, "r-103")

	processed := f.staySvc.CheckoutPass(ctx, domain.Actor{ID: "scheduler"})
	if processed != 1 {
		t.Fatalf("processed = %d, want 1", processed)
	}

	room, _ := f.rooms.GetByID(ctx, "r-101")
	if room.Status != domain.RoomAvailable {
		t.Errorf("room 101 Status = %q, want %q", room.Status, domain.RoomAvailable)
	}
	later, _ := f.rooms.GetByID(ctx, "r-103")
	if later.Status != domain.RoomOccupied {
		t.Errorf("room 103 Status = %q, want %q", later.Status, domain.RoomOccupied)
	}

	after, _ := f.staySvc.GetByID(ctx, due.ID)
	if !after.CheckOut.Equal(today) {
		t.Errorf("CheckOut = %v, want today", after.CheckOut)
	}
	// Automatic checkout never writes reason text.
	if after.Notes != "" {
		t.Errorf("Notes = %q, want empty", after.Notes)
	}
	if f.publisher.count(domain.EventStayAutoCheckedOut) != 1 {
		t.Errorf("expected one stay.auto_checked_out event")
	}
}

func TestReminderPass_NotifiesWithoutMutating(t *testing.T) {
	today := day(2025, 11, 10)
	f := newFixture(today)
	f.addRoom("r-101", "101", 10000)
	ctx := context.Background()

	stay := seedStay(t, f, "s-due", "202511001", "r-101", day(2025, 11, 8), today, 10000)
	occupyRoom(t, f, "r-101")

	reminded := f.staySvc.ReminderPass(ctx)
	if reminded != 1 {
		t.Fatalf("reminded = %d, want 1", reminded)
	}
	if f.publisher.count(domain.EventCheckoutReminder) != 1 {
		t.Errorf("expected one stay.checkout_reminder event")
	}

	room, _ := f.rooms.GetByID(ctx, "r-101")
	if room.Status != domain.RoomOccupied {
		t.Errorf("room Status = %q, want %q (reminder must not check out)", room.Status, domain.RoomOccupied)
	}
	after, _ := f.staySvc.GetByID(ctx, stay.ID)
	if !after.CheckOut.Equal(today) {
		t.Errorf("CheckOut changed to %v", after.CheckOut)
	}
}

func TestDeleteStay_ActiveRejected(t *testing.T) {
	today := day(2025, 11, 10)
	f := newFixture(today)
	f.addRoom("r-101", "101", 10000)
	ctx := context.Background()

	stay, err := f.staySvc.CheckIn(ctx, app.CheckInInput{
		RoomID: "r-101", GuestName: "Ana", Nights: 3, PaymentMethod: "cash",
	}, testActor)
	if err != nil {
		t.Fatalf("CheckIn failed: %v", err)
	}

	err = f.staySvc.Delete(ctx, stay.ID, testActor)
	var stErr *domain.StateError
	if !errors.As(err, &stErr) {
		t.Fatalf("expected StateError, got %v", err)
	}
}

func TestDeleteStay_CancelsLedgerAndFreesRoom(t *testing.T) {
	today := day(2025, 11, 10)
	f := newFixture(today)
	f.addRoom("r-101", "101", 10000)
	ctx := context.Background()

	// Past its checkout date but the room was never freed.
	stay := seedStay(t, f, "s-stale", "202511001", "r-101", day(2025, 11, 5), day(2025, 11, 8), 10000)
	occupyRoom(t, f, "r-101")
	if _, err := f.ledgerSvc.RegisterStayEntry(ctx, stay, testActor); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if err := f.staySvc.Delete(ctx, stay.ID, testActor); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := f.staySvc.GetByID(ctx, stay.ID); !errors.Is(err, domain.ErrStayNotFound) {
		t.Errorf("expected ErrStayNotFound after delete, got %v", err)
	}
	active, _ := f.ledger.ActiveByReference(ctx, domain.LedgerFromStay, stay.ID)
	if len(active) != 0 {
		t.Errorf("got %d active ledger entries, want 0", len(active))
	}
	room, _ := f.rooms.GetByID(ctx, "r-101")
	if room.Status != domain.RoomAvailable {
		t.Errorf("room Status = %q, want %q", room.Status, domain.RoomAvailable)
	}
}

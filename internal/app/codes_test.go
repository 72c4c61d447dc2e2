package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/quietbay/innkeep/internal/app"
	"github.com/quietbay/innkeep/internal/domain"
)

func newAllocator(stays *mockStayRepo) *app.CodeAllocator {
	return app.NewCodeAllocator(newMockReservationRepo(), stays, newMockLedgerRepo())
}

func TestNext_FirstCodeOfMonth(t *testing.T) {
	codes := newAllocator(newMockStayRepo())

	got, err := codes.Next(context.Background(), app.ScopeStays, day(2025, 11, 15))
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got != "202511001" {
		t.Errorf("code = %q, want %q", got, "202511001")
	}
}

func TestNext_IncrementsExisting(t *testing.T) {
	stays := newMockStayRepo()
	stays.stays["s-1"] = domain.Stay{ID: "s-1", Code: "202511007"}

	codes := newAllocator(stays)

	got, err := codes.Next(context.Background(), app.ScopeStays, day(2025, 11, 20))
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got != "202511008" {
		t.Errorf("code = %q, want %q", got, "202511008")
	}
}

func TestNext_ResetsEachMonth(t *testing.T) {
	stays := newMockStayRepo()
	stays.stays["s-1"] = domain.Stay{ID: "s-1", Code: "202511099"}

	codes := newAllocator(stays)

	got, err := codes.Next(context.Background(), app.ScopeStays, day(2025, 12, 1))
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got != "202512001" {
		t.Errorf("code = %q, want %q", got, "202512001")
	}
}

func TestNext_UnpaddedPast999(t *testing.T) {
	stays := newMockStayRepo()
	stays.stays["s-1"] = domain.Stay{ID: "s-1", Code: "202511999"}

	codes := newAllocator(stays)

	got, err := codes.Next(context.Background(), app.ScopeStays, day(2025, 11, 30))
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got != "2025111000" {
		t.Errorf("code = %q, want %q", got, "2025111000")
	}
}

func TestNext_ScopesAreIndependent(t *testing.T) {
	reservations := newMockReservationRepo()
	stays := newMockStayRepo()
	ledger := newMockLedgerRepo()
	stays.stays["s-1"] = domain.Stay{ID: "s-1", Code: "202511005"}

	codes := app.NewCodeAllocator(reservations, stays, ledger)
	ref := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)

	resCode, err := codes.Next(context.Background(), app.ScopeReservations, ref)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if resCode != "202511001" {
		t.Errorf("reservation code = %q, want %q (stay sequence must not leak)", resCode, "202511001")
	}
}

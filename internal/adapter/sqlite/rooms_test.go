package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quietbay/innkeep/internal/domain"
)

func TestRooms_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	room := seedRoom(t, store, "r-1", "101")

	got, err := store.Rooms.GetByID(ctx, "r-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Number != "101" {
		t.Errorf("Number = %q, want 101", got.Number)
	}
	if got.DailyRateCents != 10000 {
		t.Errorf("DailyRateCents = %d, want 10000", got.DailyRateCents)
	}
	if got.Status != domain.RoomAvailable {
		t.Errorf("Status = %q, want %q", got.Status, domain.RoomAvailable)
	}
	if got.MaintenanceSince != nil {
		t.Errorf("MaintenanceSince = %v, want nil", got.MaintenanceSince)
	}

	byNumber, err := store.Rooms.GetByNumber(ctx, "101")
	if err != nil {
		t.Fatalf("GetByNumber failed: %v", err)
	}
	if byNumber.ID != room.ID {
		t.Errorf("ID = %q, want %q", byNumber.ID, room.ID)
	}
}

func TestRooms_DuplicateNumber(t *testing.T) {
	store := newTestStore(t)
	seedRoom(t, store, "r-1", "101")

	err := store.Rooms.Create(context.Background(), domain.NewRoom("r-2", "101", 9000, 1))
	var conflict *domain.NumberConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected NumberConflictError, got %v", err)
	}
	if conflict.Number != "101" {
		t.Errorf("Number = %q, want 101", conflict.Number)
	}
}

func TestRooms_GetNotFound(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Rooms.GetByID(context.Background(), "missing"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}
	if _, err := store.Rooms.GetByNumber(context.Background(), "999"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestRooms_UpdateRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	room := seedRoom(t, store, "r-1", "101")

	since := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)
	room.Status = domain.RoomMaintenance
	room.MaintenanceSince = &since
	room.DailyRateCents = 12000
	if err := store.Rooms.Update(ctx, room); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.Rooms.GetByID(ctx, "r-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.RoomMaintenance {
		t.Errorf("Status = %q, want %q", got.Status, domain.RoomMaintenance)
	}
	if got.MaintenanceSince == nil || !got.MaintenanceSince.Equal(since) {
		t.Errorf("MaintenanceSince = %v, want %v", got.MaintenanceSince, since)
	}
	if got.DailyRateCents != 12000 {
		t.Errorf("DailyRateCents = %d, want 12000", got.DailyRateCents)
	}
}

func TestRooms_UpdateNotFound(t *testing.T) {
	store := newTestStore(t)
	room := domain.NewRoom("ghost", "404", 5000, 1)

	if err := store.Rooms.Update(context.Background(), room); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestRooms_ListFiltersByStatus(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedRoom(t, store, "r-1", "101")
	busy := seedRoom(t, store, "r-2", "102")
	busy.Status = domain.RoomOccupied
	if err := store.Rooms.Update(ctx, busy); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	all, err := store.Rooms.List(ctx, domain.RoomFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d rooms, want 2", len(all))
	}
	// Ordered by number.
	if all[0].Number != "101" || all[1].Number != "102" {
		t.Errorf("order = [%s %s], want [101 102]", all[0].Number, all[1].Number)
	}

	occupied := domain.RoomOccupied
	filtered, err := store.Rooms.List(ctx, domain.RoomFilter{Status: &occupied})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != "r-2" {
		t.Errorf("filtered = %+v, want just r-2", filtered)
	}
}

func TestRooms_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedRoom(t, store, "r-1", "101")
	if err := store.Rooms.Delete(ctx, "r-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Rooms.GetByID(ctx, "r-1"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound after delete, got %v", err)
	}
	if err := store.Rooms.Delete(ctx, "r-1"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound on second delete, got %v", err)
	}
}

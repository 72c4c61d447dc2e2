package domain_test

import (
	"testing"
	"time"

	"github.com/quietbay/innkeep/internal/domain"
)

func TestNewRoom(t *testing.T) {
	before := time.Now().UTC()
	room := domain.NewRoom("r-1", "101", 10000, 2)
	after := time.Now().UTC()

	if room.ID != "r-1" {
		t.Errorf("ID = %q, want %q", room.ID, "r-1")
	}
	if room.Number != "101" {
		t.Errorf("Number = %q, want %q", room.Number, "101")
	}
	if room.DailyRateCents != 10000 {
		t.Errorf("DailyRateCents = %d, want 10000", room.DailyRateCents)
	}
	if room.Status != domain.RoomAvailable {
		t.Errorf("Status = %q, want %q", room.Status, domain.RoomAvailable)
	}
	if room.MaintenanceSince != nil {
		t.Error("MaintenanceSince should be nil on a new room")
	}
	if room.CreatedAt.Before(before) || room.CreatedAt.After(after) {
		t.Errorf("CreatedAt = %v, want between %v and %v", room.CreatedAt, before, after)
	}
}

func TestRoomTransitions_ValidPaths(t *testing.T) {
	cases := []struct {
		event domain.RoomEvent
		src   domain.RoomStatus
		dst   domain.RoomStatus
	}{
		{domain.EventOccupy, domain.RoomAvailable, domain.RoomOccupied},
		{domain.EventFree, domain.RoomOccupied, domain.RoomAvailable},
		{domain.EventEnterMaintenance, domain.RoomAvailable, domain.RoomMaintenance},
		{domain.EventLeaveMaintenance, domain.RoomMaintenance, domain.RoomAvailable},
	}

	for _, tc := range cases {
		found := false
		for _, tr := range domain.RoomTransitions {
			if tr.Event == tc.event && tr.Src == tc.src && tr.Dst == tc.dst {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing transition: %q from %q → %q", tc.event, tc.src, tc.dst)
		}
	}
}

func TestRoomTransitions_InvalidPaths(t *testing.T) {
	// These transitions must NOT exist. In particular there is no direct
	// path between occupied and maintenance in either direction.
	invalid := []struct {
		event domain.RoomEvent
		src   domain.RoomStatus
	}{
		{domain.EventOccupy, domain.RoomOccupied},
		{domain.EventOccupy, domain.RoomMaintenance},
		{domain.EventFree, domain.RoomAvailable},
		{domain.EventFree, domain.RoomMaintenance},
		{domain.EventEnterMaintenance, domain.RoomOccupied},
		{domain.EventLeaveMaintenance, domain.RoomOccupied},
		{domain.EventLeaveMaintenance, domain.RoomAvailable},
	}

	for _, tc := range invalid {
		for _, tr := range domain.RoomTransitions {
			if tr.Event == tc.event && tr.Src == tc.src {
				t.Errorf("unexpected transition: %q from %q should not exist", tc.event, tc.src)
			}
		}
	}
}

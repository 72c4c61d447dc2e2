package app

import (
	"context"
	"fmt"
	"time"

	"github.com/quietbay/innkeep/internal/domain"
)

// RoomService owns room records and drives the room status state machine.
// Occupy and Free exist for the stay lifecycle only; callers outside this
// package change status through maintenance operations.
type RoomService struct {
	rooms     domain.RoomRepository
	validator domain.TransitionValidator
	conflicts *ConflictChecker
	clock     domain.Clock
}

// NewRoomService creates a service with the given adapters.
func NewRoomService(rooms domain.RoomRepository, validator domain.TransitionValidator, conflicts *ConflictChecker, clock domain.Clock) *RoomService {
	return &RoomService{
		rooms:     rooms,
		validator: validator,
		conflicts: conflicts,
		clock:     clock,
	}
}

// CreateRoomInput holds the fields for registering a room.
type CreateRoomInput struct {
	Number         string
	DailyRateCents int64
	Capacity       int
}

// Create registers a new room in the "available" state.
func (s *RoomService) Create(ctx context.Context, in CreateRoomInput) (domain.Room, error) {
	if in.Number == "" {
		return domain.Room{}, &domain.ValidationError{Field: "number", Reason: "required"}
	}
	if in.DailyRateCents <= 0 {
		return domain.Room{}, &domain.ValidationError{Field: "daily_rate", Reason: "must be positive"}
	}
	if in.Capacity <= 0 {
		return domain.Room{}, &domain.ValidationError{Field: "capacity", Reason: "must be positive"}
	}

	id, err := generateID()
	if err != nil {
		return domain.Room{}, fmt.Errorf("generating room id: %w", err)
	}

	room := domain.NewRoom(id, in.Number, in.DailyRateCents, in.Capacity)

	if err := s.rooms.Create(ctx, room); err != nil {
		return domain.Room{}, fmt.Errorf("creating room: %w", err)
	}

	return room, nil
}

// RoomPatch holds optional edits to a room. A nil field is left untouched.
type RoomPatch struct {
	Number         *string
	DailyRateCents *int64
	Capacity       *int
	Status         *domain.RoomStatus
}

// Edit updates a room's descriptive fields and, optionally, moves it in or
// out of maintenance. Setting "occupied" directly is rejected (that status
// is system-managed), as is any edit while the room is occupied.
func (s *RoomService) Edit(ctx context.Context, id string, patch RoomPatch) (domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return domain.Room{}, err
	}

	if room.Status == domain.RoomOccupied {
		return domain.Room{}, &domain.StateError{Op: "edit room", Reason: "room is occupied"}
	}
	if patch.Status != nil && *patch.Status == domain.RoomOccupied {
		return domain.Room{}, &domain.ValidationError{Field: "status", Reason: "occupied is system-managed"}
	}

	if patch.Number != nil {
		if *patch.Number == "" {
			return domain.Room{}, &domain.ValidationError{Field: "number", Reason: "required"}
		}
		room.Number = *patch.Number
	}
	if patch.DailyRateCents != nil {
		if *patch.DailyRateCents <= 0 {
			return domain.Room{}, &domain.ValidationError{Field: "daily_rate", Reason: "must be positive"}
		}
		room.DailyRateCents = *patch.DailyRateCents
	}
	if patch.Capacity != nil {
		if *patch.Capacity <= 0 {
			return domain.Room{}, &domain.ValidationError{Field: "capacity", Reason: "must be positive"}
		}
		room.Capacity = *patch.Capacity
	}

	if patch.Status != nil && *patch.Status != room.Status {
		switch *patch.Status {
		case domain.RoomMaintenance:
			if err := s.transition(ctx, &room, domain.EventEnterMaintenance); err != nil {
				return domain.Room{}, err
			}
			now := s.clock.Now()
			room.MaintenanceSince = &now
		case domain.RoomAvailable:
			if err := s.transition(ctx, &room, domain.EventLeaveMaintenance); err != nil {
				return domain.Room{}, err
			}
			room.MaintenanceSince = nil
		}
	}

	if err := s.rooms.Update(ctx, room); err != nil {
		return domain.Room{}, fmt.Errorf("updating room: %w", err)
	}

	return room, nil
}

// EnterMaintenance takes an available room out of rotation.
func (s *RoomService) EnterMaintenance(ctx context.Context, id string) (domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return domain.Room{}, err
	}

	if err := s.transition(ctx, &room, domain.EventEnterMaintenance); err != nil {
		return domain.Room{}, err
	}
	now := s.clock.Now()
	room.MaintenanceSince = &now

	if err := s.rooms.Update(ctx, room); err != nil {
		return domain.Room{}, fmt.Errorf("updating room: %w", err)
	}
	return room, nil
}

// LeaveMaintenance puts a room back in rotation.
func (s *RoomService) LeaveMaintenance(ctx context.Context, id string) (domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return domain.Room{}, err
	}

	if err := s.transition(ctx, &room, domain.EventLeaveMaintenance); err != nil {
		return domain.Room{}, err
	}
	room.MaintenanceSince = nil

	if err := s.rooms.Update(ctx, room); err != nil {
		return domain.Room{}, fmt.Errorf("updating room: %w", err)
	}
	return room, nil
}

// Occupy marks the room occupied. Only the stay lifecycle calls this.
func (s *RoomService) Occupy(ctx context.Context, id string) (domain.Room, error) {
	return s.applyAndSave(ctx, id, domain.EventOccupy)
}

// Free marks the room available again. Only checkout paths call this.
func (s *RoomService) Free(ctx context.Context, id string) (domain.Room, error) {
	return s.applyAndSave(ctx, id, domain.EventFree)
}

// Delete removes a room permanently. Occupied rooms cannot be deleted.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if room.Status == domain.RoomOccupied {
		return &domain.StateError{Op: "delete room", Reason: "room is occupied"}
	}
	return s.rooms.Delete(ctx, id)
}

// GetByID returns a room by its unique identifier.
func (s *RoomService) GetByID(ctx context.Context, id string) (domain.Room, error) {
	return s.rooms.GetByID(ctx, id)
}

// List returns rooms matching the given filter.
func (s *RoomService) List(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	return s.rooms.List(ctx, filter)
}

// ListAvailable returns rooms that are not under maintenance and have no
// conflicting reservation or stay for the [checkIn, checkOut) interval.
func (s *RoomService) ListAvailable(ctx context.Context, checkIn, checkOut time.Time) ([]domain.Room, error) {
	if !checkIn.Before(checkOut) {
		return nil, &domain.ValidationError{Field: "check_out", Reason: "must be after check-in"}
	}

	rooms, err := s.rooms.List(ctx, domain.RoomFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}

	available := make([]domain.Room, 0, len(rooms))
	for _, room := range rooms {
		if room.Status == domain.RoomMaintenance {
			continue
		}
		conflict, err := s.conflicts.HasConflict(ctx, room.ID, checkIn, checkOut, ConflictExclusions{})
		if err != nil {
			return nil, fmt.Errorf("checking room %s: %w", room.Number, err)
		}
		if !conflict {
			available = append(available, room)
		}
	}
	return available, nil
}

func (s *RoomService) transition(ctx context.Context, room *domain.Room, event domain.RoomEvent) error {
	next, err := s.validator.Apply(ctx, room.Status, event)
	if err != nil {
		return err
	}
	room.Status = next
	return nil
}

func (s *RoomService) applyAndSave(ctx context.Context, id string, event domain.RoomEvent) (domain.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return domain.Room{}, err
	}
	if err := s.transition(ctx, &room, event); err != nil {
		return domain.Room{}, err
	}
	if err := s.rooms.Update(ctx, room); err != nil {
		return domain.Room{}, fmt.Errorf("updating room: %w", err)
	}
	return room, nil
}

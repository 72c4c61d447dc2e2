package domain

import "time"

// RoomStatus represents the occupancy state of a room.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomMaintenance RoomStatus = "maintenance"
)

// RoomEvent represents an action that triggers a room status transition.
type RoomEvent string

const (
	EventOccupy           RoomEvent = "occupy"
	EventFree             RoomEvent = "free"
	EventEnterMaintenance RoomEvent = "enter_maintenance"
	EventLeaveMaintenance RoomEvent = "leave_maintenance"
)

// RoomTransition defines a valid status change: an event moves a room from Src to Dst.
type RoomTransition struct {
	Event RoomEvent
	Src   RoomStatus
	Dst   RoomStatus
}

// RoomTransitions defines all valid status changes in the room lifecycle.
// Occupy and Free are system-managed (only stay check-in/checkout drive them);
// maintenance moves only to and from "available", never directly from "occupied".
// This is domain knowledge consumed by the FSM adapter.
var RoomTransitions = []RoomTransition{
	{Event: EventOccupy, Src: RoomAvailable, Dst: RoomOccupied},
	{Event: EventFree, Src: RoomOccupied, Dst: RoomAvailable},
	{Event: EventEnterMaintenance, Src: RoomAvailable, Dst: RoomMaintenance},
	{Event: EventLeaveMaintenance, Src: RoomMaintenance, Dst: RoomAvailable},
}

// Room is a rentable unit of the guesthouse.
// DailyRateCents is the default nightly price; stays may override it.
type Room struct {
	ID               string
	Number           string
	DailyRateCents   int64
	Capacity         int
	Status           RoomStatus
	MaintenanceSince *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewRoom creates a room in the initial "available" state.
func NewRoom(id, number string, dailyRateCents int64, capacity int) Room {
	now := time.Now().UTC()
	return Room{
		ID:             id,
		Number:         number,
		DailyRateCents: dailyRateCents,
		Capacity:       capacity,
		Status:         RoomAvailable,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

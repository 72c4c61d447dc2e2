package domain

import "time"

// StayOrigin records how a stay came to exist.
type StayOrigin string

const (
	StayManual          StayOrigin = "manual"
	StayFromReservation StayOrigin = "from_reservation"
)

// Stay is a guest's physical occupancy of a room for a concrete date range,
// with a billable total. ReservationID is set when the stay was created by
// confirming a reservation.
type Stay struct {
	ID             string
	Code           string
	RoomID         string
	GuestName      string
	CheckIn        time.Time
	CheckOut       time.Time
	DailyRateCents int64
	TotalCents     int64
	PaymentMethod  string
	Origin         StayOrigin
	ReservationID  string
	Notes          string
	Cancelled      bool
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewStay creates a stay covering [checkIn, checkOut) with the given billed total.
func NewStay(id, code, roomID, guestName string, checkIn, checkOut time.Time, dailyRateCents, totalCents int64, paymentMethod string, origin StayOrigin, createdBy string) Stay {
	now := time.Now().UTC()
	return Stay{
		ID:             id,
		Code:           code,
		RoomID:         roomID,
		GuestName:      guestName,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		DailyRateCents: dailyRateCents,
		TotalCents:     totalCents,
		PaymentMethod:  paymentMethod,
		Origin:         origin,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsActive reports whether the stay currently occupies its room.
// A stay is active while its checkout date lies in the future, and on the
// checkout day itself only while the room is still physically occupied
// (checkout frees the room and thereby finalizes the stay). This is the
// single activity predicate used by listings, conflict checks and the
// scheduler alike.
func IsActive(stay Stay, roomStatus RoomStatus, today time.Time) bool {
	if stay.Cancelled {
		return false
	}
	if stay.CheckOut.After(today) {
		return true
	}
	return sameDay(stay.CheckOut, today) && roomStatus == RoomOccupied
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

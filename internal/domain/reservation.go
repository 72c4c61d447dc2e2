package domain

import "time"

// ReservationStatus represents the lifecycle state of a reservation.
// Confirmed and cancelled are terminal: a reservation is immutable afterward.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation is a future-dated promise of a stay. It does not occupy the
// room; confirming it converts it into a Stay.
type Reservation struct {
	ID             string
	Code           string
	GuestName      string
	GuestType      string
	RoomID         string
	CheckIn        time.Time
	Nights         int
	CheckOut       time.Time
	DailyRateCents int64
	TotalCents     int64
	PaymentMethod  string
	Status         ReservationStatus
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ConfirmedBy    string
	ConfirmedAt    *time.Time
	CancelledBy    string
	CancelledAt    *time.Time
	CancelReason   string
}

// NewReservation creates a pending reservation. CheckOut and TotalCents are
// derived from the check-in date, night count and daily rate.
func NewReservation(id, code, guestName, roomID string, checkIn time.Time, nights int, dailyRateCents int64, paymentMethod string, createdBy string) Reservation {
	now := time.Now().UTC()
	return Reservation{
		ID:             id,
		Code:           code,
		GuestName:      guestName,
		RoomID:         roomID,
		CheckIn:        checkIn,
		Nights:         nights,
		CheckOut:       checkIn.AddDate(0, 0, nights),
		DailyRateCents: dailyRateCents,
		TotalCents:     dailyRateCents * int64(nights),
		PaymentMethod:  paymentMethod,
		Status:         ReservationPending,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

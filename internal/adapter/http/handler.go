package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/quietbay/innkeep/internal/app"
	"github.com/quietbay/innkeep/internal/domain"
)

const (
	timeFormat = "2006-01-02T15:04:05Z"
	dateFormat = "2006-01-02"
)

// Services bundles the application services the API exposes.
type Services struct {
	Rooms        *app.RoomService
	Reservations *app.ReservationService
	Stays        *app.StayService
	Ledger       *app.LedgerService
}

// ActorHeader identifies the staff member behind a mutating request. It is
// embedded in every input that changes state.
type ActorHeader struct {
	ActorID   string `header:"X-Actor-Id" required:"false" default:"reception" doc:"Identifier of the staff member performing the operation"`
	ActorName string `header:"X-Actor-Name" required:"false" doc:"Display name of the staff member"`
}

func (h ActorHeader) actor() domain.Actor {
	display := h.ActorName
	if display == "" {
		display = h.ActorID
	}
	return domain.Actor{ID: h.ActorID, Display: display}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatNullableTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseDate(field, value string) (time.Time, error) {
	d, err := time.Parse(dateFormat, value)
	if err != nil {
		return time.Time{}, huma.Error422UnprocessableEntity(field + " must be a YYYY-MM-DD date")
	}
	return d, nil
}

// RoomResponse is the API representation of a room.
type RoomResponse struct {
	ID               string  `json:"id" doc:"Unique identifier"`
	Number           string  `json:"number" doc:"Room number"`
	DailyRateCents   int64   `json:"daily_rate_cents" doc:"Default nightly rate in cents"`
	Capacity         int     `json:"capacity" doc:"Guest capacity"`
	Status           string  `json:"status" doc:"Occupancy state"`
	MaintenanceSince *string `json:"maintenance_since,omitempty" doc:"When maintenance started (ISO 8601)"`
	CreatedAt        string  `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt        string  `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toRoomResponse(r domain.Room) RoomResponse {
	return RoomResponse{
		ID:               r.ID,
		Number:           r.Number,
		DailyRateCents:   r.DailyRateCents,
		Capacity:         r.Capacity,
		Status:           string(r.Status),
		MaintenanceSince: formatNullableTime(r.MaintenanceSince),
		CreatedAt:        formatTime(r.CreatedAt),
		UpdatedAt:        formatTime(r.UpdatedAt),
	}
}

// ReservationResponse is the API representation of a reservation.
type ReservationResponse struct {
	ID             string  `json:"id" doc:"Unique identifier"`
	Code           string  `json:"code" doc:"Monthly sequence code"`
	GuestName      string  `json:"guest_name" doc:"Guest name"`
	GuestType      string  `json:"guest_type,omitempty" doc:"Guest category"`
	RoomID         string  `json:"room_id" doc:"Booked room"`
	CheckIn        string  `json:"check_in" doc:"Arrival date (YYYY-MM-DD)"`
	Nights         int     `json:"nights" doc:"Number of nights"`
	CheckOut       string  `json:"check_out" doc:"Departure date (YYYY-MM-DD), exclusive"`
	DailyRateCents int64   `json:"daily_rate_cents" doc:"Nightly rate in cents"`
	TotalCents     int64   `json:"total_cents" doc:"Billed total in cents"`
	PaymentMethod  string  `json:"payment_method" doc:"Payment method"`
	Status         string  `json:"status" doc:"Lifecycle state"`
	Notes          string  `json:"notes,omitempty" doc:"Free-form notes"`
	CreatedBy      string  `json:"created_by" doc:"Actor who booked"`
	CreatedAt      string  `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt      string  `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
	ConfirmedBy    string  `json:"confirmed_by,omitempty" doc:"Actor who confirmed"`
	ConfirmedAt    *string `json:"confirmed_at,omitempty" doc:"Confirmation timestamp (ISO 8601)"`
	CancelledBy    string  `json:"cancelled_by,omitempty" doc:"Actor who cancelled"`
	CancelledAt    *string `json:"cancelled_at,omitempty" doc:"Cancellation timestamp (ISO 8601)"`
	CancelReason   string  `json:"cancel_reason,omitempty" doc:"Why the reservation was cancelled"`
}

func toReservationResponse(r domain.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:             r.ID,
		Code:           r.Code,
		GuestName:      r.GuestName,
		GuestType:      r.GuestType,
		RoomID:         r.RoomID,
		CheckIn:        r.CheckIn.Format(dateFormat),
		Nights:         r.Nights,
		CheckOut:       r.CheckOut.Format(dateFormat),
		DailyRateCents: r.DailyRateCents,
		TotalCents:     r.TotalCents,
		PaymentMethod:  r.PaymentMethod,
		Status:         string(r.Status),
		Notes:          r.Notes,
		CreatedBy:      r.CreatedBy,
		CreatedAt:      formatTime(r.CreatedAt),
		UpdatedAt:      formatTime(r.UpdatedAt),
		ConfirmedBy:    r.ConfirmedBy,
		ConfirmedAt:    formatNullableTime(r.ConfirmedAt),
		CancelledBy:    r.CancelledBy,
		CancelledAt:    formatNullableTime(r.CancelledAt),
		CancelReason:   r.CancelReason,
	}
}

// StayResponse is the API representation of a stay.
type StayResponse struct {
	ID             string `json:"id" doc:"Unique identifier"`
	Code           string `json:"code" doc:"Monthly sequence code"`
	RoomID         string `json:"room_id" doc:"Occupied room"`
	GuestName      string `json:"guest_name" doc:"Guest name"`
	CheckIn        string `json:"check_in" doc:"Arrival date (YYYY-MM-DD)"`
	CheckOut       string `json:"check_out" doc:"Departure date (YYYY-MM-DD), exclusive"`
	DailyRateCents int64  `json:"daily_rate_cents" doc:"Nightly rate in cents"`
	TotalCents     int64  `json:"total_cents" doc:"Billed total in cents"`
	PaymentMethod  string `json:"payment_method" doc:"Payment method"`
	Origin         string `json:"origin" doc:"How the stay was opened"`
	ReservationID  string `json:"reservation_id,omitempty" doc:"Source reservation, when opened by confirmation"`
	Notes          string `json:"notes,omitempty" doc:"Free-form notes"`
	Cancelled      bool   `json:"cancelled" doc:"Whether the stay was deleted"`
	CreatedBy      string `json:"created_by" doc:"Actor who opened the stay"`
	CreatedAt      string `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt      string `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
}

func toStayResponse(s domain.Stay) StayResponse {
	return StayResponse{
		ID:             s.ID,
		Code:           s.Code,
		RoomID:         s.RoomID,
		GuestName:      s.GuestName,
		CheckIn:        s.CheckIn.Format(dateFormat),
		CheckOut:       s.CheckOut.Format(dateFormat),
		DailyRateCents: s.DailyRateCents,
		TotalCents:     s.TotalCents,
		PaymentMethod:  s.PaymentMethod,
		Origin:         string(s.Origin),
		ReservationID:  s.ReservationID,
		Notes:          s.Notes,
		Cancelled:      s.Cancelled,
		CreatedBy:      s.CreatedBy,
		CreatedAt:      formatTime(s.CreatedAt),
		UpdatedAt:      formatTime(s.UpdatedAt),
	}
}

// LedgerEntryResponse is the API representation of a ledger entry.
type LedgerEntryResponse struct {
	ID            string  `json:"id" doc:"Unique identifier"`
	Code          string  `json:"code" doc:"Monthly sequence code"`
	Kind          string  `json:"kind" doc:"in (income) or out (expense)"`
	Origin        string  `json:"origin" doc:"manual or stay"`
	ReferenceID   string  `json:"reference_id,omitempty" doc:"Stay backing this entry, for stay-origin rows"`
	ValueCents    int64   `json:"value_cents" doc:"Amount in cents, always positive"`
	PaymentMethod string  `json:"payment_method" doc:"Payment method"`
	Description   string  `json:"description,omitempty" doc:"Free-form description"`
	EditCount     int     `json:"edit_count" doc:"How many times the entry was edited"`
	CreatedBy     string  `json:"created_by" doc:"Actor who recorded the entry"`
	CreatedAt     string  `json:"created_at" doc:"Creation timestamp (ISO 8601)"`
	UpdatedAt     string  `json:"updated_at" doc:"Last update timestamp (ISO 8601)"`
	CancelledAt   *string `json:"cancelled_at,omitempty" doc:"Cancellation timestamp (ISO 8601)"`
	CancelReason  string  `json:"cancel_reason,omitempty" doc:"Why the entry was cancelled"`
}

func toLedgerEntryResponse(e domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:            e.ID,
		Code:          e.Code,
		Kind:          string(e.Kind),
		Origin:        string(e.Origin),
		ReferenceID:   e.ReferenceID,
		ValueCents:    e.ValueCents,
		PaymentMethod: e.PaymentMethod,
		Description:   e.Description,
		EditCount:     e.EditCount,
		CreatedBy:     e.CreatedBy,
		CreatedAt:     formatTime(e.CreatedAt),
		UpdatedAt:     formatTime(e.UpdatedAt),
		CancelledAt:   formatNullableTime(e.CancelledAt),
		CancelReason:  e.CancelReason,
	}
}

// Register adds all API routes to the Huma API.
func Register(api huma.API, svc Services) {
	registerRooms(api, svc.Rooms)
	registerReservations(api, svc.Reservations)
	registerStays(api, svc.Stays)
	registerLedger(api, svc.Ledger)
}

// --- Rooms ---

type CreateRoomInput struct {
	ActorHeader
	Body struct {
		Number         string `json:"number" minLength:"1" maxLength:"20" doc:"Room number"`
		DailyRateCents int64  `json:"daily_rate_cents" minimum:"1" doc:"Default nightly rate in cents"`
		Capacity       int    `json:"capacity" minimum:"1" doc:"Guest capacity"`
	}
}

type RoomOutput struct {
	Body RoomResponse
}

type GetRoomInput struct {
	ID string `path:"id" doc:"Room ID"`
}

type ListRoomsInput struct {
	Status string `query:"status" required:"false" enum:"available,occupied,maintenance" doc:"Filter by occupancy state"`
}

type ListRoomsOutput struct {
	Body []RoomResponse
}

type ListAvailableRoomsInput struct {
	CheckIn  string `query:"check_in" doc:"Arrival date (YYYY-MM-DD)"`
	CheckOut string `query:"check_out" doc:"Departure date (YYYY-MM-DD), exclusive"`
}

type EditRoomInput struct {
	ActorHeader
	ID   string `path:"id" doc:"Room ID"`
	Body struct {
		Number         *string `json:"number,omitempty" minLength:"1" maxLength:"20" doc:"Room number"`
		DailyRateCents *int64  `json:"daily_rate_cents,omitempty" minimum:"1" doc:"Default nightly rate in cents"`
		Capacity       *int    `json:"capacity,omitempty" minimum:"1" doc:"Guest capacity"`
	}
}

type RoomMaintenanceInput struct {
	ActorHeader
	ID string `path:"id" doc:"Room ID"`
}

type DeleteRoomInput struct {
	ActorHeader
	ID string `path:"id" doc:"Room ID"`
}

type DeleteOutput struct{}

func registerRooms(api huma.API, svc *app.RoomService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-room",
		Method:      http.MethodPost,
		Path:        "/api/v1/rooms",
		Summary:     "Register a new room",
		Tags:        []string{"Rooms"},
	}, func(ctx context.Context, input *CreateRoomInput) (*RoomOutput, error) {
		room, err := svc.Create(ctx, app.CreateRoomInput{
			Number:         input.Body.Number,
			DailyRateCents: input.Body.DailyRateCents,
			Capacity:       input.Body.Capacity,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RoomOutput{Body: toRoomResponse(room)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-room",
		Method:      http.MethodGet,
		Path:        "/api/v1/rooms/{id}",
		Summary:     "Get a room by ID",
		Tags:        []string{"Rooms"},
	}, func(ctx context.Context, input *GetRoomInput) (*RoomOutput, error) {
		room, err := svc.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RoomOutput{Body: toRoomResponse(room)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-rooms",
		Method:      http.MethodGet,
		Path:        "/api/v1/rooms",
		Summary:     "List rooms",
		Tags:        []string{"Rooms"},
	}, func(ctx context.Context, input *ListRoomsInput) (*ListRoomsOutput, error) {
		var filter domain.RoomFilter
		if input.Status != "" {
			s := domain.RoomStatus(input.Status)
			filter.Status = &s
		}

		rooms, err := svc.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]RoomResponse, len(rooms))
		for i, r := range rooms {
			resp[i] = toRoomResponse(r)
		}
		return &ListRoomsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-available-rooms",
		Method:      http.MethodGet,
		Path:        "/api/v1/rooms/available",
		Summary:     "List rooms free for a date range",
		Tags:        []string{"Rooms"},
	}, func(ctx context.Context, input *ListAvailableRoomsInput) (*ListRoomsOutput, error) {
		checkIn, err := parseDate("check_in", input.CheckIn)
		if err != nil {
			return nil, err
		}
		checkOut, err := parseDate("check_out", input.CheckOut)
		if err != nil {
			return nil, err
		}

		rooms, err := svc.ListAvailable(ctx, checkIn, checkOut)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]RoomResponse, len(rooms))
		for i, r := range rooms {
			resp[i] = toRoomResponse(r)
		}
		return &ListRoomsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "edit-room",
		Method:      http.MethodPatch,
		Path:        "/api/v1/rooms/{id}",
		Summary:     "Edit a room",
		Tags:        []string{"Rooms"},
	}, func(ctx context.Context, input *EditRoomInput) (*RoomOutput, error) {
		room, err := svc.Edit(ctx, input.ID, app.RoomPatch{
			Number:         input.Body.Number,
			DailyRateCents: input.Body.DailyRateCents,
			Capacity:       input.Body.Capacity,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RoomOutput{Body: toRoomResponse(room)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "enter-room-maintenance",
		Method:      http.MethodPost,
		Path:        "/api/v1/rooms/{id}/maintenance",
		Summary:     "Take a room out of service",
		Tags:        []string{"Rooms"},
	}, func(ctx context.Context, input *RoomMaintenanceInput) (*RoomOutput, error) {
		room, err := svc.EnterMaintenance(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RoomOutput{Body: toRoomResponse(room)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "leave-room-maintenance",
		Method:      http.MethodDelete,
		Path:        "/api/v1/rooms/{id}/maintenance",
		Summary:     "Return a room to service",
		Tags:        []string{"Rooms"},
	}, func(ctx context.Context, input *RoomMaintenanceInput) (*RoomOutput, error) {
		room, err := svc.LeaveMaintenance(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &RoomOutput{Body: toRoomResponse(room)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-room",
		Method:      http.MethodDelete,
		Path:        "/api/v1/rooms/{id}",
		Summary:     "Delete a room",
		Tags:        []string{"Rooms"},
	}, func(ctx context.Context, input *DeleteRoomInput) (*DeleteOutput, error) {
		if err := svc.Delete(ctx, input.ID); err != nil {
			return nil, toHumaError(err)
		}
		return &DeleteOutput{}, nil
	})
}

// --- Reservations ---

type CreateReservationInput struct {
	ActorHeader
	Body struct {
		RoomID         string `json:"room_id" minLength:"1" doc:"Room to book"`
		GuestName      string `json:"guest_name" minLength:"1" maxLength:"255" doc:"Guest name"`
		GuestType      string `json:"guest_type,omitempty" doc:"Guest category"`
		CheckIn        string `json:"check_in" doc:"Arrival date (YYYY-MM-DD), strictly after today"`
		Nights         int    `json:"nights" minimum:"1" doc:"Number of nights"`
		DailyRateCents int64  `json:"daily_rate_cents,omitempty" minimum:"0" doc:"Nightly rate in cents; 0 uses the room's default"`
		PaymentMethod  string `json:"payment_method" minLength:"1" doc:"Payment method"`
		Notes          string `json:"notes,omitempty" doc:"Free-form notes"`
	}
}

type ReservationOutput struct {
	Body ReservationResponse
}

type GetReservationInput struct {
	ID string `path:"id" doc:"Reservation ID"`
}

type ListReservationsInput struct {
	Status string `query:"status" required:"false" enum:"pending,confirmed,cancelled" doc:"Filter by lifecycle state"`
	RoomID string `query:"room_id" required:"false" doc:"Filter by room"`
	Limit  int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListReservationsOutput struct {
	Body []ReservationResponse
}

type EditReservationInput struct {
	ActorHeader
	ID   string `path:"id" doc:"Reservation ID"`
	Body struct {
		GuestName      *string `json:"guest_name,omitempty" minLength:"1" doc:"Guest name"`
		GuestType      *string `json:"guest_type,omitempty" doc:"Guest category"`
		CheckIn        *string `json:"check_in,omitempty" doc:"Arrival date (YYYY-MM-DD)"`
		Nights         *int    `json:"nights,omitempty" minimum:"1" doc:"Number of nights"`
		DailyRateCents *int64  `json:"daily_rate_cents,omitempty" minimum:"1" doc:"Nightly rate in cents"`
		PaymentMethod  *string `json:"payment_method,omitempty" minLength:"1" doc:"Payment method"`
		Notes          *string `json:"notes,omitempty" doc:"Free-form notes"`
	}
}

type ConfirmReservationInput struct {
	ActorHeader
	ID   string `path:"id" doc:"Reservation ID"`
	Body struct {
		GuestType *string `json:"guest_type,omitempty" doc:"Guest category"`
		Notes     *string `json:"notes,omitempty" doc:"Free-form notes"`
	}
}

type StayOutput struct {
	Body StayResponse
}

type CancelReservationInput struct {
	ActorHeader
	ID   string `path:"id" doc:"Reservation ID"`
	Body struct {
		Reason string `json:"reason,omitempty" doc:"Why the reservation is cancelled"`
	}
}

func registerReservations(api huma.API, svc *app.ReservationService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-reservation",
		Method:      http.MethodPost,
		Path:        "/api/v1/reservations",
		Summary:     "Book a room for a future date range",
		Tags:        []string{"Reservations"},
	}, func(ctx context.Context, input *CreateReservationInput) (*ReservationOutput, error) {
		checkIn, err := parseDate("check_in", input.Body.CheckIn)
		if err != nil {
			return nil, err
		}

		res, err := svc.Create(ctx, app.CreateReservationInput{
			RoomID:         input.Body.RoomID,
			GuestName:      input.Body.GuestName,
			GuestType:      input.Body.GuestType,
			CheckIn:        checkIn,
			Nights:         input.Body.Nights,
			DailyRateCents: input.Body.DailyRateCents,
			PaymentMethod:  input.Body.PaymentMethod,
			Notes:          input.Body.Notes,
		}, input.actor())
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ReservationOutput{Body: toReservationResponse(res)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-reservation",
		Method:      http.MethodGet,
		Path:        "/api/v1/reservations/{id}",
		Summary:     "Get a reservation by ID",
		Tags:        []string{"Reservations"},
	}, func(ctx context.Context, input *GetReservationInput) (*ReservationOutput, error) {
		res, err := svc.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ReservationOutput{Body: toReservationResponse(res)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-reservations",
		Method:      http.MethodGet,
		Path:        "/api/v1/reservations",
		Summary:     "List reservations",
		Tags:        []string{"Reservations"},
	}, func(ctx context.Context, input *ListReservationsInput) (*ListReservationsOutput, error) {
		filter := domain.ReservationFilter{
			RoomID: input.RoomID,
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Status != "" {
			s := domain.ReservationStatus(input.Status)
			filter.Status = &s
		}

		reservations, err := svc.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]ReservationResponse, len(reservations))
		for i, r := range reservations {
			resp[i] = toReservationResponse(r)
		}
		return &ListReservationsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "edit-reservation",
		Method:      http.MethodPatch,
		Path:        "/api/v1/reservations/{id}",
		Summary:     "Edit a pending reservation",
		Tags:        []string{"Reservations"},
	}, func(ctx context.Context, input *EditReservationInput) (*ReservationOutput, error) {
		edit := app.EditReservationInput{
			GuestName:      input.Body.GuestName,
			GuestType:      input.Body.GuestType,
			Nights:         input.Body.Nights,
			DailyRateCents: input.Body.DailyRateCents,
			PaymentMethod:  input.Body.PaymentMethod,
			Notes:          input.Body.Notes,
		}
		if input.Body.CheckIn != nil {
			checkIn, err := parseDate("check_in", *input.Body.CheckIn)
			if err != nil {
				return nil, err
			}
			edit.CheckIn = &checkIn
		}

		res, err := svc.Edit(ctx, input.ID, edit, input.actor())
		if err != nil {
			return nil, toHumaError(err)
		}
		return &ReservationOutput{Body: toReservationResponse(res)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "confirm-reservation",
		Method:      http.MethodPost,
		Path:        "/api/v1/reservations/{id}/confirm",
		Summary:     "Confirm a reservation and open its stay",
		Tags:        []string{"Reservations"},
	}, func(ctx context.Context, input *ConfirmReservationInput) (*StayOutput, error) {
		stay, err := svc.Confirm(ctx, input.ID, &app.ConfirmInput{
			GuestType: input.Body.GuestType,
			Notes:     input.Body.Notes,
		}, input.actor())
		if err != nil {
			return nil, toHumaError(err)
		}
		return &StayOutput{Body: toStayResponse(stay)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "cancel-reservation",
		Method:      http.MethodPost,
		Path:        "/api/v1/reservations/{id}/cancel",
		Summary:     "Cancel a pending reservation",
		Tags:        []string{"Reservations"},
	}, func(ctx context.Context, input *CancelReservationInput) (*DeleteOutput, error) {
		if err := svc.Cancel(ctx, input.ID, input.Body.Reason, input.actor()); err != nil {
			return nil, toHumaError(err)
		}
		return &DeleteOutput{}, nil
	})
}

// --- Stays ---

type CheckInInput struct {
	ActorHeader
	Body struct {
		RoomID         string `json:"room_id" minLength:"1" doc:"Room to occupy"`
		GuestName      string `json:"guest_name" minLength:"1" maxLength:"255" doc:"Guest name"`
		Nights         int    `json:"nights" minimum:"1" doc:"Number of nights"`
		DailyRateCents int64  `json:"daily_rate_cents,omitempty" minimum:"0" doc:"Nightly rate in cents; 0 uses the room's default"`
		PaymentMethod  string `json:"payment_method" minLength:"1" doc:"Payment method"`
		Notes          string `json:"notes,omitempty" doc:"Free-form notes"`
	}
}

type GetStayInput struct {
	ID string `path:"id" doc:"Stay ID"`
}

type ListStaysInput struct {
	RoomID    string `query:"room_id" required:"false" doc:"Filter by room"`
	Cancelled *bool  `query:"cancelled" required:"false" doc:"Filter by deletion state"`
	Limit     int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset    int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListStaysOutput struct {
	Body []StayResponse
}

type EditStayInput struct {
	ActorHeader
	ID   string `path:"id" doc:"Stay ID"`
	Body struct {
		GuestName      *string `json:"guest_name,omitempty" minLength:"1" doc:"Guest name"`
		Nights         *int    `json:"nights,omitempty" minimum:"1" doc:"Number of nights"`
		DailyRateCents *int64  `json:"daily_rate_cents,omitempty" minimum:"1" doc:"Nightly rate in cents"`
		PaymentMethod  *string `json:"payment_method,omitempty" minLength:"1" doc:"Payment method"`
		RoomID         *string `json:"room_id,omitempty" minLength:"1" doc:"Move the stay to another room"`
		Notes          *string `json:"notes,omitempty" doc:"Free-form notes"`
	}
}

type CheckoutInput struct {
	ActorHeader
	ID   string `path:"id" doc:"Room ID"`
	Body struct {
		Reason string `json:"reason,omitempty" doc:"Why the guest leaves early, when applicable"`
	}
}

type DeleteStayInput struct {
	ActorHeader
	ID string `path:"id" doc:"Stay ID"`
}

func registerStays(api huma.API, svc *app.StayService) {
	huma.Register(api, huma.Operation{
		OperationID: "check-in",
		Method:      http.MethodPost,
		Path:        "/api/v1/stays",
		Summary:     "Check a walk-in guest into a room",
		Tags:        []string{"Stays"},
	}, func(ctx context.Context, input *CheckInInput) (*StayOutput, error) {
		stay, err := svc.CheckIn(ctx, app.CheckInInput{
			RoomID:         input.Body.RoomID,
			GuestName:      input.Body.GuestName,
			Nights:         input.Body.Nights,
			DailyRateCents: input.Body.DailyRateCents,
			PaymentMethod:  input.Body.PaymentMethod,
			Notes:          input.Body.Notes,
		}, input.actor())
		if err != nil {
			return nil, toHumaError(err)
		}
		return &StayOutput{Body: toStayResponse(stay)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-stay",
		Method:      http.MethodGet,
		Path:        "/api/v1/stays/{id}",
		Summary:     "Get a stay by ID",
		Tags:        []string{"Stays"},
	}, func(ctx context.Context, input *GetStayInput) (*StayOutput, error) {
		stay, err := svc.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &StayOutput{Body: toStayResponse(stay)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-stays",
		Method:      http.MethodGet,
		Path:        "/api/v1/stays",
		Summary:     "List stays",
		Tags:        []string{"Stays"},
	}, func(ctx context.Context, input *ListStaysInput) (*ListStaysOutput, error) {
		stays, err := svc.List(ctx, domain.StayFilter{
			RoomID:    input.RoomID,
			Cancelled: input.Cancelled,
			Limit:     input.Limit,
			Offset:    input.Offset,
		})
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]StayResponse, len(stays))
		for i, s := range stays {
			resp[i] = toStayResponse(s)
		}
		return &ListStaysOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "edit-stay",
		Method:      http.MethodPatch,
		Path:        "/api/v1/stays/{id}",
		Summary:     "Edit an active stay",
		Tags:        []string{"Stays"},
	}, func(ctx context.Context, input *EditStayInput) (*StayOutput, error) {
		stay, err := svc.Edit(ctx, input.ID, app.EditStayInput{
			GuestName:      input.Body.GuestName,
			Nights:         input.Body.Nights,
			DailyRateCents: input.Body.DailyRateCents,
			PaymentMethod:  input.Body.PaymentMethod,
			RoomID:         input.Body.RoomID,
			Notes:          input.Body.Notes,
		}, input.actor())
		if err != nil {
			return nil, toHumaError(err)
		}
		return &StayOutput{Body: toStayResponse(stay)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "checkout-room",
		Method:      http.MethodPost,
		Path:        "/api/v1/rooms/{id}/checkout",
		Summary:     "Check the current guest out of a room",
		Tags:        []string{"Stays"},
	}, func(ctx context.Context, input *CheckoutInput) (*StayOutput, error) {
		stay, err := svc.CheckoutManual(ctx, app.CheckoutInput{
			RoomID: input.ID,
			Reason: input.Body.Reason,
		}, input.actor())
		if err != nil {
			return nil, toHumaError(err)
		}
		return &StayOutput{Body: toStayResponse(stay)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-stay",
		Method:      http.MethodDelete,
		Path:        "/api/v1/stays/{id}",
		Summary:     "Delete a finalized stay",
		Tags:        []string{"Stays"},
	}, func(ctx context.Context, input *DeleteStayInput) (*DeleteOutput, error) {
		if err := svc.Delete(ctx, input.ID, input.actor()); err != nil {
			return nil, toHumaError(err)
		}
		return &DeleteOutput{}, nil
	})
}

// --- Ledger ---

type CreateLedgerEntryInput struct {
	ActorHeader
	Body struct {
		Kind          string `json:"kind" enum:"in,out" doc:"in (income) or out (expense)"`
		ValueCents    int64  `json:"value_cents" minimum:"1" doc:"Amount in cents"`
		PaymentMethod string `json:"payment_method" minLength:"1" doc:"Payment method"`
		Description   string `json:"description,omitempty" doc:"Free-form description"`
	}
}

type LedgerEntryOutput struct {
	Body LedgerEntryResponse
}

type GetLedgerEntryInput struct {
	ID string `path:"id" doc:"Ledger entry ID"`
}

type ListLedgerInput struct {
	Origin string `query:"origin" required:"false" enum:"manual,stay" doc:"Filter by origin"`
	Kind   string `query:"kind" required:"false" enum:"in,out" doc:"Filter by kind"`
	Limit  int    `query:"limit" required:"false" default:"50" doc:"Max results"`
	Offset int    `query:"offset" required:"false" default:"0" doc:"Pagination offset"`
}

type ListLedgerOutput struct {
	Body []LedgerEntryResponse
}

type EditLedgerEntryInput struct {
	ActorHeader
	ID   string `path:"id" doc:"Ledger entry ID"`
	Body struct {
		ValueCents    *int64  `json:"value_cents,omitempty" minimum:"1" doc:"Amount in cents"`
		PaymentMethod *string `json:"payment_method,omitempty" minLength:"1" doc:"Payment method"`
		Description   *string `json:"description,omitempty" doc:"Free-form description"`
	}
}

type CancelLedgerEntryInput struct {
	ActorHeader
	ID   string `path:"id" doc:"Ledger entry ID"`
	Body struct {
		Reason string `json:"reason,omitempty" doc:"Why the entry is cancelled"`
	}
}

type BalanceOutput struct {
	Body struct {
		BalanceCents int64 `json:"balance_cents" doc:"Sum of active entries in cents, income minus expenses"`
	}
}

func registerLedger(api huma.API, svc *app.LedgerService) {
	huma.Register(api, huma.Operation{
		OperationID: "create-ledger-entry",
		Method:      http.MethodPost,
		Path:        "/api/v1/ledger",
		Summary:     "Record a manual income or expense",
		Tags:        []string{"Ledger"},
	}, func(ctx context.Context, input *CreateLedgerEntryInput) (*LedgerEntryOutput, error) {
		entry, err := svc.CreateManual(ctx, app.CreateEntryInput{
			Kind:          domain.LedgerKind(input.Body.Kind),
			ValueCents:    input.Body.ValueCents,
			PaymentMethod: input.Body.PaymentMethod,
			Description:   input.Body.Description,
		}, input.actor())
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LedgerEntryOutput{Body: toLedgerEntryResponse(entry)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-ledger-entry",
		Method:      http.MethodGet,
		Path:        "/api/v1/ledger/{id}",
		Summary:     "Get a ledger entry by ID",
		Tags:        []string{"Ledger"},
	}, func(ctx context.Context, input *GetLedgerEntryInput) (*LedgerEntryOutput, error) {
		entry, err := svc.GetByID(ctx, input.ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LedgerEntryOutput{Body: toLedgerEntryResponse(entry)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-ledger-entries",
		Method:      http.MethodGet,
		Path:        "/api/v1/ledger",
		Summary:     "List ledger entries",
		Tags:        []string{"Ledger"},
	}, func(ctx context.Context, input *ListLedgerInput) (*ListLedgerOutput, error) {
		filter := domain.LedgerFilter{
			Limit:  input.Limit,
			Offset: input.Offset,
		}
		if input.Origin != "" {
			o := domain.LedgerOrigin(input.Origin)
			filter.Origin = &o
		}
		if input.Kind != "" {
			k := domain.LedgerKind(input.Kind)
			filter.Kind = &k
		}

		entries, err := svc.List(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]LedgerEntryResponse, len(entries))
		for i, e := range entries {
			resp[i] = toLedgerEntryResponse(e)
		}
		return &ListLedgerOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "edit-ledger-entry",
		Method:      http.MethodPatch,
		Path:        "/api/v1/ledger/{id}",
		Summary:     "Edit a manual ledger entry",
		Tags:        []string{"Ledger"},
	}, func(ctx context.Context, input *EditLedgerEntryInput) (*LedgerEntryOutput, error) {
		entry, err := svc.EditManual(ctx, input.ID, app.EntryPatch{
			ValueCents:    input.Body.ValueCents,
			PaymentMethod: input.Body.PaymentMethod,
			Description:   input.Body.Description,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LedgerEntryOutput{Body: toLedgerEntryResponse(entry)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "cancel-ledger-entry",
		Method:      http.MethodPost,
		Path:        "/api/v1/ledger/{id}/cancel",
		Summary:     "Cancel a manual ledger entry",
		Tags:        []string{"Ledger"},
	}, func(ctx context.Context, input *CancelLedgerEntryInput) (*DeleteOutput, error) {
		if err := svc.CancelManual(ctx, input.ID, input.Body.Reason); err != nil {
			return nil, toHumaError(err)
		}
		return &DeleteOutput{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-ledger-balance",
		Method:      http.MethodGet,
		Path:        "/api/v1/ledger/balance",
		Summary:     "Get the running balance",
		Tags:        []string{"Ledger"},
	}, func(ctx context.Context, _ *struct{}) (*BalanceOutput, error) {
		balance, err := svc.Balance(ctx)
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &BalanceOutput{}
		out.Body.BalanceCents = balance
		return out, nil
	})
}

// toHumaError translates domain errors to Huma HTTP errors.
func toHumaError(err error) error {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return huma.Error404NotFound("room not found")
	case errors.Is(err, domain.ErrReservationNotFound):
		return huma.Error404NotFound("reservation not found")
	case errors.Is(err, domain.ErrStayNotFound):
		return huma.Error404NotFound("stay not found")
	case errors.Is(err, domain.ErrLedgerEntryNotFound):
		return huma.Error404NotFound("ledger entry not found")
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return huma.Error422UnprocessableEntity(vErr.Error())
	}

	var stErr *domain.StateError
	if errors.As(err, &stErr) {
		return huma.Error422UnprocessableEntity(stErr.Error())
	}

	var trErr *domain.TransitionError
	if errors.As(err, &trErr) {
		return huma.Error422UnprocessableEntity(trErr.Error())
	}

	var cErr *domain.ConflictError
	if errors.As(err, &cErr) {
		return huma.Error409Conflict(cErr.Error())
	}

	var nErr *domain.NumberConflictError
	if errors.As(err, &nErr) {
		return huma.Error409Conflict(nErr.Error())
	}

	if errors.Is(err, domain.ErrCodeTaken) {
		return huma.Error409Conflict(err.Error())
	}

	return huma.Error500InternalServerError("internal server error")
}

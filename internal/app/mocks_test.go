package app_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/quietbay/innkeep/internal/app"
	"github.com/quietbay/innkeep/internal/domain"
)

// --- Clock ---

// fixedClock pins "today" so date arithmetic is deterministic.
type fixedClock struct {
	today time.Time
}

func (c fixedClock) Now() time.Time   { return c.today.Add(12 * time.Hour) }
func (c fixedClock) Today() time.Time { return c.today }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// --- Transition validator ---

// tableValidator resolves transitions straight from the domain table,
// standing in for the fsm adapter.
type tableValidator struct{}

func (tableValidator) Apply(_ context.Context, current domain.RoomStatus, event domain.RoomEvent) (domain.RoomStatus, error) {
	for _, tr := range domain.RoomTransitions {
		if tr.Event == event && tr.Src == current {
			return tr.Dst, nil
		}
	}
	return "", &domain.TransitionError{Event: event, Current: current}
}

// --- Publisher ---

type mockPublisher struct {
	events []publishedEvent
}

type publishedEvent struct {
	event domain.Event
	n     domain.Notification
}

func (m *mockPublisher) Publish(_ context.Context, e domain.Event, n domain.Notification) error {
	m.events = append(m.events, publishedEvent{event: e, n: n})
	return nil
}

func (m *mockPublisher) count(e domain.Event) int {
	c := 0
	for _, p := range m.events {
		if p.event == e {
			c++
		}
	}
	return c
}

// --- Room repository ---

type mockRoomRepo struct {
	rooms map[string]domain.Room
}

func newMockRoomRepo() *mockRoomRepo {
	return &mockRoomRepo{rooms: make(map[string]domain.Room)}
}

func (m *mockRoomRepo) Create(_ context.Context, r domain.Room) error {
	for _, existing := range m.rooms {
		if existing.Number == r.Number {
			return &domain.NumberConflictError{Number: r.Number}
		}
	}
	m.rooms[r.ID] = r
	return nil
}

func (m *mockRoomRepo) GetByID(_ context.Context, id string) (domain.Room, error) {
	r, ok := m.rooms[id]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return r, nil
}

func (m *mockRoomRepo) GetByNumber(_ context.Context, number string) (domain.Room, error) {
	for _, r := range m.rooms {
		if r.Number == number {
			return r, nil
		}
	}
	return domain.Room{}, domain.ErrRoomNotFound
}

func (m *mockRoomRepo) List(_ context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	out := make([]domain.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *mockRoomRepo) Update(_ context.Context, r domain.Room) error {
	if _, ok := m.rooms[r.ID]; !ok {
		return domain.ErrRoomNotFound
	}
	m.rooms[r.ID] = r
	return nil
}

func (m *mockRoomRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.rooms[id]; !ok {
		return domain.ErrRoomNotFound
	}
	delete(m.rooms, id)
	return nil
}

// --- Reservation repository ---

type mockReservationRepo struct {
	reservations map[string]domain.Reservation
}

func newMockReservationRepo() *mockReservationRepo {
	return &mockReservationRepo{reservations: make(map[string]domain.Reservation)}
}

func (m *mockReservationRepo) Create(_ context.Context, r domain.Reservation) error {
	for _, existing := range m.reservations {
		if existing.Code == r.Code {
			return domain.ErrCodeTaken
		}
	}
	m.reservations[r.ID] = r
	return nil
}

func (m *mockReservationRepo) GetByID(_ context.Context, id string) (domain.Reservation, error) {
	r, ok := m.reservations[id]
	if !ok {
		return domain.Reservation{}, domain.ErrReservationNotFound
	}
	return r, nil
}

func (m *mockReservationRepo) List(_ context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	out := make([]domain.Reservation, 0, len(m.reservations))
	for _, r := range m.reservations {
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.RoomID != "" && r.RoomID != filter.RoomID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *mockReservationRepo) Update(_ context.Context, r domain.Reservation) error {
	if _, ok := m.reservations[r.ID]; !ok {
		return domain.ErrReservationNotFound
	}
	m.reservations[r.ID] = r
	return nil
}

func (m *mockReservationRepo) MaxCodeWithPrefix(_ context.Context, prefix string) (string, error) {
	max := ""
	for _, r := range m.reservations {
		if strings.HasPrefix(r.Code, prefix) && r.Code > max {
			max = r.Code
		}
	}
	return max, nil
}

func (m *mockReservationRepo) FindOverlapping(_ context.Context, roomID string, entry, exit time.Time, excludeID string) ([]domain.Reservation, error) {
	candidate := domain.Interval{Entry: entry, Exit: exit}
	var out []domain.Reservation
	for _, r := range m.reservations {
		if r.RoomID != roomID || r.ID == excludeID {
			continue
		}
		if r.Status != domain.ReservationPending && r.Status != domain.ReservationConfirmed {
			continue
		}
		if candidate.Overlaps(domain.Interval{Entry: r.CheckIn, Exit: r.CheckOut}) {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- Stay repository ---

type mockStayRepo struct {
	stays map[string]domain.Stay
	seq   int
	order map[string]int
}

func newMockStayRepo() *mockStayRepo {
	return &mockStayRepo{
		stays: make(map[string]domain.Stay),
		order: make(map[string]int),
	}
}

func (m *mockStayRepo) Create(_ context.Context, s domain.Stay) error {
	for _, existing := range m.stays {
		if existing.Code == s.Code {
			return domain.ErrCodeTaken
		}
	}
	m.seq++
	m.order[s.ID] = m.seq
	m.stays[s.ID] = s
	return nil
}

func (m *mockStayRepo) GetByID(_ context.Context, id string) (domain.Stay, error) {
	s, ok := m.stays[id]
	if !ok {
		return domain.Stay{}, domain.ErrStayNotFound
	}
	return s, nil
}

func (m *mockStayRepo) List(_ context.Context, filter domain.StayFilter) ([]domain.Stay, error) {
	out := make([]domain.Stay, 0, len(m.stays))
	for _, s := range m.stays {
		if filter.RoomID != "" && s.RoomID != filter.RoomID {
			continue
		}
		if filter.Cancelled != nil && s.Cancelled != *filter.Cancelled {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return m.order[out[i].ID] < m.order[out[j].ID] })
	return out, nil
}

func (m *mockStayRepo) Update(_ context.Context, s domain.Stay) error {
	if _, ok := m.stays[s.ID]; !ok {
		return domain.ErrStayNotFound
	}
	m.stays[s.ID] = s
	return nil
}

func (m *mockStayRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.stays[id]; !ok {
		return domain.ErrStayNotFound
	}
	delete(m.stays, id)
	return nil
}

func (m *mockStayRepo) MaxCodeWithPrefix(_ context.Context, prefix string) (string, error) {
	max := ""
	for _, s := range m.stays {
		if strings.HasPrefix(s.Code, prefix) && s.Code > max {
			max = s.Code
		}
	}
	return max, nil
}

func (m *mockStayRepo) FindOverlapping(_ context.Context, roomID string, entry, exit, today time.Time, excludeID string) ([]domain.Stay, error) {
	candidate := domain.Interval{Entry: entry, Exit: exit}
	var out []domain.Stay
	for _, s := range m.stays {
		if s.RoomID != roomID || s.ID == excludeID || s.Cancelled {
			continue
		}
		if s.CheckOut.Before(today) {
			continue
		}
		if candidate.Overlaps(domain.Interval{Entry: s.CheckIn, Exit: s.CheckOut}) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStayRepo) LatestForRoom(_ context.Context, roomID string) (domain.Stay, error) {
	best := domain.Stay{}
	bestSeq := 0
	for _, s := range m.stays {
		if s.RoomID != roomID || s.Cancelled {
			continue
		}
		if m.order[s.ID] > bestSeq {
			best = s
			bestSeq = m.order[s.ID]
		}
	}
	if bestSeq == 0 {
		return domain.Stay{}, domain.ErrStayNotFound
	}
	return best, nil
}

func (m *mockStayRepo) ListByCheckoutDate(_ context.Context, dayStart time.Time) ([]domain.Stay, error) {
	var out []domain.Stay
	for _, s := range m.stays {
		if s.Cancelled {
			continue
		}
		if s.CheckOut.Equal(dayStart) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return m.order[out[i].ID] < m.order[out[j].ID] })
	return out, nil
}

// --- Ledger repository ---

type mockLedgerRepo struct {
	entries map[string]domain.LedgerEntry
}

func newMockLedgerRepo() *mockLedgerRepo {
	return &mockLedgerRepo{entries: make(map[string]domain.LedgerEntry)}
}

func (m *mockLedgerRepo) Create(_ context.Context, e domain.LedgerEntry) error {
	for _, existing := range m.entries {
		if existing.Code == e.Code {
			return domain.ErrCodeTaken
		}
	}
	m.entries[e.ID] = e
	return nil
}

func (m *mockLedgerRepo) GetByID(_ context.Context, id string) (domain.LedgerEntry, error) {
	e, ok := m.entries[id]
	if !ok {
		return domain.LedgerEntry{}, domain.ErrLedgerEntryNotFound
	}
	return e, nil
}

func (m *mockLedgerRepo) List(_ context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	out := make([]domain.LedgerEntry, 0, len(m.entries))
	for _, e := range m.entries {
		if filter.Origin != nil && e.Origin != *filter.Origin {
			continue
		}
		if filter.Kind != nil && e.Kind != *filter.Kind {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *mockLedgerRepo) Update(_ context.Context, e domain.LedgerEntry) error {
	if _, ok := m.entries[e.ID]; !ok {
		return domain.ErrLedgerEntryNotFound
	}
	m.entries[e.ID] = e
	return nil
}

func (m *mockLedgerRepo) MaxCodeWithPrefix(_ context.Context, prefix string) (string, error) {
	max := ""
	for _, e := range m.entries {
		if strings.HasPrefix(e.Code, prefix) && e.Code > max {
			max = e.Code
		}
	}
	return max, nil
}

func (m *mockLedgerRepo) ActiveByReference(_ context.Context, origin domain.LedgerOrigin, referenceID string) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	for _, e := range m.entries {
		if e.Origin == origin && e.ReferenceID == referenceID && e.Active() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockLedgerRepo) Balance(_ context.Context) (int64, error) {
	var sum int64
	for _, e := range m.entries {
		if !e.Active() {
			continue
		}
		if e.Kind == domain.LedgerOut {
			sum -= e.ValueCents
		} else {
			sum += e.ValueCents
		}
	}
	return sum, nil
}

// --- Fixture ---

var testActor = domain.Actor{ID: "u-1", Display: "Test User"}

// fixture wires the full service graph over in-memory repositories.
type fixture struct {
	clock        fixedClock
	rooms        *mockRoomRepo
	reservations *mockReservationRepo
	stays        *mockStayRepo
	ledger       *mockLedgerRepo
	publisher    *mockPublisher

	roomSvc        *app.RoomService
	reservationSvc *app.ReservationService
	staySvc        *app.StayService
	ledgerSvc      *app.LedgerService
}

func newFixture(today time.Time) *fixture {
	f := &fixture{
		clock:        fixedClock{today: today},
		rooms:        newMockRoomRepo(),
		reservations: newMockReservationRepo(),
		stays:        newMockStayRepo(),
		ledger:       newMockLedgerRepo(),
		publisher:    &mockPublisher{},
	}

	codes := app.NewCodeAllocator(f.reservations, f.stays, f.ledger)
	conflicts := app.NewConflictChecker(f.reservations, f.stays, f.clock)

	f.roomSvc = app.NewRoomService(f.rooms, tableValidator{}, conflicts, f.clock)
	f.ledgerSvc = app.NewLedgerService(f.ledger, codes, f.publisher, f.clock)
	f.staySvc = app.NewStayService(f.stays, f.reservations, f.roomSvc, conflicts, codes, f.ledgerSvc, f.publisher, f.clock)
	f.reservationSvc = app.NewReservationService(f.reservations, f.rooms, f.staySvc, conflicts, codes, f.publisher, f.clock)

	return f
}

// addRoom creates a room directly in the repository.
func (f *fixture) addRoom(id, number string, rateCents int64) domain.Room {
	room := domain.NewRoom(id, number, rateCents, 2)
	f.rooms.rooms[id] = room
	return room
}

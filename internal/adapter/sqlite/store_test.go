package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/quietbay/innkeep/internal/adapter/sqlite"
	"github.com/quietbay/innkeep/internal/domain"
)

// newTestStore creates an in-memory SQLite store for testing.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func seedRoom(t *testing.T, store *sqlite.Store, id, number string) domain.Room {
	t.Helper()
	room := domain.NewRoom(id, number, 10000, 2)
	if err := store.Rooms.Create(context.Background(), room); err != nil {
		t.Fatalf("seeding room %s: %v", number, err)
	}
	return room
}

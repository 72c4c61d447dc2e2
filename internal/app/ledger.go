package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/quietbay/innkeep/internal/domain"
)

// resyncThresholdCents is the minimum value drift that triggers a ledger
// resync. Values are integer cents, so any real change clears it.
const resyncThresholdCents = 1

// SyncOutcome reports what a ledger side-effect call actually did, so the
// orchestrating layer can log it instead of guessing from an error value.
type SyncOutcome string

const (
	OutcomeRegistered        SyncOutcome = "registered"
	OutcomeAlreadyRegistered SyncOutcome = "already_registered"
	OutcomeResynced          SyncOutcome = "resynced"
	OutcomeSkipped           SyncOutcome = "skipped"
)

// LedgerService keeps ledger entries in sync with the stays that fund them
// and owns the manual-entry surface. The cardinal invariant: at most one
// non-cancelled entry exists per stay at any time.
type LedgerService struct {
	entries   domain.LedgerRepository
	codes     *CodeAllocator
	publisher domain.EventPublisher
	clock     domain.Clock
}

// NewLedgerService creates a service with the given adapters.
func NewLedgerService(entries domain.LedgerRepository, codes *CodeAllocator, publisher domain.EventPublisher, clock domain.Clock) *LedgerService {
	return &LedgerService{
		entries:   entries,
		codes:     codes,
		publisher: publisher,
		clock:     clock,
	}
}

// RegisterStayEntry records the income entry for a stay. It is idempotent:
// when a non-cancelled entry already references the stay, nothing is
// written, so a retried call never produces a duplicate income row.
func (s *LedgerService) RegisterStayEntry(ctx context.Context, stay domain.Stay, actor domain.Actor) (SyncOutcome, error) {
	existing, err := s.entries.ActiveByReference(ctx, domain.LedgerFromStay, stay.ID)
	if err != nil {
		return "", fmt.Errorf("checking existing entries for stay %s: %w", stay.ID, err)
	}
	if len(existing) > 0 {
		return OutcomeAlreadyRegistered, nil
	}

	entry, err := s.insertWithRetry(ctx, func(id, code string) domain.LedgerEntry {
		return domain.NewLedgerEntry(id, code, domain.LedgerIn, domain.LedgerFromStay, stay.ID,
			stay.TotalCents, stay.PaymentMethod,
			fmt.Sprintf("stay %s, guest %s", stay.Code, stay.GuestName), actor.ID)
	})
	if err != nil {
		return "", err
	}

	s.notify(ctx, domain.EventLedgerRegistered, domain.Notification{
		EntityID:  entry.ID,
		Code:      entry.Code,
		GuestName: stay.GuestName,
		Detail:    fmt.Sprintf("value %d", entry.ValueCents),
	})

	return OutcomeRegistered, nil
}

// CancelStayEntries cancels every non-cancelled entry referencing the stay.
// No-op when none exist.
func (s *LedgerService) CancelStayEntries(ctx context.Context, stayID, reason string, actor domain.Actor) error {
	active, err := s.entries.ActiveByReference(ctx, domain.LedgerFromStay, stayID)
	if err != nil {
		return fmt.Errorf("finding entries for stay %s: %w", stayID, err)
	}

	for _, entry := range active {
		now := s.clock.Now()
		entry.CancelledAt = &now
		entry.CancelReason = reason
		if err := s.entries.Update(ctx, entry); err != nil {
			return fmt.Errorf("cancelling entry %s: %w", entry.ID, err)
		}

		s.notify(ctx, domain.EventLedgerCancelled, domain.Notification{
			EntityID: entry.ID,
			Code:     entry.Code,
			Detail:   reason,
		})
	}
	return nil
}

// Resync aligns the stay's ledger entry with a new total. It cancels the
// old entry and registers a fresh one rather than editing in place, so the
// ledger keeps an auditable trail of every value change while the current
// balance stays the sum of non-cancelled entries. Drift below the cent
// threshold and non-positive totals are skipped.
func (s *LedgerService) Resync(ctx context.Context, stay domain.Stay, actor domain.Actor) (SyncOutcome, error) {
	if stay.TotalCents <= 0 {
		return OutcomeSkipped, nil
	}

	active, err := s.entries.ActiveByReference(ctx, domain.LedgerFromStay, stay.ID)
	if err != nil {
		return "", fmt.Errorf("finding entries for stay %s: %w", stay.ID, err)
	}

	if len(active) > 0 {
		drift := stay.TotalCents - active[0].ValueCents
		if drift < 0 {
			drift = -drift
		}
		if drift < resyncThresholdCents {
			return OutcomeSkipped, nil
		}
		if err := s.CancelStayEntries(ctx, stay.ID, "value adjustment", actor); err != nil {
			return "", err
		}
	}

	if _, err := s.RegisterStayEntry(ctx, stay, actor); err != nil {
		return "", err
	}
	return OutcomeResynced, nil
}

// CreateEntryInput holds the fields for a manual ledger entry.
type CreateEntryInput struct {
	Kind          domain.LedgerKind
	ValueCents    int64
	PaymentMethod string
	Description   string
}

// CreateManual records a hand-entered income or expense row.
func (s *LedgerService) CreateManual(ctx context.Context, in CreateEntryInput, actor domain.Actor) (domain.LedgerEntry, error) {
	if in.Kind != domain.LedgerIn && in.Kind != domain.LedgerOut {
		return domain.LedgerEntry{}, &domain.ValidationError{Field: "kind", Reason: "must be in or out"}
	}
	if in.ValueCents <= 0 {
		return domain.LedgerEntry{}, &domain.ValidationError{Field: "value", Reason: "must be positive"}
	}
	if in.PaymentMethod == "" {
		return domain.LedgerEntry{}, &domain.ValidationError{Field: "payment_method", Reason: "required"}
	}

	return s.insertWithRetry(ctx, func(id, code string) domain.LedgerEntry {
		return domain.NewLedgerEntry(id, code, in.Kind, domain.LedgerManual, "",
			in.ValueCents, in.PaymentMethod, in.Description, actor.ID)
	})
}

// EntryPatch holds optional edits to a manual ledger entry.
type EntryPatch struct {
	ValueCents    *int64
	PaymentMethod *string
	Description   *string
}

// EditManual updates a manual entry, capped at domain.MaxManualEdits edits
// total. Stay-origin and cancelled entries cannot be edited.
func (s *LedgerService) EditManual(ctx context.Context, id string, patch EntryPatch) (domain.LedgerEntry, error) {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return domain.LedgerEntry{}, err
	}

	if entry.Origin != domain.LedgerManual {
		return domain.LedgerEntry{}, &domain.StateError{Op: "edit ledger entry", Reason: "only manual entries can be edited"}
	}
	if !entry.Active() {
		return domain.LedgerEntry{}, &domain.StateError{Op: "edit ledger entry", Reason: "entry is cancelled"}
	}
	if entry.EditCount >= domain.MaxManualEdits {
		return domain.LedgerEntry{}, &domain.StateError{Op: "edit ledger entry", Reason: "edit limit reached"}
	}

	if patch.ValueCents != nil {
		if *patch.ValueCents <= 0 {
			return domain.LedgerEntry{}, &domain.ValidationError{Field: "value", Reason: "must be positive"}
		}
		entry.ValueCents = *patch.ValueCents
	}
	if patch.PaymentMethod != nil {
		entry.PaymentMethod = *patch.PaymentMethod
	}
	if patch.Description != nil {
		entry.Description = *patch.Description
	}
	entry.EditCount++

	if err := s.entries.Update(ctx, entry); err != nil {
		return domain.LedgerEntry{}, fmt.Errorf("updating entry: %w", err)
	}
	return entry, nil
}

// CancelManual soft-cancels an entry. Idempotent: cancelling an already
// cancelled entry changes nothing.
func (s *LedgerService) CancelManual(ctx context.Context, id, reason string) error {
	entry, err := s.entries.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !entry.Active() {
		return nil
	}

	now := s.clock.Now()
	entry.CancelledAt = &now
	entry.CancelReason = reason

	if err := s.entries.Update(ctx, entry); err != nil {
		return fmt.Errorf("cancelling entry: %w", err)
	}

	s.notify(ctx, domain.EventLedgerCancelled, domain.Notification{
		EntityID: entry.ID,
		Code:     entry.Code,
		Detail:   reason,
	})
	return nil
}

// GetByID returns a ledger entry by its unique identifier.
func (s *LedgerService) GetByID(ctx context.Context, id string) (domain.LedgerEntry, error) {
	return s.entries.GetByID(ctx, id)
}

// List returns ledger entries matching the given filter.
func (s *LedgerService) List(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	return s.entries.List(ctx, filter)
}

// Balance returns the sum of non-cancelled entries, expenses negative.
func (s *LedgerService) Balance(ctx context.Context) (int64, error) {
	return s.entries.Balance(ctx)
}

// insertWithRetry allocates a monthly code, builds the entry and inserts
// it. On a code collision (concurrent allocation of the same sequence) it
// recomputes the code and retries exactly once.
func (s *LedgerService) insertWithRetry(ctx context.Context, build func(id, code string) domain.LedgerEntry) (domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	for attempt := 0; attempt < 2; attempt++ {
		id, err := generateID()
		if err != nil {
			return domain.LedgerEntry{}, fmt.Errorf("generating entry id: %w", err)
		}
		code, err := s.codes.Next(ctx, ScopeLedger, s.clock.Today())
		if err != nil {
			return domain.LedgerEntry{}, err
		}

		entry = build(id, code)
		err = s.entries.Create(ctx, entry)
		if err == nil {
			return entry, nil
		}
		if !isCodeTaken(err) || attempt == 1 {
			return domain.LedgerEntry{}, fmt.Errorf("creating entry: %w", err)
		}
	}
	return entry, nil
}

// notify publishes a lifecycle event. Failures are logged and swallowed:
// notifications never abort the financial operation that triggered them.
func (s *LedgerService) notify(ctx context.Context, event domain.Event, n domain.Notification) {
	if err := s.publisher.Publish(ctx, event, n); err != nil {
		slog.ErrorContext(ctx, "publishing ledger event failed",
			"event", event, "entry_id", n.EntityID, "error", err)
	}
}

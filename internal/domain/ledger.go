package domain

import "time"

// LedgerKind classifies a ledger entry as income or expense.
type LedgerKind string

const (
	LedgerIn  LedgerKind = "in"
	LedgerOut LedgerKind = "out"
)

// LedgerOrigin records where a ledger entry came from.
type LedgerOrigin string

const (
	LedgerManual   LedgerOrigin = "manual"
	LedgerFromStay LedgerOrigin = "stay"
)

// MaxManualEdits caps how many times a manual ledger entry may be edited.
const MaxManualEdits = 3

// LedgerEntry is a financial record. Entries originating from a stay carry
// the stay's ID in ReferenceID; at most one non-cancelled entry exists per
// stay at any time. Entries are never hard-deleted, only cancelled, so the
// ledger keeps an auditable trail of every value change.
type LedgerEntry struct {
	ID            string
	Code          string
	Kind          LedgerKind
	Origin        LedgerOrigin
	ReferenceID   string
	ValueCents    int64
	PaymentMethod string
	Description   string
	EditCount     int
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	CancelledAt   *time.Time
	CancelReason  string
}

// NewLedgerEntry creates an active ledger entry.
func NewLedgerEntry(id, code string, kind LedgerKind, origin LedgerOrigin, referenceID string, valueCents int64, paymentMethod, description, createdBy string) LedgerEntry {
	now := time.Now().UTC()
	return LedgerEntry{
		ID:            id,
		Code:          code,
		Kind:          kind,
		Origin:        origin,
		ReferenceID:   referenceID,
		ValueCents:    valueCents,
		PaymentMethod: paymentMethod,
		Description:   description,
		CreatedBy:     createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Active reports whether the entry counts toward the current balance.
func (e LedgerEntry) Active() bool {
	return e.CancelledAt == nil
}

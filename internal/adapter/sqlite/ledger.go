package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quietbay/innkeep/internal/domain"
)

// LedgerRepository implements domain.LedgerRepository using SQLite.
type LedgerRepository struct {
	db *sql.DB
}

const ledgerColumns = `id, code, kind, origin, reference_id, value_cents, payment_method,
	description, edit_count, created_by, created_at, updated_at, cancelled_at, cancel_reason`

func (r *LedgerRepository) Create(ctx context.Context, entry domain.LedgerEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ledger_entries (`+ledgerColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Code, string(entry.Kind), string(entry.Origin), entry.ReferenceID,
		entry.ValueCents, entry.PaymentMethod, entry.Description, entry.EditCount,
		entry.CreatedBy,
		entry.CreatedAt.Format(timeFormat), entry.UpdatedAt.Format(timeFormat),
		nullableTime(entry.CancelledAt), entry.CancelReason,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCodeTaken
		}
		return fmt.Errorf("inserting ledger entry: %w", err)
	}
	return nil
}

func (r *LedgerRepository) GetByID(ctx context.Context, id string) (domain.LedgerEntry, error) {
	return scanLedgerEntry(r.db.QueryRowContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_entries WHERE id = ?`, id,
	))
}

func (r *LedgerRepository) List(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries`
	var where []string
	var args []any

	if filter.Origin != nil {
		where = append(where, `origin = ?`)
		args = append(args, string(*filter.Origin))
	}
	if filter.Kind != nil {
		where = append(where, `kind = ?`)
		args = append(args, string(*filter.Kind))
	}
	query += whereClause(where)
	query += ` ORDER BY code DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing ledger entries: %w", err)
	}
	defer rows.Close()

	return collectLedgerEntries(rows)
}

func (r *LedgerRepository) Update(ctx context.Context, entry domain.LedgerEntry) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE ledger_entries SET value_cents = ?, payment_method = ?, description = ?,
		        edit_count = ?, updated_at = ?, cancelled_at = ?, cancel_reason = ?
		 WHERE id = ?`,
		entry.ValueCents, entry.PaymentMethod, entry.Description,
		entry.EditCount, time.Now().UTC().Format(timeFormat),
		nullableTime(entry.CancelledAt), entry.CancelReason,
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("updating ledger entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrLedgerEntryNotFound
	}

	return nil
}

func (r *LedgerRepository) MaxCodeWithPrefix(ctx context.Context, prefix string) (string, error) {
	var code sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(code) FROM ledger_entries WHERE code LIKE ? || '%'`, prefix,
	).Scan(&code)
	if err != nil {
		return "", fmt.Errorf("finding max ledger code: %w", err)
	}
	return code.String, nil
}

func (r *LedgerRepository) ActiveByReference(ctx context.Context, origin domain.LedgerOrigin, referenceID string) ([]domain.LedgerEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ledgerColumns+` FROM ledger_entries
		 WHERE origin = ? AND reference_id = ? AND cancelled_at IS NULL
		 ORDER BY code`,
		string(origin), referenceID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding entries by reference: %w", err)
	}
	defer rows.Close()

	return collectLedgerEntries(rows)
}

func (r *LedgerRepository) Balance(ctx context.Context) (int64, error) {
	var balance int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN kind = ? THEN -value_cents ELSE value_cents END), 0)
		 FROM ledger_entries WHERE cancelled_at IS NULL`,
		string(domain.LedgerOut),
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("computing balance: %w", err)
	}
	return balance, nil
}

func scanLedgerEntry(row scanner) (domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	var kind, origin, createdAt, updatedAt string
	var cancelledAt sql.NullString

	err := row.Scan(&entry.ID, &entry.Code, &kind, &origin, &entry.ReferenceID,
		&entry.ValueCents, &entry.PaymentMethod, &entry.Description, &entry.EditCount,
		&entry.CreatedBy, &createdAt, &updatedAt, &cancelledAt, &entry.CancelReason)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.LedgerEntry{}, domain.ErrLedgerEntryNotFound
		}
		return domain.LedgerEntry{}, fmt.Errorf("scanning ledger entry: %w", err)
	}

	entry.Kind = domain.LedgerKind(kind)
	entry.Origin = domain.LedgerOrigin(origin)
	entry.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	entry.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	entry.CancelledAt = parseNullableTime(cancelledAt)

	return entry, nil
}

func collectLedgerEntries(rows *sql.Rows) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	for rows.Next() {
		entry, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

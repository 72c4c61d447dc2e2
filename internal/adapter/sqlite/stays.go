package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quietbay/innkeep/internal/domain"
)

// StayRepository implements domain.StayRepository using SQLite.
type StayRepository struct {
	db *sql.DB
}

const stayColumns = `id, code, room_id, guest_name, check_in, check_out,
	daily_rate_cents, total_cents, payment_method, origin, reservation_id, notes,
	cancelled, created_by, created_at, updated_at`

func (r *StayRepository) Create(ctx context.Context, stay domain.Stay) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stays (`+stayColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stay.ID, stay.Code, stay.RoomID, stay.GuestName,
		stay.CheckIn.Format(dateFormat), stay.CheckOut.Format(dateFormat),
		stay.DailyRateCents, stay.TotalCents, stay.PaymentMethod,
		string(stay.Origin), stay.ReservationID, stay.Notes,
		stay.Cancelled, stay.CreatedBy,
		stay.CreatedAt.Format(timeFormat), stay.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCodeTaken
		}
		return fmt.Errorf("inserting stay: %w", err)
	}
	return nil
}

func (r *StayRepository) GetByID(ctx context.Context, id string) (domain.Stay, error) {
	return scanStay(r.db.QueryRowContext(ctx,
		`SELECT `+stayColumns+` FROM stays WHERE id = ?`, id,
	))
}

func (r *StayRepository) List(ctx context.Context, filter domain.StayFilter) ([]domain.Stay, error) {
	query := `SELECT ` + stayColumns + ` FROM stays`
	var where []string
	var args []any

	if filter.RoomID != "" {
		where = append(where, `room_id = ?`)
		args = append(args, filter.RoomID)
	}
	if filter.Cancelled != nil {
		where = append(where, `cancelled = ?`)
		args = append(args, *filter.Cancelled)
	}
	query += whereClause(where)
	query += ` ORDER BY check_in DESC, code DESC`

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
		return nil, fmt.Errorf("listing stays: %w", err)
	}
	defer rows.Close()

	return collectStays(rows)
}

func (r *StayRepository) Update(ctx context.Context, stay domain.Stay) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE stays SET room_id = ?, guest_name = ?, check_in = ?, check_out = ?,
		        daily_rate_cents = ?, total_cents = ?, payment_method = ?, notes = ?,
		        cancelled = ?, updated_at = ?
		 WHERE id = ?`,
		stay.RoomID, stay.GuestName,
		stay.CheckIn.Format(dateFormat), stay.CheckOut.Format(dateFormat),
		stay.DailyRateCents, stay.TotalCents, stay.PaymentMethod, stay.Notes,
		stay.Cancelled, time.Now().UTC().Format(timeFormat),
		stay.ID,
	)
	if err != nil {
		return fmt.Errorf("updating stay: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrStayNotFound
	}

	return nil
}

func (r *StayRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stays WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting stay: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrStayNotFound
	}

	return nil
}

func (r *StayRepository) MaxCodeWithPrefix(ctx context.Context, prefix string) (string, error) {
	var code sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(code) FROM stays WHERE code LIKE ? || '%'`, prefix,
	).Scan(&code)
	if err != nil {
		return "", fmt.Errorf("finding max stay code: %w", err)
	}
	return code.String, nil
}

func (r *StayRepository) FindOverlapping(ctx context.Context, roomID string, entry, exit, today time.Time, excludeID string) ([]domain.Stay, error) {
	// Past stays (checked out before today) never conflict; dates compare
	// lexicographically as ISO strings.
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+stayColumns+` FROM stays
		 WHERE room_id = ?
		   AND cancelled = FALSE
		   AND check_out >= ?
		   AND check_in < ?
		   AND ? < check_out
		   AND id <> ?
		 ORDER BY check_in`,
		roomID, today.Format(dateFormat),
		exit.Format(dateFormat), entry.Format(dateFormat), excludeID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding overlapping stays: %w", err)
	}
	defer rows.Close()

	return collectStays(rows)
}

func (r *StayRepository) LatestForRoom(ctx context.Context, roomID string) (domain.Stay, error) {
	return scanStay(r.db.QueryRowContext(ctx,
		`SELECT `+stayColumns+` FROM stays
		 WHERE room_id = ? AND cancelled = FALSE
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT 1`, roomID,
	))
}

func (r *StayRepository) ListByCheckoutDate(ctx context.Context, day time.Time) ([]domain.Stay, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+stayColumns+` FROM stays
		 WHERE cancelled = FALSE AND check_out = ?
		 ORDER BY code`,
		day.Format(dateFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("listing stays by checkout date: %w", err)
	}
	defer rows.Close()

	return collectStays(rows)
}

func scanStay(row scanner) (domain.Stay, error) {
	var stay domain.Stay
	var origin, checkIn, checkOut, createdAt, updatedAt string

	err := row.Scan(&stay.ID, &stay.Code, &stay.RoomID, &stay.GuestName,
		&checkIn, &checkOut,
		&stay.DailyRateCents, &stay.TotalCents, &stay.PaymentMethod,
		&origin, &stay.ReservationID, &stay.Notes,
		&stay.Cancelled, &stay.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Stay{}, domain.ErrStayNotFound
		}
		return domain.Stay{}, fmt.Errorf("scanning stay: %w", err)
	}

	stay.Origin = domain.StayOrigin(origin)
	stay.CheckIn, _ = time.Parse(dateFormat, checkIn)
	stay.CheckOut, _ = time.Parse(dateFormat, checkOut)
	stay.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	stay.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return stay, nil
}

func collectStays(rows *sql.Rows) ([]domain.Stay, error) {
	var out []domain.Stay
	for rows.Next() {
		stay, err := scanStay(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, stay)
	}
	return out, rows.Err()
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quietbay/innkeep/internal/domain"
)

// ReservationRepository implements domain.ReservationRepository using SQLite.
type ReservationRepository struct {
	db *sql.DB
}

const reservationColumns = `id, code, guest_name, guest_type, room_id, check_in, nights, check_out,
	daily_rate_cents, total_cents, payment_method, status, notes, created_by, created_at, updated_at,
	confirmed_by, confirmed_at, cancelled_by, cancelled_at, cancel_reason`

func (r *ReservationRepository) Create(ctx context.Context, res domain.Reservation) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reservations (`+reservationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID, res.Code, res.GuestName, res.GuestType, res.RoomID,
		res.CheckIn.Format(dateFormat), res.Nights, res.CheckOut.Format(dateFormat),
		res.DailyRateCents, res.TotalCents, res.PaymentMethod, string(res.Status),
		res.Notes, res.CreatedBy,
		res.CreatedAt.Format(timeFormat), res.UpdatedAt.Format(timeFormat),
		res.ConfirmedBy, nullableTime(res.ConfirmedAt),
		res.CancelledBy, nullableTime(res.CancelledAt), res.CancelReason,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCodeTaken
		}
		return fmt.Errorf("inserting reservation: %w", err)
	}
	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (domain.Reservation, error) {
	return scanReservation(r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id,
	))
}

func (r *ReservationRepository) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations`
	var where []string
	var args []any

	if filter.Status != nil {
		where = append(where, `status = ?`)
		args = append(args, string(*filter.Status))
	}
	if filter.RoomID != "" {
		where = append(where, `room_id = ?`)
		args = append(args, filter.RoomID)
	}
	query += whereClause(where)
	query += ` ORDER BY check_in, code`

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
		return nil, fmt.Errorf("listing reservations: %w", err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}

	return out, rows.Err()
}

func (r *ReservationRepository) Update(ctx context.Context, res domain.Reservation) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET guest_name = ?, guest_type = ?, room_id = ?, check_in = ?,
		        nights = ?, check_out = ?, daily_rate_cents = ?, total_cents = ?,
		        payment_method = ?, status = ?, notes = ?, updated_at = ?,
		        confirmed_by = ?, confirmed_at = ?, cancelled_by = ?, cancelled_at = ?, cancel_reason = ?
		 WHERE id = ?`,
		res.GuestName, res.GuestType, res.RoomID, res.CheckIn.Format(dateFormat),
		res.Nights, res.CheckOut.Format(dateFormat), res.DailyRateCents, res.TotalCents,
		res.PaymentMethod, string(res.Status), res.Notes,
		time.Now().UTC().Format(timeFormat),
		res.ConfirmedBy, nullableTime(res.ConfirmedAt),
		res.CancelledBy, nullableTime(res.CancelledAt), res.CancelReason,
		res.ID,
	)
	if err != nil {
		return fmt.Errorf("updating reservation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrReservationNotFound
	}

	return nil
}

func (r *ReservationRepository) MaxCodeWithPrefix(ctx context.Context, prefix string) (string, error) {
	var code sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(code) FROM reservations WHERE code LIKE ? || '%'`, prefix,
	).Scan(&code)
	if err != nil {
		return "", fmt.Errorf("finding max reservation code: %w", err)
	}
	return code.String, nil
}

func (r *ReservationRepository) FindOverlapping(ctx context.Context, roomID string, entry, exit time.Time, excludeID string) ([]domain.Reservation, error) {
	// Half-open intervals: [check_in, check_out) and [entry, exit) collide
	// when each one starts before the other ends. ISO dates compare
	// lexicographically, so plain string comparison is correct.
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations
		 WHERE room_id = ?
		   AND status IN (?, ?)
		   AND check_in < ?
		   AND ? < check_out
		   AND id <> ?
		 ORDER BY check_in`,
		roomID, string(domain.ReservationPending), string(domain.ReservationConfirmed),
		exit.Format(dateFormat), entry.Format(dateFormat), excludeID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding overlapping reservations: %w", err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}

	return out, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReservation(row scanner) (domain.Reservation, error) {
	var res domain.Reservation
	var status, checkIn, checkOut, createdAt, updatedAt string
	var confirmedAt, cancelledAt sql.NullString

	err := row.Scan(&res.ID, &res.Code, &res.GuestName, &res.GuestType, &res.RoomID,
		&checkIn, &res.Nights, &checkOut,
		&res.DailyRateCents, &res.TotalCents, &res.PaymentMethod, &status,
		&res.Notes, &res.CreatedBy, &createdAt, &updatedAt,
		&res.ConfirmedBy, &confirmedAt, &res.CancelledBy, &cancelledAt, &res.CancelReason)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Reservation{}, domain.ErrReservationNotFound
		}
		return domain.Reservation{}, fmt.Errorf("scanning reservation: %w", err)
	}

	res.Status = domain.ReservationStatus(status)
	res.CheckIn, _ = time.Parse(dateFormat, checkIn)
	res.CheckOut, _ = time.Parse(dateFormat, checkOut)
	res.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	res.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	res.ConfirmedAt = parseNullableTime(confirmedAt)
	res.CancelledAt = parseNullableTime(cancelledAt)

	return res, nil
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	out := ` WHERE ` + conds[0]
	for _, c := range conds[1:] {
		out += ` AND ` + c
	}
	return out
}

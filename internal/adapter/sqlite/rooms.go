package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/quietbay/innkeep/internal/domain"
)

// RoomRepository implements domain.RoomRepository using SQLite.
type RoomRepository struct {
	db *sql.DB
}

const roomColumns = `id, number, daily_rate_cents, capacity, status, maintenance_since, created_at, updated_at`

func (r *RoomRepository) Create(ctx context.Context, room domain.Room) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (`+roomColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		room.ID, room.Number, room.DailyRateCents, room.Capacity, string(room.Status),
		nullableTime(room.MaintenanceSince),
		room.CreatedAt.Format(timeFormat),
		room.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.NumberConflictError{Number: room.Number}
		}
		return fmt.Errorf("inserting room: %w", err)
	}
	return nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id string) (domain.Room, error) {
	return scanRoom(r.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id,
	))
}

func (r *RoomRepository) GetByNumber(ctx context.Context, number string) (domain.Room, error) {
	return scanRoom(r.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE number = ?`, number,
	))
}

func (r *RoomRepository) List(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error) {
	query := `SELECT ` + roomColumns + ` FROM rooms`
	var args []any

	if filter.Status != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*filter.Status))
	}

	query += ` ORDER BY number`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	defer rows.Close()

	var rooms []domain.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

func (r *RoomRepository) Update(ctx context.Context, room domain.Room) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET number = ?, daily_rate_cents = ?, capacity = ?, status = ?,
		        maintenance_since = ?, updated_at = ?
		 WHERE id = ?`,
		room.Number, room.DailyRateCents, room.Capacity, string(room.Status),
		nullableTime(room.MaintenanceSince),
		time.Now().UTC().Format(timeFormat), room.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.NumberConflictError{Number: room.Number}
		}
		return fmt.Errorf("updating room: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrRoomNotFound
	}

	return nil
}

func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting room: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrRoomNotFound
	}

	return nil
}

func scanRoom(row scanner) (domain.Room, error) {
	var room domain.Room
	var status, createdAt, updatedAt string
	var maintenanceSince sql.NullString

	err := row.Scan(&room.ID, &room.Number, &room.DailyRateCents, &room.Capacity,
		&status, &maintenanceSince, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Room{}, domain.ErrRoomNotFound
		}
		return domain.Room{}, fmt.Errorf("scanning room: %w", err)
	}

	room.Status = domain.RoomStatus(status)
	room.MaintenanceSince = parseNullableTime(maintenanceSince)
	room.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	room.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)

	return room, nil
}

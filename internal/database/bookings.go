package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"toran/internal/datekey"
	"toran/internal/models"
)

// InsertBooking writes a new appointment row.
func (db *DB) InsertBooking(ctx context.Context, b *models.Booking) error {
	query := `
		INSERT INTO appointments (id, business_id, business_name, user_id, user_name,
			user_phone, date, time, status, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.ExecContext(ctx, query,
		b.ID, b.BusinessID, b.BusinessName, b.UserID, b.UserName,
		b.UserPhone, b.Date, b.Time, b.Status, b.Version)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

// GetBooking loads a single appointment by ID.
func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	query := selectBookingColumns + ` FROM appointments WHERE id = ?`

	b, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// BookedTimes returns the set of occupied "HH:MM" values for a business on a
// date. Cancelled appointments never block. Dates are normalized in Go rather
// than compared in SQL: rows written by older clients carry the date in
// several display formats, so a plain equality match would miss them.
func (db *DB) BookedTimes(ctx context.Context, businessID, dateKey, excludeID string) (map[string]struct{}, error) {
	query := `
		SELECT id, date, time FROM appointments
		WHERE business_id = ? AND status != ?`

	rows, err := db.QueryContext(ctx, query, businessID, models.StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to query booked times: %w", err)
	}
	defer rows.Close()

	taken := make(map[string]struct{})
	for rows.Next() {
		var id, date, clock string
		if err := rows.Scan(&id, &date, &clock); err != nil {
			return nil, fmt.Errorf("failed to scan booked time: %w", err)
		}
		if id == excludeID {
			continue
		}
		if datekey.NormalizeDate(date) != dateKey {
			continue
		}
		if t := datekey.NormalizeTime(clock); t != "" {
			taken[t] = struct{}{}
		}
	}
	return taken, rows.Err()
}

// SlotTaken reports whether any active appointment other than excludeID holds
// the exact slot. It rides on BookedTimes so legacy date formats count too.
func (db *DB) SlotTaken(ctx context.Context, businessID, dateKey, timeKey, excludeID string) (bool, error) {
	taken, err := db.BookedTimes(ctx, businessID, dateKey, excludeID)
	if err != nil {
		return false, err
	}
	_, ok := taken[timeKey]
	return ok, nil
}

// ListBookingsByBusiness returns a business's appointments, newest first.
func (db *DB) ListBookingsByBusiness(ctx context.Context, businessID string) ([]*models.Booking, error) {
	query := selectBookingColumns + ` FROM appointments WHERE business_id = ? ORDER BY created_at DESC`
	return db.listBookings(ctx, query, businessID)
}

// ListBookingsByUser returns a user's appointments, newest first.
func (db *DB) ListBookingsByUser(ctx context.Context, userID string) ([]*models.Booking, error) {
	query := selectBookingColumns + ` FROM appointments WHERE user_id = ? ORDER BY created_at DESC`
	return db.listBookings(ctx, query, userID)
}

func (db *DB) listBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var out []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// UpdateBookingSlot moves an appointment to a new date/time and status. The
// version guard rejects writes racing a concurrent update.
func (db *DB) UpdateBookingSlot(ctx context.Context, id string, version int64, dateKey, timeKey, status string) error {
	query := `
		UPDATE appointments
		SET date = ?, time = ?, status = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?`

	return db.guardedUpdate(ctx, id, query, dateKey, timeKey, status, id, version)
}

// UpdateBookingStatus changes only the status, with the same version guard.
func (db *DB) UpdateBookingStatus(ctx context.Context, id string, version int64, status string) error {
	query := `
		UPDATE appointments
		SET status = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?`

	return db.guardedUpdate(ctx, id, query, status, id, version)
}

func (db *DB) guardedUpdate(ctx context.Context, id, query string, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM appointments WHERE id = ?)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check booking existence: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
		return ErrConcurrentModification
	}
	return nil
}

// CountBookingsByStatus aggregates a business's appointments per status.
func (db *DB) CountBookingsByStatus(ctx context.Context, businessID string) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM appointments WHERE business_id = ? GROUP BY status`

	rows, err := db.QueryContext(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan booking count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

const selectBookingColumns = `
	SELECT id, business_id, business_name, user_id, user_name, user_phone,
		date, time, status, created_at, updated_at, version`

func scanBooking(row rowScanner) (*models.Booking, error) {
	var (
		b         models.Booking
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(&b.ID, &b.BusinessID, &b.BusinessName, &b.UserID, &b.UserName,
		&b.UserPhone, &b.Date, &b.Time, &b.Status, &createdAt, &updatedAt, &b.Version)
	if err != nil {
		return nil, err
	}
	b.CreatedAt = createdAt
	b.UpdatedAt = updatedAt
	return &b, nil
}

package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"toran/internal/models"
	"toran/internal/schedule"
)

// UpsertBusiness inserts or replaces a business profile.
func (db *DB) UpsertBusiness(ctx context.Context, b *models.Business) error {
	hoursJSON, err := json.Marshal(b.WeeklyHours)
	if err != nil {
		return fmt.Errorf("failed to marshal weekly hours: %w", err)
	}

	query := `
		INSERT INTO businesses (id, name, category, description, address, phone,
			opening_hour, closing_hour, weekly_hours,
			booking_window_days, booking_interval_minutes, auto_approve, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			description = excluded.description,
			address = excluded.address,
			phone = excluded.phone,
			opening_hour = excluded.opening_hour,
			closing_hour = excluded.closing_hour,
			weekly_hours = excluded.weekly_hours,
			booking_window_days = excluded.booking_window_days,
			booking_interval_minutes = excluded.booking_interval_minutes,
			auto_approve = excluded.auto_approve,
			updated_at = CURRENT_TIMESTAMP`

	_, err = db.ExecContext(ctx, query,
		b.ID, b.Name, b.Category, b.Description, b.Address, b.Phone,
		b.OpeningHour, b.ClosingHour, string(hoursJSON),
		nullableInt(b.BookingWindowDays), nullableInt(b.BookingIntervalMinutes), b.AutoApprove)
	if err != nil {
		return fmt.Errorf("failed to upsert business: %w", err)
	}
	return nil
}

// GetBusiness loads a single business by ID.
func (db *DB) GetBusiness(ctx context.Context, id string) (*models.Business, error) {
	query := `
		SELECT id, name, category, description, address, phone,
			opening_hour, closing_hour, weekly_hours,
			booking_window_days, booking_interval_minutes, auto_approve,
			created_at, updated_at
		FROM businesses WHERE id = ?`

	b, err := scanBusiness(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get business: %w", err)
	}
	return b, nil
}

// ListBusinesses returns every business ordered by name.
func (db *DB) ListBusinesses(ctx context.Context) ([]*models.Business, error) {
	query := `
		SELECT id, name, category, description, address, phone,
			opening_hour, closing_hour, weekly_hours,
			booking_window_days, booking_interval_minutes, auto_approve,
			created_at, updated_at
		FROM businesses ORDER BY name`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list businesses: %w", err)
	}
	defer rows.Close()

	var out []*models.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan business: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBusiness(row rowScanner) (*models.Business, error) {
	var (
		b          models.Business
		hoursJSON  sql.NullString
		windowDays sql.NullInt64
		interval   sql.NullInt64
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := row.Scan(&b.ID, &b.Name, &b.Category, &b.Description, &b.Address, &b.Phone,
		&b.OpeningHour, &b.ClosingHour, &hoursJSON,
		&windowDays, &interval, &b.AutoApprove, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if hoursJSON.Valid && hoursJSON.String != "" {
		// Legacy rows may hold malformed JSON; treat that as no weekly hours.
		var hours map[string]schedule.RawDayHours
		if err := json.Unmarshal([]byte(hoursJSON.String), &hours); err == nil {
			b.WeeklyHours = hours
		}
	}
	if windowDays.Valid {
		v := int(windowDays.Int64)
		b.BookingWindowDays = &v
	}
	if interval.Valid {
		v := int(interval.Int64)
		b.BookingIntervalMinutes = &v
	}
	b.CreatedAt = createdAt
	b.UpdatedAt = updatedAt
	return &b, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

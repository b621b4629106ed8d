package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toran/internal/models"
	"toran/internal/schedule"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedBusiness(t *testing.T, db *DB, id string) *models.Business {
	t.Helper()
	b := &models.Business{
		ID:   id,
		Name: "Test Salon",
		WeeklyHours: map[string]schedule.RawDayHours{
			"monday": {Open: "09:00", Close: "17:00"},
		},
	}
	require.NoError(t, db.UpsertBusiness(context.Background(), b))
	return b
}

func TestBusinessRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	window := 14
	in := &models.Business{
		ID:                "biz-1",
		Name:              "Test Salon",
		Category:          "beauty",
		OpeningHour:       "09:00",
		ClosingHour:       "17:00",
		BookingWindowDays: &window,
		AutoApprove:       true,
		WeeklyHours: map[string]schedule.RawDayHours{
			"monday": {Open: "10:00", Close: "16:00"},
			"sunday": {Closed: true},
		},
	}
	require.NoError(t, db.UpsertBusiness(ctx, in))

	out, err := db.GetBusiness(ctx, "biz-1")
	require.NoError(t, err)
	assert.Equal(t, "Test Salon", out.Name)
	assert.True(t, out.AutoApprove)
	require.NotNil(t, out.BookingWindowDays)
	assert.Equal(t, 14, *out.BookingWindowDays)
	assert.Nil(t, out.BookingIntervalMinutes)
	assert.Equal(t, "10:00", out.WeeklyHours["monday"].Open)

	// Upsert overwrites in place.
	in.Name = "Renamed"
	require.NoError(t, db.UpsertBusiness(ctx, in))
	out, err = db.GetBusiness(ctx, "biz-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", out.Name)

	_, err = db.GetBusiness(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookedTimes_NormalizesLegacyFormats(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedBusiness(t, db, "biz-1")

	rows := []*models.Booking{
		{ID: "a", BusinessID: "biz-1", UserID: "u1", Date: "2025-01-06", Time: "09:00", Status: models.StatusApproved, Version: 1},
		{ID: "b", BusinessID: "biz-1", UserID: "u2", Date: "06.01.2025", Time: "10:00:00", Status: models.StatusPending, Version: 1},
		{ID: "c", BusinessID: "biz-1", UserID: "u3", Date: "06/01/25", Time: "11:00", Status: models.StatusRescheduled, Version: 1},
		{ID: "d", BusinessID: "biz-1", UserID: "u4", Date: "2025-01-06", Time: "12:00", Status: models.StatusCancelled, Version: 1},
		{ID: "e", BusinessID: "biz-1", UserID: "u5", Date: "2025-01-07", Time: "09:00", Status: models.StatusApproved, Version: 1},
	}
	for _, b := range rows {
		require.NoError(t, db.InsertBooking(ctx, b))
	}

	taken, err := db.BookedTimes(ctx, "biz-1", "2025-01-06", "")
	require.NoError(t, err)

	// Legacy date formats all count; the cancelled row and the other date
	// do not.
	assert.Equal(t, map[string]struct{}{
		"09:00": {}, "10:00": {}, "11:00": {},
	}, taken)

	// Excluding a booking frees its time.
	taken, err = db.BookedTimes(ctx, "biz-1", "2025-01-06", "a")
	require.NoError(t, err)
	assert.NotContains(t, taken, "09:00")

	taken2, err := db.SlotTaken(ctx, "biz-1", "2025-01-06", "10:00", "")
	require.NoError(t, err)
	assert.True(t, taken2)

	taken2, err = db.SlotTaken(ctx, "biz-1", "2025-01-06", "12:00", "")
	require.NoError(t, err)
	assert.False(t, taken2, "cancelled booking does not hold its slot")
}

func TestUpdateBooking_VersionGuard(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedBusiness(t, db, "biz-1")

	b := &models.Booking{
		ID: "bk-1", BusinessID: "biz-1", UserID: "u1",
		Date: "2025-01-06", Time: "09:00",
		Status: models.StatusPending, Version: 1,
	}
	require.NoError(t, db.InsertBooking(ctx, b))

	require.NoError(t, db.UpdateBookingStatus(ctx, "bk-1", 1, models.StatusApproved))

	// Stale version loses.
	err := db.UpdateBookingStatus(ctx, "bk-1", 1, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrConcurrentModification)

	// Fresh version wins, and the version keeps climbing.
	require.NoError(t, db.UpdateBookingSlot(ctx, "bk-1", 2, "2025-01-07", "10:00", models.StatusRescheduled))

	got, err := db.GetBooking(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRescheduled, got.Status)
	assert.Equal(t, "2025-01-07", got.Date)
	assert.Equal(t, int64(3), got.Version)

	err = db.UpdateBookingStatus(ctx, "missing", 1, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAndCountBookings(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedBusiness(t, db, "biz-1")

	rows := []*models.Booking{
		{ID: "a", BusinessID: "biz-1", UserID: "u1", Date: "2025-01-06", Time: "09:00", Status: models.StatusPending, Version: 1},
		{ID: "b", BusinessID: "biz-1", UserID: "u1", Date: "2025-01-06", Time: "10:00", Status: models.StatusApproved, Version: 1},
		{ID: "c", BusinessID: "biz-1", UserID: "u2", Date: "2025-01-07", Time: "09:00", Status: models.StatusApproved, Version: 1},
	}
	for _, b := range rows {
		require.NoError(t, db.InsertBooking(ctx, b))
	}

	byBusiness, err := db.ListBookingsByBusiness(ctx, "biz-1")
	require.NoError(t, err)
	assert.Len(t, byBusiness, 3)

	byUser, err := db.ListBookingsByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	counts, err := db.CountBookingsByStatus(ctx, "biz-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		models.StatusPending:  1,
		models.StatusApproved: 2,
	}, counts)
}

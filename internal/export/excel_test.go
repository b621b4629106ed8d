package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"toran/internal/models"
)

func TestWriteBookingsWorkbook(t *testing.T) {
	created := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	bookings := []*models.Booking{
		{
			ID: "bk-1", BusinessName: "Test Salon", UserName: "Dana", UserPhone: "050-0000000",
			Date: "2025-01-06", Time: "09:00", Status: models.StatusApproved,
			CreatedAt: created, UpdatedAt: created,
		},
		{
			ID: "bk-2", BusinessName: "Test Salon", UserName: "Noa",
			Date: "2025-01-07", Time: "10:30", Status: models.StatusPending,
			CreatedAt: created, UpdatedAt: created,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteBookingsWorkbook(&buf, bookings))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(bookingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, bookingColumns, rows[0])
	assert.Equal(t, "bk-1", rows[1][0])
	assert.Equal(t, "09:00", rows[1][5])
	assert.Equal(t, models.StatusPending, rows[2][6])
}

func TestWriteBookingsWorkbook_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteBookingsWorkbook(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(bookingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1, "header only")
}

// Package export renders booking lists as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"toran/internal/models"
)

const bookingsSheet = "Bookings"

var bookingColumns = []string{
	"ID", "Business", "User", "Phone", "Date", "Time", "Status", "Created", "Updated",
}

// WriteBookingsWorkbook writes an xlsx workbook with one row per booking.
func WriteBookingsWorkbook(w io.Writer, bookings []*models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", bookingsSheet)

	for i, col := range bookingColumns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(bookingsSheet, cell, col); err != nil {
			return err
		}
	}

	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(bookingColumns), 1)
		_ = f.SetCellStyle(bookingsSheet, startCell, endCell, style)
	}

	for rowIdx, b := range bookings {
		values := []any{
			b.ID, b.BusinessName, b.UserName, b.UserPhone,
			b.Date, b.Time, b.Status,
			b.CreatedAt.Format("2006-01-02 15:04"),
			b.UpdatedAt.Format("2006-01-02 15:04"),
		}
		for i, val := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(bookingsSheet, cell, val); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

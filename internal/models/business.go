package models

import (
	"strings"
	"time"

	"toran/internal/schedule"
)

// Business represents one business document. Schedule-related fields are
// stored loosely (documents written by old app versions miss days, carry
// string flags, or only have the legacy single opening/closing hours) and
// are sanitized once via Schedule before the engine sees them.
type Business struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
	Address     string `json:"address,omitempty"`
	Phone       string `json:"phone,omitempty"`

	OpeningHour            string                          `json:"opening_hour,omitempty"`
	ClosingHour            string                          `json:"closing_hour,omitempty"`
	WeeklyHours            map[string]schedule.RawDayHours `json:"weekly_hours,omitempty"`
	BookingWindowDays      *int                            `json:"booking_window_days,omitempty"`
	BookingIntervalMinutes *int                            `json:"booking_interval_minutes,omitempty"`
	AutoApprove            bool                            `json:"auto_approve"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Schedule builds the sanitized bookability configuration for the business.
// All downstream availability computation goes through this one boundary.
func (b *Business) Schedule() schedule.BusinessSchedule {
	return schedule.BusinessSchedule{
		WeeklyHours:            schedule.SanitizeWeeklyHours(b.WeeklyHours),
		OpeningHour:            strings.TrimSpace(b.OpeningHour),
		ClosingHour:            strings.TrimSpace(b.ClosingHour),
		BookingWindowDays:      schedule.ClampWindowDays(b.BookingWindowDays),
		BookingIntervalMinutes: schedule.ClampIntervalMinutes(b.BookingIntervalMinutes),
	}
}

// InitialBookingStatus is the status a fresh booking gets for this business.
func (b *Business) InitialBookingStatus() string {
	if b.AutoApprove {
		return StatusApproved
	}
	return StatusPending
}

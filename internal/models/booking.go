package models

import (
	"time"

	"toran/internal/datekey"
)

// Booking lifecycle statuses.
const (
	StatusPending     = "pending"
	StatusApproved    = "approved"
	StatusCancelled   = "cancelled"
	StatusRescheduled = "rescheduled"
)

// statusTransitions is the allowed lifecycle graph. A rescheduled booking
// behaves like a fresh pending/approved one at its new slot, so it may be
// approved, cancelled or rescheduled again. Cancelled is terminal.
var statusTransitions = map[string][]string{
	StatusPending:     {StatusApproved, StatusCancelled},
	StatusApproved:    {StatusCancelled, StatusRescheduled},
	StatusRescheduled: {StatusApproved, StatusCancelled, StatusRescheduled},
	StatusCancelled:   {},
}

// CanTransition checks whether a booking may move between two statuses.
func CanTransition(from, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Booking represents one appointment document. Date and Time are stored as
// received; older clients wrote legacy formats, so both must go through
// datekey normalization before any comparison.
type Booking struct {
	ID           string    `json:"id"`
	BusinessID   string    `json:"business_id"`
	BusinessName string    `json:"business_name"`
	UserID       string    `json:"user_id"`
	UserName     string    `json:"user_name"`
	UserPhone    string    `json:"user_phone,omitempty"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Version      int64     `json:"version"`
}

// DateKey returns the booking's canonical date key, or "" if the stored
// value is unusable.
func (b *Booking) DateKey() string {
	return datekey.NormalizeDate(b.Date)
}

// TimeKey returns the booking's canonical "HH:MM" time, or "".
func (b *Booking) TimeKey() string {
	return datekey.NormalizeTime(b.Time)
}

// BlocksSlot reports whether the booking occupies its (date, time) slot.
// A cancelled booking frees its slot immediately; a rescheduled one blocks
// its new slot like any active booking.
func (b *Booking) BlocksSlot() bool {
	return b.Status != StatusCancelled
}

// StartsAt resolves the booking's slot as a wall-clock instant in loc.
func (b *Booking) StartsAt(loc *time.Location) (time.Time, bool) {
	return datekey.ResolveDateTime(b.Date, b.Time, loc)
}

// IsElapsed reports whether the booking's slot lies at or before ref.
func (b *Booking) IsElapsed(ref time.Time) bool {
	return datekey.IsElapsed(b.Date, b.Time, ref)
}

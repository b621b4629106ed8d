// Package booking validates and applies appointment lifecycle operations:
// create, approve, cancel, reschedule. Validation is pure; the Service wraps
// it with document-store reads and the pre-write slot re-check.
package booking

import (
	"errors"
	"time"

	"toran/internal/datekey"
	"toran/internal/schedule"
)

// Validation verdicts. These are returned, not thrown: a rejected booking is
// an expected outcome the caller surfaces to the user.
var (
	ErrMissingDateTime   = errors.New("booking date and time are required")
	ErrMalformedDate     = errors.New("booking date is not a recognized date")
	ErrMalformedTime     = errors.New("booking time is not a recognized time")
	ErrDateUnavailable   = errors.New("date is not bookable for this business")
	ErrSlotUnavailable   = errors.New("time is not available on this date")
	ErrSlotTaken         = errors.New("slot was just taken by another booking")
	ErrInvalidTransition = errors.New("booking status does not allow this operation")
)

// Slot is a validated (date, time) pair in canonical form.
type Slot struct {
	DateKey string
	TimeKey string
}

// ValidateSlot re-validates a proposed booking slot end to end against a
// business schedule and a snapshot of already booked times for the target
// date. Checks run in order and the first failure wins:
//
//  1. date and time are present and normalize to canonical form;
//  2. the date is a non-disabled entry of the current booking window;
//  3. the time is one of the still-available slots for that date.
//
// booked must be pre-normalized "HH:MM" values with the booking being
// rescheduled (if any) already excluded, so a reschedule onto its own
// current slot is never self-blocked. The pre-write race check against the
// live store is the Service's job, not this function's.
func ValidateSlot(s schedule.BusinessSchedule, date, clock string, today time.Time, booked map[string]struct{}) (Slot, error) {
	if date == "" || clock == "" {
		return Slot{}, ErrMissingDateTime
	}

	dateKey := datekey.NormalizeDate(date)
	if dateKey == "" {
		return Slot{}, ErrMalformedDate
	}
	timeKey := datekey.NormalizeTime(clock)
	if timeKey == "" {
		return Slot{}, ErrMalformedTime
	}

	options := schedule.EnumerateBookableDates(s, today)
	option, ok := schedule.FindDateOption(options, dateKey)
	if !ok || option.Disabled {
		return Slot{}, ErrDateUnavailable
	}

	for _, slot := range schedule.AvailableSlots(s, dateKey, booked) {
		if slot == timeKey {
			return Slot{DateKey: dateKey, TimeKey: timeKey}, nil
		}
	}
	return Slot{}, ErrSlotUnavailable
}

// IsRejection reports whether err is a validation verdict rather than an
// infrastructure failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrMissingDateTime) ||
		errors.Is(err, ErrMalformedDate) ||
		errors.Is(err, ErrMalformedTime) ||
		errors.Is(err, ErrDateUnavailable) ||
		errors.Is(err, ErrSlotUnavailable) ||
		errors.Is(err, ErrSlotTaken) ||
		errors.Is(err, ErrInvalidTransition)
}

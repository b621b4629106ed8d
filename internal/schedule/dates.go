package schedule

import (
	"time"

	"toran/internal/datekey"
)

// DateOption is one candidate bookable calendar date inside the booking
// window. Options are recomputed from configuration on every request and
// never persisted.
type DateOption struct {
	Value    string `json:"value"`    // canonical YYYY-MM-DD key
	Display  string `json:"display"`  // DD.MM.YYYY label
	Weekday  string `json:"weekday"`  // weekday key
	Disabled bool   `json:"disabled"` // no bookable slots on this date
}

// EnumerateBookableDates expands the booking window into consecutive
// calendar dates starting at today's local midnight. The result always has
// exactly the clamped window length, in chronological order, with index 0
// equal to today. Dates whose operating window yields no slots are
// annotated as disabled, not filtered; rendering decisions stay with the
// caller.
func EnumerateBookableDates(s BusinessSchedule, today time.Time) []DateOption {
	days := s.windowDays()
	interval := s.intervalMinutes()
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	options := make([]DateOption, 0, days)
	for i := 0; i < days; i++ {
		current := start.AddDate(0, 0, i)
		weekday := WeekdayKey(current)

		disabled := true
		if window, ok := ResolveOperatingWindow(s, weekday); ok {
			disabled = len(GenerateTimeSlots(window.Opening, window.Closing, interval)) == 0
		}

		options = append(options, DateOption{
			Value:    datekey.FormatKey(current),
			Display:  datekey.FormatLabel(current),
			Weekday:  weekday,
			Disabled: disabled,
		})
	}
	return options
}

// DefaultDateSelection picks the date a caller should select: the current
// selection if it is still an enabled option, otherwise the first enabled
// option, otherwise "". Re-selection never lands on a disabled date.
func DefaultDateSelection(options []DateOption, current string) string {
	if current != "" {
		for _, option := range options {
			if option.Value == current && !option.Disabled {
				return current
			}
		}
	}
	for _, option := range options {
		if !option.Disabled {
			return option.Value
		}
	}
	return ""
}

// FindDateOption returns the option for a date key, if the key is inside
// the window.
func FindDateOption(options []DateOption, value string) (DateOption, bool) {
	for _, option := range options {
		if option.Value == value {
			return option, true
		}
	}
	return DateOption{}, false
}

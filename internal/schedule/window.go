package schedule

import (
	"strconv"
	"strings"
	"time"
)

// Window is the operating window in effect for one calendar date.
type Window struct {
	Opening string
	Closing string
}

// ResolveOperatingWindow resolves the effective operating window for a
// weekday. The per-day entry wins; the legacy single opening/closing hours
// are the fallback for each side the day leaves empty. A closed flag, a
// missing side, or an inverted window all resolve to no window.
//
// The function is total: any input, including malformed configuration,
// yields either a valid window or ok=false.
func ResolveOperatingWindow(s BusinessSchedule, weekday string) (Window, bool) {
	day := s.WeeklyHours[weekday]
	if day.Closed {
		return Window{}, false
	}

	opening := day.Open
	if opening == "" {
		opening = s.OpeningHour
	}
	closing := day.Close
	if closing == "" {
		closing = s.ClosingHour
	}
	if opening == "" || closing == "" {
		return Window{}, false
	}

	open, okOpen := ParseTimeToMinutes(opening)
	close, okClose := ParseTimeToMinutes(closing)
	if !okOpen || !okClose || open >= close {
		return Window{}, false
	}

	return Window{Opening: opening, Closing: closing}, true
}

// WeekdayKey returns the weekday key for a point in time, using the time's
// own calendar date.
func WeekdayKey(t time.Time) string {
	return WeekdayKeys[int(t.Weekday())]
}

// WeekdayKeyForDate resolves the weekday key for a date string. Canonical
// "YYYY-MM-DD" keys are interpreted as plain calendar dates from their
// components, never shifted through a timezone, so the result always agrees
// with WeekdayKey for the same calendar date. Other date-like strings go
// through fallback layouts.
func WeekdayKeyForDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	if year, month, day, ok := splitDateKey(value); ok {
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		return WeekdayKey(t), true
	}

	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return WeekdayKey(t), true
		}
	}
	return "", false
}

var fallbackDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02.01.2006",
	"02/01/2006",
}

// splitDateKey destructures a canonical "YYYY-MM-DD" key into components.
func splitDateKey(value string) (year, month, day int, ok bool) {
	if len(value) != 10 || value[4] != '-' || value[7] != '-' {
		return 0, 0, 0, false
	}
	var err error
	if year, err = strconv.Atoi(value[0:4]); err != nil {
		return 0, 0, 0, false
	}
	if month, err = strconv.Atoi(value[5:7]); err != nil {
		return 0, 0, 0, false
	}
	if day, err = strconv.Atoi(value[8:10]); err != nil {
		return 0, 0, 0, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, false
	}
	return year, month, day, true
}

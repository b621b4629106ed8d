// Package datekey normalizes the date and time strings found in booking
// documents. Bookings written by older clients carry "DD/MM/YYYY" or
// "DD.MM.YYYY" dates (sometimes with two-digit years) and locale-formatted
// times; everything is folded into the canonical "YYYY-MM-DD" and "HH:MM"
// forms before any comparison.
package datekey

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	canonicalDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe          = regexp.MustCompile(`\d{2}:\d{2}`)
)

// FormatKey formats a point in time as the canonical "YYYY-MM-DD" date key,
// using the time's own calendar date.
func FormatKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatLabel formats a point in time as the "DD.MM.YYYY" display label.
func FormatLabel(t time.Time) string {
	return t.Format("02.01.2006")
}

// ParseKey parses a canonical date key into a local-midnight time.
func ParseKey(value string) (time.Time, bool) {
	if !canonicalDateRe.MatchString(value) {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(value[0:4])
	month, _ := strconv.Atoi(value[5:7])
	day, _ := strconv.Atoi(value[8:10])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
}

// NormalizeDate folds any stored booking date into the canonical
// "YYYY-MM-DD" key. Canonical input is returned unchanged (normalization is
// idempotent). "DD.MM.YYYY" and "DD/MM/YYYY" variants, including two-digit
// years, map to the same key as their canonical form. Unrecognized values
// normalize to "".
func NormalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if canonicalDateRe.MatchString(value) {
		return value
	}

	cleaned := strings.ReplaceAll(value, ".", "/")
	if parts := strings.Split(cleaned, "/"); len(parts) == 3 {
		day, errDay := strconv.Atoi(strings.TrimSpace(parts[0]))
		month, errMonth := strconv.Atoi(strings.TrimSpace(parts[1]))
		yearText := strings.TrimSpace(parts[2])
		year, errYear := strconv.Atoi(yearText)
		if errDay == nil && errMonth == nil && errYear == nil {
			if len(yearText) == 2 {
				year += 2000
			}
			return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return FormatKey(t)
		}
	}
	return ""
}

var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"January 2, 2006",
}

// NormalizeTime extracts the canonical "HH:MM" form from a stored booking
// time. Locale-formatted values ("14:30:00", "14:30 GMT+3") keep their first
// HH:MM group; anything without one normalizes to "".
func NormalizeTime(value string) string {
	return timeRe.FindString(value)
}

// ResolveDateTime combines a booking's stored date and time into a single
// wall-clock instant in the given location. ok is false when either part
// fails to normalize.
func ResolveDateTime(date, clock string, loc *time.Location) (time.Time, bool) {
	dateKey := NormalizeDate(date)
	timeKey := NormalizeTime(clock)
	if dateKey == "" || timeKey == "" {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(dateKey[0:4])
	month, _ := strconv.Atoi(dateKey[5:7])
	day, _ := strconv.Atoi(dateKey[8:10])
	hours, _ := strconv.Atoi(timeKey[0:2])
	minutes, _ := strconv.Atoi(timeKey[3:5])
	return time.Date(year, time.Month(month), day, hours, minutes, 0, 0, loc), true
}

// IsElapsed reports whether a booking's slot lies at or before the reference
// instant. The reference is always injected so callers stay deterministic;
// unresolvable bookings are never considered elapsed.
func IsElapsed(date, clock string, ref time.Time) bool {
	at, ok := ResolveDateTime(date, clock, ref.Location())
	if !ok {
		return false
	}
	return !at.After(ref)
}

// HoursUntil returns the signed number of hours between the reference
// instant and the booking's slot. ok is false when the booking's date or
// time cannot be resolved.
func HoursUntil(date, clock string, ref time.Time) (float64, bool) {
	at, ok := ResolveDateTime(date, clock, ref.Location())
	if !ok {
		return 0, false
	}
	return at.Sub(ref).Hours(), true
}

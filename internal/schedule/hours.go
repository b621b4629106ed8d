package schedule

import "strings"

// Weekday keys in calendar order, Sunday first. These are the canonical
// identifiers for per-day schedule entries in business documents.
var WeekdayKeys = [7]string{
	"sunday",
	"monday",
	"tuesday",
	"wednesday",
	"thursday",
	"friday",
	"saturday",
}

// WeekdayLabels maps weekday keys to display labels.
var WeekdayLabels = map[string]string{
	"sunday":    "Sunday",
	"monday":    "Monday",
	"tuesday":   "Tuesday",
	"wednesday": "Wednesday",
	"thursday":  "Thursday",
	"friday":    "Friday",
	"saturday":  "Saturday",
}

// DayHours is the sanitized per-weekday schedule entry.
type DayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed"`
}

// RawDayHours is the shape of a per-weekday entry as stored in a business
// document. The closed flag is schemaless in old documents (bool, string,
// number), so it is normalized during sanitization.
type RawDayHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed any    `json:"closed"`
}

// WeeklyHours maps weekday keys to sanitized day entries. After
// SanitizeWeeklyHours all seven keys are always present.
type WeeklyHours map[string]DayHours

// EmptyWeeklyHours returns a fully populated week with no hours set.
func EmptyWeeklyHours() WeeklyHours {
	hours := make(WeeklyHours, len(WeekdayKeys))
	for _, key := range WeekdayKeys {
		hours[key] = DayHours{}
	}
	return hours
}

// SanitizeWeeklyHours converts a raw weekly-hours document into a fully
// populated WeeklyHours. Unknown keys are dropped, missing days become
// empty open entries, and string values are trimmed.
func SanitizeWeeklyHours(raw map[string]RawDayHours) WeeklyHours {
	hours := EmptyWeeklyHours()
	if raw == nil {
		return hours
	}
	for _, key := range WeekdayKeys {
		entry, ok := raw[key]
		if !ok {
			continue
		}
		hours[key] = DayHours{
			Open:   strings.TrimSpace(entry.Open),
			Close:  strings.TrimSpace(entry.Close),
			Closed: normalizeClosedFlag(entry.Closed),
		}
	}
	return hours
}

func normalizeClosedFlag(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "false", "0", "no", "off", "":
			return false
		case "true", "1", "yes", "on":
			return true
		}
		return true
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	default:
		return true
	}
}

// Clamp bounds for business booking settings.
const (
	MinWindowDays     = 1
	MaxWindowDays     = 90
	DefaultWindowDays = 30

	MinIntervalMinutes     = 5
	MaxIntervalMinutes     = 180
	DefaultIntervalMinutes = 30
)

// ClampWindowDays resolves the booking horizon from a business document.
// A missing value falls back to the default; present values are clamped
// to [MinWindowDays, MaxWindowDays].
func ClampWindowDays(v *int) int {
	if v == nil {
		return DefaultWindowDays
	}
	return clampInt(*v, MinWindowDays, MaxWindowDays)
}

// ClampIntervalMinutes resolves the slot interval from a business document,
// clamped to [MinIntervalMinutes, MaxIntervalMinutes].
func ClampIntervalMinutes(v *int) int {
	if v == nil {
		return DefaultIntervalMinutes
	}
	return clampInt(*v, MinIntervalMinutes, MaxIntervalMinutes)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// BusinessSchedule is the sanitized bookability configuration for one
// business: per-weekday hours, the legacy single operating window used as a
// fallback, and the clamped booking settings. Build it once at the store
// boundary; engine functions assume it is fully populated.
type BusinessSchedule struct {
	WeeklyHours            WeeklyHours
	OpeningHour            string
	ClosingHour            string
	BookingWindowDays      int
	BookingIntervalMinutes int
}

func (s BusinessSchedule) windowDays() int {
	if s.BookingWindowDays == 0 {
		return DefaultWindowDays
	}
	return clampInt(s.BookingWindowDays, MinWindowDays, MaxWindowDays)
}

func (s BusinessSchedule) intervalMinutes() int {
	if s.BookingIntervalMinutes == 0 {
		return DefaultIntervalMinutes
	}
	return clampInt(s.BookingIntervalMinutes, MinIntervalMinutes, MaxIntervalMinutes)
}

package schedule

import "fmt"

// ParseTimeToMinutes parses a strict "HH:MM" string (two digits each side)
// into minutes since midnight. ok is false for any other shape, including
// empty strings; callers must never compare "HH:MM" strings lexicographically.
func ParseTimeToMinutes(s string) (int, bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, false
	}
	for i := 0; i < 5; i++ {
		if i == 2 {
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	hours := int(s[0]-'0')*10 + int(s[1]-'0')
	minutes := int(s[3]-'0')*10 + int(s[4]-'0')
	return hours*60 + minutes, true
}

// FormatMinutesToTime is the inverse of ParseTimeToMinutes. It assumes
// 0 <= m < 1440.
func FormatMinutesToTime(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

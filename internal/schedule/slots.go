package schedule

// GenerateTimeSlots produces the ordered bookable start times between open
// and close, spaced by interval minutes. A slot is generated only if a full
// interval fits before closing, so the last appointment always ends by close.
//
// Malformed times, open >= close, or a non-positive interval yield an empty
// result. That is the normal outcome for a closed or misconfigured day, not
// an error.
func GenerateTimeSlots(open, close string, interval int) []string {
	start, okStart := ParseTimeToMinutes(open)
	end, okEnd := ParseTimeToMinutes(close)
	if !okStart || !okEnd || start >= end || interval <= 0 {
		return nil
	}

	var slots []string
	for m := start; m+interval <= end; m += interval {
		slots = append(slots, FormatMinutesToTime(m))
	}
	return slots
}

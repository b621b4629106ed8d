package schedule

// RawSlotsForDate generates the full slot grid for a calendar date, before
// booked times are subtracted. Callers that need to distinguish a closed day
// from a fully booked one compare this against AvailableSlots.
func RawSlotsForDate(s BusinessSchedule, dateKey string) []string {
	weekday, ok := WeekdayKeyForDate(dateKey)
	if !ok {
		return nil
	}
	window, ok := ResolveOperatingWindow(s, weekday)
	if !ok {
		return nil
	}
	return GenerateTimeSlots(window.Opening, window.Closing, s.intervalMinutes())
}

// AvailableSlots answers "what times are bookable on this date": the slot
// grid for the date minus any time present in booked. The booked set must
// already hold normalized "HH:MM" values. An empty result is a normal
// outcome for a closed or fully booked day; the two are not distinguished
// here.
func AvailableSlots(s BusinessSchedule, dateKey string, booked map[string]struct{}) []string {
	raw := RawSlotsForDate(s, dateKey)
	if len(raw) == 0 {
		return nil
	}

	available := make([]string, 0, len(raw))
	for _, slot := range raw {
		if _, taken := booked[slot]; taken {
			continue
		}
		available = append(available, slot)
	}
	return available
}

package schedule

import "strings"

// Display texts for weekly-hours rows.
const (
	rowTextClosed = "Closed"
	rowTextNotSet = "Not set"
	rowTextDash   = "-"
)

// HoursRow is one display row of a business's weekly hours.
type HoursRow struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// BuildWeeklyHoursRows renders one row per weekday in calendar order.
func BuildWeeklyHoursRows(hours WeeklyHours) []HoursRow {
	rows := make([]HoursRow, 0, len(WeekdayKeys))
	for _, key := range WeekdayKeys {
		row := HoursRow{Key: key, Label: WeekdayLabels[key]}

		day, ok := hours[key]
		switch {
		case !ok:
			row.Text = rowTextNotSet
		case day.Closed:
			row.Text = rowTextClosed
		case day.Open == "" || day.Close == "":
			row.Text = rowTextDash
		default:
			row.Text = day.Open + " – " + day.Close
		}
		rows = append(rows, row)
	}
	return rows
}

// SummarizeWeeklyHoursRows collapses consecutive weekdays that share the
// same defined hours into a single "first – last" row. Rows whose text is
// undefined are kept as-is rather than grouped.
func SummarizeWeeklyHoursRows(rows []HoursRow) []HoursRow {
	type group struct {
		text      string
		groupable bool
		rows      []HoursRow
	}

	var groups []group
	for _, row := range rows {
		text := strings.TrimSpace(row.Text)
		if text == "" {
			text = rowTextDash
		}
		groupable := isDefinedScheduleText(text)

		if n := len(groups); n > 0 && groups[n-1].text == text && groups[n-1].groupable == groupable {
			groups[n-1].rows = append(groups[n-1].rows, row)
			continue
		}
		groups = append(groups, group{text: text, groupable: groupable, rows: []HoursRow{row}})
	}

	summary := make([]HoursRow, 0, len(groups))
	for _, g := range groups {
		first := g.rows[0]
		last := g.rows[len(g.rows)-1]

		label := first.Label
		if len(g.rows) > 1 && g.groupable {
			label = first.Label + " – " + last.Label
		}

		keys := make([]string, 0, len(g.rows))
		for _, row := range g.rows {
			keys = append(keys, row.Key)
		}

		summary = append(summary, HoursRow{
			Key:   strings.Join(keys, "-"),
			Label: label,
			Text:  g.text,
		})
	}
	return summary
}

// WeeklyHoursSummary is the grouped display form of a business's weekly
// hours, with undefined rows filtered out (closed days are kept).
func WeeklyHoursSummary(hours WeeklyHours) []HoursRow {
	summary := SummarizeWeeklyHoursRows(BuildWeeklyHoursRows(hours))

	filtered := make([]HoursRow, 0, len(summary))
	for _, row := range summary {
		if isDefinedScheduleText(row.Text) || row.Text == rowTextClosed {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

func isDefinedScheduleText(text string) bool {
	text = strings.TrimSpace(text)
	return text != "" && text != rowTextNotSet && text != rowTextDash
}

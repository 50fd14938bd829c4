package schedule

import (
	"fmt"
	"sort"
	"strings"
)

type timeRange struct {
	opensAt  int
	closesAt int
}

// Format renders parsed entries as a compact weekly description: entries
// with identical hours are grouped and their consecutive weekdays
// collapsed into a range label, e.g. "Mon-Fri: 09:00-18:00". A day with
// open == close renders as "Closed" and (0, 1440) as "Open 24/7".
//
// A day carrying several distinct intervals (split hours) appears on one
// line per interval; the lines are not joined with a separator.
func Format(entries []Entry) string {
	if len(entries) == 0 {
		return ""
	}

	groups := make(map[timeRange][]int)
	var order []timeRange
	for _, entry := range entries {
		tr := timeRange{opensAt: entry.OpensAt, closesAt: entry.ClosesAt}
		if _, seen := groups[tr]; !seen {
			order = append(order, tr)
		}
		groups[tr] = append(groups[tr], entry.Day)
	}

	var lines []string
	for _, tr := range order {
		days := groups[tr]
		sort.Ints(days)
		lines = append(lines, fmt.Sprintf("%s: %s", collapseDays(days), formatRange(tr)))
	}

	return strings.Join(lines, "\n")
}

// collapseDays turns a sorted weekday list into labels like "Mon-Fri" or
// "Mon, Wed, Fri-Sun".
func collapseDays(days []int) string {
	var parts []string

	for i := 0; i < len(days); {
		j := i
		for j+1 < len(days) && days[j+1] == days[j]+1 {
			j++
		}
		if j > i {
			parts = append(parts, dayLabels[days[i]]+"-"+dayLabels[days[j]])
		} else {
			parts = append(parts, dayLabels[days[i]])
		}
		i = j + 1
	}

	return strings.Join(parts, ", ")
}

func formatRange(tr timeRange) string {
	switch {
	case tr.opensAt == 0 && tr.closesAt == minutesPerDay:
		return "Open 24/7"
	case tr.opensAt == tr.closesAt:
		return "Closed"
	default:
		return formatMinutes(tr.opensAt) + "-" + formatMinutes(tr.closesAt)
	}
}

func formatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

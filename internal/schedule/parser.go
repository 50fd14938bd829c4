// Package schedule converts the provider's weekly interval descriptions
// into per-weekday open/close minute ranges and renders them back for
// humans.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// WeeklyEntry is one raw block of the provider's schedule description:
// a start day, an optional inclusive end day, and interval strings of the
// form "HH:MM-HH:MM".
type WeeklyEntry struct {
	StartDay  string
	EndDay    string
	Intervals []string
}

// Entry is a parsed open interval on a single weekday (0 = Monday).
type Entry struct {
	Day      int
	OpensAt  int
	ClosesAt int
}

var dayIndex = map[string]int{
	"Monday":    0,
	"Tuesday":   1,
	"Wednesday": 2,
	"Thursday":  3,
	"Friday":    4,
	"Saturday":  5,
	"Sunday":    6,
}

var dayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// ParseDay maps an English day name to its weekday index. Unknown names
// map to Monday, matching the provider's own lenient behavior.
func ParseDay(name string) int {
	if idx, ok := dayIndex[name]; ok {
		return idx
	}
	return 0
}

// ParseTime converts "HH:MM" to minutes from midnight.
func ParseTime(value string) (int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("time %q out of range", value)
	}
	return hours*60 + minutes, nil
}

// Parse expands weekly entries into one Entry per (weekday, interval)
// combination. Day ranges are inclusive; an absent end day means a single
// day. The provider encodes "open 24 hours" as "00:00-00:00", which is
// normalized to (0, 1440) so it never reads as always-closed.
func Parse(entries []WeeklyEntry) ([]Entry, error) {
	var parsed []Entry

	for _, entry := range entries {
		startDay := ParseDay(entry.StartDay)
		endDay := startDay
		if entry.EndDay != "" {
			endDay = ParseDay(entry.EndDay)
		}
		if endDay < startDay {
			return nil, fmt.Errorf("day range %s-%s is reversed", entry.StartDay, entry.EndDay)
		}

		for _, interval := range entry.Intervals {
			bounds := strings.SplitN(interval, "-", 2)
			if len(bounds) != 2 {
				return nil, fmt.Errorf("invalid interval %q", interval)
			}
			opensAt, err := ParseTime(bounds[0])
			if err != nil {
				return nil, err
			}
			closesAt, err := ParseTime(bounds[1])
			if err != nil {
				return nil, err
			}

			if opensAt == 0 && closesAt == 0 {
				closesAt = minutesPerDay
			}

			for day := startDay; day <= endDay; day++ {
				parsed = append(parsed, Entry{
					Day:      day,
					OpensAt:  opensAt,
					ClosesAt: closesAt,
				})
			}
		}
	}

	return parsed, nil
}

package domain

// ScheduleEntry is one contiguous open interval for an office on one
// weekday (0 = Monday .. 6 = Sunday). Times are minutes from midnight in
// the provider's local timezone. An office may carry more than one entry
// per day when the source reports split hours.
type ScheduleEntry struct {
	ID       string
	OfficeID string
	Day      int
	OpensAt  int
	ClosesAt int
}

// Contains reports whether the entry covers the given weekday and
// minute-of-day. The close edge is exclusive.
func (e ScheduleEntry) Contains(day, minutes int) bool {
	return e.Day == day && e.OpensAt <= minutes && minutes < e.ClosesAt
}

type ScheduleRepository interface {
	GetByOffice(officeID string) ([]*ScheduleEntry, error)
	// ReplaceForOffice deletes all schedule rows of the office and inserts
	// the given entries in one transaction.
	ReplaceForOffice(officeID string, entries []*ScheduleEntry) error
}

package domain

import "context"

// UpsertResult tells whether an upsert created a new row or touched an
// existing one, so sync counters never have to guess novelty after the fact.
type UpsertResult int

const (
	UpsertCreated UpsertResult = iota
	UpsertUpdated
)

// SnapshotFilter mirrors the provider's query parameters for both the
// rate snapshot and the office/coordinate snapshot.
type SnapshotFilter struct {
	City          string
	IncludeOnline bool
	Availability  string
}

// DefaultSnapshotFilter matches the provider defaults used by the bot.
func DefaultSnapshotFilter() SnapshotFilter {
	return SnapshotFilter{
		City:          "tbilisi",
		IncludeOnline: true,
		Availability:  "All",
	}
}

type SyncStats struct {
	OrganizationsCreated     int
	OrganizationsUpdated     int
	OrganizationsDeactivated int
	OfficesCreated           int
	OfficesUpdated           int
	OfficesDeactivated       int
	RatesCreated             int
	RatesUpdated             int
	SchedulesCreated         int
	CoordinatesUpdated       int
}

type SyncUsecase interface {
	// Sync runs one full reconciliation cycle against the provider. A
	// failure to fetch either snapshot aborts the cycle; per-entity errors
	// are logged and skipped.
	Sync(ctx context.Context, filter SnapshotFilter) (*SyncStats, error)
}

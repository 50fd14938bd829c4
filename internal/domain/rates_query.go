package domain

import "time"

// OrgRate is one ranked row of a best-rates-for-pair query: how much of
// the requested currency one unit of the sold currency buys at that
// organization.
type OrgRate struct {
	OrganizationName string
	Rate             float64
}

// RateRow is one row of the latest-rates comparison table. A nil leg
// means the organization has no current observation for that currency.
type RateRow struct {
	OrganizationName string
	USD              *float64
	EUR              *float64
	RUB              *float64
}

type RateUsecase interface {
	// BestRatesForPair ranks organizations for converting sellCurrency into
	// getCurrency. The always-include set comes first in fixed order, then
	// up to five other organizations sorted by descending effective rate.
	BestRatesForPair(sellCurrency, getCurrency string) ([]OrgRate, error)
	// LatestRatesTable assembles the fixed-order bank comparison table:
	// the official authority, the three online banks, then up to six other
	// organizations by descending USD buy rate.
	LatestRatesTable() ([]RateRow, error)
	// LatestObservation returns the newest rate timestamp in the store,
	// or nil when the store holds no rates.
	LatestObservation() (*time.Time, error)
}

package domain

import "time"

// LocalCurrency is the anchor currency all provider rates are quoted
// against. Cross pairs are computed through it.
const LocalCurrency = "GEL"

type Rate struct {
	ID        string
	OfficeID  string
	Currency  string
	BuyRate   float64
	SellRate  float64
	Timestamp time.Time
}

type RateRepository interface {
	// Upsert overwrites the (office, currency) row in place. At most one
	// current observation is kept per pair.
	Upsert(rate *Rate) (UpsertResult, error)
	GetByOffice(officeID string) ([]*Rate, error)
	// LatestTimestamp returns the most recent observation time across all
	// rates, or nil when no rates exist.
	LatestTimestamp() (*time.Time, error)
	// DeleteObservedBefore purges rows last observed before the cutoff.
	DeleteObservedBefore(cutoff time.Time) (int64, error)
}

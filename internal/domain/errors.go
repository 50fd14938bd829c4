package domain

import "errors"

var (
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrOfficeNotFound       = errors.New("office not found")
	ErrSessionNotFound      = errors.New("search session not found")

	// Office matcher misses. Each one is a distinct answer, not a failure:
	// the caller is expected to word them differently.
	ErrNoOfficesFound    = errors.New("no eligible offices exist")
	ErrNoOpenOffices     = errors.New("no offices are currently open")
	ErrNoBestRateOffices = errors.New("no offices with best rates found")

	ErrNoRatesForPair = errors.New("no rates available for currency pair")
)

package domain

// OfficeFilter narrows a nearest-office search. The zero value means
// "nearest office of any eligible organization, open or closed".
type OfficeFilter struct {
	// OpenOnly keeps only offices whose schedule covers the current local
	// time in the provider's timezone.
	OpenOnly bool
	// SellCurrency/GetCurrency, when both set, keep only offices whose
	// organization appears in the best-rates ranking for that pair.
	SellCurrency string
	GetCurrency  string
}

func (f OfficeFilter) BestRateOnly() bool {
	return f.SellCurrency != "" && f.GetCurrency != ""
}

// NearestOffice is the resolved result of an office search, carrying
// everything the presentation layer renders alongside the pick.
type NearestOffice struct {
	Office       *Office
	Organization *Organization
	DistanceKm   float64
	IsOpen       bool
	Rates        []*Rate
	Schedule     []*ScheduleEntry
}

type OfficeUsecase interface {
	// FindNearestOffice returns the closest eligible office to the given
	// coordinates. Filter misses are reported through the ErrNo* sentinels,
	// never as empty results.
	FindNearestOffice(lat, lng float64, filter OfficeFilter) (*NearestOffice, error)
}

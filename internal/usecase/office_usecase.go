package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/domain"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/geo"
)

// providerTimezone is the local timezone all office schedules are quoted
// in. "Open now" is always evaluated against it, not the server clock.
const providerTimezone = "Asia/Tbilisi"

// nonBranchMarkers flag service desks that carry an organization's name
// but are not real exchange branches.
var nonBranchMarkers = []string{"express", "pawn"}

type DefaultOfficeUsecase struct {
	orgRepo      domain.OrganizationRepository
	officeRepo   domain.OfficeRepository
	rateRepo     domain.RateRepository
	scheduleRepo domain.ScheduleRepository
	rates        domain.RateUsecase

	now      func() time.Time
	location *time.Location
}

func NewDefaultOfficeUsecase(
	orgRepo domain.OrganizationRepository,
	officeRepo domain.OfficeRepository,
	rateRepo domain.RateRepository,
	scheduleRepo domain.ScheduleRepository,
	rates domain.RateUsecase,
) *DefaultOfficeUsecase {
	location, err := time.LoadLocation(providerTimezone)
	if err != nil {
		location = time.FixedZone("GET", 4*3600)
	}
	return &DefaultOfficeUsecase{
		orgRepo:      orgRepo,
		officeRepo:   officeRepo,
		rateRepo:     rateRepo,
		scheduleRepo: scheduleRepo,
		rates:        rates,
		now:          time.Now,
		location:     location,
	}
}

// FindNearestOffice returns the closest eligible office to the given
// coordinates. The filter misses are reported through the ErrNo*
// sentinels so the caller can word each case distinctly.
func (uc *DefaultOfficeUsecase) FindNearestOffice(lat, lng float64, filter domain.OfficeFilter) (*domain.NearestOffice, error) {
	orgs, err := uc.candidateOrganizations(filter)
	if err != nil {
		return nil, err
	}
	if len(orgs) == 0 {
		if filter.BestRateOnly() {
			return nil, domain.ErrNoBestRateOffices
		}
		return nil, domain.ErrNoOfficesFound
	}

	var (
		best       *domain.NearestOffice
		sawOffice  bool
		sawClosed  bool
		nowMinutes int
		nowDay     int
	)
	localNow := uc.now().In(uc.location)
	nowMinutes = localNow.Hour()*60 + localNow.Minute()
	nowDay = mondayIndexed(localNow.Weekday())

	for _, org := range orgs {
		offices, err := uc.officeRepo.GetActiveByOrganization(org.ID)
		if err != nil {
			return nil, fmt.Errorf("loading offices of %q: %w", org.Name, err)
		}
		for _, office := range offices {
			if !isBranch(office) {
				continue
			}
			sawOffice = true

			entries, err := uc.scheduleRepo.GetByOffice(office.ID)
			if err != nil {
				return nil, fmt.Errorf("loading schedule of office %q: %w", office.Name, err)
			}
			open := isOpenAt(entries, nowDay, nowMinutes)
			if filter.OpenOnly && !open {
				sawClosed = true
				continue
			}

			distance := geo.Distance(lat, lng, office.Lat, office.Lng)
			if best != nil && distance >= best.DistanceKm {
				continue
			}
			best = &domain.NearestOffice{
				Office:       office,
				Organization: org,
				DistanceKm:   distance,
				IsOpen:       open,
				Schedule:     entries,
			}
		}
	}

	if best == nil {
		switch {
		case sawClosed:
			return nil, domain.ErrNoOpenOffices
		case !sawOffice && filter.BestRateOnly():
			return nil, domain.ErrNoBestRateOffices
		default:
			return nil, domain.ErrNoOfficesFound
		}
	}

	rates, err := uc.rateRepo.GetByOffice(best.Office.ID)
	if err != nil {
		return nil, fmt.Errorf("loading rates of office %q: %w", best.Office.Name, err)
	}
	best.Rates = rates
	return best, nil
}

// candidateOrganizations narrows active organizations to physical-branch
// categories and, when the filter asks for it, to organizations present
// in the best-rates ranking for the requested pair.
func (uc *DefaultOfficeUsecase) candidateOrganizations(filter domain.OfficeFilter) ([]*domain.Organization, error) {
	orgs, err := uc.orgRepo.GetActiveOrganizations()
	if err != nil {
		return nil, fmt.Errorf("loading active organizations: %w", err)
	}

	var bestRateNames map[string]struct{}
	if filter.BestRateOnly() {
		ranked, err := uc.rates.BestRatesForPair(filter.SellCurrency, filter.GetCurrency)
		if errors.Is(err, domain.ErrNoRatesForPair) {
			return nil, domain.ErrNoBestRateOffices
		}
		if err != nil {
			return nil, err
		}
		bestRateNames = make(map[string]struct{}, len(ranked))
		for _, entry := range ranked {
			bestRateNames[entry.OrganizationName] = struct{}{}
		}
	}

	var candidates []*domain.Organization
	for _, org := range orgs {
		if org.Category != domain.CategoryBank && org.Category != domain.CategoryMicrofinance {
			continue
		}
		if bestRateNames != nil {
			if _, ok := bestRateNames[org.Name]; !ok {
				continue
			}
		}
		candidates = append(candidates, org)
	}
	return candidates, nil
}

// isBranch rejects virtual offices, offices without coordinates, and
// service desks that are not real exchange branches.
func isBranch(office *domain.Office) bool {
	if office.Name == domain.VirtualOfficeName {
		return false
	}
	if office.Lat == 0 && office.Lng == 0 {
		return false
	}
	name := strings.ToLower(office.Name)
	for _, marker := range nonBranchMarkers {
		if strings.Contains(name, marker) {
			return false
		}
	}
	return true
}

func isOpenAt(entries []*domain.ScheduleEntry, day, minutes int) bool {
	for _, entry := range entries {
		if entry.Contains(day, minutes) {
			return true
		}
	}
	return false
}

// mondayIndexed converts Go's Sunday-first weekday to the Monday-first
// index the schedule model uses.
func mondayIndexed(weekday time.Weekday) int {
	return (int(weekday) + 6) % 7
}

package usecase

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/domain"
)

// alwaysIncludeNames are the online banks pinned to the top of every
// ranked rate listing, in display order. The official authority comes
// before them and is matched by external reference, not by name.
var alwaysIncludeNames = []string{"mBank", "TBC mobile", "MyCredo"}

const (
	otherRatesLimit = 5
	otherTableLimit = 6
)

type DefaultRateUsecase struct {
	orgRepo    domain.OrganizationRepository
	officeRepo domain.OfficeRepository
	rateRepo   domain.RateRepository
}

func NewDefaultRateUsecase(
	orgRepo domain.OrganizationRepository,
	officeRepo domain.OfficeRepository,
	rateRepo domain.RateRepository,
) *DefaultRateUsecase {
	return &DefaultRateUsecase{
		orgRepo:    orgRepo,
		officeRepo: officeRepo,
		rateRepo:   rateRepo,
	}
}

// BestRatesForPair ranks organizations for converting sellCurrency into
// getCurrency: the always-include set first in fixed order, then the top
// five other non-online organizations sorted by descending rate.
func (uc *DefaultRateUsecase) BestRatesForPair(sellCurrency, getCurrency string) ([]domain.OrgRate, error) {
	pinned, pinnedIDs, err := uc.pinnedOrganizations()
	if err != nil {
		return nil, err
	}

	var results []domain.OrgRate
	for _, org := range pinned {
		rate, ok, err := uc.effectiveRate(org, sellCurrency, getCurrency)
		if err != nil {
			return nil, err
		}
		if ok {
			results = append(results, domain.OrgRate{OrganizationName: org.Name, Rate: rate})
		}
	}

	orgs, err := uc.orgRepo.GetActiveOrganizations()
	if err != nil {
		return nil, fmt.Errorf("loading active organizations: %w", err)
	}

	var others []domain.OrgRate
	for _, org := range orgs {
		if org.Category == domain.CategoryOnline {
			continue
		}
		if _, pinned := pinnedIDs[org.ID]; pinned {
			continue
		}
		rate, ok, err := uc.effectiveRate(org, sellCurrency, getCurrency)
		if err != nil {
			return nil, err
		}
		if ok {
			others = append(others, domain.OrgRate{OrganizationName: org.Name, Rate: rate})
		}
	}

	sort.SliceStable(others, func(i, j int) bool {
		return others[i].Rate > others[j].Rate
	})
	if len(others) > otherRatesLimit {
		others = others[:otherRatesLimit]
	}
	results = append(results, others...)

	if len(results) == 0 {
		return nil, domain.ErrNoRatesForPair
	}
	return results, nil
}

// LatestRatesTable assembles the fixed-order comparison table: the
// official authority, the three pinned online banks, then up to six
// other active organizations sorted by descending USD buy rate.
func (uc *DefaultRateUsecase) LatestRatesTable() ([]domain.RateRow, error) {
	// Pinned rows always render, with empty legs when the organization is
	// missing, inactive, or rateless.
	pinnedIDs := make(map[string]struct{})
	var rows []domain.RateRow

	authority, err := uc.orgRepo.FindByExternalID(domain.ExternalRefNBG)
	switch {
	case err == nil:
		pinnedIDs[authority.ID] = struct{}{}
		row, err := uc.tableRow(authority)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	case errors.Is(err, domain.ErrOrganizationNotFound):
		rows = append(rows, domain.RateRow{OrganizationName: rateAuthorityName})
	default:
		return nil, fmt.Errorf("loading rate authority: %w", err)
	}

	for _, name := range alwaysIncludeNames {
		org, err := uc.orgRepo.FindByName(name)
		if errors.Is(err, domain.ErrOrganizationNotFound) {
			rows = append(rows, domain.RateRow{OrganizationName: name})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("loading organization %q: %w", name, err)
		}
		pinnedIDs[org.ID] = struct{}{}
		if !org.IsActive {
			rows = append(rows, domain.RateRow{OrganizationName: org.Name})
			continue
		}
		row, err := uc.tableRow(org)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	orgs, err := uc.orgRepo.GetActiveOrganizations()
	if err != nil {
		return nil, fmt.Errorf("loading active organizations: %w", err)
	}

	var others []domain.RateRow
	for _, org := range orgs {
		if _, pinned := pinnedIDs[org.ID]; pinned {
			continue
		}
		row, err := uc.tableRow(org)
		if err != nil {
			return nil, err
		}
		others = append(others, row)
	}

	// Rows without a USD quote sort after every row that has one.
	sort.SliceStable(others, func(i, j int) bool {
		switch {
		case others[i].USD == nil:
			return false
		case others[j].USD == nil:
			return true
		default:
			return *others[i].USD > *others[j].USD
		}
	})
	if len(others) > otherTableLimit {
		others = others[:otherTableLimit]
	}

	return append(rows, others...), nil
}

// LatestObservation reports the newest rate timestamp in the store, or
// nil when no rates have been ingested yet.
func (uc *DefaultRateUsecase) LatestObservation() (*time.Time, error) {
	return uc.rateRepo.LatestTimestamp()
}

// pinnedOrganizations resolves the always-include set: the official rate
// authority plus the named online banks, skipping any that is missing or
// inactive. The returned id set marks them as consumed for ranking.
func (uc *DefaultRateUsecase) pinnedOrganizations() ([]*domain.Organization, map[string]struct{}, error) {
	pinnedIDs := make(map[string]struct{})
	var pinned []*domain.Organization

	authority, err := uc.orgRepo.FindByExternalID(domain.ExternalRefNBG)
	switch {
	case err == nil:
		if authority.IsActive {
			pinned = append(pinned, authority)
			pinnedIDs[authority.ID] = struct{}{}
		}
	case errors.Is(err, domain.ErrOrganizationNotFound):
		// No authority row yet: the first sync has not run.
	default:
		return nil, nil, fmt.Errorf("loading rate authority: %w", err)
	}

	for _, name := range alwaysIncludeNames {
		org, err := uc.orgRepo.FindByName(name)
		if errors.Is(err, domain.ErrOrganizationNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("loading organization %q: %w", name, err)
		}
		if !org.IsActive {
			continue
		}
		pinned = append(pinned, org)
		pinnedIDs[org.ID] = struct{}{}
	}

	return pinned, pinnedIDs, nil
}

// effectiveRate computes the sellCurrency→getCurrency rate for an
// organization from its first office's GEL-quoted rates. ok is false when
// a required currency leg is missing.
func (uc *DefaultRateUsecase) effectiveRate(org *domain.Organization, sellCurrency, getCurrency string) (float64, bool, error) {
	rates, err := uc.firstOfficeRates(org)
	if err != nil {
		return 0, false, err
	}
	if rates == nil {
		return 0, false, nil
	}

	switch {
	case sellCurrency == domain.LocalCurrency:
		get, ok := rates[getCurrency]
		if !ok || get.SellRate == 0 {
			return 0, false, nil
		}
		return 1 / get.SellRate, true, nil
	case getCurrency == domain.LocalCurrency:
		sell, ok := rates[sellCurrency]
		if !ok || sell.BuyRate == 0 {
			return 0, false, nil
		}
		return sell.BuyRate, true, nil
	default:
		// Cross pair: two hops through the local currency.
		sell, sellOK := rates[sellCurrency]
		get, getOK := rates[getCurrency]
		if !sellOK || !getOK || sell.BuyRate == 0 || get.SellRate == 0 {
			return 0, false, nil
		}
		return sell.BuyRate / get.SellRate, true, nil
	}
}

func (uc *DefaultRateUsecase) tableRow(org *domain.Organization) (domain.RateRow, error) {
	row := domain.RateRow{OrganizationName: org.Name}

	rates, err := uc.firstOfficeRates(org)
	if err != nil {
		return domain.RateRow{}, err
	}
	if rates == nil {
		return row, nil
	}

	if usd, ok := rates["USD"]; ok {
		row.USD = &usd.BuyRate
	}
	if eur, ok := rates["EUR"]; ok {
		row.EUR = &eur.BuyRate
	}
	if rub, ok := rates["RUB"]; ok {
		row.RUB = &rub.BuyRate
	}
	return row, nil
}

// firstOfficeRates samples the organization's first active office and
// returns its rates keyed by currency; nil means no office or no rates.
func (uc *DefaultRateUsecase) firstOfficeRates(org *domain.Organization) (map[string]*domain.Rate, error) {
	offices, err := uc.officeRepo.GetActiveByOrganization(org.ID)
	if err != nil {
		return nil, fmt.Errorf("loading offices of %q: %w", org.Name, err)
	}
	if len(offices) == 0 {
		return nil, nil
	}

	rates, err := uc.rateRepo.GetByOffice(offices[0].ID)
	if err != nil {
		return nil, fmt.Errorf("loading rates of %q: %w", org.Name, err)
	}
	if len(rates) == 0 {
		return nil, nil
	}

	byCurrency := make(map[string]*domain.Rate, len(rates))
	for _, rate := range rates {
		byCurrency[rate.Currency] = rate
	}
	return byCurrency, nil
}

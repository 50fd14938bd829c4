package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/domain"
	publisher "github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/kafka"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/myfin"
)

// The fakes below mimic the postgres repositories closely enough for the
// reconciliation and query flows: upserts key on external ids, report the
// created/updated discriminant, and soft-delete on deactivation.

type fakeOrgRepo struct {
	orgs []*domain.Organization
	seq  int
}

func (r *fakeOrgRepo) UpsertByExternalID(org *domain.Organization) (domain.UpsertResult, error) {
	for _, existing := range r.orgs {
		if existing.ExternalRefID == org.ExternalRefID {
			existing.Name = org.Name
			existing.Website = org.Website
			existing.LogoURL = org.LogoURL
			existing.Category = org.Category
			existing.IsActive = true
			org.ID = existing.ID
			org.IsActive = true
			return domain.UpsertUpdated, nil
		}
	}
	r.seq++
	org.ID = fmt.Sprintf("org-id-%d", r.seq)
	org.IsActive = true
	stored := *org
	r.orgs = append(r.orgs, &stored)
	return domain.UpsertCreated, nil
}

func (r *fakeOrgRepo) FindByExternalID(externalRefID string) (*domain.Organization, error) {
	for _, org := range r.orgs {
		if org.ExternalRefID == externalRefID {
			return org, nil
		}
	}
	return nil, domain.ErrOrganizationNotFound
}

func (r *fakeOrgRepo) FindByName(name string) (*domain.Organization, error) {
	for _, org := range r.orgs {
		if org.Name == name {
			return org, nil
		}
	}
	return nil, domain.ErrOrganizationNotFound
}

func (r *fakeOrgRepo) GetActiveOrganizations() ([]*domain.Organization, error) {
	var active []*domain.Organization
	for _, org := range r.orgs {
		if org.IsActive {
			active = append(active, org)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		return strings.Compare(active[i].Name, active[j].Name) < 0
	})
	return active, nil
}

func (r *fakeOrgRepo) DeactivateWhereIDNotIn(keepIDs []string) (int64, error) {
	keep := make(map[string]struct{}, len(keepIDs))
	for _, id := range keepIDs {
		keep[id] = struct{}{}
	}
	var count int64
	for _, org := range r.orgs {
		if !org.IsActive {
			continue
		}
		if _, ok := keep[org.ID]; !ok {
			org.IsActive = false
			count++
		}
	}
	return count, nil
}

type fakeOfficeRepo struct {
	offices []*domain.Office
	seq     int
}

func (r *fakeOfficeRepo) UpsertByExternalID(office *domain.Office) (domain.UpsertResult, error) {
	for _, existing := range r.offices {
		if existing.ExternalRefID == office.ExternalRefID {
			existing.OrganizationID = office.OrganizationID
			existing.Name = office.Name
			existing.Address = office.Address
			existing.IsActive = true
			office.ID = existing.ID
			office.Lat = existing.Lat
			office.Lng = existing.Lng
			office.IsActive = true
			return domain.UpsertUpdated, nil
		}
	}
	r.seq++
	office.ID = fmt.Sprintf("office-id-%d", r.seq)
	office.IsActive = true
	stored := *office
	r.offices = append(r.offices, &stored)
	return domain.UpsertCreated, nil
}

func (r *fakeOfficeRepo) FindByExternalID(externalRefID string) (*domain.Office, error) {
	for _, office := range r.offices {
		if office.ExternalRefID == externalRefID {
			return office, nil
		}
	}
	return nil, domain.ErrOfficeNotFound
}

func (r *fakeOfficeRepo) GetByOrganization(organizationID string) ([]*domain.Office, error) {
	var out []*domain.Office
	for _, office := range r.offices {
		if office.OrganizationID == organizationID {
			out = append(out, office)
		}
	}
	return out, nil
}

func (r *fakeOfficeRepo) GetActiveByOrganization(organizationID string) ([]*domain.Office, error) {
	var out []*domain.Office
	for _, office := range r.offices {
		if office.OrganizationID == organizationID && office.IsActive {
			out = append(out, office)
		}
	}
	return out, nil
}

func (r *fakeOfficeRepo) UpdateCoordinates(officeID string, lat, lng float64) error {
	for _, office := range r.offices {
		if office.ID == officeID {
			office.Lat = lat
			office.Lng = lng
			return nil
		}
	}
	return domain.ErrOfficeNotFound
}

func (r *fakeOfficeRepo) DeactivateWhereIDNotIn(keepIDs []string) (int64, error) {
	keep := make(map[string]struct{}, len(keepIDs))
	for _, id := range keepIDs {
		keep[id] = struct{}{}
	}
	var count int64
	for _, office := range r.offices {
		if !office.IsActive {
			continue
		}
		if _, ok := keep[office.ID]; !ok {
			office.IsActive = false
			count++
		}
	}
	return count, nil
}

type fakeRateRepo struct {
	rates []*domain.Rate
	seq   int
}

func (r *fakeRateRepo) Upsert(rate *domain.Rate) (domain.UpsertResult, error) {
	for _, existing := range r.rates {
		if existing.OfficeID == rate.OfficeID && existing.Currency == rate.Currency {
			existing.BuyRate = rate.BuyRate
			existing.SellRate = rate.SellRate
			existing.Timestamp = rate.Timestamp
			rate.ID = existing.ID
			return domain.UpsertUpdated, nil
		}
	}
	r.seq++
	rate.ID = fmt.Sprintf("rate-id-%d", r.seq)
	stored := *rate
	r.rates = append(r.rates, &stored)
	return domain.UpsertCreated, nil
}

func (r *fakeRateRepo) GetByOffice(officeID string) ([]*domain.Rate, error) {
	var out []*domain.Rate
	for _, rate := range r.rates {
		if rate.OfficeID == officeID {
			out = append(out, rate)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Currency < out[j].Currency
	})
	return out, nil
}

func (r *fakeRateRepo) LatestTimestamp() (*time.Time, error) {
	if len(r.rates) == 0 {
		return nil, nil
	}
	latest := r.rates[0].Timestamp
	for _, rate := range r.rates[1:] {
		if rate.Timestamp.After(latest) {
			latest = rate.Timestamp
		}
	}
	return &latest, nil
}

func (r *fakeRateRepo) DeleteObservedBefore(cutoff time.Time) (int64, error) {
	var kept []*domain.Rate
	var count int64
	for _, rate := range r.rates {
		if rate.Timestamp.Before(cutoff) {
			count++
			continue
		}
		kept = append(kept, rate)
	}
	r.rates = kept
	return count, nil
}

type fakeScheduleRepo struct {
	byOffice map[string][]*domain.ScheduleEntry
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{byOffice: make(map[string][]*domain.ScheduleEntry)}
}

func (r *fakeScheduleRepo) GetByOffice(officeID string) ([]*domain.ScheduleEntry, error) {
	return r.byOffice[officeID], nil
}

func (r *fakeScheduleRepo) ReplaceForOffice(officeID string, entries []*domain.ScheduleEntry) error {
	r.byOffice[officeID] = entries
	return nil
}

type fakeSessionRepo struct {
	sessions map[int64]*domain.SearchSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[int64]*domain.SearchSession)}
}

func (r *fakeSessionRepo) Save(session *domain.SearchSession) error {
	stored := *session
	r.sessions[session.ChatID] = &stored
	return nil
}

func (r *fakeSessionRepo) FindByChatID(chatID int64) (*domain.SearchSession, error) {
	session, ok := r.sessions[chatID]
	if !ok || session.Expired(time.Now()) {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (r *fakeSessionRepo) Delete(chatID int64) error {
	delete(r.sessions, chatID)
	return nil
}

func (r *fakeSessionRepo) DeleteExpired(now time.Time) (int64, error) {
	var count int64
	for chatID, session := range r.sessions {
		if session.Expired(now) {
			delete(r.sessions, chatID)
			count++
		}
	}
	return count, nil
}

type fakeProvider struct {
	exchange    *myfin.ExchangeResponse
	exchangeErr error
	mapData     *myfin.MapResponse
	mapErr      error
}

func (p *fakeProvider) ExchangeRates(_ context.Context, _ domain.SnapshotFilter) (*myfin.ExchangeResponse, error) {
	if p.exchangeErr != nil {
		return nil, p.exchangeErr
	}
	return p.exchange, nil
}

func (p *fakeProvider) OfficeCoordinates(_ context.Context, _ domain.SnapshotFilter) (*myfin.MapResponse, error) {
	if p.mapErr != nil {
		return nil, p.mapErr
	}
	if p.mapData != nil {
		return p.mapData, nil
	}
	return &myfin.MapResponse{}, nil
}

type fakeEventPublisher struct {
	events []publisher.SyncEvent
}

func (p *fakeEventPublisher) PublishSyncEvent(event publisher.SyncEvent) error {
	p.events = append(p.events, event)
	return nil
}

package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/domain"
	publisher "github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/kafka"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/myfin"
)

type syncFixture struct {
	uc       *DefaultSyncUsecase
	orgs     *fakeOrgRepo
	offices  *fakeOfficeRepo
	rates    *fakeRateRepo
	schedule *fakeScheduleRepo
	events   *fakeEventPublisher
}

func newSyncFixture(provider SnapshotProvider) *syncFixture {
	f := &syncFixture{
		orgs:     &fakeOrgRepo{},
		offices:  &fakeOfficeRepo{},
		rates:    &fakeRateRepo{},
		schedule: newFakeScheduleRepo(),
		events:   &fakeEventPublisher{},
	}
	f.uc = NewDefaultSyncUsecase(provider, f.orgs, f.offices, f.rates, f.schedule, nil, f.events)
	return f
}

func bankSnapshot() *myfin.ExchangeResponse {
	return &myfin.ExchangeResponse{
		Organizations: []myfin.Organization{{
			ID:   "org-1",
			Type: "Bank",
			Name: myfin.LocalizedText{En: "Test Bank"},
			Offices: []myfin.Office{{
				ID:      "off-1",
				Name:    myfin.LocalizedText{En: "Main Branch"},
				Address: myfin.LocalizedText{En: "1 Rustaveli Ave"},
				Rates: map[string]myfin.OfficeRate{
					"USD": {Buy: 2.65, Sell: 2.70},
				},
			}},
		}},
	}
}

func TestSync_CreatesEntitiesOnFirstCycle(t *testing.T) {
	f := newSyncFixture(&fakeProvider{exchange: bankSnapshot()})

	stats, err := f.uc.Sync(context.Background(), domain.DefaultSnapshotFilter())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.OrganizationsCreated)
	assert.Equal(t, 1, stats.OfficesCreated)
	assert.Equal(t, 1, stats.RatesCreated)
	assert.Zero(t, stats.OrganizationsUpdated)
	assert.Zero(t, stats.OrganizationsDeactivated)

	org, err := f.orgs.FindByExternalID("org-1")
	require.NoError(t, err)
	assert.Equal(t, "Test Bank", org.Name)
	assert.Equal(t, domain.CategoryBank, org.Category)
	assert.True(t, org.IsActive)
}

func TestSync_SecondCycleIsIdempotent(t *testing.T) {
	f := newSyncFixture(&fakeProvider{exchange: bankSnapshot()})

	_, err := f.uc.Sync(context.Background(), domain.DefaultSnapshotFilter())
	require.NoError(t, err)

	stats, err := f.uc.Sync(context.Background(), domain.DefaultSnapshotFilter())
	require.NoError(t, err)

	assert.Zero(t, stats.OrganizationsCreated)
	assert.Zero(t, stats.OfficesCreated)
	assert.Zero(t, stats.RatesCreated)
	assert.Equal(t, 1, stats.OrganizationsUpdated)
	assert.Equal(t, 1, stats.OfficesUpdated)
	assert.Equal(t, 1, stats.RatesUpdated)
	assert.Zero(t, stats.OrganizationsDeactivated)
	assert.Zero(t, stats.OfficesDeactivated)
}

func TestSync_DeactivatesVanishedEntities(t *testing.T) {
	first := bankSnapshot()
	first.Organizations = append(first.Organizations, myfin.Organization{
		ID:   "org-2",
		Type: "Bank",
		Name: myfin.LocalizedText{En: "Vanishing Bank"},
		Offices: []myfin.Office{{
			ID:   "off-2",
			Name: myfin.LocalizedText{En: "Side Branch"},
		}},
	})
	provider := &fakeProvider{exchange: first}
	f := newSyncFixture(provider)

	_, err := f.uc.Sync(context.Background(), domain.DefaultSnapshotFilter())
	require.NoError(t, err)

	provider.exchange = bankSnapshot()
	stats, err := f.uc.Sync(context.Background(), domain.DefaultSnapshotFilter())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.OrganizationsDeactivated)
	assert.Equal(t, 1, stats.OfficesDeactivated)

	gone, err := f.orgs.FindByExternalID("org-2")
	require.NoError(t, err)
	assert.False(t, gone.IsActive)

	kept, err := f.orgs.FindByExternalID("org-1")
	require.NoError(t, err)
	assert.True(t, kept.IsActive)
}

func TestSync_SynthesizesVirtualOfficeForOnlineOrg(t *testing.T) {
	snapshot := &myfin.ExchangeResponse{
		Organizations: []myfin.Organization{{
			ID:   "mbank",
			Type: "Online",
			Name: myfin.LocalizedText{En: "mBank"},
			Best: map[string]myfin.OrgRate{
				"USD": {Buy: 2.69, Sell: 2.71},
			},
		}},
	}
	f := newSyncFixture(&fakeProvider{exchange: snapshot})

	stats, err := f.uc.Sync(context.Background(), domain.DefaultSnapshotFilter())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.OfficesCreated)
	assert.Equal(t, 1, stats.RatesCreated)

	office, err := f.offices.FindByExternalID(domain.VirtualOfficeRefID("mbank"))
	require.NoError(t, err)
	assert.Equal(t, domain.VirtualOfficeName, office.Name)
	assert.Equal(t, domain.VirtualOfficeAddress, office.Address)

	rates, err := f.rates.GetByOffice(office.ID)
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.Equal(t, "USD", rates[0].Currency)
	assert.Equal(t, 2.69, rates[0].BuyRate)
	assert.Equal(t, 2.71, rates[0].SellRate)
}

func TestSync_UpsertsAuthorityFromBestMap(t *testing.T) {
	snapshot := bankSnapshot()
	snapshot.Best = map[string]myfin.BestRate{
		"USD": {Buy: 2.66, Sell: 2.69, NBG: 2.68},
		"EUR": {Buy: 3.05, Sell: 3.10}, // no official quote
	}
	f := newSyncFixture(&fakeProvider{exchange: snapshot})

	_, err := f.uc.Sync(context.Background(), domain.DefaultSnapshotFilter())
	require.NoError(t, err)

	authority, err := f.orgs.FindByExternalID(domain.ExternalRefNBG)
	require.NoError(t, err)
	assert.Equal(t, "National Bank of Georgia", authority.Name)
	assert.True(t, authority.IsActive)

	office, err := f.offices.FindByExternalID(domain.VirtualOfficeRefID(domain.ExternalRefNBG))
	require.NoError(t, err)

	rates, err := f.rates.GetByOffice(office.ID)
	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.Equal(t, "USD", rates[0].Currency)
	assert.Equal(t, 2.68, rates[0].BuyRate)
	assert.Equal(t, 2.68, rates[0].SellRate)
}

func TestSync_MapPassUpdatesCoordinatesAndSchedules(t *testing.T) {
	provider := &fakeProvider{
		exchange: bankSnapshot(),
		mapData: &myfin.MapResponse{
			Offices: []myfin.MapOffice{{
				ID:        "off-1",
				Latitude:  41.7151,
				Longitude: 44.8271,
				Schedule: []myfin.ScheduleBlock{{
					Start:     myfin.LocalizedText{En: "Monday"},
					End:       &myfin.LocalizedText{En: "Friday"},
					Intervals: []string{"09:00-18:00"},
				}},
			}},
		},
	}
	f := newSyncFixture(provider)

	stats, err := f.uc.Sync(context.Background(), domain.DefaultSnapshotFilter())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CoordinatesUpdated)
	assert.Equal(t, 5, stats.SchedulesCreated)

	office, err := f.offices.FindByExternalID("off-1")
	require.NoError(t, err)
	assert.Equal(t, 41.7151, office.Lat)
	assert.Equal(t, 44.8271, office.Lng)

	entries, err := f.schedule.GetByOffice(office.ID)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, 540, entries[0].OpensAt)
	assert.Equal(t, 1080, entries[0].ClosesAt)
}

func TestSync_MapOfficeUnknownToRateSnapshotIsSkipped(t *testing.T) {
	provider := &fakeProvider{
		exchange: bankSnapshot(),
		mapData: &myfin.MapResponse{
			Offices: []myfin.MapOffice{{
				ID:       "off-unknown",
				Latitude: 41.0,
			}},
		},
	}
	f := newSyncFixture(provider)

	stats, err := f.uc.Sync(context.Background(), domain.DefaultSnapshotFilter())
	require.NoError(t, err)
	assert.Zero(t, stats.CoordinatesUpdated)
}

func TestSync_SkipsMalformedOrganization(t *testing.T) {
	snapshot := bankSnapshot()
	snapshot.Organizations = append(snapshot.Organizations, myfin.Organization{
		Type: "Bank",
		Name: myfin.LocalizedText{En: "No External ID Bank"},
	})
	f := newSyncFixture(&fakeProvider{exchange: snapshot})

	stats, err := f.uc.Sync(context.Background(), domain.DefaultSnapshotFilter())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.OrganizationsCreated)
}

func TestSync_FetchFailureAbortsAndPublishesErrorEvent(t *testing.T) {
	f := newSyncFixture(&fakeProvider{exchangeErr: errors.New("connection refused")})

	_, err := f.uc.Sync(context.Background(), domain.DefaultSnapshotFilter())
	require.Error(t, err)

	require.Len(t, f.events.events, 1)
	event := f.events.events[0]
	assert.Equal(t, publisher.SyncStatusError, event.Status)
	assert.NotEmpty(t, event.RunID)
	assert.Contains(t, event.Error, "connection refused")
}

func TestSync_SuccessPublishesEventWithStats(t *testing.T) {
	f := newSyncFixture(&fakeProvider{exchange: bankSnapshot()})

	stats, err := f.uc.Sync(context.Background(), domain.DefaultSnapshotFilter())
	require.NoError(t, err)

	require.Len(t, f.events.events, 1)
	event := f.events.events[0]
	assert.Equal(t, publisher.SyncStatusOK, event.Status)
	assert.Equal(t, stats, event.Stats)
	assert.False(t, event.FinishedAt.Before(event.StartedAt))
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gonanoid "github.com/jaevor/go-nanoid"

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/domain"
	publisher "github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/kafka"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/metrics"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/myfin"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/schedule"
)

// SnapshotProvider is the port to the upstream rate provider. The two
// snapshots are independent calls and may be slightly inconsistent with
// each other; the engine does not try to reconcile that skew.
type SnapshotProvider interface {
	ExchangeRates(ctx context.Context, filter domain.SnapshotFilter) (*myfin.ExchangeResponse, error)
	OfficeCoordinates(ctx context.Context, filter domain.SnapshotFilter) (*myfin.MapResponse, error)
}

// SyncEventPublisher receives the outcome of every reconciliation cycle.
type SyncEventPublisher interface {
	PublishSyncEvent(event publisher.SyncEvent) error
}

const rateAuthorityName = "National Bank of Georgia"

type DefaultSyncUsecase struct {
	provider     SnapshotProvider
	orgRepo      domain.OrganizationRepository
	officeRepo   domain.OfficeRepository
	rateRepo     domain.RateRepository
	scheduleRepo domain.ScheduleRepository
	syncMetrics  *metrics.SyncMetrics
	events       SyncEventPublisher

	newRunID func() string
	now      func() time.Time
	logger   *slog.Logger
}

// NewDefaultSyncUsecase wires the reconciliation engine. Metrics and the
// event publisher are optional and may be nil.
func NewDefaultSyncUsecase(
	snapshotProvider SnapshotProvider,
	orgRepo domain.OrganizationRepository,
	officeRepo domain.OfficeRepository,
	rateRepo domain.RateRepository,
	scheduleRepo domain.ScheduleRepository,
	syncMetrics *metrics.SyncMetrics,
	events SyncEventPublisher,
) *DefaultSyncUsecase {
	return &DefaultSyncUsecase{
		provider:     snapshotProvider,
		orgRepo:      orgRepo,
		officeRepo:   officeRepo,
		rateRepo:     rateRepo,
		scheduleRepo: scheduleRepo,
		syncMetrics:  syncMetrics,
		events:       events,
		newRunID:     mustRunIDGenerator(),
		now:          time.Now,
		logger:       slog.Default(),
	}
}

func mustRunIDGenerator() func() string {
	gen, err := gonanoid.Standard(12)
	if err != nil {
		panic(err)
	}
	return gen
}

// Sync runs one full reconciliation cycle. Snapshot-level fetch failures
// abort the cycle; anything already written stays written. Per-entity
// failures are logged and skipped.
func (uc *DefaultSyncUsecase) Sync(ctx context.Context, filter domain.SnapshotFilter) (*domain.SyncStats, error) {
	runID := uc.newRunID()
	startedAt := uc.now()
	log := uc.logger.With("run_id", runID)
	log.Info("starting reconciliation cycle", "city", filter.City)

	stats := &domain.SyncStats{}

	exchange, err := uc.provider.ExchangeRates(ctx, filter)
	if err != nil {
		uc.reportFailure(runID, startedAt, err)
		return nil, err
	}

	activeOrgIDs := make(map[string]struct{})
	activeOfficeIDs := make(map[string]struct{})

	if err := uc.upsertRateAuthority(exchange.Best, stats, activeOrgIDs, activeOfficeIDs); err != nil {
		log.Error("failed to upsert official rate authority", "error", err)
	}

	for i := range exchange.Organizations {
		orgData := &exchange.Organizations[i]
		if err := uc.processOrganization(orgData, stats, activeOrgIDs, activeOfficeIDs); err != nil {
			log.Error("skipping organization", "external_ref_id", orgData.ID, "error", err)
		}
	}

	deactivatedOrgs, err := uc.orgRepo.DeactivateWhereIDNotIn(setKeys(activeOrgIDs))
	if err != nil {
		log.Error("failed to deactivate vanished organizations", "error", err)
	}
	stats.OrganizationsDeactivated = int(deactivatedOrgs)

	deactivatedOffices, err := uc.officeRepo.DeactivateWhereIDNotIn(setKeys(activeOfficeIDs))
	if err != nil {
		log.Error("failed to deactivate vanished offices", "error", err)
	}
	stats.OfficesDeactivated = int(deactivatedOffices)

	// The coordinate snapshot excludes online organizations: they have no
	// physical branches to place on a map.
	mapFilter := filter
	mapFilter.IncludeOnline = false
	mapData, err := uc.provider.OfficeCoordinates(ctx, mapFilter)
	if err != nil {
		uc.reportFailure(runID, startedAt, err)
		return nil, err
	}
	uc.processMapData(mapData, stats, log)

	uc.reportSuccess(runID, startedAt, stats)
	log.Info("reconciliation cycle finished",
		"orgs_created", stats.OrganizationsCreated,
		"orgs_updated", stats.OrganizationsUpdated,
		"orgs_deactivated", stats.OrganizationsDeactivated,
		"offices_created", stats.OfficesCreated,
		"offices_deactivated", stats.OfficesDeactivated,
		"rates_created", stats.RatesCreated,
		"rates_updated", stats.RatesUpdated,
		"schedules_created", stats.SchedulesCreated,
	)
	return stats, nil
}

// upsertRateAuthority maintains the fixed organization/office pair backing
// the official reference rate. It is fed from the snapshot's top-level
// best map and never appears in the organizations list, so the pair stays
// out of the created/updated counters; its rates are counted normally.
func (uc *DefaultSyncUsecase) upsertRateAuthority(
	best map[string]myfin.BestRate,
	stats *domain.SyncStats,
	activeOrgIDs, activeOfficeIDs map[string]struct{},
) error {
	org := &domain.Organization{
		ExternalRefID: domain.ExternalRefNBG,
		Name:          rateAuthorityName,
		Category:      domain.CategoryUnknown,
	}
	if _, err := uc.orgRepo.UpsertByExternalID(org); err != nil {
		return fmt.Errorf("upserting authority organization: %w", err)
	}
	activeOrgIDs[org.ID] = struct{}{}

	office := &domain.Office{
		ExternalRefID:  domain.VirtualOfficeRefID(domain.ExternalRefNBG),
		OrganizationID: org.ID,
		Name:           domain.VirtualOfficeName,
		Address:        domain.VirtualOfficeAddress,
	}
	if _, err := uc.officeRepo.UpsertByExternalID(office); err != nil {
		return fmt.Errorf("upserting authority office: %w", err)
	}
	activeOfficeIDs[office.ID] = struct{}{}

	for currency, rate := range best {
		if rate.NBG == 0 {
			continue
		}
		rateResult, err := uc.rateRepo.Upsert(&domain.Rate{
			OfficeID:  office.ID,
			Currency:  currency,
			BuyRate:   rate.NBG,
			SellRate:  rate.NBG,
			Timestamp: uc.now(),
		})
		if err != nil {
			uc.logger.Error("skipping authority rate", "currency", currency, "error", err)
			continue
		}
		tally(rateResult, &stats.RatesCreated, &stats.RatesUpdated)
	}

	return nil
}

func (uc *DefaultSyncUsecase) processOrganization(
	orgData *myfin.Organization,
	stats *domain.SyncStats,
	activeOrgIDs, activeOfficeIDs map[string]struct{},
) error {
	if orgData.ID == "" {
		return errors.New("organization has no external id")
	}
	if orgData.Name.En == "" {
		return fmt.Errorf("organization %s has no english name", orgData.ID)
	}

	org := &domain.Organization{
		ExternalRefID: orgData.ID,
		Name:          orgData.Name.En,
		Website:       orgData.Link,
		LogoURL:       orgData.Icon,
		Category:      domain.ParseOrgCategory(orgData.Type),
	}
	result, err := uc.orgRepo.UpsertByExternalID(org)
	if err != nil {
		return fmt.Errorf("upserting organization: %w", err)
	}
	tally(result, &stats.OrganizationsCreated, &stats.OrganizationsUpdated)
	activeOrgIDs[org.ID] = struct{}{}

	offices := orgData.Offices
	if len(offices) == 0 {
		if org.Category != domain.CategoryOnline {
			return nil
		}
		// Online banks are reported without branches; synthesize a virtual
		// office so their rates have a home.
		offices = []myfin.Office{{
			ID:      domain.VirtualOfficeRefID(orgData.ID),
			Name:    myfin.LocalizedText{En: domain.VirtualOfficeName},
			Address: myfin.LocalizedText{En: domain.VirtualOfficeAddress},
		}}
	}

	for i := range offices {
		officeData := &offices[i]
		if err := uc.processOffice(org, orgData, officeData, stats, activeOfficeIDs); err != nil {
			uc.logger.Error("skipping office",
				"organization", orgData.ID,
				"external_ref_id", officeData.ID,
				"error", err,
			)
		}
	}
	return nil
}

func (uc *DefaultSyncUsecase) processOffice(
	org *domain.Organization,
	orgData *myfin.Organization,
	officeData *myfin.Office,
	stats *domain.SyncStats,
	activeOfficeIDs map[string]struct{},
) error {
	if officeData.ID == "" {
		return errors.New("office has no external id")
	}

	office := &domain.Office{
		ExternalRefID:  officeData.ID,
		OrganizationID: org.ID,
		Name:           officeData.Name.En,
		Address:        officeData.Address.En,
	}
	result, err := uc.officeRepo.UpsertByExternalID(office)
	if err != nil {
		return fmt.Errorf("upserting office: %w", err)
	}
	tally(result, &stats.OfficesCreated, &stats.OfficesUpdated)
	activeOfficeIDs[office.ID] = struct{}{}

	rates := officeData.Rates
	if len(rates) == 0 && org.Category == domain.CategoryOnline {
		// The provider reports online-bank rates at the organization level,
		// not per office. Fall back to the org-level best map.
		rates = make(map[string]myfin.OfficeRate, len(orgData.Best))
		for currency, best := range orgData.Best {
			rates[currency] = myfin.OfficeRate{Buy: best.Buy, Sell: best.Sell}
		}
	}

	for currency, rateData := range rates {
		observedAt := rateData.Time
		if observedAt.IsZero() {
			observedAt = uc.now()
		}
		rateResult, err := uc.rateRepo.Upsert(&domain.Rate{
			OfficeID:  office.ID,
			Currency:  currency,
			BuyRate:   rateData.Buy,
			SellRate:  rateData.Sell,
			Timestamp: observedAt,
		})
		if err != nil {
			uc.logger.Error("skipping rate", "office", officeData.ID, "currency", currency, "error", err)
			continue
		}
		tally(rateResult, &stats.RatesCreated, &stats.RatesUpdated)
	}

	return nil
}

// processMapData walks the coordinate snapshot, refreshing office
// coordinates and replacing schedules where new data arrived.
func (uc *DefaultSyncUsecase) processMapData(mapData *myfin.MapResponse, stats *domain.SyncStats, log *slog.Logger) {
	for i := range mapData.Offices {
		officeData := &mapData.Offices[i]

		office, err := uc.officeRepo.FindByExternalID(officeData.ID)
		if errors.Is(err, domain.ErrOfficeNotFound) {
			// Present on the map but absent from the rate snapshot; the
			// next rate pass will pick it up, coordinates can wait.
			continue
		}
		if err != nil {
			log.Error("skipping map office", "external_ref_id", officeData.ID, "error", err)
			continue
		}

		if err := uc.officeRepo.UpdateCoordinates(office.ID, officeData.Latitude, officeData.Longitude); err != nil {
			log.Error("failed to update coordinates", "external_ref_id", officeData.ID, "error", err)
			continue
		}
		stats.CoordinatesUpdated++

		if len(officeData.Schedule) == 0 {
			continue
		}

		weekly := make([]schedule.WeeklyEntry, 0, len(officeData.Schedule))
		for _, block := range officeData.Schedule {
			entry := schedule.WeeklyEntry{
				StartDay:  block.Start.En,
				Intervals: block.Intervals,
			}
			if block.End != nil {
				entry.EndDay = block.End.En
			}
			weekly = append(weekly, entry)
		}

		parsed, err := schedule.Parse(weekly)
		if err != nil {
			log.Error("skipping malformed schedule", "external_ref_id", officeData.ID, "error", err)
			continue
		}

		entries := make([]*domain.ScheduleEntry, 0, len(parsed))
		for _, p := range parsed {
			entries = append(entries, &domain.ScheduleEntry{
				OfficeID: office.ID,
				Day:      p.Day,
				OpensAt:  p.OpensAt,
				ClosesAt: p.ClosesAt,
			})
		}
		if err := uc.scheduleRepo.ReplaceForOffice(office.ID, entries); err != nil {
			log.Error("failed to replace schedules", "external_ref_id", officeData.ID, "error", err)
			continue
		}
		stats.SchedulesCreated += len(entries)
	}
}

func (uc *DefaultSyncUsecase) reportSuccess(runID string, startedAt time.Time, stats *domain.SyncStats) {
	finishedAt := uc.now()
	if uc.syncMetrics != nil {
		uc.syncMetrics.ObserveCycle(stats, finishedAt.Sub(startedAt).Seconds(), false)
	}
	if uc.events != nil {
		if err := uc.events.PublishSyncEvent(publisher.SyncEvent{
			RunID:      runID,
			Status:     publisher.SyncStatusOK,
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
			Stats:      stats,
		}); err != nil {
			uc.logger.Error("failed to publish sync event", "run_id", runID, "error", err)
		}
	}
}

func (uc *DefaultSyncUsecase) reportFailure(runID string, startedAt time.Time, cause error) {
	uc.logger.Error("reconciliation cycle aborted", "run_id", runID, "error", cause)
	if uc.syncMetrics != nil {
		uc.syncMetrics.ObserveCycle(nil, 0, true)
	}
	if uc.events != nil {
		if err := uc.events.PublishSyncEvent(publisher.SyncEvent{
			RunID:      runID,
			Status:     publisher.SyncStatusError,
			StartedAt:  startedAt,
			FinishedAt: uc.now(),
			Error:      cause.Error(),
		}); err != nil {
			uc.logger.Error("failed to publish sync event", "run_id", runID, "error", err)
		}
	}
}

func tally(result domain.UpsertResult, created, updated *int) {
	if result == domain.UpsertCreated {
		*created++
	} else {
		*updated++
	}
}

func setKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	return keys
}

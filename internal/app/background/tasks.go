package background

import (
	"context"
	"log"
	"time"

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/config"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/domain"
)

type BackgroundTasks struct {
	SyncUsecase domain.SyncUsecase
	RateRepo    domain.RateRepository
	SessionRepo domain.SearchSessionRepository
	Cfg         config.SyncConfig
}

func NewBackgroundTasks(
	syncUC domain.SyncUsecase,
	rateRepo domain.RateRepository,
	sessionRepo domain.SearchSessionRepository,
	cfg config.SyncConfig,
) *BackgroundTasks {
	return &BackgroundTasks{
		SyncUsecase: syncUC,
		RateRepo:    rateRepo,
		SessionRepo: sessionRepo,
		Cfg:         cfg,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startPeriodicSync(ctx)
	go bt.startRateRetention(ctx)
	go bt.startSessionSweep(ctx)
}

// startPeriodicSync runs one reconciliation immediately, then on every
// tick. The single goroutine serializes cycles: two reconciliations never
// race on the same rate rows.
func (bt *BackgroundTasks) startPeriodicSync(ctx context.Context) {
	filter := domain.SnapshotFilter{
		City:          bt.Cfg.City,
		IncludeOnline: true,
		Availability:  "All",
	}

	bt.runSync(ctx, filter)

	ticker := time.NewTicker(bt.Cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bt.runSync(ctx, filter)
		}
	}
}

func (bt *BackgroundTasks) runSync(ctx context.Context, filter domain.SnapshotFilter) {
	syncCtx, cancel := context.WithTimeout(ctx, bt.Cfg.Interval)
	defer cancel()

	if _, err := bt.SyncUsecase.Sync(syncCtx, filter); err != nil {
		log.Printf("Periodic sync error: %v\n", err)
	}
}

func (bt *BackgroundTasks) startRateRetention(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-bt.Cfg.RateRetention)
			deleted, err := bt.RateRepo.DeleteObservedBefore(cutoff)
			if err != nil {
				log.Printf("Rate retention error: %v\n", err)
				continue
			}
			if deleted > 0 {
				log.Printf("Rate retention: purged %d stale rows\n", deleted)
			}
		}
	}
}

func (bt *BackgroundTasks) startSessionSweep(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := bt.SessionRepo.DeleteExpired(time.Now()); err != nil {
				log.Printf("Session sweep error: %v\n", err)
			}
		}
	}
}

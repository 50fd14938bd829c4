package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/domain"
)

// SyncMetrics exposes the reconciliation counters to Prometheus.
type SyncMetrics struct {
	SyncRunsTotal     prometheus.CounterVec
	SyncDuration      prometheus.Histogram
	SyncEntitiesTotal prometheus.CounterVec
}

func NewSyncMetrics() *SyncMetrics {
	return &SyncMetrics{
		SyncRunsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exchange_sync_runs_total",
				Help: "Total number of reconciliation cycles by outcome",
			},
			[]string{"status"},
		),

		SyncDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "exchange_sync_duration_seconds",
				Help:    "Duration of a full reconciliation cycle in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			},
		),

		SyncEntitiesTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exchange_sync_entities_total",
				Help: "Entities touched per reconciliation cycle by entity and action",
			},
			[]string{"entity", "action"},
		),
	}
}

// ObserveCycle records one finished cycle.
func (m *SyncMetrics) ObserveCycle(stats *domain.SyncStats, seconds float64, failed bool) {
	if failed {
		m.SyncRunsTotal.WithLabelValues("error").Inc()
		return
	}

	m.SyncRunsTotal.WithLabelValues("ok").Inc()
	m.SyncDuration.Observe(seconds)

	m.SyncEntitiesTotal.WithLabelValues("organization", "created").Add(float64(stats.OrganizationsCreated))
	m.SyncEntitiesTotal.WithLabelValues("organization", "updated").Add(float64(stats.OrganizationsUpdated))
	m.SyncEntitiesTotal.WithLabelValues("organization", "deactivated").Add(float64(stats.OrganizationsDeactivated))
	m.SyncEntitiesTotal.WithLabelValues("office", "created").Add(float64(stats.OfficesCreated))
	m.SyncEntitiesTotal.WithLabelValues("office", "updated").Add(float64(stats.OfficesUpdated))
	m.SyncEntitiesTotal.WithLabelValues("office", "deactivated").Add(float64(stats.OfficesDeactivated))
	m.SyncEntitiesTotal.WithLabelValues("rate", "created").Add(float64(stats.RatesCreated))
	m.SyncEntitiesTotal.WithLabelValues("rate", "updated").Add(float64(stats.RatesUpdated))
	m.SyncEntitiesTotal.WithLabelValues("schedule", "created").Add(float64(stats.SchedulesCreated))
}

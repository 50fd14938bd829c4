package publisher

import (
	"time"

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/domain"
)

// SyncEvent is published after every reconciliation cycle so downstream
// consumers (alerting, history keepers) see the outcome without polling.
type SyncEvent struct {
	RunID      string            `json:"run_id"`
	Status     string            `json:"status"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Stats      *domain.SyncStats `json:"stats,omitempty"`
	Error      string            `json:"error,omitempty"`
}

const (
	SyncStatusOK    = "ok"
	SyncStatusError = "error"
)

package domain

import "time"

// SearchSession is the persisted per-chat search context. It replaces the
// old process-global map: state survives restarts and expires explicitly.
type SearchSession struct {
	ChatID       int64
	Mode         string
	SellCurrency string
	GetCurrency  string
	OpenOnly     bool
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

const (
	SearchModeNearestOffice  = "find_nearest_office"
	SearchModeBestRateOffice = "find_best_rate_office"
)

func (s *SearchSession) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

type SearchSessionRepository interface {
	Save(session *SearchSession) error
	// FindByChatID returns ErrSessionNotFound for missing or expired rows.
	FindByChatID(chatID int64) (*SearchSession, error)
	Delete(chatID int64) error
	DeleteExpired(now time.Time) (int64, error)
}

type SessionUsecase interface {
	SaveSession(session *SearchSession) error
	GetSession(chatID int64) (*SearchSession, error)
	ClearSession(chatID int64) error
}

package usecase

import (
	"time"

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/domain"
)

// DefaultSessionUsecase manages per-chat search context with a sliding
// expiry: every save pushes the session's deadline forward by the TTL.
type DefaultSessionUsecase struct {
	sessionRepo domain.SearchSessionRepository
	ttl         time.Duration
	now         func() time.Time
}

func NewDefaultSessionUsecase(sessionRepo domain.SearchSessionRepository, ttl time.Duration) *DefaultSessionUsecase {
	return &DefaultSessionUsecase{
		sessionRepo: sessionRepo,
		ttl:         ttl,
		now:         time.Now,
	}
}

func (uc *DefaultSessionUsecase) SaveSession(session *domain.SearchSession) error {
	session.ExpiresAt = uc.now().Add(uc.ttl)
	return uc.sessionRepo.Save(session)
}

func (uc *DefaultSessionUsecase) GetSession(chatID int64) (*domain.SearchSession, error) {
	return uc.sessionRepo.FindByChatID(chatID)
}

func (uc *DefaultSessionUsecase) ClearSession(chatID int64) error {
	return uc.sessionRepo.Delete(chatID)
}

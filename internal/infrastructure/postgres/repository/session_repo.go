package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/domain"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/postgres/models"
)

type DefaultSearchSessionRepository struct {
	DB *gorm.DB
}

func NewDefaultSearchSessionRepository(db *gorm.DB) *DefaultSearchSessionRepository {
	return &DefaultSearchSessionRepository{DB: db}
}

func (r *DefaultSearchSessionRepository) Save(session *domain.SearchSession) error {
	model := models.SearchSessionModel{
		ChatID:       session.ChatID,
		Mode:         session.Mode,
		SellCurrency: session.SellCurrency,
		GetCurrency:  session.GetCurrency,
		OpenOnly:     session.OpenOnly,
		ExpiresAt:    session.ExpiresAt,
	}
	if err := r.DB.Save(&model).Error; err != nil {
		return fmt.Errorf("saving search session: %w", err)
	}
	return nil
}

func (r *DefaultSearchSessionRepository) FindByChatID(chatID int64) (*domain.SearchSession, error) {
	var model models.SearchSessionModel
	err := r.DB.Where("chat_id = ?", chatID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	session := &domain.SearchSession{
		ChatID:       model.ChatID,
		Mode:         model.Mode,
		SellCurrency: model.SellCurrency,
		GetCurrency:  model.GetCurrency,
		OpenOnly:     model.OpenOnly,
		ExpiresAt:    model.ExpiresAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
	if session.Expired(time.Now()) {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (r *DefaultSearchSessionRepository) Delete(chatID int64) error {
	return r.DB.Delete(&models.SearchSessionModel{}, "chat_id = ?", chatID).Error
}

func (r *DefaultSearchSessionRepository) DeleteExpired(now time.Time) (int64, error) {
	result := r.DB.Where("expires_at <= ?", now).Delete(&models.SearchSessionModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("sweeping expired sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

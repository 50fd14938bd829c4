package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/domain"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/postgres/models"
)

type DefaultRateRepository struct {
	DB *gorm.DB
}

func NewDefaultRateRepository(db *gorm.DB) *DefaultRateRepository {
	return &DefaultRateRepository{DB: db}
}

func (r *DefaultRateRepository) Upsert(rate *domain.Rate) (domain.UpsertResult, error) {
	var model models.RateModel
	err := r.DB.Where("office_id = ? AND currency = ?", rate.OfficeID, rate.Currency).First(&model).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		model = models.RateModel{
			ID:        uuid.New().String(),
			OfficeID:  rate.OfficeID,
			Currency:  rate.Currency,
			BuyRate:   rate.BuyRate,
			SellRate:  rate.SellRate,
			Timestamp: rate.Timestamp,
		}
		if err := r.DB.Create(&model).Error; err != nil {
			return 0, fmt.Errorf("creating rate: %w", err)
		}
		rate.ID = model.ID
		return domain.UpsertCreated, nil
	}
	if err != nil {
		return 0, fmt.Errorf("looking up rate: %w", err)
	}

	updates := map[string]interface{}{
		"buy_rate":  rate.BuyRate,
		"sell_rate": rate.SellRate,
		"timestamp": rate.Timestamp,
	}
	if err := r.DB.Model(&models.RateModel{}).Where("id = ?", model.ID).Updates(updates).Error; err != nil {
		return 0, fmt.Errorf("updating rate: %w", err)
	}

	rate.ID = model.ID
	return domain.UpsertUpdated, nil
}

func (r *DefaultRateRepository) GetByOffice(officeID string) ([]*domain.Rate, error) {
	var rateModels []models.RateModel
	if err := r.DB.Where("office_id = ?", officeID).Order("currency").Find(&rateModels).Error; err != nil {
		return nil, err
	}

	rates := make([]*domain.Rate, 0, len(rateModels))
	for i := range rateModels {
		rates = append(rates, rateToDomain(&rateModels[i]))
	}
	return rates, nil
}

func (r *DefaultRateRepository) LatestTimestamp() (*time.Time, error) {
	row := r.DB.Model(&models.RateModel{}).Select("MAX(timestamp)").Row()

	var latest sql.NullTime
	if err := row.Scan(&latest); err != nil {
		return nil, fmt.Errorf("reading latest rate timestamp: %w", err)
	}
	if !latest.Valid {
		return nil, nil
	}

	t := latest.Time
	return &t, nil
}

func (r *DefaultRateRepository) DeleteObservedBefore(cutoff time.Time) (int64, error) {
	result := r.DB.Where("timestamp < ?", cutoff).Delete(&models.RateModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("purging stale rates: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func rateToDomain(model *models.RateModel) *domain.Rate {
	return &domain.Rate{
		ID:        model.ID,
		OfficeID:  model.OfficeID,
		Currency:  model.Currency,
		BuyRate:   model.BuyRate,
		SellRate:  model.SellRate,
		Timestamp: model.Timestamp,
	}
}

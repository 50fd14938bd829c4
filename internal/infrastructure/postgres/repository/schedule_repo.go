package repository

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/domain"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/postgres/models"
)

type DefaultScheduleRepository struct {
	DB *gorm.DB
}

func NewDefaultScheduleRepository(db *gorm.DB) *DefaultScheduleRepository {
	return &DefaultScheduleRepository{DB: db}
}

func (r *DefaultScheduleRepository) GetByOffice(officeID string) ([]*domain.ScheduleEntry, error) {
	var scheduleModels []models.ScheduleModel
	if err := r.DB.Where("office_id = ?", officeID).Order("day, opens_at").Find(&scheduleModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*domain.ScheduleEntry, 0, len(scheduleModels))
	for _, model := range scheduleModels {
		entries = append(entries, &domain.ScheduleEntry{
			ID:       model.ID,
			OfficeID: model.OfficeID,
			Day:      model.Day,
			OpensAt:  model.OpensAt,
			ClosesAt: model.ClosesAt,
		})
	}
	return entries, nil
}

func (r *DefaultScheduleRepository) ReplaceForOffice(officeID string, entries []*domain.ScheduleEntry) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("office_id = ?", officeID).Delete(&models.ScheduleModel{}).Error; err != nil {
			return fmt.Errorf("deleting schedules: %w", err)
		}

		if len(entries) == 0 {
			return nil
		}

		scheduleModels := make([]models.ScheduleModel, 0, len(entries))
		for _, entry := range entries {
			scheduleModels = append(scheduleModels, models.ScheduleModel{
				ID:       uuid.New().String(),
				OfficeID: officeID,
				Day:      entry.Day,
				OpensAt:  entry.OpensAt,
				ClosesAt: entry.ClosesAt,
			})
		}
		if err := tx.Create(&scheduleModels).Error; err != nil {
			return fmt.Errorf("inserting schedules: %w", err)
		}
		return nil
	})
}

package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/domain"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/postgres/models"
)

type DefaultOfficeRepository struct {
	DB *gorm.DB
}

func NewDefaultOfficeRepository(db *gorm.DB) *DefaultOfficeRepository {
	return &DefaultOfficeRepository{DB: db}
}

func (r *DefaultOfficeRepository) UpsertByExternalID(office *domain.Office) (domain.UpsertResult, error) {
	var model models.OfficeModel
	err := r.DB.Where("external_ref_id = ?", office.ExternalRefID).First(&model).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		model = models.OfficeModel{
			ID:             uuid.New().String(),
			ExternalRefID:  office.ExternalRefID,
			OrganizationID: office.OrganizationID,
			Name:           office.Name,
			Address:        office.Address,
			Lat:            office.Lat,
			Lng:            office.Lng,
			IsActive:       true,
		}
		if err := r.DB.Create(&model).Error; err != nil {
			return 0, fmt.Errorf("creating office: %w", err)
		}
		office.ID = model.ID
		office.IsActive = true
		return domain.UpsertCreated, nil
	}
	if err != nil {
		return 0, fmt.Errorf("looking up office: %w", err)
	}

	// Coordinates are owned by the map snapshot pass; the exchange snapshot
	// carries none, so an update must not zero them out.
	updates := map[string]interface{}{
		"organization_id": office.OrganizationID,
		"name":            office.Name,
		"address":         office.Address,
		"is_active":       true,
	}
	if err := r.DB.Model(&models.OfficeModel{}).Where("id = ?", model.ID).Updates(updates).Error; err != nil {
		return 0, fmt.Errorf("updating office: %w", err)
	}

	office.ID = model.ID
	office.Lat = model.Lat
	office.Lng = model.Lng
	office.IsActive = true
	return domain.UpsertUpdated, nil
}

func (r *DefaultOfficeRepository) FindByExternalID(externalRefID string) (*domain.Office, error) {
	var model models.OfficeModel
	err := r.DB.Where("external_ref_id = ?", externalRefID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOfficeNotFound
	}
	if err != nil {
		return nil, err
	}
	return officeToDomain(&model), nil
}

func (r *DefaultOfficeRepository) GetByOrganization(organizationID string) ([]*domain.Office, error) {
	return r.findOffices(r.DB.Where("organization_id = ?", organizationID))
}

func (r *DefaultOfficeRepository) GetActiveByOrganization(organizationID string) ([]*domain.Office, error) {
	return r.findOffices(r.DB.Where("organization_id = ? AND is_active = ?", organizationID, true))
}

func (r *DefaultOfficeRepository) findOffices(query *gorm.DB) ([]*domain.Office, error) {
	var officeModels []models.OfficeModel
	if err := query.Order("created_at").Find(&officeModels).Error; err != nil {
		return nil, err
	}

	offices := make([]*domain.Office, 0, len(officeModels))
	for i := range officeModels {
		offices = append(offices, officeToDomain(&officeModels[i]))
	}
	return offices, nil
}

func (r *DefaultOfficeRepository) UpdateCoordinates(officeID string, lat, lng float64) error {
	return r.DB.Model(&models.OfficeModel{}).Where("id = ?", officeID).Updates(map[string]interface{}{
		"lat": lat,
		"lng": lng,
	}).Error
}

func (r *DefaultOfficeRepository) DeactivateWhereIDNotIn(keepIDs []string) (int64, error) {
	query := r.DB.Model(&models.OfficeModel{}).Where("is_active = ?", true)
	if len(keepIDs) > 0 {
		query = query.Where("id NOT IN ?", keepIDs)
	}

	result := query.Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("deactivating offices: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func officeToDomain(model *models.OfficeModel) *domain.Office {
	return &domain.Office{
		ID:             model.ID,
		ExternalRefID:  model.ExternalRefID,
		OrganizationID: model.OrganizationID,
		Name:           model.Name,
		Address:        model.Address,
		Lat:            model.Lat,
		Lng:            model.Lng,
		IsActive:       model.IsActive,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/domain"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/postgres/models"
)

type DefaultOrganizationRepository struct {
	DB *gorm.DB
}

func NewDefaultOrganizationRepository(db *gorm.DB) *DefaultOrganizationRepository {
	return &DefaultOrganizationRepository{DB: db}
}

func (r *DefaultOrganizationRepository) UpsertByExternalID(org *domain.Organization) (domain.UpsertResult, error) {
	var model models.OrganizationModel
	err := r.DB.Where("external_ref_id = ?", org.ExternalRefID).First(&model).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		model = models.OrganizationModel{
			ID:            uuid.New().String(),
			ExternalRefID: org.ExternalRefID,
			Name:          org.Name,
			Website:       org.Website,
			LogoURL:       org.LogoURL,
			Category:      org.Category.String(),
			IsActive:      true,
		}
		if err := r.DB.Create(&model).Error; err != nil {
			return 0, fmt.Errorf("creating organization: %w", err)
		}
		org.ID = model.ID
		org.IsActive = true
		return domain.UpsertCreated, nil
	}
	if err != nil {
		return 0, fmt.Errorf("looking up organization: %w", err)
	}

	updates := map[string]interface{}{
		"name":      org.Name,
		"website":   org.Website,
		"logo_url":  org.LogoURL,
		"category":  org.Category.String(),
		"is_active": true,
	}
	if err := r.DB.Model(&models.OrganizationModel{}).Where("id = ?", model.ID).Updates(updates).Error; err != nil {
		return 0, fmt.Errorf("updating organization: %w", err)
	}

	org.ID = model.ID
	org.IsActive = true
	return domain.UpsertUpdated, nil
}

func (r *DefaultOrganizationRepository) FindByExternalID(externalRefID string) (*domain.Organization, error) {
	var model models.OrganizationModel
	err := r.DB.Where("external_ref_id = ?", externalRefID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	return organizationToDomain(&model), nil
}

func (r *DefaultOrganizationRepository) FindByName(name string) (*domain.Organization, error) {
	var model models.OrganizationModel
	err := r.DB.Where("name = ?", name).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	return organizationToDomain(&model), nil
}

func (r *DefaultOrganizationRepository) GetActiveOrganizations() ([]*domain.Organization, error) {
	var orgModels []models.OrganizationModel
	if err := r.DB.Where("is_active = ?", true).Order("name").Find(&orgModels).Error; err != nil {
		return nil, err
	}

	orgs := make([]*domain.Organization, 0, len(orgModels))
	for i := range orgModels {
		orgs = append(orgs, organizationToDomain(&orgModels[i]))
	}
	return orgs, nil
}

func (r *DefaultOrganizationRepository) DeactivateWhereIDNotIn(keepIDs []string) (int64, error) {
	query := r.DB.Model(&models.OrganizationModel{}).Where("is_active = ?", true)
	if len(keepIDs) > 0 {
		query = query.Where("id NOT IN ?", keepIDs)
	}

	result := query.Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("deactivating organizations: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func organizationToDomain(model *models.OrganizationModel) *domain.Organization {
	return &domain.Organization{
		ID:            model.ID,
		ExternalRefID: model.ExternalRefID,
		Name:          model.Name,
		Website:       model.Website,
		LogoURL:       model.LogoURL,
		Category:      domain.ParseOrgCategory(model.Category),
		IsActive:      model.IsActive,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

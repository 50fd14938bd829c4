package models

import "time"

type OrganizationModel struct {
	ID            string `gorm:"primaryKey;type:uuid"`
	ExternalRefID string `gorm:"uniqueIndex;not null"`
	Name          string `gorm:"index"`
	Website       string
	LogoURL       string
	Category      string
	IsActive      bool `gorm:"default:true;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (OrganizationModel) TableName() string {
	return "organizations"
}

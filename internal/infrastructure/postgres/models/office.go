package models

import "time"

type OfficeModel struct {
	ID             string `gorm:"primaryKey;type:uuid"`
	ExternalRefID  string `gorm:"uniqueIndex;not null"`
	OrganizationID string `gorm:"type:uuid;index;not null"`
	Name           string
	Address        string
	Lat            float64
	Lng            float64
	IsActive       bool `gorm:"default:true;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (OfficeModel) TableName() string {
	return "offices"
}

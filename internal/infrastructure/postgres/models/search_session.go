package models

import "time"

type SearchSessionModel struct {
	ChatID       int64 `gorm:"primaryKey;autoIncrement:false"`
	Mode         string
	SellCurrency string
	GetCurrency  string
	OpenOnly     bool
	ExpiresAt    time.Time `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (SearchSessionModel) TableName() string {
	return "search_sessions"
}

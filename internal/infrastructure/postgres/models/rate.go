package models

import "time"

type RateModel struct {
	ID        string `gorm:"primaryKey;type:uuid"`
	OfficeID  string `gorm:"type:uuid;uniqueIndex:idx_rates_office_currency;not null"`
	Currency  string `gorm:"uniqueIndex:idx_rates_office_currency;not null"`
	BuyRate   float64
	SellRate  float64
	Timestamp time.Time `gorm:"index"`
}

func (RateModel) TableName() string {
	return "rates"
}

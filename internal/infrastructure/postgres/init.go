package postgres

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/config"
	"github.com/KonstantinVasilkov/georgia-currency-exchange-bot/internal/infrastructure/postgres/models"
)

func MustInitDB(cfg *config.ExchangeConfig) *gorm.DB {
	dsn := cfg.ExchangeDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	if err := db.AutoMigrate(
		&models.OrganizationModel{},
		&models.OfficeModel{},
		&models.RateModel{},
		&models.ScheduleModel{},
		&models.SearchSessionModel{},
	); err != nil {
		log.Fatalf("failed to run auto migration: %v\n", err.Error())
	}

	return db
}

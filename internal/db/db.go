package db

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/slotworks/salon-scheduler/internal/config"
	"github.com/slotworks/salon-scheduler/internal/logger"
	"github.com/slotworks/salon-scheduler/internal/models"
)

func NewDB(cfg *config.Config) *gorm.DB {
	log := logger.Get()

	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", zap.Error(err))
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.AutoMigrate(
		&models.Branch{},
		&models.Staff{},
		&models.Service{},
		&models.Client{},
		&models.WeeklySchedule{},
		&models.TimeOff{},
		&models.Appointment{},
		&models.StatusHistory{},
		&models.AuditLog{},
	); err != nil {
		log.Fatal("failed to migrate", zap.Error(err))
	}

	db.Exec(`
        UPDATE branches
        SET timezone = 'America/Mexico_City'
        WHERE timezone IS NULL OR timezone = ''
    `)

	return db
}

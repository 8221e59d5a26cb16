package database

import (
	"fmt"

	"election-service/internal/config"
	"election-service/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewPostgresConnection opens the gorm connection. TranslateError is on so
// a unique-constraint rejection surfaces as gorm.ErrDuplicatedKey, which
// the vote ledger relies on to detect lost races.
func NewPostgresConnection(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)

	return db, nil
}

// Migrate creates the schema. AutoMigrate picks up the composite unique
// indexes declared on the models, including the (election_id, voter_id)
// ledger constraint that single-handedly enforces one vote per voter per
// election.
func Migrate(db *gorm.DB) error {
	modelsToMigrate := []interface{}{
		&models.Election{},
		&models.Candidate{},
		&models.RosterEntry{},
		&models.Vote{},
	}

	for _, model := range modelsToMigrate {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model: %w", err)
		}
	}
	return nil
}

package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"terminal-queue-backend/config"
	"terminal-queue-backend/internal/model"
)

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// Migrate runs schema migrations plus the index DDL the auto-migrator cannot
// express. Exposed separately so tests can migrate an in-memory database the
// same way production does.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Route{},
		&model.Driver{},
		&model.Vehicle{},
		&model.ActiveEntry{},
		&model.HistoryEvent{},
		&model.PushSubscription{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	ddls := []string{
		// One active entry per vehicle, enforced atomically by the store. The
		// application-level re-check in OpenEntry is backed by this index.
		"CREATE UNIQUE INDEX IF NOT EXISTS uniq_active_entry_vehicle ON active_entries (vehicle_id) WHERE is_active",

		// Audit queries are by vehicle or by route over a time range.
		"CREATE INDEX IF NOT EXISTS idx_history_vehicle_occurred ON history_events (vehicle_id, occurred_at)",
		"CREATE INDEX IF NOT EXISTS idx_history_route_occurred ON history_events (route_id, occurred_at)",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}

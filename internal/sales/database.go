// Package sales persists the shop's quotes, orders and shipments.
package sales

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the database. Supported drivers are "postgres" and
// "sqlite". When tracing is set, queries are recorded as spans.
func Open(driver, dsn string, tracing bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite" {
		// a single connection keeps in-memory databases shared
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if tracing {
		if err := db.Use(otelgorm.NewPlugin(
			otelgorm.WithDBName(driver),
			otelgorm.WithoutQueryVariables(),
		)); err != nil {
			return nil, fmt.Errorf("failed to register tracing plugin: %w", err)
		}
	}

	return db, nil
}

// Migrate creates or upgrades the schema, including the pup_id column on
// both address tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Order{},
		&OrderItem{},
		&OrderAddress{},
		&QuoteAddress{},
		&Shipment{},
		&ShipmentItem{},
		&ShipmentTrack{},
		&StatusHistory{},
	); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

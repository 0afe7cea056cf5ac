package database

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"librarium/internal/config"
)

var ErrUnknownDriver = errors.New("unknown database driver")

type Database struct {
	DB *gorm.DB
}

// New opens a connection for the configured driver and runs pending
// migrations. Migrations are versioned and idempotent, so running them on
// every start is safe; deployments that migrate separately can use the
// migrate command and point the server at an already-current schema.
func New(cfg config.Database) (*Database, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Printf("Database initialized (%s)", cfg.Driver)

	return &Database{DB: db}, nil
}

// Open connects without migrating. Used by the migrate command.
func Open(cfg config.Database) (*Database, error) {
	db, err := open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Database{DB: db}, nil
}

func open(cfg config.Database) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Surfaces unique-index violations as gorm.ErrDuplicatedKey on both
		// drivers; the borrow ledger relies on this to classify races.
		TranslateError: true,
	}

	switch cfg.Driver {
	case config.DriverSQLite:
		return gorm.Open(sqlite.Open(cfg.Path), gormCfg)
	case config.DriverPostgres:
		return gorm.Open(postgres.Open(cfg.DSN), gormCfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

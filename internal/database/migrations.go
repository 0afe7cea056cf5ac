package database

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"librarium/internal/entities"
)

// Migrate applies all pending schema migrations in order. Applied migration
// IDs are recorded in the migrations table, so re-running is a no-op.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations())
	return m.Migrate()
}

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			// Initial schema: users, authors, books, borrow_records with
			// their foreign keys.
			ID: "20250901_initial_schema",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&entities.User{},
					&entities.Author{},
					&entities.Book{},
					&entities.BorrowRecord{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					"borrow_records", "books", "authors", "users",
				)
			},
		},
		{
			// At most one open borrow per (user, book). The partial unique
			// index backstops the in-transaction check when two borrows for
			// the same pair race. Same syntax on sqlite and postgres.
			ID: "20250901_open_borrow_unique_index",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec(
					`CREATE UNIQUE INDEX IF NOT EXISTS idx_borrow_records_open ` +
						`ON borrow_records (user_id, book_id) WHERE return_date IS NULL`,
				).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec(`DROP INDEX IF EXISTS idx_borrow_records_open`).Error
			},
		},
	}
}

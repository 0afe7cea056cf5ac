// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup per driver
//	├── migrations.go    # Versioned schema migrations
//	├── authors/         # Author reference data
//	├── books/           # Catalog CRUD and search
//	└── borrows/         # Borrow ledger (transactional core)
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.New(cfg.Database)
//	booksRepo := books.NewRepository(db.DB)
//	ledger := borrows.NewRepository(db.DB)
//
// The borrows package owns every mutation of a book's availability count;
// books.Repository only touches copies_available through admin edits and the
// delete guard, both inside transactions.
package database

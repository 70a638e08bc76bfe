// Package database provides the data access layer for the library.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── seed.go          # Idempotent first-run data
//	├── users/           # Accounts and profiles
//	├── books/           # Catalog and copy counters
//	├── borrows/         # Borrow records
//	├── classes/         # Classes, student membership, teacher oversight
//	└── audit/           # Audit trail
//
// # Using Sub-packages
//
// Each sub-package provides a Repository wrapping a *gorm.DB. Passing a
// transaction handle scopes the repository to that transaction:
//
//	db, err := database.NewDatabase("./classlib.db", "warn")
//
//	err = db.DB.Transaction(func(tx *gorm.DB) error {
//		if err := books.NewRepository(tx).TakeCopy(bookID); err != nil {
//			return err
//		}
//		return borrows.NewRepository(tx).Create(record)
//	})
//
// # Seeding
//
// Seed writes the initial classes, accounts and catalog only when the users
// table is empty, so it is safe to call on every start. Reset wipes library
// data first.
package database

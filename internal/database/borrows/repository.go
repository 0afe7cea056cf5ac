// Package borrows implements the borrow ledger.
//
// A borrow record is created open (nil return date) and closed exactly once;
// it is never deleted or reopened. Every operation that moves a book's
// copies_available runs in a single transaction with the record write, so the
// count always equals copies_total minus the open records for that book.
//
// Concurrency: on postgres the book row is locked FOR UPDATE for the length
// of the transaction; on sqlite the single-writer model serializes writers.
// Two further guards hold on any dialect: the availability decrement carries
// `copies_available > 0` in its WHERE clause (a lost race shows up as zero
// rows affected, not a negative count), and a partial unique index on
// (user_id, book_id) WHERE return_date IS NULL rejects the second of two
// racing borrows for the same pair.
package borrows

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"librarium/internal/entities"
)

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrBookUnavailable = errors.New("book not available")
	ErrAlreadyBorrowed = errors.New("book already borrowed by this user")

	// ErrRecordNotFound covers a nonexistent record, a record owned by
	// someone else and a record that is already closed. The three cases are
	// deliberately indistinguishable to the caller.
	ErrRecordNotFound = errors.New("borrow record not found")
)

// Repository is the borrow ledger over borrow_records and books.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new borrow ledger repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Borrow checks out a book for a user. It creates an open borrow record and
// decrements the book's availability as one atomic unit.
func (r *Repository) Borrow(userID, bookID uint) (*entities.BorrowRecord, error) {
	record := &entities.BorrowRecord{
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: time.Now(),
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := lockForUpdate(tx).First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		if book.CopiesAvailable <= 0 {
			return ErrBookUnavailable
		}

		var open int64
		err := tx.Model(&entities.BorrowRecord{}).
			Where("user_id = ? AND book_id = ? AND return_date IS NULL", userID, bookID).
			Count(&open).Error
		if err != nil {
			return err
		}
		if open > 0 {
			return ErrAlreadyBorrowed
		}

		// The WHERE guard makes the decrement a no-op if another
		// transaction took the last copy since the read above.
		res := tx.Model(&entities.Book{}).
			Where("id = ? AND copies_available > 0", bookID).
			UpdateColumn("copies_available", gorm.Expr("copies_available - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBookUnavailable
		}

		if err := tx.Create(record).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyBorrowed
			}
			return fmt.Errorf("failed to create borrow record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Return closes an open borrow record owned by the user and hands the copy
// back to the book's availability, atomically with the close.
func (r *Repository) Return(userID, recordID uint) (*entities.BorrowRecord, error) {
	var record entities.BorrowRecord

	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := lockForUpdate(tx).
			Where("id = ? AND user_id = ? AND return_date IS NULL", recordID, userID).
			First(&record).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}

		now := time.Now()
		res := tx.Model(&entities.BorrowRecord{}).
			Where("id = ? AND return_date IS NULL", record.ID).
			Update("return_date", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRecordNotFound
		}
		record.ReturnDate = &now

		return tx.Model(&entities.Book{}).
			Where("id = ?", record.BookID).
			UpdateColumn("copies_available", gorm.Expr("copies_available + 1")).Error
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// ListByUser retrieves the user's borrow records, newest borrow first, with
// book and author display data. Books are preloaded unscoped so that closed
// records keep their display data after the book leaves the catalog.
func (r *Repository) ListByUser(userID uint) ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := r.db.
		Preload("Book", unscoped).
		Preload("Book.Author").
		Where("user_id = ?", userID).
		Order("borrow_date DESC, id DESC").
		Find(&records).Error
	return records, err
}

// ListAll retrieves every borrow record across all users, newest first, with
// user and book display data.
func (r *Repository) ListAll() ([]entities.BorrowRecord, error) {
	var records []entities.BorrowRecord
	err := r.db.
		Preload("User").
		Preload("Book", unscoped).
		Preload("Book.Author").
		Order("borrow_date DESC, id DESC").
		Find(&records).Error
	return records, err
}

// CountOpenForBook reports the number of open records referencing a book.
func (r *Repository) CountOpenForBook(bookID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.BorrowRecord{}).
		Where("book_id = ? AND return_date IS NULL", bookID).
		Count(&count).Error
	return count, err
}

func unscoped(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}

// lockForUpdate adds a row lock on dialects that support it; see the package
// comment for why sqlite goes without.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// Package books provides database operations for the book catalog.
//
// All availability-changing writes here run inside transactions so that the
// borrow ledger's accounting invariants survive concurrent admin edits. The
// only other code that touches copies_available is the borrows package.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	results, err := repo.List("tolkien", 0)
package books

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"librarium/internal/entities"
)

var forUpdateClause = clause.Locking{Strength: "UPDATE"}

var (
	ErrBookNotFound   = errors.New("book not found")
	ErrAuthorNotFound = errors.New("author not found")
	ErrBookBorrowed   = errors.New("cannot delete borrowed book")
	ErrTooFewCopies   = errors.New("copies_total is below the number of open borrows")
	ErrNegativeCopies = errors.New("copies_total must not be negative")
)

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List retrieves books joined with their author, ordered by title.
// search matches title or author name case-insensitively; authorID of zero
// means no author filter. Both filters combine.
func (r *Repository) List(search string, authorID uint) ([]entities.Book, error) {
	var books []entities.Book
	q := r.db.
		Joins("JOIN authors ON authors.id = books.author_id").
		Preload("Author").
		Order("books.title ASC")

	if search != "" {
		pattern := "%" + search + "%"
		q = q.Where("LOWER(books.title) LIKE LOWER(?) OR LOWER(authors.name) LIKE LOWER(?)", pattern, pattern)
	}
	if authorID != 0 {
		q = q.Where("books.author_id = ?", authorID)
	}

	err := q.Find(&books).Error
	return books, err
}

// GetByID retrieves a book with its author.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Author").First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// Create inserts a new book. A fresh book starts with every copy available.
func (r *Repository) Create(book *entities.Book) error {
	if book.CopiesTotal < 0 {
		return ErrNegativeCopies
	}
	if err := r.authorExists(r.db, book.AuthorID); err != nil {
		return err
	}

	book.CopiesAvailable = book.CopiesTotal
	if err := r.db.Create(book).Error; err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	return r.db.Preload("Author").First(book, book.ID).Error
}

// BookUpdate carries the admin-editable fields of a book.
type BookUpdate struct {
	Title         string
	AuthorID      uint
	ISBN          string
	PublishedYear int
	CopiesTotal   int
}

// Update applies an admin edit. copies_available is recomputed from the new
// total minus the open borrows counted in the same transaction, so the
// ledger's accounting stays exact; shrinking the total below the open count
// is rejected.
func (r *Repository) Update(id uint, upd BookUpdate) (*entities.Book, error) {
	if upd.CopiesTotal < 0 {
		return nil, ErrNegativeCopies
	}

	var book entities.Book
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&book, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		if err := r.authorExists(tx, upd.AuthorID); err != nil {
			return err
		}

		open, err := countOpenBorrows(tx, id)
		if err != nil {
			return err
		}
		if int64(upd.CopiesTotal) < open {
			return ErrTooFewCopies
		}

		book.Title = upd.Title
		book.AuthorID = upd.AuthorID
		book.ISBN = upd.ISBN
		book.PublishedYear = upd.PublishedYear
		book.CopiesTotal = upd.CopiesTotal
		book.CopiesAvailable = upd.CopiesTotal - int(open)
		return tx.Save(&book).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(book.ID)
}

// Delete removes a book from the catalog. The open-borrow check and the
// delete commit or abort together, so a borrow can not slip in between.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := lockForUpdate(tx).First(&book, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}

		open, err := countOpenBorrows(tx, id)
		if err != nil {
			return err
		}
		if open > 0 {
			return ErrBookBorrowed
		}

		return tx.Delete(&book).Error
	})
}

func (r *Repository) authorExists(tx *gorm.DB, authorID uint) error {
	var count int64
	if err := tx.Model(&entities.Author{}).Where("id = ?", authorID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrAuthorNotFound
	}
	return nil
}

func countOpenBorrows(tx *gorm.DB, bookID uint) (int64, error) {
	var count int64
	err := tx.Model(&entities.BorrowRecord{}).
		Where("book_id = ? AND return_date IS NULL", bookID).
		Count(&count).Error
	return count, err
}

// lockForUpdate adds a row lock on dialects that support it. sqlite has no
// SELECT ... FOR UPDATE; its single-writer model serializes the transaction
// anyway, and the guarded UPDATEs keep the counts exact regardless.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(forUpdateClause)
	}
	return tx
}

// Package reconcile runs a periodic sweep verifying that every book's
// copies_available equals copies_total minus its open borrow records. The
// ledger's transactions keep this true on their own; the sweep exists to
// surface and repair drift introduced from outside the application (manual
// SQL, restores from partial backups).
package reconcile

import (
	"log"
	"sync"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"librarium/internal/entities"
)

// Reconciler manages the periodic availability sweep.
type Reconciler struct {
	db       *gorm.DB
	schedule string

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

// New creates a reconciler with a standard 5-field cron schedule.
func New(db *gorm.DB, schedule string) *Reconciler {
	return &Reconciler{
		db:       db,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the periodic sweep.
func (r *Reconciler) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning {
		return nil
	}

	_, err := r.cron.AddFunc(r.schedule, func() {
		repaired, err := r.RunOnce()
		if err != nil {
			log.Printf("Availability reconciliation failed: %v", err)
			return
		}
		if repaired > 0 {
			log.Printf("Availability reconciliation repaired %d book(s)", repaired)
		}
	})
	if err != nil {
		return err
	}

	r.cron.Start()
	r.isRunning = true
	log.Printf("Availability reconciliation scheduled: %s", r.schedule)
	return nil
}

// Stop halts the periodic sweep and waits for a running sweep to finish.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRunning {
		return
	}
	<-r.cron.Stop().Done()
	r.isRunning = false
}

// RunOnce sweeps the whole catalog and returns how many books were repaired.
// Each book is checked and fixed in its own transaction so the sweep never
// holds more than one row lock at a time.
func (r *Reconciler) RunOnce() (int, error) {
	var ids []uint
	if err := r.db.Model(&entities.Book{}).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}

	repaired := 0
	for _, id := range ids {
		fixed, err := r.reconcileBook(id)
		if err != nil {
			return repaired, err
		}
		if fixed {
			repaired++
		}
	}
	return repaired, nil
}

func (r *Reconciler) reconcileBook(bookID uint) (bool, error) {
	fixed := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			return err
		}

		var open int64
		err := tx.Model(&entities.BorrowRecord{}).
			Where("book_id = ? AND return_date IS NULL", bookID).
			Count(&open).Error
		if err != nil {
			return err
		}

		expected := book.CopiesTotal - int(open)
		if expected < 0 {
			// More open records than copies; the count can not go negative.
			expected = 0
		}
		if book.CopiesAvailable == expected {
			return nil
		}

		log.Printf("Book %d availability drift: have %d, expected %d", bookID, book.CopiesAvailable, expected)
		fixed = true
		return tx.Model(&entities.Book{}).
			Where("id = ?", bookID).
			UpdateColumn("copies_available", expected).Error
	})
	return fixed, err
}

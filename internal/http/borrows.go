package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"librarium/internal/auth"
	"librarium/internal/database/borrows"
	"librarium/internal/entities"
)

// Ledger is the borrow-ledger surface the controller needs.
type Ledger interface {
	Borrow(userID, bookID uint) (*entities.BorrowRecord, error)
	Return(userID, recordID uint) (*entities.BorrowRecord, error)
	ListByUser(userID uint) ([]entities.BorrowRecord, error)
	ListAll() ([]entities.BorrowRecord, error)
}

// BorrowMetrics records borrow and return outcomes.
type BorrowMetrics interface {
	RecordBorrow(outcome string)
	RecordReturn(outcome string)
}

// BorrowsController exposes the borrow ledger over HTTP.
type BorrowsController struct {
	ledger  Ledger
	metrics BorrowMetrics
}

func NewBorrowsController(ledger Ledger, metrics BorrowMetrics) *BorrowsController {
	return &BorrowsController{ledger: ledger, metrics: metrics}
}

func (controller *BorrowsController) recordBorrow(outcome string) {
	if controller.metrics != nil {
		controller.metrics.RecordBorrow(outcome)
	}
}

func (controller *BorrowsController) recordReturn(outcome string) {
	if controller.metrics != nil {
		controller.metrics.RecordReturn(outcome)
	}
}

// Borrow checks out a book for the authenticated user.
func (controller *BorrowsController) Borrow(c *gin.Context) {
	var req struct {
		BookID uint `json:"book_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.BookID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "book_id is required"})
		return
	}

	record, err := controller.ledger.Borrow(auth.GetUserID(c), req.BookID)
	if err != nil {
		controller.recordBorrow(borrowOutcome(err))
		respondError(c, err)
		return
	}

	controller.recordBorrow("ok")
	c.JSON(http.StatusCreated, record)
}

// Return closes one of the authenticated user's open borrow records.
func (controller *BorrowsController) Return(c *gin.Context) {
	recordID, ok := pathID(c, "record_id")
	if !ok {
		return
	}

	if _, err := controller.ledger.Return(auth.GetUserID(c), recordID); err != nil {
		controller.recordReturn(returnOutcome(err))
		respondError(c, err)
		return
	}

	controller.recordReturn("ok")
	c.JSON(http.StatusOK, gin.H{"message": "Book returned successfully"})
}

// ListMine returns the authenticated user's borrow history, newest first.
func (controller *BorrowsController) ListMine(c *gin.Context) {
	records, err := controller.ledger.ListByUser(auth.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// ListAll returns every user's borrow records. Admin only.
func (controller *BorrowsController) ListAll(c *gin.Context) {
	records, err := controller.ledger.ListAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func borrowOutcome(err error) string {
	switch {
	case errors.Is(err, borrows.ErrBookNotFound):
		return "not_found"
	case errors.Is(err, borrows.ErrBookUnavailable):
		return "unavailable"
	case errors.Is(err, borrows.ErrAlreadyBorrowed):
		return "duplicate"
	default:
		return "error"
	}
}

func returnOutcome(err error) string {
	if errors.Is(err, borrows.ErrRecordNotFound) {
		return "not_found"
	}
	return "error"
}

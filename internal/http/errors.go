package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"librarium/internal/auth"
	"librarium/internal/database/authors"
	"librarium/internal/database/books"
	"librarium/internal/database/borrows"
)

// respondError translates domain errors to HTTP responses in one place so
// that no handler invents its own mapping. Unknown errors are logged
// server-side and surface as a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case isNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case isValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrTooManyAttempts):
		c.Header("Retry-After", "60")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	default:
		log.Printf("Internal error handling %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, books.ErrBookNotFound) ||
		errors.Is(err, borrows.ErrBookNotFound) ||
		errors.Is(err, borrows.ErrRecordNotFound)
}

func isValidation(err error) bool {
	validation := []error{
		borrows.ErrBookUnavailable,
		borrows.ErrAlreadyBorrowed,
		books.ErrBookBorrowed,
		books.ErrTooFewCopies,
		books.ErrNegativeCopies,
		books.ErrAuthorNotFound,
		authors.ErrAuthorNotFound,
		auth.ErrFullNameRequired,
		auth.ErrEmailRequired,
		auth.ErrPasswordRequired,
		auth.ErrEmailInvalid,
		auth.ErrEmailTaken,
		auth.ErrInvalidCredentials,
		auth.ErrPasswordTooShort,
		auth.ErrPasswordTooLong,
	}
	for _, v := range validation {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"librarium/internal/database/books"
	"librarium/internal/entities"
)

// BooksController serves the public catalog listing and the admin CRUD.
type BooksController struct {
	repo *books.Repository
}

func NewBooksController(repo *books.Repository) *BooksController {
	return &BooksController{repo: repo}
}

// List returns the catalog joined with authors. Optional query parameters:
// search (matches title or author name) and author (author id).
func (controller *BooksController) List(c *gin.Context) {
	var authorID uint
	if raw := c.Query("author"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		authorID = uint(id)
	}

	results, err := controller.repo.List(c.Query("search"), authorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

type bookRequest struct {
	Title         string `json:"title"`
	AuthorID      uint   `json:"author_id"`
	ISBN          string `json:"isbn"`
	PublishedYear int    `json:"published_year"`
	Copies        int    `json:"copies"`
}

func (req bookRequest) validate() (string, bool) {
	if req.Title == "" {
		return "title is required", false
	}
	if req.AuthorID == 0 {
		return "author_id is required", false
	}
	return "", true
}

// Create adds a book to the catalog. Admin only.
func (controller *BooksController) Create(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg, ok := req.validate(); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	book := &entities.Book{
		Title:         req.Title,
		AuthorID:      req.AuthorID,
		ISBN:          req.ISBN,
		PublishedYear: req.PublishedYear,
		CopiesTotal:   req.Copies,
	}
	if err := controller.repo.Create(book); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, book)
}

// Update edits a book. Admin only.
func (controller *BooksController) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg, valid := req.validate(); !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	book, err := controller.repo.Update(id, books.BookUpdate{
		Title:         req.Title,
		AuthorID:      req.AuthorID,
		ISBN:          req.ISBN,
		PublishedYear: req.PublishedYear,
		CopiesTotal:   req.Copies,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, book)
}

// Delete removes a book with no open borrows. Admin only.
func (controller *BooksController) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := controller.repo.Delete(id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Book deleted successfully"})
}

// pathID parses a numeric path parameter, responding 400 on garbage.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

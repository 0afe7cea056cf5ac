package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"librarium/internal/database/authors"
	"librarium/internal/entities"
)

// AuthorsController serves the public author listing and admin creation.
type AuthorsController struct {
	repo *authors.Repository
}

func NewAuthorsController(repo *authors.Repository) *AuthorsController {
	return &AuthorsController{repo: repo}
}

// List returns all authors ordered by name.
func (controller *AuthorsController) List(c *gin.Context) {
	results, err := controller.repo.GetAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// Create adds an author. Admin only.
func (controller *AuthorsController) Create(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Nationality string `json:"nationality"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	author := &entities.Author{Name: req.Name, Nationality: req.Nationality}
	if err := controller.repo.Create(author); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, author)
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"librarium/internal/auth"
)

// AccountsController handles registration and login.
type AccountsController struct {
	authService *auth.Service
}

func NewAccountsController(authService *auth.Service) *AccountsController {
	return &AccountsController{authService: authService}
}

// Register creates a new member account. The response never includes the
// credential hash.
func (controller *AccountsController) Register(c *gin.Context) {
	var req struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := controller.authService.Register(req.FullName, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login verifies credentials and returns a bearer token plus the user.
func (controller *AccountsController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := controller.authService.Login(req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

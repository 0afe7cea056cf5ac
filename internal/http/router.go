package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"librarium/internal/entities"
	"librarium/internal/metrics"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.GinMiddleware())
	}

	accounts := NewAccountsController(cfg.AuthService)
	booksController := NewBooksController(cfg.Books)
	authorsController := NewAuthorsController(cfg.Authors)
	var borrowMetrics BorrowMetrics
	if cfg.Metrics != nil {
		borrowMetrics = cfg.Metrics
	}
	borrowsController := NewBorrowsController(cfg.Borrows, borrowMetrics)
	health := NewHealthController(cfg.Database, cfg.Version)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	if cfg.MetricsGatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(cfg.MetricsGatherer)))
	}

	// Public API
	router.POST("/api/register", accounts.Register)
	router.POST("/api/login", accounts.Login)
	router.GET("/api/books", booksController.List)
	router.GET("/api/authors", authorsController.List)

	// Endpoints for authenticated users
	member := router.Group("/api")
	member.Use(cfg.AuthMiddleware.RequireAuth())
	member.POST("/borrow", borrowsController.Borrow)
	member.POST("/return/:record_id", borrowsController.Return)
	member.GET("/my-books", borrowsController.ListMine)

	// Catalog management and ledger oversight
	admin := router.Group("/api/admin")
	admin.Use(cfg.AuthMiddleware.RequireAuth())
	admin.Use(cfg.AuthMiddleware.RequireRole(entities.UserRoleAdmin))
	admin.POST("/books", booksController.Create)
	admin.PUT("/books/:id", booksController.Update)
	admin.DELETE("/books/:id", booksController.Delete)
	admin.POST("/authors", authorsController.Create)
	admin.GET("/borrow-records", borrowsController.ListAll)

	return router
}

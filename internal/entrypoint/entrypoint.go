package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"librarium/internal/auth"
	"librarium/internal/config"
	"librarium/internal/database"
	"librarium/internal/database/authors"
	"librarium/internal/database/books"
	"librarium/internal/database/borrows"
	"librarium/internal/entities"
	http_controllers "librarium/internal/http"
	"librarium/internal/metrics"
	"librarium/internal/reconcile"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	// Callback runs after the listener drains so no request races cleanup.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Librarium v%s", version)

	if cfg.Auth.JWTSecret == "" {
		log.Fatalf("JWT_SECRET is not set; refusing to start with unsigned tokens")
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	authService := auth.NewService(db.DB, cfg.Auth)
	authMiddleware := auth.NewMiddleware(cfg.Auth.JWTSecret)

	authorsRepo := authors.NewRepository(db.DB)
	booksRepo := books.NewRepository(db.DB)
	borrowsRepo := borrows.NewRepository(db.DB)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)
	if open, err := countOpenBorrows(db); err == nil {
		collector.SetOpenBorrows(open)
	}

	var reconciler *reconcile.Reconciler
	if cfg.Reconcile.Enabled {
		reconciler = reconcile.New(db.DB, cfg.Reconcile.Schedule)
		if err := reconciler.Start(); err != nil {
			log.Fatalf("Failed to start availability reconciliation: %v", err)
		}
	}

	routerCfg := http_controllers.RouterConfig{
		Database:        db,
		AuthService:     authService,
		AuthMiddleware:  authMiddleware,
		Authors:         authorsRepo,
		Books:           booksRepo,
		Borrows:         borrowsRepo,
		Metrics:         collector,
		MetricsGatherer: registry,
		Version:         version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if reconciler != nil {
			reconciler.Stop()
		}
		authService.Close()
	}

	Serve(router, cfg, onShutdown)
}

func countOpenBorrows(db *database.Database) (int64, error) {
	var open int64
	err := db.DB.Model(&entities.BorrowRecord{}).
		Where("return_date IS NULL").
		Count(&open).Error
	return open, err
}

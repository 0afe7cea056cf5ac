package http

import (
	"github.com/prometheus/client_golang/prometheus"

	"librarium/internal/auth"
	"librarium/internal/database"
	"librarium/internal/database/authors"
	"librarium/internal/database/books"
	"librarium/internal/database/borrows"
	"librarium/internal/metrics"
)

// RouterConfig contains all dependencies needed to create the HTTP
// router. This replaces a long parameter list in NewRouter.
type RouterConfig struct {
	Database *database.Database

	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware

	Authors *authors.Repository
	Books   *books.Repository
	Borrows *borrows.Repository

	// Metrics is optional; when nil the /metrics endpoint and the
	// request instrumentation are skipped.
	Metrics         *metrics.Collector
	MetricsGatherer prometheus.Gatherer

	Version string
}

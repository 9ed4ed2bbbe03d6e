// Package ui exposes the analysis pipeline as a JSON HTTP API.
package ui

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ablab/app"
	"ablab/domain/analysis"
	"ablab/internal"
	"ablab/ports"
)

// App represents the HTTP application
type App struct {
	router   *chi.Mux
	logger   *internal.Logger
	repo     ports.ReportRepository
	defaults analysis.Params

	// session is single-flight; the mutex serializes uploads and runs
	mu      sync.Mutex
	session *app.Session
}

// Config holds HTTP application configuration
type Config struct {
	Port     string
	Defaults analysis.Params
}

// NewApp creates a new HTTP application
func NewApp(config Config, repo ports.ReportRepository, logger *internal.Logger) *App {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	a := &App{
		router:   chi.NewRouter(),
		logger:   logger,
		repo:     repo,
		defaults: config.Defaults,
		session:  app.NewSession(logger),
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// Router exposes the configured mux, mainly for tests
func (a *App) Router() http.Handler {
	return a.router
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Post("/api/datasets", a.handleDatasetUpload)
	a.router.Get("/api/datasets/columns", a.handleColumnTypes)
	a.router.Post("/api/analyses", a.handleAnalyze)
	a.router.Get("/api/reports", a.handleListReports)
	a.router.Get("/api/reports/{id}", a.handleGetReport)
}

// Start starts the HTTP server
func (a *App) Start(port string) error {
	a.logger.Info("starting analysis server on :%s", port)
	return http.ListenAndServe(":"+port, a.router)
}

package server

import (
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"empleoformal/internal/config"
	"empleoformal/internal/logger"
	"empleoformal/internal/models"
	"empleoformal/internal/reports"
	"empleoformal/internal/storage"
)

// Server represents the dashboard HTTP server
type Server struct {
	Config    *config.Config
	Dashboard *reports.DashboardBuilder
	Images    *reports.ImageRenderer
	// Storage serves previous exports under /files/; nil disables the route
	Storage storage.StorageClient

	dataset atomic.Pointer[models.Dataset]
	log     *logger.Logger
}

// NewServer creates a new server instance serving ds
func NewServer(cfg *config.Config, ds *models.Dataset) (*Server, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is required")
	}

	dashboard, err := reports.NewDashboardBuilder(reports.DashboardOptionsFromConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dashboard: %w", err)
	}

	s := &Server{
		Config:    cfg,
		Dashboard: dashboard,
		Images:    reports.NewImageRenderer(),
		log:       logger.Component("server"),
	}
	s.dataset.Store(ds)
	return s, nil
}

// Dataset returns the dataset currently served
func (s *Server) Dataset() *models.Dataset {
	return s.dataset.Load()
}

// SetDataset atomically replaces the served dataset.
// Requests already running keep the dataset they started with.
func (s *Server) SetDataset(ds *models.Dataset) {
	if ds == nil {
		return
	}
	s.dataset.Store(ds)
	s.log.Info("dataset replaced", logger.Fields{"source": ds.Source(), "rows": ds.Len()})
}

// SetupRoutes configures HTTP routes for the server
func (s *Server) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.HandleHealth)
	mux.HandleFunc("/api/figure", s.HandleFigure)
	mux.HandleFunc("/api/chart", s.HandleChart)
	mux.HandleFunc("/api/departments", s.HandleDepartments)
	mux.HandleFunc("/export/", s.HandleExport)
	mux.HandleFunc("/files/", s.HandleFileProxy)

	// Handle root path last (catch-all)
	mux.HandleFunc("/", s.HandleRoot)

	return mux
}

// Handler returns the routes wrapped with recovery, request id and logging middleware
func (s *Server) Handler() http.Handler {
	return s.withMiddleware(s.SetupRoutes())
}

// HTTPServer builds the http.Server listening on the configured address
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.Config.ListenAddr(),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Close cleans up server resources
func (s *Server) Close() error {
	if s.Storage != nil {
		return s.Storage.Close()
	}
	return nil
}

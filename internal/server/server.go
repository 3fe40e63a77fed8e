package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"spirits-dashboard/internal/errors"
	"spirits-dashboard/internal/handlers"
	"spirits-dashboard/internal/models"
	"spirits-dashboard/internal/services"
	"spirits-dashboard/internal/ui/templates"
)

const (
	pageTitle     = "Nairobi Wine & Spirits Dashboard"
	renderTimeout = 10 * time.Second
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	now         handlers.Clock
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

// NewServer wires every route. now is the clock all handlers compute against.
func NewServer(analytics *services.Analytics, logger *slog.Logger, now handlers.Clock) *Server {
	if now == nil {
		now = time.Now
	}
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		now:         now,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger, now),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger, now),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", s.handleDashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/filters", s.apiHandlers.HandleFilters)
	s.mux.HandleFunc("GET /api/dashboard", s.apiHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /api/kpis", s.apiHandlers.HandleKPIs)
	s.mux.HandleFunc("GET /api/daily-trend", s.apiHandlers.HandleDailyTrend)
	s.mux.HandleFunc("GET /api/top-products", s.apiHandlers.HandleTopProducts)
	s.mux.HandleFunc("GET /api/categories", s.apiHandlers.HandleCategories)
	s.mux.HandleFunc("GET /api/hourly", s.apiHandlers.HandleHourly)
	s.mux.HandleFunc("GET /api/employees", s.apiHandlers.HandleEmployees)
	s.mux.HandleFunc("GET /api/inventory/alerts", s.apiHandlers.HandleInventoryAlerts)
	s.mux.HandleFunc("GET /api/inventory/status", s.apiHandlers.HandleInventoryStatus)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/dashboard", s.sseHandlers.HandleDashboard)
	s.mux.HandleFunc("GET /sse/inventory", s.sseHandlers.HandleInventory)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	q := r.URL.Query()
	sel, err := s.analytics.ParseSelection(q.Get("period"), q.Get("category"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	d, err := s.analytics.Dashboard(sel, s.now())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.IsDataUnavailable(err) {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}

	page := templates.DashboardPage{
		Title:      pageTitle,
		Periods:    models.TimePeriods,
		Categories: s.analytics.Categories(),
		Dashboard:  *d,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := templates.Dashboard(page).Render(ctx, w); err != nil {
		s.logger.Error("render dashboard page", "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

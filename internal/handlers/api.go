package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"spirits-dashboard/internal/errors"
	"spirits-dashboard/internal/models"
	"spirits-dashboard/internal/observability"
	"spirits-dashboard/internal/services"
)

// Clock supplies the reference time for every computation.
type Clock func() time.Time

var cacheHeaders = map[string]string{
	"Cache-Control": "private, max-age=60",
}

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
	now       Clock
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger, now Clock) *APIHandlers {
	if now == nil {
		now = time.Now
	}
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
		now:       now,
	}
}

type filtersResponse struct {
	Periods         []models.TimePeriod `json:"periods"`
	Categories      []string            `json:"categories"`
	DefaultPeriod   models.TimePeriod   `json:"default_period"`
	DefaultCategory string              `json:"default_category"`
}

type inventoryAlertsResponse struct {
	Alerts      models.InventoryAlerts `json:"alerts"`
	GeneratedAt time.Time              `json:"generated_at"`
}

// dashboard validates the selection in the query string and computes the
// bundle, writing the error response itself when that fails.
func (h *APIHandlers) dashboard(w http.ResponseWriter, r *http.Request) (*models.Dashboard, bool) {
	requestID := observability.GetRequestID(r.Context())

	q := r.URL.Query()
	sel, err := h.analytics.ParseSelection(q.Get("period"), q.Get("category"))
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return nil, false
	}

	_, span := observability.StartSpan(r.Context(), "analytics.dashboard")
	span.SetTag("period", string(sel.Period))
	span.SetTag("category", sel.Category)
	defer span.Finish()

	d, err := h.analytics.Dashboard(sel, h.now())
	if err != nil {
		span.SetError(err)
		errors.WriteError(w, h.logger, err, requestID)
		return nil, false
	}
	return d, true
}

func (h *APIHandlers) HandleFilters(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, filtersResponse{
		Periods:         models.TimePeriods,
		Categories:      h.analytics.Categories(),
		DefaultPeriod:   models.DefaultPeriod,
		DefaultCategory: models.AllCategories,
	}, cacheHeaders)
}

func (h *APIHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if d, ok := h.dashboard(w, r); ok {
		errors.WriteSuccessWithHeaders(w, d, cacheHeaders)
	}
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	if d, ok := h.dashboard(w, r); ok {
		errors.WriteSuccessWithHeaders(w, d.Metrics, cacheHeaders)
	}
}

func (h *APIHandlers) HandleDailyTrend(w http.ResponseWriter, r *http.Request) {
	if d, ok := h.dashboard(w, r); ok {
		errors.WriteSuccessWithHeaders(w, d.DailyTrend, cacheHeaders)
	}
}

func (h *APIHandlers) HandleTopProducts(w http.ResponseWriter, r *http.Request) {
	if d, ok := h.dashboard(w, r); ok {
		errors.WriteSuccessWithHeaders(w, d.TopProducts, cacheHeaders)
	}
}

func (h *APIHandlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	if d, ok := h.dashboard(w, r); ok {
		errors.WriteSuccessWithHeaders(w, d.Categories, cacheHeaders)
	}
}

func (h *APIHandlers) HandleHourly(w http.ResponseWriter, r *http.Request) {
	if d, ok := h.dashboard(w, r); ok {
		errors.WriteSuccessWithHeaders(w, d.Hourly, cacheHeaders)
	}
}

func (h *APIHandlers) HandleEmployees(w http.ResponseWriter, r *http.Request) {
	if d, ok := h.dashboard(w, r); ok {
		errors.WriteSuccessWithHeaders(w, d.Employees, cacheHeaders)
	}
}

func (h *APIHandlers) HandleInventoryAlerts(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	alerts, _, err := h.analytics.Inventory(now)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}
	errors.WriteSuccessWithHeaders(w, inventoryAlertsResponse{Alerts: alerts, GeneratedAt: now}, cacheHeaders)
}

func (h *APIHandlers) HandleInventoryStatus(w http.ResponseWriter, r *http.Request) {
	_, levels, err := h.analytics.Inventory(h.now())
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}
	errors.WriteSuccessWithHeaders(w, levels, cacheHeaders)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	stats := h.analytics.Stats()

	healthData := map[string]any{
		"status":      "healthy",
		"data_loaded": stats["loaded"],
		"timestamp":   h.now().Format(time.RFC3339),
		"version":     "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}

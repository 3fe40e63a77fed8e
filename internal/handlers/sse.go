package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"spirits-dashboard/internal/errors"
	"spirits-dashboard/internal/models"
	"spirits-dashboard/internal/observability"
	"spirits-dashboard/internal/services"
	"spirits-dashboard/internal/ui/templates"
)

// dashboardSignals mirrors the selector state held by the page.
type dashboardSignals struct {
	Period   string `json:"period"`
	Category string `json:"category"`
}

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
	now       Clock
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger, now Clock) *SSEHandlers {
	if now == nil {
		now = time.Now
	}
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
		now:       now,
	}
}

// selection reads the datastar signals, falling back to plain query
// parameters for clients that do not send any.
func (h *SSEHandlers) selection(r *http.Request) (models.Selection, error) {
	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		return models.Selection{}, errors.ValidationWrap(err, "malformed signals")
	}

	q := r.URL.Query()
	if signals.Period == "" {
		signals.Period = q.Get("period")
	}
	if signals.Category == "" {
		signals.Category = q.Get("category")
	}
	return h.analytics.ParseSelection(signals.Period, signals.Category)
}

func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	sel, err := h.selection(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	d, err := h.analytics.Dashboard(sel, h.now())
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	signals, err := json.Marshal(dashboardSignals{
		Period:   string(d.Selection.Period),
		Category: d.Selection.Category,
	})
	if err != nil {
		h.logger.Error("marshal dashboard signals", "error", err, "request_id", requestID)
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	sse := datastar.NewSSE(w, r)

	if err := sse.PatchSignals(signals); err != nil {
		h.logger.Warn("patch dashboard signals", "error", err, "request_id", requestID)
		return
	}
	fragments := []struct {
		name      string
		component templ.Component
	}{
		{"kpi cards", templates.KPICards(d.Metrics)},
		{"daily trend", templates.DailyTrendTable(d.DailyTrend)},
		{"top products", templates.TopProductsTable(d.TopProducts)},
		{"category sales", templates.CategoryTable(d.Categories)},
		{"hourly sales", templates.HourlyTable(d.Hourly)},
		{"employee sales", templates.EmployeeTable(d.Employees)},
		{"inventory alerts", templates.InventoryAlerts(d.Alerts)},
		{"inventory status", templates.InventoryStatusTable(d.InventoryStatus)},
	}
	for _, f := range fragments {
		if err := sse.PatchElementTempl(f.component); err != nil {
			h.logger.Warn("patch "+f.name, "error", err, "request_id", requestID)
			return
		}
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleInventory(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	alerts, levels, err := h.analytics.Inventory(h.now())
	if err != nil {
		errors.WriteError(w, h.logger, err, requestID)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElementTempl(templates.InventoryAlerts(alerts)); err != nil {
		h.logger.Warn("patch inventory alerts", "error", err, "request_id", requestID)
		return
	}
	if err := sse.PatchElementTempl(templates.InventoryStatusTable(levels)); err != nil {
		h.logger.Warn("patch inventory status", "error", err, "request_id", requestID)
		return
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

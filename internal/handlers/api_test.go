package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"spirits-dashboard/internal/services"
)

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Success bool            `json:"success"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func get(t *testing.T, handler http.HandlerFunc, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	handler(w, req)

	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return w, env
}

func TestNewAPIHandlers(t *testing.T) {
	analytics := createTestAnalytics()
	logger := testLogger()
	handlers := NewAPIHandlers(analytics, logger, nil)

	if handlers.analytics != analytics || handlers.logger != logger {
		t.Error("NewAPIHandlers() should set analytics and logger")
	}
	if handlers.now == nil {
		t.Error("NewAPIHandlers() should default the clock")
	}
}

func TestAPIHandlers_HandleDashboard(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger(), testClock)

	w, env := get(t, handlers.HandleDashboard, "/api/dashboard?period="+url.QueryEscape("Last 7 Days"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Cache-Control"); got != "private, max-age=60" {
		t.Errorf("Cache-Control = %q", got)
	}

	var d struct {
		Selection struct {
			Period   string `json:"period"`
			Category string `json:"category"`
		} `json:"selection"`
		Metrics struct {
			TransactionCount int  `json:"transaction_count"`
			HasComparison    bool `json:"has_comparison"`
			BestSeller       *struct {
				ProductName string `json:"product_name"`
			} `json:"best_seller"`
		} `json:"metrics"`
		TopProducts []struct {
			ProductName string `json:"product_name"`
		} `json:"top_products"`
	}
	if err := json.Unmarshal(env.Data, &d); err != nil {
		t.Fatalf("decode dashboard: %v", err)
	}

	if d.Selection.Period != "Last 7 Days" || d.Selection.Category != "All Categories" {
		t.Errorf("selection = %+v", d.Selection)
	}
	if d.Metrics.TransactionCount != 2 || !d.Metrics.HasComparison {
		t.Errorf("metrics = %+v", d.Metrics)
	}
	if d.Metrics.BestSeller == nil || d.Metrics.BestSeller.ProductName != "Tusker" {
		t.Errorf("best seller = %+v", d.Metrics.BestSeller)
	}
	if len(d.TopProducts) != 2 || d.TopProducts[0].ProductName != "Whisky" {
		t.Errorf("top products = %+v", d.TopProducts)
	}
}

func TestAPIHandlers_Errors(t *testing.T) {
	loaded := NewAPIHandlers(createTestAnalytics(), testLogger(), testClock)
	empty := NewAPIHandlers(services.NewAnalytics(testLogger(), services.DefaultAlertPolicy()), testLogger(), testClock)

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		target     string
		wantStatus int
		wantCode   string
	}{
		{"unknown period", loaded.HandleKPIs, "/api/kpis?period=Yesterday", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown category", loaded.HandleTopProducts, "/api/top-products?category=Cider", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"dashboard not loaded", empty.HandleDashboard, "/api/dashboard", http.StatusServiceUnavailable, "DATA_UNAVAILABLE"},
		{"inventory not loaded", empty.HandleInventoryAlerts, "/api/inventory/alerts", http.StatusServiceUnavailable, "DATA_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := get(t, tt.handler, tt.target)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if env.Success || env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("unexpected envelope: %+v", env)
			}
		})
	}
}

func TestAPIHandlers_HandleFilters(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger(), testClock)

	_, env := get(t, handlers.HandleFilters, "/api/filters")

	var filters struct {
		Periods       []string `json:"periods"`
		Categories    []string `json:"categories"`
		DefaultPeriod string   `json:"default_period"`
	}
	if err := json.Unmarshal(env.Data, &filters); err != nil {
		t.Fatalf("decode filters: %v", err)
	}

	wantCategories := []string{"All Categories", "Beer", "Spirits", "Wine"}
	if len(filters.Categories) != len(wantCategories) {
		t.Fatalf("categories = %v, want %v", filters.Categories, wantCategories)
	}
	for i := range wantCategories {
		if filters.Categories[i] != wantCategories[i] {
			t.Errorf("categories[%d] = %q, want %q", i, filters.Categories[i], wantCategories[i])
		}
	}
	if len(filters.Periods) != 4 || filters.DefaultPeriod != "Last 30 Days" {
		t.Errorf("periods = %v, default = %q", filters.Periods, filters.DefaultPeriod)
	}
}

func TestAPIHandlers_CategoryFilter(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger(), testClock)

	_, env := get(t, handlers.HandleEmployees, "/api/employees?category=Spirits")

	var employees []struct {
		Employee string `json:"employee"`
	}
	if err := json.Unmarshal(env.Data, &employees); err != nil {
		t.Fatalf("decode employees: %v", err)
	}
	if len(employees) != 2 || employees[0].Employee != "Amina" {
		t.Errorf("employees = %+v", employees)
	}
}

func TestAPIHandlers_Inventory(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger(), testClock)

	_, env := get(t, handlers.HandleInventoryAlerts, "/api/inventory/alerts")
	var resp struct {
		Alerts struct {
			LowStock []struct {
				ProductName string `json:"product_name"`
			} `json:"low_stock"`
			ExpiringSoon []struct {
				ProductName  string `json:"product_name"`
				DaysToExpiry int    `json:"days_to_expiry"`
			} `json:"expiring_soon"`
			AllHealthy bool `json:"all_healthy"`
		} `json:"alerts"`
	}
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("decode alerts: %v", err)
	}
	if len(resp.Alerts.LowStock) != 1 || resp.Alerts.LowStock[0].ProductName != "Whisky" {
		t.Errorf("low stock = %+v", resp.Alerts.LowStock)
	}
	if len(resp.Alerts.ExpiringSoon) != 1 || resp.Alerts.ExpiringSoon[0].DaysToExpiry != 12 {
		t.Errorf("expiring soon = %+v", resp.Alerts.ExpiringSoon)
	}
	if resp.Alerts.AllHealthy {
		t.Error("AllHealthy should be false")
	}

	_, env = get(t, handlers.HandleInventoryStatus, "/api/inventory/status")
	var levels []struct {
		ProductName string `json:"product_name"`
	}
	if err := json.Unmarshal(env.Data, &levels); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if len(levels) != 3 || levels[0].ProductName != "Tusker" || levels[2].ProductName != "Whisky" {
		t.Errorf("inventory status = %+v", levels)
	}
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger(), testClock)

	w, env := get(t, handlers.HandleHealth, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var health map[string]any
	if err := json.Unmarshal(env.Data, &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health["status"] != "healthy" || health["data_loaded"] != true {
		t.Errorf("health = %v", health)
	}
	if health["timestamp"] != "2024-06-30T18:00:00Z" {
		t.Errorf("timestamp = %v", health["timestamp"])
	}
}

func TestAPIHandlers_HandleStats(t *testing.T) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger(), testClock)

	_, env := get(t, handlers.HandleStats, "/admin/stats")

	var stats map[string]any
	if err := json.Unmarshal(env.Data, &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats["sales_records"] != float64(4) || stats["categories"] != float64(3) {
		t.Errorf("stats = %v", stats)
	}
}

func BenchmarkAPIHandlers_HandleDashboard(b *testing.B) {
	handlers := NewAPIHandlers(createTestAnalytics(), testLogger(), testClock)
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)

	for b.Loop() {
		w := httptest.NewRecorder()
		handlers.HandleDashboard(w, req)
	}
}

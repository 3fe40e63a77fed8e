package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spirits-dashboard/internal/config"
	"spirits-dashboard/internal/models"
	"spirits-dashboard/internal/services"
)

var testNow = time.Date(2024, 6, 30, 18, 0, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer() *Server {
	a := services.NewAnalytics(testLogger(), services.DefaultAlertPolicy())
	a.SetTables(&models.Tables{
		Sales: []models.SaleRecord{{
			Date:        testNow.Add(-24 * time.Hour),
			DateOnly:    time.Date(2024, 6, 29, 0, 0, 0, 0, time.UTC),
			ProductName: "Gin",
			Category:    "Spirits",
			Employee:    "Amina",
			Hour:        18,
			Quantity:    1,
			TotalPrice:  decimal.NewFromInt(800),
			Profit:      decimal.NewFromInt(200),
		}},
		Inventory: []models.InventoryRecord{{ProductName: "Gin", CurrentStock: 10, ReorderLevel: 5, DaysToExpiry: 200}},
		LoadedAt:  testNow,
	})
	return NewServer(a, testLogger(), func() time.Time { return testNow })
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer()

	tests := []struct {
		path           string
		expectedStatus int
		contentType    string
	}{
		{"/", http.StatusOK, "text/html"},
		{"/?period=" + url.QueryEscape("All Time"), http.StatusOK, "text/html"},
		{"/?period=Someday", http.StatusBadRequest, "text/plain"},
		{"/health", http.StatusOK, "application/json"},
		{"/admin/stats", http.StatusOK, "application/json"},
		{"/api/filters", http.StatusOK, "application/json"},
		{"/api/dashboard", http.StatusOK, "application/json"},
		{"/api/kpis", http.StatusOK, "application/json"},
		{"/api/daily-trend", http.StatusOK, "application/json"},
		{"/api/top-products", http.StatusOK, "application/json"},
		{"/api/categories", http.StatusOK, "application/json"},
		{"/api/hourly", http.StatusOK, "application/json"},
		{"/api/employees", http.StatusOK, "application/json"},
		{"/api/inventory/alerts", http.StatusOK, "application/json"},
		{"/api/inventory/status", http.StatusOK, "application/json"},
		{"/api/kpis?category=Cider", http.StatusBadRequest, "application/json"},
		{"/sse/dashboard", http.StatusOK, "text/event-stream"},
		{"/sse/inventory", http.StatusOK, "text/event-stream"},
		{"/nonexistent", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			srv.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.expectedStatus)
			}
			if tt.contentType != "" && !strings.HasPrefix(w.Header().Get("Content-Type"), tt.contentType) {
				t.Errorf("Content-Type = %q, want prefix %q", w.Header().Get("Content-Type"), tt.contentType)
			}
		})
	}
}

func TestServer_MethodNotAllowed(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestServer_KPIs(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/kpis?category=Spirits", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var resp struct {
		Data struct {
			TransactionCount int `json:"transaction_count"`
		} `json:"data"`
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Data.TransactionCount != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGracefulServer_ShutdownOnCancel(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{ShutdownTimeout: 5 * time.Second}}
	httpServer := &http.Server{Handler: newTestServer()}
	gs := NewGracefulServer(httpServer, testLogger(), cfg)

	var order []string
	gs.RegisterShutdownHook("database", func(ctx context.Context) error {
		order = append(order, "database")
		return nil
	})
	gs.RegisterShutdownHook("cache", func(ctx context.Context) error {
		order = append(order, "cache")
		return nil
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gs.Serve(ctx, ln) }()

	resp, err := http.Get(fmt.Sprintf("http://%s/health", ln.Addr()))
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	if strings.Join(order, ",") != "cache,database" {
		t.Errorf("hooks ran in order %v, want reverse registration", order)
	}
}

func TestGracefulServer_HookError(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{ShutdownTimeout: time.Second}}
	gs := NewGracefulServer(&http.Server{}, testLogger(), cfg)
	gs.RegisterShutdownHook("redis", func(ctx context.Context) error {
		return fmt.Errorf("connection reset")
	})

	err := gs.shutdown(context.Background())
	if err == nil || !strings.Contains(err.Error(), "redis") {
		t.Errorf("shutdown() error = %v", err)
	}
}

func TestServer_Page(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/?category=Spirits", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	body := w.Body.String()
	for _, content := range []string{
		`<option value="Spirits" selected>`,
		"<td>2024-06-29</td><td>KES 800</td><td>KES 200</td>",
		"<td>Gin</td><td>KES 800</td><td>1 units</td>",
		"<td>18:00</td><td>KES 1K</td>",
		"<td>Gin</td><td>10</td><td>5</td>",
	} {
		if !strings.Contains(body, content) {
			t.Errorf("expected page to contain %q", content)
		}
	}
}

func TestServer_PageNotLoaded(t *testing.T) {
	srv := NewServer(services.NewAnalytics(testLogger(), services.DefaultAlertPolicy()), testLogger(), nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

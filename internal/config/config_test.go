package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Data.Source != SourceFile {
		t.Errorf("Data.Source = %q, want %q", cfg.Data.Source, SourceFile)
	}
	if cfg.Data.SalesFile != "sales_data.csv" || cfg.Data.InventoryFile != "inventory_data.csv" {
		t.Errorf("unexpected default data files: %+v", cfg.Data)
	}
	if cfg.Alerts.ExpiryWindowDays != 30 {
		t.Errorf("Alerts.ExpiryWindowDays = %d, want 30", cfg.Alerts.ExpiryWindowDays)
	}
	if cfg.Address() != "localhost:8501" {
		t.Errorf("Address() = %q", cfg.Address())
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SALES_FILE", "/data/sales.xlsx")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("CACHE_TTL", "2h")
	t.Setenv("ALERT_EXPIRY_DAYS", "14")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Data.SalesFile != "/data/sales.xlsx" {
		t.Errorf("Data.SalesFile = %q", cfg.Data.SalesFile)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.TTL != 2*time.Hour {
		t.Errorf("unexpected cache config: %+v", cfg.Cache)
	}
	if cfg.Alerts.ExpiryWindowDays != 14 {
		t.Errorf("Alerts.ExpiryWindowDays = %d, want 14", cfg.Alerts.ExpiryWindowDays)
	}
	if len(cfg.Security.AllowedOrigins) != 2 || cfg.Security.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("AllowedOrigins = %v", cfg.Security.AllowedOrigins)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port out of range", map[string]string{"SERVER_PORT": "70000"}},
		{"unknown source", map[string]string{"DATA_SOURCE": "s3"}},
		{"postgres without url", map[string]string{"DATA_SOURCE": "postgres"}},
		{"unknown cache", map[string]string{"CACHE_BACKEND": "memcached"}},
		{"negative expiry window", map[string]string{"ALERT_EXPIRY_DAYS": "-1"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}

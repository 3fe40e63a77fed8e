package datasource

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spirits-dashboard/internal/config"
)

func TestBuildRedisOptions(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.CacheConfig
		wantAddr string
		wantDB   int
		wantErr  bool
	}{
		{"defaults", config.CacheConfig{}, "127.0.0.1:6379", 0, false},
		{"addr", config.CacheConfig{RedisAddr: "cache:6380", RedisDB: 2}, "cache:6380", 2, false},
		{"url wins", config.CacheConfig{RedisURL: "redis://redis.internal:6379/3", RedisAddr: "ignored:1"}, "redis.internal:6379", 3, false},
		{"bad url", config.CacheConfig{RedisURL: "http://nope"}, "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := buildRedisOptions(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("buildRedisOptions() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("buildRedisOptions() error = %v", err)
			}
			if opts.Addr != tt.wantAddr || opts.DB != tt.wantDB {
				t.Errorf("Addr = %q, DB = %d", opts.Addr, opts.DB)
			}
		})
	}
}

func TestSaleRow_Record(t *testing.T) {
	soldAt := time.Date(2024, 6, 29, 21, 15, 0, 0, time.UTC)
	row := saleRow{
		SoldAt:      soldAt,
		ProductName: "Rum",
		Category:    "Spirits",
		Employee:    "Amina",
		Quantity:    1,
		TotalPrice:  decimal.RequireFromString("1500"),
		Profit:      decimal.RequireFromString("400"),
	}

	rec := row.record()
	if rec.Hour != 21 {
		t.Errorf("Hour = %d, want 21", rec.Hour)
	}
	if want := time.Date(2024, 6, 29, 0, 0, 0, 0, time.UTC); !rec.DateOnly.Equal(want) {
		t.Errorf("DateOnly = %v, want %v", rec.DateOnly, want)
	}

	row.Hour = sql.NullInt64{Int64: 20, Valid: true}
	if rec := row.record(); rec.Hour != 20 {
		t.Errorf("stored hour should win, got %d", rec.Hour)
	}
}

func TestInventoryRow_Record(t *testing.T) {
	now := time.Date(2024, 6, 30, 18, 0, 0, 0, time.UTC)

	withExpiry := inventoryRow{
		ProductName:  "Gin",
		ExpiryDate:   sql.NullTime{Time: time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC), Valid: true},
		DaysToExpiry: sql.NullInt64{Int64: 99, Valid: true},
	}
	if got := withExpiry.record(now).DaysToExpiry; got != 5 {
		t.Errorf("DaysToExpiry = %d, want 5", got)
	}

	storedOnly := inventoryRow{ProductName: "Gin", DaysToExpiry: sql.NullInt64{Int64: 12, Valid: true}}
	if got := storedOnly.record(now).DaysToExpiry; got != 12 {
		t.Errorf("DaysToExpiry = %d, want 12", got)
	}
}

package services

import (
	"testing"
	"time"

	"spirits-dashboard/internal/models"
)

func fixtureInventory() []models.InventoryRecord {
	return []models.InventoryRecord{
		{ProductName: "Gin", CurrentStock: 5, ReorderLevel: 10, DaysToExpiry: 45},
		{ProductName: "Red Wine", CurrentStock: 40, ReorderLevel: 15, DaysToExpiry: 30},
		{ProductName: "Tusker", CurrentStock: 12, ReorderLevel: 12, DaysToExpiry: 31},
		{ProductName: "Cream Liqueur", CurrentStock: 3, ReorderLevel: 8, DaysToExpiry: 7},
		{ProductName: "Vodka", CurrentStock: 80, ReorderLevel: 20, DaysToExpiry: 365},
	}
}

func names(records []models.InventoryRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ProductName
	}
	return out
}

func TestEvaluateInventory(t *testing.T) {
	alerts := EvaluateInventory(fixtureInventory(), DefaultAlertPolicy())

	low := names(alerts.LowStock)
	if len(low) != 2 || low[0] != "Gin" || low[1] != "Cream Liqueur" {
		t.Errorf("LowStock = %v, want [Gin Cream Liqueur]", low)
	}

	expiring := names(alerts.ExpiringSoon)
	if len(expiring) != 2 || expiring[0] != "Red Wine" || expiring[1] != "Cream Liqueur" {
		t.Errorf("ExpiringSoon = %v, want [Red Wine Cream Liqueur]", expiring)
	}

	if alerts.LowStockHealthy || alerts.ExpiringHealthy || alerts.AllHealthy {
		t.Error("healthy flags should be false when alerts exist")
	}
}

func TestEvaluateInventory_LowStockNotExpiring(t *testing.T) {
	alerts := EvaluateInventory([]models.InventoryRecord{
		{ProductName: "Gin", CurrentStock: 5, ReorderLevel: 10, DaysToExpiry: 45},
	}, DefaultAlertPolicy())

	if len(alerts.LowStock) != 1 || alerts.LowStock[0].ProductName != "Gin" {
		t.Errorf("LowStock = %v, want [Gin]", names(alerts.LowStock))
	}
	if len(alerts.ExpiringSoon) != 0 || !alerts.ExpiringHealthy {
		t.Errorf("ExpiringSoon = %v, want empty and healthy", names(alerts.ExpiringSoon))
	}
	if alerts.AllHealthy {
		t.Error("AllHealthy should be false")
	}
}

func TestEvaluateInventory_Healthy(t *testing.T) {
	alerts := EvaluateInventory([]models.InventoryRecord{
		{ProductName: "Vodka", CurrentStock: 80, ReorderLevel: 20, DaysToExpiry: 365},
	}, DefaultAlertPolicy())

	if !alerts.LowStockHealthy || !alerts.ExpiringHealthy || !alerts.AllHealthy {
		t.Errorf("expected all healthy flags, got %+v", alerts)
	}
	if alerts.LowStock == nil || alerts.ExpiringSoon == nil {
		t.Error("alert sets should be empty slices, not nil")
	}
}

func TestEvaluateInventory_MonotonicThresholds(t *testing.T) {
	base := fixtureInventory()

	prevLow := -1
	for bump := 0; bump <= 60; bump += 10 {
		raised := make([]models.InventoryRecord, len(base))
		for i, r := range base {
			r.ReorderLevel += bump
			raised[i] = r
		}
		n := len(EvaluateInventory(raised, DefaultAlertPolicy()).LowStock)
		if n < prevLow {
			t.Errorf("raising reorder levels by %d shrank low-stock set from %d to %d", bump, prevLow, n)
		}
		prevLow = n
	}

	prevExpiring := -1
	for window := 0; window <= 400; window += 50 {
		n := len(EvaluateInventory(base, AlertPolicy{ExpiryWindowDays: window}).ExpiringSoon)
		if n < prevExpiring {
			t.Errorf("widening expiry window to %d shrank expiring set from %d to %d", window, prevExpiring, n)
		}
		prevExpiring = n
	}
}

func TestRankInventory(t *testing.T) {
	levels := RankInventory(fixtureInventory(), InventoryStatusLimit)

	want := []string{"Vodka", "Red Wine", "Tusker", "Gin", "Cream Liqueur"}
	if len(levels) != len(want) {
		t.Fatalf("len(levels) = %d, want %d", len(levels), len(want))
	}
	for i, name := range want {
		if levels[i].ProductName != name {
			t.Errorf("levels[%d] = %s, want %s", i, levels[i].ProductName, name)
		}
	}
	if levels[0].ReorderLevel != 20 {
		t.Errorf("levels[0].ReorderLevel = %d, want 20", levels[0].ReorderLevel)
	}
}

func TestRankInventory_Limit(t *testing.T) {
	records := make([]models.InventoryRecord, 20)
	for i := range records {
		records[i] = models.InventoryRecord{ProductName: string(rune('a' + i)), CurrentStock: i}
	}

	levels := RankInventory(records, InventoryStatusLimit)
	if len(levels) != 15 {
		t.Fatalf("len(levels) = %d, want 15", len(levels))
	}
	if levels[0].CurrentStock != 19 || levels[14].CurrentStock != 5 {
		t.Errorf("unexpected ranking bounds: first %d, last %d", levels[0].CurrentStock, levels[14].CurrentStock)
	}
}

func TestRebaseExpiry(t *testing.T) {
	records := []models.InventoryRecord{
		{ProductName: "Gin", ExpiryDate: time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), DaysToExpiry: 99},
		{ProductName: "Ice", DaysToExpiry: 4},
	}

	rebased := RebaseExpiry(records, testNow)
	if rebased[0].DaysToExpiry != 10 {
		t.Errorf("Gin DaysToExpiry = %d, want 10", rebased[0].DaysToExpiry)
	}
	if rebased[1].DaysToExpiry != 4 {
		t.Errorf("records without expiry date should keep their value, got %d", rebased[1].DaysToExpiry)
	}
	if records[0].DaysToExpiry != 99 {
		t.Error("RebaseExpiry() must not mutate its input")
	}
}

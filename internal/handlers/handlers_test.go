package handlers

import (
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"spirits-dashboard/internal/models"
	"spirits-dashboard/internal/services"
)

var testNow = time.Date(2024, 6, 30, 18, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func sale(daysAgo int, product, category, employee string, qty float64, price, profit int64) models.SaleRecord {
	at := testNow.Add(-time.Duration(daysAgo) * 24 * time.Hour)
	y, m, d := at.Date()
	return models.SaleRecord{
		Date:        at,
		DateOnly:    time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		ProductName: product,
		Category:    category,
		Employee:    employee,
		Hour:        at.Hour(),
		Quantity:    qty,
		TotalPrice:  decimal.NewFromInt(price),
		Profit:      decimal.NewFromInt(profit),
	}
}

func createTestAnalytics() *services.Analytics {
	a := services.NewAnalytics(testLogger(), services.DefaultAlertPolicy())
	a.SetTables(&models.Tables{
		Sales: []models.SaleRecord{
			sale(1, "Whisky", "Spirits", "Amina", 2, 3000, 900),
			sale(3, "Tusker", "Beer", "Brian", 6, 1200, 300),
			sale(10, "Red Wine", "Wine", "Amina", 1, 2500, 1000),
			sale(12, "Whisky", "Spirits", "Brian", 1, 1500, 450),
		},
		Inventory: []models.InventoryRecord{
			{ProductName: "Whisky", CurrentStock: 4, ReorderLevel: 10, ExpiryDate: testNow.AddDate(1, 0, 0)},
			{ProductName: "Tusker", CurrentStock: 80, ReorderLevel: 20, ExpiryDate: testNow.AddDate(0, 0, 12)},
			{ProductName: "Red Wine", CurrentStock: 30, ReorderLevel: 5, ExpiryDate: testNow.AddDate(2, 0, 0)},
		},
		LoadedAt: testNow,
	})
	return a
}

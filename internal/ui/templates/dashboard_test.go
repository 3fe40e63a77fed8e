package templates

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"spirits-dashboard/internal/models"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf strings.Builder
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	return buf.String()
}

func testPage() DashboardPage {
	day := time.Date(2024, 6, 29, 0, 0, 0, 0, time.UTC)
	return DashboardPage{
		Title:      "Nairobi Wine & Spirits Dashboard",
		Periods:    models.TimePeriods,
		Categories: []string{models.AllCategories, "Beer", "Spirits"},
		Dashboard: models.Dashboard{
			Selection: models.Selection{Period: models.PeriodLast7Days, Category: "Spirits"},
			Metrics: models.Metrics{
				TotalRevenue:     decimal.NewFromInt(3000),
				TransactionCount: 1,
			},
			DailyTrend:  []models.DailyPoint{{Date: day, Revenue: decimal.NewFromInt(3000), Profit: decimal.NewFromInt(900)}},
			TopProducts: []models.ProductSales{{ProductName: "Whisky", Revenue: decimal.NewFromInt(3000), Quantity: 2}},
			Hourly:      []models.HourlySales{{Hour: 14, Revenue: decimal.NewFromInt(12400)}},
			Employees:   []models.EmployeeSales{{Employee: "Amina", Revenue: decimal.NewFromInt(3000), Profit: decimal.NewFromInt(900)}},
			Alerts:      models.InventoryAlerts{LowStockHealthy: true, ExpiringHealthy: true, AllHealthy: true},
			InventoryStatus: []models.InventoryLevel{
				{ProductName: "Whisky", CurrentStock: 4, ReorderLevel: 10},
			},
		},
	}
}

func TestDashboard_Render(t *testing.T) {
	html := renderString(t, Dashboard(testPage()))

	expectedContent := []string{
		"<title>Nairobi Wine &amp; Spirits Dashboard</title>",
		`<option value="Last 7 Days" selected>`,
		`<option value="Last 30 Days">`,
		`<option value="Spirits" selected>`,
		`<option value="Beer">`,
		`data-signals="{&#34;period&#34;:&#34;Last 7 Days&#34;,&#34;category&#34;:&#34;Spirits&#34;}"`,
		`data-on:change="@get('/sse/dashboard')"`,
		`<div id="kpi-cards" class="kpi-grid">`,
		"KES 3,000",
		`<table id="daily-trend">`,
		"<td>2024-06-29</td>",
		`<table id="top-products">`,
		"<td>2 units</td>",
		`<table id="category-sales">`,
		"No data for the selected filters",
		`<table id="hourly-sales">`,
		"<td>14:00</td><td>KES 12K</td>",
		`<table id="employee-sales">`,
		"<td>Amina</td><td>KES 3K</td><td>KES 1K</td>",
		`<div id="inventory-alerts">`,
		"All Inventory Levels Are Healthy!",
		`<table id="inventory-status">`,
		"<td>Whisky</td><td>4</td><td>10</td>",
	}
	for _, content := range expectedContent {
		if !strings.Contains(html, content) {
			t.Errorf("expected page to contain %q", content)
		}
	}
	if strings.Contains(html, "innerHTML") {
		t.Error("page should not build rows in the browser")
	}
}

func TestDashboard_EscapesRowData(t *testing.T) {
	page := testPage()
	page.Categories = append(page.Categories, `"><script>alert(1)</script>`)
	page.Dashboard.TopProducts = []models.ProductSales{{ProductName: "<img src=x onerror=alert(1)>", Revenue: decimal.NewFromInt(1)}}
	page.Dashboard.Employees = []models.EmployeeSales{{Employee: "<b>Amina</b>"}}

	html := renderString(t, Dashboard(page))

	for _, raw := range []string{"<img src=x", "<script>alert", "<b>Amina"} {
		if strings.Contains(html, raw) {
			t.Errorf("page should not contain unescaped %q", raw)
		}
	}
	for _, escaped := range []string{
		"<td>&lt;img src=x onerror=alert(1)&gt;</td>",
		"<td>&lt;b&gt;Amina&lt;/b&gt;</td>",
		`<option value="&#34;&gt;&lt;script&gt;alert(1)&lt;/script&gt;">`,
	} {
		if !strings.Contains(html, escaped) {
			t.Errorf("expected page to contain %q", escaped)
		}
	}
}

func TestKPICards(t *testing.T) {
	html := renderString(t, KPICards(models.Metrics{
		TotalRevenue:     decimal.NewFromInt(4200),
		TransactionCount: 2,
		BestSeller:       &models.BestSeller{ProductName: "Tusker <Lager>", Quantity: 6},
	}))

	expectedContent := []string{
		`<div id="kpi-cards"`,
		`<div id="kpi-revenue" class="kpi-card">`,
		"KES 4,200",
		"Tusker &lt;Lager&gt;",
		"6 units",
	}
	for _, content := range expectedContent {
		if !strings.Contains(html, content) {
			t.Errorf("expected HTML to contain %q", content)
		}
	}
}

func TestInventoryAlerts(t *testing.T) {
	tests := []struct {
		name    string
		alerts  models.InventoryAlerts
		want    []string
		notWant []string
	}{
		{
			name:    "all healthy",
			alerts:  models.InventoryAlerts{LowStockHealthy: true, ExpiringHealthy: true, AllHealthy: true},
			want:    []string{"All Inventory Levels Are Healthy!"},
			notWant: []string{"Low Stock Items"},
		},
		{
			name: "low stock only",
			alerts: models.InventoryAlerts{
				LowStock:        []models.InventoryRecord{{ProductName: "Whisky", CurrentStock: 4, ReorderLevel: 10}},
				ExpiringHealthy: true,
			},
			want:    []string{"Low Stock Items", "Whisky", "Current: 4 units | Reorder Level: 10 units", "No Items Expiring Soon!"},
			notWant: []string{"All Inventory Levels Are Healthy!"},
		},
		{
			name: "expiring only",
			alerts: models.InventoryAlerts{
				ExpiringSoon:    []models.InventoryRecord{{ProductName: "Tusker", CurrentStock: 80, DaysToExpiry: 12}},
				LowStockHealthy: true,
			},
			want: []string{"All Stock Levels Healthy!", "Expires in 12 days | Stock: 80 units"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := renderString(t, InventoryAlerts(tt.alerts))
			for _, s := range tt.want {
				if !strings.Contains(html, s) {
					t.Errorf("expected HTML to contain %q", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(html, s) {
					t.Errorf("HTML should not contain %q", s)
				}
			}
		})
	}
}

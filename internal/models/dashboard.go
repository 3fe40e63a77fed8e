package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BestSeller struct {
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity"`
}

type Metrics struct {
	TotalRevenue            decimal.Decimal `json:"total_revenue"`
	TotalProfit             decimal.Decimal `json:"total_profit"`
	ProfitMarginPct         decimal.Decimal `json:"profit_margin_pct"`
	TransactionCount        int             `json:"transaction_count"`
	AverageTransactionValue decimal.Decimal `json:"average_transaction_value"`
	PreviousRevenue         decimal.Decimal `json:"previous_revenue"`
	RevenueChangePct        decimal.Decimal `json:"revenue_change_pct"`
	HasComparison           bool            `json:"has_comparison"`
	BestSeller              *BestSeller     `json:"best_seller"`
}

type DailyPoint struct {
	Date    time.Time       `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}

type ProductSales struct {
	ProductName string          `json:"product_name"`
	Revenue     decimal.Decimal `json:"revenue"`
	Quantity    float64         `json:"quantity"`
}

type CategorySales struct {
	Category string          `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type HourlySales struct {
	Hour    int             `json:"hour"`
	Revenue decimal.Decimal `json:"revenue"`
}

type EmployeeSales struct {
	Employee string          `json:"employee"`
	Revenue  decimal.Decimal `json:"revenue"`
	Profit   decimal.Decimal `json:"profit"`
}

// Dashboard is everything the page renders for one selection.
type Dashboard struct {
	Selection       Selection        `json:"selection"`
	Window          Window           `json:"window"`
	Metrics         Metrics          `json:"metrics"`
	DailyTrend      []DailyPoint     `json:"daily_trend"`
	TopProducts     []ProductSales   `json:"top_products"`
	Categories      []CategorySales  `json:"categories"`
	Hourly          []HourlySales    `json:"hourly"`
	Employees       []EmployeeSales  `json:"employees"`
	Alerts          InventoryAlerts  `json:"alerts"`
	InventoryStatus []InventoryLevel `json:"inventory_status"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

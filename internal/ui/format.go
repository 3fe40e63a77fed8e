// Package ui turns computed dashboard values into display strings shared by
// the page, the SSE fragments and the report CLI.
package ui

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"spirits-dashboard/internal/models"
)

const (
	Currency           = "KES"
	bestSellerMaxChars = 20
)

// Card is one KPI tile: a headline value and a smaller delta line.
type Card struct {
	ID    string
	Title string
	Value string
	Delta string
}

// KPICards renders the four headline metrics in page order.
func KPICards(m models.Metrics) []Card {
	revenueDelta := ""
	if m.HasComparison {
		revenueDelta = FormatPercent(m.RevenueChangePct, true)
	}

	avg := "0"
	if m.TransactionCount > 0 {
		avg = FormatMoney(m.AverageTransactionValue) + " avg"
	}

	best := Card{ID: "kpi-best-seller", Title: "Best Seller", Value: "N/A", Delta: "0 units"}
	if m.BestSeller != nil {
		best.Value = Truncate(m.BestSeller.ProductName, bestSellerMaxChars)
		best.Delta = FormatUnits(m.BestSeller.Quantity)
	}

	return []Card{
		{ID: "kpi-revenue", Title: "Total Revenue", Value: FormatMoney(m.TotalRevenue), Delta: revenueDelta},
		{ID: "kpi-profit", Title: "Total Profit", Value: FormatMoney(m.TotalProfit), Delta: FormatPercent(m.ProfitMarginPct, false) + " margin"},
		{ID: "kpi-transactions", Title: "Transactions", Value: groupThousands(strconv.Itoa(m.TransactionCount)), Delta: avg},
		best,
	}
}

// FormatMoney rounds to whole shillings, e.g. "KES 1,234,568".
func FormatMoney(d decimal.Decimal) string {
	return Currency + " " + FormatWhole(d)
}

// FormatThousands renders chart labels such as "KES 12K".
func FormatThousands(d decimal.Decimal) string {
	return Currency + " " + d.Div(decimal.NewFromInt(1000)).Round(0).String() + "K"
}

func FormatWhole(d decimal.Decimal) string {
	s := d.Round(0).String()
	if neg := strings.HasPrefix(s, "-"); neg {
		return "-" + groupThousands(s[1:])
	}
	return groupThousands(s)
}

// FormatPercent renders one decimal place; signed adds a leading "+" for
// non-negative values.
func FormatPercent(d decimal.Decimal, signed bool) string {
	s := d.StringFixed(1) + "%"
	if signed && !d.IsNegative() {
		return "+" + s
	}
	return s
}

func FormatUnits(quantity float64) string {
	return FormatWhole(decimal.NewFromFloat(quantity)) + " units"
}

// Truncate shortens s to max runes followed by "...".
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

package services

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"spirits-dashboard/internal/models"
)

const TopProductsLimit = 10

var hundred = decimal.NewFromInt(100)

// Summarize computes the scalar KPIs for the current set. previous is only
// consulted when hasComparison is set.
func Summarize(current, previous []models.SaleRecord, hasComparison bool) models.Metrics {
	m := models.Metrics{
		TransactionCount: len(current),
		HasComparison:    hasComparison,
	}

	for _, r := range current {
		m.TotalRevenue = m.TotalRevenue.Add(r.TotalPrice)
		m.TotalProfit = m.TotalProfit.Add(r.Profit)
	}

	if m.TotalRevenue.IsPositive() {
		m.ProfitMarginPct = m.TotalProfit.Div(m.TotalRevenue).Mul(hundred)
	}

	if m.TransactionCount > 0 {
		m.AverageTransactionValue = m.TotalRevenue.Div(decimal.NewFromInt(int64(m.TransactionCount)))
	}

	if hasComparison {
		m.PreviousRevenue = sumRevenue(previous)
		if m.PreviousRevenue.IsPositive() {
			m.RevenueChangePct = m.TotalRevenue.Sub(m.PreviousRevenue).Div(m.PreviousRevenue).Mul(hundred)
		}
	}

	m.BestSeller = BestSeller(current)
	return m
}

func sumRevenue(records []models.SaleRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.TotalPrice)
	}
	return total
}

// BestSeller returns the product with the largest summed quantity. Ties go to
// the product seen first. It returns nil for an empty set.
func BestSeller(records []models.SaleRecord) *models.BestSeller {
	groups := newOrderedGroups[string, models.BestSeller]()
	for _, r := range records {
		g := groups.at(r.ProductName, func() models.BestSeller {
			return models.BestSeller{ProductName: r.ProductName}
		})
		g.Quantity += r.Quantity
	}

	var best *models.BestSeller
	for _, g := range groups.values() {
		if best == nil || g.Quantity > best.Quantity {
			best = &g
		}
	}
	return best
}

// DailyTrend sums revenue and profit per calendar date, oldest first.
func DailyTrend(records []models.SaleRecord) []models.DailyPoint {
	groups := newOrderedGroups[string, models.DailyPoint]()
	for _, r := range records {
		date := calendarDate(r)
		g := groups.at(date.Format(time.DateOnly), func() models.DailyPoint {
			return models.DailyPoint{Date: date}
		})
		g.Revenue = g.Revenue.Add(r.TotalPrice)
		g.Profit = g.Profit.Add(r.Profit)
	}

	points := groups.values()
	slices.SortStableFunc(points, func(a, b models.DailyPoint) int {
		return a.Date.Compare(b.Date)
	})
	return points
}

func calendarDate(r models.SaleRecord) time.Time {
	t := r.DateOnly
	if t.IsZero() {
		t = r.Date
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// TopProducts ranks products by revenue, keeping first-seen order on ties.
func TopProducts(records []models.SaleRecord, limit int) []models.ProductSales {
	groups := newOrderedGroups[string, models.ProductSales]()
	for _, r := range records {
		g := groups.at(r.ProductName, func() models.ProductSales {
			return models.ProductSales{ProductName: r.ProductName}
		})
		g.Revenue = g.Revenue.Add(r.TotalPrice)
		g.Quantity += r.Quantity
	}

	products := groups.values()
	slices.SortStableFunc(products, func(a, b models.ProductSales) int {
		return b.Revenue.Cmp(a.Revenue)
	})
	if limit >= 0 && len(products) > limit {
		products = products[:limit]
	}
	return products
}

// CategoryBreakdown sums revenue per category, highest first.
func CategoryBreakdown(records []models.SaleRecord) []models.CategorySales {
	groups := newOrderedGroups[string, models.CategorySales]()
	for _, r := range records {
		g := groups.at(r.Category, func() models.CategorySales {
			return models.CategorySales{Category: r.Category}
		})
		g.Revenue = g.Revenue.Add(r.TotalPrice)
	}

	categories := groups.values()
	slices.SortStableFunc(categories, func(a, b models.CategorySales) int {
		return b.Revenue.Cmp(a.Revenue)
	})
	return categories
}

// HourlyDistribution sums revenue per hour of day. Only hours that occur are
// returned, in ascending order.
func HourlyDistribution(records []models.SaleRecord) []models.HourlySales {
	groups := newOrderedGroups[int, models.HourlySales]()
	for _, r := range records {
		g := groups.at(r.Hour, func() models.HourlySales {
			return models.HourlySales{Hour: r.Hour}
		})
		g.Revenue = g.Revenue.Add(r.TotalPrice)
	}

	hours := groups.values()
	slices.SortStableFunc(hours, func(a, b models.HourlySales) int {
		return a.Hour - b.Hour
	})
	return hours
}

// EmployeePerformance sums revenue and profit per employee, highest revenue first.
func EmployeePerformance(records []models.SaleRecord) []models.EmployeeSales {
	groups := newOrderedGroups[string, models.EmployeeSales]()
	for _, r := range records {
		g := groups.at(r.Employee, func() models.EmployeeSales {
			return models.EmployeeSales{Employee: r.Employee}
		})
		g.Revenue = g.Revenue.Add(r.TotalPrice)
		g.Profit = g.Profit.Add(r.Profit)
	}

	employees := groups.values()
	slices.SortStableFunc(employees, func(a, b models.EmployeeSales) int {
		return b.Revenue.Cmp(a.Revenue)
	})
	return employees
}

package services

import (
	"time"

	"spirits-dashboard/internal/models"
)

const day = 24 * time.Hour

type Predicate func(models.SaleRecord) bool

// Filter holds the predicates for one selection. Current and Comparison
// select the time windows; Category is applied to both.
type Filter struct {
	Window     models.Window
	Category   string
	Current    Predicate
	Comparison Predicate
	InCategory Predicate
}

// PeriodDays returns the window length for a period, or false for All Time.
func PeriodDays(period models.TimePeriod) (int, bool) {
	switch period {
	case models.PeriodLast7Days:
		return 7, true
	case models.PeriodLast30Days:
		return 30, true
	case models.PeriodLast90Days:
		return 90, true
	default:
		return 0, false
	}
}

// Resolve turns the operator's selectors into predicates. now is the
// reference instant for both windows.
func Resolve(period models.TimePeriod, category string, now time.Time) Filter {
	f := Filter{
		Window:     models.Window{Period: period},
		Category:   category,
		Current:    func(models.SaleRecord) bool { return true },
		Comparison: func(models.SaleRecord) bool { return false },
		InCategory: func(models.SaleRecord) bool { return true },
	}

	if days, ok := PeriodDays(period); ok {
		length := time.Duration(days) * day
		cutoff := now.Add(-length)
		prevStart := now.Add(-2 * length)

		f.Window.Current = models.DateRange{Start: cutoff, End: now, Bounded: true}
		f.Window.Comparison = models.DateRange{Start: prevStart, End: cutoff, Bounded: true}
		f.Current = func(r models.SaleRecord) bool {
			return !r.Date.Before(cutoff)
		}
		f.Comparison = func(r models.SaleRecord) bool {
			return !r.Date.Before(prevStart) && r.Date.Before(cutoff)
		}
	}

	if category != "" && category != models.AllCategories {
		f.InCategory = func(r models.SaleRecord) bool {
			return r.Category == category
		}
	}

	return f
}

// Apply splits sales into the current and comparison sets in one pass.
// Both keep the input row order.
func (f Filter) Apply(sales []models.SaleRecord) (current, previous []models.SaleRecord) {
	current = make([]models.SaleRecord, 0, len(sales))
	for _, r := range sales {
		if !f.InCategory(r) {
			continue
		}
		switch {
		case f.Current(r):
			current = append(current, r)
		case f.Comparison(r):
			previous = append(previous, r)
		}
	}
	return current, previous
}

package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type SaleRecord struct {
	Date        time.Time       `json:"date" db:"sold_at"`
	DateOnly    time.Time       `json:"date_only" db:"sale_date"`
	ProductName string          `json:"product_name" db:"product_name"`
	Category    string          `json:"category" db:"category"`
	Employee    string          `json:"employee" db:"employee"`
	Hour        int             `json:"hour" db:"hour"`
	Quantity    float64         `json:"quantity" db:"quantity"`
	TotalPrice  decimal.Decimal `json:"total_price" db:"total_price"`
	Profit      decimal.Decimal `json:"profit" db:"profit"`
}

type TimePeriod string

const (
	PeriodLast7Days  TimePeriod = "Last 7 Days"
	PeriodLast30Days TimePeriod = "Last 30 Days"
	PeriodLast90Days TimePeriod = "Last 90 Days"
	PeriodAllTime    TimePeriod = "All Time"

	DefaultPeriod = PeriodLast30Days
	AllCategories = "All Categories"
)

// TimePeriods lists the selector values in display order.
var TimePeriods = []TimePeriod{PeriodLast7Days, PeriodLast30Days, PeriodLast90Days, PeriodAllTime}

// ParseTimePeriod accepts the display label. An empty string selects DefaultPeriod.
func ParseTimePeriod(s string) (TimePeriod, error) {
	if s == "" {
		return DefaultPeriod, nil
	}
	for _, p := range TimePeriods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown time period %q", s)
}

type Selection struct {
	Period   TimePeriod `json:"period"`
	Category string     `json:"category"`
}

type DateRange struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Bounded bool      `json:"bounded"`
}

func (r DateRange) Duration() time.Duration {
	if !r.Bounded {
		return 0
	}
	return r.End.Sub(r.Start)
}

// Window is the pair of ranges for a period. For All Time the current range is
// unbounded (matches every record) and the comparison range is unbounded too,
// which for a comparison means it matches nothing.
type Window struct {
	Period     TimePeriod `json:"period"`
	Current    DateRange  `json:"current"`
	Comparison DateRange  `json:"comparison"`
}

func (w Window) HasComparison() bool {
	return w.Comparison.Bounded
}

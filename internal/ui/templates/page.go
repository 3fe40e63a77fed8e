// Package templates holds the templ components for the dashboard page. The
// same components are streamed as fragments by the SSE handlers, so the first
// paint and every later patch share one markup.
package templates

import (
	"encoding/json"
	"strconv"
	"time"

	"spirits-dashboard/internal/models"
)

type DashboardPage struct {
	Title      string
	Periods    []models.TimePeriod
	Categories []string
	Dashboard  models.Dashboard
}

// Signals is the initial datastar signal set: just the two selectors.
func (p DashboardPage) Signals() (string, error) {
	b, err := json.Marshal(p.Dashboard.Selection)
	return string(b), err
}

func dayLabel(t time.Time) string {
	return t.Format(time.DateOnly)
}

func hourLabel(h int) string {
	return strconv.Itoa(h) + ":00"
}

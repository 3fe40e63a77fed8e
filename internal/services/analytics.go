package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"spirits-dashboard/internal/errors"
	"spirits-dashboard/internal/models"
)

// Loader supplies the two source tables. now anchors any derived fields.
type Loader interface {
	Load(ctx context.Context, now time.Time) (*models.Tables, error)
}

// Analytics holds the loaded snapshot and runs the metrics pipeline for each
// selection. The snapshot is never mutated after SetTables, so concurrent
// Dashboard calls share it without copying.
type Analytics struct {
	mu         sync.RWMutex
	tables     *models.Tables
	categories []string
	policy     AlertPolicy
	logger     *slog.Logger
}

func NewAnalytics(logger *slog.Logger, policy AlertPolicy) *Analytics {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analytics{
		policy: policy,
		logger: logger,
	}
}

func (a *Analytics) SetTables(tables *models.Tables) {
	categories := []string{models.AllCategories}
	seen := make(map[string]struct{})
	var distinct []string
	for _, r := range tables.Sales {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		distinct = append(distinct, r.Category)
	}
	slices.Sort(distinct)
	categories = append(categories, distinct...)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.tables = tables
	a.categories = categories
}

func (a *Analytics) Load(ctx context.Context, loader Loader, now time.Time) error {
	start := time.Now()

	tables, err := loader.Load(ctx, now)
	if err != nil {
		if errors.IsDataUnavailable(err) {
			return err
		}
		return errors.DataUnavailableWrap(err, "data files could not be loaded")
	}

	a.SetTables(tables)
	a.logger.Info("tables loaded",
		"sales_records", len(tables.Sales),
		"inventory_records", len(tables.Inventory),
		"duration", time.Since(start),
	)
	return nil
}

func (a *Analytics) snapshot() (*models.Tables, []string) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tables, a.categories
}

// Categories returns the category selector values: All Categories first,
// then every distinct category in alphabetical order.
func (a *Analytics) Categories() []string {
	_, categories := a.snapshot()
	if categories == nil {
		return []string{models.AllCategories}
	}
	return slices.Clone(categories)
}

func (a *Analytics) ValidCategory(category string) bool {
	if category == models.AllCategories {
		return true
	}
	_, categories := a.snapshot()
	return slices.Contains(categories, category)
}

// ParseSelection validates raw selector input. Empty values fall back to the
// defaults.
func (a *Analytics) ParseSelection(period, category string) (models.Selection, error) {
	p, err := models.ParseTimePeriod(period)
	if err != nil {
		return models.Selection{}, errors.ValidationWrap(err, "invalid time period")
	}
	if category == "" {
		category = models.AllCategories
	}
	if !a.ValidCategory(category) {
		return models.Selection{}, errors.Validation(fmt.Sprintf("unknown category %q", category))
	}
	return models.Selection{Period: p, Category: category}, nil
}

// Dashboard runs filter, aggregation and inventory evaluation for one selection.
func (a *Analytics) Dashboard(sel models.Selection, now time.Time) (*models.Dashboard, error) {
	tables, _ := a.snapshot()
	if tables == nil {
		return nil, errors.DataUnavailable("sales and inventory data are not loaded")
	}

	filter := Resolve(sel.Period, sel.Category, now)
	current, previous := filter.Apply(tables.Sales)
	inventory := RebaseExpiry(tables.Inventory, now)

	return &models.Dashboard{
		Selection:       sel,
		Window:          filter.Window,
		Metrics:         Summarize(current, previous, filter.Window.HasComparison()),
		DailyTrend:      DailyTrend(current),
		TopProducts:     TopProducts(current, TopProductsLimit),
		Categories:      CategoryBreakdown(current),
		Hourly:          HourlyDistribution(current),
		Employees:       EmployeePerformance(current),
		Alerts:          EvaluateInventory(inventory, a.policy),
		InventoryStatus: RankInventory(inventory, InventoryStatusLimit),
		GeneratedAt:     now,
	}, nil
}

// Inventory evaluates alerts and stock ranking without touching sales.
func (a *Analytics) Inventory(now time.Time) (models.InventoryAlerts, []models.InventoryLevel, error) {
	tables, _ := a.snapshot()
	if tables == nil {
		return models.InventoryAlerts{}, nil, errors.DataUnavailable("inventory data is not loaded")
	}
	inventory := RebaseExpiry(tables.Inventory, now)
	return EvaluateInventory(inventory, a.policy), RankInventory(inventory, InventoryStatusLimit), nil
}

func (a *Analytics) Stats() map[string]any {
	tables, categories := a.snapshot()
	if tables == nil {
		return map[string]any{"loaded": false}
	}
	return map[string]any{
		"loaded":            true,
		"sales_records":     len(tables.Sales),
		"inventory_records": len(tables.Inventory),
		"categories":        len(categories) - 1,
		"loaded_at":         tables.LoadedAt,
	}
}

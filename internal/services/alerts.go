package services

import (
	"slices"
	"time"

	"spirits-dashboard/internal/models"
)

const (
	DefaultExpiryWindowDays = 30
	InventoryStatusLimit    = 15
)

// AlertPolicy holds the thresholds for inventory alerts.
type AlertPolicy struct {
	ExpiryWindowDays int
}

func DefaultAlertPolicy() AlertPolicy {
	return AlertPolicy{ExpiryWindowDays: DefaultExpiryWindowDays}
}

func (p AlertPolicy) IsLowStock(r models.InventoryRecord) bool {
	return r.CurrentStock < r.ReorderLevel
}

func (p AlertPolicy) IsExpiringSoon(r models.InventoryRecord) bool {
	return r.DaysToExpiry <= p.ExpiryWindowDays
}

// EvaluateInventory partitions the full inventory snapshot into low-stock and
// expiring-soon sets. A record can land in both.
func EvaluateInventory(records []models.InventoryRecord, policy AlertPolicy) models.InventoryAlerts {
	alerts := models.InventoryAlerts{
		LowStock:     []models.InventoryRecord{},
		ExpiringSoon: []models.InventoryRecord{},
	}

	for _, r := range records {
		if policy.IsLowStock(r) {
			alerts.LowStock = append(alerts.LowStock, r)
		}
		if policy.IsExpiringSoon(r) {
			alerts.ExpiringSoon = append(alerts.ExpiringSoon, r)
		}
	}

	alerts.LowStockHealthy = len(alerts.LowStock) == 0
	alerts.ExpiringHealthy = len(alerts.ExpiringSoon) == 0
	alerts.AllHealthy = alerts.LowStockHealthy && alerts.ExpiringHealthy
	return alerts
}

// RankInventory orders products by current stock, largest first, and keeps
// the top limit entries.
func RankInventory(records []models.InventoryRecord, limit int) []models.InventoryLevel {
	levels := make([]models.InventoryLevel, 0, len(records))
	for _, r := range records {
		levels = append(levels, models.InventoryLevel{
			ProductName:  r.ProductName,
			CurrentStock: r.CurrentStock,
			ReorderLevel: r.ReorderLevel,
		})
	}

	slices.SortStableFunc(levels, func(a, b models.InventoryLevel) int {
		return b.CurrentStock - a.CurrentStock
	})
	if limit >= 0 && len(levels) > limit {
		levels = levels[:limit]
	}
	return levels
}

// RebaseExpiry returns a copy of records with DaysToExpiry recomputed against
// now. Records without an expiry date keep their stored value.
func RebaseExpiry(records []models.InventoryRecord, now time.Time) []models.InventoryRecord {
	out := make([]models.InventoryRecord, len(records))
	for i, r := range records {
		if !r.ExpiryDate.IsZero() {
			r.DaysToExpiry = models.DaysUntil(r.ExpiryDate, now)
		}
		out[i] = r
	}
	return out
}

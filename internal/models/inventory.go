package models

import "time"

type InventoryRecord struct {
	ProductName  string    `json:"product_name" db:"product_name"`
	CurrentStock int       `json:"current_stock" db:"current_stock"`
	ReorderLevel int       `json:"reorder_level" db:"reorder_level"`
	ExpiryDate   time.Time `json:"expiry_date" db:"expiry_date"`
	DaysToExpiry int       `json:"days_to_expiry" db:"days_to_expiry"`
}

// Tables is the immutable snapshot handed out by a data source.
type Tables struct {
	Sales     []SaleRecord
	Inventory []InventoryRecord
	LoadedAt  time.Time
}

// DaysUntil counts whole calendar days from now to expiry, in the expiry
// date's location. Past dates are negative.
func DaysUntil(expiry, now time.Time) int {
	ey, em, ed := expiry.Date()
	ny, nm, nd := now.In(expiry.Location()).Date()
	e := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	n := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(e.Sub(n) / (24 * time.Hour))
}

type InventoryAlerts struct {
	LowStock        []InventoryRecord `json:"low_stock"`
	ExpiringSoon    []InventoryRecord `json:"expiring_soon"`
	LowStockHealthy bool              `json:"low_stock_healthy"`
	ExpiringHealthy bool              `json:"expiring_healthy"`
	AllHealthy      bool              `json:"all_healthy"`
}

type InventoryLevel struct {
	ProductName  string `json:"product_name"`
	CurrentStock int    `json:"current_stock"`
	ReorderLevel int    `json:"reorder_level"`
}

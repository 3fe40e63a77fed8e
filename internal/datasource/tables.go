package datasource

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"spirits-dashboard/internal/models"
)

var timestampLayouts = []string{
	time.DateTime,
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	time.DateOnly,
}

// header maps column names to their position in a row.
type header map[string]int

func parseHeader(row []string) header {
	h := make(header, len(row))
	for i, name := range row {
		if i == 0 {
			// Excel's "CSV UTF-8" export starts the file with a byte order mark.
			name = strings.TrimPrefix(name, "\ufeff")
		}
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return h
}

func (h header) require(table string, cols ...string) error {
	var missing []string
	for _, c := range cols {
		if _, ok := h[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s table is missing columns: %s", table, strings.Join(missing, ", "))
	}
	return nil
}

func (h header) has(col string) bool {
	_, ok := h[col]
	return ok
}

// get returns the trimmed cell for col; rows shorter than the header read as blank.
func (h header) get(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

var (
	salesColumns     = []string{"date", "product_name", "category", "employee", "quantity", "total_price", "profit"}
	inventoryColumns = []string{"product_name", "current_stock", "reorder_level"}
)

func parseSales(rows [][]string, loc *time.Location) ([]models.SaleRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("sales table is empty")
	}
	h := parseHeader(rows[0])
	if err := h.require("sales", salesColumns...); err != nil {
		return nil, err
	}

	sales := make([]models.SaleRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		r, err := parseSaleRow(h, row, loc)
		if err != nil {
			return nil, fmt.Errorf("sales row %d: %w", i+2, err)
		}
		sales = append(sales, r)
	}
	return sales, nil
}

func parseSaleRow(h header, row []string, loc *time.Location) (models.SaleRecord, error) {
	var r models.SaleRecord
	var err error

	if r.Date, err = parseTimestamp(h.get(row, "date"), loc); err != nil {
		return r, fmt.Errorf("date: %w", err)
	}

	y, m, d := r.Date.Date()
	r.DateOnly = time.Date(y, m, d, 0, 0, 0, 0, loc)
	if v := h.get(row, "date_only"); v != "" {
		if r.DateOnly, err = parseTimestamp(v, loc); err != nil {
			return r, fmt.Errorf("date_only: %w", err)
		}
	}

	r.Hour = r.Date.Hour()
	if v := h.get(row, "hour"); v != "" {
		if r.Hour, err = parseInt(v); err != nil {
			return r, fmt.Errorf("hour: %w", err)
		}
		if r.Hour < 0 || r.Hour > 23 {
			return r, fmt.Errorf("hour %d out of range", r.Hour)
		}
	}

	r.ProductName = h.get(row, "product_name")
	r.Category = h.get(row, "category")
	r.Employee = h.get(row, "employee")

	if r.Quantity, err = strconv.ParseFloat(h.get(row, "quantity"), 64); err != nil {
		return r, fmt.Errorf("quantity: %w", err)
	}
	if r.Quantity < 0 {
		return r, fmt.Errorf("quantity %v is negative", r.Quantity)
	}
	if r.TotalPrice, err = decimal.NewFromString(h.get(row, "total_price")); err != nil {
		return r, fmt.Errorf("total_price: %w", err)
	}
	if r.Profit, err = decimal.NewFromString(h.get(row, "profit")); err != nil {
		return r, fmt.Errorf("profit: %w", err)
	}
	return r, nil
}

func parseInventory(rows [][]string, now time.Time, loc *time.Location) ([]models.InventoryRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("inventory table is empty")
	}
	h := parseHeader(rows[0])
	if err := h.require("inventory", inventoryColumns...); err != nil {
		return nil, err
	}
	if !h.has("expiry_date") && !h.has("days_to_expiry") {
		return nil, fmt.Errorf("inventory table needs expiry_date or days_to_expiry")
	}

	inventory := make([]models.InventoryRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		r, err := parseInventoryRow(h, row, now, loc)
		if err != nil {
			return nil, fmt.Errorf("inventory row %d: %w", i+2, err)
		}
		inventory = append(inventory, r)
	}
	return inventory, nil
}

func parseInventoryRow(h header, row []string, now time.Time, loc *time.Location) (models.InventoryRecord, error) {
	r := models.InventoryRecord{ProductName: h.get(row, "product_name")}
	var err error

	if r.CurrentStock, err = parseInt(h.get(row, "current_stock")); err != nil {
		return r, fmt.Errorf("current_stock: %w", err)
	}
	if r.ReorderLevel, err = parseInt(h.get(row, "reorder_level")); err != nil {
		return r, fmt.Errorf("reorder_level: %w", err)
	}
	if r.CurrentStock < 0 || r.ReorderLevel < 0 {
		return r, fmt.Errorf("stock levels cannot be negative")
	}

	if v := h.get(row, "expiry_date"); v != "" {
		if r.ExpiryDate, err = parseTimestamp(v, loc); err != nil {
			return r, fmt.Errorf("expiry_date: %w", err)
		}
		r.DaysToExpiry = models.DaysUntil(r.ExpiryDate, now)
		return r, nil
	}

	if r.DaysToExpiry, err = parseInt(h.get(row, "days_to_expiry")); err != nil {
		return r, fmt.Errorf("days_to_expiry: %w", err)
	}
	return r, nil
}

// parseTimestamp accepts the usual text layouts and Excel date serials.
func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// parseInt also accepts integral floats such as "12.0", which spreadsheet
// exports produce.
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(f), nil
}

package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"spirits-dashboard/internal/errors"
	"spirits-dashboard/internal/models"
)

const (
	salesQuery = `
		SELECT sold_at, sale_date, product_name, category, employee, hour,
		       quantity, total_price, profit
		FROM sales
		ORDER BY id`

	inventoryQuery = `
		SELECT product_name, current_stock, reorder_level, expiry_date, days_to_expiry
		FROM inventory
		ORDER BY id`
)

// PostgresSource reads the same two tables from a database. Rows keep the
// order of their primary key so tie-breaks match the file source.
type PostgresSource struct {
	DB     *sqlx.DB
	Logger *slog.Logger
}

func OpenPostgres(ctx context.Context, databaseURL string, logger *slog.Logger) (*PostgresSource, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", databaseURL)
	if err != nil {
		return nil, errors.DataUnavailableWrap(err, "failed to connect to database")
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSource{DB: db, Logger: logger}, nil
}

type saleRow struct {
	SoldAt      time.Time       `db:"sold_at"`
	SaleDate    sql.NullTime    `db:"sale_date"`
	ProductName string          `db:"product_name"`
	Category    string          `db:"category"`
	Employee    string          `db:"employee"`
	Hour        sql.NullInt64   `db:"hour"`
	Quantity    float64         `db:"quantity"`
	TotalPrice  decimal.Decimal `db:"total_price"`
	Profit      decimal.Decimal `db:"profit"`
}

func (r saleRow) record() models.SaleRecord {
	rec := models.SaleRecord{
		Date:        r.SoldAt,
		ProductName: r.ProductName,
		Category:    r.Category,
		Employee:    r.Employee,
		Hour:        r.SoldAt.Hour(),
		Quantity:    r.Quantity,
		TotalPrice:  r.TotalPrice,
		Profit:      r.Profit,
	}

	y, m, d := r.SoldAt.Date()
	rec.DateOnly = time.Date(y, m, d, 0, 0, 0, 0, r.SoldAt.Location())
	if r.SaleDate.Valid {
		rec.DateOnly = r.SaleDate.Time
	}
	if r.Hour.Valid {
		rec.Hour = int(r.Hour.Int64)
	}
	return rec
}

type inventoryRow struct {
	ProductName  string        `db:"product_name"`
	CurrentStock int           `db:"current_stock"`
	ReorderLevel int           `db:"reorder_level"`
	ExpiryDate   sql.NullTime  `db:"expiry_date"`
	DaysToExpiry sql.NullInt64 `db:"days_to_expiry"`
}

func (r inventoryRow) record(now time.Time) models.InventoryRecord {
	rec := models.InventoryRecord{
		ProductName:  r.ProductName,
		CurrentStock: r.CurrentStock,
		ReorderLevel: r.ReorderLevel,
	}
	if r.ExpiryDate.Valid {
		rec.ExpiryDate = r.ExpiryDate.Time
		rec.DaysToExpiry = models.DaysUntil(r.ExpiryDate.Time, now)
	} else if r.DaysToExpiry.Valid {
		rec.DaysToExpiry = int(r.DaysToExpiry.Int64)
	}
	return rec
}

func (s *PostgresSource) Load(ctx context.Context, now time.Time) (*models.Tables, error) {
	var sales []saleRow
	if err := s.DB.SelectContext(ctx, &sales, salesQuery); err != nil {
		return nil, errors.DataUnavailableWrap(err, "failed to query sales table")
	}

	var inventory []inventoryRow
	if err := s.DB.SelectContext(ctx, &inventory, inventoryQuery); err != nil {
		return nil, errors.DataUnavailableWrap(err, "failed to query inventory table")
	}

	tables := &models.Tables{
		Sales:     make([]models.SaleRecord, len(sales)),
		Inventory: make([]models.InventoryRecord, len(inventory)),
		LoadedAt:  now,
	}
	for i, r := range sales {
		tables.Sales[i] = r.record()
	}
	for i, r := range inventory {
		tables.Inventory[i] = r.record(now)
	}

	s.Logger.Info("loaded tables from database",
		"sales_records", len(tables.Sales),
		"inventory_records", len(tables.Inventory),
	)
	return tables, nil
}

func (s *PostgresSource) Close() error {
	if s.DB == nil {
		return nil
	}
	if err := s.DB.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

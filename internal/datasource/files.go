package datasource

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"spirits-dashboard/internal/errors"
	"spirits-dashboard/internal/models"
)

// FileSource loads the sales and inventory tables from .csv or .xlsx files.
type FileSource struct {
	SalesPath     string
	InventoryPath string
	Location      *time.Location
	Cache         TableCache
	Logger        *slog.Logger
}

func NewFileSource(salesPath, inventoryPath string, cache TableCache, logger *slog.Logger) *FileSource {
	if cache == nil {
		cache = NoopCache{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		SalesPath:     salesPath,
		InventoryPath: inventoryPath,
		Location:      time.Local,
		Cache:         cache,
		Logger:        logger,
	}
}

func (s *FileSource) Load(ctx context.Context, now time.Time) (*models.Tables, error) {
	key, err := fileKey(s.SalesPath, s.InventoryPath)
	if err != nil {
		return nil, errors.DataUnavailableWrap(err, "data files not found")
	}

	if cached, ok, err := s.Cache.Get(ctx, key); err != nil {
		s.Logger.Warn("table cache read failed", "key", key, "error", err)
	} else if ok {
		s.Logger.Info("loaded tables from cache", "key", key, "sales_records", len(cached.Sales))
		return cached, nil
	}

	loc := s.Location
	if loc == nil {
		loc = time.Local
	}

	var (
		sales     []models.SaleRecord
		inventory []models.InventoryRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := readRows(gctx, s.SalesPath)
		if err != nil {
			return err
		}
		sales, err = parseSales(rows, loc)
		if err != nil {
			return fmt.Errorf("%s: %w", s.SalesPath, err)
		}
		return nil
	})
	g.Go(func() error {
		rows, err := readRows(gctx, s.InventoryPath)
		if err != nil {
			return err
		}
		inventory, err = parseInventory(rows, now, loc)
		if err != nil {
			return fmt.Errorf("%s: %w", s.InventoryPath, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, errors.DataUnavailableWrap(err, "data files could not be parsed")
	}

	tables := &models.Tables{Sales: sales, Inventory: inventory, LoadedAt: now}
	if err := s.Cache.Set(ctx, key, tables); err != nil {
		s.Logger.Warn("failed to save table cache", "key", key, "error", err)
	}
	return tables, nil
}

// readRows returns every row of a .csv file or of the first sheet of an
// .xlsx workbook, header included.
func readRows(ctx context.Context, path string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	default:
		return readCSV(path)
	}
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx file %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

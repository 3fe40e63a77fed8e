package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"spirits-dashboard/internal/datasource"
	"spirits-dashboard/internal/services"
	"spirits-dashboard/internal/ui"
)

func dataFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "sales",
			Usage:   "Sales table (.csv or .xlsx)",
			Value:   "sales_data.csv",
			EnvVars: []string{"SALES_FILE"},
		},
		&cli.StringFlag{
			Name:    "inventory",
			Usage:   "Inventory table (.csv or .xlsx)",
			Value:   "inventory_data.csv",
			EnvVars: []string{"INVENTORY_FILE"},
		},
		&cli.IntFlag{
			Name:    "expiry-days",
			Usage:   "Days ahead that count as expiring soon",
			Value:   services.DefaultExpiryWindowDays,
			EnvVars: []string{"ALERT_EXPIRY_DAYS"},
		},
	}
}

func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "period", Usage: "Last 7 Days, Last 30 Days, Last 90 Days or All Time"},
		&cli.StringFlag{Name: "category", Usage: "Category name or All Categories"},
		&cli.BoolFlag{Name: "summary", Usage: "Print the KPI cards instead of JSON"},
	}
}

// loadAnalytics reads both tables once; every command works off the same
// reference time.
func loadAnalytics(c *cli.Context, now time.Time) (*services.Analytics, error) {
	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: slog.LevelWarn}))

	src := datasource.NewFileSource(c.String("sales"), c.String("inventory"), nil, logger)
	policy := services.AlertPolicy{ExpiryWindowDays: c.Int("expiry-days")}
	if policy.ExpiryWindowDays < 0 {
		return nil, fmt.Errorf("--expiry-days cannot be negative")
	}

	analytics := services.NewAnalytics(logger, policy)
	if err := analytics.Load(c.Context, src, now); err != nil {
		return nil, err
	}
	return analytics, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runDashboard(c *cli.Context) error {
	now := time.Now()
	analytics, err := loadAnalytics(c, now)
	if err != nil {
		return err
	}

	sel, err := analytics.ParseSelection(c.String("period"), c.String("category"))
	if err != nil {
		return err
	}
	d, err := analytics.Dashboard(sel, now)
	if err != nil {
		return err
	}

	if !c.Bool("summary") {
		return writeJSON(c.App.Writer, d)
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", d.Selection.Period, d.Selection.Category)
	for _, card := range ui.KPICards(d.Metrics) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", card.Title, card.Value, card.Delta)
	}
	return tw.Flush()
}

func runCategories(c *cli.Context) error {
	analytics, err := loadAnalytics(c, time.Now())
	if err != nil {
		return err
	}
	for _, category := range analytics.Categories() {
		fmt.Fprintln(c.App.Writer, category)
	}
	return nil
}

func runAlerts(c *cli.Context) error {
	now := time.Now()
	analytics, err := loadAnalytics(c, now)
	if err != nil {
		return err
	}
	alerts, _, err := analytics.Inventory(now)
	if err != nil {
		return err
	}

	w := c.App.Writer
	if alerts.AllHealthy {
		fmt.Fprintln(w, "All inventory levels are healthy.")
		return nil
	}
	if alerts.LowStockHealthy {
		fmt.Fprintln(w, "All stock levels healthy.")
	}
	for _, r := range alerts.LowStock {
		fmt.Fprintf(w, "LOW STOCK  %s: current %d units, reorder level %d units\n", r.ProductName, r.CurrentStock, r.ReorderLevel)
	}
	if alerts.ExpiringHealthy {
		fmt.Fprintln(w, "No items expiring soon.")
	}
	for _, r := range alerts.ExpiringSoon {
		fmt.Fprintf(w, "EXPIRING   %s: expires in %d days, stock %d units\n", r.ProductName, r.DaysToExpiry, r.CurrentStock)
	}
	return nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "report",
		Usage: "Print wine and spirits sales metrics from the command line",
		Commands: []*cli.Command{
			{
				Name:   "dashboard",
				Usage:  "Compute the full dashboard for one selection",
				Flags:  append(dataFlags(), selectionFlags()...),
				Action: runDashboard,
			},
			{
				Name:   "categories",
				Usage:  "List the category selector values",
				Flags:  dataFlags(),
				Action: runCategories,
			},
			{
				Name:   "alerts",
				Usage:  "List low stock and expiring inventory",
				Flags:  dataFlags(),
				Action: runAlerts,
			},
		},
	}
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env file: %v\n", err)
	}
	decimal.MarshalJSONWithoutQuotes = true

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "report:", err)
		os.Exit(1)
	}
}

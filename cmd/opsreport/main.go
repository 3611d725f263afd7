// Command opsreport prints the admin dashboard and the low-stock list as
// terminal tables, reading straight from the shop database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
)

func main() {
	var (
		days     = flag.Int("days", 30, "reporting window in days")
		lowStock = flag.Int("low-stock", 20, "maximum number of low-stock products to list")
		timeout  = flag.Duration("timeout", 30*time.Second, "overall query timeout")
	)
	flag.Parse()

	if err := run(*days, *lowStock, *timeout, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(days, lowStock int, timeout time.Duration, out io.Writer) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	dashboards := service.NewDashboardService(repository.NewDashboardRepository(pool, logger), logger)
	products := service.NewProductService(repository.NewProductRepository(pool, logger), logger)

	dashboard, err := dashboards.Get(ctx, days)
	if err != nil {
		return err
	}
	low, err := products.LowStock(ctx, lowStock)
	if err != nil {
		return err
	}

	return render(out, dashboard, low)
}

func render(out io.Writer, d *model.Dashboard, low []model.Product) error {
	fmt.Fprintf(out, "Last %d days\n", d.PeriodDays)

	stats := tablewriter.NewWriter(out)
	stats.Header([]string{"Metric", "Value"})
	rows := [][]string{
		{"Revenue", money(d.Stats.TotalRevenue)},
		{"Orders", strconv.Itoa(d.Stats.TotalOrders)},
		{"Average order", money(d.Stats.AverageOrderValue)},
		{"Pending orders", strconv.Itoa(d.Stats.PendingOrders)},
		{"New customers", strconv.Itoa(d.Stats.NewCustomers)},
		{"Customers", strconv.Itoa(d.Stats.TotalCustomers)},
		{"Active products", strconv.Itoa(d.Stats.TotalProducts)},
		{"Low stock", strconv.Itoa(d.Stats.LowStockProducts)},
	}
	if err := stats.Bulk(rows); err != nil {
		return fmt.Errorf("failed to build stats table: %w", err)
	}
	if err := stats.Render(); err != nil {
		return fmt.Errorf("failed to render stats table: %w", err)
	}

	if len(d.TopProducts) > 0 {
		fmt.Fprintln(out, "\nTop products")
		top := tablewriter.NewWriter(out)
		top.Header([]string{"Product", "Sold", "Revenue"})
		for _, p := range d.TopProducts {
			if err := top.Append([]string{p.Name, strconv.Itoa(p.TotalSold), money(p.TotalRevenue)}); err != nil {
				return fmt.Errorf("failed to build top products table: %w", err)
			}
		}
		if err := top.Render(); err != nil {
			return fmt.Errorf("failed to render top products table: %w", err)
		}
	}

	fmt.Fprintln(out, "\nLow stock")
	if len(low) == 0 {
		fmt.Fprintln(out, "none")
		return nil
	}
	stock := tablewriter.NewWriter(out)
	stock.Header([]string{"SKU", "Product", "On hand", "Threshold"})
	for _, p := range low {
		row := []string{p.SKU, p.Name, strconv.Itoa(p.StockQuantity), strconv.Itoa(p.LowStockThreshold)}
		if err := stock.Append(row); err != nil {
			return fmt.Errorf("failed to build low stock table: %w", err)
		}
	}
	if err := stock.Render(); err != nil {
		return fmt.Errorf("failed to render low stock table: %w", err)
	}
	return nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

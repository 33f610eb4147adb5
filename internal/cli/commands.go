// Package cli provides the cobra command tree for stockctl, the operator
// tool that works directly against a store backend.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"stockbook/config"
	"stockbook/internal/domain"
	"stockbook/internal/kv"
	"stockbook/internal/services/inventory"
	"stockbook/internal/services/reports"
	"stockbook/internal/store"
)

// env holds what a command needs once the backend is open.
type env struct {
	store  *store.Store
	ledger *inventory.Ledger
	agg    *reports.Aggregator
}

// NewRootCmd builds a fresh command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	e := &env{}

	root := &cobra.Command{
		Use:           "stockctl",
		Short:         "Operate a stockbook store: backups, reports and stock levels",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(v.GetString("log-level"), cmd.ErrOrStderr())

			cfg := config.LoadConfig()
			if b := v.GetString("backend"); b != "" {
				cfg.Store.Backend = strings.ToLower(b)
			}
			if f := v.GetString("file"); f != "" {
				cfg.Store.FilePath = f
			}
			if ns := v.GetString("namespace"); ns != "" {
				cfg.Store.Namespace = ns
			}

			backend, err := kv.Open(cfg)
			if err != nil {
				return fmt.Errorf("open %s backend: %w", cfg.Store.Backend, err)
			}
			e.store = store.New(backend, cfg.Store.Namespace)
			e.ledger = inventory.NewLedger(e.store)
			e.agg = reports.NewAggregator(e.store)
			slog.Debug("store opened", "backend", cfg.Store.Backend, "namespace", cfg.Store.Namespace)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if e.store == nil {
				return nil
			}
			return e.store.Close()
		},
	}

	root.PersistentFlags().String("backend", "", "store backend: file|memory|redis|postgres (default from STORE_BACKEND)")
	root.PersistentFlags().String("file", "", "file backend path (default from STORE_FILE)")
	root.PersistentFlags().String("namespace", "", "key namespace (default from STORE_NAMESPACE)")
	root.PersistentFlags().String("log-level", "info", "log level: debug|info|warn|error")

	for _, name := range []string{"backend", "file", "namespace", "log-level"} {
		_ = v.BindPFlag(name, root.PersistentFlags().Lookup(name))
	}
	v.SetEnvPrefix("STOCKCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root.AddCommand(
		newExportCmd(e),
		newImportCmd(e),
		newReportCmd(e),
		newStockCmd(e),
	)
	return root
}

// Execute runs stockctl with os.Args.
func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}

func setupLogging(level string, w io.Writer) {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	slog.SetDefault(slog.New(
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}),
	))
}

func printJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func newExportCmd(e *env) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a full backup as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			b, err := e.store.Export(cmd.Context())
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				return printJSON(cmd.OutOrStdout(), b)
			}
			data, err := json.MarshalIndent(b, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			slog.Info("backup exported",
				"path", out,
				"products", len(b.Products),
				"orders", len(b.Orders),
				"duration_ms", time.Since(start).Milliseconds())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (stdout when empty)")
	return cmd
}

func newImportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Restore a backup written by export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			imported, err := e.store.Import(cmd.Context(), raw)
			if err != nil {
				return err
			}
			if len(imported) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing imported")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported: %s\n", strings.Join(imported, ", "))
			return nil
		},
	}
}

func newReportCmd(e *env) *cobra.Command {
	var from, to string
	var asJSON bool

	window := func() (time.Time, time.Time, error) {
		f, err := parseDate("from", from)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		t, err := parseDate("to", to)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return f, t, nil
	}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print inventory, sales or purchase reports",
	}
	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON")

	inventoryCmd := &cobra.Command{
		Use:   "inventory",
		Short: "Stock value and levels per product",
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := e.agg.InventoryReport(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), rep)
			}
			products, err := e.ledger.ListProducts(cmd.Context(), "", "")
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "products: %d  units: %d  value: %s\n",
				rep.TotalProducts, rep.TotalUnits, rep.TotalValue.StringFixed(2))
			for _, p := range products {
				printProductLine(w, p)
			}
			return nil
		},
	}

	salesCmd := &cobra.Command{
		Use:   "sales",
		Short: "Revenue and profit over a date window",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, t, err := window()
			if err != nil {
				return err
			}
			rep, err := e.agg.SalesReport(cmd.Context(), f, t)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), rep)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "transactions: %d  revenue: %s  profit: %s  average: %s\n",
				rep.TotalTransactions,
				rep.TotalRevenue.StringFixed(2),
				rep.TotalProfit.StringFixed(2),
				rep.AvgOrderValue.StringFixed(2))
			return nil
		},
	}

	purchasesCmd := &cobra.Command{
		Use:   "purchases",
		Short: "Purchase orders over a date window",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, t, err := window()
			if err != nil {
				return err
			}
			rep, err := e.agg.PurchaseReport(cmd.Context(), f, t)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), rep)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "orders: %d  pending: %d  completed: %d  amount: %s\n",
				rep.TotalOrders, rep.PendingOrders, rep.CompletedOrders, rep.TotalAmount.StringFixed(2))
			return nil
		},
	}

	for _, c := range []*cobra.Command{salesCmd, purchasesCmd} {
		c.Flags().StringVar(&from, "from", "", "window start, YYYY-MM-DD")
		c.Flags().StringVar(&to, "to", "", "window end, YYYY-MM-DD (inclusive)")
	}
	cmd.AddCommand(inventoryCmd, salesCmd, purchasesCmd)
	return cmd
}

func newStockCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Inspect and adjust stock levels",
	}

	lowCmd := &cobra.Command{
		Use:   "low",
		Short: "List products at or below their minimum level",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := e.agg.LowStockItems(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(w, "no low stock items")
				return nil
			}
			for _, p := range items {
				printProductLine(w, p)
			}
			return nil
		},
	}

	var op, reference string
	setCmd := &cobra.Command{
		Use:   "set <product-id> <amount>",
		Short: "Apply a stock change through the ledger",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.Atoi(args[1])
			if err != nil {
				return domain.NewValidationError("amount", "must be an integer", args[1])
			}
			p, err := e.ledger.UpdateStock(cmd.Context(), args[0], amount, domain.StockOp(op), reference)
			if err != nil {
				if errors.Is(err, &domain.NotFoundError{}) {
					slog.Warn("stock change rejected", "product_id", args[0], "error", err)
				}
				return err
			}
			slog.Info("stock updated", "product_id", p.ID, "op", op, "amount", amount, "quantity", p.Quantity)
			printProductLine(cmd.OutOrStdout(), p)
			return nil
		},
	}
	setCmd.Flags().StringVar(&op, "op", string(domain.StockSet), "operation: set|add|subtract")
	setCmd.Flags().StringVar(&reference, "reference", "stockctl", "movement reference")

	cmd.AddCommand(lowCmd, setCmd)
	return cmd
}

func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, "must be YYYY-MM-DD", s)
	}
	return t, nil
}

var statusColors = map[domain.StockStatus]*color.Color{
	domain.StockOut:      color.New(color.FgRed, color.Bold),
	domain.StockCritical: color.New(color.FgRed),
	domain.StockLow:      color.New(color.FgYellow),
	domain.StockGood:     color.New(color.FgGreen),
}

func printProductLine(w io.Writer, p domain.Product) {
	status := p.StockStatus()
	label := string(status)
	if c, ok := statusColors[status]; ok {
		label = c.Sprint(label)
	}
	fmt.Fprintf(w, "%s | %s | %s | %d/%d | %s\n",
		p.ID, p.SKU, p.Name, p.Quantity, p.MinStockLevel, label)
}

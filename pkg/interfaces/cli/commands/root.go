// Package commands implements the shopfloor command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vsinha/shopfloor/pkg/application/services"
	"github.com/vsinha/shopfloor/pkg/domain/catalog"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/infrastructure/config"
	"github.com/vsinha/shopfloor/pkg/infrastructure/events"
	"github.com/vsinha/shopfloor/pkg/infrastructure/logging"
	"github.com/vsinha/shopfloor/pkg/infrastructure/storage"
	"github.com/vsinha/shopfloor/pkg/interfaces/cli/output"
)

// app is the state shared by every subcommand of one invocation
type app struct {
	cfgFile string
	noColor bool
	format  string

	cfg     *config.Config
	catalog *catalog.Catalog
	handle  *storage.Handle
	bus     *events.Bus
	logger  *logrus.Logger
	svc     *services.InventoryService
	printer *output.Printer
}

// NewRootCommand builds the command tree. Close must be called on the
// returned cleanup once the command has run.
func NewRootCommand() (*cobra.Command, func() error) {
	a := &app{logger: logging.Logger}

	root := &cobra.Command{
		Use:           "shopfloor",
		Short:         "Production planning for a 3D-printed product line",
		Long:          "shopfloor tracks printed and purchased components, parts and products, and works out what to print, finish and assemble next.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "path to config file (YAML)")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable ANSI color output")
	root.PersistentFlags().StringVar(&a.format, "format", "text", "output format: text, json, yaml")

	root.AddCommand(
		newListCommand(a),
		newBOMCommand(a),
		newStockCommand(a),
		newPrintCommand(a),
		newPostProcessCommand(a),
		newAssembleCommand(a),
		newCapacityCommand(a),
		newPlanCommand(a),
		newPrioritiesCommand(a),
		newBatchesCommand(a),
		newTasksCommand(a),
		newLowStockCommand(a),
		newDashboardCommand(a),
		newBufferCommand(a),
		newBackupCommand(a),
		newResetCommand(a),
		newCatalogCommand(a),
		newServeCommand(a),
	)

	return root, a.close
}

// Execute runs the command line and returns the process exit code
func Execute() int {
	root, cleanup := NewRootCommand()
	err := root.ExecuteContext(context.Background())
	if cerr := cleanup(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// setup loads configuration and prepares, but does not open, the store
func (a *app) setup(cmd *cobra.Command) error {
	format, err := output.ParseFormat(a.format)
	if err != nil {
		return err
	}
	output.ConfigureColor(a.noColor, stdoutFile(cmd))
	a.printer = output.NewPrinter(cmd.OutOrStdout(), format)

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg
	logging.SetLevel(cfg.Log.Level)
	logging.SetFormatter(cfg.Log.Format)

	if cfg.Catalog.File != "" {
		a.catalog, err = catalog.LoadFile(cfg.Catalog.File)
		if err != nil {
			return err
		}
	} else {
		a.catalog = catalog.Default()
	}

	dbType, err := storage.ParseDatabaseType(cfg.Database.Type)
	if err != nil {
		return err
	}
	a.handle = storage.NewHandle(dbType, cfg.Database.Path, a.catalog, a.logger)

	a.bus = events.NewBus(a.logger)
	if cfg.Planning.LowStockAlerts {
		a.bus.Subscribe(events.AllStockEvents, events.NewLowStockMonitor(a.logger))
	}
	return nil
}

// service opens the store on first use
func (a *app) service(ctx context.Context) (*services.InventoryService, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	store, err := a.handle.Get(ctx)
	if err != nil {
		return nil, err
	}
	a.svc = services.NewInventoryService(store, a.catalog, a.bus, a.logger)
	return a.svc, nil
}

func (a *app) close() error {
	if a.handle == nil {
		return nil
	}
	return a.handle.Close()
}

func stdoutFile(cmd *cobra.Command) *os.File {
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return f
	}
	return nil
}

// parseCount reads a positive whole number argument
func parseCount(field, arg string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || n <= 0 {
		return 0, &entities.InvalidQuantityError{Field: field, Value: arg}
	}
	return n, nil
}

// parseAmount reads a non-negative decimal argument
func parseAmount(field, arg string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(arg))
	if err != nil || d.IsNegative() {
		return decimal.Zero, &entities.InvalidQuantityError{Field: field, Value: arg}
	}
	return d, nil
}

func interactive() bool {
	if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	return term != "" && term != "dumb"
}

// confirm asks before a destructive command. It refuses outright when there
// is no terminal to ask on.
func confirm(cmd *cobra.Command, label string) (bool, error) {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true, nil
	}
	if !interactive() {
		return false, fmt.Errorf("%s: pass --yes to confirm in a non-interactive session", cmd.CommandPath())
	}

	prompt := promptui.Prompt{Label: label, IsConfirm: true}
	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) || errors.Is(err, promptui.ErrInterrupt) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

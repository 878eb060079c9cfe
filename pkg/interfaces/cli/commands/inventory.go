package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vsinha/shopfloor/pkg/application/dto"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/shopfloor/pkg/interfaces/cli/output"
)

func newListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "list [printed|purchased|parts|products]",
		Short:     "Show stock levels",
		Long:      "Show stock levels for one kind of item, or for everything when no kind is given.",
		Aliases:   []string{"ls"},
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"printed", "purchased", "parts", "products"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}

			kind := "all"
			if len(args) == 1 {
				kind = args[0]
			}

			if kind == "all" && a.printer.Format() != output.FormatText {
				components, err := svc.ListComponents(ctx)
				if err != nil {
					return err
				}
				purchased, err := svc.ListPurchased(ctx)
				if err != nil {
					return err
				}
				parts, err := svc.ListParts(ctx)
				if err != nil {
					return err
				}
				products, err := svc.ListProducts(ctx)
				if err != nil {
					return err
				}
				return a.printer.Render(map[string]interface{}{
					"printed":   components,
					"purchased": purchased,
					"parts":     parts,
					"products":  products,
				}, func(io.Writer) {})
			}

			switch kind {
			case "printed", "components", "all":
				list, err := svc.ListComponents(ctx)
				if err != nil {
					return err
				}
				if err := a.printer.Components(list); err != nil || kind != "all" {
					return err
				}
				fallthrough
			case "purchased":
				list, err := svc.ListPurchased(ctx)
				if err != nil {
					return err
				}
				if err := a.printer.Purchased(list); err != nil || kind != "all" {
					return err
				}
				fallthrough
			case "parts":
				list, err := svc.ListParts(ctx)
				if err != nil {
					return err
				}
				if err := a.printer.Parts(list); err != nil || kind != "all" {
					return err
				}
				fallthrough
			case "products":
				list, err := svc.ListProducts(ctx)
				if err != nil {
					return err
				}
				return a.printer.Products(list)
			default:
				return fmt.Errorf("unknown item kind %q", kind)
			}
		},
	}
}

func newBOMCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "bom",
		Short:   "Show the bill of materials",
		Aliases: []string{"recipes"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			rows, err := svc.ListRecipes(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.Recipes(rows)
		},
	}
}

func newStockCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Correct stock levels directly",
	}
	cmd.AddCommand(newSetPrintedCommand(a), newSetPurchasedCommand(a), newStockImportCommand(a))
	return cmd
}

func newSetPrintedCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-printed <component>",
		Short: "Overwrite the counts or print settings of a printed component",
		Long: `Overwrite the counts or print settings of a printed component.
Only the flags you pass are changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var update dto.ComponentUpdate
			for name, target := range map[string]**entities.Quantity{
				"quantity":  &update.Quantity,
				"completed": &update.Completed,
				"pending":   &update.Pending,
			} {
				if !flags.Changed(name) {
					continue
				}
				v, _ := flags.GetInt64(name)
				q := entities.Quantity(v)
				*target = &q
			}
			if flags.Changed("batch-size") {
				v, _ := flags.GetInt("batch-size")
				update.BatchSize = &v
			}
			if flags.Changed("print-time") {
				v, _ := flags.GetInt("print-time")
				update.PrintTimeMinutes = &v
			}
			if flags.Changed("post-process") {
				v, _ := flags.GetBool("post-process")
				update.RequiresPostProcessing = &v
			}

			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			view, err := svc.UpdateComponentStock(cmd.Context(), args[0], update)
			if err != nil {
				return err
			}
			return a.printer.Message(view, "✅ %s: %d printed, %d ready, %d pending",
				view.Name, view.Quantity, view.Completed, view.Pending)
		},
	}
	cmd.Flags().Int64("quantity", 0, "total printed")
	cmd.Flags().Int64("completed", 0, "post-processed units ready for assembly")
	cmd.Flags().Int64("pending", 0, "printed units waiting for post-processing")
	cmd.Flags().Int("batch-size", 0, "units per print batch")
	cmd.Flags().Int("print-time", 0, "minutes per print batch")
	cmd.Flags().Bool("post-process", true, "whether new prints need post-processing")
	return cmd
}

func newSetPurchasedCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-purchased <component> <quantity>",
		Short: "Overwrite the quantity of a purchased component",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := parseAmount("quantity", args[1])
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}

			view, err := func() (*dto.PurchasedView, error) {
				if !cmd.Flags().Changed("threshold") {
					return svc.UpdatePurchasedStock(cmd.Context(), args[0], quantity, nil)
				}
				raw, _ := cmd.Flags().GetString("threshold")
				t, err := parseAmount("threshold", raw)
				if err != nil {
					return nil, err
				}
				return svc.UpdatePurchasedStock(cmd.Context(), args[0], quantity, &t)
			}()
			if err != nil {
				return err
			}
			return a.printer.Message(view, "✅ %s: %s %s", view.Name, view.Quantity.String(), view.Unit)
		},
	}
	cmd.Flags().String("threshold", "", "low-stock threshold")
	return cmd
}

func newStockImportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Apply a stock count sheet",
		Long: `Apply a stock count sheet with the columns name,quantity,pending.
For printed components quantity is the ready count; for purchased components
it is the quantity on hand. The whole sheet is applied or nothing is.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := csv.NewLoader().LoadStockLevels(args[0])
			if err != nil {
				return fmt.Errorf("error loading stock levels: %w", err)
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := svc.ImportStockLevels(cmd.Context(), rows)
			if err != nil {
				return err
			}
			return a.printer.ImportSummary(summary)
		},
	}
}

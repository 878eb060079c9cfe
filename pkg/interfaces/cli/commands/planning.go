package commands

import (
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vsinha/shopfloor/pkg/application/dto"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/interfaces/cli/output"
)

func newCapacityCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "capacity <part|product>",
		Short: "Show how many can be built now, and what limits it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			result, err := svc.GetCapacity(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printer.Capacity(result)
		},
	}
}

func newPlanCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what to print to reach the target buffer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}

			buffer, _ := cmd.Flags().GetInt("buffer")
			if !cmd.Flags().Changed("buffer") {
				if buffer, err = svc.GetTargetProductsBuffer(ctx); err != nil {
					return err
				}
			}
			plan, err := svc.GetShortagePlan(ctx, buffer)
			if err != nil {
				return err
			}
			return a.printer.ShortagePlan(plan)
		},
	}
	cmd.Flags().Int("buffer", 0, "products to plan for (default: stored target)")
	return cmd
}

func newPrioritiesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "priorities",
		Short:   "Show the next one or two things to do",
		Aliases: []string{"next"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			recs, err := svc.GetSmartPriorities(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.Recommendations(recs)
		},
	}
}

func newBatchesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "batches",
		Short: "Show print batches ranked by shortage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			lines, err := svc.GetBatchPriorities(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.BatchPriorities(lines)
		},
	}
}

func newTasksCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "tasks [post-processing|assembly]",
		Short:     "Show post-processing and assembly work",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"post-processing", "assembly"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.service(ctx)
			if err != nil {
				return err
			}
			which := ""
			if len(args) == 1 {
				which = args[0]
			}

			var finishing []dto.PostProcessingTask
			var assembly []dto.AssemblyTask
			if which != "assembly" {
				if finishing, err = svc.GetPostProcessingTasks(ctx); err != nil {
					return err
				}
			}
			if which != "post-processing" {
				if assembly, err = svc.GetAssemblyTasks(ctx); err != nil {
					return err
				}
			}

			switch which {
			case "post-processing":
				return a.printer.PostProcessingTasks(finishing)
			case "assembly":
				return a.printer.AssemblyTasks(assembly)
			}
			if a.printer.Format() != output.FormatText {
				return a.printer.Render(map[string]interface{}{
					"postProcessing": finishing,
					"assembly":       assembly,
				}, func(io.Writer) {})
			}
			if err := a.printer.PostProcessingTasks(finishing); err != nil {
				return err
			}
			return a.printer.AssemblyTasks(assembly)
		},
	}
}

func newLowStockCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "low-stock",
		Short:   "Show everything below its low-stock threshold",
		Aliases: []string{"low"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			report, err := svc.GetLowStock(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.LowStock(report)
		},
	}
}

func newDashboardCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Short:   "Show a summary of the shop floor",
		Aliases: []string{"status"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			dash, err := svc.GetDashboard(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.Dashboard(dash)
		},
	}
}

func newBufferCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buffer",
		Short: "Show or change the target number of ready products",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Show the target buffer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			n, err := svc.GetTargetProductsBuffer(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.Message(map[string]int{"targetProductsBuffer": n}, "Target buffer: %d products", n)
		},
	}

	set := &cobra.Command{
		Use:   "set <n>",
		Short: "Change the target buffer (1 to 50)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return &entities.ValidationError{
					Detail: "target products buffer must be a whole number",
					Fields: map[string]string{"targetProductsBuffer": args[0]},
				}
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.SetTargetProductsBuffer(cmd.Context(), n); err != nil {
				return err
			}
			return a.printer.Message(map[string]int{"targetProductsBuffer": n}, "✅ Target buffer set to %d products", n)
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}

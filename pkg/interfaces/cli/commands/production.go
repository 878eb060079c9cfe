package commands

import (
	"github.com/spf13/cobra"
)

func newPrintCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "print <component> <count>",
		Short: "Record freshly printed units",
		Long: `Record freshly printed units of a component. Units that need
post-processing go to the pending pile; the rest are ready straight away.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := parseCount("count", args[1])
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			view, err := svc.RecordPrint(cmd.Context(), args[0], count)
			if err != nil {
				return err
			}
			return a.printer.Message(view, "🖨️  %s: %d ready, %d pending", view.Name, view.Completed, view.Pending)
		},
	}
}

func newPostProcessCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "post-process <component> <count>",
		Short:   "Move finished units from pending to ready",
		Aliases: []string{"finish"},
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := parseCount("count", args[1])
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			view, err := svc.CompletePostProcessing(cmd.Context(), args[0], count)
			if err != nil {
				return err
			}
			return a.printer.Message(view, "🧽 %s: %d ready, %d pending", view.Name, view.Completed, view.Pending)
		},
	}
}

func newAssembleCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Assemble parts or products from stock",
	}

	part := &cobra.Command{
		Use:   "part <part> <count>",
		Short: "Assemble parts, consuming their components",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := parseCount("count", args[1])
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			view, err := svc.AssemblePart(cmd.Context(), args[0], count)
			if err != nil {
				return err
			}
			return a.printer.Message(view, "🔩 %s: %d assembled, %d available", view.Name, view.Assembled, view.Available)
		},
	}

	product := &cobra.Command{
		Use:   "product <product> <count>",
		Short: "Assemble finished products, consuming parts and components",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := parseCount("count", args[1])
			if err != nil {
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			view, err := svc.AssembleProduct(cmd.Context(), args[0], count)
			if err != nil {
				return err
			}
			return a.printer.Message(view, "🏏 %s: %d in stock, %d more buildable", view.Name, view.Quantity, view.Capacity)
		},
	}

	cmd.AddCommand(part, product)
	return cmd
}

package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/shopfloor/pkg/domain/catalog"
	"github.com/vsinha/shopfloor/pkg/domain/entities"
	"github.com/vsinha/shopfloor/pkg/infrastructure/backup"
)

func newBackupCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or restore stock levels",
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Write every stock record to a JSON backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			doc, err := svc.ExportBackup(cmd.Context())
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("out")
			if path == "-" {
				return backup.Write(cmd.OutOrStdout(), doc)
			}
			if path == "" {
				path = backup.FileName(time.Now())
			}
			if err := backup.WriteFile(path, doc); err != nil {
				return err
			}
			return a.printer.Message(map[string]string{"file": path, "exportId": doc.ExportID},
				"💾 Backup written to %s", path)
		},
	}
	export.Flags().StringP("out", "o", "", "output file, or - for stdout (default inventory-backup-<date>.json)")

	restore := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Overwrite stock levels from a JSON backup",
		Long: `Overwrite stock levels from a JSON backup. Records are matched by id;
records the catalog no longer knows are skipped and reported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := backup.ReadFile(args[0])
			if err != nil {
				var validation *entities.ValidationError
				if errors.As(err, &validation) {
					if missing := backup.MissingKeys(validation); len(missing) > 0 {
						return fmt.Errorf("%s: missing %v", validation.Detail, missing)
					}
				}
				return err
			}

			ok, err := confirm(cmd, fmt.Sprintf("Overwrite current stock with the backup from %s", doc.ExportDate.Format("2006-01-02")))
			if err != nil || !ok {
				if err == nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "Import aborted.")
				}
				return err
			}

			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := svc.ImportBackup(cmd.Context(), doc)
			if err != nil {
				return err
			}
			return a.printer.ImportSummary(summary)
		},
	}
	restore.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(export, restore)
	return cmd
}

func newResetCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Zero every stock level",
		Long:  "Zero every stock level. The bill of materials and settings are kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := confirm(cmd, "Zero all stock levels")
			if err != nil || !ok {
				if err == nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "Reset aborted.")
				}
				return err
			}
			svc, err := a.service(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.ResetAllData(cmd.Context()); err != nil {
				return err
			}
			return a.printer.Message(map[string]bool{"reset": true}, "🧹 All stock levels reset")
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	return cmd
}

// newCatalogCommand writes and checks catalog files. It never opens the
// store.
func newCatalogCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Write or check catalog definition files",
	}

	initCmd := &cobra.Command{
		Use:   "init <file.yaml>",
		Short: "Write the built-in catalog as a starting point for your own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(args[0]); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", args[0])
			}
			data, err := yaml.Marshal(catalog.CricketSetDefinition())
			if err != nil {
				return fmt.Errorf("failed to marshal catalog: %w", err)
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("failed to write catalog: %w", err)
			}
			return a.printer.Message(map[string]string{"file": args[0]}, "📝 Catalog written to %s", args[0])
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate <file.yaml>",
		Short: "Check a catalog file for errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}
			counts := map[string]int{
				"printed":   len(c.Items(entities.KindPrinted)),
				"purchased": len(c.Items(entities.KindPurchased)),
				"parts":     len(c.Items(entities.KindPart)),
				"products":  len(c.Items(entities.KindProduct)),
			}
			return a.printer.Message(counts, "✅ %s is valid: %d printed, %d purchased, %d parts, %d products",
				args[0], counts["printed"], counts["purchased"], counts["parts"], counts["products"])
		},
	}

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}

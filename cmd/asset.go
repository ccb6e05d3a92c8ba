package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"equipment-manager/core/reconcile"
	"equipment-manager/feature/assets"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importMode   string
	importDryRun bool
	yesConfirm   bool
)

// assetCmd shows one asset by code.
var assetCmd = &cobra.Command{
	Use:   "asset [code]",
	Short: "View the details of an asset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAssets(false, func(ctx context.Context, svc *assets.Service, l *zap.Logger) error {
			rec, err := svc.GetByCode(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Println("\n--- Asset Detail View ---")
			for _, k := range rec.Keys() {
				v, _ := rec.Get(k)
				fmt.Printf("%-20s %s\n", k+":", v.Text())
			}
			fmt.Println("-------------------------")
			return nil
		})
	},
}

// nextCodeCmd previews the next code without reserving it.
var nextCodeCmd = &cobra.Command{
	Use:   "next-code [kind]",
	Short: "Preview the next free code (EQ or GN)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := ""
		if len(args) == 1 {
			kind = args[0]
		}
		return withAssets(false, func(ctx context.Context, svc *assets.Service, l *zap.Logger) error {
			k, code, err := svc.PreviewNextCode(ctx, kind)
			if err != nil {
				return err
			}
			l.Info("Next code", zap.String("kind", string(k)), zap.String("code", code))
			fmt.Println(code)
			return nil
		})
	},
}

// importCmd applies a batch of parsed spreadsheet rows.
var importCmd = &cobra.Command{
	Use:   "import [rows.json]",
	Short: "Import a batch of spreadsheet rows",
	Long: `Imports a JSON array of row objects (column header to cell value).

The batch is always planned first. Applying it takes the store's writer
lock, so it cannot run while the server is running; use the server's
/api/import endpoint instead. In replace mode every asset whose code is
absent from the batch is removed, so confirmation is required.

Examples:
  # Merge (upsert by code)
  import rows.json

  # Plan only
  import rows.json --mode replace --dry-run

  # Replace without prompting
  import rows.json --mode replace --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := reconcile.ParseMode(importMode)
		if err != nil {
			return err
		}
		rows, err := readRows(args[0])
		if err != nil {
			return err
		}

		// Applying needs the writer lock, so it is refused while the server runs.
		return withAssets(!importDryRun, func(ctx context.Context, svc *assets.Service, l *zap.Logger) error {
			l.Info("Planning import...", zap.String("file", args[0]), zap.String("mode", string(mode)))
			plan, err := svc.ImportBatch(ctx, rows, mode, true)
			if err != nil {
				return fmt.Errorf("failed to plan import: %w", err)
			}
			printImportPlan(l, plan)

			if importDryRun {
				l.Info("Dry-run mode: No changes were made.")
				return nil
			}
			if mode == reconcile.ModeReplace && plan.Summary.Removed > 0 && !confirmDestructiveAction() {
				l.Warn("Operation cancelled by user. No changes were made.")
				return nil
			}

			plan, err = svc.ImportBatch(ctx, rows, mode, false)
			if err != nil {
				return fmt.Errorf("failed to apply import: %w", err)
			}
			l.Info("Import applied", zap.Stringer("summary", plan.Summary))
			return nil
		})
	},
}

func init() {
	importCmd.Flags().StringVar(&importMode, "mode", "merge", "Import mode: merge or replace")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Plan only, save nothing")
	importCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	RootCmd.AddCommand(assetCmd)
	RootCmd.AddCommand(nextCodeCmd)
	RootCmd.AddCommand(importCmd)
}

func withAssets(writer bool, fn func(ctx context.Context, svc *assets.Service, l *zap.Logger) error) error {
	rt, err := loadRuntime(writer)
	if err != nil {
		return err
	}
	defer rt.close()

	svc := assets.NewService(rt.coord, rt.client, rt.cfg.Storage, rt.recorder, rt.logger)
	return fn(context.Background(), svc, rt.logger)
}

func readRows(path string) ([]reconcile.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	var rows []reconcile.Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse rows: %w", err)
	}
	return rows, nil
}

// printImportPlan logs the summary and a sample of the planned actions.
func printImportPlan(l *zap.Logger, plan reconcile.Plan) {
	s := plan.Summary
	l.Info("Import plan",
		zap.String("mode", string(plan.Mode)),
		zap.Int("parsed", s.TotalParsed),
		zap.Int("imported", s.Imported),
		zap.Int("created", s.Created),
		zap.Int("updated", s.Updated),
		zap.Int("skipped", s.Skipped),
		zap.Int("removed", s.Removed),
	)

	maxShow := min(5, len(plan.Actions))
	for _, action := range plan.Actions[:maxShow] {
		l.Info("Sample action",
			zap.String("type", string(action.Type)),
			zap.String("code", action.Code),
			zap.String("reason", action.Reason),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\nAuto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\nType 'yes' to confirm removing assets: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"equipment-manager/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fixFlag  bool
	jsonFlag bool
)

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Run all integrity checks",
	Long:  `Checks the JSON document, the image bucket layout, stored images and the audit table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIntegrity(func(ctx context.Context, svc *integrity.Service, l *zap.Logger) error {
			report := svc.RunAll(ctx, fixFlag)
			if jsonFlag {
				return printJSON(report)
			}
			logStoreReport(l, report)
			if report.Healthy() {
				l.Info("All checks passed.")
			} else {
				l.Warn("Integrity problems detected.")
			}
			return nil
		})
	},
}

// storeCheckCmd represents the integrity store command
var storeCheckCmd = &cobra.Command{
	Use:   "store",
	Short: "Check the JSON document",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIntegrity(func(ctx context.Context, svc *integrity.Service, l *zap.Logger) error {
			r, err := svc.CheckStore()
			if err != nil {
				return err
			}
			if jsonFlag {
				return printJSON(r)
			}
			logStoreReport(l, &integrity.Report{Store: r})
			return nil
		})
	},
}

// storageCheckCmd represents the integrity storage command
var storageCheckCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and fix the image bucket layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIntegrity(func(ctx context.Context, svc *integrity.Service, l *zap.Logger) error {
			r, err := svc.CheckStorage(ctx)
			if err != nil {
				return err
			}
			if r.Status != "ok" {
				l.Warn("Storage layout incomplete",
					zap.String("bucket", r.Bucket),
					zap.Bool("bucket_exists", r.BucketExists),
					zap.Bool("prefix_present", r.PrefixPresent))
				if !fixFlag {
					l.Info("Run with --fix to create them.")
				} else if err := svc.FixStorage(ctx, r); err != nil {
					return err
				} else {
					l.Info("Storage layout fixed.")
				}
			} else {
				l.Info("Storage layout is intact.")
			}
			if jsonFlag {
				return printJSON(r)
			}
			return nil
		})
	},
}

// imagesCheckCmd represents the integrity images command
var imagesCheckCmd = &cobra.Command{
	Use:   "images",
	Short: "Compare asset image paths with stored images",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIntegrity(func(ctx context.Context, svc *integrity.Service, l *zap.Logger) error {
			r, err := svc.CheckImages(ctx)
			if err != nil {
				return err
			}
			if jsonFlag {
				return printJSON(r)
			}
			l.Info("Image report",
				zap.Int("referenced", r.Referenced),
				zap.Int("stored", r.Stored),
				zap.Strings("missing", r.Missing),
				zap.Strings("orphaned", r.Orphaned),
				zap.Strings("external", r.External))
			return nil
		})
	},
}

// auditCheckCmd represents the integrity audit command
var auditCheckCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check the audit table schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIntegrity(func(ctx context.Context, svc *integrity.Service, l *zap.Logger) error {
			r, err := svc.CheckAudit()
			if err != nil {
				return err
			}
			if jsonFlag {
				return printJSON(r)
			}
			switch r.Status {
			case "disabled":
				l.Info("Audit trail is disabled.")
			case "ok":
				l.Info("Audit table matches expected definition.", zap.String("table", r.Table))
			default:
				l.Warn("Audit table mismatches found",
					zap.String("table", r.Table),
					zap.Strings("missing_columns", r.MissingColumns),
					zap.Strings("type_mismatches", r.TypeMismatches),
					zap.Strings("errors", r.Errors))
			}
			return nil
		})
	},
}

func init() {
	integrityCmd.PersistentFlags().BoolVar(&fixFlag, "fix", false, "Create missing storage bucket or prefix")
	integrityCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Print the report as JSON")

	integrityCmd.AddCommand(storeCheckCmd)
	integrityCmd.AddCommand(storageCheckCmd)
	integrityCmd.AddCommand(imagesCheckCmd)
	integrityCmd.AddCommand(auditCheckCmd)
	RootCmd.AddCommand(integrityCmd)
}

func withIntegrity(fn func(ctx context.Context, svc *integrity.Service, l *zap.Logger) error) error {
	rt, err := loadRuntime(false)
	if err != nil {
		return err
	}
	defer rt.close()

	svc := integrity.NewService(rt.store, rt.coord, rt.client, rt.cfg.Storage, rt.db, rt.logger)
	return fn(context.Background(), svc, rt.logger)
}

func logStoreReport(l *zap.Logger, report *integrity.Report) {
	for name, msg := range report.Errors {
		l.Error("Check could not run", zap.String("check", name), zap.String("error", msg))
	}
	r := report.Store
	if r == nil {
		return
	}
	if len(r.Problems) == 0 {
		l.Info("Document is consistent.", zap.Int("assets", r.Assets), zap.Int("users", r.Users))
		return
	}
	for _, p := range r.Problems {
		l.Warn("Document problem",
			zap.String("kind", p.Kind),
			zap.String("subject", p.Subject),
			zap.String("detail", p.Detail))
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

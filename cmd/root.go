package cmd

import (
	"fmt"
	"os"

	"equipment-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configDir is where the .env file is looked up.
var configDir string

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "equipment-manager",
	Short: "Laboratory Equipment Manager",
	Long: `Equipment Manager keeps the laboratory asset register in a single JSON
document, serves it over HTTP and imports spreadsheet batches into it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	err := RootCmd.Execute()
	if err == nil {
		return
	}

	// Errors are reported on the console whatever log.format says.
	l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
	if logErr != nil {
		fmt.Fprintln(os.Stderr, err)
	} else {
		l.Error("command failed", zap.Error(err))
		_ = l.Sync()
	}
	os.Exit(1)
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "Directory holding the .env file")
}

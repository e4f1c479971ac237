package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/schools-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "schools-cli",
	Short: "Academic summer and winter school extraction pipeline",
	Long:  "Fetches curated school pages, extracts venue, dates, deadline, registration status and a short description with a language model, and keeps one record per school in a keyed store served by a read-only API.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

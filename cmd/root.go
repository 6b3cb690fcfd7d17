package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentreach/forecast-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "forecast-cli",
	Short: "Campaign performance forecasting engine",
	Long:  "Forecasts paid job-advertising campaigns: CPAS, conversions, spend pacing, and job-quality impact, calibrated against a historical reference dataset.",
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
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentreach/forecast-cli/pkg/predictor"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast CPAS and conversions for a campaign",
	Long: `Forecast projects CPAS, conversions, and spend for one campaign
configuration using the calibrated multiplicative model.

Examples:
  # Forecast a 30-day campaign
  forecast --budget 67416 --goal 13249 --start 2026-09-01 --end 2026-09-30

  # With a CPAS ceiling, as JSON
  forecast --budget 50000 --goal 10000 --start 2026-09-01 --end 2026-09-30 \
    --cpas-goal 6.50 --format json

  # Ask the remote prediction service instead of the local model
  forecast --budget 50000 --goal 10000 --start 2026-09-01 --end 2026-09-30 --remote`,
	RunE: runForecast,
}

func init() {
	addCampaignFlags(forecastCmd)
	forecastCmd.Flags().String("format", "text", "output format: text or json")
	forecastCmd.Flags().String("output", "", "output file path (default: stdout)")
	forecastCmd.Flags().Bool("remote", false, "query the remote prediction service")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	in, err := campaignFromFlags(cmd)
	if err != nil {
		return eris.Wrap(err, "forecast: invalid inputs")
	}

	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	remote, _ := cmd.Flags().GetBool("remote")

	if remote {
		client := predictor.NewClient(cfg.Predictor.BaseURL,
			predictor.WithRateLimit(cfg.Predictor.RequestsPerSec))
		resp, err := client.Forecast(cmd.Context(), predictor.ForecastRequest{
			Budget:         in.Budget,
			DurationWeeks:  weeksCovering(in.DurationDays()),
			StartDate:      in.StartDate.Format(dateLayout),
			EndDate:        in.EndDate.Format(dateLayout),
			ApplyStartGoal: in.ApplyStartGoal,
		})
		if err != nil {
			return err
		}
		if format == "json" {
			return writeJSON(resp, outputPath)
		}
		usd.Printf("Budget:         $%.2f\n", resp.Budget)
		usd.Printf("Projected CPAS: $%.2f\n", resp.CPAS)
		usd.Printf("Apply starts:   %d\n", resp.TotalApplyStarts)
		usd.Printf("Spend:          $%.2f\n", resp.TotalSpend)
		fmt.Printf("Confidence:     %.0f%%\n", float64(resp.Confidence)*100)
		return nil
	}

	m, err := buildModel()
	if err != nil {
		return err
	}

	result, err := m.Evaluate(in)
	if err != nil {
		return err
	}

	zap.L().Info("forecast complete",
		zap.Float64("budget", in.Budget),
		zap.Float64("projected_cpas", result.ProjectedCPAS),
		zap.Float64("projected_apply_starts", result.ProjectedApplyStarts),
	)

	if format == "json" {
		return writeJSON(result, outputPath)
	}
	printScenario(result)
	return nil
}

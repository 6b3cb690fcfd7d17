package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/talentreach/forecast-cli/internal/config"
	"github.com/talentreach/forecast-cli/internal/dataset"
	"github.com/talentreach/forecast-cli/internal/forecast"
	"github.com/talentreach/forecast-cli/internal/model"
	"github.com/talentreach/forecast-cli/internal/season"
)

const dateLayout = "2006-01-02"

// usd renders money and counts with thousands separators.
var usd = message.NewPrinter(language.AmericanEnglish)

// addCampaignFlags registers the shared campaign-input flags.
func addCampaignFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64("budget", 0, "campaign budget in dollars")
	f.Float64("goal", 0, "apply start goal")
	f.String("start", "", "campaign start date (YYYY-MM-DD)")
	f.String("end", "", "campaign end date (YYYY-MM-DD)")
	f.Float64("cpas-goal", 0, "optional CPAS ceiling")
	f.Int("job-count", 0, "optional number of job postings")
	_ = cmd.MarkFlagRequired("budget")
	_ = cmd.MarkFlagRequired("goal")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}

// campaignFromFlags parses the shared flags into validated inputs.
func campaignFromFlags(cmd *cobra.Command) (model.CampaignInputs, error) {
	var in model.CampaignInputs

	in.Budget, _ = cmd.Flags().GetFloat64("budget")
	in.ApplyStartGoal, _ = cmd.Flags().GetFloat64("goal")

	startStr, _ := cmd.Flags().GetString("start")
	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return in, eris.Wrapf(err, "parse --start %q", startStr)
	}
	in.StartDate = start

	endStr, _ := cmd.Flags().GetString("end")
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return in, eris.Wrapf(err, "parse --end %q", endStr)
	}
	in.EndDate = end

	if v, _ := cmd.Flags().GetFloat64("cpas-goal"); v > 0 {
		in.CPASGoal = &v
	}
	if v, _ := cmd.Flags().GetInt("job-count"); v > 0 {
		in.JobCount = &v
	}

	return in, in.Validate()
}

// weeksCovering converts a day count to the smallest whole number of
// weeks spanning it, never fewer than one.
func weeksCovering(days int) int {
	weeks := (days + 6) / 7
	if weeks < 1 {
		return 1
	}
	return weeks
}

// buildModel assembles the forecasting model from calibration and
// seasonality configuration.
func buildModel(opts ...forecast.Option) (*forecast.Model, error) {
	cal, err := config.LoadCalibration(cfg.Calibration.Path)
	if err != nil {
		return nil, err
	}
	seasons, err := season.NewTable(cal.Seasonality)
	if err != nil {
		return nil, err
	}
	return forecast.New(*cal, seasons, opts...)
}

// loadReference loads and aggregates the reference dataset.
func loadReference(ctx context.Context) (*dataset.Reference, error) {
	return dataset.Load(ctx, cfg.Dataset)
}

func printScenario(r *model.ScenarioResult) {
	if r.Name != "" {
		fmt.Printf("Scenario:       %s\n", r.Name)
	}
	usd.Printf("Budget:         $%.2f\n", r.Budget)
	usd.Printf("Projected CPAS: $%.2f\n", r.ProjectedCPAS)
	usd.Printf("Apply starts:   %.0f\n", r.ProjectedApplyStarts)
	usd.Printf("Spend:          $%.2f\n", r.ProjectedSpend)
	fmt.Printf("Days to goal:   %d\n", r.DaysToGoal)
	fmt.Printf("Confidence:     %.0f%%\n", r.Confidence*100)
	fmt.Printf("Seasonality:    %.2f\n", r.SeasonalityFactor)
	fmt.Printf("Goals:          cpas=%v apply_starts=%v budget_exhausted=%v\n",
		r.Goal.CPASGoalMet, r.Goal.ApplyStartGoalMet, r.Goal.BudgetExhausted)
}

// writeJSON prints v as indented JSON, to a file when path is set.
func writeJSON(v any, path string) error {
	w := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create output file %s", path)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/talentreach/forecast-cli/internal/model"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "Evaluate conservative, current-plan, and aggressive scenarios",
	Long: `Scenarios runs the budget-sensitivity set: the current plan plus a
conservative (80% budget) and an aggressive (125% budget) variant.

Examples:
  scenarios --budget 67416 --goal 13249 --start 2026-09-01 --end 2026-09-30
  scenarios --budget 50000 --goal 10000 --start 2026-09-01 --end 2026-09-30 --format json`,
	RunE: runScenarios,
}

func init() {
	addCampaignFlags(scenariosCmd)
	scenariosCmd.Flags().String("format", "table", "output format: table or json")
	scenariosCmd.Flags().String("output", "", "output file path (default: stdout)")
	rootCmd.AddCommand(scenariosCmd)
}

func runScenarios(cmd *cobra.Command, _ []string) error {
	in, err := campaignFromFlags(cmd)
	if err != nil {
		return eris.Wrap(err, "scenarios: invalid inputs")
	}

	m, err := buildModel()
	if err != nil {
		return err
	}

	set, err := m.EvaluateSet(in)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if format == "json" {
		return writeJSON(set, outputPath)
	}

	fmt.Printf("%-14s %14s %10s %14s %12s %11s\n",
		"Scenario", "Budget", "CPAS", "Apply Starts", "Days to Goal", "Confidence")
	for _, r := range []model.ScenarioResult{set.Conservative, set.CurrentPlan, set.Aggressive} {
		usd.Printf("%-14s %14s %10s %14s %12d %10.0f%%\n",
			string(r.Name),
			usd.Sprintf("$%.2f", r.Budget),
			usd.Sprintf("$%.2f", r.ProjectedCPAS),
			usd.Sprintf("%.0f", r.ProjectedApplyStarts),
			r.DaysToGoal,
			r.Confidence*100)
	}
	return nil
}

package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/talentreach/forecast-cli/internal/boundary"
)

var boundariesCmd = &cobra.Command{
	Use:   "boundaries",
	Short: "Show the achievable delivery envelope for a budget and duration",
	Long: `Boundaries reports the best and worst deliverable outcomes for a
budget/duration pair, built from the cheapest and priciest reference days.

Examples:
  boundaries --budget 50000 --duration 30
  boundaries --budget 50000 --duration 30 --format json`,
	RunE: runBoundaries,
}

func init() {
	f := boundariesCmd.Flags()
	f.Float64("budget", 0, "campaign budget in dollars")
	f.Int("duration", 0, "campaign duration in days")
	f.String("format", "text", "output format: text or json")
	f.String("output", "", "output file path (default: stdout)")
	_ = boundariesCmd.MarkFlagRequired("budget")
	_ = boundariesCmd.MarkFlagRequired("duration")
	rootCmd.AddCommand(boundariesCmd)
}

func runBoundaries(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	budget, _ := cmd.Flags().GetFloat64("budget")
	duration, _ := cmd.Flags().GetInt("duration")
	if budget <= 0 {
		return eris.New("boundaries: budget must be positive")
	}
	if duration <= 0 {
		return eris.New("boundaries: duration must be positive")
	}

	ref, err := loadReference(ctx)
	if err != nil {
		return err
	}

	env, err := boundary.Envelope(ref, budget, duration)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	if format == "json" {
		return writeJSON(env, outputPath)
	}

	usd.Printf("Budget:   $%.2f over %d days\n\n", env.Budget, env.DurationDays)
	usd.Printf("Best case:  %s apply starts, $%.2f spend, $%.2f CPAS\n",
		usd.Sprintf("%d", env.MaxApplyStarts), env.MaxSpend, env.MaxCPAS)
	usd.Printf("Worst case: %s apply starts, $%.2f spend, $%.2f CPAS\n",
		usd.Sprintf("%d", env.MinApplyStarts), env.MinSpend, env.MinCPAS)
	return nil
}

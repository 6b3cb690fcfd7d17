package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentreach/forecast-cli/internal/model"
	"github.com/talentreach/forecast-cli/internal/pacing"
)

var pacingCmd = &cobra.Command{
	Use:   "pacing",
	Short: "Expand a forecast into a daily pacing curve",
	Long: `Pacing projects an aggregate forecast onto a day-by-day curve shaped
by the reference month, with 7-day moving averages and weekday and
week-of-month rollups.

Examples:
  pacing --budget 67416 --goal 13249 --start 2026-09-01 --end 2026-09-30

  # Aggressive scenario as CSV
  pacing --budget 50000 --goal 10000 --start 2026-09-01 --end 2026-09-30 \
    --scenario aggressive --format csv --output pacing.csv`,
	RunE: runPacing,
}

func init() {
	addCampaignFlags(pacingCmd)
	pacingCmd.Flags().String("scenario", "current_plan", "scenario to expand: conservative, current_plan, or aggressive")
	pacingCmd.Flags().String("format", "table", "output format: table, csv, or json")
	pacingCmd.Flags().String("output", "", "output file path (default: stdout)")
	rootCmd.AddCommand(pacingCmd)
}

func runPacing(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	in, err := campaignFromFlags(cmd)
	if err != nil {
		return eris.Wrap(err, "pacing: invalid inputs")
	}

	scenarioName, _ := cmd.Flags().GetString("scenario")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	m, err := buildModel()
	if err != nil {
		return err
	}
	ref, err := loadReference(ctx)
	if err != nil {
		return err
	}

	set, err := m.EvaluateSet(in)
	if err != nil {
		return err
	}

	var scenario *model.ScenarioResult
	switch model.ScenarioName(scenarioName) {
	case model.ScenarioConservative:
		scenario = &set.Conservative
	case model.ScenarioCurrentPlan:
		scenario = &set.CurrentPlan
	case model.ScenarioAggressive:
		scenario = &set.Aggressive
	default:
		return eris.Errorf("pacing: unknown scenario %q", scenarioName)
	}

	curve, err := pacing.NewGenerator(ref, m.Seasons()).Curve(scenario)
	if err != nil {
		return err
	}

	zap.L().Info("pacing curve generated",
		zap.String("scenario", scenarioName),
		zap.Int("days", len(curve.Points)),
		zap.Float64("total_spend", curve.TotalSpend),
	)

	switch format {
	case "json":
		return writeJSON(curve, outputPath)
	case "csv":
		return outputPacingCSV(curve, outputPath)
	case "table":
		printPacingTable(curve)
		return nil
	default:
		return eris.Errorf("pacing: unsupported format %q", format)
	}
}

func printPacingTable(curve *model.PacingCurve) {
	fmt.Printf("%-4s %-12s %-10s %8s %12s %12s\n",
		"Day", "Date", "Weekday", "CPAS", "Apply Starts", "Spend")
	for _, p := range curve.Points {
		cpas := "-"
		if p.CPAS != nil {
			cpas = fmt.Sprintf("%.2f", *p.CPAS)
		}
		usd.Printf("%-4d %-12s %-10s %8s %12.1f %12s\n",
			p.Day, p.Date.Format(dateLayout), p.Weekday, cpas,
			p.ApplyStarts, usd.Sprintf("$%.2f", p.Spend))
	}

	fmt.Println("\nBy weekday:")
	printBuckets(curve.ByWeekday)
	fmt.Println("\nBy week of month:")
	printBuckets(curve.ByWeek)

	usd.Printf("\nTotal spend:        $%.2f\n", curve.TotalSpend)
	usd.Printf("Total apply starts: %.0f\n", curve.TotalStarts)
}

func printBuckets(buckets []model.PacingBucket) {
	for _, b := range buckets {
		cpas := "-"
		if b.CPAS != nil {
			cpas = fmt.Sprintf("%.2f", *b.CPAS)
		}
		usd.Printf("  %-10s %3d days  cpas=%-8s starts=%-10.1f spend=%s\n",
			b.Label, b.Days, cpas, b.ApplyStarts, usd.Sprintf("$%.2f", b.Spend))
	}
}

func outputPacingCSV(curve *model.PacingCurve, outputPath string) error {
	w := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return eris.Wrapf(err, "pacing: create output file %s", outputPath)
		}
		defer f.Close() //nolint:errcheck
		w = f
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"day", "date", "weekday", "week_of_month",
		"cpas", "cpas_ma7", "apply_starts", "apply_starts_ma7", "spend", "spend_ma7"}
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "pacing: write CSV header")
	}

	fmtOpt := func(v *float64) string {
		if v == nil {
			return ""
		}
		return fmt.Sprintf("%.4f", *v)
	}
	for _, p := range curve.Points {
		row := []string{
			fmt.Sprintf("%d", p.Day),
			p.Date.Format(dateLayout),
			p.Weekday,
			fmt.Sprintf("%d", p.WeekOfMonth),
			fmtOpt(p.CPAS),
			fmtOpt(p.CPASMovingAvg),
			fmt.Sprintf("%.4f", p.ApplyStarts),
			fmtOpt(p.ApplyStartsMovingAvg),
			fmt.Sprintf("%.4f", p.Spend),
			fmtOpt(p.SpendMovingAvg),
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "pacing: write CSV row")
		}
	}
	return nil
}

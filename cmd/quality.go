package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentreach/forecast-cli/internal/config"
	"github.com/talentreach/forecast-cli/internal/model"
	"github.com/talentreach/forecast-cli/internal/quality"
)

var qualityCmd = &cobra.Command{
	Use:   "quality",
	Short: "Score job postings and estimate the campaign impact of fixing them",
	Long: `Quality scores every reviewed job posting on four signals (title,
salary, phone-in-description, formatting) and reports the overall score.
With campaign flags it also projects the what-if-perfect-quality CPAS
and conversions, per-signal fix impact, and the optimal posting count.

Examples:
  # Score all reviewed jobs
  quality

  # Full impact projection for a campaign
  quality --budget 67416 --goal 13249 --start 2026-09-01 --end 2026-09-30`,
	RunE: runQuality,
}

func init() {
	f := qualityCmd.Flags()
	f.Float64("budget", 0, "campaign budget in dollars (enables impact projection)")
	f.Float64("goal", 0, "apply start goal")
	f.String("start", "", "campaign start date (YYYY-MM-DD)")
	f.String("end", "", "campaign end date (YYYY-MM-DD)")
	f.String("format", "table", "output format: table or json")
	f.String("output", "", "output file path (default: stdout)")
	rootCmd.AddCommand(qualityCmd)
}

// qualityReport is the JSON shape of the quality command output.
type qualityReport struct {
	OverallScore float64                      `json:"overall_quality_score"`
	Jobs         []quality.ScoredJob          `json:"jobs"`
	Impact       *model.QualityImpactEstimate `json:"impact,omitempty"`
	Signals      []quality.SignalImpact       `json:"signals,omitempty"`
	JobCount     *quality.JobCountAdvice      `json:"optimal_job_count,omitempty"`
}

func runQuality(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	records, err := quality.LoadRecords(ctx, cfg.Quality)
	if err != nil {
		return err
	}
	est, err := quality.NewEstimator(records)
	if err != nil {
		return err
	}

	report := qualityReport{
		OverallScore: est.OverallScore(),
		Jobs:         est.ScoredJobs(),
	}

	budget, _ := cmd.Flags().GetFloat64("budget")
	goal, _ := cmd.Flags().GetFloat64("goal")
	if budget > 0 && goal > 0 {
		if err := projectQualityImpact(cmd, est, &report, budget, goal); err != nil {
			return err
		}
	}

	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	if format == "json" {
		return writeJSON(report, outputPath)
	}
	printQualityReport(report)
	return nil
}

func projectQualityImpact(cmd *cobra.Command, est *quality.Estimator, report *qualityReport, budget, goal float64) error {
	startStr, _ := cmd.Flags().GetString("start")
	endStr, _ := cmd.Flags().GetString("end")
	start, err := time.Parse(dateLayout, startStr)
	if err != nil {
		return eris.Wrapf(err, "parse --start %q", startStr)
	}
	end, err := time.Parse(dateLayout, endStr)
	if err != nil {
		return eris.Wrapf(err, "parse --end %q", endStr)
	}
	in := model.CampaignInputs{Budget: budget, ApplyStartGoal: goal, StartDate: start, EndDate: end}
	if err := in.Validate(); err != nil {
		return eris.Wrap(err, "quality: invalid campaign inputs")
	}

	m, err := buildModel()
	if err != nil {
		return err
	}
	ref, err := loadReference(cmd.Context())
	if err != nil {
		return err
	}

	base, err := m.Evaluate(in)
	if err != nil {
		return err
	}

	factors := est.FitFactors(ref.Jobs())
	impact := est.Estimate(
		base.ProjectedCPAS*factors.CPASCurrent,
		base.ProjectedCPAS*factors.CPASPerfect,
		base.ProjectedApplyStarts*factors.ApplyStartsCurrent,
		base.ProjectedApplyStarts*factors.ApplyStartsPerfect,
	)
	report.Impact = &impact

	for _, sig := range quality.Signals {
		report.Signals = append(report.Signals, est.WhatIf(impact, sig))
	}

	cal, err := config.LoadCalibration(cfg.Calibration.Path)
	if err != nil {
		return err
	}
	advice := quality.OptimalJobCount(ref.Jobs(), budget, goal, in.DurationDays(), cal.ReferenceDurationDays)
	report.JobCount = &advice

	zap.L().Info("quality impact projected",
		zap.Float64("overall_score", report.OverallScore),
		zap.Float64("cpas_current", impact.CPASCurrent),
		zap.Float64("cpas_if_perfect", impact.CPASIfPerfectQuality),
	)
	return nil
}

func printQualityReport(report qualityReport) {
	fmt.Printf("%-10s %-45s %6s\n", "Req ID", "Title", "Score")
	for _, j := range report.Jobs {
		title := j.Title
		if len(title) > 45 {
			title = title[:42] + "..."
		}
		fmt.Printf("%-10s %-45s %6.1f\n", j.RequisitionID, title, j.Score)
	}
	fmt.Printf("\nOverall quality score: %.1f / 100 across %d jobs\n",
		report.OverallScore, len(report.Jobs))

	if report.Impact != nil {
		imp := report.Impact
		usd.Printf("\nCPAS current:          $%.2f\n", imp.CPASCurrent)
		usd.Printf("CPAS if perfect:       $%.2f\n", imp.CPASIfPerfectQuality)
		usd.Printf("Apply starts current:  %.0f\n", imp.ApplyStartsCurrent)
		usd.Printf("Apply starts perfect:  %.0f\n", imp.ApplyStartsIfPerfectQuality)

		fmt.Println("\nPer-signal fix impact:")
		for _, s := range report.Signals {
			usd.Printf("  %-24s score %5.1f  cpas $%.2f  starts %.0f\n",
				string(s.Signal), s.SimulatedScore, s.CPAS, s.ApplyStarts)
		}
	}
	if report.JobCount != nil {
		fmt.Printf("\nOptimal job count: %d\n%s\n", report.JobCount.Count, report.JobCount.Reason)
	}
}

// Package pacing expands aggregate forecasts into daily and bucketed
// series shaped by the reference dataset.
package pacing

import (
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/talentreach/forecast-cli/internal/dataset"
	"github.com/talentreach/forecast-cli/internal/model"
	"github.com/talentreach/forecast-cli/internal/season"
)

// movingAvgWindow is the trailing window length for smoothed series.
const movingAvgWindow = 7

// Generator projects aggregate scenario results onto the temporal shape
// of the reference dataset: history supplies which days run high or low,
// the scenario supplies the absolute magnitude.
type Generator struct {
	ref     *dataset.Reference
	seasons season.Table
}

// NewGenerator creates a pacing generator over the reference dataset.
func NewGenerator(ref *dataset.Reference, seasons season.Table) *Generator {
	return &Generator{ref: ref, seasons: seasons}
}

// mappedDay is one campaign day with its reference-dataset lookup.
type mappedDay struct {
	date    time.Time
	stat    model.DailyStat
	present bool
	adjCPAS float64 // historical CPAS adjusted by the campaign's seasonality
}

// Curve expands a scenario into the daily pacing series, its cumulative
// spend trend, and day-of-week / week-of-month rollups.
func (g *Generator) Curve(scenario *model.ScenarioResult) (*model.PacingCurve, error) {
	if scenario == nil {
		return nil, eris.New("pacing: nil scenario")
	}
	days := int(scenario.EndDate.Sub(scenario.StartDate).Hours()/24) + 1
	if days < 1 {
		return nil, eris.New("pacing: scenario window is empty")
	}

	seasonFactor := g.seasons.Factor(scenario.StartDate.Month())
	lastDay := g.ref.LastDay()

	// Map each campaign day onto the reference month by day-of-month,
	// clamping past the reference month's populated range.
	mapped := make([]mappedDay, days)
	var histStarts, histSpend float64
	for i := 0; i < days; i++ {
		date := scenario.StartDate.AddDate(0, 0, i)
		day := date.Day()
		if day > lastDay {
			day = lastDay
		}
		stat, ok := g.ref.DayStat(day)
		mapped[i] = mappedDay{date: date, stat: stat, present: ok}
		if ok {
			mapped[i].adjCPAS = stat.CPAS * seasonFactor
			histStarts += float64(stat.ApplyStarts)
			histSpend += stat.Spend
		}
	}

	// Per-metric scaling factors pin the scaled series to the aggregate
	// projections. Degenerate sums fall back to 1.0, never divide by zero.
	startsScale := safeScale(scenario.ProjectedApplyStarts, histStarts)
	spendScale := safeScale(scenario.ProjectedSpend, histSpend)
	cpasScale := 1.0
	if startsScale > 0 {
		cpasScale = spendScale / startsScale
	}

	curve := &model.PacingCurve{
		Points: make([]model.PacingPoint, days),
	}

	for i, md := range mapped {
		p := model.PacingPoint{
			Day:         i + 1,
			Date:        md.date,
			Weekday:     md.date.Weekday().String(),
			WeekOfMonth: model.WeekOfMonth(md.date),
		}
		if md.present {
			cpas := md.adjCPAS * cpasScale
			p.CPAS = &cpas
			p.ApplyStarts = float64(md.stat.ApplyStarts) * startsScale
			p.Spend = md.stat.Spend * spendScale
			curve.TotalStarts += p.ApplyStarts
			curve.TotalSpend += p.Spend
		}
		curve.Points[i] = p
	}

	attachMovingAverages(curve.Points, mapped)
	curve.Trends = g.trends(scenario, mapped)
	curve.ByWeekday = rollupWeekday(mapped, startsScale, spendScale, cpasScale)
	curve.ByWeek = rollupWeekOfMonth(mapped, startsScale, spendScale, cpasScale)

	zap.L().Debug("pacing: curve generated",
		zap.Int("days", days),
		zap.Float64("total_spend", curve.TotalSpend),
		zap.Float64("total_apply_starts", curve.TotalStarts),
		zap.Float64("starts_scale", startsScale),
		zap.Float64("spend_scale", spendScale),
	)

	return curve, nil
}

func safeScale(target, histSum float64) float64 {
	if histSum <= 0 || target <= 0 {
		return 1.0
	}
	return target / histSum
}

// attachMovingAverages computes trailing 7-point averages per metric,
// skipping days without reference data. A window with no data yields an
// absent average, not zero.
func attachMovingAverages(points []model.PacingPoint, mapped []mappedDay) {
	for i := range points {
		lo := i - (movingAvgWindow - 1)
		if lo < 0 {
			lo = 0
		}

		var cpasSum, startsSum, spendSum float64
		n := 0
		for j := lo; j <= i; j++ {
			if !mapped[j].present {
				continue
			}
			cpasSum += derefOrZero(points[j].CPAS)
			startsSum += points[j].ApplyStarts
			spendSum += points[j].Spend
			n++
		}
		if n == 0 {
			continue
		}

		cpasAvg := cpasSum / float64(n)
		startsAvg := startsSum / float64(n)
		spendAvg := spendSum / float64(n)
		points[i].CPASMovingAvg = &cpasAvg
		points[i].ApplyStartsMovingAvg = &startsAvg
		points[i].SpendMovingAvg = &spendAvg
	}
}

func derefOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// trends builds the cumulative-spend pacing view: every day gets a
// normalized share of the projected spend, with a uniform 1/30 prior for
// days the reference month does not cover.
func (g *Generator) trends(scenario *model.ScenarioResult, mapped []mappedDay) []model.PacingTrend {
	refTotal := 0.0
	for _, d := range g.ref.Daily() {
		if d.Date.Month() == g.ref.ReferenceMonth() && d.Date.Year() == g.ref.ReferenceYear() {
			refTotal += d.Spend
		}
	}

	shares := make([]float64, len(mapped))
	var shareSum float64
	for i, md := range mapped {
		share := 1.0 / 30
		if md.present && refTotal > 0 {
			share = md.stat.Spend / refTotal
		}
		shares[i] = share
		shareSum += share
	}

	trends := make([]model.PacingTrend, len(mapped))
	cumulative := 0.0
	for i, md := range mapped {
		daily := 0.0
		if shareSum > 0 {
			daily = scenario.ProjectedSpend * shares[i] / shareSum
		}
		cumulative += daily
		trends[i] = model.PacingTrend{
			Day:             i + 1,
			Date:            md.date,
			DailySpend:      daily,
			CumulativeSpend: cumulative,
		}
	}
	return trends
}

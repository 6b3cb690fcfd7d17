// Package forecast implements the closed-form campaign forecasting model.
package forecast

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/talentreach/forecast-cli/internal/config"
	"github.com/talentreach/forecast-cli/internal/model"
	"github.com/talentreach/forecast-cli/internal/season"
)

// Model projects CPAS and conversions as a product of multiplicative
// factors applied to a historically-calibrated base rate. It is pure and
// deterministic: identical inputs produce identical results.
type Model struct {
	cal     config.Calibration
	seasons season.Table

	// Derived once from the reference campaign's achieved results.
	achievedCPAS      float64
	targetCPASForRF   float64
	rfStatic          float64
	basePredictedCPAS float64

	qualityImpact float64
}

// Option configures a Model.
type Option func(*Model)

// WithQualityImpact overrides the neutral 1.0 quality factor, letting the
// quality estimator feed its multiplier into the formula.
func WithQualityImpact(f float64) Option {
	return func(m *Model) {
		if f > 0 {
			m.qualityImpact = f
		}
	}
}

// New builds a Model from calibration constants and a seasonality table.
func New(cal config.Calibration, seasons season.Table, opts ...Option) (*Model, error) {
	if err := cal.Validate(); err != nil {
		return nil, err
	}

	m := &Model{
		cal:           cal,
		seasons:       seasons,
		qualityImpact: 1.0,
	}
	m.achievedCPAS = cal.ReferenceAchievedSpend / cal.ReferenceAchievedConversions
	m.targetCPASForRF = cal.ReferenceBudget / cal.ReferenceHistoricalGoal
	m.rfStatic = m.achievedCPAS / m.targetCPASForRF
	m.basePredictedCPAS = m.achievedCPAS * m.rfStatic

	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// BasePredictedCPAS returns the calibrated base rate the scenario factors
// multiply.
func (m *Model) BasePredictedCPAS() float64 { return m.basePredictedCPAS }

// Seasons returns the seasonality table the model was built with.
func (m *Model) Seasons() season.Table { return m.seasons }

// Evaluate runs one scenario through the forecasting formula. Inputs are
// validated first; no partial state is produced on rejection.
func (m *Model) Evaluate(in model.CampaignInputs) (*model.ScenarioResult, error) {
	if err := in.Validate(); err != nil {
		return nil, eris.Wrap(err, "forecast: invalid inputs")
	}

	durationDays := in.DurationDays()
	seasonality := m.seasons.Factor(in.StartDate.Month())

	durationImpact := math.Pow(float64(m.cal.ReferenceDurationDays)/float64(durationDays), m.cal.Alpha)
	budgetSensitivity := math.Pow(in.Budget/m.cal.ReferenceBudget, m.cal.Gamma)
	goalSensitivity := math.Pow(in.ApplyStartGoal/m.cal.ReferenceHistoricalGoal, m.cal.Delta)

	projectedCPAS := m.basePredictedCPAS * durationImpact * budgetSensitivity *
		goalSensitivity * m.qualityImpact * seasonality

	var projectedStarts, projectedSpend float64
	if projectedCPAS > 0 {
		projectedStarts = in.Budget / projectedCPAS
		projectedSpend = in.Budget
	}

	result := &model.ScenarioResult{
		Budget:               in.Budget,
		ProjectedCPAS:        projectedCPAS,
		ProjectedApplyStarts: projectedStarts,
		ProjectedSpend:       projectedSpend,
		DaysToGoal:           daysToGoal(in.ApplyStartGoal, projectedStarts, durationDays),
		Confidence:           m.confidence(in, durationDays),
		SeasonalityFactor:    seasonality,
		StartDate:            in.StartDate,
		EndDate:              in.EndDate,
	}

	result.Goal = model.GoalStatus{
		CPASGoalMet:       in.CPASGoal == nil || projectedCPAS <= *in.CPASGoal,
		ApplyStartGoalMet: projectedStarts >= in.ApplyStartGoal,
		BudgetExhausted:   projectedSpend >= 0.95*in.Budget,
	}

	zap.L().Debug("forecast: scenario evaluated",
		zap.Float64("budget", in.Budget),
		zap.Int("duration_days", durationDays),
		zap.Float64("projected_cpas", projectedCPAS),
		zap.Float64("projected_apply_starts", projectedStarts),
		zap.Float64("seasonality", seasonality),
	)

	return result, nil
}

// daysToGoal estimates how long the projected daily rate needs to reach
// the goal, never reporting faster than the 7-day minimum or the stated
// campaign length.
func daysToGoal(goal, projectedStarts float64, durationDays int) int {
	floor := durationDays
	if floor < model.MinDurationDays {
		floor = model.MinDurationDays
	}
	if projectedStarts <= 0 || durationDays <= 0 {
		return floor
	}
	dailyRate := projectedStarts / float64(durationDays)
	days := int(math.Ceil(goal / dailyRate))
	if days < floor {
		return floor
	}
	return days
}

// confidence estimates forecast reliability from how far the scenario
// strays from the calibrated reference campaign.
func (m *Model) confidence(in model.CampaignInputs, durationDays int) float64 {
	conf := 0.95

	budgetRatio := in.Budget / m.cal.ReferenceBudget
	if budgetRatio < 0.5 || budgetRatio > 2.0 {
		conf -= 0.05
	}
	durationRatio := float64(durationDays) / float64(m.cal.ReferenceDurationDays)
	if durationRatio < 0.5 || durationRatio > 2.0 {
		conf -= 0.05
	}
	if m.seasons.Factor(in.StartDate.Month()) != 1.0 {
		conf -= 0.02
	}

	return math.Max(0.75, conf)
}

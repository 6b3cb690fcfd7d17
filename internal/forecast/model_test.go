package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentreach/forecast-cli/internal/config"
	"github.com/talentreach/forecast-cli/internal/model"
	"github.com/talentreach/forecast-cli/internal/season"
)

func newTestModel(t *testing.T, opts ...Option) *Model {
	t.Helper()
	m, err := New(config.DefaultCalibration(), season.DefaultTable(), opts...)
	require.NoError(t, err)
	return m
}

func referenceInputs() model.CampaignInputs {
	// Mirrors the reference campaign: June start, 30 days, reference
	// budget and goal, so every sensitivity factor is exactly 1.0.
	return model.CampaignInputs{
		Budget:         67416.00,
		ApplyStartGoal: 13249,
		StartDate:      time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestReferenceCampaignProjection(t *testing.T) {
	m := newTestModel(t)

	// achievedCPAS    = 65366.24 / 11098.0  ≈ 5.8902
	// targetCPASForRF = 67416.00 / 13249.0  ≈ 5.0883
	// rfStatic        = 5.8902 / 5.0883     ≈ 1.1576
	// base            = 5.8902 * 1.1576     ≈ 6.818
	assert.InDelta(t, 6.818, m.BasePredictedCPAS(), 0.01)

	result, err := m.Evaluate(referenceInputs())
	require.NoError(t, err)

	// All factors 1.0 at the reference point, so CPAS = base.
	assert.InDelta(t, 6.818, result.ProjectedCPAS, 0.01)
	// 67416 / 6.818 ≈ 9884
	assert.InDelta(t, 9884, result.ProjectedApplyStarts, 15)
	assert.InDelta(t, 67416.00, result.ProjectedSpend, 1e-9)
	assert.InDelta(t, 1.0, result.SeasonalityFactor, 1e-9)
}

func TestEvaluateRejectsInvalidInputs(t *testing.T) {
	m := newTestModel(t)

	in := referenceInputs()
	in.Budget = -1
	_, err := m.Evaluate(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budget must be positive")
}

func TestBudgetMonotonicity(t *testing.T) {
	m := newTestModel(t)

	var prev float64
	for _, budget := range []float64{10000, 25000, 50000, 67416, 100000, 250000} {
		in := referenceInputs()
		in.Budget = budget
		result, err := m.Evaluate(in)
		require.NoError(t, err)
		assert.Greater(t, result.ProjectedApplyStarts, prev,
			"conversions must rise with budget (budget %.0f)", budget)
		prev = result.ProjectedApplyStarts
	}
}

func TestDeterminism(t *testing.T) {
	m := newTestModel(t)
	in := referenceInputs()
	in.Budget = 43210.99

	a, err := m.Evaluate(in)
	require.NoError(t, err)
	b, err := m.Evaluate(in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSeasonalityScalesCPAS(t *testing.T) {
	m := newTestModel(t)

	june := referenceInputs()
	december := referenceInputs()
	december.StartDate = time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	december.EndDate = time.Date(2025, time.December, 30, 0, 0, 0, 0, time.UTC)

	jr, err := m.Evaluate(june)
	require.NoError(t, err)
	dr, err := m.Evaluate(december)
	require.NoError(t, err)

	// December factor is 0.80.
	assert.InDelta(t, jr.ProjectedCPAS*0.80, dr.ProjectedCPAS, 1e-9)
}

func TestQualityImpactOption(t *testing.T) {
	plain := newTestModel(t)
	boosted := newTestModel(t, WithQualityImpact(1.2))

	pr, err := plain.Evaluate(referenceInputs())
	require.NoError(t, err)
	br, err := boosted.Evaluate(referenceInputs())
	require.NoError(t, err)

	assert.InDelta(t, pr.ProjectedCPAS*1.2, br.ProjectedCPAS, 1e-9)

	// Non-positive factors are ignored, not applied.
	ignored := newTestModel(t, WithQualityImpact(-1))
	ir, err := ignored.Evaluate(referenceInputs())
	require.NoError(t, err)
	assert.InDelta(t, pr.ProjectedCPAS, ir.ProjectedCPAS, 1e-9)
}

func TestDaysToGoalFlooredAtCampaignLength(t *testing.T) {
	m := newTestModel(t)

	// Goal tiny relative to delivery: days-to-goal still reports the
	// campaign length, never an unrealistic sprint.
	in := referenceInputs()
	in.ApplyStartGoal = 10
	result, err := m.Evaluate(in)
	require.NoError(t, err)
	assert.Equal(t, 30, result.DaysToGoal)

	// Goal far beyond delivery extends past the campaign.
	in.ApplyStartGoal = 100000
	result, err = m.Evaluate(in)
	require.NoError(t, err)
	assert.Greater(t, result.DaysToGoal, 30)
}

func TestGoalStatusFlags(t *testing.T) {
	m := newTestModel(t)

	in := referenceInputs()
	result, err := m.Evaluate(in)
	require.NoError(t, err)

	// No CPAS ceiling given: trivially met.
	assert.True(t, result.Goal.CPASGoalMet)
	// ~9884 projected < 13249 goal.
	assert.False(t, result.Goal.ApplyStartGoalMet)
	assert.True(t, result.Goal.BudgetExhausted)

	ceiling := 5.0
	in.CPASGoal = &ceiling
	result, err = m.Evaluate(in)
	require.NoError(t, err)
	// Projected ≈6.82 exceeds the $5 ceiling.
	assert.False(t, result.Goal.CPASGoalMet)
}

func TestConfidenceDegradesAwayFromReference(t *testing.T) {
	m := newTestModel(t)

	at, err := m.Evaluate(referenceInputs())
	require.NoError(t, err)
	assert.InDelta(t, 0.95, at.Confidence, 1e-9)

	far := referenceInputs()
	far.Budget = 500000 // ratio > 2
	far.StartDate = time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC)
	far.EndDate = far.StartDate.AddDate(0, 0, 89) // ratio 3
	result, err := m.Evaluate(far)
	require.NoError(t, err)
	assert.Less(t, result.Confidence, at.Confidence)
	assert.GreaterOrEqual(t, result.Confidence, 0.75)
}

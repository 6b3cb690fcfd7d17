package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentreach/forecast-cli/internal/model"
)

func reviewedJobs() []model.JobQualityRecord {
	perfect := model.JobQualityRecord{
		RequisitionID:        "REQ-1",
		TitleAppropriate:     model.AnswerYes,
		SalaryMentioned:      model.AnswerYes,
		PhoneInDescription:   model.AnswerNo,
		DescriptionFormatted: model.AnswerYes,
	} // 100
	middling := model.JobQualityRecord{
		RequisitionID:        "REQ-2",
		TitleAppropriate:     model.AnswerPartially,
		SalaryMentioned:      model.AnswerYes,
		PhoneInDescription:   model.AnswerYes,
		DescriptionFormatted: model.AnswerPartially,
	} // 50
	poor := model.JobQualityRecord{
		RequisitionID:        "REQ-3",
		TitleAppropriate:     model.AnswerNo,
		SalaryMentioned:      model.AnswerNo,
		PhoneInDescription:   model.AnswerYes,
		DescriptionFormatted: model.AnswerNo,
	} // 0
	return []model.JobQualityRecord{perfect, middling, poor}
}

func TestNewEstimatorOverallScore(t *testing.T) {
	est, err := NewEstimator(reviewedJobs())
	require.NoError(t, err)

	// (100 + 50 + 0) / 3 = 50.
	assert.InDelta(t, 50.0, est.OverallScore(), 1e-9)

	scored := est.ScoredJobs()
	require.Len(t, scored, 3)
	assert.InDelta(t, 100.0, scored[0].Score, 1e-9)
	assert.InDelta(t, 0.0, scored[2].Score, 1e-9)
}

func TestNewEstimatorRejectsEmpty(t *testing.T) {
	_, err := NewEstimator(nil)
	require.Error(t, err)
}

func TestEstimateClampsPerfectCPAS(t *testing.T) {
	est, err := NewEstimator(reviewedJobs())
	require.NoError(t, err)

	// Perfect worse than current triggers the 0.85 clamp.
	e := est.Estimate(10.0, 12.0, 1000, 1200)
	assert.InDelta(t, 10.0*0.85, e.CPASIfPerfectQuality, 1e-9)

	// Perfect better than current passes through unchanged.
	e = est.Estimate(10.0, 8.0, 1000, 1200)
	assert.InDelta(t, 8.0, e.CPASIfPerfectQuality, 1e-9)
}

func TestLinearInterpolation(t *testing.T) {
	est, err := NewEstimator(reviewedJobs())
	require.NoError(t, err)

	e := est.Estimate(10.0, 8.0, 1000, 1250)
	// slope = (8 - 10) / (100 - 50) = -0.04 per score point.
	// At score 75: 10 + (-0.04)*(75-50) = 9.
	assert.InDelta(t, 9.0, est.ImprovedCPAS(e, 75), 1e-9)
	// starts slope = (1250 - 1000) / 50 = 5; at 75: 1000 + 5*25 = 1125.
	assert.InDelta(t, 1125.0, est.ImprovedApplyStarts(e, 75), 1e-9)
}

func TestQualityDegeneracyAtPerfectScore(t *testing.T) {
	perfect := model.JobQualityRecord{
		TitleAppropriate:     model.AnswerYes,
		SalaryMentioned:      model.AnswerYes,
		PhoneInDescription:   model.AnswerNo,
		DescriptionFormatted: model.AnswerYes,
	}
	est, err := NewEstimator([]model.JobQualityRecord{perfect, perfect})
	require.NoError(t, err)
	require.InDelta(t, 100.0, est.OverallScore(), 1e-9)

	e := est.Estimate(10.0, 8.0, 1000, 1250)

	// Slope is undefined at a perfect score: no simulated combination may
	// report an improvement.
	for _, simulated := range []float64{0, 25, 50, 75, 100} {
		assert.Equal(t, e.CPASCurrent, est.ImprovedCPAS(e, simulated))
		assert.Equal(t, e.ApplyStartsCurrent, est.ImprovedApplyStarts(e, simulated))
	}
	for _, sig := range Signals {
		impact := est.WhatIf(e, sig)
		assert.Equal(t, e.CPASCurrent, impact.CPAS, "signal %s", sig)
	}
}

func TestWhatIfSignal(t *testing.T) {
	est, err := NewEstimator(reviewedJobs())
	require.NoError(t, err)

	e := est.Estimate(10.0, 8.0, 1000, 1250)

	// Forcing salary to yes lifts only the poor job (+25): scores become
	// 100, 50, 25 → mean 58.33.
	impact := est.WhatIf(e, SignalSalary)
	assert.InDelta(t, 58.3, impact.SimulatedScore, 0.05)
	// Better score means lower CPAS and more conversions.
	assert.Less(t, impact.CPAS, e.CPASCurrent)
	assert.Greater(t, impact.ApplyStarts, e.ApplyStartsCurrent)
}

func TestOptimalJobCount(t *testing.T) {
	jobs := []model.JobStat{
		{JobRef: "REQ-1", Spend: 1000, ApplyStarts: 100},
		{JobRef: "REQ-2", Spend: 1000, ApplyStarts: 100},
		{JobRef: "REQ-3", Spend: 1000, ApplyStarts: 100},
	}

	// avg spend/job 1000, avg starts/job 100.
	// byBudget = 5000/1000 = 5; byGoal = 250/100 = 2; byDuration = 3*30/30 = 3.
	advice := OptimalJobCount(jobs, 5000, 250, 30, 30)
	assert.Equal(t, 2, advice.Count)
	assert.Contains(t, advice.Reason, "Limited by goal")

	// Budget-bound: byBudget = 1500/1000 = 1.
	advice = OptimalJobCount(jobs, 1500, 1000, 30, 30)
	assert.Equal(t, 1, advice.Count)
	assert.Contains(t, advice.Reason, "Limited by budget")
	// 1 job delivers 100 starts, below the 1000 goal.
	assert.Contains(t, advice.Reason, "below the goal")

	// Duration-bound: 15-day campaign fits 3*15/30 = 1 job.
	advice = OptimalJobCount(jobs, 100000, 10000, 15, 30)
	assert.Equal(t, 1, advice.Count)

	// No reference data defaults to a single posting.
	advice = OptimalJobCount(nil, 5000, 250, 30, 30)
	assert.Equal(t, 1, advice.Count)
}

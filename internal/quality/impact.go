package quality

import (
	"fmt"
	"math"

	"github.com/rotisserie/eris"

	"github.com/talentreach/forecast-cli/internal/model"
)

// perfectQualityClamp bounds the predicted perfect-quality CPAS: perfect
// quality must never look worse than the current state.
const perfectQualityClamp = 0.85

// Estimator answers what-if-quality questions for a set of reviewed jobs.
// The overall score is an unweighted mean across jobs, deliberately
// distinct from the campaign-level volume-weighted CPAS figures.
type Estimator struct {
	jobs    []model.JobQualityRecord
	scores  []float64
	overall float64
}

// NewEstimator scores the given jobs.
func NewEstimator(jobs []model.JobQualityRecord) (*Estimator, error) {
	if len(jobs) == 0 {
		return nil, eris.New("quality: no jobs to estimate")
	}

	e := &Estimator{jobs: jobs, scores: make([]float64, len(jobs))}
	var sum float64
	for i, j := range jobs {
		e.scores[i] = Score(j)
		sum += e.scores[i]
	}
	e.overall = sum / float64(len(jobs))
	return e, nil
}

// OverallScore returns the unweighted mean quality score, 0..100.
func (e *Estimator) OverallScore() float64 { return e.overall }

// ScoredJobs returns each job with its score.
func (e *Estimator) ScoredJobs() []ScoredJob {
	out := make([]ScoredJob, len(e.jobs))
	for i, j := range e.jobs {
		out[i] = ScoredJob{JobQualityRecord: j, Score: e.scores[i]}
	}
	return out
}

// Estimate combines the current aggregate baseline with the
// perfect-quality prediction, clamping a perfect CPAS that came out worse
// than current.
func (e *Estimator) Estimate(cpasCurrent, cpasPerfect, asCurrent, asPerfect float64) model.QualityImpactEstimate {
	if cpasPerfect > cpasCurrent {
		cpasPerfect = cpasCurrent * perfectQualityClamp
	}
	return model.QualityImpactEstimate{
		OverallQualityScore:         math.Round(e.overall*10) / 10,
		CPASCurrent:                 cpasCurrent,
		CPASIfPerfectQuality:        cpasPerfect,
		ApplyStartsCurrent:          asCurrent,
		ApplyStartsIfPerfectQuality: asPerfect,
	}
}

// ImprovedCPAS interpolates the CPAS at a simulated quality score,
// assuming a linear relationship between score and CPAS. At a perfect
// current score the slope is undefined and no improvement is possible.
func (e *Estimator) ImprovedCPAS(est model.QualityImpactEstimate, simulatedScore float64) float64 {
	if est.OverallQualityScore >= 100 {
		return est.CPASCurrent
	}
	slope := (est.CPASIfPerfectQuality - est.CPASCurrent) / (100 - est.OverallQualityScore)
	return est.CPASCurrent + slope*(simulatedScore-est.OverallQualityScore)
}

// ImprovedApplyStarts interpolates conversions the same way as CPAS.
func (e *Estimator) ImprovedApplyStarts(est model.QualityImpactEstimate, simulatedScore float64) float64 {
	if est.OverallQualityScore >= 100 {
		return est.ApplyStartsCurrent
	}
	slope := (est.ApplyStartsIfPerfectQuality - est.ApplyStartsCurrent) / (100 - est.OverallQualityScore)
	return est.ApplyStartsCurrent + slope*(simulatedScore-est.OverallQualityScore)
}

// SignalImpact is the what-if outcome of fixing one signal everywhere.
type SignalImpact struct {
	Signal         Signal  `json:"signal"`
	SimulatedScore float64 `json:"simulated_score"`
	CPAS           float64 `json:"cpas"`
	ApplyStarts    float64 `json:"apply_starts"`
}

// WhatIf recomputes every job's score with one signal forced to its best
// value and interpolates the resulting CPAS and conversions. No
// regression refit is needed.
func (e *Estimator) WhatIf(est model.QualityImpactEstimate, signal Signal) SignalImpact {
	var sum float64
	for _, j := range e.jobs {
		sum += scoreForced(j, signal)
	}
	simulated := sum / float64(len(e.jobs))

	return SignalImpact{
		Signal:         signal,
		SimulatedScore: math.Round(simulated*10) / 10,
		CPAS:           e.ImprovedCPAS(est, simulated),
		ApplyStarts:    e.ImprovedApplyStarts(est, simulated),
	}
}

// JobCountAdvice is the heuristic optimal posting count for a campaign.
type JobCountAdvice struct {
	Count  int    `json:"count"`
	Reason string `json:"reason"`
}

// OptimalJobCount picks the smallest of the budget-limited, goal-limited,
// and duration-limited posting counts, never below one.
func OptimalJobCount(jobs []model.JobStat, budget, asGoal float64, campaignDays, referenceDays int) JobCountAdvice {
	if len(jobs) == 0 || campaignDays <= 0 {
		return JobCountAdvice{Count: 1, Reason: "No per-job reference data; defaulting to a single posting"}
	}

	var totalSpend float64
	var totalStarts int
	for _, j := range jobs {
		totalSpend += j.Spend
		totalStarts += j.ApplyStarts
	}
	n := float64(len(jobs))
	avgSpendPerJob := totalSpend / n
	avgStartsPerJob := float64(totalStarts) / n

	byBudget := math.MaxInt
	if avgSpendPerJob > 0 {
		byBudget = int(budget / avgSpendPerJob)
	}
	byGoal := math.MaxInt
	if avgStartsPerJob > 0 {
		byGoal = int(asGoal / avgStartsPerJob)
	}
	byDuration := int(n * float64(campaignDays) / float64(referenceDays))
	if byDuration < 1 {
		byDuration = 1
	}

	count := min(byBudget, byGoal, byDuration)
	if count < 1 {
		count = 1
	}

	var reason string
	switch count {
	case byBudget:
		reason = fmt.Sprintf("Limited by budget: can afford %d jobs at $%.2f each", byBudget, avgSpendPerJob)
	case byGoal:
		reason = fmt.Sprintf("Limited by goal: need %d jobs to reach %.0f apply starts at %.1f per job", byGoal, asGoal, avgStartsPerJob)
	default:
		reason = fmt.Sprintf("Limited by duration: %d jobs fit a %d-day window", byDuration, campaignDays)
	}

	projected := float64(count) * avgStartsPerJob
	if projected < asGoal {
		reason += fmt.Sprintf(". Note: delivers about %.0f apply starts, below the goal of %.0f", projected, asGoal)
	}

	return JobCountAdvice{Count: count, Reason: reason}
}

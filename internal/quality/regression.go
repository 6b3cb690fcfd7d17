package quality

import (
	"github.com/talentreach/forecast-cli/internal/model"
)

// minFitPairs is the smallest sample a line fit is trusted on. Below it
// the factors stay neutral.
const minFitPairs = 3

// QualityFactors scale a baseline forecast for the observed and the
// perfect quality state. Neutral (1.0) when the fit is not trusted.
type QualityFactors struct {
	CPASCurrent        float64
	CPASPerfect        float64
	ApplyStartsCurrent float64
	ApplyStartsPerfect float64
}

// NeutralFactors returns factors that leave a baseline untouched.
func NeutralFactors() QualityFactors {
	return QualityFactors{CPASCurrent: 1, CPASPerfect: 1, ApplyStartsCurrent: 1, ApplyStartsPerfect: 1}
}

// lineFit is a closed-form least-squares line y = intercept + slope*x.
type lineFit struct {
	slope     float64
	intercept float64
}

func fitLine(xs, ys []float64) lineFit {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		// All scores identical: the line is flat at the mean.
		return lineFit{slope: 0, intercept: sumY / n}
	}
	slope := (n*sumXY - sumX*sumY) / denom
	return lineFit{slope: slope, intercept: (sumY - slope*sumX) / n}
}

func (f lineFit) at(x float64) float64 {
	return f.intercept + f.slope*x
}

// FitFactors pairs reviewed jobs with their reference performance and
// fits quality score against per-job CPAS and conversions, returning
// multiplicative factors relative to the per-job means. Jobs are matched
// by requisition reference; jobs without a match pair up positionally.
// Fewer than three pairs, or degenerate means, yield neutral factors.
func (e *Estimator) FitFactors(jobStats []model.JobStat) QualityFactors {
	scores, cpas, starts := e.pairWithStats(jobStats)
	if len(scores) < minFitPairs {
		return NeutralFactors()
	}

	var meanCPAS, meanStarts float64
	for i := range cpas {
		meanCPAS += cpas[i]
		meanStarts += starts[i]
	}
	meanCPAS /= float64(len(cpas))
	meanStarts /= float64(len(starts))
	if meanCPAS <= 0 || meanStarts <= 0 {
		return NeutralFactors()
	}

	cpasFit := fitLine(scores, cpas)
	startsFit := fitLine(scores, starts)

	f := QualityFactors{
		CPASCurrent:        cpasFit.at(e.overall) / meanCPAS,
		CPASPerfect:        cpasFit.at(100) / meanCPAS,
		ApplyStartsCurrent: startsFit.at(e.overall) / meanStarts,
		ApplyStartsPerfect: startsFit.at(100) / meanStarts,
	}

	// A fit extrapolating to a non-positive prediction is worthless.
	if f.CPASCurrent <= 0 || f.CPASPerfect <= 0 || f.ApplyStartsCurrent <= 0 || f.ApplyStartsPerfect <= 0 {
		return NeutralFactors()
	}
	return f
}

// pairWithStats joins reviewed jobs to reference job aggregates,
// preferring requisition-reference matches and falling back to position.
func (e *Estimator) pairWithStats(jobStats []model.JobStat) (scores, cpas, starts []float64) {
	byRef := make(map[string]model.JobStat, len(jobStats))
	for _, s := range jobStats {
		byRef[s.JobRef] = s
	}

	for i, j := range e.jobs {
		stat, ok := byRef[j.RequisitionID]
		if !ok {
			if i >= len(jobStats) {
				continue
			}
			stat = jobStats[i]
		}
		if stat.ApplyStarts <= 0 {
			continue
		}
		scores = append(scores, e.scores[i])
		cpas = append(cpas, stat.CPAS)
		starts = append(starts, float64(stat.ApplyStarts))
	}
	return scores, cpas, starts
}

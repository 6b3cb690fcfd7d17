package model

import "time"

// ScenarioName identifies one configuration in a scenario-set evaluation.
type ScenarioName string

const (
	ScenarioConservative ScenarioName = "conservative"
	ScenarioCurrentPlan  ScenarioName = "current_plan"
	ScenarioAggressive   ScenarioName = "aggressive"
)

// GoalStatus flags how a projection relates to the caller's goals.
type GoalStatus struct {
	CPASGoalMet       bool `json:"cpas_goal_met"`
	ApplyStartGoalMet bool `json:"apply_start_goal_met"`
	BudgetExhausted   bool `json:"budget_exhausted"`
}

// ScenarioResult is one forecast evaluation. Immutable once returned.
type ScenarioResult struct {
	Name                 ScenarioName `json:"name,omitempty"`
	Budget               float64      `json:"budget"`
	ProjectedCPAS        float64      `json:"projected_cpas"`
	ProjectedApplyStarts float64      `json:"projected_apply_starts"`
	ProjectedSpend       float64      `json:"projected_spend"`
	DaysToGoal           int          `json:"days_to_goal"`
	Goal                 GoalStatus   `json:"goal"`
	Confidence           float64      `json:"confidence"` // 0..1
	SeasonalityFactor    float64      `json:"seasonality_factor"`
	StartDate            time.Time    `json:"start_date"`
	EndDate              time.Time    `json:"end_date"`
}

// ScenarioSet holds the three named budget-sensitivity configurations.
type ScenarioSet struct {
	Conservative ScenarioResult `json:"conservative"`
	CurrentPlan  ScenarioResult `json:"current_plan"`
	Aggressive   ScenarioResult `json:"aggressive"`
}

// DeliveryEnvelope describes the achievable delivery range for a
// budget/duration pair, derived from the best and worst reference days.
type DeliveryEnvelope struct {
	MaxApplyStarts int     `json:"max_apply_starts"`
	MaxSpend       float64 `json:"max_spend"`
	MaxCPAS        float64 `json:"max_cpas"`
	MinApplyStarts int     `json:"min_apply_starts"`
	MinSpend       float64 `json:"min_spend"`
	MinCPAS        float64 `json:"min_cpas"`
	DurationDays   int     `json:"duration_days"`
	Budget         float64 `json:"budget"`
}

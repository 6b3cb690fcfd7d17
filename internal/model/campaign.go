package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// MinDurationDays is the shortest campaign the model accepts or reports.
const MinDurationDays = 7

// CampaignInputs is a caller-supplied forecast request.
type CampaignInputs struct {
	Budget         float64   `json:"budget"`
	ApplyStartGoal float64   `json:"apply_start_goal"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	CPASGoal       *float64  `json:"cpas_goal,omitempty"` // optional CPAS ceiling
	JobCount       *int      `json:"job_count,omitempty"` // optional posting count
}

// DurationDays returns the inclusive campaign length in days.
func (c CampaignInputs) DurationDays() int {
	return int(c.EndDate.Sub(c.StartDate).Hours()/24) + 1
}

// Validate rejects invalid inputs before any computation runs.
func (c CampaignInputs) Validate() error {
	if c.Budget <= 0 {
		return eris.New("campaign: budget must be positive")
	}
	if c.ApplyStartGoal <= 0 {
		return eris.New("campaign: apply start goal must be positive")
	}
	if !c.StartDate.Before(c.EndDate) {
		return eris.New("campaign: start date must be before end date")
	}
	if c.DurationDays() < MinDurationDays {
		return eris.Errorf("campaign: duration must be at least %d days", MinDurationDays)
	}
	if c.CPASGoal != nil && *c.CPASGoal <= 0 {
		return eris.New("campaign: cpas goal must be positive when set")
	}
	if c.JobCount != nil && *c.JobCount <= 0 {
		return eris.New("campaign: job count must be positive when set")
	}
	return nil
}

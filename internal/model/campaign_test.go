package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDurationDays(t *testing.T) {
	in := CampaignInputs{
		StartDate: date(2026, time.September, 1),
		EndDate:   date(2026, time.September, 30),
	}
	// Inclusive of both endpoints.
	assert.Equal(t, 30, in.DurationDays())

	week := CampaignInputs{
		StartDate: date(2026, time.September, 1),
		EndDate:   date(2026, time.September, 7),
	}
	assert.Equal(t, 7, week.DurationDays())
}

func TestValidate(t *testing.T) {
	valid := CampaignInputs{
		Budget:         50000,
		ApplyStartGoal: 10000,
		StartDate:      date(2026, time.September, 1),
		EndDate:        date(2026, time.September, 30),
	}
	require.NoError(t, valid.Validate())

	cases := []struct {
		name    string
		mutate  func(*CampaignInputs)
		wantErr string
	}{
		{"zero budget", func(c *CampaignInputs) { c.Budget = 0 }, "budget must be positive"},
		{"negative goal", func(c *CampaignInputs) { c.ApplyStartGoal = -1 }, "goal must be positive"},
		{"reversed dates", func(c *CampaignInputs) { c.StartDate, c.EndDate = c.EndDate, c.StartDate }, "start date must be before"},
		{"too short", func(c *CampaignInputs) { c.EndDate = c.StartDate.AddDate(0, 0, 3) }, "at least 7 days"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			err := in.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateOptionalFields(t *testing.T) {
	in := CampaignInputs{
		Budget:         50000,
		ApplyStartGoal: 10000,
		StartDate:      date(2026, time.September, 1),
		EndDate:        date(2026, time.September, 30),
	}

	bad := -1.0
	in.CPASGoal = &bad
	err := in.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cpas goal")

	in.CPASGoal = nil
	zero := 0
	in.JobCount = &zero
	err = in.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job count")
}

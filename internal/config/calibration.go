package config

import (
	"os"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Calibration holds the reference-campaign constants the forecasting
// formula is anchored to, plus optional month-seasonality overrides.
// These are fixed per deployment, never derived at runtime.
type Calibration struct {
	ReferenceAchievedSpend       float64 `yaml:"reference_achieved_spend"`
	ReferenceAchievedConversions float64 `yaml:"reference_achieved_conversions"`
	ReferenceBudget              float64 `yaml:"reference_budget"`
	ReferenceHistoricalGoal      float64 `yaml:"reference_historical_goal"`
	ReferenceDurationDays        int     `yaml:"reference_duration_days"`

	// Sub-unity elasticity exponents for duration, budget, and goal.
	Alpha float64 `yaml:"alpha"`
	Gamma float64 `yaml:"gamma"`
	Delta float64 `yaml:"delta"`

	// Month (1..12) to multiplicative factor, each within [0.8, 1.3].
	// Missing months keep the built-in defaults.
	Seasonality map[time.Month]float64 `yaml:"seasonality"`
}

// DefaultCalibration returns the built-in reference campaign constants.
func DefaultCalibration() Calibration {
	return Calibration{
		ReferenceAchievedSpend:       65366.24,
		ReferenceAchievedConversions: 11098.0,
		ReferenceBudget:              67416.00,
		ReferenceHistoricalGoal:      13249.0,
		ReferenceDurationDays:        30,
		Alpha:                        0.2,
		Gamma:                        0.1,
		Delta:                        0.1,
	}
}

// LoadCalibration reads a calibration YAML file. An empty path returns the
// built-in defaults. Fields absent from the file keep their defaults.
func LoadCalibration(path string) (*Calibration, error) {
	cal := DefaultCalibration()
	if path == "" {
		return &cal, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "calibration: read %s", path)
	}

	// The YAML has a top-level "calibration" key.
	wrapper := struct {
		Calibration *Calibration `yaml:"calibration"`
	}{Calibration: &cal}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "calibration: parse")
	}

	if err := cal.Validate(); err != nil {
		return nil, err
	}
	return &cal, nil
}

// Validate rejects calibration values the formula cannot work with.
func (c Calibration) Validate() error {
	if c.ReferenceAchievedSpend <= 0 || c.ReferenceAchievedConversions <= 0 {
		return eris.New("calibration: reference achieved spend and conversions must be positive")
	}
	if c.ReferenceBudget <= 0 || c.ReferenceHistoricalGoal <= 0 {
		return eris.New("calibration: reference budget and goal must be positive")
	}
	if c.ReferenceDurationDays <= 0 {
		return eris.New("calibration: reference duration must be positive")
	}
	if c.Alpha <= 0 || c.Alpha >= 1 || c.Gamma <= 0 || c.Gamma >= 1 || c.Delta <= 0 || c.Delta >= 1 {
		return eris.New("calibration: elasticity exponents must be in (0, 1)")
	}
	for m, f := range c.Seasonality {
		if m < time.January || m > time.December {
			return eris.Errorf("calibration: invalid month %d in seasonality override", m)
		}
		if f < 0.8 || f > 1.3 {
			return eris.Errorf("calibration: seasonality factor %.2f for %s outside [0.8, 1.3]", f, m)
		}
	}
	return nil
}

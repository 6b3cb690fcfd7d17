// Package season holds the month seasonality table and the week-of-month
// shape derived from the reference dataset. It is the single source for
// these factors; every consumer reads the same instance.
package season

import (
	"time"

	"github.com/rotisserie/eris"

	"github.com/talentreach/forecast-cli/internal/model"
)

// defaultFactors is the hand-calibrated month table, anchored at 1.0 for
// the reference month (June).
var defaultFactors = [12]float64{
	0.90, // January
	0.92,
	0.95,
	0.98,
	1.00,
	1.00, // June (reference)
	1.05,
	1.10,
	0.95,
	0.90,
	0.85,
	0.80, // December
}

// Table maps calendar months to multiplicative seasonality factors.
type Table struct {
	factors [12]float64
}

// DefaultTable returns the built-in seasonality table.
func DefaultTable() Table {
	return Table{factors: defaultFactors}
}

// NewTable applies per-month overrides to the default table. Overrides
// must lie within [0.8, 1.3].
func NewTable(overrides map[time.Month]float64) (Table, error) {
	t := DefaultTable()
	for m, f := range overrides {
		if m < time.January || m > time.December {
			return Table{}, eris.Errorf("season: invalid month %d", m)
		}
		if f < 0.8 || f > 1.3 {
			return Table{}, eris.Errorf("season: factor %.3f for %s outside [0.8, 1.3]", f, m)
		}
		t.factors[m-1] = f
	}
	return t, nil
}

// Factor returns the seasonality factor for a month.
func (t Table) Factor(m time.Month) float64 {
	if m < time.January || m > time.December {
		return 1.0
	}
	return t.factors[m-1]
}

// WeeklyShape is the within-month temporal structure beneath the monthly
// seasonality factor.
type WeeklyShape struct {
	// Multipliers has mean exactly 1.0; each entry is the week's CPAS
	// relative to the month average.
	Multipliers [4]float64
	// ApplyShares sums to exactly 1.0; each entry is the week's share of
	// total conversions.
	ApplyShares [4]float64
}

// DeriveWeeklyShape computes normalized weekly CPAS multipliers and apply
// shares from the aggregated week buckets.
func DeriveWeeklyShape(weekly [4]model.WeeklyAggregate) WeeklyShape {
	shape := WeeklyShape{
		Multipliers: [4]float64{1, 1, 1, 1},
		ApplyShares: [4]float64{0.25, 0.25, 0.25, 0.25},
	}

	var cpasSum float64
	for _, w := range weekly {
		cpasSum += w.CPAS
	}
	if cpasSum > 0 {
		mean := cpasSum / 4
		var multSum float64
		for i, w := range weekly {
			shape.Multipliers[i] = w.CPAS / mean
			multSum += shape.Multipliers[i]
		}
		// Rescale so the multipliers' own mean is exactly 1.0: the first
		// division absorbs relative shape, this one any systematic skew.
		multMean := multSum / 4
		for i := range shape.Multipliers {
			shape.Multipliers[i] /= multMean
		}
	}

	totalStarts := 0
	for _, w := range weekly {
		totalStarts += w.TotalApplyStarts
	}
	if totalStarts > 0 {
		for i, w := range weekly {
			shape.ApplyShares[i] = float64(w.TotalApplyStarts) / float64(totalStarts)
		}
	}

	return shape
}

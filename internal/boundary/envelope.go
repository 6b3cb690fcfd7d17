// Package boundary computes the achievable delivery envelope for a
// budget/duration pair from the best and worst reference days.
package boundary

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/talentreach/forecast-cli/internal/dataset"
	"github.com/talentreach/forecast-cli/internal/model"
)

// Envelope ranks reference days by CPAS and sums the cheapest and most
// expensive `durationDays` of them. When the summed spend exceeds the
// budget, delivery scales down proportionally.
func Envelope(ref *dataset.Reference, budget float64, durationDays int) (*model.DeliveryEnvelope, error) {
	if budget <= 0 {
		return nil, eris.New("boundary: budget must be positive")
	}
	if durationDays <= 0 {
		return nil, eris.New("boundary: duration must be positive")
	}

	daily := ref.Daily()
	if len(daily) == 0 {
		return nil, eris.New("boundary: reference dataset has no valid days")
	}

	byCPAS := make([]model.DailyStat, len(daily))
	copy(byCPAS, daily)
	sort.Slice(byCPAS, func(i, j int) bool { return byCPAS[i].CPAS < byCPAS[j].CPAS })

	n := durationDays
	if n > len(byCPAS) {
		n = len(byCPAS)
	}

	maxStarts, maxSpend, maxCPAS := capToBudget(byCPAS[:n], budget)
	minStarts, minSpend, minCPAS := capToBudget(byCPAS[len(byCPAS)-n:], budget)

	return &model.DeliveryEnvelope{
		MaxApplyStarts: maxStarts,
		MaxSpend:       maxSpend,
		MaxCPAS:        maxCPAS,
		MinApplyStarts: minStarts,
		MinSpend:       minSpend,
		MinCPAS:        minCPAS,
		DurationDays:   durationDays,
		Budget:         budget,
	}, nil
}

// capToBudget sums the selected days and scales delivery down when spend
// exceeds the budget. CPAS reflects the unscaled day mix.
func capToBudget(days []model.DailyStat, budget float64) (starts int, spend, cpas float64) {
	totalStarts := 0
	for _, d := range days {
		totalStarts += d.ApplyStarts
		spend += d.Spend
	}
	if totalStarts > 0 {
		cpas = spend / float64(totalStarts)
	}

	starts = totalStarts
	if spend > budget {
		scale := budget / spend
		starts = int(float64(totalStarts) * scale)
		spend = budget
	}
	return starts, spend, cpas
}

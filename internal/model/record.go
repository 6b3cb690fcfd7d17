// Package model defines the shared data types for campaign forecasting.
package model

import "time"

// HistoricalRecord is one day of reference campaign performance.
// The reference dataset is loaded once at startup and never mutated.
type HistoricalRecord struct {
	Date        time.Time `json:"date"`
	Spend       float64   `json:"spend"`
	ApplyStarts int       `json:"apply_starts"`
	JobRef      string    `json:"job_ref,omitempty"` // requisition reference, when the dataset carries one
}

// Valid reports whether the record can participate in CPAS computation.
// Records without conversions still contribute to conversion-only aggregates.
func (r HistoricalRecord) Valid() bool {
	return r.ApplyStarts > 0
}

// CPAS returns spend per apply start, or 0 for records with no conversions.
func (r HistoricalRecord) CPAS() float64 {
	if r.ApplyStarts <= 0 {
		return 0
	}
	return r.Spend / float64(r.ApplyStarts)
}

// WeekOfMonth returns the 1-4 week bucket for a calendar date. A trailing
// partial fifth week folds into week 4.
func WeekOfMonth(d time.Time) int {
	w := (d.Day()-1)/7 + 1
	if w > 4 {
		w = 4
	}
	return w
}

// WeeklyAggregate is a week-of-month bucket over the reference dataset.
type WeeklyAggregate struct {
	WeekIndex        int     `json:"week_index"` // 1..4
	TotalSpend       float64 `json:"total_spend"`
	TotalApplyStarts int     `json:"total_apply_starts"`
	CPAS             float64 `json:"cpas"`
	ApplyShare       float64 `json:"apply_share"`
}

// DailyStat is one aggregated day of the reference series (valid rows only).
type DailyStat struct {
	Date        time.Time `json:"date"`
	Spend       float64   `json:"spend"`
	ApplyStarts int       `json:"apply_starts"`
	CPAS        float64   `json:"cpas"`
}

// JobStat aggregates reference performance for a single job posting.
type JobStat struct {
	JobRef      string  `json:"job_ref"`
	Spend       float64 `json:"spend"`
	ApplyStarts int     `json:"apply_starts"`
	CPAS        float64 `json:"cpas"`
}

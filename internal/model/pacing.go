package model

import "time"

// PacingPoint is one projected campaign day. Metric values are absent
// (nil) when the mapped reference day has no valid data; they are never
// reported as zero in that case.
type PacingPoint struct {
	Day                  int       `json:"day"` // 1-based campaign day
	Date                 time.Time `json:"date"`
	Weekday              string    `json:"weekday"`
	WeekOfMonth          int       `json:"week_of_month"`
	CPAS                 *float64  `json:"cpas,omitempty"`
	CPASMovingAvg        *float64  `json:"cpas_moving_avg,omitempty"`
	ApplyStarts          float64   `json:"apply_starts"`
	ApplyStartsMovingAvg *float64  `json:"apply_starts_moving_avg,omitempty"`
	Spend                float64   `json:"spend"`
	SpendMovingAvg       *float64  `json:"spend_moving_avg,omitempty"`
}

// PacingTrend is the cumulative-spend view of one campaign day.
type PacingTrend struct {
	Day             int       `json:"day"`
	Date            time.Time `json:"date"`
	DailySpend      float64   `json:"daily_spend"`
	CumulativeSpend float64   `json:"cumulative_spend"`
}

// PacingBucket is a day-of-week or week-of-month rollup, scaled with the
// same per-metric factors as the daily series so both views stay consistent.
type PacingBucket struct {
	Label       string   `json:"label"`
	Days        int      `json:"days"`
	CPAS        *float64 `json:"cpas,omitempty"`
	ApplyStarts float64  `json:"apply_starts"`
	Spend       float64  `json:"spend"`
}

// PacingCurve is the full expansion of an aggregate forecast.
type PacingCurve struct {
	Points      []PacingPoint  `json:"points"`
	Trends      []PacingTrend  `json:"trends"`
	ByWeekday   []PacingBucket `json:"by_weekday"`
	ByWeek      []PacingBucket `json:"by_week"`
	TotalSpend  float64        `json:"total_spend"`
	TotalStarts float64        `json:"total_apply_starts"`
}

package predictor

import "encoding/json"

// defaultConfidence is assumed when the service omits the field or sends
// something non-numeric.
const defaultConfidence = 0.95

// Confidence tolerates non-numeric values in the wire format, falling
// back to the default instead of failing the whole response.
type Confidence float64

// UnmarshalJSON implements lenient decoding for confidence values. A
// JSON null decodes without error but carries no number, so it is
// treated as absent rather than zero.
func (c *Confidence) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = defaultConfidence
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		*c = defaultConfidence
		return nil
	}
	*c = Confidence(f)
	return nil
}

// ForecastRequest asks the prediction service for campaign projections.
type ForecastRequest struct {
	Budget         float64
	DurationWeeks  int    // >= 1
	StartDate      string // YYYY-MM-DD, optional
	EndDate        string // YYYY-MM-DD, optional
	ApplyStartGoal float64
}

// TrendPoint is one day of the remote pacing trend.
type TrendPoint struct {
	Day             int     `json:"day"`
	Date            string  `json:"date"`
	DailySpend      float64 `json:"dailySpend"`
	CumulativeSpend float64 `json:"cumulativeSpend"`
}

// ForecastResponse is the prediction service's campaign projection.
type ForecastResponse struct {
	StartDate         string       `json:"start_date"`
	EndDate           string       `json:"end_date"`
	NumDays           int          `json:"num_days"`
	Budget            float64      `json:"budget"`
	TotalSpend        float64      `json:"total_spend"`
	TotalApplyStarts  int          `json:"total_apply_starts"`
	CPAS              float64      `json:"cpas"`
	Confidence        Confidence   `json:"confidence"`
	PacingTrends      []TrendPoint `json:"pacingTrends"`
	DaysToGoal        *int         `json:"days_to_goal"`
	SeasonalityFactor float64      `json:"seasonality_factor"`
	Error             string       `json:"error,omitempty"`
}

// BoundariesResponse is the achievable delivery envelope for a
// budget/duration pair.
type BoundariesResponse struct {
	MaxApplyStarts int     `json:"max_apply_starts"`
	MaxSpend       float64 `json:"max_spend"`
	MaxCPAS        float64 `json:"max_cpas"`
	MinApplyStarts int     `json:"min_apply_starts"`
	MinSpend       float64 `json:"min_spend"`
	MinCPAS        float64 `json:"min_cpas"`
	DurationDays   int     `json:"duration_days"`
	Budget         float64 `json:"budget"`
	Error          string  `json:"error,omitempty"`
}

// RemoteJob is one reviewed job as the quality-scores service reports it.
// The wire keys mirror the review sheet's column headers.
type RemoteJob struct {
	Title                string  `json:"Job Title"`
	EnglishTitle         string  `json:"English Job title"`
	Station              string  `json:"Station"`
	Source               string  `json:"DSP"`
	RequisitionID        string  `json:"REQ_ID"`
	TitleAppropriate     string  `json:"Title Appropriate?"`
	SalaryMentioned      string  `json:"Salary Mentioned?"`
	PhoneInDescription   string  `json:"Phone Number in JD"`
	DescriptionFormatted string  `json:"JD Formatted Correctly?"`
	QualityScore         float64 `json:"Job Quality Score"`
	URL                  string  `json:"JOB_URL"`
}

// JobQualityScoresResponse lists all reviewed jobs with scores.
type JobQualityScoresResponse struct {
	Jobs  []RemoteJob `json:"jobs"`
	Error string      `json:"error,omitempty"`
}

// JobImpactRequest asks for the what-if-perfect-quality projection.
type JobImpactRequest struct {
	Budget         float64
	DurationWeeks  int // >= 1
	ApplyStartGoal float64
	StartDate      string // optional
	EndDate        string // optional
}

// JobImpactResponse is the quality-impact projection.
type JobImpactResponse struct {
	OverallQualityScore   float64    `json:"overall_quality_score"`
	CPASIfPerfectQuality  float64    `json:"cpas_if_perfect_quality"`
	CPASCurrent           float64    `json:"cpas_current"`
	ASIfPerfectQuality    float64    `json:"as_if_perfect_quality"`
	ASCurrent             float64    `json:"as_current"`
	OptimalJobCount       int        `json:"optimal_job_count"`
	OptimalJobCountReason string     `json:"optimal_job_count_reason"`
	Confidence            Confidence `json:"confidence"`
	AvgASPerJob           float64    `json:"avg_as_per_job"`
	Error                 string     `json:"error,omitempty"`
}

package model

import "strings"

// Answer is a categorical quality signal value from the review sheet.
type Answer string

const (
	AnswerYes       Answer = "yes"
	AnswerPartially Answer = "partially"
	AnswerNo        Answer = "no"
	AnswerUnknown   Answer = ""
)

// ParseAnswer normalizes free-form review-sheet values. Reviewers write
// things like "Yes - could be clearer", so positive matches are
// prefix-based. A negative answer must be exactly "no": blank or
// free-form cells stay unknown so the inverted phone signal never earns
// credit from an unreviewed row.
func ParseAnswer(s string) Answer {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(v, "yes"):
		return AnswerYes
	case strings.HasPrefix(v, "partially"):
		return AnswerPartially
	case v == "no":
		return AnswerNo
	default:
		return AnswerUnknown
	}
}

// JobQualityRecord holds the four categorical signals for one job posting.
type JobQualityRecord struct {
	RequisitionID        string `json:"requisition_id"`
	Source               string `json:"source,omitempty"`
	Title                string `json:"title"`
	URL                  string `json:"url,omitempty"`
	TitleAppropriate     Answer `json:"title_appropriate"`
	SalaryMentioned      Answer `json:"salary_mentioned"`
	PhoneInDescription   Answer `json:"phone_in_description"`
	DescriptionFormatted Answer `json:"description_formatted"`
}

// QualityImpactEstimate is the what-if-perfect-quality projection.
type QualityImpactEstimate struct {
	OverallQualityScore         float64 `json:"overall_quality_score"` // 0..100
	CPASCurrent                 float64 `json:"cpas_current"`
	CPASIfPerfectQuality        float64 `json:"cpas_if_perfect_quality"`
	ApplyStartsCurrent          float64 `json:"apply_starts_current"`
	ApplyStartsIfPerfectQuality float64 `json:"apply_starts_if_perfect_quality"`
}

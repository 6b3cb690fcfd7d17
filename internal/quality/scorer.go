// Package quality scores job postings on categorical signals and
// estimates the campaign impact of fixing them.
package quality

import (
	"context"
	"math"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/talentreach/forecast-cli/internal/config"
	"github.com/talentreach/forecast-cli/internal/fetcher"
	"github.com/talentreach/forecast-cli/internal/model"
)

// Signal identifies one of the four scored quality signals.
type Signal string

const (
	SignalTitle      Signal = "title_appropriate"
	SignalSalary     Signal = "salary_mentioned"
	SignalPhone      Signal = "phone_in_description"
	SignalFormatting Signal = "description_formatted"
)

// Signals lists all scored signals.
var Signals = []Signal{SignalTitle, SignalSalary, SignalPhone, SignalFormatting}

// Score computes a 0-100 quality score from the four signals: full credit
// 1, partial 0.5, none 0, over 4 points. The phone signal scores
// inverted — contact details in the description hurt quality.
func Score(rec model.JobQualityRecord) float64 {
	return scoreForced(rec, "")
}

// scoreForced scores the record with one signal optionally forced to its
// best value, which drives the per-signal what-if simulation.
func scoreForced(rec model.JobQualityRecord, forced Signal) float64 {
	points := 0.0
	points += credit(rec.TitleAppropriate, forced == SignalTitle)
	if rec.SalaryMentioned == model.AnswerYes || forced == SignalSalary {
		points += 1
	}
	if rec.PhoneInDescription == model.AnswerNo || forced == SignalPhone {
		points += 1
	}
	points += credit(rec.DescriptionFormatted, forced == SignalFormatting)

	return math.Round(points/4*100*10) / 10
}

func credit(a model.Answer, forced bool) float64 {
	if forced {
		return 1
	}
	switch a {
	case model.AnswerYes:
		return 1
	case model.AnswerPartially:
		return 0.5
	default:
		return 0
	}
}

// ScoredJob pairs a review record with its computed score.
type ScoredJob struct {
	model.JobQualityRecord
	Score float64 `json:"score"`
}

// LoadRecords reads the quality review sheet. Rows without a job title
// are reviewer scratch space and are skipped.
func LoadRecords(ctx context.Context, cfg config.QualityConfig) ([]model.JobQualityRecord, error) {
	rc, err := fetcher.Open(ctx, cfg.Source, 60*time.Second)
	if err != nil {
		return nil, eris.Wrap(err, "quality: open review sheet")
	}
	defer rc.Close()

	table, err := fetcher.ReadCSV(rc)
	if err != nil {
		return nil, eris.Wrap(err, "quality: parse review sheet")
	}

	titleIdx := table.Column("Job Title")
	englishIdx := table.Column("English Job title")
	sourceIdx := table.Column("DSP")
	urlIdx := table.Column("JOB_URL")
	appropriateIdx := table.Column("Title Appropriate?")
	salaryIdx := table.Column("Salary Mentioned?")
	phoneIdx := table.Column("Phone Number in JD")
	formattedIdx := table.Column("JD Formatted Correctly?")

	// The requisition id column ships with an empty header; fall back to
	// its known position when the name lookup fails.
	reqIdx := table.Column("REQ_ID")
	if reqIdx < 0 && len(table.Header) > 3 {
		reqIdx = 3
	}

	var records []model.JobQualityRecord
	for _, row := range table.Rows {
		title := cell(row, titleIdx)
		if title == "" {
			title = cell(row, englishIdx)
		}
		if title == "" {
			continue
		}

		records = append(records, model.JobQualityRecord{
			RequisitionID:        cell(row, reqIdx),
			Source:               cell(row, sourceIdx),
			Title:                title,
			URL:                  cell(row, urlIdx),
			TitleAppropriate:     model.ParseAnswer(cell(row, appropriateIdx)),
			SalaryMentioned:      model.ParseAnswer(cell(row, salaryIdx)),
			PhoneInDescription:   model.ParseAnswer(cell(row, phoneIdx)),
			DescriptionFormatted: model.ParseAnswer(cell(row, formattedIdx)),
		})
	}

	if len(records) == 0 {
		return nil, eris.New("quality: no scorable jobs in review sheet")
	}

	zap.L().Info("quality: review sheet loaded", zap.Int("jobs", len(records)))
	return records, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

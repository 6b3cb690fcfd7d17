package quality

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentreach/forecast-cli/internal/config"
	"github.com/talentreach/forecast-cli/internal/model"
)

func TestScorePerfectJob(t *testing.T) {
	job := model.JobQualityRecord{
		TitleAppropriate:     model.AnswerYes,
		SalaryMentioned:      model.AnswerYes,
		PhoneInDescription:   model.AnswerNo, // no phone is the good outcome
		DescriptionFormatted: model.AnswerYes,
	}
	assert.InDelta(t, 100.0, Score(job), 1e-9)
}

func TestScoreWorstJob(t *testing.T) {
	job := model.JobQualityRecord{
		TitleAppropriate:     model.AnswerNo,
		SalaryMentioned:      model.AnswerNo,
		PhoneInDescription:   model.AnswerYes, // phone present hurts
		DescriptionFormatted: model.AnswerNo,
	}
	assert.Zero(t, Score(job))
}

func TestScoreUnreviewedCellsEarnNothing(t *testing.T) {
	// A row the reviewer never filled in parses to unknown answers. The
	// inverted phone signal must not treat the blank as "no phone".
	job := model.JobQualityRecord{
		TitleAppropriate:     model.ParseAnswer(""),
		SalaryMentioned:      model.ParseAnswer(""),
		PhoneInDescription:   model.ParseAnswer(""),
		DescriptionFormatted: model.ParseAnswer(""),
	}
	assert.Zero(t, Score(job))

	// Only an explicit "no" earns the phone point.
	job.PhoneInDescription = model.ParseAnswer("No")
	assert.InDelta(t, 25.0, Score(job), 1e-9)
}

func TestScorePartialCredit(t *testing.T) {
	job := model.JobQualityRecord{
		TitleAppropriate:     model.AnswerPartially, // 0.5
		SalaryMentioned:      model.AnswerYes,       // 1
		PhoneInDescription:   model.AnswerYes,       // 0
		DescriptionFormatted: model.AnswerPartially, // 0.5
	}
	// 2 of 4 points = 50.
	assert.InDelta(t, 50.0, Score(job), 1e-9)
}

func TestScoreRoundsToTenth(t *testing.T) {
	job := model.JobQualityRecord{
		TitleAppropriate: model.AnswerPartially, // 0.5 of 4 = 12.5
	}
	assert.InDelta(t, 12.5, Score(job), 1e-9)
}

func TestScoreForcedSignal(t *testing.T) {
	job := model.JobQualityRecord{
		TitleAppropriate:     model.AnswerNo,
		SalaryMentioned:      model.AnswerNo,
		PhoneInDescription:   model.AnswerYes,
		DescriptionFormatted: model.AnswerNo,
	}
	// Forcing one signal to best on a zero job yields one point.
	for _, sig := range Signals {
		assert.InDelta(t, 25.0, scoreForced(job, sig), 1e-9, "signal %s", sig)
	}
}

func TestLoadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quality.csv")
	content := `Job Title,English Job title,Station,,DSP,Title Appropriate?,Salary Mentioned?,Phone Number in JD,JD Formatted Correctly?,JOB_URL
Warehouse Operative,,BHX1,REQ-1,VendorA,Yes,Yes,No,Yes,https://example.com/1
,Delivery Driver,CGN2,REQ-2,VendorB,Partially - vague,No,Yes,Partially,https://example.com/2
,,XXX,REQ-3,VendorC,Yes,Yes,No,Yes,
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := LoadRecords(context.Background(), config.QualityConfig{Source: path})
	require.NoError(t, err)
	// Row 3 has no title in either column and is skipped.
	require.Len(t, records, 2)

	assert.Equal(t, "REQ-1", records[0].RequisitionID)
	assert.Equal(t, "Warehouse Operative", records[0].Title)
	assert.Equal(t, model.AnswerYes, records[0].TitleAppropriate)
	assert.InDelta(t, 100.0, Score(records[0]), 1e-9)

	// English title fills in when the primary is empty.
	assert.Equal(t, "Delivery Driver", records[1].Title)
	assert.Equal(t, model.AnswerPartially, records[1].TitleAppropriate)
	// 0.5 + 0 + 0 + 0.5 of 4 points = 25.
	assert.InDelta(t, 25.0, Score(records[1]), 1e-9)
}

func TestLoadRecordsEmptySheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quality.csv")
	content := "Job Title,English Job title\n,,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadRecords(context.Background(), config.QualityConfig{Source: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scorable jobs")
}

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentreach/forecast-cli/internal/config"
	"github.com/talentreach/forecast-cli/internal/dataset"
	"github.com/talentreach/forecast-cli/internal/forecast"
	"github.com/talentreach/forecast-cli/internal/model"
	"github.com/talentreach/forecast-cli/internal/monitoring"
	"github.com/talentreach/forecast-cli/internal/quality"
	"github.com/talentreach/forecast-cli/internal/season"
	"github.com/talentreach/forecast-cli/pkg/predictor"
)

func newTestServer(t *testing.T) *server {
	t.Helper()

	cal := config.DefaultCalibration()
	seasons, err := season.NewTable(nil)
	require.NoError(t, err)
	m, err := forecast.New(cal, seasons)
	require.NoError(t, err)

	// A full reference month so pacing curves have every day-of-month.
	refs := []string{"REQ-1", "REQ-2", "REQ-3"}
	var records []model.HistoricalRecord
	for d := 1; d <= 30; d++ {
		records = append(records, model.HistoricalRecord{
			Date:        time.Date(2025, time.June, d, 0, 0, 0, 0, time.UTC),
			Spend:       100 + float64(d%7)*40,
			ApplyStarts: 10 + (d%5)*6,
			JobRef:      refs[d%3],
		})
	}
	ref, err := dataset.Build(records)
	require.NoError(t, err)

	est, err := quality.NewEstimator([]model.JobQualityRecord{
		{RequisitionID: "REQ-1", Title: "Line Cook",
			TitleAppropriate: model.AnswerYes, SalaryMentioned: model.AnswerYes,
			PhoneInDescription: model.AnswerNo, DescriptionFormatted: model.AnswerYes},
		{RequisitionID: "REQ-2", Title: "Server",
			TitleAppropriate: model.AnswerPartially, SalaryMentioned: model.AnswerNo,
			PhoneInDescription: model.AnswerNo, DescriptionFormatted: model.AnswerYes},
		{RequisitionID: "REQ-3", Title: "Dishwasher",
			TitleAppropriate: model.AnswerNo, SalaryMentioned: model.AnswerNo,
			PhoneInDescription: model.AnswerYes, DescriptionFormatted: model.AnswerNo},
	})
	require.NoError(t, err)

	return &server{
		model:     m,
		cal:       cal,
		ref:       ref,
		estimator: est,
		envelope: config.EnvelopeConfig{
			MinBudget:            5000,
			MinCPAS:              3.0,
			MaxCPAS:              15.0,
			MaxApplyStartsPer30d: 50000,
		},
		metrics: monitoring.NewMetrics(),
	}
}

func TestHandleForecast(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet,
		"/api/cpas-for-budget?budget=30000&duration=4&start_date=2026-06-01", nil)
	rec := httptest.NewRecorder()
	s.handleForecast(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp predictor.ForecastResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "2026-06-01", resp.StartDate)
	assert.Equal(t, "2026-06-28", resp.EndDate)
	assert.Equal(t, 28, resp.NumDays)
	assert.InDelta(t, 30000, resp.Budget, 1e-9)
	// Guards keep the reported CPAS inside the dashboard envelope.
	assert.GreaterOrEqual(t, resp.CPAS, 3.0)
	assert.LessOrEqual(t, resp.CPAS, 15.0)
	assert.Positive(t, resp.TotalApplyStarts)
	assert.Len(t, resp.PacingTrends, 28)
	require.NotNil(t, resp.DaysToGoal)
	// Days to goal never reports faster than the campaign length.
	assert.GreaterOrEqual(t, *resp.DaysToGoal, 28)
}

func TestHandleForecastRejectsSmallBudget(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cpas-for-budget?budget=100&duration=4", nil)
	rec := httptest.NewRecorder()
	s.handleForecast(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "budget must be at least 5000")
}

func TestHandleForecastRequiresBudget(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cpas-for-budget?duration=4", nil)
	rec := httptest.NewRecorder()
	s.handleForecast(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "budget query parameter is required")
}

func TestHandleBoundaries(t *testing.T) {
	s := newTestServer(t)

	// The envelope duration counts days, not weeks.
	req := httptest.NewRequest(http.MethodGet, "/api/boundaries-for-budget?budget=20000&duration=14", nil)
	rec := httptest.NewRecorder()
	s.handleBoundaries(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp predictor.BoundariesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 14, resp.DurationDays)
	assert.GreaterOrEqual(t, resp.MaxApplyStarts, resp.MinApplyStarts)
	assert.LessOrEqual(t, resp.MaxCPAS, resp.MinCPAS)
}

func TestHandleBoundariesValidatesDuration(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/boundaries-for-budget?budget=20000&duration=0", nil)
	rec := httptest.NewRecorder()
	s.handleBoundaries(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "positive number of days")
}

func TestHandleQualityScores(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleQualityScores(rec, httptest.NewRequest(http.MethodGet, "/api/job-quality-scores", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp predictor.JobQualityScoresResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 3)
	assert.Equal(t, "Line Cook", resp.Jobs[0].Title)
	// All four signals present, phone inverted: a perfect card scores 100.
	assert.InDelta(t, 100.0, resp.Jobs[0].QualityScore, 1e-9)
}

func TestQualityEndpointsWithoutSheet(t *testing.T) {
	s := newTestServer(t)
	s.estimator = nil

	rec := httptest.NewRecorder()
	s.handleQualityScores(rec, httptest.NewRequest(http.MethodGet, "/api/job-quality-scores", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	s.handleJobImpact(rec, httptest.NewRequest(http.MethodGet, "/api/job-impact-scenarios?budget=20000&duration=4&as_goal=3000", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleJobImpact(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet,
		"/api/job-impact-scenarios?budget=30000&duration=4&as_goal=4000&start_date=2026-06-01", nil)
	rec := httptest.NewRecorder()
	s.handleJobImpact(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp predictor.JobImpactResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Positive(t, resp.CPASCurrent)
	assert.Positive(t, resp.CPASIfPerfectQuality)
	assert.LessOrEqual(t, resp.CPASIfPerfectQuality, resp.CPASCurrent)
	assert.GreaterOrEqual(t, resp.OptimalJobCount, 1)
	assert.Positive(t, resp.AvgASPerJob)
}

func TestHandleJobImpactRequiresGoal(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/job-impact-scenarios?budget=30000&duration=4", nil)
	rec := httptest.NewRecorder()
	s.handleJobImpact(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "as_goal")
}

func TestParseCampaignQueryDerivesEndDate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?budget=10000&duration=3&start_date=2026-06-01", nil)
	in, err := parseCampaignQuery(req)
	require.NoError(t, err)

	// Three weeks starting June 1 run through June 21 inclusive.
	assert.Equal(t, "2026-06-01", in.StartDate.Format(dateLayout))
	assert.Equal(t, "2026-06-21", in.EndDate.Format(dateLayout))
	assert.Equal(t, 21, in.DurationDays())
}

func TestParseCampaignQueryNeedsDurationOrEndDate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x?budget=10000", nil)
	_, err := parseCampaignQuery(req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "either end_date or duration")
}

func TestWeeksCovering(t *testing.T) {
	cases := []struct {
		days, weeks int
	}{
		{7, 1},
		{28, 4},
		// Partial weeks round up so the remote window covers every
		// requested day.
		{30, 5},
		{31, 5},
		{1, 1},
		{0, 1},
	}
	for _, c := range cases {
		assert.Equal(t, c.weeks, weeksCovering(c.days), "%d days", c.days)
	}
}

func TestRequestIDHeader(t *testing.T) {
	handler := requestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	// A caller-supplied id is preserved.
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

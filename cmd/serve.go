package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentreach/forecast-cli/internal/boundary"
	"github.com/talentreach/forecast-cli/internal/config"
	"github.com/talentreach/forecast-cli/internal/dataset"
	"github.com/talentreach/forecast-cli/internal/forecast"
	"github.com/talentreach/forecast-cli/internal/model"
	"github.com/talentreach/forecast-cli/internal/monitoring"
	"github.com/talentreach/forecast-cli/internal/pacing"
	"github.com/talentreach/forecast-cli/internal/quality"
	"github.com/talentreach/forecast-cli/pkg/predictor"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the forecast API server",
	Long: `Serve exposes the forecasting engine over HTTP: campaign forecasts,
delivery boundaries, job quality scores, and quality-impact scenarios.
The reference dataset and quality sheet are loaded once at startup.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// server holds the immutable state every request handler reads.
type server struct {
	model     *forecast.Model
	cal       config.Calibration
	ref       *dataset.Reference
	estimator *quality.Estimator
	envelope  config.EnvelopeConfig
	metrics   *monitoring.Metrics
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cal, err := config.LoadCalibration(cfg.Calibration.Path)
	if err != nil {
		return err
	}
	m, err := buildModel()
	if err != nil {
		return err
	}
	ref, err := loadReference(ctx)
	if err != nil {
		return err
	}

	s := &server{
		model:    m,
		cal:      *cal,
		ref:      ref,
		envelope: cfg.Envelope,
		metrics:  monitoring.NewMetrics(),
	}

	// The quality sheet is optional; without it the quality endpoints
	// report unavailable instead of blocking startup.
	if records, err := quality.LoadRecords(ctx, cfg.Quality); err != nil {
		zap.L().Warn("quality sheet unavailable, quality endpoints disabled", zap.Error(err))
	} else if est, err := quality.NewEstimator(records); err != nil {
		zap.L().Warn("quality estimator unavailable", zap.Error(err))
	} else {
		s.estimator = est
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	r.Use(s.metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", s.metrics.Handler())
	r.Get("/api/cpas-for-budget", s.handleForecast)
	r.Get("/api/boundaries-for-budget", s.handleBoundaries)
	r.Get("/api/job-quality-scores", s.handleQualityScores)
	r.Get("/api/job-impact-scenarios", s.handleJobImpact)

	port := servePort
	if port == 0 {
		port = cfg.Server.Port
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	zap.L().Info("starting server", zap.Int("port", port))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server listen")
	}
	return nil
}

// requestID tags each request with a UUID for log correlation.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func writeJSONResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSONResponse(w, status, map[string]string{"error": msg})
}

// parseCampaignQuery builds campaign inputs from query parameters. The
// duration parameter counts weeks; absent dates anchor the campaign to
// the next full window starting today.
func parseCampaignQuery(r *http.Request) (model.CampaignInputs, error) {
	var in model.CampaignInputs

	q := r.URL.Query()
	if _, err := fmt.Sscanf(q.Get("budget"), "%f", &in.Budget); err != nil {
		return in, eris.New("budget query parameter is required")
	}
	if v := q.Get("as_goal"); v != "" {
		if _, err := fmt.Sscanf(v, "%f", &in.ApplyStartGoal); err != nil {
			return in, eris.Errorf("invalid as_goal %q", v)
		}
	}

	var weeks int
	if v := q.Get("duration"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &weeks); err != nil || weeks < 1 {
			return in, eris.Errorf("duration must be a positive number of weeks, got %q", v)
		}
	}

	if v := q.Get("start_date"); v != "" {
		start, err := time.Parse(dateLayout, v)
		if err != nil {
			return in, eris.Errorf("invalid start_date %q", v)
		}
		in.StartDate = start
	}
	if v := q.Get("end_date"); v != "" {
		end, err := time.Parse(dateLayout, v)
		if err != nil {
			return in, eris.Errorf("invalid end_date %q", v)
		}
		in.EndDate = end
	}

	if in.StartDate.IsZero() {
		now := time.Now().UTC()
		in.StartDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if in.EndDate.IsZero() {
		if weeks < 1 {
			return in, eris.New("either end_date or duration is required")
		}
		in.EndDate = in.StartDate.AddDate(0, 0, weeks*7-1)
	}

	return in, nil
}

func (s *server) handleForecast(w http.ResponseWriter, r *http.Request) {
	in, err := parseCampaignQuery(r)
	if err != nil {
		s.metrics.RecordEvaluation("invalid_input")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Budget < s.envelope.MinBudget {
		s.metrics.RecordEvaluation("invalid_input")
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("budget must be at least %.0f", s.envelope.MinBudget))
		return
	}
	if in.ApplyStartGoal <= 0 {
		// Goal defaults to what the budget should buy at the reference rate.
		in.ApplyStartGoal = in.Budget / s.model.BasePredictedCPAS()
	}

	result, err := s.model.Evaluate(in)
	if err != nil {
		s.metrics.RecordEvaluation("invalid_input")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.applyGuards(result)

	curve, err := pacing.NewGenerator(s.ref, s.model.Seasons()).Curve(result)
	if err != nil {
		s.metrics.RecordEvaluation("error")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	trends := make([]predictor.TrendPoint, len(curve.Trends))
	for i, t := range curve.Trends {
		trends[i] = predictor.TrendPoint{
			Day:             t.Day,
			Date:            t.Date.Format(dateLayout),
			DailySpend:      t.DailySpend,
			CumulativeSpend: t.CumulativeSpend,
		}
	}

	daysToGoal := result.DaysToGoal
	s.metrics.RecordEvaluation("ok")
	writeJSONResponse(w, http.StatusOK, predictor.ForecastResponse{
		StartDate:         result.StartDate.Format(dateLayout),
		EndDate:           result.EndDate.Format(dateLayout),
		NumDays:           in.DurationDays(),
		Budget:            result.Budget,
		TotalSpend:        result.ProjectedSpend,
		TotalApplyStarts:  int(math.Round(result.ProjectedApplyStarts)),
		CPAS:              result.ProjectedCPAS,
		Confidence:        predictor.Confidence(result.Confidence),
		PacingTrends:      trends,
		DaysToGoal:        &daysToGoal,
		SeasonalityFactor: result.SeasonalityFactor,
	})
}

// applyGuards clips a projection to the dashboard-facing delivery
// envelope. The core formula stays untouched; only the reported numbers
// are bounded.
func (s *server) applyGuards(result *model.ScenarioResult) {
	cpas := result.ProjectedCPAS
	if s.envelope.MinCPAS > 0 && cpas < s.envelope.MinCPAS {
		cpas = s.envelope.MinCPAS
	}
	if s.envelope.MaxCPAS > 0 && cpas > s.envelope.MaxCPAS {
		cpas = s.envelope.MaxCPAS
	}
	if cpas != result.ProjectedCPAS {
		result.ProjectedCPAS = cpas
		result.ProjectedApplyStarts = result.Budget / cpas
	}

	if s.envelope.MaxApplyStartsPer30d > 0 {
		days := int(result.EndDate.Sub(result.StartDate).Hours()/24) + 1
		limit := s.envelope.MaxApplyStartsPer30d * float64(days) / 30
		if result.ProjectedApplyStarts > limit {
			result.ProjectedApplyStarts = limit
			result.ProjectedSpend = limit * result.ProjectedCPAS
		}
	}
}

func (s *server) handleBoundaries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var budget float64
	var days int
	if _, err := fmt.Sscanf(q.Get("budget"), "%f", &budget); err != nil {
		writeError(w, http.StatusBadRequest, "budget query parameter is required")
		return
	}
	// Unlike the forecast endpoints, the envelope duration counts days.
	if _, err := fmt.Sscanf(q.Get("duration"), "%d", &days); err != nil || days < 1 {
		writeError(w, http.StatusBadRequest, "duration must be a positive number of days")
		return
	}

	env, err := boundary.Envelope(s.ref, budget, days)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSONResponse(w, http.StatusOK, predictor.BoundariesResponse{
		MaxApplyStarts: env.MaxApplyStarts,
		MaxSpend:       env.MaxSpend,
		MaxCPAS:        env.MaxCPAS,
		MinApplyStarts: env.MinApplyStarts,
		MinSpend:       env.MinSpend,
		MinCPAS:        env.MinCPAS,
		DurationDays:   env.DurationDays,
		Budget:         env.Budget,
	})
}

func (s *server) handleQualityScores(w http.ResponseWriter, _ *http.Request) {
	if s.estimator == nil {
		writeError(w, http.StatusServiceUnavailable, "quality review sheet not loaded")
		return
	}

	scored := s.estimator.ScoredJobs()
	jobs := make([]predictor.RemoteJob, len(scored))
	for i, j := range scored {
		jobs[i] = predictor.RemoteJob{
			Title:                j.Title,
			Source:               j.Source,
			RequisitionID:        j.RequisitionID,
			TitleAppropriate:     string(j.TitleAppropriate),
			SalaryMentioned:      string(j.SalaryMentioned),
			PhoneInDescription:   string(j.PhoneInDescription),
			DescriptionFormatted: string(j.DescriptionFormatted),
			QualityScore:         j.Score,
			URL:                  j.URL,
		}
	}
	writeJSONResponse(w, http.StatusOK, predictor.JobQualityScoresResponse{Jobs: jobs})
}

func (s *server) handleJobImpact(w http.ResponseWriter, r *http.Request) {
	if s.estimator == nil {
		writeError(w, http.StatusServiceUnavailable, "quality review sheet not loaded")
		return
	}

	in, err := parseCampaignQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.ApplyStartGoal <= 0 {
		writeError(w, http.StatusBadRequest, "as_goal query parameter is required")
		return
	}

	base, err := s.model.Evaluate(in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	factors := s.estimator.FitFactors(s.ref.Jobs())
	impact := s.estimator.Estimate(
		base.ProjectedCPAS*factors.CPASCurrent,
		base.ProjectedCPAS*factors.CPASPerfect,
		base.ProjectedApplyStarts*factors.ApplyStartsCurrent,
		base.ProjectedApplyStarts*factors.ApplyStartsPerfect,
	)

	advice := quality.OptimalJobCount(s.ref.Jobs(), in.Budget, in.ApplyStartGoal,
		in.DurationDays(), s.cal.ReferenceDurationDays)

	jobs := s.ref.Jobs()
	var avgASPerJob float64
	if len(jobs) > 0 {
		var total int
		for _, j := range jobs {
			total += j.ApplyStarts
		}
		avgASPerJob = float64(total) / float64(len(jobs))
	}

	writeJSONResponse(w, http.StatusOK, predictor.JobImpactResponse{
		OverallQualityScore:   impact.OverallQualityScore,
		CPASIfPerfectQuality:  impact.CPASIfPerfectQuality,
		CPASCurrent:           impact.CPASCurrent,
		ASIfPerfectQuality:    impact.ApplyStartsIfPerfectQuality,
		ASCurrent:             impact.ApplyStartsCurrent,
		OptimalJobCount:       advice.Count,
		OptimalJobCountReason: advice.Reason,
		Confidence:            predictor.Confidence(base.Confidence),
		AvgASPerJob:           avgASPerJob,
	})
}

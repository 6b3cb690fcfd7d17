// Package predictor provides a client for the remote prediction service:
// campaign forecasts, delivery boundaries, job quality scores, and
// quality-impact scenarios. Each call is independent and carries no shared
// mutable state; a failed call surfaces as an error for that call only.
package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the prediction service operations.
type Client interface {
	// Forecast returns the authoritative campaign projection.
	Forecast(ctx context.Context, req ForecastRequest) (*ForecastResponse, error)
	// Boundaries returns the achievable delivery envelope. Unlike
	// Forecast, its duration counts days.
	Boundaries(ctx context.Context, budget float64, durationDays int) (*BoundariesResponse, error)
	// JobQualityScores returns all reviewed jobs with quality scores.
	JobQualityScores(ctx context.Context) (*JobQualityScoresResponse, error)
	// JobImpact returns the what-if-perfect-quality projection.
	JobImpact(ctx context.Context, req JobImpactRequest) (*JobImpactResponse, error)
}

// Option configures the predictor client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit sets the request rate limit.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
		}
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a prediction service client.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) Forecast(ctx context.Context, req ForecastRequest) (*ForecastResponse, error) {
	if req.DurationWeeks < 1 {
		return nil, eris.New("predictor: duration must be at least one week")
	}

	q := url.Values{}
	q.Set("budget", formatFloat(req.Budget))
	q.Set("duration", strconv.Itoa(req.DurationWeeks))
	if req.StartDate != "" {
		q.Set("start_date", req.StartDate)
	}
	if req.EndDate != "" {
		q.Set("end_date", req.EndDate)
	}
	if req.ApplyStartGoal > 0 {
		q.Set("as_goal", formatFloat(req.ApplyStartGoal))
	}

	result := &ForecastResponse{Confidence: defaultConfidence}
	if err := c.get(ctx, "/api/cpas-for-budget", q, result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, eris.Errorf("predictor: forecast failed: %s", result.Error)
	}
	return result, nil
}

func (c *httpClient) Boundaries(ctx context.Context, budget float64, durationDays int) (*BoundariesResponse, error) {
	q := url.Values{}
	q.Set("budget", formatFloat(budget))
	q.Set("duration", strconv.Itoa(durationDays))

	result := &BoundariesResponse{}
	if err := c.get(ctx, "/api/boundaries-for-budget", q, result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, eris.Errorf("predictor: boundaries failed: %s", result.Error)
	}
	return result, nil
}

func (c *httpClient) JobQualityScores(ctx context.Context) (*JobQualityScoresResponse, error) {
	result := &JobQualityScoresResponse{}
	if err := c.get(ctx, "/api/job-quality-scores", nil, result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, eris.Errorf("predictor: job quality scores failed: %s", result.Error)
	}
	return result, nil
}

func (c *httpClient) JobImpact(ctx context.Context, req JobImpactRequest) (*JobImpactResponse, error) {
	if req.DurationWeeks < 1 {
		return nil, eris.New("predictor: duration must be at least one week")
	}

	q := url.Values{}
	q.Set("budget", formatFloat(req.Budget))
	q.Set("duration", strconv.Itoa(req.DurationWeeks))
	q.Set("as_goal", formatFloat(req.ApplyStartGoal))
	if req.StartDate != "" {
		q.Set("start_date", req.StartDate)
	}
	if req.EndDate != "" {
		q.Set("end_date", req.EndDate)
	}

	result := &JobImpactResponse{Confidence: defaultConfidence}
	if err := c.get(ctx, "/api/job-impact-scenarios", q, result); err != nil {
		return nil, err
	}
	if result.Error != "" {
		return nil, eris.Errorf("predictor: job impact failed: %s", result.Error)
	}
	return result, nil
}

// get performs a rate-limited GET with backoff retries on transient
// failures, decoding the JSON body into out. Non-2xx responses after
// retries are a hard failure for the call.
func (c *httpClient) get(ctx context.Context, path string, q url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "predictor: create request")
	}
	req.Header.Set("Accept", "application/json")

	body, statusCode, err := c.retryDo(ctx, req)
	if err != nil {
		return eris.Wrap(err, "predictor: request failed")
	}
	if statusCode < 200 || statusCode >= 300 {
		return eris.Errorf("predictor: unexpected status %d: %s", statusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "predictor: unmarshal response")
	}
	return nil
}

func retryableStatusCode(code int) bool {
	return code == http.StatusTooManyRequests ||
		code == http.StatusInternalServerError ||
		code == http.StatusBadGateway ||
		code == http.StatusServiceUnavailable
}

// retryDo executes an HTTP request with exponential backoff retries on
// transient failures (429, 500, 502, 503). Returns the response body and
// status code on success, or the last error after exhausting retries.
func (c *httpClient) retryDo(ctx context.Context, req *http.Request) ([]byte, int, error) {
	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, eris.Wrap(err, "predictor: rate limiter wait")
		}

		retryReq := req.Clone(ctx)

		resp, err := c.http.Do(retryReq)
		if err != nil {
			lastErr = err
			if attempt < maxAttempts {
				select {
				case <-ctx.Done():
					return nil, 0, ctx.Err()
				case <-time.After(backoff):
				}
				backoff *= 2
				continue
			}
			return nil, 0, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, resp.StatusCode, eris.Wrap(readErr, "predictor: read response body")
		}

		if retryableStatusCode(resp.StatusCode) && attempt < maxAttempts {
			lastErr = eris.Errorf("predictor: status %d: %s", resp.StatusCode, string(body))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			continue
		}

		return body, resp.StatusCode, nil
	}

	return nil, 0, lastErr
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}

package valhalla

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/mbendaoud/fretplan-go/internal/adapters/metrics"
	"github.com/mbendaoud/fretplan-go/internal/domain/routing"
	"github.com/mbendaoud/fretplan-go/internal/domain/shared"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 3
	defaultBackoffBase = 500 * time.Millisecond
	defaultRateLimit   = 10 // requests per second
	defaultRateBurst   = 10

	// Fallback estimates assume a loaded truck averaging 40 km/h
	fallbackSpeedKmh = 40.0

	breakerMaxFailures = 5
	breakerCooldown    = 30 * time.Second
)

// Config holds the routing engine connection settings
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	BackoffBase time.Duration
	RateLimit   float64
	RateBurst   int
}

// Client talks to a Valhalla-compatible routing engine over HTTP.
// It implements routing.Provider: every call is answered, degrading to
// great-circle estimates when the engine cannot respond.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	breaker     *CircuitBreaker
	baseURL     string
	maxRetries  int
	backoffBase time.Duration
	clock       shared.Clock
}

// NewClient creates a new routing engine client
// If clock is nil, uses RealClock for production
func NewClient(cfg Config, clock shared.Clock) *Client {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = defaultRateBurst
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		breaker:     NewCircuitBreaker(breakerMaxFailures, breakerCooldown, clock),
		baseURL:     cfg.BaseURL,
		maxRetries:  cfg.MaxRetries,
		backoffBase: cfg.BackoffBase,
		clock:       clock,
	}
}

// Route computes the truck route between two points
func (c *Client) Route(ctx context.Context, from, to shared.GeoPoint, departAt *time.Time) (*routing.RouteResult, error) {
	started := c.clock.Now()

	payload := map[string]interface{}{
		"locations": []map[string]float64{
			{"lat": from.Lat, "lon": from.Lng},
			{"lat": to.Lat, "lon": to.Lng},
		},
		"costing":            "truck",
		"directions_options": map[string]string{"units": "kilometers"},
	}
	if departAt != nil {
		payload["date_time"] = map[string]string{
			"type":  "departure",
			"value": departAt.UTC().Format(time.RFC3339),
		}
	}

	var response struct {
		Trip struct {
			Legs []struct {
				Summary struct {
					Length float64 `json:"length"` // km
					Time   float64 `json:"time"`   // s
				} `json:"summary"`
				Shape string `json:"shape"`
			} `json:"legs"`
		} `json:"trip"`
	}

	err := c.breaker.Call(func() error {
		return c.post(ctx, "/route", payload, &response)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		result := c.haversineRoute(from, to)
		metrics.RecordRouteRequest(true, c.clock.Now().Sub(started).Seconds())
		return result, nil
	}

	if len(response.Trip.Legs) == 0 {
		// Engine answered but produced no route
		result := c.haversineRoute(from, to)
		metrics.RecordRouteRequest(true, c.clock.Now().Sub(started).Seconds())
		return result, nil
	}

	leg := response.Trip.Legs[0]
	metrics.RecordRouteRequest(false, c.clock.Now().Sub(started).Seconds())
	return &routing.RouteResult{
		DistanceKm:  leg.Summary.Length,
		DurationMin: leg.Summary.Time / 60.0,
		Polyline:    leg.Shape,
		OK:          true,
	}, nil
}

// Matrix computes the full n×n travel matrix over the given points
func (c *Client) Matrix(ctx context.Context, points []shared.GeoPoint) (*routing.MatrixResult, error) {
	n := len(points)
	if n == 0 {
		return routing.NewMatrixResult(0), nil
	}

	started := c.clock.Now()

	locations := make([]map[string]float64, n)
	for i, p := range points {
		locations[i] = map[string]float64{"lat": p.Lat, "lon": p.Lng}
	}
	payload := map[string]interface{}{
		"sources": locations,
		"targets": locations,
		"costing": "truck",
	}

	var response struct {
		SourcesToTargets [][]struct {
			Time     float64  `json:"time"`     // s
			Distance *float64 `json:"distance"` // km, may be omitted
		} `json:"sources_to_targets"`
	}

	err := c.breaker.Call(func() error {
		return c.post(ctx, "/sources_to_targets", payload, &response)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		result := c.haversineMatrix(points)
		metrics.RecordMatrixRequest(n, true, c.clock.Now().Sub(started).Seconds())
		return result, nil
	}

	if len(response.SourcesToTargets) != n {
		result := c.haversineMatrix(points)
		metrics.RecordMatrixRequest(n, true, c.clock.Now().Sub(started).Seconds())
		return result, nil
	}

	result := routing.NewMatrixResult(n)
	for i, row := range response.SourcesToTargets {
		if len(row) != n {
			fallback := c.haversineMatrix(points)
			metrics.RecordMatrixRequest(n, true, c.clock.Now().Sub(started).Seconds())
			return fallback, nil
		}
		for j, cell := range row {
			result.DurationsS[i][j] = cell.Time
			if cell.Distance != nil {
				result.DistancesM[i][j] = *cell.Distance * 1000.0
			} else {
				// Engine omitted the distance, derive it from the
				// duration at nominal truck speed
				result.DistancesM[i][j] = cell.Time / 3600.0 * fallbackSpeedKmh * 1000.0
			}
		}
	}

	metrics.RecordMatrixRequest(n, false, c.clock.Now().Sub(started).Seconds())
	return result, nil
}

// haversineRoute builds a deterministic great-circle estimate for one leg
func (c *Client) haversineRoute(from, to shared.GeoPoint) *routing.RouteResult {
	km := from.HaversineKm(to)
	return &routing.RouteResult{
		DistanceKm:   km,
		DurationMin:  km / fallbackSpeedKmh * 60.0,
		OK:           false,
		FallbackUsed: true,
	}
}

// haversineMatrix builds a deterministic great-circle estimate for all pairs
func (c *Client) haversineMatrix(points []shared.GeoPoint) *routing.MatrixResult {
	n := len(points)
	result := routing.NewMatrixResult(n)
	result.OK = false
	result.FallbackUsed = true

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			km := points[i].HaversineKm(points[j])
			result.DurationsS[i][j] = km / fallbackSpeedKmh * 3600.0
			result.DistancesM[i][j] = km * 1000.0
		}
	}

	return result
}

// post makes an HTTP request with rate limiting and exponential backoff retries
func (c *Client) post(ctx context.Context, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Network error - retryable
			lastErr = fmt.Errorf("network error: %w", err)

			if attempt >= c.maxRetries {
				break
			}
			if ctx.Err() != nil {
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			}

			c.clock.Sleep(addJitter(c.backoffBase * time.Duration(1<<attempt)))
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("failed to read response: %w", readErr)
		}

		// 429 Too Many Requests - retryable, honor Retry-After when present
		if resp.StatusCode == http.StatusTooManyRequests {
			var retryAfterDuration time.Duration
			if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil {
					retryAfterDuration = time.Duration(seconds) * time.Second
				}
			}

			lastErr = fmt.Errorf("rate limited (429)")

			if attempt >= c.maxRetries {
				break
			}
			if ctx.Err() != nil {
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			}

			backoffDelay := addJitter(c.backoffBase * time.Duration(1<<attempt))
			if retryAfterDuration > 0 {
				// Server-provided value, no jitter
				backoffDelay = retryAfterDuration
			}
			c.clock.Sleep(backoffDelay)
			continue
		}

		// 5xx server errors - retryable
		if resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("server error (%d)", resp.StatusCode)

			if attempt >= c.maxRetries {
				break
			}
			if ctx.Err() != nil {
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			}

			c.clock.Sleep(addJitter(c.backoffBase * time.Duration(1<<attempt)))
			continue
		}

		// Remaining non-2xx statuses - NOT retryable
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("routing engine error (status %d): %s", resp.StatusCode, string(respBody))
		}

		if result != nil {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to unmarshal response: %w", err)
			}
		}

		return nil
	}

	if lastErr != nil {
		return fmt.Errorf("max retries exceeded: %w", lastErr)
	}
	return fmt.Errorf("max retries exceeded")
}

// addJitter adds random jitter to a duration to avoid thundering herd
// Returns a duration between 50% and 150% of the original value
func addJitter(d time.Duration) time.Duration {
	jitter := 0.5 + rand.Float64() // 0.5 to 1.5
	return time.Duration(float64(d) * jitter)
}

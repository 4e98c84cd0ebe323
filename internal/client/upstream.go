package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kjstillabower/health-advisory-service/internal/circuitbreaker"
	"github.com/kjstillabower/health-advisory-service/internal/observability"
	"github.com/kjstillabower/health-advisory-service/internal/traffic"
)

// Options tune the HTTP behaviour shared by every upstream client.
type Options struct {
	Timeout        time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	// Breaker guards the upstream; nil disables circuit breaking.
	Breaker    *circuitbreaker.Breaker
	HTTPClient *http.Client
	UserAgent  string
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = 1
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = 100 * time.Millisecond
	}
	if o.RetryMaxDelay < o.RetryBaseDelay {
		o.RetryMaxDelay = o.RetryBaseDelay
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{}
	}
	return o
}

// NewBreaker returns a breaker that reports transitions to Prometheus and ignores
// errors that say nothing about upstream health.
func NewBreaker(name string, failureThreshold int, openTimeout time.Duration) *circuitbreaker.Breaker {
	return circuitbreaker.New(circuitbreaker.Config{
		Name:             name,
		FailureThreshold: failureThreshold,
		OpenTimeout:      openTimeout,
		IsFailure:        countsAgainstBreaker,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			observability.RecordCircuitBreakerTransition(name, from.String(), to.String(), int(to))
		},
	})
}

// upstream performs JSON GETs with per-attempt timeouts, retries and circuit breaking.
type upstream struct {
	opts Options
}

// errorBody covers the error envelopes of the providers we call.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// getJSON fetches rawURL into out. api names the endpoint in metrics and errors.
func (u *upstream) getJSON(ctx context.Context, api, rawURL string, out interface{}) error {
	var lastErr error
	for attempt := 0; attempt < u.opts.RetryAttempts; attempt++ {
		if attempt > 0 {
			observability.UpstreamRetriesTotal.WithLabelValues(api).Inc()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(u.backoff(attempt)):
			}
		}

		var err error
		if u.opts.Breaker != nil {
			err = u.opts.Breaker.Do(func() error { return u.once(ctx, api, rawURL, out) })
		} else {
			err = u.once(ctx, api, rawURL, out)
		}
		if err == nil {
			traffic.Upstream.Record(traffic.Success)
			return nil
		}
		lastErr = err
		if !isRetryable(err) || ctx.Err() != nil {
			break
		}
	}

	category := CategorizeError(lastErr)
	observability.UpstreamErrorsTotal.WithLabelValues(api, string(category)).Inc()
	if countsAgainstBreaker(lastErr) {
		traffic.Upstream.Record(traffic.Failure)
	}
	observability.LoggerFromContext(ctx).Warn("upstream call failed",
		zap.String("api", api),
		zap.String("category", string(category)),
		zap.Error(lastErr),
	)
	return lastErr
}

func (u *upstream) once(ctx context.Context, api, rawURL string, out interface{}) error {
	start := time.Now()
	reqCtx, cancel := context.WithTimeout(ctx, u.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", api, err)
	}
	req.Header.Set("Accept", "application/json")
	if u.opts.UserAgent != "" {
		req.Header.Set("User-Agent", u.opts.UserAgent)
	}
	if id := observability.CorrelationID(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}

	resp, err := u.opts.HTTPClient.Do(req)
	if err != nil {
		u.observe(api, "error", start)
		return fmt.Errorf("%s: request failed: %w", api, err)
	}
	defer resp.Body.Close()
	u.observe(api, strconv.Itoa(resp.StatusCode), start)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%s: read body: %w", api, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		msg := eb.Message
		if msg == "" {
			msg = eb.Error
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{API: api, StatusCode: resp.StatusCode, Message: msg, Err: sentinelForStatus(resp.StatusCode)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: %w: %v", api, ErrBadResponse, err)
	}
	return nil
}

func (u *upstream) observe(api, status string, start time.Time) {
	observability.UpstreamCallsTotal.WithLabelValues(api, status).Inc()
	observability.UpstreamDuration.WithLabelValues(api, status).Observe(time.Since(start).Seconds())
}

// backoff doubles the base delay per attempt up to the max, plus up to 10% jitter.
func (u *upstream) backoff(attempt int) time.Duration {
	delay := float64(u.opts.RetryBaseDelay) * math.Pow(2, float64(attempt-1))
	if delay > float64(u.opts.RetryMaxDelay) {
		delay = float64(u.opts.RetryMaxDelay)
	}
	return time.Duration(delay + delay*0.1*rand.Float64())
}

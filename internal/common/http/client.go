// Package http is the outbound HTTP client used for the places providers.
// Every call is rate limited, wrapped in a per-provider circuit breaker and
// bounded by a timeout.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"reco-workers/internal/common/config"
	"reco-workers/internal/common/logger"
	"reco-workers/internal/common/metrics"
)

const (
	maxBodyBytes    = 4 << 20
	maxErrorBodyLen = 500
)

// StatusError is returned for non-2xx responses. Body is truncated.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Options configures a provider client.
type Options struct {
	Name      string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
	Breaker   config.BreakerConfig
	Logger    logger.Logger
}

type Client struct {
	httpClient *http.Client
	name       string
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[[]byte]
	logger     logger.Logger
}

func NewClient(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	c := &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		name:       opts.Name,
		logger:     log.WithFields(map[string]interface{}{"provider": opts.Name}),
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	c.cb = newBreaker(opts.Name, opts.Breaker, c.logger)
	return c
}

func newBreaker(name string, cfg config.BreakerConfig, log logger.Logger) *gobreaker.CircuitBreaker[[]byte] {
	metrics.ProviderBreakerState.WithLabelValues(name).Set(0)

	minRequests := cfg.MinRequests
	ratio := cfg.FailureRatio
	if ratio <= 0 {
		ratio = 0.6
	}

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    config.GetDuration(cfg.Interval),
		Timeout:     config.GetDuration(cfg.Timeout),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= ratio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state change", map[string]interface{}{
				"from": from.String(),
				"to":   to.String(),
			})
			metrics.ProviderBreakerState.WithLabelValues(name).Set(float64(to))
		},
		// Client errors other than 429 mean the request was bad, not that
		// the provider is unhealthy.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *StatusError
			if errors.As(err, &se) {
				return se.StatusCode >= 400 && se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests
			}
			return false
		},
	})
}

// Do sends req and returns the response body of a 2xx response. operation
// labels the call in metrics.
func (c *Client) Do(ctx context.Context, operation string, req *http.Request) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.ProviderRequestDuration.WithLabelValues(c.name, operation).Observe(time.Since(start).Seconds())
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			metrics.ProviderRequests.WithLabelValues(c.name, operation, "rate_limited").Inc()
			return nil, fmt.Errorf("%s rate limiter: %w", c.name, err)
		}
	}

	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.send(ctx, req)
	})
	metrics.ProviderRequests.WithLabelValues(c.name, operation, outcome(err)).Inc()
	return body, err
}

func (c *Client) send(ctx context.Context, req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text := string(body)
		if len(text) > maxErrorBodyLen {
			text = text[:maxErrorBodyLen]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: text}
	}
	return body, nil
}

// IsTimeout reports whether err came from a deadline or a network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsBreakerOpen reports whether the breaker rejected the call.
func IsBreakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsBreakerOpen(err):
		return "breaker_open"
	case IsTimeout(err):
		return "timeout"
	default:
		var se *StatusError
		if errors.As(err, &se) {
			return fmt.Sprintf("status_%dxx", se.StatusCode/100)
		}
		return "error"
	}
}

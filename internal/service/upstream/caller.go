package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"SentiPull/internal/domain/models"
	drepo "SentiPull/internal/domain/repository"
	xhttp "SentiPull/pkg/http"
	applogger "SentiPull/pkg/logger"
	pkgmetrics "SentiPull/pkg/metrics"
	"SentiPull/pkg/retry"
)

// Caller issues JSON GETs to one upstream API under a shared retry policy.
type Caller struct {
	source  string
	http    *xhttp.Client
	policy  *retry.Policy
	metrics drepo.Metrics
	log     *applogger.Logger
}

// NewCaller creates a caller for source. Nil metrics and logger are replaced
// with no-ops.
func NewCaller(source string, hc *xhttp.Client, policy *retry.Policy, metrics drepo.Metrics, l *applogger.Logger) *Caller {
	if policy == nil {
		policy = retry.New()
	}
	if metrics == nil {
		metrics = pkgmetrics.Nop{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &Caller{source: source, http: hc, policy: policy, metrics: metrics, log: l}
}

// Log returns the caller's logger.
func (c *Caller) Log() *applogger.Logger { return c.log }

// Metrics returns the caller's metrics sink.
func (c *Caller) Metrics() drepo.Metrics { return c.metrics }

// Get fetches path and decodes the body into a fresh T, retrying transient
// failures. Exhausted retries are reported as models.ErrTransientFetch.
func Get[T any](ctx context.Context, c *Caller, endpoint, path string, query url.Values) (T, error) {
	op := func() (T, error) {
		var v T
		err := c.http.GetJSON(ctx, path, query, &v)
		result := "ok"
		if err != nil {
			result = "error"
		}
		c.metrics.RecordUpstreamRequest(c.source, endpoint, result)
		return v, err
	}
	notify := func(attempt int, err error, wait time.Duration) {
		c.metrics.RecordRetry(c.source, endpoint)
		c.log.Warn("upstream request failed, retrying",
			applogger.String("source", c.source),
			applogger.String("endpoint", endpoint),
			applogger.Int("attempt", attempt),
			applogger.Duration("wait_ms", wait),
			applogger.Error(err),
		)
	}

	v, err := retry.Do(ctx, c.policy, op, notify)
	if err != nil {
		if errors.Is(err, retry.ErrExhausted) {
			return v, fmt.Errorf("%s %s: %w: %w", c.source, endpoint, models.ErrTransientFetch, err)
		}
		return v, fmt.Errorf("%s %s: %w", c.source, endpoint, err)
	}
	return v, nil
}

// Pause waits d between pages, returning early when ctx is done.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Contains reports whether v is in vocabulary.
func Contains(vocabulary []string, v string) bool {
	for _, s := range vocabulary {
		if s == v {
			return true
		}
	}
	return false
}

// Package retry runs upstream calls under one bounded exponential backoff policy.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// ErrExhausted is returned (wrapped) when every attempt failed with a transient error.
var ErrExhausted = errors.New("retries exhausted")

// Option configures Policy.
type Option func(*Policy)

// Policy holds the retry limits shared by every upstream call site.
type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	Jitter          float64
	MaxElapsed      time.Duration
}

// New creates a Policy with defaults: 5 attempts, 500ms doubling up to 30s, 20% jitter.
func New(opts ...Option) *Policy {
	p := &Policy{
		MaxAttempts:     5,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     30 * time.Second,
		Multiplier:      2,
		Jitter:          0.2,
		MaxElapsed:      15 * time.Minute,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.MaxInterval < p.InitialInterval {
		p.MaxInterval = p.InitialInterval
	}
	if p.MaxElapsed <= 0 {
		p.MaxElapsed = 15 * time.Minute
	}
	return p
}

// WithMaxAttempts sets the total number of attempts, first call included.
func WithMaxAttempts(n int) Option {
	return func(p *Policy) {
		p.MaxAttempts = n
	}
}

// WithBackoff sets the exponential backoff range and growth factor.
func WithBackoff(initial, max time.Duration, multiplier float64) Option {
	return func(p *Policy) {
		p.InitialInterval = initial
		p.MaxInterval = max
		if multiplier >= 1 {
			p.Multiplier = multiplier
		}
	}
}

// WithJitter sets the randomization factor (0 disables jitter).
func WithJitter(f float64) Option {
	return func(p *Policy) {
		p.Jitter = f
	}
}

// WithMaxElapsed bounds the total time spent across attempts.
func WithMaxElapsed(d time.Duration) Option {
	return func(p *Policy) {
		p.MaxElapsed = d
	}
}

// Notify is called before each wait with the attempt that failed.
type Notify func(attempt int, err error, wait time.Duration)

// Temporary is implemented by errors that know whether they are worth retrying.
type Temporary interface {
	Temporary() bool
}

// Permanent marks err as not retryable.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// IsTransient classifies err: status errors decide for themselves, context
// cancellation is final, everything else (network, malformed body) is transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var t Temporary
	if errors.As(err, &t) {
		return t.Temporary()
	}
	return true
}

// Do runs op until it succeeds, fails permanently or the attempts run out.
func Do[T any](ctx context.Context, p *Policy, op func() (T, error), notify Notify) (T, error) {
	if p == nil {
		p = New()
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.Jitter

	attempt := 0
	final := false
	wrapped := func() (T, error) {
		attempt++
		res, err := op()
		if err == nil {
			return res, nil
		}
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			final = true
			return res, err
		}
		if !IsTransient(err) {
			final = true
			return res, backoff.Permanent(err)
		}
		return res, err
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.MaxAttempts)),
		backoff.WithMaxElapsedTime(p.MaxElapsed),
	}
	if notify != nil {
		opts = append(opts, backoff.WithNotify(func(err error, wait time.Duration) {
			notify(attempt, err, wait)
		}))
	}

	res, err := backoff.Retry(ctx, wrapped, opts...)
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	if final {
		return res, err
	}
	return res, fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt, err)
}

package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned while a vendor's breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig tunes the per-vendor circuit breaker.
type BreakerConfig struct {
	MaxRequests         uint32        // calls allowed while half-open
	Interval            time.Duration // closed-state count reset period
	Timeout             time.Duration // open-state duration before half-open
	ConsecutiveFailures uint32        // failures that trip the breaker
}

// DefaultBreakerConfig returns the settings used by NewSet.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// guarded wraps a Provider with a circuit breaker. Only vendor-side failures
// (transport errors, 5xx, 429) count against the breaker. Context cancellation
// and client errors do not.
type guarded struct {
	kind     Kind
	provider Provider
	cb       *gobreaker.CircuitBreaker
}

func withBreaker(kind Kind, provider Provider, cfg BreakerConfig, onStateChange func(name string, from, to gobreaker.State)) *guarded {
	settings := gobreaker.Settings{
		Name:        string(kind),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful:  countsAsSuccess,
		OnStateChange: onStateChange,
	}

	return &guarded{kind: kind, provider: provider, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (g *guarded) Generate(ctx context.Context, req Request) (string, error) {
	result, err := g.cb.Execute(func() (interface{}, error) {
		return g.provider.Generate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%s: %w", g.kind, ErrCircuitOpen)
		}

		return "", err
	}

	text, _ := result.(string)

	return text, nil
}

func (g *guarded) State() gobreaker.State {
	return g.cb.State()
}

func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrEmptyResponse) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return !statusErr.Temporary()
	}

	return false
}

package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerClient wraps a Client with a circuit breaker so a failing
// generation endpoint sheds load instead of absorbing every retry.
type BreakerClient struct {
	inner Client
	cb    *gobreaker.CircuitBreaker[json.RawMessage]
}

// BreakerSettings tunes the circuit. Zero values get defaults.
type BreakerSettings struct {
	Name                string
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// NewBreakerClient decorates inner. The circuit opens after the configured
// number of consecutive transport failures and half-opens after OpenTimeout.
func NewBreakerClient(inner Client, settings BreakerSettings) *BreakerClient {
	name := settings.Name
	if name == "" {
		name = "llm"
	}
	failures := settings.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}
	openTimeout := settings.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[json.RawMessage](gobreaker.Settings{
		Name:    name,
		Timeout: openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
	})
	return &BreakerClient{inner: inner, cb: cb}
}

// Complete forwards through the breaker. When the circuit is open the call
// fails immediately with gobreaker.ErrOpenState.
func (b *BreakerClient) Complete(ctx context.Context, req Request) (json.RawMessage, error) {
	return b.cb.Execute(func() (json.RawMessage, error) {
		return b.inner.Complete(ctx, req)
	})
}

var _ Client = (*BreakerClient)(nil)

package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/gamalabs/agentpool/logging"
)

// Default circuit breaker settings.
const (
	defaultBreakerMaxFailures uint32        = 5
	defaultBreakerTimeout     time.Duration = 30 * time.Second
	defaultBreakerInterval    time.Duration = 60 * time.Second
)

// BreakerConfig configures the circuit breaker behavior.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures before the circuit
	// opens.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before a half-open probe.
	Timeout time.Duration
	// Interval is the cyclic period of the closed state for clearing
	// failure counts. If 0, failures never reset until the circuit opens.
	Interval time.Duration
}

// BreakerModel wraps a Model with circuit breaker protection. When the
// wrapped provider fails repeatedly, the circuit opens and subsequent calls
// fail fast without reaching the provider. Under a broadcast this turns N
// slow timeouts against a dead upstream into N immediate errors.
type BreakerModel struct {
	inner   Model
	breaker *gobreaker.CircuitBreaker[*Response]
	logger  logging.Logger
}

// NewBreakerModel wraps inner with a circuit breaker. Zero-valued config
// fields fall back to defaults; a nil logger is replaced with NoOpLogger.
func NewBreakerModel(inner Model, cfg BreakerConfig, logger logging.Logger) *BreakerModel {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultBreakerMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultBreakerTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultBreakerInterval
	}

	name := inner.Info().Name
	cb := gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        "model:" + name,
		MaxRequests: 1, // allow one probe in half-open state
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})

	return &BreakerModel{inner: inner, breaker: cb, logger: logger}
}

// Complete implements Model. Calls are routed through the circuit breaker.
func (m *BreakerModel) Complete(ctx context.Context, req Request) (*Response, error) {
	resp, err := m.breaker.Execute(func() (*Response, error) {
		return m.inner.Complete(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("model %q circuit open: %w", m.inner.Info().Name, err)
		}
		return nil, err
	}
	return resp, nil
}

// Info implements Model.
func (m *BreakerModel) Info() Info { return m.inner.Info() }

// State returns the current circuit breaker state for monitoring.
func (m *BreakerModel) State() gobreaker.State { return m.breaker.State() }

var _ Model = (*BreakerModel)(nil)

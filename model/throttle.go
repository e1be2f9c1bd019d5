package model

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// ThrottledModel bounds the rate of provider calls. A broadcast fans one
// execution out per eligible agent; without a limiter every dispatch hits
// the provider at once.
type ThrottledModel struct {
	inner   Model
	limiter *rate.Limiter
}

// NewThrottledModel wraps inner so calls proceed at most rps per second
// with the given burst. Waiting respects ctx cancellation.
func NewThrottledModel(inner Model, rps float64, burst int) *ThrottledModel {
	if burst < 1 {
		burst = 1
	}
	return &ThrottledModel{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Complete implements Model, waiting for a rate token before delegating.
func (m *ThrottledModel) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("model %q rate limit wait: %w", m.inner.Info().Name, err)
	}
	return m.inner.Complete(ctx, req)
}

// Info implements Model.
func (m *ThrottledModel) Info() Info { return m.inner.Info() }

var _ Model = (*ThrottledModel)(nil)

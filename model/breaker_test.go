package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerModelPassthrough(t *testing.T) {
	mock := NewMockModel("inner")
	mock.AddResponse("hi", "hello")

	m := NewBreakerModel(mock, BreakerConfig{}, nil)
	resp, err := m.Complete(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Text)
	assert.Equal(t, "inner", m.Info().Name)
	assert.Equal(t, gobreaker.StateClosed, m.State())
}

func TestBreakerModelOpensAfterFailures(t *testing.T) {
	cause := errors.New("upstream down")
	mock := NewMockModel("inner")
	mock.FailWith(cause)

	m := NewBreakerModel(mock, BreakerConfig{MaxFailures: 3, Timeout: time.Minute}, nil)

	for i := 0; i < 3; i++ {
		_, err := m.Complete(context.Background(), Request{Prompt: "hi"})
		require.ErrorIs(t, err, cause)
	}
	require.Equal(t, gobreaker.StateOpen, m.State())

	// Open circuit fails fast without reaching the provider.
	before := mock.Calls()
	_, err := m.Complete(context.Background(), Request{Prompt: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, before, mock.Calls())
}

func TestBreakerModelRecovers(t *testing.T) {
	cause := errors.New("upstream down")
	mock := NewMockModel("inner")
	mock.FailWith(cause)

	m := NewBreakerModel(mock, BreakerConfig{MaxFailures: 1, Timeout: 20 * time.Millisecond}, nil)

	_, err := m.Complete(context.Background(), Request{Prompt: "hi"})
	require.ErrorIs(t, err, cause)
	require.Equal(t, gobreaker.StateOpen, m.State())

	mock.FailWith(nil)
	assert.Eventually(t, func() bool {
		_, err := m.Complete(context.Background(), Request{Prompt: "hi"})
		return err == nil
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, gobreaker.StateClosed, m.State())
}

// Package testutil provides canned agents shared by the package tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gamalabs/agentpool/agent"
	"github.com/gamalabs/agentpool/core"
)

// NewEchoAgent returns a READY agent whose "echo" handler renders its
// inputs in sorted key order.
func NewEchoAgent(t *testing.T, id string) *agent.HandlerAgent {
	t.Helper()
	a := agent.NewHandlerAgent(id, "Echo "+id, "echo")
	a.Register("echo", func(_ context.Context, task *core.TaskRequest) (string, map[string]any, error) {
		keys := make([]string, 0, len(task.Inputs))
		for k := range task.Inputs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, task.Inputs[k]))
		}
		return strings.Join(parts, " "), nil, nil
	})
	require.NoError(t, a.Initialize(context.Background()))
	return a
}

// NewFailingAgent returns a READY agent whose "echo" handler always fails
// with cause.
func NewFailingAgent(t *testing.T, id string, cause error) *agent.HandlerAgent {
	t.Helper()
	a := agent.NewHandlerAgent(id, "Failing "+id, "echo")
	a.Register("echo", func(context.Context, *core.TaskRequest) (string, map[string]any, error) {
		return "", nil, cause
	})
	require.NoError(t, a.Initialize(context.Background()))
	return a
}

// NewBlockingAgent returns a READY agent whose "echo" handler blocks until
// the returned release function is called (or the context expires). Each
// execution signals started before blocking.
func NewBlockingAgent(t *testing.T, id string) (_ *agent.HandlerAgent, started <-chan struct{}, release func()) {
	t.Helper()
	startedCh := make(chan struct{}, 16)
	releaseCh := make(chan struct{})

	a := agent.NewHandlerAgent(id, "Blocking "+id, "echo")
	a.Register("echo", func(ctx context.Context, _ *core.TaskRequest) (string, map[string]any, error) {
		startedCh <- struct{}{}
		select {
		case <-releaseCh:
			return "released", nil, nil
		case <-ctx.Done():
			return "", nil, ctx.Err()
		}
	})
	require.NoError(t, a.Initialize(context.Background()))

	var once sync.Once
	return a, startedCh, func() {
		once.Do(func() { close(releaseCh) })
	}
}

package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamalabs/agentpool/core"
)

func TestHandlerAgentExecute(t *testing.T) {
	a := NewHandlerAgent("agent-1", "Agent One", "worker")
	a.Register("greet", func(_ context.Context, task *core.TaskRequest) (string, map[string]any, error) {
		name, _ := task.Inputs["name"].(string)
		return "hello " + name, map[string]any{"lang": "en"}, nil
	})
	require.NoError(t, a.Initialize(context.Background()))

	task := core.NewTaskRequest(a.ID(), "greet", map[string]any{"name": "sam"}, core.ExecOptions{})
	result, err := a.Execute(context.Background(), task)
	require.NoError(t, err)

	assert.Equal(t, task.ID, result.TaskID)
	assert.Equal(t, "agent-1", result.AgentID)
	assert.Equal(t, "hello sam", result.Payload)
	assert.Equal(t, "en", result.Meta["lang"])
	assert.False(t, result.FinishedAt.Before(result.StartedAt))

	history := a.History()
	require.Len(t, history, 1)
	assert.Contains(t, history[0], "greet")
	assert.Contains(t, history[0], "completed")
}

func TestHandlerAgentUnknownTask(t *testing.T) {
	a := NewHandlerAgent("agent-1", "Agent One", "worker")
	require.NoError(t, a.Initialize(context.Background()))

	task := core.NewTaskRequest(a.ID(), "missing", nil, core.ExecOptions{})
	_, err := a.Execute(context.Background(), task)
	require.Error(t, err)

	var taskErr *core.TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, "agent-1", taskErr.AgentID)
	assert.Equal(t, "missing", taskErr.TaskName)
}

func TestHandlerAgentHandlerError(t *testing.T) {
	cause := errors.New("upstream unavailable")
	a := NewHandlerAgent("agent-1", "Agent One", "worker")
	a.Register("flaky", func(context.Context, *core.TaskRequest) (string, map[string]any, error) {
		return "", nil, cause
	})
	require.NoError(t, a.Initialize(context.Background()))

	task := core.NewTaskRequest(a.ID(), "flaky", nil, core.ExecOptions{})
	_, err := a.Execute(context.Background(), task)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	history := a.History()
	require.Len(t, history, 1)
	assert.Contains(t, history[0], "failed")
}

func TestHandlerAgentTimeout(t *testing.T) {
	a := NewHandlerAgent("agent-1", "Agent One", "worker")
	a.Register("slow", func(ctx context.Context, _ *core.TaskRequest) (string, map[string]any, error) {
		select {
		case <-ctx.Done():
			return "", nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return "done", nil, nil
		}
	})
	require.NoError(t, a.Initialize(context.Background()))

	task := core.NewTaskRequest(a.ID(), "slow", nil, core.ExecOptions{Timeout: 10 * time.Millisecond})
	_, err := a.Execute(context.Background(), task)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHandlerAgentInitHook(t *testing.T) {
	t.Run("hook success", func(t *testing.T) {
		ran := false
		a := NewHandlerAgent("agent-1", "Agent One", "worker", func(o *HandlerAgentOptions) {
			o.InitHook = func(context.Context) error {
				ran = true
				return nil
			}
		})
		require.NoError(t, a.Initialize(context.Background()))
		assert.True(t, ran)
		assert.Equal(t, core.StateReady, a.State())
	})

	t.Run("hook failure", func(t *testing.T) {
		cause := errors.New("warmup failed")
		a := NewHandlerAgent("agent-1", "Agent One", "worker", func(o *HandlerAgentOptions) {
			o.InitHook = func(context.Context) error { return cause }
		})
		err := a.Initialize(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, core.StateError, a.State())
	})
}

func TestHandlerAgentCapabilitiesOption(t *testing.T) {
	a := NewHandlerAgent("agent-1", "Agent One", "worker", func(o *HandlerAgentOptions) {
		o.Capabilities = []core.Capability{"valuation", "parsing"}
	})
	assert.True(t, a.HasCapability("valuation"))
	assert.True(t, a.HasCapability("parsing"))
}

package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamalabs/agentpool/core"
)

func newReadyBase(t *testing.T, optFns ...func(c *Config)) *BaseAgent {
	t.Helper()
	b := NewBaseAgent("agent-1", "Agent One", "worker", optFns...)
	require.NoError(t, b.Initialize(context.Background()))
	require.Equal(t, core.StateReady, b.State())
	return &b
}

func TestBaseAgentLifecycle(t *testing.T) {
	b := NewBaseAgent("agent-1", "Agent One", "worker")
	assert.Equal(t, "agent-1", b.ID())
	assert.Equal(t, "Agent One", b.Name())
	assert.Equal(t, core.Kind("worker"), b.Kind())
	assert.Equal(t, core.StateInitializing, b.State())

	require.NoError(t, b.Initialize(context.Background()))
	assert.Equal(t, core.StateReady, b.State())

	require.NoError(t, b.Pause())
	assert.Equal(t, core.StatePaused, b.State())

	require.NoError(t, b.Resume())
	assert.Equal(t, core.StateReady, b.State())

	b.Terminate()
	assert.Equal(t, core.StateTerminated, b.State())

	// Terminate is idempotent and terminal.
	b.Terminate()
	assert.Equal(t, core.StateTerminated, b.State())
	assert.ErrorIs(t, b.Initialize(context.Background()), core.ErrTerminated)
}

func TestBaseAgentPauseRequiresReady(t *testing.T) {
	b := newReadyBase(t)
	task := core.NewTaskRequest(b.ID(), "work", nil, core.ExecOptions{})
	require.NoError(t, b.BeginTask(task))

	err := b.Pause()
	assert.ErrorIs(t, err, core.ErrAgentNotReady)
	assert.Equal(t, core.StateBusy, b.State())
}

func TestBaseAgentResumeRequiresPaused(t *testing.T) {
	b := newReadyBase(t)
	assert.ErrorIs(t, b.Resume(), core.ErrNotPaused)
}

func TestBaseAgentBeginTaskAdmission(t *testing.T) {
	b := newReadyBase(t)
	task := core.NewTaskRequest(b.ID(), "work", nil, core.ExecOptions{})

	require.NoError(t, b.BeginTask(task))
	assert.Equal(t, core.StateBusy, b.State())
	assert.Same(t, task, b.CurrentTask())

	// Second admission while busy must be rejected.
	other := core.NewTaskRequest(b.ID(), "other", nil, core.ExecOptions{})
	assert.ErrorIs(t, b.BeginTask(other), core.ErrAgentNotReady)
	assert.Same(t, task, b.CurrentTask())

	b.EndTask()
	assert.Equal(t, core.StateReady, b.State())
	assert.Nil(t, b.CurrentTask())
}

func TestBaseAgentBeginTaskConcurrent(t *testing.T) {
	b := newReadyBase(t)

	const attempts = 64
	var admitted int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			task := core.NewTaskRequest(b.ID(), fmt.Sprintf("task-%d", i), nil, core.ExecOptions{})
			if err := b.BeginTask(task); err == nil {
				atomic.AddInt32(&admitted, 1)
			} else {
				assert.ErrorIs(t, err, core.ErrAgentNotReady)
			}
		}(i)
	}

	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), admitted, "exactly one concurrent admission may win")
	assert.Equal(t, core.StateBusy, b.State())
}

func TestBaseAgentEndTaskWhenNotBusy(t *testing.T) {
	b := newReadyBase(t)
	b.EndTask()
	assert.Equal(t, core.StateReady, b.State())
}

func TestBaseAgentFailAndRestart(t *testing.T) {
	t.Run("restart disabled", func(t *testing.T) {
		b := newReadyBase(t)
		b.Fail(errors.New("connection lost"))
		assert.Equal(t, core.StateError, b.State())
		assert.ErrorIs(t, b.Initialize(context.Background()), core.ErrAgentNotReady)
	})

	t.Run("restart enabled", func(t *testing.T) {
		b := newReadyBase(t, func(c *Config) { c.AutoRestart = true })
		b.Fail(errors.New("connection lost"))
		assert.Equal(t, core.StateError, b.State())
		require.NoError(t, b.Initialize(context.Background()))
		assert.Equal(t, core.StateReady, b.State())
	})
}

func TestBaseAgentNotifications(t *testing.T) {
	b := newReadyBase(t)

	var mu sync.Mutex
	var seen []core.Notification
	unsubscribe := b.Subscribe(func(n core.Notification) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, n)
	})

	task := core.NewTaskRequest(b.ID(), "work", nil, core.ExecOptions{})
	require.NoError(t, b.BeginTask(task))
	b.EndTask()
	b.Fail(errors.New("boom"))

	mu.Lock()
	require.Len(t, seen, 5)

	sc, ok := seen[0].(core.StateChanged)
	require.True(t, ok)
	assert.Equal(t, core.StateReady, sc.Prev)
	assert.Equal(t, core.StateBusy, sc.Next)
	assert.Equal(t, b.ID(), sc.AgentID())
	assert.NotEmpty(t, sc.NotificationID())
	assert.False(t, sc.EmittedAt().IsZero())

	ta, ok := seen[1].(core.TaskAssigned)
	require.True(t, ok)
	assert.Equal(t, task.ID, ta.TaskID)
	assert.Equal(t, "work", ta.TaskName)

	sc, ok = seen[2].(core.StateChanged)
	require.True(t, ok)
	assert.Equal(t, core.StateBusy, sc.Prev)
	assert.Equal(t, core.StateReady, sc.Next)

	ae, ok := seen[3].(core.AgentError)
	require.True(t, ok)
	assert.EqualError(t, ae.Cause, "boom")

	sc, ok = seen[4].(core.StateChanged)
	require.True(t, ok)
	assert.Equal(t, core.StateError, sc.Next)
	mu.Unlock()

	unsubscribe()
	b.Terminate()

	mu.Lock()
	assert.Len(t, seen, 5, "no notifications after unsubscribe")
	mu.Unlock()
}

func TestBaseAgentHistoryBound(t *testing.T) {
	b := newReadyBase(t, func(c *Config) { c.MaxHistory = 3 })

	for i := 0; i < 5; i++ {
		b.AppendHistory(fmt.Sprintf("line-%d", i))
	}

	history := b.History()
	require.Len(t, history, 3)
	assert.Equal(t, []string{"line-2", "line-3", "line-4"}, history)
}

func TestBaseAgentMemoryBound(t *testing.T) {
	b := newReadyBase(t, func(c *Config) { c.MaxMemoryItems = 2 })

	assert.True(t, b.Remember("a", 1))
	assert.True(t, b.Remember("b", 2))

	// New key past the bound is rejected.
	assert.False(t, b.Remember("c", 3))
	_, ok := b.Recall("c")
	assert.False(t, ok)

	// Updating an existing key always succeeds.
	assert.True(t, b.Remember("a", 10))
	v, ok := b.Recall("a")
	require.True(t, ok)
	assert.Equal(t, 10, v)

	b.Forget("a")
	_, ok = b.Recall("a")
	assert.False(t, ok)
	assert.True(t, b.Remember("c", 3))
}

func TestBaseAgentCapabilities(t *testing.T) {
	b := newReadyBase(t)

	b.AddCapability("valuation")
	b.AddCapability("parsing")
	assert.True(t, b.HasCapability("valuation"))
	assert.Len(t, b.Capabilities(), 2)

	b.RemoveCapability("parsing")
	assert.False(t, b.HasCapability("parsing"))
	assert.Len(t, b.Capabilities(), 1)
}

func TestBaseAgentMetadata(t *testing.T) {
	b := newReadyBase(t)
	b.SetMetadata("region", "eu-west-1")

	meta := b.Metadata()
	assert.Equal(t, "eu-west-1", meta["region"])

	// Returned map is a copy.
	meta["region"] = "mutated"
	assert.Equal(t, "eu-west-1", b.Metadata()["region"])
}

package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gamalabs/agentpool/core"
)

// TaskHandler executes one named task's domain logic and returns the result
// payload plus optional metadata. Handlers must honor ctx cancellation;
// the coordination layer has no preemption beyond the deadline it passes
// down.
type TaskHandler func(ctx context.Context, task *core.TaskRequest) (payload string, meta map[string]any, err error)

// InitHook runs during Initialize; a failing hook moves the agent to ERROR.
type InitHook func(ctx context.Context) error

// HandlerAgent dispatches tasks to registered named handlers. It is the
// general-purpose worker for domain logic the pool itself does not care
// about: valuation runs, geospatial enrichment, document parsing.
type HandlerAgent struct {
	BaseAgent

	handlerMu sync.RWMutex
	handlers  map[string]TaskHandler
	initHook  InitHook
}

// HandlerAgentOptions configure a HandlerAgent beyond its base Config.
type HandlerAgentOptions struct {
	Config   Config
	InitHook InitHook
	// Capabilities seeds the initial capability set.
	Capabilities []core.Capability
}

// NewHandlerAgent constructs a HandlerAgent in StateInitializing.
func NewHandlerAgent(id, name string, kind core.Kind, optFns ...func(o *HandlerAgentOptions)) *HandlerAgent {
	opts := HandlerAgentOptions{Config: DefaultConfig()}
	for _, fn := range optFns {
		fn(&opts)
	}
	a := &HandlerAgent{
		BaseAgent: NewBaseAgent(id, name, kind, func(c *Config) { *c = opts.Config }),
		handlers:  make(map[string]TaskHandler),
		initHook:  opts.InitHook,
	}
	for _, c := range opts.Capabilities {
		a.AddCapability(c)
	}
	return a
}

// Register binds a handler to a task name, replacing any previous binding.
func (a *HandlerAgent) Register(taskName string, h TaskHandler) {
	a.handlerMu.Lock()
	defer a.handlerMu.Unlock()
	a.handlers[taskName] = h
}

// Initialize runs the optional init hook then transitions to READY. A hook
// failure moves the agent to ERROR and returns the cause.
func (a *HandlerAgent) Initialize(ctx context.Context) error {
	if a.initHook != nil {
		if err := a.initHook(ctx); err != nil {
			a.Fail(err)
			return fmt.Errorf("agent %s initialization failed: %w", a.ID(), err)
		}
	}
	return a.BaseAgent.Initialize(ctx)
}

// Execute resolves the task's handler and runs it under the effective
// deadline. Unknown task names and handler errors surface as TaskError.
func (a *HandlerAgent) Execute(ctx context.Context, task *core.TaskRequest) (*core.TaskResult, error) {
	a.handlerMu.RLock()
	h, ok := a.handlers[task.Name]
	a.handlerMu.RUnlock()
	if !ok {
		return nil, core.NewTaskError(a.ID(), task.ID, task.Name, fmt.Errorf("no handler registered for task %q", task.Name))
	}

	execCtx, cancel := a.deadline(ctx, task)
	defer cancel()

	started := time.Now()
	payload, meta, err := h(execCtx, task)
	finished := time.Now()

	if err != nil {
		a.AppendHistory(fmt.Sprintf("%s %s failed after %s", task.Name, task.ID, finished.Sub(started)))
		return nil, core.NewTaskError(a.ID(), task.ID, task.Name, err)
	}

	a.AppendHistory(fmt.Sprintf("%s %s completed in %s", task.Name, task.ID, finished.Sub(started)))

	return &core.TaskResult{
		TaskID:     task.ID,
		AgentID:    a.ID(),
		Name:       task.Name,
		Payload:    payload,
		Meta:       meta,
		StartedAt:  started,
		FinishedAt: finished,
	}, nil
}

var _ core.Agent = (*HandlerAgent)(nil)

package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gamalabs/agentpool/core"
)

// Config bounds an agent's context bundle and tunes its execution.
type Config struct {
	// MaxHistory bounds the denormalized task history (drop-oldest).
	MaxHistory int
	// MaxMemoryItems bounds the key/value memory map; inserts past the
	// bound are rejected, updates of existing keys always succeed.
	MaxMemoryItems int
	// Timeout is the default execution deadline when a task carries none.
	Timeout time.Duration
	// AutoRestart permits re-initialization out of the ERROR state.
	AutoRestart bool
}

// DefaultConfig returns the baseline agent configuration.
func DefaultConfig() Config {
	return Config{
		MaxHistory:     50,
		MaxMemoryItems: 100,
		Timeout:        0,
		AutoRestart:    false,
	}
}

// BaseAgent bundles identity, the lifecycle state machine, the bounded
// context bundle and observer plumbing. Embed it in concrete agent
// implementations and supply an Execute method to satisfy core.Agent. All
// exported methods are goroutine-safe.
//
// The admission invariant lives here: BeginTask performs the READY check
// and the flip to BUSY under one lock acquisition, so two concurrent
// admissions can never both succeed.
type BaseAgent struct {
	id   string
	name string
	kind core.Kind

	mu       sync.Mutex
	state    core.State
	caps     map[core.Capability]struct{}
	cfg      Config
	current  *core.TaskRequest
	history  []string
	memory   map[string]any
	metadata map[string]string

	observers map[uint64]core.Observer
	nextObsID uint64
}

// NewBaseAgent constructs a BaseAgent in StateInitializing.
func NewBaseAgent(id, name string, kind core.Kind, optFns ...func(c *Config)) BaseAgent {
	cfg := DefaultConfig()
	for _, fn := range optFns {
		fn(&cfg)
	}
	return BaseAgent{
		id:        id,
		name:      name,
		kind:      kind,
		state:     core.StateInitializing,
		caps:      make(map[core.Capability]struct{}),
		cfg:       cfg,
		memory:    make(map[string]any),
		metadata:  make(map[string]string),
		observers: make(map[uint64]core.Observer),
	}
}

// ID returns the opaque immutable identifier.
func (b *BaseAgent) ID() string { return b.id }

// Name returns the display name.
func (b *BaseAgent) Name() string { return b.name }

// Kind returns the enumerated type tag.
func (b *BaseAgent) Kind() core.Kind { return b.kind }

// Config returns the agent configuration.
func (b *BaseAgent) Config() Config { return b.cfg }

// State returns the current lifecycle state.
func (b *BaseAgent) State() core.State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Info returns a status snapshot for listings.
func (b *BaseAgent) Info() core.AgentInfo {
	return core.AgentInfo{ID: b.id, Name: b.name, Kind: b.kind, State: b.State()}
}

// Capabilities returns a snapshot of the capability set.
func (b *BaseAgent) Capabilities() []core.Capability {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]core.Capability, 0, len(b.caps))
	for c := range b.caps {
		out = append(out, c)
	}
	return out
}

// AddCapability adds a capability tag.
func (b *BaseAgent) AddCapability(c core.Capability) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.caps[c] = struct{}{}
}

// RemoveCapability removes a capability tag.
func (b *BaseAgent) RemoveCapability(c core.Capability) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.caps, c)
}

// HasCapability reports whether the agent carries the capability.
func (b *BaseAgent) HasCapability(c core.Capability) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.caps[c]
	return ok
}

// Initialize transitions INITIALIZING (or ERROR, when auto-restart is
// enabled) to READY. Concrete agents with setup work override this, run
// their hook and delegate here on success.
func (b *BaseAgent) Initialize(_ context.Context) error {
	b.mu.Lock()
	if b.state == core.StateTerminated {
		b.mu.Unlock()
		return core.ErrTerminated
	}
	if b.state == core.StateError && !b.cfg.AutoRestart {
		b.mu.Unlock()
		return fmt.Errorf("agent %s is in %s and auto-restart is disabled: %w", b.id, b.state, core.ErrAgentNotReady)
	}
	if b.state != core.StateInitializing && b.state != core.StateError {
		b.mu.Unlock()
		return fmt.Errorf("agent %s cannot initialize from %s: %w", b.id, b.state, core.ErrAgentNotReady)
	}
	prev := b.state
	b.state = core.StateReady
	obs := b.observerSnapshotLocked()
	b.mu.Unlock()

	emit(obs, core.NewStateChanged(b.id, prev, core.StateReady))
	return nil
}

// Pause withholds a READY agent from scheduling. Pausing a BUSY agent is
// rejected, not queued.
func (b *BaseAgent) Pause() error {
	b.mu.Lock()
	if b.state != core.StateReady {
		state := b.state
		b.mu.Unlock()
		return fmt.Errorf("agent %s cannot pause from %s: %w", b.id, state, core.ErrAgentNotReady)
	}
	b.state = core.StatePaused
	obs := b.observerSnapshotLocked()
	b.mu.Unlock()

	emit(obs, core.NewStateChanged(b.id, core.StateReady, core.StatePaused))
	return nil
}

// Resume returns a PAUSED agent to READY; any other state fails.
func (b *BaseAgent) Resume() error {
	b.mu.Lock()
	if b.state != core.StatePaused {
		state := b.state
		b.mu.Unlock()
		return fmt.Errorf("agent %s is %s: %w", b.id, state, core.ErrNotPaused)
	}
	b.state = core.StateReady
	obs := b.observerSnapshotLocked()
	b.mu.Unlock()

	emit(obs, core.NewStateChanged(b.id, core.StatePaused, core.StateReady))
	return nil
}

// Terminate moves the agent to its terminal state from anywhere. Calling it
// on an already terminated agent is a no-op.
func (b *BaseAgent) Terminate() {
	b.mu.Lock()
	if b.state == core.StateTerminated {
		b.mu.Unlock()
		return
	}
	prev := b.state
	b.state = core.StateTerminated
	b.current = nil
	obs := b.observerSnapshotLocked()
	b.mu.Unlock()

	emit(obs, core.NewStateChanged(b.id, prev, core.StateTerminated))
}

// Fail records an unrecoverable internal fault, emitting AgentError then
// the ERROR transition. Domain task failure is not agent failure; this is
// for faults in the agent itself.
func (b *BaseAgent) Fail(cause error) {
	b.mu.Lock()
	if b.state == core.StateTerminated {
		b.mu.Unlock()
		return
	}
	prev := b.state
	b.state = core.StateError
	b.current = nil
	obs := b.observerSnapshotLocked()
	b.mu.Unlock()

	emit(obs, core.NewAgentError(b.id, cause))
	emit(obs, core.NewStateChanged(b.id, prev, core.StateError))
}

// BeginTask atomically admits the task: the READY check and the flip to
// BUSY happen under one lock acquisition.
func (b *BaseAgent) BeginTask(task *core.TaskRequest) error {
	b.mu.Lock()
	if b.state != core.StateReady {
		state := b.state
		b.mu.Unlock()
		return fmt.Errorf("agent %s is %s: %w", b.id, state, core.ErrAgentNotReady)
	}
	b.state = core.StateBusy
	b.current = task
	obs := b.observerSnapshotLocked()
	b.mu.Unlock()

	emit(obs, core.NewStateChanged(b.id, core.StateReady, core.StateBusy))
	emit(obs, core.NewTaskAssigned(b.id, task.ID, task.Name))
	return nil
}

// EndTask completes the current task, returning the agent to READY whether
// the task succeeded or failed.
func (b *BaseAgent) EndTask() {
	b.mu.Lock()
	if b.state != core.StateBusy {
		b.mu.Unlock()
		return
	}
	b.state = core.StateReady
	b.current = nil
	obs := b.observerSnapshotLocked()
	b.mu.Unlock()

	emit(obs, core.NewStateChanged(b.id, core.StateBusy, core.StateReady))
}

// CurrentTask returns the agent's single in-flight task, or nil.
func (b *BaseAgent) CurrentTask() *core.TaskRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// AppendHistory records a denormalized line in the bounded history.
func (b *BaseAgent) AppendHistory(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = append(b.history, line)
	if len(b.history) > b.cfg.MaxHistory {
		b.history = b.history[len(b.history)-b.cfg.MaxHistory:]
	}
}

// History returns a copy of the bounded history, oldest first.
func (b *BaseAgent) History() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.history))
	copy(out, b.history)
	return out
}

// Remember stores a key/value pair in the bounded memory map. It returns
// false when the map is full and the key is new.
func (b *BaseAgent) Remember(key string, value any) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.memory[key]; !exists && len(b.memory) >= b.cfg.MaxMemoryItems {
		return false
	}
	b.memory[key] = value
	return true
}

// Recall returns a remembered value and its existence flag.
func (b *BaseAgent) Recall(key string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.memory[key]
	return v, ok
}

// Forget removes a remembered key.
func (b *BaseAgent) Forget(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.memory, key)
}

// SetMetadata attaches free-form metadata.
func (b *BaseAgent) SetMetadata(key, value string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.metadata[key] = value
}

// Metadata returns a copy of the metadata map.
func (b *BaseAgent) Metadata() map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]string, len(b.metadata))
	for k, v := range b.metadata {
		out[k] = v
	}
	return out
}

// Subscribe registers an observer for lifecycle notifications and returns
// its unsubscribe function.
func (b *BaseAgent) Subscribe(obs core.Observer) func() {
	b.mu.Lock()
	b.nextObsID++
	id := b.nextObsID
	b.observers[id] = obs
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.observers, id)
	}
}

// observerSnapshotLocked copies the observer set so notifications can be
// emitted after the state lock is released. Caller must hold b.mu.
func (b *BaseAgent) observerSnapshotLocked() []core.Observer {
	out := make([]core.Observer, 0, len(b.observers))
	for _, obs := range b.observers {
		out = append(out, obs)
	}
	return out
}

func emit(observers []core.Observer, n core.Notification) {
	for _, obs := range observers {
		obs(n)
	}
}

// deadline derives the effective execution context for a task from its
// options, falling back to the agent's configured default timeout.
func (b *BaseAgent) deadline(ctx context.Context, task *core.TaskRequest) (context.Context, context.CancelFunc) {
	timeout := task.Options.Timeout
	if timeout <= 0 {
		timeout = b.cfg.Timeout
	}
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

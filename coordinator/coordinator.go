package coordinator

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gamalabs/agentpool/cache"
	"github.com/gamalabs/agentpool/core"
	"github.com/gamalabs/agentpool/logging"
	"github.com/gamalabs/agentpool/mailbox"
	"github.com/gamalabs/agentpool/tracker"
)

// Assignment is the coordinator's per-agent record of the most recent task
// it dispatched. A new dispatch supersedes the record in place; removal of
// the agent discards it.
type Assignment struct {
	TaskID     string          `json:"task_id"`
	AgentID    string          `json:"agent_id"`
	TaskName   string          `json:"task_name"`
	Status     core.TaskStatus `json:"status"`
	AssignedAt time.Time       `json:"assigned_at"`
	// Reason carries the failure message for failed assignments.
	Reason string `json:"reason,omitempty"`
}

// BroadcastOutcome reports one fan-out run: which agents produced results
// and which failed, keyed by agent ID. A failed agent never removes another
// agent's entry.
type BroadcastOutcome struct {
	RunID   string                      `json:"run_id"`
	Results map[string]*core.TaskResult `json:"results"`
	Errors  map[string]error            `json:"-"`
}

// Options configure a Coordinator. Nil collaborators are replaced with
// working defaults, so the zero Options value yields a self-contained
// coordinator.
type Options struct {
	Logger  logging.Logger
	Sink    logging.Sink
	Cache   *cache.ResultCache
	Tracker *tracker.Tracker
	Mailbox *mailbox.Buffer
}

// Coordinator dispatches tasks to the agents it manages, enforcing the
// one-task-per-agent admission rule through each agent's own BeginTask.
// It owns its membership: an agent may be registered in any number of
// catalogs but coordinated by at most one Coordinator.
type Coordinator struct {
	mu          sync.RWMutex
	agents      map[string]core.Agent
	assignments map[string]Assignment

	cache   *cache.ResultCache
	tracker *tracker.Tracker
	mailbox *mailbox.Buffer
	logger  logging.Logger
	sink    logging.Sink
	entropy ulid.MonotonicReader
}

// New constructs a Coordinator.
func New(optFns ...func(o *Options)) *Coordinator {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Cache == nil {
		opts.Cache = cache.New()
	}
	if opts.Tracker == nil {
		opts.Tracker = tracker.New()
	}
	if opts.Mailbox == nil {
		opts.Mailbox = mailbox.New(0)
	}

	return &Coordinator{
		agents:      make(map[string]core.Agent),
		assignments: make(map[string]Assignment),
		cache:       opts.Cache,
		tracker:     opts.Tracker,
		mailbox:     opts.Mailbox,
		logger:      opts.Logger,
		sink:        logging.Safe(opts.Sink),
		entropy: &ulid.LockedMonotonicReader{
			MonotonicReader: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		},
	}
}

// AddAgent places an agent under this coordinator's management. Returns
// ErrAlreadyCoordinated when the agent ID is already managed here.
func (c *Coordinator) AddAgent(a core.Agent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := a.ID()
	if _, exists := c.agents[id]; exists {
		return fmt.Errorf("agent %s: %w", id, core.ErrAlreadyCoordinated)
	}
	c.agents[id] = a

	c.logger.Info("agent coordinated", "agent_id", id, "kind", a.Kind())
	return nil
}

// RemoveAgent releases an agent from management, discarding its assignment
// record and mailbox. Removing an unknown agent is a no-op.
func (c *Coordinator) RemoveAgent(id string) {
	c.mu.Lock()
	_, existed := c.agents[id]
	delete(c.agents, id)
	delete(c.assignments, id)
	c.mu.Unlock()

	if existed {
		c.mailbox.Clear(id)
		c.logger.Info("agent released", "agent_id", id)
	}
}

// Agent returns a managed agent by ID, or ErrUnknownAgent.
func (c *Coordinator) Agent(id string) (core.Agent, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	a, ok := c.agents[id]
	if !ok {
		return nil, fmt.Errorf("agent %s: %w", id, core.ErrUnknownAgent)
	}
	return a, nil
}

// AssignTask dispatches one named task to one agent and blocks until the
// result is in. Admission goes through the agent's atomic BeginTask, so a
// busy agent rejects with ErrAgentNotReady instead of queueing. Cacheable
// repeats are served from the result cache without touching the agent.
func (c *Coordinator) AssignTask(ctx context.Context, agentID, taskName string, inputs map[string]any, opts core.ExecOptions) (*core.TaskResult, error) {
	a, err := c.Agent(agentID)
	if err != nil {
		return nil, err
	}

	var cacheKey string
	if !opts.SkipCache {
		cacheKey = cache.Key(agentID, taskName, inputs)
		if cached, ok := c.cache.Get(cacheKey); ok {
			hit := *cached
			hit.Cached = true
			c.logger.Debug("cache hit", "agent_id", agentID, "task_name", taskName)
			return &hit, nil
		}
	}

	task := core.NewTaskRequest(agentID, taskName, inputs, opts)

	if err := a.BeginTask(task); err != nil {
		return nil, err
	}
	defer a.EndTask()

	c.recordAssignment(Assignment{
		TaskID:     task.ID,
		AgentID:    agentID,
		TaskName:   taskName,
		Status:     core.TaskPending,
		AssignedAt: time.Now(),
	})
	c.tracker.Start(task.ID, agentID, taskName, opts.Priority)

	c.updateAssignment(agentID, core.TaskInProgress, "")
	result, err := a.Execute(ctx, task)
	completion, _ := c.tracker.End(task.ID)

	if err != nil {
		c.updateAssignment(agentID, core.TaskFailed, err.Error())
		c.logger.Error("task failed",
			"agent_id", agentID,
			"task_id", task.ID,
			"task_name", taskName,
			"error", err,
		)
		c.sink.Write(logging.Record{
			Level:    logging.LogLevelError,
			Category: "task",
			Message:  "task failed",
			Source:   agentID,
			Details:  map[string]any{"task_id": task.ID, "task_name": taskName, "error": err.Error()},
		})
		return nil, err
	}

	c.updateAssignment(agentID, core.TaskCompleted, "")
	c.logger.Debug("task completed",
		"agent_id", agentID,
		"task_id", task.ID,
		"task_name", taskName,
		"duration", completion.Duration,
	)
	c.sink.Write(logging.Record{
		Level:    logging.LogLevelInfo,
		Category: "task",
		Message:  "task completed",
		Source:   agentID,
		Details:  map[string]any{"task_id": task.ID, "task_name": taskName, "duration": completion.Duration.String()},
	})

	if !opts.SkipCache {
		c.cache.Set(cacheKey, result, opts.CacheTTL)
	}
	return result, nil
}

// BroadcastTask fans the task out to every agent that is READY at the
// moment of the snapshot and joins all of them. Failures stay isolated per
// agent: one agent's error lands in Errors without disturbing any other
// agent's result. The outcome is complete when BroadcastTask returns.
func (c *Coordinator) BroadcastTask(ctx context.Context, taskName string, inputs map[string]any, opts core.ExecOptions) *BroadcastOutcome {
	c.mu.RLock()
	eligible := make([]core.Agent, 0, len(c.agents))
	for _, a := range c.agents {
		if a.State() == core.StateReady {
			eligible = append(eligible, a)
		}
	}
	c.mu.RUnlock()

	runID := ulid.MustNew(ulid.Timestamp(time.Now()), c.entropy).String()

	outcome := &BroadcastOutcome{
		RunID:   runID,
		Results: make(map[string]*core.TaskResult, len(eligible)),
		Errors:  make(map[string]error),
	}

	c.logger.Info("broadcast dispatched",
		"run_id", runID,
		"task_name", taskName,
		"eligible", len(eligible),
	)

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, a := range eligible {
		wg.Add(1)
		go func(a core.Agent) {
			defer wg.Done()
			result, err := c.AssignTask(ctx, a.ID(), taskName, inputs, opts)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				outcome.Errors[a.ID()] = err
				return
			}
			outcome.Results[a.ID()] = result
		}(a)
	}
	wg.Wait()

	c.logger.Info("broadcast joined",
		"run_id", runID,
		"succeeded", len(outcome.Results),
		"failed", len(outcome.Errors),
	)
	return outcome
}

// AgentStatus returns the status snapshot for one managed agent.
func (c *Coordinator) AgentStatus(id string) (core.AgentInfo, error) {
	a, err := c.Agent(id)
	if err != nil {
		return core.AgentInfo{}, err
	}
	return core.AgentInfo{ID: a.ID(), Name: a.Name(), Kind: a.Kind(), State: a.State()}, nil
}

// AllAgentStatuses snapshots every managed agent, sorted by ID.
func (c *Coordinator) AllAgentStatuses() []core.AgentInfo {
	c.mu.RLock()
	agents := make([]core.Agent, 0, len(c.agents))
	for _, a := range c.agents {
		agents = append(agents, a)
	}
	c.mu.RUnlock()

	out := make([]core.AgentInfo, 0, len(agents))
	for _, a := range agents {
		out = append(out, core.AgentInfo{ID: a.ID(), Name: a.Name(), Kind: a.Kind(), State: a.State()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Assignment returns the agent's most recent assignment record.
func (c *Coordinator) Assignment(agentID string) (Assignment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.assignments[agentID]
	return rec, ok
}

// AllAssignments lists every retained assignment record, sorted by agent ID.
func (c *Coordinator) AllAssignments() []Assignment {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Assignment, 0, len(c.assignments))
	for _, rec := range c.assignments {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AgentID < out[j].AgentID })
	return out
}

// ActiveTasks lists the currently in-flight tasks across all agents.
func (c *Coordinator) ActiveTasks() []tracker.Record {
	return c.tracker.Active()
}

// CacheStats exposes the result cache summary.
func (c *Coordinator) CacheStats() cache.Stats {
	return c.cache.Stats()
}

// SendMessage places a text notice in the recipient's mailbox. Both ends
// must be managed here.
func (c *Coordinator) SendMessage(fromID, toID, text string) error {
	c.mu.RLock()
	_, fromOK := c.agents[fromID]
	_, toOK := c.agents[toID]
	c.mu.RUnlock()

	if !fromOK {
		return fmt.Errorf("sender %s: %w", fromID, core.ErrUnknownAgent)
	}
	if !toOK {
		return fmt.Errorf("recipient %s: %w", toID, core.ErrUnknownAgent)
	}

	c.mailbox.Add(toID, fmt.Sprintf("[%s] %s", fromID, text))
	return nil
}

// Messages returns a copy of the agent's mailbox, oldest first.
func (c *Coordinator) Messages(agentID string) ([]string, error) {
	if _, err := c.Agent(agentID); err != nil {
		return nil, err
	}
	return c.mailbox.Messages(agentID), nil
}

// ClearMessages empties the agent's mailbox.
func (c *Coordinator) ClearMessages(agentID string) error {
	if _, err := c.Agent(agentID); err != nil {
		return err
	}
	c.mailbox.Clear(agentID)
	return nil
}

func (c *Coordinator) recordAssignment(rec Assignment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.assignments[rec.AgentID] = rec
}

func (c *Coordinator) updateAssignment(agentID string, status core.TaskStatus, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.assignments[agentID]
	if !ok {
		return
	}
	rec.Status = status
	rec.Reason = reason
	c.assignments[agentID] = rec
}

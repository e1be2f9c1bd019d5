// Package registry provides a threadsafe catalog of agents keyed by ID.
// Registration is exclusive per ID; the registry forwards each agent's
// lifecycle notifications to its logger so a pool has one audit trail.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gamalabs/agentpool/core"
	"github.com/gamalabs/agentpool/logging"
)

// Options configures a Registry.
type Options struct {
	Logger logging.Logger
}

// Registry holds agents keyed by their unique ID.
type Registry struct {
	mu           sync.RWMutex
	agents       map[string]core.Agent
	unsubscribes map[string]func()
	logger       logging.Logger
}

// New creates an empty Registry.
func New(optFns ...func(o *Options)) *Registry {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Registry{
		agents:       make(map[string]core.Agent),
		unsubscribes: make(map[string]func()),
		logger:       opts.Logger,
	}
}

// Register adds an agent under its ID. Returns ErrDuplicateAgent when the
// ID is already taken. The registry subscribes to the agent's lifecycle
// notifications for the duration of its registration.
func (r *Registry) Register(a core.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := a.ID()
	if _, exists := r.agents[id]; exists {
		return fmt.Errorf("agent %s: %w", id, core.ErrDuplicateAgent)
	}
	r.agents[id] = a
	r.unsubscribes[id] = a.Subscribe(r.logNotification)

	r.logger.Info("agent registered", "agent_id", id, "name", a.Name(), "kind", a.Kind())
	return nil
}

// Unregister removes an agent by ID and drops the notification
// subscription. It reports whether the agent was present.
func (r *Registry) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[id]; !exists {
		return false
	}
	if unsub := r.unsubscribes[id]; unsub != nil {
		unsub()
	}
	delete(r.agents, id)
	delete(r.unsubscribes, id)

	r.logger.Info("agent unregistered", "agent_id", id)
	return true
}

// Get returns the agent with the given ID, or ErrUnknownAgent.
func (r *Registry) Get(id string) (core.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.agents[id]
	if !ok {
		return nil, fmt.Errorf("agent %s: %w", id, core.ErrUnknownAgent)
	}
	return a, nil
}

// All returns every registered agent, sorted by ID for stable iteration.
func (r *Registry) All() []core.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked(func(core.Agent) bool { return true })
}

// AllByKind returns every registered agent of the given kind, sorted by ID.
func (r *Registry) AllByKind(kind core.Kind) []core.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked(func(a core.Agent) bool { return a.Kind() == kind })
}

// Active returns every agent that has not reached its terminal state,
// sorted by ID.
func (r *Registry) Active() []core.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked(func(a core.Agent) bool { return a.State() != core.StateTerminated })
}

// Len returns the number of registered agents.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}

func (r *Registry) sortedLocked(keep func(core.Agent) bool) []core.Agent {
	out := make([]core.Agent, 0, len(r.agents))
	for _, a := range r.agents {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// logNotification is the observer the registry attaches to every agent.
func (r *Registry) logNotification(n core.Notification) {
	switch v := n.(type) {
	case core.StateChanged:
		r.logger.Debug("agent state changed",
			"agent_id", v.AgentID(),
			"prev", v.Prev.String(),
			"next", v.Next.String(),
		)
	case core.AgentError:
		r.logger.Error("agent error",
			"agent_id", v.AgentID(),
			"cause", v.Cause,
		)
	case core.TaskAssigned:
		r.logger.Debug("task assigned",
			"agent_id", v.AgentID(),
			"task_id", v.TaskID,
			"task_name", v.TaskName,
		)
	}
}

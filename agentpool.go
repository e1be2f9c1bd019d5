// Package agentpool provides a high-level façade over the coordination
// core (registry, coordinator, result cache, mailboxes & tracking) for
// running a pool of long-lived stateful agents. Most applications interact
// with this package by:
//  1. Creating a Pool via New() (optionally overriding default collaborators)
//  2. Registering one or more agents (handler-backed, model-backed, custom)
//  3. Assigning named tasks to single agents or broadcasting to the pool
//
// The façade delegates scheduling to coordinator.Coordinator while keeping
// setup and usage ergonomics concise. All defaults are safe for local
// development and testing; production deployments typically supply a tuned
// configuration and a structured logger.
package agentpool

import (
	"context"

	"github.com/gamalabs/agentpool/cache"
	"github.com/gamalabs/agentpool/config"
	"github.com/gamalabs/agentpool/coordinator"
	"github.com/gamalabs/agentpool/core"
	"github.com/gamalabs/agentpool/logging"
	"github.com/gamalabs/agentpool/mailbox"
	"github.com/gamalabs/agentpool/registry"
	"github.com/gamalabs/agentpool/tracker"
)

// Options configures the Pool instance.
type Options struct {
	// Config tunes the cache, mailboxes and dispatch defaults. Defaults to
	// config.Default().
	Config config.Config

	// Logger receives the pool's leveled log output (defaults to NoOp
	// logger if nil).
	Logger logging.Logger

	// Sink receives structured task records for audit trails (defaults to
	// no sink).
	Sink logging.Sink
}

// Pool is the high-level façade aggregating the registry, coordinator and
// their collaborators.
type Pool struct {
	opts        Options
	registry    *registry.Registry
	coordinator *coordinator.Coordinator
	cache       *cache.ResultCache
	sweeper     *cache.Sweeper
}

// New creates a new Pool with optional overrides. Unset collaborators are
// initialized from the configuration.
func New(optFns ...func(o *Options)) *Pool {
	opts := Options{
		Config: config.Default(),
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	resultCache := cache.New(func(o *cache.Options) {
		o.MaxEntries = opts.Config.Cache.MaxEntries
		o.DefaultTTL = opts.Config.Cache.DefaultTTL.Std()
		o.MaxValueBytes = opts.Config.Cache.MaxValueBytes
	})

	reg := registry.New(func(o *registry.Options) {
		o.Logger = opts.Logger
	})

	coord := coordinator.New(func(o *coordinator.Options) {
		o.Logger = opts.Logger
		o.Sink = opts.Sink
		o.Cache = resultCache
		o.Tracker = tracker.New()
		o.Mailbox = mailbox.New(opts.Config.Mailbox.MaxMessages)
	})

	p := &Pool{
		opts:        opts,
		registry:    reg,
		coordinator: coord,
		cache:       resultCache,
	}

	if schedule := opts.Config.Cache.SweepSchedule; schedule != "" {
		p.sweeper = cache.NewSweeper(resultCache, opts.Logger)
		if err := p.sweeper.Start(schedule); err != nil {
			opts.Logger.Warn("cache sweeper not started", "error", err)
			p.sweeper = nil
		}
	}
	return p
}

// Register catalogs an agent and places it under coordination. Duplicate
// IDs are rejected at whichever layer sees them first.
func (p *Pool) Register(a core.Agent) error {
	if err := p.registry.Register(a); err != nil {
		return err
	}
	if err := p.coordinator.AddAgent(a); err != nil {
		p.registry.Unregister(a.ID())
		return err
	}
	return nil
}

// Deregister removes an agent from the catalog and releases it from
// coordination. It reports whether the agent was present.
func (p *Pool) Deregister(id string) bool {
	p.coordinator.RemoveAgent(id)
	return p.registry.Unregister(id)
}

// Assign dispatches one named task to one agent and blocks for the result.
func (p *Pool) Assign(ctx context.Context, agentID, taskName string, inputs map[string]any, opts core.ExecOptions) (*core.TaskResult, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = p.opts.Config.Coordinator.DefaultTimeout.Std()
	}
	return p.coordinator.AssignTask(ctx, agentID, taskName, inputs, opts)
}

// Broadcast fans the task out to every READY agent and joins all of them.
func (p *Pool) Broadcast(ctx context.Context, taskName string, inputs map[string]any, opts core.ExecOptions) *coordinator.BroadcastOutcome {
	if opts.Timeout <= 0 {
		opts.Timeout = p.opts.Config.Coordinator.DefaultTimeout.Std()
	}
	return p.coordinator.BroadcastTask(ctx, taskName, inputs, opts)
}

// Agent returns a registered agent by ID.
func (p *Pool) Agent(id string) (core.Agent, error) { return p.registry.Get(id) }

// Agents lists every registered agent, sorted by ID.
func (p *Pool) Agents() []core.Agent { return p.registry.All() }

// AgentsByKind lists registered agents of one kind, sorted by ID.
func (p *Pool) AgentsByKind(kind core.Kind) []core.Agent { return p.registry.AllByKind(kind) }

// Statuses snapshots every coordinated agent's state, sorted by ID.
func (p *Pool) Statuses() []core.AgentInfo { return p.coordinator.AllAgentStatuses() }

// Assignments lists the retained per-agent assignment records.
func (p *Pool) Assignments() []coordinator.Assignment { return p.coordinator.AllAssignments() }

// ActiveTasks lists the currently in-flight tasks.
func (p *Pool) ActiveTasks() []tracker.Record { return p.coordinator.ActiveTasks() }

// CacheStats exposes the result cache summary.
func (p *Pool) CacheStats() cache.Stats { return p.coordinator.CacheStats() }

// Notify places a text notice in the recipient agent's mailbox.
func (p *Pool) Notify(fromID, toID, text string) error {
	return p.coordinator.SendMessage(fromID, toID, text)
}

// Messages returns a copy of the agent's mailbox, oldest first.
func (p *Pool) Messages(agentID string) ([]string, error) {
	return p.coordinator.Messages(agentID)
}

// Shutdown terminates every registered agent and stops the cache sweeper.
// In-flight executions observe termination through their own contexts; the
// pool does not preempt them.
func (p *Pool) Shutdown() {
	if p.sweeper != nil {
		p.sweeper.Stop()
	}
	for _, a := range p.registry.All() {
		if term, ok := a.(interface{ Terminate() }); ok {
			term.Terminate()
		}
		p.Deregister(a.ID())
	}
}

package core

import "context"

// Kind categorizes an agent implementation so callers can select pools of
// like agents without reflection (e.g. "valuation", "enrichment", "parser").
type Kind string

// Capability is an enumerated tag describing something an agent can do.
// The set attached to an agent is mutable over its lifetime.
type Capability string

// Agent is the contract every pooled worker satisfies. Implementations own
// their lifecycle state machine and must make BeginTask an atomic
// check-and-flip: two concurrent admissions against the same agent must
// never both observe READY.
//
// Execute runs external domain logic and is the only method expected to
// block for a non-trivial duration. It must respect ctx cancellation and
// any deadline derived from the task's ExecOptions; the coordination layer
// has no preemption mechanism of its own.
type Agent interface {
	// ID returns the opaque, immutable identifier of the agent.
	ID() string
	// Name returns the human-readable display name.
	Name() string
	// Kind returns the agent's enumerated type tag.
	Kind() Kind
	// State returns the current lifecycle state.
	State() State
	// Capabilities returns a snapshot of the agent's capability set.
	Capabilities() []Capability

	// BeginTask atomically admits the task: READY flips to BUSY and the
	// task becomes the agent's single current task. Returns
	// ErrAgentNotReady if the agent is in any other state.
	BeginTask(task *TaskRequest) error
	// EndTask completes the current task: BUSY flips back to READY and the
	// current-task reference is cleared. Domain task failure is not agent
	// failure, so EndTask is called on both outcomes.
	EndTask()

	// Execute runs the named task's domain logic and returns its result.
	Execute(ctx context.Context, task *TaskRequest) (*TaskResult, error)

	// Subscribe registers an observer for lifecycle notifications and
	// returns the matching unsubscribe function.
	Subscribe(obs Observer) (unsubscribe func())
}

// AgentInfo carries identifying details about an agent for status listings
// and log records.
type AgentInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Kind  Kind   `json:"kind"`
	State State  `json:"state"`
}

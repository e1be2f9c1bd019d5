package core

import (
	"time"

	"github.com/google/uuid"
)

// Notification is the closed set of lifecycle signals an agent emits.
// Consumers type-switch over the concrete variants instead of matching
// event-name strings, so a new variant is a compile-visible change.
type Notification interface {
	// NotificationID returns the unique id of this emission.
	NotificationID() string
	// AgentID returns the emitting agent.
	AgentID() string
	// EmittedAt returns the emission timestamp.
	EmittedAt() time.Time

	isNotification()
}

// Observer receives lifecycle notifications. Observers must be fast and
// non-blocking; agents invoke them synchronously while emitting.
type Observer func(Notification)

// envelope carries the fields shared by all notification variants.
type envelope struct {
	ID    string
	Agent string
	At    time.Time
}

func newEnvelope(agentID string) envelope {
	return envelope{ID: uuid.NewString(), Agent: agentID, At: time.Now().UTC()}
}

func (e envelope) NotificationID() string { return e.ID }
func (e envelope) AgentID() string        { return e.Agent }
func (e envelope) EmittedAt() time.Time   { return e.At }
func (envelope) isNotification()          {}

// StateChanged reports a lifecycle transition carrying both endpoints.
type StateChanged struct {
	envelope
	Prev State
	Next State
}

// NewStateChanged builds a StateChanged notification.
func NewStateChanged(agentID string, prev, next State) StateChanged {
	return StateChanged{envelope: newEnvelope(agentID), Prev: prev, Next: next}
}

// AgentError reports an unrecoverable internal agent fault.
type AgentError struct {
	envelope
	Cause error
}

// NewAgentError builds an AgentError notification.
func NewAgentError(agentID string, cause error) AgentError {
	return AgentError{envelope: newEnvelope(agentID), Cause: cause}
}

// TaskAssigned reports that a task was admitted onto the agent.
type TaskAssigned struct {
	envelope
	TaskID   string
	TaskName string
}

// NewTaskAssigned builds a TaskAssigned notification.
func NewTaskAssigned(agentID, taskID, taskName string) TaskAssigned {
	return TaskAssigned{envelope: newEnvelope(agentID), TaskID: taskID, TaskName: taskName}
}

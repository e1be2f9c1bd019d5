package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for scheduling and registration preconditions. Callers
// distinguish them with errors.Is so they can decide whether to retry
// against a different agent.
var (
	// ErrUnknownAgent means the target agent is not coordinated here.
	ErrUnknownAgent = errors.New("unknown agent")
	// ErrAgentNotReady means the agent's state forbids admission (most
	// commonly: it is BUSY with its single current task).
	ErrAgentNotReady = errors.New("agent not ready")
	// ErrDuplicateAgent means a registry already holds the agent ID.
	ErrDuplicateAgent = errors.New("duplicate agent")
	// ErrAlreadyCoordinated means a coordinator already manages the agent.
	ErrAlreadyCoordinated = errors.New("agent already coordinated")
	// ErrNotPaused rejects a resume on an agent that is not PAUSED.
	ErrNotPaused = errors.New("agent not paused")
	// ErrTerminated rejects operations on a terminated agent.
	ErrTerminated = errors.New("agent terminated")
)

// TaskError wraps a failure raised by an agent's domain logic. The
// coordination layer records it, never retries it, and re-raises it to the
// caller (single assignment) or isolates it per agent (broadcast).
type TaskError struct {
	AgentID  string
	TaskID   string
	TaskName string
	Cause    error
}

// NewTaskError wraps cause with the identity of the failed execution.
func NewTaskError(agentID, taskID, taskName string, cause error) *TaskError {
	return &TaskError{AgentID: agentID, TaskID: taskID, TaskName: taskName, Cause: cause}
}

// Error implements error.
func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s (%s) failed on agent %s: %v", e.TaskName, e.TaskID, e.AgentID, e.Cause)
}

// Unwrap exposes the domain cause for errors.Is / errors.As.
func (e *TaskError) Unwrap() error { return e.Cause }

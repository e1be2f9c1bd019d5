package core

import (
	"fmt"
	"time"
)

// TaskStatus tracks a task (or assignment) through its lifecycle.
type TaskStatus string

const (
	// TaskPending means the task has been admitted but not yet started.
	TaskPending TaskStatus = "pending"
	// TaskInProgress means the agent is currently executing the task.
	TaskInProgress TaskStatus = "in-progress"
	// TaskCompleted means the task finished and produced a result.
	TaskCompleted TaskStatus = "completed"
	// TaskFailed means the task's domain logic returned an error.
	TaskFailed TaskStatus = "failed"
)

// Priority tags an in-flight task for introspection. The coordinator does
// not reorder work by priority; the tag is bookkeeping for callers.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ExecOptions tune a single task execution. The zero value is valid: no
// deadline, normal priority, cache participation with the cache's default
// TTL.
type ExecOptions struct {
	// Timeout, when positive, is forwarded to the agent's Execute call as a
	// context deadline. Honoring it is the executor's responsibility.
	Timeout time.Duration
	// Priority tags the in-flight task record.
	Priority Priority
	// CacheTTL overrides the cache's default TTL for this result.
	CacheTTL time.Duration
	// SkipCache bypasses both the cache lookup and the result store.
	SkipCache bool
}

// TaskRequest is a named unit of work bound for a single agent.
type TaskRequest struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Inputs  map[string]any `json:"inputs,omitempty"`
	Options ExecOptions    `json:"-"`
}

// NewTaskID composes a cheaply unique task identifier from the owning
// agent, the task name and the current nanosecond timestamp.
func NewTaskID(agentID, name string) string {
	return fmt.Sprintf("%s_%s_%d", agentID, name, time.Now().UnixNano())
}

// NewTaskRequest builds a TaskRequest with a generated ID.
func NewTaskRequest(agentID, name string, inputs map[string]any, opts ExecOptions) *TaskRequest {
	return &TaskRequest{
		ID:      NewTaskID(agentID, name),
		Name:    name,
		Inputs:  inputs,
		Options: opts,
	}
}

// TaskResult is the successful outcome of a task execution. Failures travel
// as errors (see TaskError), not as results.
type TaskResult struct {
	TaskID     string         `json:"task_id"`
	AgentID    string         `json:"agent_id"`
	Name       string         `json:"name"`
	Payload    string         `json:"payload"`
	Meta       map[string]any `json:"meta,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	// Cached is true when the result was served from the result cache
	// rather than a fresh execution.
	Cached bool `json:"cached,omitempty"`
}

// Duration returns the wall-clock execution time of the task.
func (r *TaskResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

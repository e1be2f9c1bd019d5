// Package tracker keeps the in-flight task registry: which agent started
// which task, when, and at what priority. It is pure bookkeeping consumed
// by the coordinator; it enforces no cross-agent invariants and does not
// cancel any underlying work.
package tracker

import (
	"sort"
	"sync"
	"time"

	"github.com/gamalabs/agentpool/core"
)

// Record describes one in-flight task.
type Record struct {
	TaskID    string        `json:"task_id"`
	AgentID   string        `json:"agent_id"`
	Name      string        `json:"name"`
	Priority  core.Priority `json:"priority"`
	StartedAt time.Time     `json:"started_at"`
	// Elapsed is filled in live by Active.
	Elapsed time.Duration `json:"elapsed"`
}

// Completion is returned by End for a known task.
type Completion struct {
	AgentID  string
	Name     string
	Duration time.Duration
}

// Tracker records task starts and ends. Safe for concurrent use.
type Tracker struct {
	mu      sync.Mutex
	inFlight map[string]Record
	now     func() time.Time
}

// New constructs an empty Tracker.
func New() *Tracker {
	return &Tracker{
		inFlight: make(map[string]Record),
		now:      time.Now,
	}
}

// Start records a task dispatch at the current time. An empty priority
// defaults to normal.
func (t *Tracker) Start(taskID, agentID, name string, priority core.Priority) {
	if priority == "" {
		priority = core.PriorityNormal
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inFlight[taskID] = Record{
		TaskID:    taskID,
		AgentID:   agentID,
		Name:      name,
		Priority:  priority,
		StartedAt: t.now(),
	}
}

// End removes the record and returns the completion with its computed
// duration, or ok=false for an unknown task.
func (t *Tracker) End(taskID string) (Completion, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.inFlight[taskID]
	if !ok {
		return Completion{}, false
	}
	delete(t.inFlight, taskID)
	return Completion{
		AgentID:  rec.AgentID,
		Name:     rec.Name,
		Duration: t.now().Sub(rec.StartedAt),
	}, true
}

// Cancel drops tracking for a task without computing a duration. It does
// not cancel the underlying work. Returns false for an unknown task.
func (t *Tracker) Cancel(taskID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.inFlight[taskID]; !ok {
		return false
	}
	delete(t.inFlight, taskID)
	return true
}

// Active lists all in-flight records with live-computed elapsed times,
// ordered by start time.
func (t *Tracker) Active() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	out := make([]Record, 0, len(t.inFlight))
	for _, rec := range t.inFlight {
		rec.Elapsed = now.Sub(rec.StartedAt)
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

// Len returns the number of in-flight tasks.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.inFlight)
}

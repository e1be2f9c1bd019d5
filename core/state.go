package core

// State is the lifecycle state of an agent. Agents are constructed in
// StateInitializing and end in StateTerminated; StateTerminated has no
// outgoing transitions.
type State int

const (
	// StateInitializing is the initial state on construction, before the
	// agent has been prepared for scheduling.
	StateInitializing State = iota
	// StateReady means the agent is idle and eligible for task admission.
	StateReady
	// StateBusy means the agent is executing its single current task.
	StateBusy
	// StatePaused means the agent is deliberately withheld from scheduling.
	StatePaused
	// StateError means the agent hit an unrecoverable internal fault.
	StateError
	// StateTerminated is terminal; the agent is gone for scheduling purposes.
	StateTerminated
)

// StateIdle is an alias for StateReady: the scheduler treats an idle agent
// and a freshly readied agent identically.
const StateIdle = StateReady

// String returns the canonical upper-case name of the state.
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "INITIALIZING"
	case StateReady:
		return "READY"
	case StateBusy:
		return "BUSY"
	case StatePaused:
		return "PAUSED"
	case StateError:
		return "ERROR"
	case StateTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// Schedulable reports whether an agent in this state may be admitted for a
// new task.
func (s State) Schedulable() bool { return s == StateReady }

// Terminal reports whether the state has no outgoing transitions.
func (s State) Terminal() bool { return s == StateTerminated }

// CanTransition reports whether the lifecycle state machine permits moving
// from one state to another. Any state may move to StateError (internal
// fault) or StateTerminated (shutdown); all other edges are explicit.
func CanTransition(from, to State) bool {
	if from == StateTerminated {
		return false
	}
	if to == StateError || to == StateTerminated {
		return true
	}
	switch from {
	case StateInitializing:
		return to == StateReady
	case StateReady:
		return to == StateBusy || to == StatePaused
	case StateBusy:
		return to == StateReady
	case StatePaused:
		return to == StateReady
	case StateError:
		// Recovery back to READY is only reachable through re-initialization
		// (auto-restart); direct jumps elsewhere are not allowed.
		return to == StateReady
	default:
		return false
	}
}

// Package coordinator dispatches named tasks to the agents it manages.
//
// The coordinator enforces exactly two scheduling rules and nothing more:
// an agent runs at most one task at a time (admission goes through the
// agent's atomic BeginTask), and a broadcast joins every dispatched agent
// with per-agent failure isolation. There is no queueing, no retry and no
// priority ordering; a rejected admission surfaces immediately as
// ErrAgentNotReady and the caller decides what to do next.
//
// Repeat work is short-circuited through a bounded TTL+LRU result cache
// keyed on agent, task name and canonicalized inputs. In-flight work is
// visible through the tracker; inter-agent notices travel through bounded
// mailboxes off the execution path.
package coordinator

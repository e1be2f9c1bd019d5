// Package agent contains the concrete agent implementations and the shared
// lifecycle plumbing for agentpool. The package focuses on three concerns:
//
//  1. Base lifecycle + context bundle plumbing (BaseAgent)
//  2. A handler-dispatch worker for arbitrary domain logic (HandlerAgent)
//  3. A model-backed worker delegating tasks to an LLM (ModelAgent)
//
// Design principles:
//   - No hidden global state: agents are constructed by factories and wired
//     into registries/coordinators explicitly
//   - The state machine lives inside the agent, so the admission
//     check-and-flip is atomic under the agent's own lock
//   - Observability via typed notifications, not string event names
//
// Concrete agents embed BaseAgent and implement Execute plus any custom
// API. Domain task logic stays behind Execute: the coordination layer never
// sees prompts or domain payloads.
package agent

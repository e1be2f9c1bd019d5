// Package core defines the domain contracts shared by every agentpool
// package: the Agent interface, the lifecycle state machine, task request
// and result types, typed lifecycle notifications and the error taxonomy.
//
// The package intentionally contains no implementations beyond small value
// types so that agent, coordinator, registry and cache can depend on it
// without cyclic imports. Concrete agents live in the agent package; the
// scheduling logic lives in coordinator.
package core

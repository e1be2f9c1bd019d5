// Package model defines the minimal text-completion interface consumed by
// agent.ModelAgent, a deterministic mock for tests, and two decorators that
// harden provider calls under fan-out: a circuit breaker (fail fast when an
// upstream is down instead of letting every broadcast dispatch time out)
// and a rate limiter (bound concurrent provider traffic).
//
// Provider adapters live in sub-packages (anthropic, openai) so the
// coordination layer never imports vendor SDKs.
package model

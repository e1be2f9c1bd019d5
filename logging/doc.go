// Package logging provides a minimal logging interface and adapters for
// agentpool.
//
// Two surfaces live here:
//
//   - Logger, the conventional leveled interface (Debug, Info, Warn, Error)
//     used by packages that log free-form messages. SlogAdapter bridges it
//     to log/slog; NoOpLogger silences it.
//   - Sink, the structured record sink the coordinator emits to. Records
//     carry level, category, message, details, source and tags. Sinks are
//     fire-and-forget: Safe wraps any sink so a panicking or failing sink
//     can never abort coordination.
//
// The design intentionally keeps both interfaces minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging

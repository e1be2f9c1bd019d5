// Package cache implements the bounded task result cache sitting beneath
// the coordinator: per-entry TTL, least-recently-used eviction at the size
// bound, defensive payload truncation and lazy expiration on read.
//
// No background goroutine is required for correctness; Sweeper exists only
// to reclaim memory promptly by running Cleanup on a cron schedule.
package cache

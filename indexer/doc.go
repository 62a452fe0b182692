// Package indexer provides pipeline orchestration for candidate writes.
//
// The Pipeline type manages the write workflow for candidates, including:
//   - Validating and persisting profile changes
//   - Refreshing derived search documents asynchronously
//   - Sweeping stale entries on a fixed schedule
//
// Refreshes run on a worker pool to keep writes fast. Errors during async
// processing are logged but do not fail the originating write; the scheduled
// sweep retries anything left stale.
package indexer

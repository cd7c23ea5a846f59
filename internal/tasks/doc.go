// Package tasks runs background write-through for user documents.
//
// # Write Queue
//
// [WriteQueue] accepts full document snapshots and persists them to a [Setter] off the caller's goroutine:
//
//  1. [WriteQueue.Enqueue] : hand off the latest snapshot for a path and return immediately
//     - At most one write per path is in flight
//     - A snapshot queued behind an in-flight write replaces any older queued snapshot
//     - Writes for different paths proceed concurrently
//
//  2. [WriteQueue.Flush] : wait until every accepted snapshot has been written or has failed
//
//  3. [WriteQueue.Close] : stop accepting snapshots, flush, then cancel outstanding writes
//
// Because each path only ever holds its newest pending snapshot, the stored value converges to the
// most recent local mutation regardless of how writes interleave.
//
// # Progress Reporting
//
// An optional channel receives a [WriteUpdate] for every started, finished, or failed write.
// Updates use select with default so a slow reader never stalls the queue.
//
// # Failures
//
// Failed writes are logged, counted in [Stats], and never retried. The local state that produced the
// snapshot is not rolled back.
package tasks

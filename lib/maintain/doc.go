// Package maintain implements the maintenance stages and the pipeline
// running them in fixed order against one collection.
//
// The stages are:
//
//   - CleanupExecutor: deletes documents whose retention field lies
//     strictly before the cutoff, in a single unbatched pass.
//   - IndexMaintainer: ensures the retention index exists under its
//     deterministic name. Failures here are isolated, a missing index
//     only slows future runs and never aborts the current one.
//   - CompactionGuard: compacts collection storage, but only when the
//     topology allows it. On sharded clusters the compact command is
//     never sent, the stage records the skip instead.
//   - StatsReporter: logs document count and size statistics after the
//     destructive work is done.
//
// The Pipeline owns ordering, the exactly-once release of the session
// and the run summary. Everything runs on the calling goroutine over a
// single session; there is no internal concurrency, no retry and no
// partial-stage continuation besides the index isolation.
package maintain

// Package ledger tracks which code segments have been reviewed.
//
// A Registry holds the coverage targets for one run: every chunk produced
// for the current tree, plus placeholder targets for paths that were
// deliberately skipped. The Store owns the append-only ledger.jsonl under
// the code root's coverage directory; it replays prior records for the
// current commit on open and appends one record per review attempt. The
// covered set is never stored directly; it is always recomputable by
// replaying the ok-status records, so an interrupted run loses at most the
// attempt that was in flight.
//
// The ledger file assumes a single process per commit. Append is safe for
// concurrent use within one process; two processes appending to the same
// ledger concurrently is not supported.
package ledger

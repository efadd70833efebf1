// Package review orchestrates a coverage-tracked review run.
//
// The engine discovers source files, splits each into deterministic chunks,
// registers every chunk as a coverage target, and sends uncovered chunks to
// the reviewing endpoint with bounded parallelism. Exactly one ledger
// record is appended per attempt, ok or error, so an interrupted run can
// resume from the ledger without re-reviewing covered chunks, and a
// canceled attempt is never recorded as ok.
//
// Model replies are expected as JSON objects with a "reviews" array; code
// fences around the JSON are tolerated and stripped before parsing.
package review

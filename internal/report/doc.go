// Package report folds the coverage registry, the ledger's covered set and
// record history, and any review findings into a completeness report.
//
// Build is a pure function recomputed from scratch on every call, so the
// report is always consistent with the ledger's current state. Write emits
// the structured report, a rendered Markdown summary, and a pass/fail badge
// whose pass condition is exactly zero missed segments.
package report

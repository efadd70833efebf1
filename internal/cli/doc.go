// Package cli implements the revcov command-line interface.
//
// Commands are built with cobra and map exit codes deterministically so the
// tool can gate CI jobs on review coverage.
package cli

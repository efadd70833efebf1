// Package scan discovers reviewable source files under a code root.
//
// Discovery is extension driven: only files whose extension maps to a known
// language are returned. Exclude patterns are matched against both the
// repository-relative path and the base name, and a built-in list of
// tooling directories is always skipped.
package scan

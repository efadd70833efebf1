// Package chunk splits file content into deterministic, content-addressed,
// overlapping line segments.
//
// Segment boundaries depend only on the content and the Params, so
// re-chunking identical content always yields identical chunk IDs. Each ID
// embeds a SHA-256 digest of the whole file, which means an edit anywhere in
// the file invalidates every chunk ID derived from it, not just the chunks
// whose lines changed.
package chunk

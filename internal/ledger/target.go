package ledger

import (
	"crypto/sha256"
	"fmt"

	"github.com/rburns/revcov/internal/chunk"
)

// Target is a segment that should be accounted for in the coverage report.
// Reason is set only for paths that were skipped rather than chunked.
type Target struct {
	Path      string `json:"path"`
	SHA256    string `json:"sha256"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	ChunkID   string `json:"chunk_id"`
	Reason    string `json:"reason,omitempty"`
}

// Key is a target's identity. It is a comparable value so maps key on the
// five components directly rather than on a formatted string.
type Key struct {
	Path      string
	StartLine int
	EndLine   int
	SHA256    string
	ChunkID   string
}

// Key returns the identity of the target.
func (t Target) Key() Key {
	return Key{
		Path:      t.Path,
		StartLine: t.StartLine,
		EndLine:   t.EndLine,
		SHA256:    t.SHA256,
		ChunkID:   t.ChunkID,
	}
}

// String renders the key for sorting and debugging.
func (k Key) String() string {
	return fmt.Sprintf("%s:%d:%d:%s:%s", k.Path, k.StartLine, k.EndLine, k.SHA256, k.ChunkID)
}

// Registry is the in-memory set of coverage targets for one run. It is
// rebuilt from scratch each invocation and never persisted.
type Registry struct {
	targets map[Key]Target
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{targets: make(map[Key]Target)}
}

// Register inserts targets keyed by identity. Registering the same key
// twice overwrites the entry rather than duplicating it.
func (r *Registry) Register(targets ...Target) {
	for _, t := range targets {
		r.targets[t.Key()] = t
	}
}

// RegisterChunks registers one target per chunk of a file.
func (r *Registry) RegisterChunks(relPath string, chunks []chunk.Chunk) {
	for _, c := range chunks {
		r.Register(Target{
			Path:      relPath,
			SHA256:    c.FileSHA256,
			StartLine: c.StartLine,
			EndLine:   c.EndLine,
			ChunkID:   c.ID,
		})
	}
}

// RecordSkip registers a placeholder target for a path that was not
// chunked. The pseudo-digest is derived from the path and reason so the
// same skip always produces the same key, and the skip shows up in reports
// as an explicit, reasoned omission instead of a silent absence.
func (r *Registry) RecordSkip(path, reason string) {
	digest := fmt.Sprintf("%x", sha256.Sum256([]byte(path+":"+reason)))
	r.Register(Target{
		Path:    path,
		SHA256:  digest,
		ChunkID: fmt.Sprintf("%s#%s@skip", path, digest),
		Reason:  reason,
	})
}

// Len returns the number of registered targets.
func (r *Registry) Len() int {
	return len(r.targets)
}

// Targets returns the registered targets keyed by identity. The returned
// map is the registry's own; callers must not mutate it.
func (r *Registry) Targets() map[Key]Target {
	return r.targets
}

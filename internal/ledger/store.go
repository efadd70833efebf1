package ledger

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Status of a review attempt.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// FileRef identifies one reviewed segment within a record.
type FileRef struct {
	Path      string `json:"path"`
	SHA256    string `json:"sha256"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	ChunkID   string `json:"chunk_id"`
}

// Key returns the target key the file entry covers.
func (f FileRef) Key() Key {
	return Key{
		Path:      f.Path,
		StartLine: f.StartLine,
		EndLine:   f.EndLine,
		SHA256:    f.SHA256,
		ChunkID:   f.ChunkID,
	}
}

// Tokens holds estimated token counts for one attempt.
type Tokens struct {
	PromptEst     int `json:"prompt_est"`
	CompletionEst int `json:"completion_est"`
}

// Record is one immutable review-attempt fact. Commit and ErrorMessage are
// pointers so JSON null round-trips and absence stays distinguishable from
// an empty string.
type Record struct {
	Commit       *string   `json:"commit"`
	Files        []FileRef `json:"files"`
	Model        string    `json:"model"`
	APIURL       string    `json:"api_url"`
	MaxContext   int       `json:"max_context"`
	PromptHash   string    `json:"prompt_hash"`
	Tokens       Tokens    `json:"tokens"`
	Status       Status    `json:"status"`
	ErrorMessage *string   `json:"error_message"`
	TS           time.Time `json:"ts"`
}

// Attempt describes a review attempt to be appended. Files may cover zero,
// one, or many segments in a single attempt.
type Attempt struct {
	Files            []FileRef
	Model            string
	APIURL           string
	MaxContext       int
	PromptHash       string
	PromptTokens     int
	CompletionTokens int
	Status           Status
	ErrorMessage     string // empty means no error message
}

// Filenames written under the coverage directory.
const (
	LedgerFilename = "ledger.jsonl"
	coverageSubdir = "coverage"
)

// Store owns the on-disk ledger for one code root and one commit.
type Store struct {
	mu      sync.Mutex
	dir     string
	path    string
	commit  string
	records []Record
	covered map[Key]struct{}
}

// Open creates the coverage directory if needed and replays prior ledger
// lines for the given commit. A missing ledger file means no prior history.
// Lines that fail to parse, and lines belonging to other commits, are
// skipped without error so the log stays forward compatible.
func Open(codeDir, commit string) (*Store, error) {
	dir := filepath.Join(codeDir, coverageSubdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating coverage directory: %w", err)
	}
	s := &Store{
		dir:     dir,
		path:    filepath.Join(dir, LedgerFilename),
		commit:  commit,
		covered: make(map[Key]struct{}),
	}
	if err := s.replay(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) replay() error {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, maxLineSize), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue // malformed line, tolerated
		}
		if commitOf(rec) != s.commit {
			continue
		}
		s.apply(rec)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}
	return nil
}

// maxLineSize bounds a single ledger line (4MB), matching batched
// multi-file records without unbounded buffering.
const maxLineSize = 4 * 1024 * 1024

// Append durably writes one record and only then updates the in-memory
// covered set, so a crash mid-write never marks uncovered work as covered.
func (s *Store) Append(a Attempt) error {
	rec := Record{
		Commit:     optional(s.commit),
		Files:      a.Files,
		Model:      a.Model,
		APIURL:     a.APIURL,
		MaxContext: a.MaxContext,
		PromptHash: a.PromptHash,
		Tokens: Tokens{
			PromptEst:     a.PromptTokens,
			CompletionEst: a.CompletionTokens,
		},
		Status:       a.Status,
		ErrorMessage: optional(a.ErrorMessage),
		TS:           time.Now().UTC(),
	}
	if rec.Files == nil {
		rec.Files = []FileRef{}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeLine(data); err != nil {
		return err
	}
	s.apply(rec)
	return nil
}

func (s *Store) writeLine(data []byte) error {
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger for append: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("appending record: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing ledger: %w", err)
	}
	return nil
}

func (s *Store) apply(rec Record) {
	s.records = append(s.records, rec)
	if rec.Status != StatusOK {
		return
	}
	for _, fr := range rec.Files {
		s.covered[fr.Key()] = struct{}{}
	}
}

// IsCovered reports whether an ok record has named the key for this commit.
func (s *Store) IsCovered(k Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.covered[k]
	return ok
}

// Covered returns a copy of the covered key set.
func (s *Store) Covered() map[Key]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Key]struct{}, len(s.covered))
	for k := range s.covered {
		out[k] = struct{}{}
	}
	return out
}

// Records returns the replayed and appended records for this commit, in
// ledger order.
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Commit returns the commit this store is bound to (empty if unknown).
func (s *Store) Commit() string {
	return s.commit
}

// Dir returns the coverage directory owned by this store.
func (s *Store) Dir() string {
	return s.dir
}

func commitOf(rec Record) string {
	if rec.Commit == nil {
		return ""
	}
	return *rec.Commit
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Filenames written under the coverage directory.
const (
	JSONFilename  = "report.json"
	MDFilename    = "report.md"
	BadgeFilename = "badge.json"
)

// Badge is the minimal pass/fail indicator.
type Badge struct {
	Label   string `json:"label"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// NewBadge builds the coverage badge for a report.
func NewBadge(r *Report) Badge {
	if r.Passed() {
		return Badge{Label: "coverage", Message: "pass", Status: "pass"}
	}
	return Badge{Label: "coverage", Message: "miss", Status: "fail"}
}

// Write emits report.json, report.md, and badge.json into dir. Unlike the
// tolerant aggregation path, write failures surface to the caller.
func Write(r *Report, dir string) error {
	data, err := r.MarshalIndent()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, JSONFilename), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", JSONFilename, err)
	}

	var buf bytes.Buffer
	md := &MarkdownWriter{}
	if err := md.Write(&buf, r); err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MDFilename), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", MDFilename, err)
	}

	badge, err := json.Marshal(NewBadge(r))
	if err != nil {
		return fmt.Errorf("marshaling badge: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, BadgeFilename), badge, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", BadgeFilename, err)
	}
	return nil
}

// Package findings holds the review findings written by the engine and
// consumed by the report builder.
package findings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Review is a single finding reported by the model for one file.
// RiskScore is left untyped because models return it as a number or a
// string; the report builder parses it leniently and drops what it cannot.
type Review struct {
	Line      int    `json:"line"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
	RiskScore any    `json:"risk_score,omitempty"`
}

// FileFindings groups the findings for one file path.
type FileFindings struct {
	File    string   `json:"file"`
	Reviews []Review `json:"reviews"`
}

// Results is the top-level structure of review-results.json.
type Results struct {
	TotalFiles      int            `json:"total_files"`
	FilesWithIssues int            `json:"files_with_issues"`
	Results         []FileFindings `json:"results"`
}

// Load reads a results file. A missing file returns nil without error so a
// report can be built before any review has produced findings.
func Load(path string) (*Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading findings: %w", err)
	}
	var r Results
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing findings: %w", err)
	}
	return &r, nil
}

// Save writes the results file.
func Save(path string, r *Results) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling findings: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

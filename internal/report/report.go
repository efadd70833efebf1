package report

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rburns/revcov/internal/findings"
	"github.com/rburns/revcov/internal/ledger"
)

// Stats is a coverage rollup for one file or directory.
type Stats struct {
	TotalSegments   int     `json:"total_segments"`
	CoveredSegments int     `json:"covered_segments"`
	CoverageRatio   float64 `json:"coverage_ratio"`
}

// ReviewedFile records the last successful review touching a path.
type ReviewedFile struct {
	ChunkID string    `json:"chunk_id"`
	Model   string    `json:"model"`
	TS      time.Time `json:"ts"`
}

// Hotspot is a per-directory finding count.
type Hotspot struct {
	Directory string `json:"directory"`
	Findings  int    `json:"findings"`
}

// Report is the full coverage report.
type Report struct {
	Commit            string                  `json:"commit"`
	Timestamp         time.Time               `json:"timestamp"`
	TotalSegments     int                     `json:"total_segments"`
	CoveredSegments   int                     `json:"covered_segments"`
	MissedSegments    int                     `json:"missed_segments"`
	CoverageRatio     float64                 `json:"coverage_ratio"`
	Files             map[string]Stats        `json:"files"`
	Directories       map[string]Stats        `json:"directories"`
	Missed            []ledger.Target         `json:"missed"`
	Reviewed          map[string]ReviewedFile `json:"reviewed"`
	SeverityHistogram map[string]int          `json:"severity_histogram"`
	RiskHistogram     map[string]int          `json:"risk_histogram"`
	IssueHotspots     []Hotspot               `json:"issue_hotspots"`
}

// Passed reports whether every registered segment was covered.
func (r *Report) Passed() bool {
	return r.MissedSegments == 0
}

// Build computes a report from the registry, the covered set and record
// history replayed from the ledger, and optional findings. An empty
// registry is vacuously fully covered (ratio 1.0).
func Build(commit string, reg *ledger.Registry, covered map[ledger.Key]struct{}, records []ledger.Record, results *findings.Results) *Report {
	targets := reg.Targets()

	r := &Report{
		Commit:        commit,
		Timestamp:     time.Now().UTC(),
		TotalSegments: len(targets),
		Files:         make(map[string]Stats),
		Directories:   make(map[string]Stats),
		Missed:        []ledger.Target{},
		Reviewed:      make(map[string]ReviewedFile),
	}

	perFile := make(map[string]*Stats)
	var missedKeys []ledger.Key
	for k := range targets {
		stats := perFile[k.Path]
		if stats == nil {
			stats = &Stats{}
			perFile[k.Path] = stats
		}
		stats.TotalSegments++
		if _, ok := covered[k]; ok {
			stats.CoveredSegments++
			r.CoveredSegments++
		} else {
			missedKeys = append(missedKeys, k)
		}
	}
	r.MissedSegments = r.TotalSegments - r.CoveredSegments
	r.CoverageRatio = ratio(r.CoveredSegments, r.TotalSegments)

	perDir := make(map[string]*Stats)
	for path, stats := range perFile {
		r.Files[path] = Stats{
			TotalSegments:   stats.TotalSegments,
			CoveredSegments: stats.CoveredSegments,
			CoverageRatio:   ratio(stats.CoveredSegments, stats.TotalSegments),
		}
		dir := filepath.Dir(path)
		ds := perDir[dir]
		if ds == nil {
			ds = &Stats{}
			perDir[dir] = ds
		}
		ds.TotalSegments += stats.TotalSegments
		ds.CoveredSegments += stats.CoveredSegments
	}
	for dir, stats := range perDir {
		r.Directories[dir] = Stats{
			TotalSegments:   stats.TotalSegments,
			CoveredSegments: stats.CoveredSegments,
			CoverageRatio:   ratio(stats.CoveredSegments, stats.TotalSegments),
		}
	}

	sort.Slice(missedKeys, func(i, j int) bool {
		return missedKeys[i].String() < missedKeys[j].String()
	})
	for _, k := range missedKeys {
		r.Missed = append(r.Missed, targets[k])
	}

	// Last ok record wins per path.
	for _, rec := range records {
		if rec.Status != ledger.StatusOK {
			continue
		}
		for _, fr := range rec.Files {
			r.Reviewed[fr.Path] = ReviewedFile{
				ChunkID: fr.ChunkID,
				Model:   rec.Model,
				TS:      rec.TS,
			}
		}
	}

	r.SeverityHistogram, r.RiskHistogram, r.IssueHotspots = foldFindings(results)

	return r
}

func ratio(covered, total int) float64 {
	if total == 0 {
		return 1.0
	}
	return float64(covered) / float64(total)
}

func foldFindings(results *findings.Results) (map[string]int, map[string]int, []Hotspot) {
	severity := make(map[string]int)
	risk := make(map[string]int, 11)
	for i := 1; i <= 10; i++ {
		risk[strconv.Itoa(i)] = 0
	}
	risk["other"] = 0

	byDir := make(map[string]int)
	if results != nil {
		for _, ff := range results.Results {
			byDir[filepath.Dir(ff.File)] += len(ff.Reviews)
			for _, rv := range ff.Reviews {
				if rv.Severity != "" {
					severity[strings.ToLower(rv.Severity)]++
				}
				score, ok := parseRiskScore(rv.RiskScore)
				if !ok {
					continue // unparseable scores are dropped, not counted
				}
				if score >= 1 && score <= 10 {
					risk[strconv.Itoa(score)]++
				} else {
					risk["other"]++
				}
			}
		}
	}

	hotspots := make([]Hotspot, 0, len(byDir))
	for dir, count := range byDir {
		hotspots = append(hotspots, Hotspot{Directory: dir, Findings: count})
	}
	sort.Slice(hotspots, func(i, j int) bool {
		if hotspots[i].Findings != hotspots[j].Findings {
			return hotspots[i].Findings > hotspots[j].Findings
		}
		return hotspots[i].Directory < hotspots[j].Directory
	})

	return severity, risk, hotspots
}

// parseRiskScore accepts the number and string encodings models actually
// emit. Fractional values are not valid scores.
func parseRiskScore(v any) (int, bool) {
	switch s := v.(type) {
	case float64:
		if s != float64(int(s)) {
			return 0, false
		}
		return int(s), true
	case int:
		return s, true
	case json.Number:
		n, err := s.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// MarshalIndent renders the report as indented JSON.
func (r *Report) MarshalIndent() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}
	return data, nil
}

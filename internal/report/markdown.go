package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
)

// MarkdownWriter renders a report as a human-readable Markdown summary.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, r *Report) error {
	commit := r.Commit
	if commit == "" {
		commit = "unknown"
	}
	fmt.Fprintf(w, "# Coverage Report (commit: %s)\n\n", commit)
	fmt.Fprintf(w, "- Timestamp: %s\n", r.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Fprintf(w, "- Segments covered: %d / %d\n", r.CoveredSegments, r.TotalSegments)
	fmt.Fprintf(w, "- Coverage ratio: %.2f%%\n", r.CoverageRatio*100)
	fmt.Fprintf(w, "- Status: %s\n\n", passLabel(r.Passed()))

	fmt.Fprintf(w, "## Directory coverage\n\n")
	writeStatsTable(w, "Directory", r.Directories)

	fmt.Fprintf(w, "## File coverage\n\n")
	writeStatsTable(w, "File", r.Files)

	fmt.Fprintf(w, "## Missed segments\n\n")
	if len(r.Missed) == 0 {
		fmt.Fprintln(w, "All registered segments were reviewed.")
	} else {
		for _, t := range r.Missed {
			if t.Reason != "" {
				fmt.Fprintf(w, "- %s (skipped: %s)\n", t.Path, t.Reason)
				continue
			}
			fmt.Fprintf(w, "- %s (lines %d-%d, chunk %s)\n", t.Path, t.StartLine, t.EndLine, t.ChunkID)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "## Reviewed segments\n\n")
	if len(r.Reviewed) == 0 {
		fmt.Fprintln(w, "No segments have been reviewed yet.")
	} else {
		fmt.Fprintf(w, "| File | Last chunk | Model | Reviewed at |\n")
		fmt.Fprintf(w, "| --- | --- | --- | --- |\n")
		for _, path := range sortedKeys(r.Reviewed) {
			rf := r.Reviewed[path]
			fmt.Fprintf(w, "| %s | %s | %s | %s |\n",
				path, rf.ChunkID, rf.Model, rf.TS.Format("2006-01-02T15:04:05Z07:00"))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "## Findings by severity\n\n")
	if len(r.SeverityHistogram) == 0 {
		fmt.Fprintln(w, "No findings recorded.")
	} else {
		fmt.Fprintf(w, "| Severity | Count |\n")
		fmt.Fprintf(w, "| --- | ---: |\n")
		for _, sev := range sortedKeys(r.SeverityHistogram) {
			fmt.Fprintf(w, "| %s | %d |\n", sev, r.SeverityHistogram[sev])
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "## Findings by risk score\n\n")
	if riskTotal(r.RiskHistogram) == 0 {
		fmt.Fprintln(w, "No risk scores recorded.")
	} else {
		fmt.Fprintf(w, "| Risk | Count |\n")
		fmt.Fprintf(w, "| --- | ---: |\n")
		for i := 1; i <= 10; i++ {
			b := strconv.Itoa(i)
			if r.RiskHistogram[b] > 0 {
				fmt.Fprintf(w, "| %s | %d |\n", b, r.RiskHistogram[b])
			}
		}
		if r.RiskHistogram["other"] > 0 {
			fmt.Fprintf(w, "| other | %d |\n", r.RiskHistogram["other"])
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "## Issue hotspots\n\n")
	if len(r.IssueHotspots) == 0 {
		fmt.Fprintln(w, "No issue hotspots.")
	} else {
		for _, h := range r.IssueHotspots {
			fmt.Fprintf(w, "- %s: %d findings\n", h.Directory, h.Findings)
		}
	}

	return nil
}

func writeStatsTable(w io.Writer, label string, stats map[string]Stats) {
	if len(stats) == 0 {
		fmt.Fprintf(w, "No segments registered.\n\n")
		return
	}
	fmt.Fprintf(w, "| %s | Segments | Covered | Coverage |\n", label)
	fmt.Fprintf(w, "| --- | ---: | ---: | ---: |\n")
	for _, name := range sortedKeys(stats) {
		s := stats[name]
		fmt.Fprintf(w, "| %s | %d | %d | %.2f%% |\n",
			name, s.TotalSegments, s.CoveredSegments, s.CoverageRatio*100)
	}
	fmt.Fprintln(w)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func riskTotal(hist map[string]int) int {
	total := 0
	for _, n := range hist {
		total += n
	}
	return total
}

func passLabel(passed bool) string {
	if passed {
		return "pass"
	}
	return "miss"
}

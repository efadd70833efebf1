package report_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rburns/revcov/internal/ledger"
	"github.com/rburns/revcov/internal/report"
)

func renderMarkdown(t *testing.T, r *report.Report) string {
	t.Helper()
	var b strings.Builder
	md := &report.MarkdownWriter{}
	require.NoError(t, md.Write(&b, r))
	return b.String()
}

func TestMarkdownWriter_EmptySectionsGetPlaceholders(t *testing.T) {
	t.Parallel()

	r := report.Build("", ledger.NewRegistry(), nil, nil, nil)
	out := renderMarkdown(t, r)

	assert.Contains(t, out, "# Coverage Report (commit: unknown)")
	assert.Contains(t, out, "All registered segments were reviewed.")
	assert.Contains(t, out, "No segments have been reviewed yet.")
	assert.Contains(t, out, "No findings recorded.")
	assert.Contains(t, out, "No risk scores recorded.")
	assert.Contains(t, out, "No issue hotspots.")
	assert.Contains(t, out, "No segments registered.")
}

func TestMarkdownWriter_Tables(t *testing.T) {
	t.Parallel()

	reg := ledger.NewRegistry()
	a := target("src/a.go", "s1", 1, 60)
	reg.Register(a)
	reg.RecordSkip("x.bin", "binary")

	covered := map[ledger.Key]struct{}{a.Key(): {}}
	records := []ledger.Record{
		okRecord("qwen", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), ref(a)),
	}

	r := report.Build("abc123", reg, covered, records, nil)
	out := renderMarkdown(t, r)

	assert.Contains(t, out, "(commit: abc123)")
	assert.Contains(t, out, "| src/a.go | 1 | 1 | 100.00% |")
	assert.Contains(t, out, "- x.bin (skipped: binary)")
	assert.Contains(t, out, "| src/a.go | src/a.go#s1@0 | qwen | 2025-06-01T12:00:00Z |")
}

func TestWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := report.Build("c1", ledger.NewRegistry(), nil, nil, nil)
	require.NoError(t, report.Write(r, dir))

	for _, name := range []string{report.JSONFilename, report.MDFilename, report.BadgeFilename} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	badge, err := os.ReadFile(filepath.Join(dir, report.BadgeFilename))
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"coverage","message":"pass","status":"pass"}`, string(badge))
}

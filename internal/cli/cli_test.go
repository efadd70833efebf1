package cli

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rburns/revcov/internal/ledger"
	"github.com/rburns/revcov/internal/report"
)

// resetFlags resets all package-level flag variables to their zero values.
func resetFlags() {
	flagAPIURL = ""
	flagModel = ""
	flagContextLength = 0
	flagMaxLines = 0
	flagOverlapRatio = 0
	flagOutput = ""
	flagExclude = ""
	flagFocus = ""
	flagConcurrency = 0
	flagSystemPrompt = ""
	flagCheck = false
	exitCode = ExitSuccess
}

// --- buildOverrides tests ---

func TestBuildOverrides_NoFlags(t *testing.T) {
	resetFlags()
	m := buildOverrides()
	if len(m) != 0 {
		t.Errorf("buildOverrides() with no flags = %v, want empty map", m)
	}
}

func TestBuildOverrides_AllFlags(t *testing.T) {
	resetFlags()
	flagAPIURL = "http://localhost:9999/v1"
	flagModel = "m1"
	flagContextLength = 8192
	flagMaxLines = 200
	flagOverlapRatio = 0.1
	flagOutput = "out.json"
	flagExclude = "*.gen.go,vendor/*"
	flagFocus = "security,bugs"
	flagConcurrency = 2
	flagSystemPrompt = "prompt.txt"

	m := buildOverrides()

	expected := map[string]string{
		"apiURL":           "http://localhost:9999/v1",
		"model":            "m1",
		"contextLength":    "8192",
		"maxLines":         "200",
		"overlapRatio":     "0.1",
		"output":           "out.json",
		"exclude":          "*.gen.go,vendor/*",
		"focus":            "security,bugs",
		"concurrency":      "2",
		"systemPromptFile": "prompt.txt",
	}

	if len(m) != len(expected) {
		t.Fatalf("buildOverrides() returned %d entries, want %d", len(m), len(expected))
	}
	for k, v := range expected {
		if m[k] != v {
			t.Errorf("buildOverrides()[%q] = %q, want %q", k, m[k], v)
		}
	}
}

// --- codeDirArg tests ---

func TestCodeDirArg_Default(t *testing.T) {
	dir, err := codeDirArg(nil)
	if err != nil {
		t.Fatalf("codeDirArg(nil) error: %v", err)
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("codeDirArg(nil) = %q, want absolute path", dir)
	}
}

func TestCodeDirArg_Missing(t *testing.T) {
	if _, err := codeDirArg([]string{"/no/such/dir/anywhere"}); err == nil {
		t.Error("codeDirArg on missing dir: want error, got nil")
	}
}

func TestCodeDirArg_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := codeDirArg([]string{file}); err == nil {
		t.Error("codeDirArg on regular file: want error, got nil")
	}
}

// --- command tests ---

// isolateConfig keeps the host's per-user config and env out of command runs.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("REVCOV_API_URL", "")
	t.Setenv("REVCOV_MODEL", "")
	t.Setenv("REVCOV_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
}

func reviewEndpoint(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"reviews\":[],\"summary\":\"clean\"}"}}]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestReviewCommand_EndToEnd(t *testing.T) {
	resetFlags()
	isolateConfig(t)
	srv := reviewEndpoint(t)

	dir := t.TempDir()
	src := "def main():\n    return 0\n"
	if err := os.WriteFile(filepath.Join(dir, "app.py"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	flagAPIURL = srv.URL
	flagModel = "m1"
	flagConcurrency = 1

	if err := reviewCmd.RunE(reviewCmd, []string{dir}); err != nil {
		t.Fatalf("review command error: %v", err)
	}
	if exitCode != ExitSuccess {
		t.Fatalf("exitCode = %d, want %d", exitCode, ExitSuccess)
	}

	for _, name := range []string{
		filepath.Join("coverage", ledger.LedgerFilename),
		filepath.Join("coverage", report.JSONFilename),
		filepath.Join("coverage", report.MDFilename),
		filepath.Join("coverage", report.BadgeFilename),
		"review-results.json",
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s after review: %v", name, err)
		}
	}
}

func TestReportCommand_CheckFailsWhenUnreviewed(t *testing.T) {
	resetFlags()
	isolateConfig(t)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.py"), []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	flagCheck = true
	if err := reportCmd.RunE(reportCmd, []string{dir}); err != nil {
		t.Fatalf("report command error: %v", err)
	}
	if exitCode != ExitMissed {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitMissed)
	}
}

func TestReportCommand_CheckPassesAfterReview(t *testing.T) {
	resetFlags()
	isolateConfig(t)
	srv := reviewEndpoint(t)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.py"), []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	flagAPIURL = srv.URL
	flagModel = "m1"
	flagConcurrency = 1
	if err := reviewCmd.RunE(reviewCmd, []string{dir}); err != nil {
		t.Fatalf("review command error: %v", err)
	}

	resetFlags()
	flagCheck = true
	if err := reportCmd.RunE(reportCmd, []string{dir}); err != nil {
		t.Fatalf("report command error: %v", err)
	}
	if exitCode != ExitSuccess {
		t.Errorf("exitCode = %d, want %d", exitCode, ExitSuccess)
	}
}

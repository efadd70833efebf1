package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rburns/revcov/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "http://localhost:1234/v1", cfg.APIURL)
	assert.Equal(t, 262144, cfg.ContextLength)
	assert.Equal(t, 1000, cfg.MaxLines)
	assert.Equal(t, 0.05, cfg.OverlapRatio)
	assert.Contains(t, cfg.Exclude, "*.pyc")
	assert.Contains(t, cfg.Focus, "bugs")
}

func TestLoad_ProjectFile(t *testing.T) {
	// Keep the per-user config dir out of the picture.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	codeDir := t.TempDir()
	content := `
api_url = "http://10.0.0.5:8080/v1"
model = "local-model"
context_length = 32768
overlap_ratio = 0.1
focus = ["security"]
`
	require.NoError(t, os.WriteFile(filepath.Join(codeDir, config.FileName), []byte(content), 0o644))

	cfg, err := config.Load(codeDir, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:8080/v1", cfg.APIURL)
	assert.Equal(t, "local-model", cfg.Model)
	assert.Equal(t, 32768, cfg.ContextLength)
	assert.Equal(t, 0.1, cfg.OverlapRatio)
	assert.Equal(t, []string{"security"}, cfg.Focus)
	// Unset fields keep defaults.
	assert.Equal(t, 1000, cfg.MaxLines)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("REVCOV_MODEL", "env-model")
	t.Setenv("REVCOV_CONTEXT_LENGTH", "4096")

	codeDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(codeDir, config.FileName), []byte(`model = "file-model"`), 0o644))

	cfg, err := config.Load(codeDir, nil)
	require.NoError(t, err)
	assert.Equal(t, "env-model", cfg.Model)
	assert.Equal(t, 4096, cfg.ContextLength)
}

func TestLoad_FlagOverridesEverything(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("REVCOV_MODEL", "env-model")

	cfg, err := config.Load(t.TempDir(), map[string]string{
		"model":       "flag-model",
		"exclude":     "a/*, b/*",
		"concurrency": "2",
	})
	require.NoError(t, err)
	assert.Equal(t, "flag-model", cfg.Model)
	assert.Equal(t, []string{"a/*", "b/*"}, cfg.Exclude)
	assert.Equal(t, 2, cfg.Concurrency)
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := config.Load(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestSetField(t *testing.T) {
	cfg := config.Default()

	require.NoError(t, config.SetField(&cfg, "model", "m2"))
	assert.Equal(t, "m2", cfg.Model)

	require.NoError(t, config.SetField(&cfg, "overlap_ratio", "0.2"))
	assert.Equal(t, 0.2, cfg.OverlapRatio)

	assert.Error(t, config.SetField(&cfg, "context_length", "not-a-number"))
	assert.Error(t, config.SetField(&cfg, "bogus", "x"))
}

func TestAPIKey(t *testing.T) {
	t.Setenv("REVCOV_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "fallback")
	assert.Equal(t, "fallback", config.APIKey())

	t.Setenv("REVCOV_API_KEY", "primary")
	assert.Equal(t, "primary", config.APIKey())
}

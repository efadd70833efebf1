package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the project-local config file looked up in the code dir.
const FileName = "revcov.toml"

// Config represents the revcov configuration.
type Config struct {
	APIURL           string   `toml:"api_url"`
	Model            string   `toml:"model"`
	ContextLength    int      `toml:"context_length"`
	MaxLines         int      `toml:"max_lines"`
	OverlapRatio     float64  `toml:"overlap_ratio"`
	Output           string   `toml:"output"`
	Exclude          []string `toml:"exclude"`
	Focus            []string `toml:"focus"`
	Concurrency      int      `toml:"concurrency"`
	SystemPromptFile string   `toml:"system_prompt_file,omitempty"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		APIURL:        "http://localhost:1234/v1",
		Model:         "qwen/qwen3-coder-30b",
		ContextLength: 262144,
		MaxLines:      1000,
		OverlapRatio:  0.05,
		Output:        "review-results.json",
		Exclude: []string{
			"*.pyc",
			"*.pyo",
			"__pycache__/*",
			".git/*",
			"build/*",
			"install/*",
			"log/*",
		},
		Focus:       []string{"bugs", "performance", "maintainability"},
		Concurrency: 4,
	}
}

// ConfigDir returns the platform-appropriate config directory for revcov.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "revcov"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "revcov"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "revcov"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "revcov"), nil
	default:
		return filepath.Join(home, ".config", "revcov"), nil
	}
}

// filePath resolves the config file to load: the project-local revcov.toml
// in codeDir wins over the per-user file.
func filePath(codeDir string) (string, error) {
	if codeDir != "" {
		local := filepath.Join(codeDir, FileName)
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName), nil
}

// LoadFile loads config from the resolved config file. Returns zero Config
// and nil error if no file exists.
func LoadFile(codeDir string) (Config, error) {
	path, err := filePath(codeDir)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the per-user config file.
func Save(cfg Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, FileName))
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

// Load builds the effective config by merging: defaults <- file <- env <-
// overrides. The overrides map comes from CLI flags (only non-zero values
// should be set).
func Load(codeDir string, overrides map[string]string) (Config, error) {
	cfg := Default()

	fileCfg, err := LoadFile(codeDir)
	if err != nil {
		return Config{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	mergeOverrides(&cfg, overrides)

	return cfg, nil
}

// APIKey returns the endpoint key from the environment, if any.
func APIKey() string {
	if v := os.Getenv("REVCOV_API_KEY"); v != "" {
		return v
	}
	return os.Getenv("OPENAI_API_KEY")
}

func mergeFile(dst *Config, src Config) {
	if src.APIURL != "" {
		dst.APIURL = src.APIURL
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.ContextLength > 0 {
		dst.ContextLength = src.ContextLength
	}
	if src.MaxLines > 0 {
		dst.MaxLines = src.MaxLines
	}
	if src.OverlapRatio > 0 {
		dst.OverlapRatio = src.OverlapRatio
	}
	if src.Output != "" {
		dst.Output = src.Output
	}
	if len(src.Exclude) > 0 {
		dst.Exclude = src.Exclude
	}
	if len(src.Focus) > 0 {
		dst.Focus = src.Focus
	}
	if src.Concurrency > 0 {
		dst.Concurrency = src.Concurrency
	}
	if src.SystemPromptFile != "" {
		dst.SystemPromptFile = src.SystemPromptFile
	}
}

func mergeEnv(cfg *Config) {
	if v := os.Getenv("REVCOV_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("REVCOV_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("REVCOV_CONTEXT_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ContextLength = n
		}
	}
	if v := os.Getenv("REVCOV_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Concurrency = n
		}
	}
}

func mergeOverrides(cfg *Config, overrides map[string]string) {
	if overrides == nil {
		return
	}
	if v, ok := overrides["apiURL"]; ok && v != "" {
		cfg.APIURL = v
	}
	if v, ok := overrides["model"]; ok && v != "" {
		cfg.Model = v
	}
	if v, ok := overrides["contextLength"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.ContextLength = n
		}
	}
	if v, ok := overrides["maxLines"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxLines = n
		}
	}
	if v, ok := overrides["overlapRatio"]; ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.OverlapRatio = f
		}
	}
	if v, ok := overrides["output"]; ok && v != "" {
		cfg.Output = v
	}
	if v, ok := overrides["exclude"]; ok && v != "" {
		cfg.Exclude = splitList(v)
	}
	if v, ok := overrides["focus"]; ok && v != "" {
		cfg.Focus = splitList(v)
	}
	if v, ok := overrides["concurrency"]; ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Concurrency = n
		}
	}
	if v, ok := overrides["systemPromptFile"]; ok && v != "" {
		cfg.SystemPromptFile = v
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// SetField sets a single config field by key name. Returns error if key is
// unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "api_url":
		cfg.APIURL = value
	case "model":
		cfg.Model = value
	case "context_length":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("context_length must be an integer: %w", err)
		}
		cfg.ContextLength = n
	case "max_lines":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("max_lines must be an integer: %w", err)
		}
		cfg.MaxLines = n
	case "overlap_ratio":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("overlap_ratio must be a number: %w", err)
		}
		cfg.OverlapRatio = f
	case "output":
		cfg.Output = value
	case "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("concurrency must be an integer: %w", err)
		}
		cfg.Concurrency = n
	case "system_prompt_file":
		cfg.SystemPromptFile = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

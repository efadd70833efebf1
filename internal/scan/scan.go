package scan

import (
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// File is a discovered source file.
type File struct {
	Path     string // absolute or root-relative filesystem path
	RelPath  string // path relative to the code root, slash-separated
	Language string
}

// languages maps file extensions to language names used in prompts.
var languages = map[string]string{
	".go":     "Go",
	".py":     "Python",
	".c":      "C",
	".cpp":    "C++",
	".cc":     "C++",
	".cxx":    "C++",
	".h":      "C/C++ Header",
	".hpp":    "C++ Header",
	".rs":     "Rust",
	".js":     "JavaScript",
	".ts":     "TypeScript",
	".java":   "Java",
	".rb":     "Ruby",
	".sh":     "Shell",
	".xml":    "XML",
	".launch": "ROS Launch",
	".yaml":   "YAML",
	".yml":    "YAML",
}

// excludedDirs are always skipped regardless of configured patterns.
var excludedDirs = map[string]bool{
	".git":         true,
	".svn":         true,
	"__pycache__":  true,
	"node_modules": true,
	"vendor":       true,
	"build":        true,
	"install":      true,
	"log":          true,
	"coverage":     true,
}

// Language returns the language name for a path, or "" if unsupported.
func Language(path string) string {
	return languages[strings.ToLower(filepath.Ext(path))]
}

// Walk returns every supported, non-excluded file under root, sorted by
// relative path. Patterns use filepath.Match syntax.
func Walk(root string, exclude []string) ([]File, error) {
	var files []File
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && excludedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		lang := Language(path)
		if lang == "" {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if Excluded(rel, exclude) {
			return nil
		}
		files = append(files, File{Path: path, RelPath: rel, Language: lang})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// Excluded reports whether a relative path matches any exclude pattern,
// testing both the full relative path and the base name.
func Excluded(relPath string, patterns []string) bool {
	base := filepath.Base(relPath)
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, relPath); ok {
			return true
		}
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
		// Directory-prefix patterns like "generated/*" should also match
		// nested paths.
		if strings.HasSuffix(p, "/*") {
			if strings.HasPrefix(relPath, strings.TrimSuffix(p, "*")) {
				return true
			}
		}
	}
	return false
}

// IsBinary reports whether content looks binary (contains a NUL byte in
// the leading window).
func IsBinary(content []byte) bool {
	window := content
	if len(window) > 8000 {
		window = window[:8000]
	}
	for _, b := range window {
		if b == 0 {
			return true
		}
	}
	return false
}

// HeadCommit returns the current commit SHA of the repository containing
// dir, or "" when dir is not a git repository or git is unavailable. The
// ledger treats an unknown commit as its own partition rather than an
// error.
func HeadCommit(dir string) string {
	cmd := exec.Command("git", "rev-parse", "HEAD")
	cmd.Dir = dir
	cmd.Stderr = nil
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// ReadFile reads a discovered file's content.
func ReadFile(f File) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.RelPath, err)
	}
	return data, nil
}

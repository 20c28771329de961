package source

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Extensions lists the supported source extensions in directory expansion
// order.
var Extensions = []string{".csv", ".json", ".yaml", ".yml"}

// Supported reports whether path has a readable source extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// IsGlob reports whether path contains glob metacharacters.
func IsGlob(path string) bool {
	return strings.ContainsAny(path, "*?[")
}

// Collect expands inputs into the ordered list of files to load.
// Directories expand non-recursively, one extension at a time, each sorted.
// Glob patterns expand to their matching files. Plain paths are kept as
// given so that a missing file surfaces as a read failure. A file reached
// twice (same absolute, symlink-resolved path) is listed once.
func Collect(fs afero.Fs, inputs []string) ([]string, error) {
	var files []string
	for _, in := range inputs {
		expanded, err := expand(fs, in)
		if err != nil {
			return nil, err
		}
		files = append(files, expanded...)
	}

	seen := make(map[string]bool, len(files))
	out := files[:0]
	for _, f := range files {
		id := identity(fs, f)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, f)
	}
	return out, nil
}

func expand(fs afero.Fs, in string) ([]string, error) {
	if IsGlob(in) {
		// afero.Glob only reports a malformed pattern once a directory
		// exists to match against.
		if _, err := filepath.Match(in, ""); err != nil {
			return nil, fmt.Errorf("glob %q: %w", in, err)
		}
		matches, err := afero.Glob(fs, in)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", in, err)
		}
		sort.Strings(matches)
		var files []string
		for _, m := range matches {
			if isDir(fs, m) {
				continue
			}
			files = append(files, m)
		}
		return files, nil
	}

	if !isDir(fs, in) {
		return []string{in}, nil
	}
	var files []string
	for _, ext := range Extensions {
		matches, err := afero.Glob(fs, filepath.Join(in, "*"+ext))
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", in, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !isDir(fs, m) {
				files = append(files, m)
			}
		}
	}
	return files, nil
}

func isDir(fs afero.Fs, path string) bool {
	ok, err := afero.IsDir(fs, path)
	return err == nil && ok
}

// identity resolves the absolute path, following symlinks on the real
// filesystem.
func identity(fs afero.Fs, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	if _, ok := fs.(*afero.OsFs); ok {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			return resolved
		}
	}
	return abs
}

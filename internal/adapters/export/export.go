// Package export writes evaluated result tables as CSV or JSON onto an
// afero filesystem.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/corey/fpvcompat/internal/domain/compat"
	"github.com/corey/fpvcompat/internal/domain/part"
)

// Format is an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatBolt Format = "bolt"
)

// ColPairType is the extra leading column of merged output.
const ColPairType = "pair_type"

// InferFormat picks a format from the destination path: .json is JSON,
// .db and .bolt are a snapshot database, anything else is CSV.
func InferFormat(dest string) Format {
	switch strings.ToLower(filepath.Ext(dest)) {
	case ".json":
		return FormatJSON
	case ".db", ".bolt":
		return FormatBolt
	}
	return FormatCSV
}

// ParseFormat accepts a format name; empty means infer from dest.
func ParseFormat(name, dest string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return InferFormat(dest), nil
	case FormatCSV, FormatJSON, FormatBolt:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", name)
}

// Options control file layout.
type Options struct {
	// Merge writes every table into one file with a pair_type column.
	Merge bool
}

// cell renders a value for text output. Unknown values are empty.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return part.FormatNumber(x)
	}
	return fmt.Sprint(v)
}

func ensureDir(fs afero.Fs, dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// dirLike reports whether dest names a directory: a trailing separator or
// no extension.
func dirLike(dest string) bool {
	return strings.HasSuffix(dest, "/") || strings.HasSuffix(dest, string(filepath.Separator)) ||
		filepath.Ext(dest) == ""
}

// nonEmpty filters out tables with no edges.
func nonEmpty(rs compat.Results) compat.Results {
	out := make(compat.Results, 0, len(rs))
	for _, t := range rs {
		if len(t.Edges) > 0 {
			out = append(out, t)
		}
	}
	return out
}

package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/corey/fpvcompat/internal/domain/compat"
)

// CSVWriter writes one <key>.csv per non-empty table into a directory, or
// a single merged file when Merge is set.
type CSVWriter struct {
	FS   afero.Fs
	Opts Options
}

// Write honors Merge only for a file-like dest. Without it, a file-like dest
// such as out/compat.csv becomes the directory out/compat.
func (w CSVWriter) Write(dest string, rs compat.Results) error {
	if w.Opts.Merge && !dirLike(dest) {
		if err := ensureDir(w.FS, filepath.Dir(dest)); err != nil {
			return err
		}
		return writeFile(w.FS, dest, func(out io.Writer) error {
			return writeMergedCSV(out, rs)
		})
	}

	dest = strings.TrimSuffix(dest, filepath.Ext(dest))
	if err := ensureDir(w.FS, dest); err != nil {
		return err
	}
	for _, t := range nonEmpty(rs) {
		t := t
		path := filepath.Join(dest, t.Key+".csv")
		if err := writeFile(w.FS, path, func(out io.Writer) error {
			return writeTableCSV(out, t)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeTableCSV(out io.Writer, t compat.Table) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(t.Columns()); err != nil {
		return err
	}
	for _, row := range t.Rows() {
		if err := cw.Write(cells(row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeMergedCSV writes the union of every table's columns, in first-seen
// order, after a leading pair_type column.
func writeMergedCSV(out io.Writer, rs compat.Results) error {
	header := []string{ColPairType}
	index := map[string]int{}
	for _, t := range rs {
		for _, c := range t.Columns() {
			if _, ok := index[c]; !ok {
				index[c] = len(header)
				header = append(header, c)
			}
		}
	}

	cw := csv.NewWriter(out)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, t := range rs {
		cols := t.Columns()
		for _, row := range t.Rows() {
			rec := make([]string, len(header))
			rec[0] = t.Key
			for i, v := range row {
				rec[index[cols[i]]] = cell(v)
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func cells(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = cell(v)
	}
	return out
}

func writeFile(fs afero.Fs, path string, fn func(io.Writer) error) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

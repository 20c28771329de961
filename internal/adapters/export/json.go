package export

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/corey/fpvcompat/internal/domain/compat"
)

// JSONWriter writes an object mapping each key to its array of row
// objects (every key present, in rule order), or with Merge a single
// array of rows tagged with pair_type. Row objects keep column order.
type JSONWriter struct {
	FS   afero.Fs
	Opts Options
}

func (w JSONWriter) Write(dest string, rs compat.Results) error {
	if err := ensureDir(w.FS, filepath.Dir(dest)); err != nil {
		return err
	}
	var buf bytes.Buffer
	var err error
	if w.Opts.Merge {
		err = encodeMerged(&buf, rs)
	} else {
		err = encodeByKey(&buf, rs)
	}
	if err != nil {
		return err
	}
	buf.WriteByte('\n')
	return writeFile(w.FS, dest, func(out io.Writer) error {
		_, err := buf.WriteTo(out)
		return err
	})
}

func encodeByKey(buf *bytes.Buffer, rs compat.Results) error {
	buf.WriteByte('{')
	for i, t := range rs {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString("\n  ")
		if err := writeJSON(buf, t.Key); err != nil {
			return err
		}
		buf.WriteString(": [")
		cols := t.Columns()
		for j, row := range t.Rows() {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString("\n    ")
			if err := encodeRow(buf, nil, cols, row); err != nil {
				return err
			}
		}
		if len(t.Edges) > 0 {
			buf.WriteString("\n  ")
		}
		buf.WriteByte(']')
	}
	if len(rs) > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteByte('}')
	return nil
}

func encodeMerged(buf *bytes.Buffer, rs compat.Results) error {
	buf.WriteByte('[')
	n := 0
	for _, t := range rs {
		cols := t.Columns()
		for _, row := range t.Rows() {
			if n > 0 {
				buf.WriteByte(',')
			}
			n++
			buf.WriteString("\n  ")
			key := t.Key
			if err := encodeRow(buf, &key, cols, row); err != nil {
				return err
			}
		}
	}
	if n > 0 {
		buf.WriteByte('\n')
	}
	buf.WriteByte(']')
	return nil
}

// encodeRow writes one ordered object; pairType, when set, leads.
func encodeRow(buf *bytes.Buffer, pairType *string, cols []string, row []any) error {
	buf.WriteByte('{')
	first := true
	field := func(k string, v any) error {
		if !first {
			buf.WriteString(", ")
		}
		first = false
		if err := writeJSON(buf, k); err != nil {
			return err
		}
		buf.WriteString(": ")
		return writeJSON(buf, v)
	}
	if pairType != nil {
		if err := field(ColPairType, *pairType); err != nil {
			return err
		}
	}
	for i, c := range cols {
		if err := field(c, row[i]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeJSON appends v without HTML escaping so reasons keep their < and >.
func writeJSON(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// Package source reads part records from CSV, JSON and YAML files on an
// afero filesystem and expands input paths (directories, globs) into the
// files to load.
package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/corey/fpvcompat/internal/domain/part"
)

const utf8BOM = "\ufeff"

// CSVReader decodes comma-separated text with a header row. Empty cells are
// unknown; an attrs cell holding a JSON object is decoded into a nested map.
type CSVReader struct{}

func (CSVReader) Read(r io.Reader) ([]part.Raw, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	var rows []part.Raw
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", len(rows)+2, err)
		}
		row := make(part.Raw, len(header))
		for i, col := range header {
			if col == "" {
				continue
			}
			if i >= len(rec) || strings.TrimSpace(rec[i]) == "" {
				row[col] = nil
				continue
			}
			row[col] = cellValue(col, rec[i])
		}
		rows = append(rows, row)
	}
}

func cellValue(col, cell string) any {
	if col != "attrs" {
		return cell
	}
	trimmed := strings.TrimSpace(cell)
	if !strings.HasPrefix(trimmed, "{") || !gjson.Valid(trimmed) {
		return cell
	}
	if m, ok := gjson.Parse(trimmed).Value().(map[string]any); ok {
		return m
	}
	return cell
}

// Table blob encoding.
//
// Each result table is stored as one value: a format version byte followed
// by the gob encoding of compat.Table. Run headers stay JSON so they can be
// inspected with any bbolt browser.
package bbolt

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/corey/fpvcompat/internal/domain/compat"
)

const tableFormatV1 byte = 1

// encodeTable encodes one result table.
func encodeTable(t compat.Table) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(tableFormatV1)
	if err := gob.NewEncoder(&buf).Encode(t); err != nil {
		return nil, fmt.Errorf("encode table %s: %w", t.Key, err)
	}
	return buf.Bytes(), nil
}

// decodeTable decodes a blob written by encodeTable. gob drops empty
// slices, so they are restored here to keep every table's edge list
// non-nil.
func decodeTable(data []byte) (compat.Table, error) {
	var t compat.Table
	if len(data) == 0 {
		return t, fmt.Errorf("empty table blob")
	}
	if data[0] != tableFormatV1 {
		return t, fmt.Errorf("unsupported table format %d", data[0])
	}
	if err := gob.NewDecoder(bytes.NewReader(data[1:])).Decode(&t); err != nil {
		return t, err
	}
	if t.Edges == nil {
		t.Edges = []compat.Edge{}
	}
	for i := range t.Edges {
		if t.Edges[i].Values == nil {
			t.Edges[i].Values = make([]any, len(t.Fields))
		}
	}
	return t, nil
}

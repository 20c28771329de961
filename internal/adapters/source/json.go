package source

import (
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/gjson"

	"github.com/corey/fpvcompat/internal/domain/part"
)

// envelopeKeys are the wrapper fields that may hold the record array, in
// lookup order.
var envelopeKeys = []string{"parts", "data"}

var errMalformedJSON = errors.New("malformed json")

// JSONReader decodes a top-level array of objects, an object wrapping a
// parts or data array, or a single object taken as one record.
type JSONReader struct{}

func (JSONReader) Read(r io.Reader) ([]part.Raw, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, errMalformedJSON
	}

	root := gjson.ParseBytes(data)
	switch {
	case root.IsArray():
		return jsonObjects(root.Array()), nil
	case root.IsObject():
		for _, key := range envelopeKeys {
			if v := root.Get(key); v.IsArray() {
				return jsonObjects(v.Array()), nil
			}
		}
		return jsonObjects([]gjson.Result{root}), nil
	}
	return nil, nil
}

// jsonObjects keeps only the object elements.
func jsonObjects(items []gjson.Result) []part.Raw {
	rows := make([]part.Raw, 0, len(items))
	for _, it := range items {
		if !it.IsObject() {
			continue
		}
		if m, ok := it.Value().(map[string]any); ok {
			rows = append(rows, part.Raw(m))
		}
	}
	return rows
}

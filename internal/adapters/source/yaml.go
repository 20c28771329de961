package source

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/corey/fpvcompat/internal/domain/part"
)

// YAMLReader accepts the same shapes as JSONReader. A multi-document
// stream contributes the records of every document.
type YAMLReader struct{}

func (YAMLReader) Read(r io.Reader) ([]part.Raw, error) {
	dec := yaml.NewDecoder(r)
	var rows []part.Raw
	for {
		var doc any
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("yaml: %w", err)
		}
		rows = append(rows, yamlItems(stringKeys(doc))...)
	}
}

func yamlItems(doc any) []part.Raw {
	switch v := doc.(type) {
	case []any:
		return yamlObjects(v)
	case map[string]any:
		for _, key := range envelopeKeys {
			if list, ok := v[key].([]any); ok {
				return yamlObjects(list)
			}
		}
		return []part.Raw{v}
	}
	return nil
}

func yamlObjects(items []any) []part.Raw {
	rows := make([]part.Raw, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			rows = append(rows, part.Raw(m))
		}
	}
	return rows
}

// stringKeys rewrites mappings with non-string keys (e.g. `5: x`) so that
// every nested object is a map[string]any.
func stringKeys(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = stringKeys(e)
		}
		return x
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[fmt.Sprint(k)] = stringKeys(e)
		}
		return out
	case []any:
		for i, e := range x {
			x[i] = stringKeys(e)
		}
		return x
	}
	return v
}

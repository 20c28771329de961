package ports

import (
	"io"

	"github.com/corey/fpvcompat/internal/domain/compat"
	"github.com/corey/fpvcompat/internal/domain/part"
)

// RecordReader decodes one source file into raw part rows.
type RecordReader interface {
	// Read decodes the whole stream. A malformed stream returns an error
	// and no rows.
	Read(r io.Reader) ([]part.Raw, error)
}

// ResultWriter serializes evaluated result tables to a destination path.
type ResultWriter interface {
	Write(dest string, rs compat.Results) error
}

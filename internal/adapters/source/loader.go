package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/corey/fpvcompat/internal/domain/part"
	"github.com/corey/fpvcompat/internal/ports"
)

// FileReport is the outcome of loading one file. Err is set when the file
// could not be read or decoded; such a file contributes no records.
type FileReport struct {
	Path    string
	Format  string
	Records int
	Err     error
}

// Loader reads every collected input file with the reader registered for
// its extension.
type Loader struct {
	fs      afero.Fs
	readers map[string]ports.RecordReader
}

// NewLoader returns a Loader over fs with the CSV, JSON and YAML readers.
func NewLoader(fs afero.Fs) *Loader {
	return &Loader{
		fs: fs,
		readers: map[string]ports.RecordReader{
			".csv":  CSVReader{},
			".json": JSONReader{},
			".yaml": YAMLReader{},
			".yml":  YAMLReader{},
		},
	}
}

// Load collects inputs and decodes each file. Per-file failures are
// reported, never returned; only an invalid glob pattern is an error.
// Files with unsupported extensions are skipped without a report.
func (l *Loader) Load(inputs []string) ([]part.Raw, []FileReport, error) {
	files, err := Collect(l.fs, inputs)
	if err != nil {
		return nil, nil, err
	}

	var rows []part.Raw
	reports := make([]FileReport, 0, len(files))
	for _, path := range files {
		ext := strings.ToLower(filepath.Ext(path))
		reader, ok := l.readers[ext]
		if !ok {
			continue
		}
		got, err := l.readFile(path, reader)
		reports = append(reports, FileReport{
			Path:    path,
			Format:  strings.TrimPrefix(ext, "."),
			Records: len(got),
			Err:     err,
		})
		rows = append(rows, got...)
	}
	return rows, reports, nil
}

func (l *Loader) readFile(path string, reader ports.RecordReader) ([]part.Raw, error) {
	f, err := l.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := reader.Read(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rows, nil
}

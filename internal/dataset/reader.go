package dataset

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// Options controls how a file is read.
type Options struct {
	// Delimiter for CSV. If 0, sniffed from the extension and header line.
	Delimiter rune
	// Sheet for workbooks. Empty selects the first sheet.
	Sheet string
}

// Reader turns a file into header-first string records.
type Reader interface {
	CanRead(path string) bool
	Read(path string, opt Options) ([][]string, error)
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}

// Load selects a reader by filename and builds a typed dataset.
// Files no reader claims are read as comma-separated text.
func Load(path string, opt Options) (*Dataset, error) {
	var rd Reader = csvReader{}
	for _, r := range registry {
		if r.CanRead(path) {
			rd = r
			break
		}
	}
	recs, err := rd.Read(path, opt)
	if err != nil {
		return nil, err
	}
	ds, err := FromRecords(filepath.Base(path), recs)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	slog.Debug("dataset loaded", "file", path, "rows", ds.Rows(), "columns", len(ds.Columns()))
	return ds, nil
}

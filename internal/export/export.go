// Package export turns in-memory export projections into downloadable
// files. Services build the projection table; converters own the format.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
)

// FileType identifies an export format
type FileType string

const (
	FileTypeCSV FileType = "csv"
)

// ErrUnsupportedFileType is returned for formats without a converter
var ErrUnsupportedFileType = errors.New("unsupported file type")

// Table is an export projection: ordered column headers plus rows
type Table struct {
	Headers []string
	Rows    [][]string
}

// Converter renders an export projection into one file format
type Converter interface {
	FileType() FileType
	Convert(table Table) ([]byte, error)
}

// CSVConverter renders export projections as RFC 4180 CSV
type CSVConverter struct{}

func (CSVConverter) FileType() FileType { return FileTypeCSV }

func (CSVConverter) Convert(table Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(table.Headers); err != nil {
		return nil, fmt.Errorf("failed to write csv headers: %w", err)
	}
	for _, row := range table.Rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var converters = map[FileType]Converter{
	FileTypeCSV: CSVConverter{},
}

// Convert renders the table with the converter registered for the file type
func Convert(fileType FileType, table Table) ([]byte, error) {
	c, ok := converters[fileType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, fileType)
	}
	return c.Convert(table)
}

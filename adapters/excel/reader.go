package excel

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"calcdash/internal"
	"calcdash/internal/errors"
)

var zipMagic = []byte("PK\x03\x04")

// DataReader turns uploaded bytes into a ParsedTable
type DataReader struct {
	opts   ParseOptions
	logger *internal.Logger
}

// NewDataReader creates a reader with the given options. A nil logger falls
// back to the package default.
func NewDataReader(opts ParseOptions, logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if len(opts.GenericSheetPrefixes) == 0 {
		opts.GenericSheetPrefixes = DefaultParseOptions().GenericSheetPrefixes
	}
	return &DataReader{opts: opts, logger: logger.With("DataReader")}
}

// Parse reads data with default logging.
func Parse(data []byte, opts ParseOptions) (*ParsedTable, error) {
	return NewDataReader(opts, nil).Parse(data)
}

// ReadFile reads a file from disk, using its extension as the format hint
// unless opts already declares one.
func ReadFile(path string, opts ParseOptions) (*ParsedTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.UnreadableInput("failed to open "+filepath.Base(path), err)
	}
	if opts.Extension == "" {
		opts.Extension = filepath.Ext(path)
	}
	return Parse(data, opts)
}

// DetectFormat picks the container format. An explicit xlsx/csv extension
// wins; anything else is sniffed from the zip magic bytes.
func DetectFormat(data []byte, opts ParseOptions) Format {
	if f := opts.declaredFormat(); f != "" {
		return f
	}
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	return FormatCSV
}

// Parse dispatches to the XLSX or CSV reader
func (r *DataReader) Parse(data []byte) (*ParsedTable, error) {
	if len(data) == 0 {
		return nil, errors.UnreadableInput("uploaded file is empty", nil)
	}

	start := time.Now()
	format := DetectFormat(data, r.opts)
	r.logger.Debug("parsing %d bytes as %s", len(data), format)

	var (
		table *ParsedTable
		err   error
	)
	switch format {
	case FormatXLSX:
		table, err = r.parseXLSX(data)
	default:
		table, err = r.parseCSV(data)
	}
	if err != nil {
		return nil, err
	}

	r.logger.Info("%s parsed in %.2fms (%d columns, %d rows)",
		strings.ToUpper(string(format)), float64(time.Since(start).Nanoseconds())/1e6,
		len(table.Headers), len(table.Rows))
	return table, nil
}

// assembleRows applies the shared row rules: the first non-blank row is the
// header (trimmed), every row is padded to width, blank data rows are dropped.
// width < 0 means "widest row seen".
func assembleRows(raw [][]string, width int) *ParsedTable {
	start := 0
	for start < len(raw) && isBlankRow(raw[start]) {
		start++
	}
	if start == len(raw) {
		return &ParsedTable{}
	}
	raw = raw[start:]

	if width < 0 {
		for _, row := range raw {
			if len(row) > width {
				width = len(row)
			}
		}
	}

	headers := make([]string, width)
	for i := 0; i < width && i < len(raw[0]); i++ {
		headers[i] = strings.TrimSpace(raw[0][i])
	}

	rows := make([][]string, 0, len(raw)-1)
	for _, row := range raw[1:] {
		padded := make([]string, width)
		copy(padded, row)
		if isBlankRow(padded) {
			continue
		}
		rows = append(rows, padded)
	}
	return &ParsedTable{Headers: headers, Rows: rows}
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func trimCell(s string) string {
	return strings.TrimSpace(s)
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

package excel

import (
	"bytes"
	"encoding/csv"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"calcdash/internal/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeCSVBytes strips a UTF-8 BOM and decodes legacy Windows-1252 exports.
func decodeCSVBytes(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

// parseCSV reads a comma-delimited upload. Rows are padded or truncated to the
// header width.
func (r *DataReader) parseCSV(data []byte) (*ParsedTable, error) {
	decoded, err := decodeCSVBytes(data)
	if err != nil {
		return nil, errors.UnreadableInput("failed to decode CSV file", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var raw [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.UnreadableInput("failed to read CSV file", err)
		}
		raw = append(raw, record)
	}

	// Width is fixed by the header row, found after any leading blank lines.
	width := 0
	for _, row := range raw {
		if !isBlankRow(row) {
			width = len(row)
			break
		}
	}
	if width == 0 {
		return nil, errors.NoData("CSV file contains no header row")
	}

	table := assembleRows(raw, width)
	if len(table.Rows) == 0 {
		return nil, errors.NoData("file was parsed but contains no data rows")
	}
	return table, nil
}

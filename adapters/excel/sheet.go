package excel

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"calcdash/internal/errors"
)

type xlsxSST struct {
	Items []xlsxSI `xml:"si"`
}

// xlsxSI is a shared or inline string: plain <t> text, rich-text runs, or both.
type xlsxSI struct {
	T    *xlsxT  `xml:"t"`
	Runs []xlsxR `xml:"r"`
}

type xlsxR struct {
	T xlsxT `xml:"t"`
}

type xlsxT struct {
	Value string `xml:",chardata"`
}

func (si *xlsxSI) text() string {
	if si == nil {
		return ""
	}
	var b strings.Builder
	if si.T != nil {
		b.WriteString(si.T.Value)
	}
	for _, r := range si.Runs {
		b.WriteString(r.T.Value)
	}
	return b.String()
}

type xlsxWorksheet struct {
	Rows []xlsxRow `xml:"sheetData>row"`
}

type xlsxRow struct {
	Cells []xlsxC `xml:"c"`
}

type xlsxC struct {
	Ref    string  `xml:"r,attr"`
	Type   string  `xml:"t,attr"`
	Value  *string `xml:"v"`
	Inline *xlsxSI `xml:"is"`
}

// Cell is one extracted cell value
type Cell struct {
	Col   int
	Type  string
	Value string
}

// columnIndex resolves a reference like "AA7" to a zero-based column index.
func columnIndex(ref string) (int, bool) {
	if ref == "" {
		return 0, false
	}
	colName, _, err := excelize.SplitCellName(ref)
	if err != nil {
		return 0, false
	}
	n, err := excelize.ColumnNameToNumber(colName)
	if err != nil {
		return 0, false
	}
	return n - 1, true
}

// cellValue reads the typed value node, falling back to the inline string.
func (wb *workbook) cellValue(c xlsxC) string {
	if c.Value != nil {
		if c.Type == "s" {
			idx, err := strconv.Atoi(strings.TrimSpace(*c.Value))
			if err != nil || idx < 0 || idx >= len(wb.sharedStrings) {
				return ""
			}
			return wb.sharedStrings[idx]
		}
		return *c.Value
	}
	if c.Inline != nil {
		return c.Inline.text()
	}
	return ""
}

// cells lists the cells of one row with resolved column indexes. Cells
// without a reference take the column after their predecessor.
func (wb *workbook) cells(row xlsxRow) []Cell {
	out := make([]Cell, 0, len(row.Cells))
	next := 0
	for _, c := range row.Cells {
		col, ok := columnIndex(c.Ref)
		if !ok {
			col = next
		}
		next = col + 1
		out = append(out, Cell{Col: col, Type: c.Type, Value: wb.cellValue(c)})
	}
	return out
}

// readSheet extracts the grid of one worksheet part.
func (wb *workbook) readSheet(part string) ([][]string, error) {
	b, ok, err := wb.readPart(part)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.UnreadableInput("worksheet "+part+" is missing", nil)
	}
	var ws xlsxWorksheet
	if err := xml.Unmarshal(b, &ws); err != nil {
		return nil, errors.UnreadableInput("worksheet "+part+" is malformed", err)
	}

	grid := make([][]string, 0, len(ws.Rows))
	for _, row := range ws.Rows {
		cells := wb.cells(row)
		width := 0
		for _, c := range cells {
			if c.Col+1 > width {
				width = c.Col + 1
			}
		}
		values := make([]string, width)
		for _, c := range cells {
			values[c.Col] = c.Value
		}
		grid = append(grid, values)
	}
	return grid, nil
}

// parseXLSX walks the candidate worksheets and returns the first one with at
// least one data row.
func (r *DataReader) parseXLSX(data []byte) (*ParsedTable, error) {
	wb, err := openWorkbook(data)
	if err != nil {
		return nil, err
	}

	candidates := wb.candidates(r.opts.PreferredSheet, r.opts.GenericSheetPrefixes)
	if len(candidates) == 0 {
		return nil, errors.UnreadableInput("workbook contains no worksheets", nil)
	}

	var lastErr error
	readable := 0
	for _, cand := range candidates {
		grid, err := wb.readSheet(cand.Part)
		if err != nil {
			r.logger.Warn("skipping sheet %q (%s): %v", cand.Name, cand.Part, err)
			lastErr = err
			continue
		}
		readable++
		table := assembleRows(grid, -1)
		if len(table.Rows) == 0 {
			r.logger.Debug("sheet %q (%s, %s) has no data rows, trying next", cand.Name, cand.Part, cand.Reason)
			continue
		}
		r.logger.Debug("using sheet %q (%s, %s)", cand.Name, cand.Part, cand.Reason)
		return table, nil
	}

	if readable == 0 && lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.NoData("file was parsed but contains no data rows")
}

package excel

// RawRowData represents a single data row keyed by header name
type RawRowData map[string]string

// ParsedTable is the format-neutral result of reading an upload.
// Every row has exactly len(Headers) cells and no row is entirely blank.
type ParsedTable struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// RowCount returns the number of data rows
func (t *ParsedTable) RowCount() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Get returns the trimmed value of the named column (case-insensitive),
// or "" when the column is absent.
func (r RawRowData) Get(name string) string {
	if v, ok := r[name]; ok {
		return trimCell(v)
	}
	for k, v := range r {
		if equalFold(k, name) {
			return trimCell(v)
		}
	}
	return ""
}

// First returns the first non-empty value among the named columns.
func (r RawRowData) First(names ...string) string {
	for _, n := range names {
		if v := r.Get(n); v != "" {
			return v
		}
	}
	return ""
}

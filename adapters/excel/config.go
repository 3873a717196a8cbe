package excel

import "strings"

// Format identifies an upload container format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseOptions controls how an uploaded blob is read
type ParseOptions struct {
	// Extension is the declared file extension ("xlsx", ".csv", ...). Empty
	// or unknown values fall back to content sniffing.
	Extension string `json:"extension"`
	// PreferredSheet is tried first when the workbook has several sheets.
	PreferredSheet string `json:"preferred_sheet"`
	// GenericSheetPrefixes name the sheets tried after the preferred one.
	GenericSheetPrefixes []string `json:"generic_sheet_prefixes"`
}

// DefaultParseOptions returns the defaults used by uploads
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		GenericSheetPrefixes: []string{"All_", "All "},
	}
}

// WithSheet returns a copy of o with PreferredSheet set.
func (o ParseOptions) WithSheet(name string) ParseOptions {
	o.PreferredSheet = name
	return o
}

// WithExtension returns a copy of o with the declared extension set.
func (o ParseOptions) WithExtension(ext string) ParseOptions {
	o.Extension = ext
	return o
}

// declaredFormat maps the declared extension to a format, or "" when the
// extension gives no usable hint.
func (o ParseOptions) declaredFormat() Format {
	ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(o.Extension), "."))
	switch ext {
	case "xlsx":
		return FormatXLSX
	case "csv":
		return FormatCSV
	default:
		return ""
	}
}

// SupportedExtension reports whether ext names an accepted upload format.
func SupportedExtension(ext string) bool {
	return ParseOptions{Extension: ext}.declaredFormat() != ""
}

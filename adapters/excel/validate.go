package excel

import (
	"sort"
	"strings"

	"calcdash/internal/errors"
)

// ColumnRequirement is satisfied when any of its aliases is present.
// The first alias is the one reported when none is.
type ColumnRequirement []string

// Col requires a single column.
func Col(name string) ColumnRequirement {
	return ColumnRequirement{name}
}

// AnyOf requires at least one of several alias columns.
func AnyOf(names ...string) ColumnRequirement {
	return ColumnRequirement(names)
}

// Label is the name used when the requirement is missing.
func (c ColumnRequirement) Label() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// ValidateColumns returns the labels of requirements not met by headers, in
// requirement order. Matching is trimmed and case-insensitive.
func ValidateColumns(headers []string, required []ColumnRequirement) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[normalizeHeader(h)] = true
	}

	missing := []string{}
	for _, req := range required {
		satisfied := false
		for _, alias := range req {
			if present[normalizeHeader(alias)] {
				satisfied = true
				break
			}
		}
		if !satisfied && len(req) > 0 {
			missing = append(missing, req.Label())
		}
	}
	return missing
}

// DuplicateHeaders returns non-empty headers that occur more than once after
// trimming and case folding, sorted.
func DuplicateHeaders(headers []string) []string {
	counts := map[string]int{}
	first := map[string]string{}
	for _, h := range headers {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		counts[key]++
		if _, ok := first[key]; !ok {
			first[key] = strings.TrimSpace(h)
		}
	}
	var dups []string
	for key, n := range counts {
		if n > 1 {
			dups = append(dups, first[key])
		}
	}
	sort.Strings(dups)
	return dups
}

// CheckDuplicateHeaders fails when a header name is ambiguous.
func CheckDuplicateHeaders(headers []string) error {
	if dups := DuplicateHeaders(headers); len(dups) > 0 {
		return errors.New(errors.CodeDuplicateColumns,
			"Duplicate column headers: "+strings.Join(dups, ", ")+". Each column name must be unique.")
	}
	return nil
}

// RequireColumns runs the duplicate check and the required-column check.
func RequireColumns(table *ParsedTable, required []ColumnRequirement) error {
	if err := CheckDuplicateHeaders(table.Headers); err != nil {
		return err
	}
	if missing := ValidateColumns(table.Headers, required); len(missing) > 0 {
		found := make([]string, 0, len(table.Headers))
		for _, h := range table.Headers {
			if h != "" {
				found = append(found, h)
			}
		}
		return errors.MissingColumns(missing, found)
	}
	return nil
}

package mapper

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"calcdash/domain/dashboard"
)

// CalcLevel is the course level a row was classified into.
type CalcLevel int

const (
	LevelUnclassified CalcLevel = iota
	LevelCalcI
	LevelCalcII
)

// ClassifyLevel maps a free-text Calc Level cell onto a course level.
// Containing "II" but not "III" is Calc II, anything else containing "I" is
// Calc I.
func ClassifyLevel(raw string) CalcLevel {
	v := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case strings.Contains(v, "II") && !strings.Contains(v, "III"):
		return LevelCalcII
	case strings.Contains(v, "I"):
		return LevelCalcI
	}
	return LevelUnclassified
}

var (
	trailingParenRe = regexp.MustCompile(`\s*\(.*\)\s*$`)
	parenRe         = regexp.MustCompile(`\(([^)]*)\)`)
	stateCodeRe     = regexp.MustCompile(`^[A-Z]{2}$`)
	leadingNumberRe = regexp.MustCompile(`^[+-]?\d+(?:\.\d+)?`)
	priceNumberRe   = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
	priceStripRe    = regexp.MustCompile(`[$,\s]`)
	titleSplitRe    = regexp.MustCompile(`\s*(?:;|\||\r\n|\r|\n)\s*`)
)

// cleanLabel strips a trailing parenthetical, "Southeast (AL, AR)" -> "Southeast".
func cleanLabel(raw string) string {
	return strings.TrimSpace(trailingParenRe.ReplaceAllString(strings.TrimSpace(raw), ""))
}

// regionStateCodes returns the distinct two-letter codes listed inside the
// first parenthesis of a region label.
func regionStateCodes(label string) []string {
	codes := []string{}
	m := parenRe.FindStringSubmatch(label)
	if m == nil {
		return codes
	}
	seen := map[string]bool{}
	for _, part := range strings.Split(m[1], ",") {
		code := strings.ToUpper(strings.TrimSpace(part))
		if !stateCodeRe.MatchString(code) || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}

// parseCount reads an integer cell. Thousands separators are accepted,
// fractions truncate, and anything unparseable counts as 0.
func parseCount(raw string) int {
	v := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if v == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	if m := leadingNumberRe.FindString(v); m != "" {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			return int(f)
		}
	}
	return 0
}

var notAPrice = map[string]bool{
	"n/a": true, "na": true, "null": true, "none": true,
	"unavailable": true, "*no book details*": true, "no book details": true,
}

// ParsePriceNullable parses a textbook price cell. ok is false when the cell
// holds no usable price; "free" and "oer" are the valid price 0.
func ParsePriceNullable(raw string) (price float64, ok bool) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0, false
	}
	lower := strings.ToLower(v)
	if notAPrice[lower] {
		return 0, false
	}
	if lower == "free" || lower == "oer" {
		return 0, true
	}
	clean := priceStripRe.ReplaceAllString(v, "")
	if !priceNumberRe.MatchString(clean) {
		return 0, false
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// positivePrice returns the price when it is valid and above zero.
func positivePrice(raw string) (float64, bool) {
	p, ok := ParsePriceNullable(raw)
	if !ok || p <= 0 {
		return 0, false
	}
	return p, true
}

var placeholderTitles = map[string]bool{
	"unavailable": true, "no book details": true, "no details": true,
	"n/a": true, "na": true, "none": true, "null": true,
}

func normalizeTitleToken(s string) string {
	s = strings.Join(strings.Fields(strings.ToLower(s)), " ")
	return strings.Trim(s, " \t\n\r\x00\x0b*")
}

// countTextbooks counts the book titles listed in one cell. Titles are
// separated by ";", "|" or line breaks and placeholders count as nothing.
func countTextbooks(cell string) int {
	v := strings.TrimSpace(cell)
	if v == "" || placeholderTitles[normalizeTitleToken(v)] {
		return 0
	}
	n := 0
	for _, part := range titleSplitRe.Split(v, -1) {
		tok := normalizeTitleToken(part)
		if tok == "" || placeholderTitles[tok] {
			continue
		}
		n++
	}
	return n
}

// round rounds half away from zero.
func round(v float64, places int) float64 {
	r, err := stats.Round(v, places)
	if err != nil {
		return 0
	}
	return r
}

// mean returns the rounded average of values, or 0 for none.
func mean(values []float64, places int) float64 {
	if len(values) == 0 {
		return 0
	}
	return round(stat.Mean(values, nil), places)
}

// share is part/total as a percentage, 0 when total is 0.
func share(part, total int, places int) float64 {
	if total <= 0 {
		return 0
	}
	return round(float64(part)/float64(total)*100, places)
}

// tally accumulates values per key and remembers first-seen key order.
type tally struct {
	keys   []string
	values map[string]int
}

func newTally() *tally {
	return &tally{values: map[string]int{}}
}

func (t *tally) add(key string, v int) {
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] += v
}

// sorted returns the keys by value descending; ties keep first-seen order.
func (t *tally) sorted() []string {
	keys := append([]string(nil), t.keys...)
	sort.SliceStable(keys, func(i, j int) bool {
		return t.values[keys[i]] > t.values[keys[j]]
	})
	return keys
}

func (t *tally) total() int {
	sum := 0
	for _, v := range t.values {
		sum += v
	}
	return sum
}

// percentages converts a tally into a share distribution sorted by value.
func (t *tally) percentages() []dashboard.ShareEntry {
	total := t.total()
	out := make([]dashboard.ShareEntry, 0, len(t.keys))
	for _, k := range t.sorted() {
		v := t.values[k]
		out = append(out, dashboard.ShareEntry{
			Name:       k,
			Percentage: int(share(v, total, 0)),
			Value:      v,
		})
	}
	return out
}

// fmtK abbreviates values of a thousand or more, 1532 -> "2K".
func fmtK(v int) string {
	if v >= 1000 {
		return strconv.Itoa(int(round(float64(v)/1000, 0))) + "K"
	}
	return strconv.Itoa(v)
}

// fmtThousands renders v/1000 with three decimals, 1234567 -> "1,234.567".
func fmtThousands(v int) string {
	if v >= 1000 {
		return humanize.FormatFloat("#,###.###", float64(v)/1000)
	}
	return strconv.Itoa(v)
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

package dashboard

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	hexColorRe  = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}){1,2}$`)
	tagRe       = regexp.MustCompile(`<[^>]*>`)
	filterKeyRe = regexp.MustCompile(`[^a-z0-9_\-]`)
)

// kpiFields are the KPI keys accepted from manual edits.
var kpiFields = map[string]bool{
	"total_institutions": true, "total_enrollment": true, "calc1_enrollment": true,
	"calc1_share": true, "calc2_enrollment": true, "calc2_share": true,
	"total_textbooks": true, "avg_textbook_price": true, "total_fte_enrollment": true,
	"avg_price_calc1": true, "avg_price_calc2": true, "commercial_share": true,
	"oer_share": true, "digital_share": true, "print_share": true,
}

// kpiIntFields hold whole numbers; the rest keep fractions.
var kpiIntFields = map[string]bool{
	"total_institutions": true, "total_enrollment": true, "calc1_enrollment": true,
	"calc2_enrollment": true, "total_textbooks": true, "total_fte_enrollment": true,
	"commercial_share": true, "oer_share": true, "digital_share": true, "print_share": true,
}

// Sanitize validates a manually edited section payload against the section
// schema and coerces every field to its declared type. Unknown fields are
// dropped. KPIs keep only the fields present so the rest fall back to
// stored or default values.
func Sanitize(sec Section, raw []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("payload is not valid JSON: %w", err)
	}

	switch sec {
	case SectionKPIs:
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("kpis must be an object")
		}
		out := map[string]interface{}{}
		for k, val := range m {
			if !kpiFields[k] {
				continue
			}
			if kpiIntFields[k] {
				out[k] = toInt(val)
			} else {
				out[k] = toFloat(val)
			}
		}
		return out, nil

	case SectionRegionalData:
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s must be an object", sec)
		}
		out := map[string][]ShareEntry{}
		for _, level := range []string{"calc1", "calc2"} {
			if items, ok := m[level].([]interface{}); ok {
				out[level] = shareEntries(items)
			}
		}
		return out, nil

	case SectionSectorData:
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s must be an object", sec)
		}
		out := map[string][]ShareEntry{}
		for _, level := range []string{"institutions", "calc1", "calc2"} {
			if items, ok := m[level].([]interface{}); ok {
				out[level] = shareEntries(items)
			}
		}
		return out, nil

	case SectionPublishers:
		items, err := asList(sec, v)
		if err != nil {
			return nil, err
		}
		out := make([]Publisher, 0, len(items))
		for _, it := range items {
			m := asObject(it)
			color := toString(m["color"])
			if !hexColorRe.MatchString(color) {
				color = "#000000"
			}
			out = append(out, Publisher{
				Name:        toText(m["name"]),
				MarketShare: toInt(m["market_share"]),
				Enrollment:  toInt(m["enrollment"]),
				AvgPrice:    toFloat(m["avg_price"]),
				Color:       color,
			})
		}
		return out, nil

	case SectionTopInstitutions:
		items, err := asList(sec, v)
		if err != nil {
			return nil, err
		}
		out := make([]TopInstitution, 0, len(items))
		for _, it := range items {
			m := asObject(it)
			out = append(out, TopInstitution{Name: toText(m["name"]), Enrollment: toInt(m["enrollment"])})
		}
		return out, nil

	case SectionTopTextbooks:
		items, err := asList(sec, v)
		if err != nil {
			return nil, err
		}
		out := make([]TopTextbook, 0, len(items))
		for _, it := range items {
			m := asObject(it)
			out = append(out, TopTextbook{
				Name:       toText(m["name"]),
				Publisher:  toText(m["publisher"]),
				Enrollment: toInt(m["enrollment"]),
			})
		}
		return out, nil

	case SectionPeriodData:
		items, err := asList(sec, v)
		if err != nil {
			return nil, err
		}
		out := make([]PeriodRow, 0, len(items))
		for _, it := range items {
			m := asObject(it)
			out = append(out, PeriodRow{Period: toText(m["period"]), Calc1: toInt(m["calc1"]), Calc2: toInt(m["calc2"])})
		}
		return out, nil

	case SectionInstitutionSizeData:
		items, err := asList(sec, v)
		if err != nil {
			return nil, err
		}
		out := make([]SizeRow, 0, len(items))
		for _, it := range items {
			m := asObject(it)
			out = append(out, SizeRow{Size: toText(m["size"]), Calc1: toInt(m["calc1"]), Calc2: toInt(m["calc2"])})
		}
		return out, nil

	case SectionRegionCoverage:
		items, err := asList(sec, v)
		if err != nil {
			return nil, err
		}
		out := make([]RegionCoverage, 0, len(items))
		for _, it := range items {
			m := asObject(it)
			states := []string{}
			if list, ok := m["states"].([]interface{}); ok {
				for _, s := range list {
					if code := strings.ToUpper(toText(s)); code != "" {
						states = append(states, code)
					}
				}
			}
			out = append(out, RegionCoverage{
				Name:       toText(m["name"]),
				Label:      toText(m["label"]),
				States:     states,
				Enrollment: toInt(m["enrollment"]),
			})
		}
		return out, nil

	case SectionFilters:
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("filters must be an object")
		}
		out := map[string][]string{}
		for k, val := range m {
			list, ok := val.([]interface{})
			if !ok {
				continue
			}
			key := filterKeyRe.ReplaceAllString(strings.ToLower(k), "")
			if (&Filters{}).Field(key) == nil {
				continue
			}
			values := make([]string, 0, len(list))
			for _, item := range list {
				values = append(values, toText(item))
			}
			out[key] = values
		}
		return out, nil
	}

	return nil, fmt.Errorf("section %q cannot be edited", sec)
}

func asList(sec Section, v interface{}) ([]interface{}, error) {
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be a list", sec)
	}
	return items, nil
}

func asObject(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func shareEntries(items []interface{}) []ShareEntry {
	out := make([]ShareEntry, 0, len(items))
	for _, it := range items {
		m := asObject(it)
		out = append(out, ShareEntry{
			Name:       toText(m["name"]),
			Percentage: toInt(m["percentage"]),
			Value:      toInt(m["value"]),
		})
	}
	return out
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return ""
	}
	return ""
}

// toText strips markup and control characters from free text.
func toText(v interface{}) string {
	s := tagRe.ReplaceAllString(toString(v), "")
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

func toFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return f
	case bool:
		if t {
			return 1
		}
	}
	return 0
}

func toInt(v interface{}) int {
	return int(toFloat(v))
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"calcdash/adapters/excel"
	"calcdash/domain/dashboard"
	"calcdash/models"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// printValue writes v as JSON or YAML. The table format falls back to JSON
// for values without a tabular rendering.
func printValue(v interface{}) error {
	switch outputFormat {
	case "yaml":
		// round-trip through JSON so yaml keys follow the json tags
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := json.Unmarshal(b, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(generic)
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func printTable(table *excel.ParsedTable, limit int) error {
	if outputFormat != "table" {
		return printValue(table)
	}

	rows := table.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	w := tablewriter.NewWriter(os.Stdout)
	w.SetHeader(table.Headers)
	w.SetAutoWrapText(false)
	w.AppendBulk(rows)
	w.Render()
	fmt.Printf("%d columns, %d rows\n", len(table.Headers), table.RowCount())
	return nil
}

func printPreview(mode string, preview map[dashboard.Section]string) error {
	fmt.Printf("Preview (%s)\n", mode)
	w := tablewriter.NewWriter(os.Stdout)
	w.SetHeader([]string{"Section", "Summary"})
	w.SetAutoWrapText(false)
	for _, sec := range dashboard.AllSections {
		if line, ok := preview[sec]; ok {
			w.Append([]string{string(sec), line})
		}
	}
	w.Render()
	return nil
}

func printHistory(records []models.ApplyRecord) error {
	if outputFormat != "table" {
		return printValue(records)
	}
	w := tablewriter.NewWriter(os.Stdout)
	w.SetHeader([]string{"Applied At", "Mode", "Institution Rows", "Course Rows", "Sections"})
	for _, r := range records {
		w.Append([]string{
			r.AppliedAt.Format("2006-01-02 15:04:05"),
			r.Mode,
			strconv.Itoa(r.InstitutionRows),
			strconv.Itoa(r.CourseRows),
			strings.Join(r.SectionList(), ", "),
		})
	}
	w.Render()
	return nil
}

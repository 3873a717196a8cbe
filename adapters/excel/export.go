package excel

import (
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"calcdash/domain/dashboard"
)

// Export sheet names, in workbook order.
const (
	SheetKPIs             = "KPIs"
	SheetRegional         = "Regional"
	SheetRegionCoverage   = "Region Coverage"
	SheetSectors          = "Sectors"
	SheetPublishers       = "Publishers"
	SheetTopInstitutions  = "Top Institutions"
	SheetTopTextbooks     = "Top Textbooks"
	SheetPeriods          = "Periods"
	SheetInstitutionSizes = "Institution Sizes"
	SheetFilters          = "Filters"
	SheetStates           = "States"
)

type exportSheet struct {
	name   string
	header []interface{}
	rows   [][]interface{}
}

// ExportWorkbook writes every dashboard section to w as an XLSX workbook with
// one sheet per section.
func ExportWorkbook(w io.Writer, data dashboard.Data) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	for i, sheet := range exportSheets(data) {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetList()[0], sheet.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return err
		}

		if err := f.SetSheetRow(sheet.name, "A1", &sheet.header); err != nil {
			return err
		}
		if err := f.SetRowStyle(sheet.name, 1, 1, bold); err != nil {
			return err
		}
		for r, row := range sheet.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			row := row
			if err := f.SetSheetRow(sheet.name, cell, &row); err != nil {
				return err
			}
		}
		last, err := excelize.ColumnNumberToName(len(sheet.header))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet.name, "A", last, 18); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func exportSheets(d dashboard.Data) []exportSheet {
	k := d.KPIs
	sheets := []exportSheet{{
		name:   SheetKPIs,
		header: []interface{}{"Metric", "Value"},
		rows: [][]interface{}{
			{"total_institutions", k.TotalInstitutions},
			{"total_enrollment", k.TotalEnrollment},
			{"calc1_enrollment", k.Calc1Enrollment},
			{"calc1_share", k.Calc1Share},
			{"calc2_enrollment", k.Calc2Enrollment},
			{"calc2_share", k.Calc2Share},
			{"total_textbooks", k.TotalTextbooks},
			{"avg_textbook_price", k.AvgTextbookPrice},
			{"total_fte_enrollment", k.TotalFTEEnrollment},
			{"avg_price_calc1", k.AvgPriceCalc1},
			{"avg_price_calc2", k.AvgPriceCalc2},
			{"commercial_share", k.CommercialShare},
			{"oer_share", k.OERShare},
			{"digital_share", k.DigitalShare},
			{"print_share", k.PrintShare},
		},
	}}

	regional := exportSheet{name: SheetRegional, header: []interface{}{"Level", "Region", "Percentage", "Enrollment"}}
	regional.rows = appendShares(regional.rows, "Calc I", d.RegionalData.Calc1)
	regional.rows = appendShares(regional.rows, "Calc II", d.RegionalData.Calc2)
	sheets = append(sheets, regional)

	coverage := exportSheet{name: SheetRegionCoverage, header: []interface{}{"Region", "Label", "States", "Enrollment"}}
	for _, c := range d.RegionCoverage {
		coverage.rows = append(coverage.rows, []interface{}{c.Name, c.Label, strings.Join(c.States, ", "), c.Enrollment})
	}
	sheets = append(sheets, coverage)

	sectors := exportSheet{name: SheetSectors, header: []interface{}{"Measure", "Sector", "Percentage", "Value"}}
	sectors.rows = appendShares(sectors.rows, "Institutions", d.SectorData.Institutions)
	sectors.rows = appendShares(sectors.rows, "Calc I", d.SectorData.Calc1)
	sectors.rows = appendShares(sectors.rows, "Calc II", d.SectorData.Calc2)
	sheets = append(sheets, sectors)

	pubs := exportSheet{name: SheetPublishers, header: []interface{}{"Publisher", "Market Share", "Enrollment", "Avg Price", "Color"}}
	for _, p := range d.Publishers {
		pubs.rows = append(pubs.rows, []interface{}{p.Name, p.MarketShare, p.Enrollment, p.AvgPrice, p.Color})
	}
	sheets = append(sheets, pubs)

	inst := exportSheet{name: SheetTopInstitutions, header: []interface{}{"Institution", "Enrollment"}}
	for _, t := range d.TopInstitutions {
		inst.rows = append(inst.rows, []interface{}{t.Name, t.Enrollment})
	}
	sheets = append(sheets, inst)

	books := exportSheet{name: SheetTopTextbooks, header: []interface{}{"Textbook", "Publisher", "Enrollment"}}
	for _, t := range d.TopTextbooks {
		books.rows = append(books.rows, []interface{}{t.Name, t.Publisher, t.Enrollment})
	}
	sheets = append(sheets, books)

	periods := exportSheet{name: SheetPeriods, header: []interface{}{"Period", "Calc I", "Calc II"}}
	for _, p := range d.PeriodData {
		periods.rows = append(periods.rows, []interface{}{p.Period, p.Calc1, p.Calc2})
	}
	sheets = append(sheets, periods)

	sizes := exportSheet{name: SheetInstitutionSizes, header: []interface{}{"Size", "Calc I", "Calc II"}}
	for _, s := range d.InstitutionSizeData {
		sizes.rows = append(sizes.rows, []interface{}{s.Size, s.Calc1, s.Calc2})
	}
	sheets = append(sheets, sizes)

	filters := exportSheet{name: SheetFilters, header: []interface{}{"Filter", "Value"}}
	for _, key := range dashboard.FilterKeys {
		for _, v := range *d.Filters.Field(key) {
			filters.rows = append(filters.rows, []interface{}{key, v})
		}
	}
	sheets = append(sheets, filters)

	states := exportSheet{name: SheetStates, header: []interface{}{
		"State", "Code", "Total", "Calc I", "Calc II", "FTE", "Institutions", "Courses",
		"Publisher 1", "Publisher 1 Enrollment", "Publisher 2", "Publisher 2 Enrollment", "Publisher 3", "Publisher 3 Enrollment",
	}}
	for _, s := range d.StateData {
		states.rows = append(states.rows, []interface{}{
			s.State, s.Code, s.Total, s.CalcI, s.CalcII, s.FTE, s.Institutions, s.Courses,
			s.Pub1, s.Pub1Enr, s.Pub2, s.Pub2Enr, s.Pub3, s.Pub3Enr,
		})
	}
	return append(sheets, states)
}

func appendShares(rows [][]interface{}, label string, entries []dashboard.ShareEntry) [][]interface{} {
	for _, e := range entries {
		rows = append(rows, []interface{}{label, e.Name, e.Percentage, e.Value})
	}
	return rows
}

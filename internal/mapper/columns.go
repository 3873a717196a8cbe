package mapper

import (
	"calcdash/adapters/excel"
	"calcdash/domain/dashboard"
)

// Column names read from the roster exports.
const (
	ColState            = "State"
	ColRegion           = "Region"
	ColSector           = "Sector"
	ColSchool           = "School"
	ColIPEDID           = "IPED ID"
	ColFTE              = "FTE Enrollment"
	ColCalcLevel        = "Calc Level"
	ColCalcI            = "Calc I Enrollment"
	ColCalcII           = "Calc II Enrollment"
	ColPublisher        = "Publisher"
	ColPublisherNorm    = "Publisher_Norm"
	ColPublisherNormed  = "Publisher_Normalized"
	ColAvgPrice         = "Avg_Price"
	ColMSIType          = "MSI Type"
	ColMSITypeUpper     = "MSI TYPE"
	ColPeriod           = "Period"
	ColEnrollments      = "Enrollments"
	ColBookTitle        = "Book Title"
	ColBookTitleNormed  = "Book Title Normalized"
	ColTextbookPrice    = "Textbook_Price"
	defaultMSIType      = "Not MSI"
	blankInstitutionTag = "(blank)"
)

// InstitutionColumns are required in an institutions upload.
var InstitutionColumns = []excel.ColumnRequirement{
	excel.Col(ColState),
	excel.Col(ColRegion),
	excel.Col(ColSector),
	excel.Col(ColSchool),
	excel.Col(ColFTE),
	excel.Col(ColCalcLevel),
	excel.Col(ColCalcI),
	excel.Col(ColCalcII),
	excel.AnyOf(ColPublisherNorm, ColPublisher),
	excel.Col(ColAvgPrice),
}

// CourseColumns are required in a courses upload.
var CourseColumns = []excel.ColumnRequirement{
	excel.Col(ColState),
	excel.Col(ColSchool),
	excel.Col(ColPeriod),
	excel.Col(ColEnrollments),
	excel.Col(ColBookTitleNormed),
	excel.Col(ColCalcLevel),
	excel.Col(ColRegion),
	excel.Col(ColSector),
	excel.Col(ColPublisherNormed),
	excel.Col(ColTextbookPrice),
}

// NewInstitutionRecord reads one institutions row. Missing cells default to
// empty strings and zero counts.
func NewInstitutionRecord(row excel.RawRowData) dashboard.InstitutionRecord {
	return dashboard.InstitutionRecord{
		State:     row.Get(ColState),
		Region:    row.Get(ColRegion),
		Sector:    row.Get(ColSector),
		School:    row.Get(ColSchool),
		IPEDID:    row.Get(ColIPEDID),
		FTE:       parseCount(row.Get(ColFTE)),
		CalcLevel: row.Get(ColCalcLevel),
		CalcI:     parseCount(row.Get(ColCalcI)),
		CalcII:    parseCount(row.Get(ColCalcII)),
		Publisher: row.First(ColPublisher, ColPublisherNorm, ColPublisherNormed),
		MSIType:   row.First(ColMSIType, ColMSITypeUpper),
		AvgPrice:  row.Get(ColAvgPrice),
	}
}

// NewCourseRecord reads one courses row.
func NewCourseRecord(row excel.RawRowData) dashboard.CourseRecord {
	return dashboard.CourseRecord{
		State:       row.Get(ColState),
		School:      row.Get(ColSchool),
		Period:      row.Get(ColPeriod),
		Enrollments: parseCount(row.Get(ColEnrollments)),
		BookTitle:   row.First(ColBookTitleNormed, ColBookTitle),
		TitleCell:   row.First(ColBookTitle, ColBookTitleNormed),
		CalcLevel:   row.Get(ColCalcLevel),
		Region:      row.Get(ColRegion),
		Sector:      row.Get(ColSector),
		Publisher:   row.Get(ColPublisherNormed),
		Price:       row.Get(ColTextbookPrice),
	}
}

func institutionRecords(rows []excel.RawRowData) []dashboard.InstitutionRecord {
	out := make([]dashboard.InstitutionRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, NewInstitutionRecord(r))
	}
	return out
}

func courseRecords(rows []excel.RawRowData) []dashboard.CourseRecord {
	out := make([]dashboard.CourseRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, NewCourseRecord(r))
	}
	return out
}

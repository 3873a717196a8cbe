package mapper

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calcdash/adapters/excel"
	"calcdash/domain/dashboard"
)

func instRow(state, school string, calc1, calc2, fte int) excel.RawRowData {
	return excel.RawRowData{
		"State":              state,
		"School":             school,
		"Calc I Enrollment":  itoa(calc1),
		"Calc II Enrollment": itoa(calc2),
		"FTE Enrollment":     itoa(fte),
	}
}

func courseRow(level, region, publisher, price string, enrollments int) excel.RawRowData {
	return excel.RawRowData{
		"State":                "TX",
		"School":               "Lone Star College",
		"Period":               "Fall 2025",
		"Enrollments":          itoa(enrollments),
		"Calc Level":           level,
		"Region":               region,
		"Publisher_Normalized": publisher,
		"Textbook_Price":       price,
	}
}

func itoa(v int) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestComputeAllSingleInstitution(t *testing.T) {
	data := ComputeAll([]excel.RawRowData{instRow("CA", "X", 100, 50, 2000)}, nil)

	k := data.KPIs
	assert.Equal(t, 1, k.TotalInstitutions)
	assert.Equal(t, 150, k.TotalEnrollment)
	assert.Equal(t, 100, k.Calc1Enrollment)
	assert.Equal(t, 50, k.Calc2Enrollment)
	assert.Equal(t, 66.7, k.Calc1Share)
	assert.Equal(t, 33.3, k.Calc2Share)
	assert.Equal(t, 2000, k.TotalFTEEnrollment)
	assert.Equal(t, 85, k.DigitalShare)
	assert.Equal(t, 15, k.PrintShare)

	require.Len(t, data.InstitutionSizeData, 4)
	for _, row := range data.InstitutionSizeData {
		if row.Size == dashboard.SizeSmall {
			assert.Equal(t, 100, row.Calc1)
			assert.Equal(t, 50, row.Calc2)
		} else {
			assert.Zero(t, row.Calc1+row.Calc2, row.Size)
		}
	}

	require.Len(t, data.StateData, 1)
	ca := data.StateData[0]
	assert.Equal(t, "California", ca.State)
	assert.Equal(t, "CA", ca.Code)
	assert.Equal(t, 150, ca.Total)
	assert.Equal(t, "150", ca.TotalFmt)
	assert.Equal(t, "150", ca.TotalFull)
	assert.InDelta(t, ca.Lon-0.65, ca.LonLeft, 1e-9)
	assert.InDelta(t, ca.Lon+0.65, ca.LonRight, 1e-9)
	assert.Equal(t, 1, ca.Institutions)
	assert.NotNil(t, ca.PeriodBreakdown)
	assert.Equal(t, dashboard.Breakdown{CalcI: 100, CalcII: 50, Total: 150, FTE: 2000, Institutions: 1}, ca.SizeBreakdown[dashboard.SizeSmall])
	assert.Equal(t, dashboard.Breakdown{CalcI: 100, CalcII: 50, Total: 150, FTE: 2000, Institutions: 1}, ca.MSIBreakdown["Not MSI"])

	// nothing from courses
	assert.Empty(t, data.Publishers)
	assert.Empty(t, data.TopTextbooks)
	assert.Empty(t, data.PeriodData)
	assert.Empty(t, data.RegionalData.Calc1)
	assert.Equal(t, []string{"California"}, data.Filters.States)
	assert.Equal(t, []string{"Not MSI"}, data.Filters.MSITypes)
}

func TestComputeAllEmptyInputs(t *testing.T) {
	data := ComputeAll(nil, nil)
	assert.Zero(t, data.KPIs.TotalInstitutions)
	assert.Zero(t, data.KPIs.Calc1Share)
	assert.Zero(t, data.KPIs.AvgTextbookPrice)
	assert.NotNil(t, data.StateData)
	assert.NotNil(t, data.Publishers)
	assert.Len(t, data.InstitutionSizeData, 4)
	assert.Equal(t, dashboard.CourseOptions(), data.Filters.Courses)
}

func TestDedupByIPEDID(t *testing.T) {
	a := instRow("TX", "Univ X", 10, 5, 100)
	a["IPED ID"] = "123"
	b := instRow("TX", "University X", 20, 5, 100)
	b["IPED ID"] = "123"

	data := ComputeAll([]excel.RawRowData{a, b}, nil)
	assert.Equal(t, 1, data.KPIs.TotalInstitutions)
	assert.Equal(t, 30, data.KPIs.Calc1Enrollment)
	assert.Equal(t, 10, data.KPIs.Calc2Enrollment)
	assert.Equal(t, []dashboard.TopInstitution{{Name: "Univ X", Enrollment: 40}}, data.TopInstitutions)

	require.Len(t, data.StateData, 1)
	assert.Equal(t, 1, data.StateData[0].Institutions)
	assert.Len(t, data.StateData[0].InstitutionBreakdown, 2)
}

func TestShareInvariant(t *testing.T) {
	rows := []excel.RawRowData{
		instRow("OH", "A", 333, 667, 10),
		instRow("OH", "B", 1, 0, 10),
		instRow("NY", "C", 12, 7, 10),
	}
	k := ComputeAll(rows, nil).KPIs
	assert.InDelta(t, 100, k.Calc1Share+k.Calc2Share, 0.1)
}

func TestRegionalPercentages(t *testing.T) {
	courses := []excel.RawRowData{
		courseRow("Calc I", "Southeast (AL, AR)", "Pearson", "$100", 60),
		courseRow("Calc I", "Far West (CA)", "Pearson", "$100", 30),
		courseRow("CALC_I", "Plains", "Pearson", "$100", 10),
		courseRow("Calc II", "Plains", "Pearson", "$100", 5),
		courseRow("Stats", "Plains", "Pearson", "$100", 99),
		courseRow("Calc I", "", "Pearson", "$100", 7),
	}
	data := ComputeAll(nil, courses)

	calc1 := data.RegionalData.Calc1
	require.Len(t, calc1, 3)
	assert.Equal(t, dashboard.ShareEntry{Name: "Southeast", Percentage: 60, Value: 60}, calc1[0])
	assert.Equal(t, "Far West", calc1[1].Name)

	sumValue, sumPct := 0, 0
	for _, e := range calc1 {
		sumValue += e.Value
		sumPct += e.Percentage
	}
	assert.Equal(t, 100, sumValue)
	assert.GreaterOrEqual(t, sumPct, 99)
	assert.LessOrEqual(t, sumPct, 101)

	assert.Equal(t, []dashboard.ShareEntry{{Name: "Plains", Percentage: 100, Value: 5}}, data.RegionalData.Calc2)
}

func TestParsePriceNullable(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		valid bool
	}{
		{"Unavailable", 0, false},
		{"Free", 0, true},
		{"OER", 0, true},
		{"$125.50", 125.50, true},
		{" $1,299 ", 1299, true},
		{"0", 0, true},
		{"", 0, false},
		{"N/A", 0, false},
		{"*No Book Details*", 0, false},
		{"about 40", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePriceNullable(tt.in)
		assert.Equal(t, tt.valid, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestClassifyLevel(t *testing.T) {
	assert.Equal(t, LevelCalcI, ClassifyLevel("Calc I"))
	assert.Equal(t, LevelCalcII, ClassifyLevel("calc ii"))
	assert.Equal(t, LevelCalcII, ClassifyLevel("CALC_II"))
	assert.Equal(t, LevelCalcI, ClassifyLevel("Calc III"))
	assert.Equal(t, LevelUnclassified, ClassifyLevel("Stats"))
	assert.Equal(t, LevelUnclassified, ClassifyLevel(""))
}

func TestKPIPricesAndOER(t *testing.T) {
	courses := []excel.RawRowData{
		courseRow("Calc I", "Plains", "Pearson", "$100", 50),
		courseRow("Calc I", "Plains", "Cengage", "$200", 10),
		courseRow("Calc II", "Plains", "Wiley", "150", 20),
		courseRow("Calc II", "Plains", "OpenStax", "Unavailable", 15),
		courseRow("Calc I", "Plains", "Knewton", "Free", 5),
	}
	k := ComputeAll(nil, courses).KPIs

	assert.Equal(t, 150.0, k.AvgPriceCalc1)
	assert.Equal(t, 150.0, k.AvgPriceCalc2)
	// 100, 200, 150, 0
	assert.Equal(t, 112.5, k.AvgTextbookPrice)
	assert.Equal(t, 80, k.CommercialShare)
	assert.Equal(t, 20, k.OERShare)
}

func TestCountTextbooks(t *testing.T) {
	tests := map[string]int{
		"":                          0,
		"Unavailable":               0,
		"*No Book Details*":         0,
		"Stewart Calculus":          1,
		"Stewart; Thomas | Larson":  3,
		"Stewart\nN/A\r\nThomas":    2,
		"  none  ":                  0,
		"Calculus;;":                1,
		"Calculus Vol 1 | ** na **": 1,
	}
	for in, want := range tests {
		assert.Equal(t, want, countTextbooks(in), "%q", in)
	}

	c := courseRow("Calc I", "Plains", "Pearson", "$1", 1)
	c["Book Title"] = "A; B"
	c["Book Title Normalized"] = "A"
	assert.Equal(t, 2, ComputeAll(nil, []excel.RawRowData{c}).KPIs.TotalTextbooks)
}

func TestPublishersTopFivePlusOther(t *testing.T) {
	var courses []excel.RawRowData
	for i, pub := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		courses = append(courses, courseRow("Calc I", "Plains", pub, itoa(10*(i+1)), 100-i*10))
	}
	courses = append(courses, courseRow("Calc I", "Plains", "", "$5", 1000))

	pubs := ComputeAll(nil, courses).Publishers
	require.Len(t, pubs, 6)
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "Other"}, []string{pubs[0].Name, pubs[1].Name, pubs[2].Name, pubs[3].Name, pubs[4].Name, pubs[5].Name})
	assert.Equal(t, "#008384", pubs[0].Color)
	assert.Equal(t, "#D3DEF6", pubs[4].Color)

	other := pubs[5]
	assert.Equal(t, 90, other.Enrollment)
	assert.Equal(t, 65.0, other.AvgPrice)
	assert.Equal(t, "#92A4CF", other.Color)
	assert.Equal(t, 18, other.MarketShare)
}

func TestPublishersNoOtherWhenFive(t *testing.T) {
	var courses []excel.RawRowData
	for _, pub := range []string{"A", "B", "C"} {
		courses = append(courses, courseRow("Calc I", "Plains", pub, "$10", 10))
	}
	pubs := ComputeAll(nil, courses).Publishers
	assert.Len(t, pubs, 3)
	for _, p := range pubs {
		assert.NotEqual(t, "Other", p.Name)
	}
}

func TestTopInstitutionsStableTies(t *testing.T) {
	var rows []excel.RawRowData
	for _, name := range []string{"Zeta", "Alpha", "Mid", "Beta"} {
		rows = append(rows, instRow("OH", name, 10, 0, 10))
	}
	rows = append(rows, instRow("OH", "Big", 50, 0, 10))

	top := ComputeAll(rows, nil).TopInstitutions
	names := make([]string, 0, len(top))
	for _, ti := range top {
		names = append(names, ti.Name)
	}
	assert.Equal(t, []string{"Big", "Zeta", "Alpha", "Mid", "Beta"}, names)
}

func TestTopTextbooksLastPublisherWins(t *testing.T) {
	a := courseRow("Calc I", "Plains", "Pearson", "$1", 10)
	a["Book Title Normalized"] = "Thomas Calculus"
	b := courseRow("Calc II", "Plains", "", "$1", 5)
	b["Book Title Normalized"] = "Thomas Calculus"
	c := courseRow("Calc II", "Plains", "Pearson Ed", "$1", 1)
	c["Book Title Normalized"] = "Thomas Calculus"

	top := ComputeAll(nil, []excel.RawRowData{a, b, c}).TopTextbooks
	assert.Equal(t, []dashboard.TopTextbook{{Name: "Thomas Calculus", Publisher: "Pearson Ed", Enrollment: 16}}, top)
}

func TestRegionCoverage(t *testing.T) {
	a := instRow("AL", "A", 10, 5, 10)
	a["Region"] = "Southeast (AL, AR, al, XYZ)"
	b := instRow("CA", "B", 100, 0, 10)
	b["Region"] = "Far West (CA, OR)"
	c := instRow("AL", "C", 1, 0, 10)
	c["Region"] = "Southeast (AL, AR, al, XYZ)"

	cov := ComputeAll([]excel.RawRowData{a, b, c}, nil).RegionCoverage
	require.Len(t, cov, 2)
	assert.Equal(t, dashboard.RegionCoverage{Name: "Far West", Label: "Far West (CA, OR)", States: []string{"CA", "OR"}, Enrollment: 100}, cov[0])
	assert.Equal(t, []string{"AL", "AR"}, cov[1].States)
	assert.Equal(t, 16, cov[1].Enrollment)
	assert.Equal(t, "Southeast", cov[1].Name)
}

func TestSectors(t *testing.T) {
	a := instRow("AL", "A", 10, 5, 10)
	a["Sector"] = "4, Public (State)"
	b := instRow("AL", "B", 30, 0, 10)
	b["Sector"] = "4, Public"
	c := instRow("AL", "C", 0, 20, 10)
	c["Sector"] = "2, Public"

	s := ComputeAll([]excel.RawRowData{a, b, c}, nil).SectorData
	assert.Equal(t, []dashboard.ShareEntry{{Name: "4, Public", Percentage: 67, Value: 2}, {Name: "2, Public", Percentage: 33, Value: 1}}, s.Institutions)
	assert.Equal(t, []dashboard.ShareEntry{{Name: "4, Public", Percentage: 100, Value: 40}, {Name: "2, Public", Percentage: 0, Value: 0}}, s.Calc1)
	assert.Equal(t, []dashboard.ShareEntry{{Name: "2, Public", Percentage: 80, Value: 20}, {Name: "4, Public", Percentage: 20, Value: 5}}, s.Calc2)
}

func TestPeriodsSortedByTotal(t *testing.T) {
	a := courseRow("Calc I", "Plains", "P", "$1", 5)
	a["Period"] = "Spring 2025"
	b := courseRow("Calc II", "Plains", "P", "$1", 50)
	b["Period"] = "Fall 2025"
	c := courseRow("Calc I", "Plains", "P", "$1", 5)
	c["Period"] = "Summer 2025"

	assert.Equal(t, []dashboard.PeriodRow{
		{Period: "Fall 2025", Calc1: 0, Calc2: 50},
		{Period: "Spring 2025", Calc1: 5, Calc2: 0},
		{Period: "Summer 2025", Calc1: 5, Calc2: 0},
	}, ComputeAll(nil, []excel.RawRowData{a, b, c}).PeriodData)
}

func TestFilters(t *testing.T) {
	inst := instRow("tx", "A", 1, 1, 1)
	inst["Region"] = "Southwest (AZ, NM, OK, TX)"
	inst["Sector"] = "4, Public"
	inst["MSI Type"] = "HSI"
	inst["Publisher_Norm"] = "Cengage"
	other := instRow("Puerto Rico", "B", 1, 1, 1)

	course := courseRow("Calc I", "Plains (IA)", "Pearson", "$1", 1)
	blank := courseRow("Calc I", "Plains", "Pearson", "$1", 1)
	blank["School"] = "(Blank)"

	f := ComputeAll([]excel.RawRowData{inst, other}, []excel.RawRowData{course, blank}).Filters
	assert.Equal(t, []string{"Puerto Rico", "Texas"}, f.States)
	assert.Equal(t, []string{"Plains", "Southwest"}, f.Regions)
	assert.Equal(t, []string{"HSI", "Not MSI"}, f.MSITypes)
	assert.Equal(t, []string{"Cengage", "Pearson"}, f.Publishers)
	assert.Equal(t, []string{"Fall 2025"}, f.Periods)
	assert.Equal(t, []string{"Lone Star College"}, f.Institutions)
	assert.Equal(t, dashboard.PriceRangeOptions(), f.PriceRanges)
}

func TestStateDataBreakdowns(t *testing.T) {
	a := instRow("TX", "UT Dallas", 1200, 300, 25000)
	a["Region"] = "Southwest (TX)"
	a["Sector"] = "4, Public"
	a["Publisher"] = "Pearson"
	b := instRow("Texas", "Lone Star College", 400, 100, 3000)
	b["Publisher"] = "Cengage"
	b["MSI Type"] = "HSI"
	unknown := instRow("Atlantis", "Nowhere", 5000, 0, 10)

	c1 := courseRow("Calc I", "Southwest", "Pearson", "$1", 40)
	c2 := courseRow("Calc II", "Southwest", "Pearson", "$1", 10)
	c2["Period"] = "Spring 2025"
	c3 := courseRow("Stats", "Southwest", "Pearson", "$1", 7)

	states := ComputeAll([]excel.RawRowData{a, b, unknown}, []excel.RawRowData{c1, c2, c3}).StateData
	require.Len(t, states, 1)
	tx := states[0]

	assert.Equal(t, "Texas", tx.State)
	assert.Equal(t, 2000, tx.Total)
	assert.Equal(t, "2K", tx.TotalFmt)
	assert.Equal(t, "2.000", tx.TotalFull)
	assert.Equal(t, "2K", tx.CalcIFmt)
	assert.Equal(t, "400", tx.CalcIIFmt)
	assert.Equal(t, 28000, tx.FTE)
	assert.Equal(t, 2, tx.Institutions)
	assert.Equal(t, 3, tx.Courses)
	assert.Equal(t, "Pearson", tx.Pub1)
	assert.Equal(t, 1500, tx.Pub1Enr)
	assert.Equal(t, "Cengage", tx.Pub2)
	assert.Equal(t, "", tx.Pub3)

	assert.Equal(t, dashboard.PeriodBreakdown{Total: 47, CalcI: 40, CalcII: 0, Courses: 2}, tx.PeriodBreakdown["Fall 2025"])
	assert.Equal(t, dashboard.PeriodBreakdown{Total: 10, CalcII: 10, Courses: 1}, tx.PeriodBreakdown["Spring 2025"])
	assert.Equal(t, dashboard.InstitutionBreakdown{CalcI: 1200, CalcII: 300, Total: 1500, FTE: 25000}, tx.InstitutionBreakdown["UT Dallas"])
	assert.Equal(t, 1, tx.SizeBreakdown[dashboard.SizeLarge].Institutions)
	assert.Equal(t, 500, tx.SizeBreakdown[dashboard.SizeSmall].Total)
	assert.Equal(t, 1500, tx.RegionBreakdown["Southwest"].Total)
	assert.Len(t, tx.RegionBreakdown, 1)
	assert.Equal(t, 500, tx.MSIBreakdown["HSI"].Total)
	assert.Equal(t, 1500, tx.MSIBreakdown["Not MSI"].Total)
	assert.Len(t, tx.SectorBreakdown, 1)
	assert.Len(t, tx.PublisherBreakdown, 2)
}

func TestComputeAllIdempotent(t *testing.T) {
	inst := []excel.RawRowData{
		instRow("TX", "A", 10, 5, 30000),
		instRow("CA", "B", 7, 9, 800),
		instRow("NY", "C", 7, 9, 8000),
	}
	courses := []excel.RawRowData{
		courseRow("Calc I", "Plains", "Pearson", "$10", 5),
		courseRow("Calc II", "Far West (CA)", "Wiley", "Free", 6),
	}

	first := ComputeAll(inst, courses)
	second := ComputeAll(inst, courses)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("ComputeAll is not deterministic (-first +second):\n%s", diff)
	}

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestNormalizeState(t *testing.T) {
	assert.Equal(t, "California", normalizeState("ca"))
	assert.Equal(t, "District of Columbia", normalizeState("DC"))
	assert.Equal(t, "New York", normalizeState("new york"))
	assert.Equal(t, "ZZ", normalizeState(" ZZ "))
	assert.Equal(t, "", normalizeState("  "))
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "999", fmtK(999))
	assert.Equal(t, "2K", fmtK(1500))
	assert.Equal(t, "1K", fmtK(1499))
	assert.Equal(t, "1,234.567", fmtThousands(1234567))
	assert.Equal(t, "12", fmtThousands(12))
	assert.Equal(t, 1234, parseCount("1,234.9"))
	assert.Equal(t, 12, parseCount("12 students"))
	assert.Equal(t, 0, parseCount("n/a"))
}

func TestPreview(t *testing.T) {
	data := dashboard.Defaults()
	p := Preview(data)

	assert.Equal(t, "933 institutions, 1,817,722 total enrollment, Calc I: 1,202,783 (66.2%), Calc II: 614,939 (33.8%)", p[dashboard.SectionKPIs])
	assert.Equal(t, "9 regions", p[dashboard.SectionRegionalData])
	assert.Equal(t, "Cengage, Pearson, Other, Wiley, OpenStax +1 more", p[dashboard.SectionPublishers])
	assert.Equal(t, "10 institutions (top: Univ of Michigan)", p[dashboard.SectionTopInstitutions])
	assert.Equal(t, "Fall 2025, Spring 2025, Winter 2025, Summer 2025", p[dashboard.SectionPeriodData])
	assert.Equal(t, "4 size categories", p[dashboard.SectionInstitutionSizeData])
	assert.NotContains(t, p, dashboard.SectionStateData)
}

func TestStateScript(t *testing.T) {
	out, err := StateScript(nil)
	require.NoError(t, err)
	assert.Equal(t, "const stateData = [];\n", out)

	out, err = StateScript([]dashboard.StateEntry{{State: "Texas", Code: "TX", PublisherBreakdown: map[string]dashboard.Breakdown{"A&B <x>": {}}}})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "const stateData = [\n    {\n        \"state\": \"Texas\""))
	assert.Contains(t, out, `"A&B <x>"`)
	assert.True(t, strings.HasSuffix(out, "];\n"))
}

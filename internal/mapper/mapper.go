// Package mapper aggregates institution and course roster rows into the
// dashboard sections.
package mapper

import (
	"sort"
	"strings"

	"calcdash/adapters/excel"
	"calcdash/domain/dashboard"
)

const (
	topN            = 10
	namedPublishers = 5
	otherPublisher  = "Other"
	otherColor      = "#92A4CF"
	digitalShare    = 85
	printShare      = 15
)

var publisherColors = []string{"#008384", "#234A5D", "#4A81A8", "#7FBFC0", "#D3DEF6"}

// ComputeAll derives every dashboard section from the two rosters. Either
// may be nil, in which case the sections built from it come out empty.
// The result depends only on the input rows.
func ComputeAll(institutions, courses []excel.RawRowData) dashboard.Data {
	return compute(institutionRecords(institutions), courseRecords(courses))
}

func compute(inst []dashboard.InstitutionRecord, courses []dashboard.CourseRecord) dashboard.Data {
	return dashboard.Data{
		KPIs:                computeKPIs(inst, courses),
		RegionalData:        computeRegional(courses),
		RegionCoverage:      computeRegionCoverage(inst),
		SectorData:          computeSectors(inst),
		Publishers:          computePublishers(courses),
		TopInstitutions:     computeTopInstitutions(inst),
		TopTextbooks:        computeTopTextbooks(courses),
		PeriodData:          computePeriods(courses),
		InstitutionSizeData: computeInstitutionSizes(inst),
		Filters:             computeFilters(inst, courses),
		StateData:           computeStateData(inst, courses),
	}
}

func computeKPIs(inst []dashboard.InstitutionRecord, courses []dashboard.CourseRecord) dashboard.KPIs {
	var calc1, calc2, fte int
	unique := map[string]bool{}
	for _, r := range inst {
		calc1 += r.CalcI
		calc2 += r.CalcII
		fte += r.FTE
		if key := r.Key(); key != "" {
			unique[key] = true
		}
	}

	var (
		textbooks, courseTotal, oer, commercial int
		allPrices, prices1, prices2             []float64
	)
	for _, c := range courses {
		courseTotal += c.Enrollments
		textbooks += countTextbooks(c.TitleCell)

		price, valid := ParsePriceNullable(c.Price)
		if valid {
			allPrices = append(allPrices, price)
		}
		if valid && price > 0 {
			switch ClassifyLevel(c.CalcLevel) {
			case LevelCalcI:
				prices1 = append(prices1, price)
			case LevelCalcII:
				prices2 = append(prices2, price)
			}
		}

		if isOER(c.Publisher, price, valid) {
			oer += c.Enrollments
		} else {
			commercial += c.Enrollments
		}
	}

	total := calc1 + calc2
	return dashboard.KPIs{
		TotalInstitutions:  len(unique),
		TotalEnrollment:    total,
		Calc1Enrollment:    calc1,
		Calc1Share:         share(calc1, total, 1),
		Calc2Enrollment:    calc2,
		Calc2Share:         share(calc2, total, 1),
		TotalTextbooks:     textbooks,
		AvgTextbookPrice:   mean(allPrices, 2),
		TotalFTEEnrollment: fte,
		AvgPriceCalc1:      mean(prices1, 2),
		AvgPriceCalc2:      mean(prices2, 2),
		CommercialShare:    int(share(commercial, courseTotal, 0)),
		OERShare:           int(share(oer, courseTotal, 0)),
		DigitalShare:       digitalShare,
		PrintShare:         printShare,
	}
}

// isOER reports whether a course row uses an open textbook: OpenStax, or a
// price of exactly zero.
func isOER(publisher string, price float64, validPrice bool) bool {
	return strings.EqualFold(strings.TrimSpace(publisher), "openstax") || (validPrice && price == 0)
}

func computeRegional(courses []dashboard.CourseRecord) dashboard.ShareBreakdown {
	calc1, calc2 := newTally(), newTally()
	for _, c := range courses {
		region := cleanLabel(c.Region)
		if region == "" {
			continue
		}
		switch ClassifyLevel(c.CalcLevel) {
		case LevelCalcI:
			calc1.add(region, c.Enrollments)
		case LevelCalcII:
			calc2.add(region, c.Enrollments)
		}
	}
	return dashboard.ShareBreakdown{Calc1: calc1.percentages(), Calc2: calc2.percentages()}
}

func computeRegionCoverage(inst []dashboard.InstitutionRecord) []dashboard.RegionCoverage {
	labels := newTally()
	for _, r := range inst {
		label := strings.TrimSpace(r.Region)
		if label == "" {
			continue
		}
		labels.add(label, r.Enrollment())
	}

	out := make([]dashboard.RegionCoverage, 0, len(labels.keys))
	for _, label := range labels.sorted() {
		out = append(out, dashboard.RegionCoverage{
			Name:       cleanLabel(label),
			Label:      label,
			States:     regionStateCodes(label),
			Enrollment: labels.values[label],
		})
	}
	return out
}

func computeSectors(inst []dashboard.InstitutionRecord) dashboard.SectorData {
	calc1, calc2 := newTally(), newTally()
	members := map[string]map[string]bool{}
	var order []string
	for _, r := range inst {
		sector := cleanLabel(r.Sector)
		if sector == "" {
			continue
		}
		calc1.add(sector, r.CalcI)
		calc2.add(sector, r.CalcII)

		key := r.Key()
		if key == "" {
			continue
		}
		if members[sector] == nil {
			members[sector] = map[string]bool{}
			order = append(order, sector)
		}
		members[sector][key] = true
	}

	counts := newTally()
	for _, sector := range order {
		counts.add(sector, len(members[sector]))
	}
	return dashboard.SectorData{
		Institutions: counts.percentages(),
		Calc1:        calc1.percentages(),
		Calc2:        calc2.percentages(),
	}
}

func computePublishers(courses []dashboard.CourseRecord) []dashboard.Publisher {
	enrollment := newTally()
	prices := map[string][]float64{}
	for _, c := range courses {
		name := strings.TrimSpace(c.Publisher)
		if name == "" {
			continue
		}
		enrollment.add(name, c.Enrollments)
		if p, ok := positivePrice(c.Price); ok {
			prices[name] = append(prices[name], p)
		}
	}

	total := enrollment.total()
	out := []dashboard.Publisher{}
	var otherEnrollment int
	var otherPrices []float64
	for i, name := range enrollment.sorted() {
		if i >= namedPublishers {
			otherEnrollment += enrollment.values[name]
			otherPrices = append(otherPrices, prices[name]...)
			continue
		}
		out = append(out, dashboard.Publisher{
			Name:        name,
			MarketShare: int(share(enrollment.values[name], total, 0)),
			Enrollment:  enrollment.values[name],
			AvgPrice:    mean(prices[name], 2),
			Color:       publisherColors[i],
		})
	}
	if otherEnrollment > 0 {
		out = append(out, dashboard.Publisher{
			Name:        otherPublisher,
			MarketShare: int(share(otherEnrollment, total, 0)),
			Enrollment:  otherEnrollment,
			AvgPrice:    mean(otherPrices, 2),
			Color:       otherColor,
		})
	}
	return out
}

func computeTopInstitutions(inst []dashboard.InstitutionRecord) []dashboard.TopInstitution {
	totals := newTally()
	names := map[string]string{}
	for _, r := range inst {
		key := r.Key()
		if key == "" {
			continue
		}
		totals.add(key, r.Enrollment())
		if names[key] == "" && r.School != "" {
			names[key] = r.School
		}
	}

	out := []dashboard.TopInstitution{}
	for _, key := range totals.sorted() {
		if len(out) == topN {
			break
		}
		name := names[key]
		if name == "" {
			name = key
		}
		out = append(out, dashboard.TopInstitution{Name: name, Enrollment: totals.values[key]})
	}
	return out
}

func computeTopTextbooks(courses []dashboard.CourseRecord) []dashboard.TopTextbook {
	totals := newTally()
	publisher := map[string]string{}
	for _, c := range courses {
		title := strings.TrimSpace(c.BookTitle)
		if title == "" {
			continue
		}
		totals.add(title, c.Enrollments)
		if p := strings.TrimSpace(c.Publisher); p != "" {
			publisher[title] = p
		}
	}

	out := []dashboard.TopTextbook{}
	for _, title := range totals.sorted() {
		if len(out) == topN {
			break
		}
		out = append(out, dashboard.TopTextbook{
			Name:       title,
			Publisher:  publisher[title],
			Enrollment: totals.values[title],
		})
	}
	return out
}

func computePeriods(courses []dashboard.CourseRecord) []dashboard.PeriodRow {
	var order []string
	rows := map[string]*dashboard.PeriodRow{}
	for _, c := range courses {
		period := strings.TrimSpace(c.Period)
		if period == "" {
			continue
		}
		row, ok := rows[period]
		if !ok {
			row = &dashboard.PeriodRow{Period: period}
			rows[period] = row
			order = append(order, period)
		}
		switch ClassifyLevel(c.CalcLevel) {
		case LevelCalcI:
			row.Calc1 += c.Enrollments
		case LevelCalcII:
			row.Calc2 += c.Enrollments
		}
	}

	out := make([]dashboard.PeriodRow, 0, len(order))
	for _, p := range order {
		out = append(out, *rows[p])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Calc1+out[i].Calc2 > out[j].Calc1+out[j].Calc2
	})
	return out
}

func computeInstitutionSizes(inst []dashboard.InstitutionRecord) []dashboard.SizeRow {
	rows := make([]dashboard.SizeRow, len(dashboard.SizeBuckets))
	index := map[string]int{}
	for i, size := range dashboard.SizeBuckets {
		rows[i].Size = size
		index[size] = i
	}
	for _, r := range inst {
		row := &rows[index[dashboard.SizeCategory(r.FTE)]]
		row.Calc1 += r.CalcI
		row.Calc2 += r.CalcII
	}
	return rows
}

func computeFilters(inst []dashboard.InstitutionRecord, courses []dashboard.CourseRecord) dashboard.Filters {
	states := map[string]bool{}
	regions := map[string]bool{}
	sectors := map[string]bool{}
	msiTypes := map[string]bool{}
	publishers := map[string]bool{}
	periods := map[string]bool{}
	institutions := map[string]bool{}

	addLabels := func(state, region, sector string) {
		if s := normalizeState(state); s != "" {
			states[s] = true
		}
		if r := cleanLabel(region); r != "" {
			regions[r] = true
		}
		if s := cleanLabel(sector); s != "" {
			sectors[s] = true
		}
	}

	for _, r := range inst {
		addLabels(r.State, r.Region, r.Sector)
		msiTypes[msiType(r.MSIType)] = true
		if p := strings.TrimSpace(r.Publisher); p != "" {
			publishers[p] = true
		}
	}
	for _, c := range courses {
		addLabels(c.State, c.Region, c.Sector)
		if p := strings.TrimSpace(c.Publisher); p != "" {
			publishers[p] = true
		}
		if p := strings.TrimSpace(c.Period); p != "" {
			periods[p] = true
		}
		if s := strings.TrimSpace(c.School); s != "" && !strings.EqualFold(s, blankInstitutionTag) {
			institutions[s] = true
		}
	}

	return dashboard.Filters{
		States:       sortedKeys(states),
		Regions:      sortedKeys(regions),
		Sectors:      sortedKeys(sectors),
		MSITypes:     sortedKeys(msiTypes),
		Publishers:   sortedKeys(publishers),
		Periods:      sortedKeys(periods),
		Institutions: sortedKeys(institutions),
		Courses:      dashboard.CourseOptions(),
		PriceRanges:  dashboard.PriceRangeOptions(),
	}
}

func msiType(raw string) string {
	if v := strings.TrimSpace(raw); v != "" {
		return v
	}
	return defaultMSIType
}

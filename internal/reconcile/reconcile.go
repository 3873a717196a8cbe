// Package reconcile decides which freshly computed sections replace the
// stored dashboard when only some of the roster files were uploaded.
package reconcile

import (
	"calcdash/domain/dashboard"
)

// Mode describes how much of the dashboard an apply refreshes
type Mode string

const (
	ModeFull    Mode = "full"
	ModePartial Mode = "partial"
	ModeNone    Mode = "none"
)

// Sections refreshed by each roster on a partial upload.
var (
	InstitutionSections = []dashboard.Section{
		dashboard.SectionSectorData,
		dashboard.SectionTopInstitutions,
		dashboard.SectionInstitutionSizeData,
		dashboard.SectionStateData,
	}
	CourseSections = []dashboard.Section{
		dashboard.SectionRegionalData,
		dashboard.SectionPublishers,
		dashboard.SectionTopTextbooks,
		dashboard.SectionPeriodData,
	}
)

// Filter keys refreshed by each roster on a partial upload.
var (
	InstitutionFilterKeys = []string{"states", "regions", "sectors"}
	CourseFilterKeys      = []string{"states", "regions", "sectors", "publishers", "courses", "price_ranges"}
)

// Plan is the outcome of reconciling a computation against stored data
type Plan struct {
	Mode Mode
	// Updated lists the sections to persist, in dashboard order.
	Updated []dashboard.Section
	// Result is the previous data with every updated section replaced.
	Result dashboard.Data
}

// Payloads returns the value to persist for each updated section.
func (p Plan) Payloads() map[dashboard.Section]interface{} {
	out := make(map[dashboard.Section]interface{}, len(p.Updated))
	for _, sec := range p.Updated {
		out[sec] = p.Result.Payload(sec)
	}
	return out
}

// Contains reports whether sec is persisted by the plan.
func (p Plan) Contains(sec dashboard.Section) bool {
	for _, s := range p.Updated {
		if s == sec {
			return true
		}
	}
	return false
}

// Reconcile merges computed into previous. With both rosters every section is
// replaced. With one roster only the sections derived from it are replaced,
// and kpis and filters are overlaid field by field so values owned by the
// other roster survive.
func Reconcile(previous, computed dashboard.Data, instUploaded, coursesUploaded bool) Plan {
	switch {
	case instUploaded && coursesUploaded:
		return Plan{
			Mode:    ModeFull,
			Updated: append([]dashboard.Section(nil), dashboard.AllSections...),
			Result:  computed,
		}
	case !instUploaded && !coursesUploaded:
		return Plan{Mode: ModeNone, Result: previous}
	}

	result := previous
	replace := map[dashboard.Section]bool{
		dashboard.SectionKPIs:    true,
		dashboard.SectionFilters: true,
	}
	filterKeys := InstitutionFilterKeys
	sections := InstitutionSections
	if coursesUploaded {
		filterKeys = CourseFilterKeys
		sections = CourseSections
	}
	for _, sec := range sections {
		replace[sec] = true
		result.SetPayload(sec, &computed)
	}

	if instUploaded {
		overlayInstitutionKPIs(&result.KPIs, computed.KPIs)
	} else {
		overlayCourseKPIs(&result.KPIs, computed.KPIs)
	}
	result.Filters = overlayFilters(previous.Filters, computed.Filters, filterKeys)

	plan := Plan{Mode: ModePartial, Result: result}
	for _, sec := range dashboard.AllSections {
		if replace[sec] {
			plan.Updated = append(plan.Updated, sec)
		}
	}
	return plan
}

func overlayInstitutionKPIs(dst *dashboard.KPIs, src dashboard.KPIs) {
	dst.TotalInstitutions = src.TotalInstitutions
	dst.TotalEnrollment = src.TotalEnrollment
	dst.Calc1Enrollment = src.Calc1Enrollment
	dst.Calc1Share = src.Calc1Share
	dst.Calc2Enrollment = src.Calc2Enrollment
	dst.Calc2Share = src.Calc2Share
	dst.TotalFTEEnrollment = src.TotalFTEEnrollment
}

func overlayCourseKPIs(dst *dashboard.KPIs, src dashboard.KPIs) {
	dst.AvgPriceCalc1 = src.AvgPriceCalc1
	dst.AvgPriceCalc2 = src.AvgPriceCalc2
	dst.CommercialShare = src.CommercialShare
	dst.OERShare = src.OERShare
	dst.TotalTextbooks = src.TotalTextbooks
	dst.AvgTextbookPrice = src.AvgTextbookPrice
}

// overlayFilters replaces the named option lists, skipping lists that came
// out empty.
func overlayFilters(previous, computed dashboard.Filters, keys []string) dashboard.Filters {
	out := previous
	for _, key := range keys {
		src := computed.Field(key)
		if src == nil || len(*src) == 0 {
			continue
		}
		*out.Field(key) = append([]string(nil), *src...)
	}
	return out
}

package dashboard

import "strings"

// Section names one persisted slice of the dashboard data
type Section string

const (
	SectionKPIs                Section = "kpis"
	SectionRegionalData        Section = "regional_data"
	SectionRegionCoverage      Section = "region_coverage"
	SectionSectorData          Section = "sector_data"
	SectionPublishers          Section = "publishers"
	SectionTopInstitutions     Section = "top_institutions"
	SectionTopTextbooks        Section = "top_textbooks"
	SectionPeriodData          Section = "period_data"
	SectionInstitutionSizeData Section = "institution_size_data"
	SectionFilters             Section = "filters"
	SectionStateData           Section = "state_data"
)

// AllSections lists every section in computation order.
var AllSections = []Section{
	SectionKPIs,
	SectionRegionalData,
	SectionRegionCoverage,
	SectionSectorData,
	SectionPublishers,
	SectionTopInstitutions,
	SectionTopTextbooks,
	SectionPeriodData,
	SectionInstitutionSizeData,
	SectionFilters,
	SectionStateData,
}

// ParseSection resolves a section name.
func ParseSection(s string) (Section, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, sec := range AllSections {
		if string(sec) == s {
			return sec, true
		}
	}
	return "", false
}

// Editable reports whether the section accepts manual edits.
func (s Section) Editable() bool {
	return s != SectionStateData
}

func (s Section) String() string {
	return string(s)
}

package dashboard

// KPIs holds the headline metrics
type KPIs struct {
	TotalInstitutions  int     `json:"total_institutions"`
	TotalEnrollment    int     `json:"total_enrollment"`
	Calc1Enrollment    int     `json:"calc1_enrollment"`
	Calc1Share         float64 `json:"calc1_share"`
	Calc2Enrollment    int     `json:"calc2_enrollment"`
	Calc2Share         float64 `json:"calc2_share"`
	TotalTextbooks     int     `json:"total_textbooks"`
	AvgTextbookPrice   float64 `json:"avg_textbook_price"`
	TotalFTEEnrollment int     `json:"total_fte_enrollment"`
	AvgPriceCalc1      float64 `json:"avg_price_calc1"`
	AvgPriceCalc2      float64 `json:"avg_price_calc2"`
	CommercialShare    int     `json:"commercial_share"`
	OERShare           int     `json:"oer_share"`
	DigitalShare       int     `json:"digital_share"`
	PrintShare         int     `json:"print_share"`
}

// ShareEntry is one slice of a percentage distribution
type ShareEntry struct {
	Name       string `json:"name"`
	Percentage int    `json:"percentage"`
	Value      int    `json:"value"`
}

// ShareBreakdown splits a distribution by course level
type ShareBreakdown struct {
	Calc1 []ShareEntry `json:"calc1"`
	Calc2 []ShareEntry `json:"calc2"`
}

// SectorData is the sector split, plus the distinct-institution distribution
type SectorData struct {
	Institutions []ShareEntry `json:"institutions"`
	Calc1        []ShareEntry `json:"calc1"`
	Calc2        []ShareEntry `json:"calc2"`
}

// RegionCoverage groups enrollment by the literal region label
type RegionCoverage struct {
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	States     []string `json:"states"`
	Enrollment int      `json:"enrollment"`
}

type Publisher struct {
	Name        string  `json:"name"`
	MarketShare int     `json:"market_share"`
	Enrollment  int     `json:"enrollment"`
	AvgPrice    float64 `json:"avg_price"`
	Color       string  `json:"color"`
}

type TopInstitution struct {
	Name       string `json:"name"`
	Enrollment int    `json:"enrollment"`
}

type TopTextbook struct {
	Name       string `json:"name"`
	Publisher  string `json:"publisher"`
	Enrollment int    `json:"enrollment"`
}

type PeriodRow struct {
	Period string `json:"period"`
	Calc1  int    `json:"calc1"`
	Calc2  int    `json:"calc2"`
}

type SizeRow struct {
	Size  string `json:"size"`
	Calc1 int    `json:"calc1"`
	Calc2 int    `json:"calc2"`
}

// Filters holds the option lists offered by the dashboard filter bar
type Filters struct {
	States       []string `json:"states"`
	Regions      []string `json:"regions"`
	Sectors      []string `json:"sectors"`
	MSITypes     []string `json:"msi_types"`
	Publishers   []string `json:"publishers"`
	Periods      []string `json:"periods"`
	Institutions []string `json:"institutions"`
	Courses      []string `json:"courses"`
	PriceRanges  []string `json:"price_ranges"`
}

// FilterKeys lists the filter option keys in display order.
var FilterKeys = []string{"states", "regions", "sectors", "msi_types", "publishers", "periods", "institutions", "courses", "price_ranges"}

// Field returns a pointer to the list stored under key, or nil.
func (f *Filters) Field(key string) *[]string {
	switch key {
	case "states":
		return &f.States
	case "regions":
		return &f.Regions
	case "sectors":
		return &f.Sectors
	case "msi_types":
		return &f.MSITypes
	case "publishers":
		return &f.Publishers
	case "periods":
		return &f.Periods
	case "institutions":
		return &f.Institutions
	case "courses":
		return &f.Courses
	case "price_ranges":
		return &f.PriceRanges
	}
	return nil
}

// Breakdown is a per-state sub-aggregate for one dimension value
type Breakdown struct {
	CalcI        int `json:"calc_i"`
	CalcII       int `json:"calc_ii"`
	Total        int `json:"total"`
	FTE          int `json:"fte"`
	Institutions int `json:"institutions"`
}

// InstitutionBreakdown is keyed by school, so it carries no institution count
type InstitutionBreakdown struct {
	CalcI  int `json:"calc_i"`
	CalcII int `json:"calc_ii"`
	Total  int `json:"total"`
	FTE    int `json:"fte"`
}

// PeriodBreakdown aggregates course rows of one state and period
type PeriodBreakdown struct {
	Total   int `json:"total"`
	CalcI   int `json:"calc_i"`
	CalcII  int `json:"calc_ii"`
	Courses int `json:"courses"`
}

// StateEntry is one map pin with its breakdowns
type StateEntry struct {
	State        string  `json:"state"`
	Code         string  `json:"code"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	LonLeft      float64 `json:"lon_left"`
	LonRight     float64 `json:"lon_right"`
	Total        int     `json:"total"`
	TotalFmt     string  `json:"total_fmt"`
	TotalFull    string  `json:"total_full"`
	CalcI        int     `json:"calc_i"`
	CalcIFmt     string  `json:"calc_i_fmt"`
	CalcII       int     `json:"calc_ii"`
	CalcIIFmt    string  `json:"calc_ii_fmt"`
	FTE          int     `json:"fte"`
	Institutions int     `json:"institutions"`
	Courses      int     `json:"courses"`
	Pub1         string  `json:"pub1"`
	Pub1Enr      int     `json:"pub1_enr"`
	Pub2         string  `json:"pub2"`
	Pub2Enr      int     `json:"pub2_enr"`
	Pub3         string  `json:"pub3"`
	Pub3Enr      int     `json:"pub3_enr"`

	PeriodBreakdown      map[string]PeriodBreakdown      `json:"period_breakdown"`
	InstitutionBreakdown map[string]InstitutionBreakdown `json:"institution_breakdown"`
	SizeBreakdown        map[string]Breakdown            `json:"size_breakdown"`
	RegionBreakdown      map[string]Breakdown            `json:"region_breakdown"`
	MSIBreakdown         map[string]Breakdown            `json:"msi_breakdown"`
	SectorBreakdown      map[string]Breakdown            `json:"sector_breakdown"`
	PublisherBreakdown   map[string]Breakdown            `json:"publisher_breakdown"`
}

// Data is the complete dashboard payload, one field per section
type Data struct {
	KPIs                KPIs             `json:"kpis"`
	RegionalData        ShareBreakdown   `json:"regional_data"`
	RegionCoverage      []RegionCoverage `json:"region_coverage"`
	SectorData          SectorData       `json:"sector_data"`
	Publishers          []Publisher      `json:"publishers"`
	TopInstitutions     []TopInstitution `json:"top_institutions"`
	TopTextbooks        []TopTextbook    `json:"top_textbooks"`
	PeriodData          []PeriodRow      `json:"period_data"`
	InstitutionSizeData []SizeRow        `json:"institution_size_data"`
	Filters             Filters          `json:"filters"`
	StateData           []StateEntry     `json:"state_data"`
}

// Payload returns the value stored for a section.
func (d *Data) Payload(s Section) interface{} {
	switch s {
	case SectionKPIs:
		return d.KPIs
	case SectionRegionalData:
		return d.RegionalData
	case SectionRegionCoverage:
		return d.RegionCoverage
	case SectionSectorData:
		return d.SectorData
	case SectionPublishers:
		return d.Publishers
	case SectionTopInstitutions:
		return d.TopInstitutions
	case SectionTopTextbooks:
		return d.TopTextbooks
	case SectionPeriodData:
		return d.PeriodData
	case SectionInstitutionSizeData:
		return d.InstitutionSizeData
	case SectionFilters:
		return d.Filters
	case SectionStateData:
		return d.StateData
	}
	return nil
}

// SetPayload copies the section of src into d.
func (d *Data) SetPayload(s Section, src *Data) {
	switch s {
	case SectionKPIs:
		d.KPIs = src.KPIs
	case SectionRegionalData:
		d.RegionalData = src.RegionalData
	case SectionRegionCoverage:
		d.RegionCoverage = src.RegionCoverage
	case SectionSectorData:
		d.SectorData = src.SectorData
	case SectionPublishers:
		d.Publishers = src.Publishers
	case SectionTopInstitutions:
		d.TopInstitutions = src.TopInstitutions
	case SectionTopTextbooks:
		d.TopTextbooks = src.TopTextbooks
	case SectionPeriodData:
		d.PeriodData = src.PeriodData
	case SectionInstitutionSizeData:
		d.InstitutionSizeData = src.InstitutionSizeData
	case SectionFilters:
		d.Filters = src.Filters
	case SectionStateData:
		d.StateData = src.StateData
	}
}

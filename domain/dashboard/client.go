package dashboard

// ClientView is the payload handed to the dashboard script, with the key
// names that script reads.
type ClientView struct {
	KPIs             KPIs             `json:"kpis"`
	Regional         ShareBreakdown   `json:"regional"`
	Sectors          SectorData       `json:"sectors"`
	Publishers       []Publisher      `json:"publishers"`
	TopInstitutions  []TopInstitution `json:"topInstitutions"`
	TopTextbooks     []TopTextbook    `json:"topTextbooks"`
	Periods          []PeriodRow      `json:"periods"`
	InstitutionSizes []SizeRow        `json:"institutionSizes"`
	RegionCoverage   []RegionCoverage `json:"regionCoverage"`
	Filters          Filters          `json:"filters"`
	StateData        []StateEntry     `json:"state_data"`
}

// Client builds the script-facing view of d.
func (d Data) Client() ClientView {
	coverage := d.RegionCoverage
	if coverage == nil {
		coverage = []RegionCoverage{}
	}
	states := d.StateData
	if states == nil {
		states = []StateEntry{}
	}
	return ClientView{
		KPIs:             d.KPIs,
		Regional:         d.RegionalData,
		Sectors:          d.SectorData,
		Publishers:       d.Publishers,
		TopInstitutions:  d.TopInstitutions,
		TopTextbooks:     d.TopTextbooks,
		Periods:          d.PeriodData,
		InstitutionSizes: d.InstitutionSizeData,
		RegionCoverage:   coverage,
		Filters:          d.Filters,
		StateData:        states,
	}
}

package dashboard

// Defaults returns the demo data shown before anything has been uploaded.
func Defaults() Data {
	return Data{
		KPIs: KPIs{
			TotalInstitutions:  933,
			TotalEnrollment:    1817722,
			Calc1Enrollment:    1202783,
			Calc1Share:         66.2,
			Calc2Enrollment:    614939,
			Calc2Share:         33.8,
			TotalTextbooks:     824,
			AvgTextbookPrice:   143,
			TotalFTEEnrollment: 10703763,
			AvgPriceCalc1:      125.50,
			AvgPriceCalc2:      118.75,
			CommercialShare:    78,
			OERShare:           22,
			DigitalShare:       85,
			PrintShare:         15,
		},
		RegionalData: ShareBreakdown{
			Calc1: []ShareEntry{
				{"Southeast", 29, 346181},
				{"Far West", 19, 229591},
				{"Mid East", 16, 193514},
				{"Great Lakes", 13, 152706},
				{"Southwest", 12, 138181},
				{"Rocky Mountains", 6, 65814},
				{"Plains", 3, 36024},
				{"New England", 2, 25083},
				{"Outlying Areas", 0, 825},
			},
			Calc2: []ShareEntry{
				{"Southeast", 28, 172183},
				{"Far West", 20, 122988},
				{"Mid East", 17, 104540},
				{"Great Lakes", 13, 79942},
				{"Southwest", 11, 67643},
				{"Rocky Mountains", 5, 30747},
				{"Plains", 3, 18448},
				{"New England", 2, 12299},
				{"Outlying Areas", 1, 6149},
			},
		},
		RegionCoverage: []RegionCoverage{
			{"Southeast", "Southeast (AL, AR, FL, GA, KY, LA, MS, NC, SC, TN, VA, WV)", []string{"AL", "AR", "FL", "GA", "KY", "LA", "MS", "NC", "SC", "TN", "VA", "WV"}, 325348},
			{"Far West", "Far West (AK, CA, HI, NV, OR, WA)", []string{"AK", "CA", "HI", "NV", "OR", "WA"}, 265312},
			{"Mid East", "Mid East (DE, DC, MD, NJ, NY, PA)", []string{"DE", "DC", "MD", "NJ", "NY", "PA"}, 202959},
			{"Southwest", "Southwest (AZ, NM, OK, TX)", []string{"AZ", "NM", "OK", "TX"}, 174852},
			{"Great Lakes", "Great Lakes (IL, IN, MI, OH, WI)", []string{"IL", "IN", "MI", "OH", "WI"}, 169795},
			{"Plains", "Plains (IA, KS, MN, MO, NE, ND, SD)", []string{"IA", "KS", "MN", "MO", "NE", "ND", "SD"}, 78306},
			{"Rocky Mountains", "Rocky Mountains (CO, ID, MT, UT, WY)", []string{"CO", "ID", "MT", "UT", "WY"}, 70171},
			{"New England", "New England (CT, ME, MA, NH, RI, VT)", []string{"CT", "ME", "MA", "NH", "RI", "VT"}, 60348},
			{"Other U.S. jurisdictions", "Other U.S. jurisdictions (AS, FM, GU, MH, MP, PR, PW, VI)", []string{"AS", "FM", "GU", "MH", "MP", "PR", "PW", "VI"}, 8084},
		},
		SectorData: SectorData{
			Institutions: []ShareEntry{},
			Calc1: []ShareEntry{
				{"4-Year Public", 70, 836560},
				{"2-Year Public", 17, 201591},
				{"4-Year Private", 12, 149768},
			},
			Calc2: []ShareEntry{
				{"4-Year Public", 72, 442756},
				{"2-Year Public", 14, 86091},
				{"4-Year Private", 14, 86091},
			},
		},
		Publishers: []Publisher{
			{"Cengage", 39, 697000, 142.50, "#008384"},
			{"Pearson", 23, 410000, 155.00, "#234A5D"},
			{"Other", 18, 331000, 95.00, "#92A4CF"},
			{"Wiley", 9, 158000, 148.00, "#4A81A8"},
			{"OpenStax", 5, 84000, 0, "#7FBFC0"},
			{"Macmillan", 3, 62000, 135.00, "#D3DEF6"},
		},
		TopInstitutions: []TopInstitution{
			{"Univ of Michigan", 98000},
			{"Univ of Florida", 92000},
			{"Florida State Univ", 89000},
			{"UCF", 67000},
			{"UT Dallas", 57000},
			{"Rutgers", 46000},
			{"Lone Star College", 25000},
			{"Oregon State", 24000},
			{"CU Boulder", 24000},
			{"Univ of Mississippi", 23000},
		},
		TopTextbooks: []TopTextbook{
			{"MyLab Math Calculus", "Pearson", 133310},
			{"Calculus Single-Variable", "Wiley", 98775},
			{"Thomas Calculus", "Pearson", 84617},
			{"WebAssign Calculus", "Cengage", 63039},
			{"Calculus Single+Multi", "Wiley", 61642},
			{"Knewton Alta Calculus", "Other", 56726},
			{"Calculus OpenStax", "OpenStax", 52834},
			{"Stewart Calculus", "Cengage", 48521},
			{"Larson Calculus", "Cengage", 42156},
			{"Calculus Business", "Pearson", 38420},
		},
		PeriodData: []PeriodRow{
			{"Fall 2025", 547, 269},
			{"Spring 2025", 472, 233},
			{"Winter 2025", 174, 85},
			{"Summer 2025", 105, 51},
		},
		InstitutionSizeData: []SizeRow{
			{SizeLarge, 485, 240},
			{SizeMedium, 412, 203},
			{SizeSmall, 298, 147},
			{SizeVerySmall, 121, 62},
		},
		Filters: Filters{
			States: []string{
				"Alabama", "Alaska", "Arizona", "Arkansas", "California",
				"Colorado", "Connecticut", "Delaware", "Florida", "Georgia",
				"Hawaii", "Idaho", "Illinois", "Indiana", "Iowa",
				"Kansas", "Kentucky", "Louisiana", "Maine", "Maryland",
				"Massachusetts", "Michigan", "Minnesota", "Mississippi", "Missouri",
				"Montana", "Nebraska", "Nevada", "New Hampshire", "New Jersey",
				"New Mexico", "New York", "North Carolina", "North Dakota", "Ohio",
				"Oklahoma", "Oregon", "Pennsylvania", "Rhode Island", "South Carolina",
				"South Dakota", "Tennessee", "Texas", "Utah", "Vermont",
				"Virginia", "Washington", "West Virginia", "Wisconsin", "Wyoming",
			},
			Regions: []string{
				"Southeast", "Far West", "Mid East", "Great Lakes",
				"Southwest", "Rocky Mountains", "Plains", "New England", "Outlying Areas",
			},
			Sectors:    []string{"2, Public", "4, Public", "4, PNFP", "4, PFP"},
			MSITypes:   []string{"Not MSI", "HBCU", "HSI", "AANAPISI", "ANNH", "PBI", "TCU"},
			Publishers: []string{"Cengage", "Pearson", "Wiley", "OpenStax", "Macmillan", "Other"},
			Periods:    []string{"Fall 2025", "Spring 2025", "Winter 2025", "Summer 2025"},
			Institutions: []string{
				"Arizona State University Campus Immersion",
				"Pennsylvania State University-Main Campus",
				"University of Michigan-Ann Arbor",
				"Purdue University-Main Campus",
				"University of Washington-Seattle Campus",
			},
			Courses:     CourseOptions(),
			PriceRanges: PriceRangeOptions(),
		},
		StateData: []StateEntry{},
	}
}

// Institution size bucket labels, keyed by FTE enrollment.
const (
	SizeLarge     = "Large (>20K)"
	SizeMedium    = "Medium (5-20K)"
	SizeSmall     = "Small (1-5K)"
	SizeVerySmall = "Very Small (<1K)"
)

// SizeBuckets lists the size labels, largest first.
var SizeBuckets = []string{SizeLarge, SizeMedium, SizeSmall, SizeVerySmall}

// SizeCategory buckets an FTE enrollment.
func SizeCategory(fte int) string {
	switch {
	case fte > 20000:
		return SizeLarge
	case fte >= 5000:
		return SizeMedium
	case fte >= 1000:
		return SizeSmall
	default:
		return SizeVerySmall
	}
}

// CourseOptions is the fixed course filter list.
func CourseOptions() []string {
	return []string{"Calculus I", "Calculus II", "Calculus I & II"}
}

// PriceRangeOptions is the fixed price range filter list.
func PriceRangeOptions() []string {
	return []string{"Free (OER)", "$1 - $50", "$51 - $100", "$101 - $150", "$151 - $200", "$200+"}
}

package dashboard

// InstitutionRecord is one row of the institutions roster
type InstitutionRecord struct {
	State     string
	Region    string
	Sector    string
	School    string
	IPEDID    string
	FTE       int
	CalcLevel string
	CalcI     int
	CalcII    int
	Publisher string
	MSIType   string
	AvgPrice  string
}

// Key identifies the institution: IPED ID when present, else school name.
func (r InstitutionRecord) Key() string {
	if r.IPEDID != "" {
		return r.IPEDID
	}
	return r.School
}

// Enrollment is the combined Calc I and Calc II enrollment.
func (r InstitutionRecord) Enrollment() int {
	return r.CalcI + r.CalcII
}

// CourseRecord is one row of the course roster
type CourseRecord struct {
	State       string
	School      string
	Period      string
	Enrollments int
	// BookTitle prefers the normalized title; TitleCell prefers the raw cell,
	// which may list several books.
	BookTitle string
	TitleCell string
	CalcLevel string
	Region    string
	Sector    string
	Publisher string
	Price     string
}

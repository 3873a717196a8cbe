package mapper

import (
	"sort"
	"strings"

	"calcdash/domain/dashboard"
)

const pinOffset = 0.65

// bucket accumulates one breakdown value and the institutions seen in it.
type bucket struct {
	calcI, calcII, fte int
	institutions      map[string]bool
}

func (b *bucket) add(r dashboard.InstitutionRecord, key string) {
	b.calcI += r.CalcI
	b.calcII += r.CalcII
	b.fte += r.FTE
	if key != "" {
		b.institutions[key] = true
	}
}

func (b *bucket) breakdown() dashboard.Breakdown {
	return dashboard.Breakdown{
		CalcI:        b.calcI,
		CalcII:       b.calcII,
		Total:        b.calcI + b.calcII,
		FTE:          b.fte,
		Institutions: len(b.institutions),
	}
}

// dimension maps a breakdown value to its bucket.
type dimension map[string]*bucket

func (d dimension) add(value string, r dashboard.InstitutionRecord, key string) {
	if value == "" {
		return
	}
	b, ok := d[value]
	if !ok {
		b = &bucket{institutions: map[string]bool{}}
		d[value] = b
	}
	b.add(r, key)
}

func (d dimension) breakdowns() map[string]dashboard.Breakdown {
	out := make(map[string]dashboard.Breakdown, len(d))
	for k, b := range d {
		out[k] = b.breakdown()
	}
	return out
}

type stateAgg struct {
	total      bucket
	schools    map[string]*dashboard.InstitutionBreakdown
	size       dimension
	region     dimension
	msi        dimension
	sector     dimension
	publisher  dimension
	publishers *tally
	courses    int
	periods    map[string]*dashboard.PeriodBreakdown
}

func newStateAgg() *stateAgg {
	return &stateAgg{
		total:      bucket{institutions: map[string]bool{}},
		schools:    map[string]*dashboard.InstitutionBreakdown{},
		size:       dimension{},
		region:     dimension{},
		msi:        dimension{},
		sector:     dimension{},
		publisher:  dimension{},
		publishers: newTally(),
		periods:    map[string]*dashboard.PeriodBreakdown{},
	}
}

// computeStateData builds one map pin per state that has institution rows
// and a known location, sorted by total enrollment.
func computeStateData(inst []dashboard.InstitutionRecord, courses []dashboard.CourseRecord) []dashboard.StateEntry {
	states := map[string]*stateAgg{}
	var order []string

	for _, r := range inst {
		state := normalizeState(r.State)
		if state == "" {
			continue
		}
		agg, ok := states[state]
		if !ok {
			agg = newStateAgg()
			states[state] = agg
			order = append(order, state)
		}

		key := r.Key()
		agg.total.add(r, key)

		if school := strings.TrimSpace(r.School); school != "" {
			sb, ok := agg.schools[school]
			if !ok {
				sb = &dashboard.InstitutionBreakdown{}
				agg.schools[school] = sb
			}
			sb.CalcI += r.CalcI
			sb.CalcII += r.CalcII
			sb.Total += r.Enrollment()
			sb.FTE += r.FTE
		}

		agg.size.add(dashboard.SizeCategory(r.FTE), r, key)
		agg.region.add(cleanLabel(r.Region), r, key)
		agg.msi.add(msiType(r.MSIType), r, key)
		agg.sector.add(cleanLabel(r.Sector), r, key)
		if pub := strings.TrimSpace(r.Publisher); pub != "" {
			agg.publisher.add(pub, r, key)
			agg.publishers.add(pub, r.Enrollment())
		}
	}

	for _, c := range courses {
		agg, ok := states[normalizeState(c.State)]
		if !ok {
			continue
		}
		agg.courses++

		period := strings.TrimSpace(c.Period)
		if period == "" {
			continue
		}
		pb, ok := agg.periods[period]
		if !ok {
			pb = &dashboard.PeriodBreakdown{}
			agg.periods[period] = pb
		}
		pb.Total += c.Enrollments
		pb.Courses++
		switch ClassifyLevel(c.CalcLevel) {
		case LevelCalcI:
			pb.CalcI += c.Enrollments
		case LevelCalcII:
			pb.CalcII += c.Enrollments
		}
	}

	out := []dashboard.StateEntry{}
	for _, state := range order {
		coord, ok := lookupState(state)
		if !ok {
			continue
		}
		out = append(out, states[state].entry(coord))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

func (a *stateAgg) entry(coord stateCoord) dashboard.StateEntry {
	calcI, calcII := a.total.calcI, a.total.calcII
	total := calcI + calcII

	e := dashboard.StateEntry{
		State:        coord.Name,
		Code:         coord.Code,
		Lat:          coord.Lat,
		Lon:          coord.Lon,
		LonLeft:      coord.Lon - pinOffset,
		LonRight:     coord.Lon + pinOffset,
		Total:        total,
		TotalFmt:     fmtK(total),
		TotalFull:    fmtThousands(total),
		CalcI:        calcI,
		CalcIFmt:     fmtK(calcI),
		CalcII:       calcII,
		CalcIIFmt:    fmtK(calcII),
		FTE:          a.total.fte,
		Institutions: len(a.total.institutions),
		Courses:      a.courses,

		PeriodBreakdown:      make(map[string]dashboard.PeriodBreakdown, len(a.periods)),
		InstitutionBreakdown: make(map[string]dashboard.InstitutionBreakdown, len(a.schools)),
		SizeBreakdown:        a.size.breakdowns(),
		RegionBreakdown:      a.region.breakdowns(),
		MSIBreakdown:         a.msi.breakdowns(),
		SectorBreakdown:      a.sector.breakdowns(),
		PublisherBreakdown:   a.publisher.breakdowns(),
	}
	for p, pb := range a.periods {
		e.PeriodBreakdown[p] = *pb
	}
	for s, sb := range a.schools {
		e.InstitutionBreakdown[s] = *sb
	}

	top := a.publishers.sorted()
	names := []*string{&e.Pub1, &e.Pub2, &e.Pub3}
	counts := []*int{&e.Pub1Enr, &e.Pub2Enr, &e.Pub3Enr}
	for i := 0; i < len(names) && i < len(top); i++ {
		*names[i] = top[i]
		*counts[i] = a.publishers.values[top[i]]
	}
	return e
}

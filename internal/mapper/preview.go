package mapper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"calcdash/domain/dashboard"
)

// Preview summarizes each non-empty section of data in one line, for an
// operator to confirm before the data is saved.
func Preview(data dashboard.Data) map[dashboard.Section]string {
	p := map[dashboard.Section]string{}

	k := data.KPIs
	p[dashboard.SectionKPIs] = fmt.Sprintf(
		"%s institutions, %s total enrollment, Calc I: %s (%s%%), Calc II: %s (%s%%)",
		humanize.Comma(int64(k.TotalInstitutions)),
		humanize.Comma(int64(k.TotalEnrollment)),
		humanize.Comma(int64(k.Calc1Enrollment)),
		strconv.FormatFloat(k.Calc1Share, 'f', -1, 64),
		humanize.Comma(int64(k.Calc2Enrollment)),
		strconv.FormatFloat(k.Calc2Share, 'f', -1, 64),
	)

	if n := len(data.RegionalData.Calc1); n > 0 {
		p[dashboard.SectionRegionalData] = fmt.Sprintf("%d regions", n)
	}
	if n := len(data.RegionCoverage); n > 0 {
		p[dashboard.SectionRegionCoverage] = fmt.Sprintf("%d coverage regions", n)
	}
	if n := len(data.SectorData.Calc1); n > 0 {
		p[dashboard.SectionSectorData] = fmt.Sprintf("%d sectors", n)
	}
	if n := len(data.Publishers); n > 0 {
		names := make([]string, 0, namedPublishers)
		for i := 0; i < n && i < namedPublishers; i++ {
			names = append(names, data.Publishers[i].Name)
		}
		s := strings.Join(names, ", ")
		if n > namedPublishers {
			s += fmt.Sprintf(" +%d more", n-namedPublishers)
		}
		p[dashboard.SectionPublishers] = s
	}
	if n := len(data.TopInstitutions); n > 0 {
		p[dashboard.SectionTopInstitutions] = fmt.Sprintf("%d institutions (top: %s)", n, data.TopInstitutions[0].Name)
	}
	if n := len(data.TopTextbooks); n > 0 {
		p[dashboard.SectionTopTextbooks] = fmt.Sprintf("%d textbooks (top: %s)", n, data.TopTextbooks[0].Name)
	}
	if len(data.PeriodData) > 0 {
		periods := make([]string, 0, len(data.PeriodData))
		for _, row := range data.PeriodData {
			periods = append(periods, row.Period)
		}
		p[dashboard.SectionPeriodData] = strings.Join(periods, ", ")
	}
	if n := len(data.InstitutionSizeData); n > 0 {
		p[dashboard.SectionInstitutionSizeData] = fmt.Sprintf("%d size categories", n)
	}
	if n := len(data.StateData); n > 0 {
		p[dashboard.SectionStateData] = fmt.Sprintf("%d states", n)
	}
	return p
}

// StateScript renders state data as the stateData script global.
func StateScript(states []dashboard.StateEntry) (string, error) {
	if states == nil {
		states = []dashboard.StateEntry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(states); err != nil {
		return "", err
	}
	return "const stateData = " + strings.TrimRight(buf.String(), "\n") + ";\n", nil
}

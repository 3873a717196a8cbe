package dashboard

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSection(t *testing.T) {
	sec, ok := ParseSection(" KPIs ")
	require.True(t, ok)
	assert.Equal(t, SectionKPIs, sec)

	_, ok = ParseSection("charts")
	assert.False(t, ok)

	assert.False(t, SectionStateData.Editable())
	assert.True(t, SectionPublishers.Editable())
}

func TestSizeCategory(t *testing.T) {
	tests := []struct {
		fte  int
		want string
	}{
		{25000, SizeLarge},
		{20001, SizeLarge},
		{20000, SizeMedium},
		{5000, SizeMedium},
		{4999, SizeSmall},
		{1000, SizeSmall},
		{999, SizeVerySmall},
		{0, SizeVerySmall},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SizeCategory(tt.fte), "fte=%d", tt.fte)
	}
}

func TestMergeStoredKPIsFieldByField(t *testing.T) {
	stored := map[Section]json.RawMessage{
		SectionKPIs: json.RawMessage(`{"total_institutions": 12, "calc1_share": 55.5}`),
	}

	merged, err := MergeStored(Defaults(), stored)
	require.NoError(t, err)

	assert.Equal(t, 12, merged.KPIs.TotalInstitutions)
	assert.Equal(t, 55.5, merged.KPIs.Calc1Share)
	// untouched fields keep their default
	assert.Equal(t, 1817722, merged.KPIs.TotalEnrollment)
	assert.Equal(t, 85, merged.KPIs.DigitalShare)
}

func TestMergeStoredListsReplace(t *testing.T) {
	stored := map[Section]json.RawMessage{
		SectionTopInstitutions: json.RawMessage(`[{"name":"Only U","enrollment":5}]`),
		SectionFilters:         json.RawMessage(`{"states":["Texas"]}`),
	}

	merged, err := MergeStored(Defaults(), stored)
	require.NoError(t, err)

	assert.Equal(t, []TopInstitution{{Name: "Only U", Enrollment: 5}}, merged.TopInstitutions)
	assert.Equal(t, []string{"Texas"}, merged.Filters.States)
	assert.Equal(t, Defaults().Filters.Regions, merged.Filters.Regions)
}

func TestMergeStoredBadSectionKeepsBase(t *testing.T) {
	stored := map[Section]json.RawMessage{
		SectionPeriodData: json.RawMessage(`{"not":"a list"}`),
		SectionPublishers: json.RawMessage(`[]`),
	}

	merged, err := MergeStored(Defaults(), stored)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "period_data")
	assert.Equal(t, Defaults().PeriodData, merged.PeriodData)
	assert.Empty(t, merged.Publishers)
}

func TestSanitize(t *testing.T) {
	t.Run("kpis keep known fields only", func(t *testing.T) {
		out, err := Sanitize(SectionKPIs, []byte(`{"total_institutions":"933","calc1_share":"66.2","bogus":1}`))
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"total_institutions": 933, "calc1_share": 66.2}, out)
	})

	t.Run("publishers coerce and validate colour", func(t *testing.T) {
		out, err := Sanitize(SectionPublishers, []byte(`[{"name":"<b>Pearson</b>","market_share":"23","enrollment":410000,"avg_price":"155.5","color":"red"}]`))
		require.NoError(t, err)
		assert.Equal(t, []Publisher{{Name: "Pearson", MarketShare: 23, Enrollment: 410000, AvgPrice: 155.5, Color: "#000000"}}, out)
	})

	t.Run("regional data", func(t *testing.T) {
		out, err := Sanitize(SectionRegionalData, []byte(`{"calc1":[{"name":"Plains","percentage":3.7,"value":"36024"}],"extra":[]}`))
		require.NoError(t, err)
		assert.Equal(t, map[string][]ShareEntry{"calc1": {{Name: "Plains", Percentage: 3, Value: 36024}}}, out)
	})

	t.Run("filters drop unknown keys", func(t *testing.T) {
		out, err := Sanitize(SectionFilters, []byte(`{"States":["Ohio "],"colors":["x"],"periods":"nope"}`))
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"states": {"Ohio"}}, out)
	})

	t.Run("wrong shape", func(t *testing.T) {
		_, err := Sanitize(SectionTopTextbooks, []byte(`{"name":"x"}`))
		assert.Error(t, err)
	})

	t.Run("state data is not editable", func(t *testing.T) {
		_, err := Sanitize(SectionStateData, []byte(`[]`))
		assert.Error(t, err)
	})
}

func TestClientViewKeys(t *testing.T) {
	b, err := json.Marshal(Defaults().Client())
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(b, &m))
	for _, key := range []string{"kpis", "regional", "sectors", "publishers", "topInstitutions", "topTextbooks", "periods", "institutionSizes", "regionCoverage", "filters", "state_data"} {
		assert.Contains(t, m, key)
	}
	assert.JSONEq(t, `[]`, string(m["state_data"]))
}

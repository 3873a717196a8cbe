package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyRecordSections(t *testing.T) {
	tests := []struct {
		name     string
		sections []string
		want     []string
	}{
		{"several", []string{"kpis", "publishers"}, []string{"kpis", "publishers"}},
		{"one", []string{"filters"}, []string{"filters"}},
		{"none", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewApplyRecord("partial", tt.sections, 1, 2)
			assert.Equal(t, tt.want, rec.SectionList())
		})
	}
}

func TestApplyRecordJSON(t *testing.T) {
	rec := NewApplyRecord("full", []string{"kpis", "state_data"}, 10, 20)

	b, err := json.Marshal(rec)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, rec.ID.String(), got["id"])
	assert.Equal(t, "full", got["mode"])
	assert.Equal(t, []interface{}{"kpis", "state_data"}, got["sections"])
	assert.Equal(t, float64(10), got["institution_rows"])
	assert.Equal(t, float64(20), got["course_rows"])
	assert.Contains(t, got, "applied_at")
}

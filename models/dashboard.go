package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StoredSection is one persisted dashboard section
type StoredSection struct {
	Section   string    `json:"section" db:"section"`
	Payload   string    `json:"payload" db:"payload"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ApplyRecord is an audit entry for one committed upload apply
type ApplyRecord struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Mode            string    `json:"mode" db:"mode"`
	Sections        string    `json:"-" db:"sections"`
	InstitutionRows int       `json:"institution_rows" db:"institution_rows"`
	CourseRows      int       `json:"course_rows" db:"course_rows"`
	AppliedAt       time.Time `json:"applied_at" db:"applied_at"`
}

// NewApplyRecord stamps a new audit entry.
func NewApplyRecord(mode string, sections []string, institutionRows, courseRows int) ApplyRecord {
	return ApplyRecord{
		ID:              uuid.New(),
		Mode:            mode,
		Sections:        strings.Join(sections, ","),
		InstitutionRows: institutionRows,
		CourseRows:      courseRows,
		AppliedAt:       time.Now().UTC(),
	}
}

// SectionList splits the stored section names.
func (r ApplyRecord) SectionList() []string {
	if r.Sections == "" {
		return []string{}
	}
	return strings.Split(r.Sections, ",")
}

// MarshalJSON exposes sections as a list.
func (r ApplyRecord) MarshalJSON() ([]byte, error) {
	type alias ApplyRecord
	return json.Marshal(struct {
		alias
		Sections []string `json:"sections"`
	}{alias(r), r.SectionList()})
}

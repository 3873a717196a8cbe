package ports

import (
	"context"
	"encoding/json"

	"calcdash/domain/dashboard"
	"calcdash/models"
)

// SectionStore persists dashboard sections as JSON documents
type SectionStore interface {
	// Get returns the stored payload of one section; ok is false when the
	// section has never been saved.
	Get(ctx context.Context, sec dashboard.Section) (payload json.RawMessage, ok bool, err error)

	// GetAll returns every stored section payload.
	GetAll(ctx context.Context) (map[dashboard.Section]json.RawMessage, error)

	// Save replaces one section.
	Save(ctx context.Context, sec dashboard.Section, payload interface{}) error

	// SaveAll replaces several sections in one transaction.
	SaveAll(ctx context.Context, payloads map[dashboard.Section]interface{}) error

	// Reset deletes every stored section so reads fall back to defaults.
	Reset(ctx context.Context) error
}

// ApplyLog records committed upload applies
type ApplyLog interface {
	RecordApply(ctx context.Context, rec models.ApplyRecord) error
	ListApplies(ctx context.Context, limit int) ([]models.ApplyRecord, error)
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"calcdash/domain/dashboard"
	"calcdash/internal/errors"
	"calcdash/models"
	"calcdash/ports"

	"github.com/jmoiron/sqlx"
)

// SectionRepository implements SectionStore and ApplyLog on any sqlx driver
// that understands ON CONFLICT upserts (PostgreSQL, SQLite).
type SectionRepository struct {
	db *sqlx.DB
}

var (
	_ ports.SectionStore = (*SectionRepository)(nil)
	_ ports.ApplyLog     = (*SectionRepository)(nil)
)

// NewSectionRepository creates a new section repository
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

const upsertSectionSQL = `
	INSERT INTO dashboard_sections (section, payload, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT (section) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
`

// Get returns the stored payload of one section
func (r *SectionRepository) Get(ctx context.Context, sec dashboard.Section) (json.RawMessage, bool, error) {
	var payload string
	err := r.db.GetContext(ctx, &payload,
		r.db.Rebind(`SELECT payload FROM dashboard_sections WHERE section = ?`), string(sec))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(errors.DatabaseError(err.Error()), "failed to load section %s", sec)
	}
	return json.RawMessage(payload), true, nil
}

// GetAll returns every stored section payload. Rows whose name is no longer a
// known section are ignored.
func (r *SectionRepository) GetAll(ctx context.Context) (map[dashboard.Section]json.RawMessage, error) {
	var rows []models.StoredSection
	err := r.db.SelectContext(ctx, &rows, `SELECT section, payload FROM dashboard_sections ORDER BY section`)
	if err != nil {
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to load sections")
	}

	out := make(map[dashboard.Section]json.RawMessage, len(rows))
	for _, row := range rows {
		if sec, ok := dashboard.ParseSection(row.Section); ok {
			out[sec] = json.RawMessage(row.Payload)
		}
	}
	return out, nil
}

// Save replaces one section
func (r *SectionRepository) Save(ctx context.Context, sec dashboard.Section, payload interface{}) error {
	return r.SaveAll(ctx, map[dashboard.Section]interface{}{sec: payload})
}

// SaveAll replaces several sections atomically
func (r *SectionRepository) SaveAll(ctx context.Context, payloads map[dashboard.Section]interface{}) error {
	if len(payloads) == 0 {
		return nil
	}

	encoded := make(map[dashboard.Section]string, len(payloads))
	for sec, payload := range payloads {
		b, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrapf(err, "failed to encode section %s", sec)
		}
		encoded[sec] = string(b)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt := tx.Rebind(upsertSectionSQL)
	now := time.Now().UTC()
	// Fixed order keeps lock acquisition deterministic.
	for _, sec := range dashboard.AllSections {
		payload, ok := encoded[sec]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt, string(sec), payload, now); err != nil {
			return errors.Wrapf(errors.DatabaseError(err.Error()), "failed to save section %s", sec)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "failed to commit sections")
	}
	return nil
}

// Reset deletes every stored section
func (r *SectionRepository) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM dashboard_sections`); err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "failed to reset sections")
	}
	return nil
}

// RecordApply stores an apply audit entry
func (r *SectionRepository) RecordApply(ctx context.Context, rec models.ApplyRecord) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO upload_applies (id, mode, sections, institution_rows, course_rows, applied_at)
		VALUES (:id, :mode, :sections, :institution_rows, :course_rows, :applied_at)
	`, rec)
	if err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "failed to record apply")
	}
	return nil
}

// ListApplies returns the most recent applies, newest first
func (r *SectionRepository) ListApplies(ctx context.Context, limit int) ([]models.ApplyRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	records := []models.ApplyRecord{}
	err := r.db.SelectContext(ctx, &records, fmt.Sprintf(`
		SELECT id, mode, sections, institution_rows, course_rows, applied_at
		FROM upload_applies
		ORDER BY applied_at DESC
		LIMIT %d
	`, limit))
	if err != nil {
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "failed to list applies")
	}
	return records, nil
}

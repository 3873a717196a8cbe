package app

import (
	"context"
	"encoding/json"
	"io"

	"calcdash/adapters/excel"
	"calcdash/domain/dashboard"
	"calcdash/internal"
	"calcdash/internal/errors"
	"calcdash/internal/mapper"
	"calcdash/models"
	"calcdash/ports"
)

// DefaultHistoryLimit caps History when no limit is given.
const DefaultHistoryLimit = 20

// DashboardService reads and edits the persisted dashboard
type DashboardService struct {
	sections ports.SectionStore
	applies  ports.ApplyLog
	logger   *internal.Logger
}

// NewDashboardService creates a dashboard service. applies may be nil.
func NewDashboardService(sections ports.SectionStore, applies ports.ApplyLog, logger *internal.Logger) *DashboardService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DashboardService{
		sections: sections,
		applies:  applies,
		logger:   logger.With("DashboardService"),
	}
}

// GetAll returns every section, stored values merged over the defaults
func (s *DashboardService) GetAll(ctx context.Context) (dashboard.Data, error) {
	return loadDashboard(ctx, s.sections, s.logger)
}

// GetSection returns one section by name
func (s *DashboardService) GetSection(ctx context.Context, name string) (interface{}, error) {
	sec, ok := dashboard.ParseSection(name)
	if !ok {
		return nil, errors.NotFound("section " + name)
	}
	data, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return data.Payload(sec), nil
}

// SaveSection sanitizes a manually edited payload, merges it over the
// current value and stores the result. The merged section is returned.
func (s *DashboardService) SaveSection(ctx context.Context, name string, raw []byte) (interface{}, error) {
	sec, ok := dashboard.ParseSection(name)
	if !ok {
		return nil, errors.NotFound("section " + name)
	}
	if !sec.Editable() {
		return nil, errors.ValidationError(name + " is computed from uploads and cannot be edited")
	}

	clean, err := dashboard.Sanitize(sec, raw)
	if err != nil {
		return nil, errors.ValidationError(err.Error())
	}
	encoded, err := json.Marshal(clean)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode section")
	}

	current, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	merged, err := dashboard.MergeStored(current, map[dashboard.Section]json.RawMessage{sec: encoded})
	if err != nil {
		return nil, errors.ValidationError(err.Error())
	}

	payload := merged.Payload(sec)
	if err := s.sections.Save(ctx, sec, payload); err != nil {
		return nil, err
	}
	s.logger.Info("section %s saved", sec)
	return payload, nil
}

// Reset deletes every stored section so reads return the defaults again
func (s *DashboardService) Reset(ctx context.Context) error {
	if err := s.sections.Reset(ctx); err != nil {
		return err
	}
	s.logger.Info("dashboard reset to defaults")
	return nil
}

// Client returns the view consumed by the dashboard script
func (s *DashboardService) Client(ctx context.Context) (dashboard.ClientView, error) {
	data, err := s.GetAll(ctx)
	if err != nil {
		return dashboard.ClientView{}, err
	}
	return data.Client(), nil
}

// Export writes the current dashboard as an XLSX workbook
func (s *DashboardService) Export(ctx context.Context, w io.Writer) error {
	data, err := s.GetAll(ctx)
	if err != nil {
		return err
	}
	if err := excel.ExportWorkbook(w, data); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}

// StateScript renders the current state data as a script global
func (s *DashboardService) StateScript(ctx context.Context) (string, error) {
	data, err := s.GetAll(ctx)
	if err != nil {
		return "", err
	}
	return mapper.StateScript(data.StateData)
}

// History lists recent applies, newest first
func (s *DashboardService) History(ctx context.Context, limit int) ([]models.ApplyRecord, error) {
	if s.applies == nil {
		return []models.ApplyRecord{}, nil
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.applies.ListApplies(ctx, limit)
}

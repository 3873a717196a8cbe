package app

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"calcdash/adapters/excel"
	"calcdash/domain/dashboard"
	"calcdash/internal"
	"calcdash/internal/config"
	"calcdash/internal/errors"
	"calcdash/internal/mapper"
	"calcdash/internal/reconcile"
	"calcdash/models"
	"calcdash/ports"
)

// FileType names which roster an upload carries
type FileType string

const (
	FileInstitutions FileType = "institutions"
	FileCourses      FileType = "courses"
)

// ParseFileType resolves the file_type form value.
func ParseFileType(s string) (FileType, bool) {
	switch FileType(strings.ToLower(strings.TrimSpace(s))) {
	case FileInstitutions:
		return FileInstitutions, true
	case FileCourses:
		return FileCourses, true
	}
	return "", false
}

// Label is the capitalized name used in messages.
func (t FileType) Label() string {
	if t == FileInstitutions {
		return "Institutions"
	}
	return "Courses"
}

// Required returns the columns the roster must carry.
func (t FileType) Required() []excel.ColumnRequirement {
	if t == FileInstitutions {
		return mapper.InstitutionColumns
	}
	return mapper.CourseColumns
}

// UploadRequest is one uploaded roster file
type UploadRequest struct {
	FileType FileType
	Filename string
	Data     []byte
}

// UploadResult describes a parsed upload waiting to be applied
type UploadResult struct {
	Key     string   `json:"key"`
	Rows    int      `json:"rows"`
	Headers []string `json:"headers"`
	Message string   `json:"message"`
}

// ApplyRequest references previously uploaded rosters by token
type ApplyRequest struct {
	InstitutionsKey string `json:"institutions_key"`
	CoursesKey      string `json:"courses_key"`
	PreviewOnly     bool   `json:"preview_only"`
}

// ApplyResult is returned by Apply and ApplyTables
type ApplyResult struct {
	Mode            reconcile.Mode                    `json:"mode"`
	Message         string                            `json:"message,omitempty"`
	Computed        map[dashboard.Section]interface{} `json:"computed,omitempty"`
	UpdatedSections []dashboard.Section               `json:"updated_sections,omitempty"`
	Preview         map[dashboard.Section]string      `json:"preview,omitempty"`
}

// storedUpload is the temp store document written by Upload
type storedUpload struct {
	FileType FileType           `json:"file_type"`
	Filename string             `json:"filename"`
	Table    *excel.ParsedTable `json:"table"`
}

const (
	msgFullApply    = "All dashboard data updated successfully."
	msgPartialApply = "Uploaded data applied successfully. Non-uploaded sections were kept unchanged."
)

// UploadService parses roster uploads and applies them to the dashboard
type UploadService struct {
	temp     ports.TempStore
	sections ports.SectionStore
	applies  ports.ApplyLog
	cfg      config.UploadConfig
	logger   *internal.Logger
}

// NewUploadService creates an upload service. applies may be nil, in which
// case applies are not recorded.
func NewUploadService(temp ports.TempStore, sections ports.SectionStore, applies ports.ApplyLog, cfg config.UploadConfig, logger *internal.Logger) *UploadService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &UploadService{
		temp:     temp,
		sections: sections,
		applies:  applies,
		cfg:      cfg,
		logger:   logger.With("UploadService"),
	}
}

// ParseFile checks size and extension, parses the file with the roster's
// preferred sheet and validates its columns.
func (s *UploadService) ParseFile(fileType FileType, filename string, data []byte) (*excel.ParsedTable, error) {
	if limit := s.cfg.MaxFileSizeBytes(); limit > 0 && int64(len(data)) > limit {
		return nil, errors.InvalidInput(fmt.Sprintf("File is too large. Maximum size is %d MB.", s.cfg.MaxFileSizeMB))
	}
	ext := filepath.Ext(filename)
	if !excel.SupportedExtension(ext) {
		return nil, errors.InvalidInput("Invalid file type. Please upload an XLSX or CSV file.")
	}

	sheet := s.cfg.CoursesSheet
	if fileType == FileInstitutions {
		sheet = s.cfg.InstitutionsSheet
	}
	opts := excel.DefaultParseOptions().WithSheet(sheet).WithExtension(ext)

	table, err := excel.NewDataReader(opts, s.logger).Parse(data)
	if err != nil {
		return nil, err
	}
	if err := excel.RequireColumns(table, fileType.Required()); err != nil {
		return nil, err
	}
	return table, nil
}

// Upload parses a roster and parks it in the temp store until it is applied
func (s *UploadService) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if _, ok := ParseFileType(string(req.FileType)); !ok {
		return nil, errors.InvalidInput("Invalid file type. Expected institutions or courses.")
	}
	if len(req.Data) == 0 {
		return nil, errors.InvalidInput("No file uploaded.")
	}

	table, err := s.ParseFile(req.FileType, req.Filename, req.Data)
	if err != nil {
		return nil, err
	}

	blob, err := json.Marshal(storedUpload{FileType: req.FileType, Filename: filepath.Base(req.Filename), Table: table})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode parsed upload")
	}
	key, err := s.temp.Put(ctx, blob)
	if err != nil {
		return nil, errors.Wrap(errors.InternalError(err.Error()), "failed to store parsed upload")
	}

	s.logger.Info("%s upload %q parsed (%d rows) as %s", req.FileType, req.Filename, table.RowCount(), key)
	return &UploadResult{
		Key:     key,
		Rows:    table.RowCount(),
		Headers: table.Headers,
		Message: fmt.Sprintf("%s file parsed successfully (%d rows).", req.FileType.Label(), table.RowCount()),
	}, nil
}

// Apply loads the referenced uploads and applies them. Tokens are deleted
// only after a committed apply.
func (s *UploadService) Apply(ctx context.Context, req ApplyRequest) (*ApplyResult, error) {
	instKey := strings.TrimSpace(req.InstitutionsKey)
	courseKey := strings.TrimSpace(req.CoursesKey)
	if instKey == "" && courseKey == "" {
		return nil, errors.InvalidInput("No uploaded data found. Please upload at least one file.")
	}

	var (
		g                 errgroup.Group
		inst, courses     *excel.ParsedTable
		instErr, courseErr error
	)
	if instKey != "" {
		g.Go(func() error {
			inst, instErr = s.load(ctx, instKey, FileInstitutions)
			return instErr
		})
	}
	if courseKey != "" {
		g.Go(func() error {
			courses, courseErr = s.load(ctx, courseKey, FileCourses)
			return courseErr
		})
	}
	if err := g.Wait(); err != nil {
		if instErr != nil {
			return nil, instErr
		}
		return nil, courseErr
	}

	result, err := s.ApplyTables(ctx, inst, courses, req.PreviewOnly)
	if err != nil || req.PreviewOnly {
		return result, err
	}

	for _, key := range []string{instKey, courseKey} {
		if key == "" {
			continue
		}
		if err := s.temp.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to delete temp upload %s: %v", key, err)
		}
	}
	return result, nil
}

// load reads one parked upload and checks it carries the expected roster.
func (s *UploadService) load(ctx context.Context, key string, want FileType) (*excel.ParsedTable, error) {
	expired := errors.UploadExpired(want.Label() + " data expired or not found. Please re-upload the file.")

	blob, ok, err := s.temp.Get(ctx, key)
	if err != nil {
		return nil, errors.Wrap(errors.InternalError(err.Error()), "failed to read temp upload")
	}
	if !ok {
		return nil, expired
	}

	var stored storedUpload
	if err := json.Unmarshal(blob, &stored); err != nil || stored.Table == nil {
		s.logger.Warn("temp upload %s is unreadable: %v", key, err)
		return nil, expired
	}
	if stored.FileType != want {
		return nil, errors.InvalidInput(fmt.Sprintf("Upload %s is a %s file, not %s.", key, stored.FileType, want))
	}
	return stored.Table, nil
}

// ApplyTables computes every section from the given rosters (either may be
// nil), reconciles the result against the stored dashboard and, unless
// previewOnly is set, saves the updated sections.
func (s *UploadService) ApplyTables(ctx context.Context, inst, courses *excel.ParsedTable, previewOnly bool) (*ApplyResult, error) {
	if inst == nil && courses == nil {
		return nil, errors.InvalidInput("No uploaded data found. Please upload at least one file.")
	}

	computed := mapper.ComputeAll(excel.ToRecords(inst), excel.ToRecords(courses))

	previous, err := loadDashboard(ctx, s.sections, s.logger)
	if err != nil {
		return nil, err
	}
	plan := reconcile.Reconcile(previous, computed, inst != nil, courses != nil)

	if previewOnly {
		return &ApplyResult{Mode: plan.Mode, Preview: mapper.Preview(plan.Result)}, nil
	}

	payloads := plan.Payloads()
	if err := s.sections.SaveAll(ctx, payloads); err != nil {
		return nil, err
	}
	s.logger.Info("applied %s upload, updated sections: %v", plan.Mode, plan.Updated)

	if s.applies != nil {
		names := make([]string, len(plan.Updated))
		for i, sec := range plan.Updated {
			names[i] = string(sec)
		}
		rec := models.NewApplyRecord(string(plan.Mode), names, inst.RowCount(), courses.RowCount())
		if err := s.applies.RecordApply(ctx, rec); err != nil {
			s.logger.Warn("failed to record apply: %v", err)
		}
	}

	message := msgPartialApply
	if plan.Mode == reconcile.ModeFull {
		message = msgFullApply
	}
	return &ApplyResult{
		Mode:            plan.Mode,
		Message:         message,
		Computed:        payloads,
		UpdatedSections: plan.Updated,
	}, nil
}

// loadDashboard returns the stored sections merged over the defaults. A
// stored section that no longer decodes falls back to its default.
func loadDashboard(ctx context.Context, store ports.SectionStore, logger *internal.Logger) (dashboard.Data, error) {
	stored, err := store.GetAll(ctx)
	if err != nil {
		return dashboard.Data{}, err
	}
	data, err := dashboard.MergeStored(dashboard.Defaults(), stored)
	if err != nil {
		logger.Warn("ignoring unreadable stored sections: %v", err)
	}
	return data, nil
}

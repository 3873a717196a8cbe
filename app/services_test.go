package app

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"calcdash/adapters/postgres"
	"calcdash/domain/dashboard"
	"calcdash/internal/config"
	"calcdash/internal/errors"
	"calcdash/internal/migration"
	"calcdash/internal/reconcile"
	"calcdash/internal/upload"
)

const (
	institutionsCSV = "State,Region,Sector,School,IPED ID,FTE Enrollment,Calc Level,Calc I Enrollment,Calc II Enrollment,Publisher_Norm,Avg_Price\n" +
		"California,West (CA),Public,Alpha College,100001,5000,Calculus I,300,100,Pearson,120\n" +
		"Texas,South (TX),Private,Beta University,100002,2000,Calculus II,50,150,Cengage,90\n"

	coursesCSV = "State,School,Period,Enrollments,Book Title Normalized,Calc Level,Region,Sector,Publisher_Normalized,Textbook_Price\n" +
		"CA,Alpha College,Fall 2024,100,Thomas Calculus,Calculus I,West (CA),Public,Pearson,$120.00\n" +
		"TX,Beta University,Fall 2024,50,OpenStax Calculus,Calculus II,South (TX),Private,OpenStax,0\n"
)

type fixture struct {
	repo      *postgres.SectionRepository
	temp      *upload.LocalTempStore
	uploads   *UploadService
	dashboard *DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migration.NewRunner().Run(context.Background(), db))

	temp, err := upload.NewLocalTempStore(t.TempDir(), time.Hour, nil)
	require.NoError(t, err)

	repo := postgres.NewSectionRepository(db)
	cfg := config.UploadConfig{
		MaxFileSizeMB:     1,
		InstitutionsSheet: "All_Institutions",
		CoursesSheet:      "All_Courses",
	}
	return &fixture{
		repo:      repo,
		temp:      temp,
		uploads:   NewUploadService(temp, repo, repo, cfg, nil),
		dashboard: NewDashboardService(repo, repo, nil),
	}
}

func (f *fixture) upload(t *testing.T, fileType FileType, body string) string {
	t.Helper()
	res, err := f.uploads.Upload(context.Background(), UploadRequest{
		FileType: fileType,
		Filename: string(fileType) + ".csv",
		Data:     []byte(body),
	})
	require.NoError(t, err)
	return res.Key
}

func TestUpload(t *testing.T) {
	f := newFixture(t)

	res, err := f.uploads.Upload(context.Background(), UploadRequest{
		FileType: FileInstitutions,
		Filename: "institutions.csv",
		Data:     []byte(institutionsCSV),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, "Institutions file parsed successfully (2 rows).", res.Message)
	assert.Contains(t, res.Headers, "Calc Level")

	_, ok, err := f.temp.Get(context.Background(), res.Key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUploadRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  UploadRequest
		code string
	}{
		{"unknown type", UploadRequest{FileType: "students", Filename: "a.csv", Data: []byte(coursesCSV)}, errors.CodeInvalidInput},
		{"empty file", UploadRequest{FileType: FileCourses, Filename: "a.csv"}, errors.CodeInvalidInput},
		{"bad extension", UploadRequest{FileType: FileCourses, Filename: "a.xls", Data: []byte(coursesCSV)}, errors.CodeInvalidInput},
		{"too large", UploadRequest{FileType: FileCourses, Filename: "a.csv", Data: bytes.Repeat([]byte("x"), 1024*1024+1)}, errors.CodeInvalidInput},
		{"wrong columns", UploadRequest{FileType: FileInstitutions, Filename: "a.csv", Data: []byte(coursesCSV)}, errors.CodeMissingColumns},
		{"header only", UploadRequest{FileType: FileCourses, Filename: "a.csv", Data: []byte("State,School\n")}, errors.CodeNoData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uploads.Upload(ctx, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))
		})
	}
}

func TestApplyCoursesOnlyKeepsInstitutionSections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	defaults := dashboard.Defaults()

	key := f.upload(t, FileCourses, coursesCSV)
	res, err := f.uploads.Apply(ctx, ApplyRequest{CoursesKey: key})
	require.NoError(t, err)

	assert.Equal(t, reconcile.ModePartial, res.Mode)
	assert.Equal(t, msgPartialApply, res.Message)
	assert.Contains(t, res.UpdatedSections, dashboard.SectionPublishers)
	assert.NotContains(t, res.UpdatedSections, dashboard.SectionTopInstitutions)
	assert.Contains(t, res.Computed, dashboard.SectionPeriodData)

	data, err := f.dashboard.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaults.TopInstitutions, data.TopInstitutions)
	assert.Equal(t, defaults.KPIs.TotalInstitutions, data.KPIs.TotalInstitutions)
	require.Len(t, data.Publishers, 2)
	assert.Equal(t, "Pearson", data.Publishers[0].Name)
	require.Len(t, data.PeriodData, 1)
	assert.Equal(t, "Fall 2024", data.PeriodData[0].Period)
	assert.Equal(t, 33, data.KPIs.OERShare)

	// the token is consumed
	_, ok, err := f.temp.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	history, err := f.dashboard.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "partial", history[0].Mode)
	assert.Equal(t, 2, history[0].CourseRows)
	assert.Equal(t, 0, history[0].InstitutionRows)
}

func TestApplyFull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	instKey := f.upload(t, FileInstitutions, institutionsCSV)
	courseKey := f.upload(t, FileCourses, coursesCSV)

	res, err := f.uploads.Apply(ctx, ApplyRequest{InstitutionsKey: instKey, CoursesKey: courseKey})
	require.NoError(t, err)
	assert.Equal(t, reconcile.ModeFull, res.Mode)
	assert.Equal(t, msgFullApply, res.Message)
	assert.Equal(t, dashboard.AllSections, res.UpdatedSections)

	data, err := f.dashboard.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, data.KPIs.TotalInstitutions)
	assert.Equal(t, 600, data.KPIs.TotalEnrollment)
	require.Len(t, data.TopInstitutions, 2)
	assert.Equal(t, "Alpha College", data.TopInstitutions[0].Name)
	require.Len(t, data.StateData, 2)
	assert.Equal(t, "California", data.StateData[0].State)
}

func TestApplyPreviewOnlySavesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	key := f.upload(t, FileInstitutions, institutionsCSV)
	res, err := f.uploads.Apply(ctx, ApplyRequest{InstitutionsKey: key, PreviewOnly: true})
	require.NoError(t, err)
	assert.Equal(t, reconcile.ModePartial, res.Mode)
	assert.Empty(t, res.Message)
	assert.Contains(t, res.Preview, dashboard.SectionKPIs)
	assert.Contains(t, res.Preview[dashboard.SectionTopInstitutions], "Alpha College")

	stored, err := f.repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)

	// the token survives a preview
	_, ok, err := f.temp.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestApplyErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uploads.Apply(ctx, ApplyRequest{})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Equal(t, "No uploaded data found. Please upload at least one file.", errors.Message(err))

	courseKey := f.upload(t, FileCourses, coursesCSV)
	_, err = f.uploads.Apply(ctx, ApplyRequest{InstitutionsKey: uuid.NewString(), CoursesKey: courseKey})
	require.Error(t, err)
	assert.Equal(t, errors.CodeUploadExpired, errors.GetCode(err))
	assert.Equal(t, "Institutions data expired or not found. Please re-upload the file.", errors.Message(err))

	_, err = f.uploads.Apply(ctx, ApplyRequest{CoursesKey: "../../etc/passwd"})
	require.Error(t, err)
	assert.Equal(t, "Courses data expired or not found. Please re-upload the file.", errors.Message(err))

	// a courses upload cannot be applied as institutions
	_, err = f.uploads.Apply(ctx, ApplyRequest{InstitutionsKey: courseKey})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	stored, err := f.repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestDashboardDefaultsAndSections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	data, err := f.dashboard.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, dashboard.Defaults(), data)

	pubs, err := f.dashboard.GetSection(ctx, "publishers")
	require.NoError(t, err)
	assert.Equal(t, dashboard.Defaults().Publishers, pubs)

	_, err = f.dashboard.GetSection(ctx, "nope")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestSaveSection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	defaults := dashboard.Defaults()

	saved, err := f.dashboard.SaveSection(ctx, "kpis", []byte(`{"total_institutions": 42, "bogus": 1}`))
	require.NoError(t, err)
	kpis, ok := saved.(dashboard.KPIs)
	require.True(t, ok)
	assert.Equal(t, 42, kpis.TotalInstitutions)
	assert.Equal(t, defaults.KPIs.TotalEnrollment, kpis.TotalEnrollment)

	data, err := f.dashboard.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, data.KPIs.TotalInstitutions)

	_, err = f.dashboard.SaveSection(ctx, "state_data", []byte(`[]`))
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))

	_, err = f.dashboard.SaveSection(ctx, "kpis", []byte(`{not json`))
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))

	_, err = f.dashboard.SaveSection(ctx, "missing", []byte(`{}`))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	require.NoError(t, f.dashboard.Reset(ctx))
	data, err = f.dashboard.GetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, defaults.KPIs, data.KPIs)
}

func TestExportAndStateScript(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, f.dashboard.Export(ctx, &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")))

	script, err := f.dashboard.StateScript(ctx)
	require.NoError(t, err)
	assert.Contains(t, script, "const stateData = ")

	client, err := f.dashboard.Client(ctx)
	require.NoError(t, err)
	assert.Equal(t, dashboard.Defaults().Publishers, client.Publishers)
}

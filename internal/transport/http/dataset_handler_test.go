package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apierrors "github.com/s22a0058-ai/FYP/internal/errors"
	"github.com/s22a0058-ai/FYP/internal/exporter"
	appmw "github.com/s22a0058-ai/FYP/internal/middleware"
	"github.com/s22a0058-ai/FYP/internal/services"
	"github.com/s22a0058-ai/FYP/pkg/contracts/domain"
)

type fakeDatasetService struct {
	records      []domain.Record
	lastFilter   domain.RecordFilter
	err          error
	midStreamErr error
	refreshed    bool
}

func (f *fakeDatasetService) Records(ctx context.Context, filter domain.RecordFilter) ([]domain.Record, error) {
	f.lastFilter = filter
	return f.records, f.err
}

func (f *fakeDatasetService) KPIs(ctx context.Context, filter domain.RecordFilter) (domain.DatasetKPIs, error) {
	if f.err != nil {
		return domain.DatasetKPIs{}, f.err
	}
	return domain.DatasetKPIs{TotalChildren: len(f.records)}, nil
}

func (f *fakeDatasetService) Summaries(ctx context.Context, filter domain.RecordFilter) (domain.DatasetSummary, error) {
	if f.err != nil {
		return domain.DatasetSummary{}, f.err
	}
	return domain.DatasetSummary{
		Gender: []domain.CategoryCount{{Category: "LELAKI", Count: len(f.records)}},
	}, nil
}

func (f *fakeDatasetService) SummaryTable(ctx context.Context, name string, filter domain.RecordFilter) (exporter.SummaryTable, error) {
	if f.err != nil {
		return exporter.SummaryTable{}, f.err
	}
	if name != "gender_distribution" {
		return exporter.SummaryTable{}, services.ErrSummaryNotFound
	}
	return exporter.SummaryTable{Name: name, Headers: []string{"category", "count"}}, nil
}

func (f *fakeDatasetService) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	if f.err != nil {
		return domain.FilterOptions{}, f.err
	}
	return domain.FilterOptions{Genders: []string{"LELAKI", "PEREMPUAN"}}, nil
}

func (f *fakeDatasetService) Refresh(ctx context.Context) (*services.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.refreshed = true
	return &services.Snapshot{Records: f.records, Source: "local:test.csv"}, nil
}

func (f *fakeDatasetService) ExportCSV(ctx context.Context, w io.Writer, filter domain.RecordFilter, bom bool) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if bom {
		w.Write([]byte{0xEF, 0xBB, 0xBF})
	}
	w.Write([]byte("gender\nLELAKI\n"))
	if f.midStreamErr != nil {
		return 0, f.midStreamErr
	}
	return len(f.records), nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testAdminPassword = "test-admin"

func newDatasetRouter(t *testing.T, svc *fakeDatasetService) http.Handler {
	t.Helper()
	logger := discardLogger()
	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	auth := appmw.NewAdminAuth(string(hash), logger, nil)
	handler := NewDatasetHandler(svc, auth, logger, apierrors.NewErrorHandler(logger, false))
	return handler.Routes()
}

func TestDatasetHandlerGetRecords(t *testing.T) {
	svc := &fakeDatasetService{records: []domain.Record{{Gender: "LELAKI", District: "Bachok"}}}
	router := newDatasetRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/records?gender=LELAKI&district=Bachok&district=Tumpat", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	assert.Equal(t, []string{"LELAKI"}, svc.lastFilter.Genders)
	assert.Equal(t, []string{"Bachok", "Tumpat"}, svc.lastFilter.Districts)
}

func TestDatasetHandlerGetRecordsSourceUnavailable(t *testing.T) {
	svc := &fakeDatasetService{err: services.ErrSourceUnavailable}
	router := newDatasetRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/records", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dataset Source Unavailable")
}

func TestDatasetHandlerGetKPIs(t *testing.T) {
	svc := &fakeDatasetService{records: make([]domain.Record, 7)}
	router := newDatasetRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/kpis", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_children":7`)
}

func TestDatasetHandlerGetSummaryTable(t *testing.T) {
	svc := &fakeDatasetService{}
	router := newDatasetRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/summaries/gender_distribution", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/summaries/unknown", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDatasetHandlerExportCSV(t *testing.T) {
	svc := &fakeDatasetService{records: make([]domain.Record, 2)}
	router := newDatasetRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\xEF\xBB\xBF"))

	req = httptest.NewRequest(http.MethodGet, "/export?bom=0", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.False(t, strings.HasPrefix(rec.Body.String(), "\xEF\xBB\xBF"))
}

func TestDatasetHandlerExportCSVSourceUnavailable(t *testing.T) {
	svc := &fakeDatasetService{err: services.ErrSourceUnavailable}
	router := newDatasetRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.NotContains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Body.String(), "Dataset Source Unavailable")
}

func TestDatasetHandlerExportCSVMidStreamFailure(t *testing.T) {
	svc := &fakeDatasetService{midStreamErr: errors.New("connection reset")}
	router := newDatasetRouter(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// The stream already started, so the CSV headers stand and the body
	// stays truncated rather than turning into a problem document.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Body.String(), "gender")
	assert.NotContains(t, rec.Body.String(), "application/problem")
}

func TestDatasetHandlerRefreshRequiresAdmin(t *testing.T) {
	svc := &fakeDatasetService{}
	router := newDatasetRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, svc.refreshed)
}

func TestDatasetHandlerRefreshWithAdmin(t *testing.T) {
	svc := &fakeDatasetService{records: make([]domain.Record, 3)}
	router := newDatasetRouter(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
	req.Header.Set(appmw.AdminPasswordHeader, testAdminPassword)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.refreshed)
	assert.Contains(t, rec.Body.String(), `"record_count":3`)
}

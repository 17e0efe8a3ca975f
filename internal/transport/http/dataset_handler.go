package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "github.com/s22a0058-ai/FYP/internal/errors"
	appmw "github.com/s22a0058-ai/FYP/internal/middleware"
	"github.com/s22a0058-ai/FYP/internal/services"
	apiv1 "github.com/s22a0058-ai/FYP/pkg/contracts/api/v1"
	"github.com/s22a0058-ai/FYP/pkg/contracts/domain"
)

// DatasetHandler serves the cleaned dataset: records, KPIs, summary tables,
// filter options, CSV export, and the admin-forced refresh.
type DatasetHandler struct {
	service      DatasetServiceInterface
	adminAuth    *appmw.AdminAuth
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDatasetHandler creates a dataset handler with RFC 7807 error handling.
func NewDatasetHandler(service DatasetServiceInterface, adminAuth *appmw.AdminAuth, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:      service,
		adminAuth:    adminAuth,
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes.
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/records", h.GetRecords)
		r.Get("/kpis", h.GetKPIs)
		r.Get("/summaries", h.GetSummaries)
		r.Get("/summaries/{name}", h.GetSummaryTable)
		r.Get("/filters", h.GetFilterOptions)
	})

	// Export streams CSV, not JSON.
	r.Get("/export", h.ExportCSV)

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(h.adminAuth.Handler)
		r.Use(appmw.AuditLog(h.logger))
		r.Post("/refresh", h.Refresh)
	})

	return r
}

func filterFromRequest(r *http.Request) domain.RecordFilter {
	q := apiv1.ParseRecordsQuery(r)
	return domain.RecordFilter{
		Genders:   q.Genders,
		Races:     q.Races,
		Districts: q.Districts,
	}
}

// GetRecords handles GET /api/dataset/records
func (h *DatasetHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	filter := filterFromRequest(r)

	records, err := h.service.Records(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err, "records")
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"count":   len(records),
		"records": records,
	})
}

// GetKPIs handles GET /api/dataset/kpis
func (h *DatasetHandler) GetKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.service.KPIs(r.Context(), filterFromRequest(r))
	if err != nil {
		h.handleServiceError(w, r, err, "kpis")
		return
	}
	render.JSON(w, r, kpis)
}

// GetSummaries handles GET /api/dataset/summaries
func (h *DatasetHandler) GetSummaries(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summaries(r.Context(), filterFromRequest(r))
	if err != nil {
		h.handleServiceError(w, r, err, "summaries")
		return
	}
	render.JSON(w, r, summary)
}

// GetSummaryTable handles GET /api/dataset/summaries/{name}
func (h *DatasetHandler) GetSummaryTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("name", "Summary table name is required"))
		return
	}

	table, err := h.service.SummaryTable(r.Context(), name, filterFromRequest(r))
	if err != nil {
		if errors.Is(err, services.ErrSummaryNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.New(
				http.StatusNotFound,
				"SUMMARY_NOT_FOUND",
				fmt.Sprintf("Unknown summary table: %s", name),
			))
			return
		}
		h.handleServiceError(w, r, err, "summary_table")
		return
	}
	render.JSON(w, r, table)
}

// GetFilterOptions handles GET /api/dataset/filters
func (h *DatasetHandler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "filters")
		return
	}
	render.JSON(w, r, opts)
}

// exportWriter defers the CSV response headers until the first streamed
// byte, so a snapshot failure before any output can still render a
// problem response.
type exportWriter struct {
	w        http.ResponseWriter
	filename string
	started  bool
}

func (ew *exportWriter) Write(p []byte) (int, error) {
	if !ew.started {
		ew.started = true
		ew.w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		ew.w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, ew.filename))
	}
	return ew.w.Write(p)
}

// ExportCSV handles GET /api/dataset/export
func (h *DatasetHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	opts := apiv1.ParseExportQuery(r)

	filename := fmt.Sprintf("fsn_records_%s.csv", time.Now().Format("2006-01-02"))
	ew := &exportWriter{w: w, filename: filename}

	n, err := h.service.ExportCSV(r.Context(), ew, filterFromRequest(r), opts.BOM)
	if err != nil {
		if !ew.started {
			// Nothing on the wire yet; a problem response is still possible.
			h.handleServiceError(w, r, err, "export")
			return
		}
		// Headers are already committed; log instead of switching to a
		// problem response mid-stream.
		h.logger.ErrorContext(r.Context(), "export failed mid-stream",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(r.Context(), "dataset exported",
		slog.Int("records", n),
		slog.String("filename", filename))
}

// Refresh handles POST /api/dataset/refresh (admin only)
func (h *DatasetHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Refresh(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err, "refresh")
		return
	}

	h.logger.InfoContext(r.Context(), "dataset refreshed",
		slog.String("source", snap.Source),
		slog.Int("records", len(snap.Records)))

	render.JSON(w, r, map[string]interface{}{
		"status":        "refreshed",
		"source":        snap.Source,
		"record_count":  len(snap.Records),
		"loaded_at":     snap.LoadedAt,
		"load_duration": snap.Duration.String(),
	})
}

func (h *DatasetHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	h.logger.ErrorContext(r.Context(), "dataset operation failed",
		slog.String("operation", operation),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("error", err.Error()))
	h.errorHandler.HandleError(w, r, err)
}

package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "github.com/s22a0058-ai/FYP/internal/errors"
	appmw "github.com/s22a0058-ai/FYP/internal/middleware"
	"github.com/s22a0058-ai/FYP/internal/services"
	apiv1 "github.com/s22a0058-ai/FYP/pkg/contracts/api/v1"
)

// FeedbackHandler serves feedback submission and the admin views over the
// stored corpus.
type FeedbackHandler struct {
	service      FeedbackServiceInterface
	adminAuth    *appmw.AdminAuth
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewFeedbackHandler creates a feedback handler with RFC 7807 error handling.
func NewFeedbackHandler(service FeedbackServiceInterface, adminAuth *appmw.AdminAuth, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *FeedbackHandler {
	return &FeedbackHandler{
		service:      service,
		adminAuth:    adminAuth,
		logger:       logger.With(slog.String("component", "feedback_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the feedback routes.
func (h *FeedbackHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Submit)
	r.Get("/summary", h.Summary)

	r.Group(func(r chi.Router) {
		r.Use(h.adminAuth.Handler)
		r.Use(appmw.AuditLog(h.logger))
		r.Get("/", h.List)
	})

	return r
}

// Submit handles POST /api/feedback
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req apiv1.FeedbackSubmitRequest
	if err := render.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewValidationError("Invalid feedback payload"))
		return
	}

	entry, err := h.service.Submit(r.Context(), req.Rating, req.Comment)
	if err != nil {
		if errors.Is(err, services.ErrInvalidFeedback) {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("rating", "Rating must be between 1 and 5"))
			return
		}
		h.logger.ErrorContext(r.Context(), "feedback submission failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, entry)
}

// List handles GET /api/feedback (admin only)
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "feedback listing failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}

// Summary handles GET /api/feedback/summary
func (h *FeedbackHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "feedback summary failed",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

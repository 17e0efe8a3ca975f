package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/s22a0058-ai/FYP/internal/infrastructure"
)

// AdminPasswordHeader carries the admin password on protected endpoints.
const AdminPasswordHeader = "X-Admin-Password"

type adminContextKey string

const adminKey adminContextKey = "admin"

// AdminAuth guards admin-only endpoints (dataset refresh, feedback listing)
// with a bcrypt password check against the configured hash.
type AdminAuth struct {
	passwordHash string
	logger       *slog.Logger
	metrics      *infrastructure.BusinessMetrics
}

// NewAdminAuth creates admin authentication middleware. An empty hash
// disables admin access entirely rather than allowing everything.
func NewAdminAuth(passwordHash string, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *AdminAuth {
	return &AdminAuth{
		passwordHash: passwordHash,
		logger:       logger,
		metrics:      metrics,
	}
}

// Handler validates the admin password header before passing the request on
func (a *AdminAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if a.passwordHash == "" {
			a.logger.WarnContext(ctx, "admin endpoint hit with no admin password configured",
				"method", r.Method,
				"path", r.URL.Path,
			)
			a.reject(w, r, "Admin access is not configured")
			return
		}

		password := r.Header.Get(AdminPasswordHeader)
		if password == "" {
			a.logger.WarnContext(ctx, "missing admin password header",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			a.reject(w, r, fmt.Sprintf("Missing %s header", AdminPasswordHeader))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)); err != nil {
			a.logger.WarnContext(ctx, "admin authentication failed",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			a.reject(w, r, "Invalid admin password")
			return
		}

		a.logger.DebugContext(ctx, "admin authentication successful",
			"method", r.Method,
			"path", r.URL.Path,
		)

		ctx = context.WithValue(ctx, adminKey, true)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *AdminAuth) reject(w http.ResponseWriter, r *http.Request, detail string) {
	ctx := r.Context()
	infrastructure.RecordAuthFailure(ctx, a.metrics, r.URL.Path)

	problem := ProblemFromStatus(http.StatusUnauthorized, detail, infrastructure.GetTraceID(ctx))
	problem.Render(w, r)
}

// IsAdmin reports whether the request passed admin authentication
func IsAdmin(ctx context.Context) bool {
	admin, ok := ctx.Value(adminKey).(bool)
	return ok && admin
}

// AuditLog records structured audit entries for sensitive operations.
// Mount it inside admin route groups, after AdminAuth.
func AuditLog(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()

			ww := &auditResponseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			logger.InfoContext(ctx, "audit log",
				"event_type", "admin_access",
				"admin", IsAdmin(ctx),
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.Query().Encode(),
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)

			next.ServeHTTP(ww, r)

			logger.InfoContext(ctx, "audit log complete",
				"event_type", "admin_response",
				"admin", IsAdmin(ctx),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration", time.Since(start).String(),
			)
		})
	}
}

// auditResponseWriter captures the response status code
type auditResponseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (w *auditResponseWriter) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *auditResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/timeoff"
)

type contextKey string

const (
	loggerKey contextKey = "logger"
	actorKey  contextKey = "actor"
)

// Header names carrying the caller's identity. Authentication happens in
// front of this service; these are trusted as given.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// RequestLogger logs one line per request and puts a request-scoped logger
// in the context. Must run after middleware.RequestID.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logger.With(
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("user_id", r.Header.Get(HeaderUserID)),
			)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), loggerKey, reqLogger)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			}
			if status >= http.StatusInternalServerError {
				reqLogger.Error("http request", fields...)
				return
			}
			reqLogger.Info("http request", fields...)
		})
	}
}

// LoggerFrom returns the request-scoped logger, or a no-op logger.
func LoggerFrom(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// Identify reads the caller from the identity headers.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := timeoff.Actor{
			ID:   r.Header.Get(HeaderUserID),
			Role: timeoff.Role(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderUserRole)))),
		}
		if actor.Role == "" {
			actor.Role = timeoff.RoleEmployee
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

// ActorFrom returns the caller set by Identify.
func ActorFrom(ctx context.Context) timeoff.Actor {
	a, _ := ctx.Value(actorKey).(timeoff.Actor)
	return a
}

// RequireAdmin refuses callers without the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ActorFrom(r.Context()).IsAdmin() {
			writeError(w, http.StatusForbidden, "Admin role required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSelfOrAdmin lets admins through, and employees acting on their
// own {id}.
func RequireSelfOrAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := ActorFrom(r.Context())
		if !actor.IsAdmin() && (actor.ID == "" || actor.ID != chi.URLParam(r, "id")) {
			writeError(w, http.StatusForbidden, "Employees can only act for themselves", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

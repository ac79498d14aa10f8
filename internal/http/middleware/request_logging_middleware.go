package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// StructuredRequestLogger emits one slog line per request. The member email is
// attached once the auth middleware has resolved it.
func StructuredRequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			holder := &requestIdentity{}
			r = r.WithContext(withRequestIdentity(r.Context(), holder))

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			routePattern := ""
			if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
				routePattern = routeCtx.RoutePattern()
			}

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"route", routePattern,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
				"request_id", chimiddleware.GetReqID(r.Context()),
				"client_ip", r.RemoteAddr,
			}
			if holder.email != "" {
				attrs = append(attrs, "member_email", holder.email)
			}

			switch {
			case status >= http.StatusInternalServerError:
				logger.ErrorContext(r.Context(), "http.request", attrs...)
			case status >= http.StatusBadRequest:
				logger.WarnContext(r.Context(), "http.request", attrs...)
			default:
				logger.InfoContext(r.Context(), "http.request", attrs...)
			}
		})
	}
}

type requestIdentity struct {
	email string
}

type identityContextKey struct{}

func withRequestIdentity(ctx context.Context, holder *requestIdentity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, holder)
}

func recordRequestIdentity(ctx context.Context, email string) {
	if holder, ok := ctx.Value(identityContextKey{}).(*requestIdentity); ok {
		holder.email = email
	}
}

package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/minwonhaeso/esc-server/internal/http/response"
	"github.com/minwonhaeso/esc-server/internal/observability"
	"github.com/minwonhaeso/esc-server/internal/security"
	"github.com/minwonhaeso/esc-server/internal/service"
)

type contextKey string

const (
	ClaimsContextKey contextKey = "claims"
)

// AccessTokenValidator verifies an access token and checks the logout denylist.
type AccessTokenValidator interface {
	ValidateAccess(ctx context.Context, accessToken string) (*security.Claims, error)
}

func AuthMiddleware(validator AccessTokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := security.ResolveBearer(r.Header.Get("Authorization"))
			if err != nil {
				observability.RecordAccessTokenValidation(r.Context(), "missing", "header")
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing access token", nil)
				return
			}
			claims, err := validator.ValidateAccess(r.Context(), raw)
			if err != nil {
				if errors.Is(err, service.ErrNotAuthenticated) {
					observability.Audit(r, "member.access.denied", "reason", "invalid_or_revoked")
					response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid access token", nil)
					return
				}
				response.Error(w, r, http.StatusServiceUnavailable, "SESSION_STORE_UNAVAILABLE", "cannot verify access token", nil)
				return
			}
			recordRequestIdentity(r.Context(), claims.Subject)
			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	return c, ok
}

// MemberEmailFromContext returns the authenticated member's email, the access
// token subject.
func MemberEmailFromContext(ctx context.Context) (string, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok || c.Subject == "" {
		return "", false
	}
	return c.Subject, true
}

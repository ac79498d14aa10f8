package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/minwonhaeso/esc-server/internal/http/response"
	"github.com/minwonhaeso/esc-server/internal/observability"
	"github.com/minwonhaeso/esc-server/internal/security"
	"github.com/minwonhaeso/esc-server/internal/service"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateTTL    = 5 * time.Minute
	oauthCookiePath  = "/api/v1/auth/google"
)

type OAuthHandler struct {
	oauth        service.OAuthServiceInterface
	stateSecret  string
	secureCookie bool
	now          func() time.Time
}

func NewOAuthHandler(oauth service.OAuthServiceInterface, stateSecret string, secureCookie bool) *OAuthHandler {
	return &OAuthHandler{oauth: oauth, stateSecret: stateSecret, secureCookie: secureCookie, now: time.Now}
}

func (h *OAuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := security.SignState(h.stateSecret, oauthStateTTL, h.now())
	url := h.oauth.LoginURL(state)
	if url == "" {
		writeServiceError(w, r, service.ErrGoogleAuthDisabled)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     oauthCookiePath,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(oauthStateTTL.Seconds()),
	})
	observability.Audit(r, "member.google.login.redirect")
	http.Redirect(w, r, url, http.StatusFound)
}

func (h *OAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	queryState := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if queryState == "" || code == "" {
		observability.Audit(r, "member.google.callback.failed", "reason", "missing_code_or_state")
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "missing state or code", nil)
		return
	}
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value != queryState {
		observability.Audit(r, "member.google.callback.failed", "reason", "state_cookie_mismatch")
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid oauth state", nil)
		return
	}
	if err := security.VerifySignedState(h.stateSecret, queryState, h.now()); err != nil {
		observability.Audit(r, "member.google.callback.failed", "reason", "invalid_state")
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid oauth state", nil)
		return
	}
	// one-time state
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: oauthCookiePath, MaxAge: -1, HttpOnly: true, Secure: h.secureCookie})

	res, err := h.oauth.HandleGoogleCallback(r.Context(), code)
	if err != nil {
		observability.Audit(r, "member.google.callback.failed", "reason", "oauth_exchange", "error", err.Error())
		if errors.Is(err, service.ErrGoogleAuthDisabled) {
			writeServiceError(w, r, err)
			return
		}
		response.Error(w, r, http.StatusUnauthorized, "OAUTH_FAILED", "google login failed", nil)
		return
	}
	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "member.login.success",
		ActorEmail: res.Email,
		TargetType: "member",
		TargetID:   res.Email,
		Action:     "login_google",
		Outcome:    "success",
	})
	response.JSON(w, r, http.StatusOK, res)
}

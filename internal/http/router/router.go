package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/minwonhaeso/esc-server/internal/health"
	"github.com/minwonhaeso/esc-server/internal/http/handler"
	"github.com/minwonhaeso/esc-server/internal/http/middleware"
	"github.com/minwonhaeso/esc-server/internal/http/response"
)

type Dependencies struct {
	MemberHandler  *handler.MemberHandler
	OAuthHandler   *handler.OAuthHandler
	StadiumHandler *handler.StadiumHandler
	TokenValidator middleware.AccessTokenValidator
	Logger         *slog.Logger
	CORSOrigins    []string
	BodyLimitBytes int64
	AvatarMaxBytes int64
	APIRateLimiter *middleware.RateLimiter
	// LoginRateLimiter guards login; MailRateLimiter guards the endpoints
	// that send mail.
	LoginRateLimiter *middleware.RateLimiter
	MailRateLimiter  *middleware.RateLimiter
	Readiness        *health.ProbeRunner
	EnableOTelHTTP   bool
}

func NewRouter(dep Dependencies) http.Handler {
	bodyLimit := dep.BodyLimitBytes
	if bodyLimit <= 0 {
		bodyLimit = 1 << 20
	}
	loginLimiter := dep.LoginRateLimiter
	if loginLimiter == nil {
		loginLimiter = middleware.NewRateLimiter(20, time.Minute, "login")
	}
	mailLimiter := dep.MailRateLimiter
	if mailLimiter == nil {
		mailLimiter = middleware.NewRateLimiter(5, time.Minute, "mail")
	}
	requireAuth := middleware.AuthMiddleware(dep.TokenValidator)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger(dep.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	if dep.APIRateLimiter != nil {
		r.Use(dep.APIRateLimiter.Middleware())
	}

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/members", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.BodyLimit(bodyLimit))
				r.Post("/signUp", dep.MemberHandler.SignUp)
				r.Get("/email-dup", dep.MemberHandler.CheckEmail)
				r.With(mailLimiter.Middleware()).Post("/email-auth", dep.MemberHandler.SendVerificationEmail)
				r.Post("/email-authentication", dep.MemberHandler.ConfirmVerification)
				r.With(loginLimiter.Middleware()).Post("/login", dep.MemberHandler.Login)
				r.Post("/reissue", dep.MemberHandler.Reissue)
				r.With(mailLimiter.Middleware()).Post("/password/mail", dep.MemberHandler.ChangePasswordMail)
				r.Post("/password/mail-auth", dep.MemberHandler.ChangePasswordMailAuth)

				r.Group(func(r chi.Router) {
					r.Use(requireAuth)
					r.Post("/logout", dep.MemberHandler.Logout)
					r.Get("/info", dep.MemberHandler.Info)
					r.Patch("/info", dep.MemberHandler.PatchInfo)
					r.Delete("/", dep.MemberHandler.DeleteAccount)
					r.Patch("/password", dep.MemberHandler.ChangePassword)
				})
			})
			// Avatar uploads get their own, larger body limit.
			r.With(requireAuth, middleware.BodyLimit(avatarBodyLimit(dep.AvatarMaxBytes))).Post("/avatar", dep.MemberHandler.UploadAvatar)
		})

		r.Route("/auth/google", func(r chi.Router) {
			r.Use(loginLimiter.Middleware())
			r.Get("/login", dep.OAuthHandler.GoogleLogin)
			r.Get("/callback", dep.OAuthHandler.GoogleCallback)
		})

		r.Route("/stadiums", func(r chi.Router) {
			r.Get("/search", dep.StadiumHandler.Search)
			r.With(requireAuth).Get("/likelist", dep.StadiumHandler.LikeList)
			r.With(requireAuth).Post("/{stadiumId}/likes/{type}", dep.StadiumHandler.Likes)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}

// avatarBodyLimit leaves room for multipart framing around the image.
func avatarBodyLimit(maxBytes int64) int64 {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return maxBytes + 64<<10
}

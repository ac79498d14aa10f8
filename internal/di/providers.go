package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/minwonhaeso/esc-server/internal/app"
	"github.com/minwonhaeso/esc-server/internal/config"
	"github.com/minwonhaeso/esc-server/internal/database"
	"github.com/minwonhaeso/esc-server/internal/health"
	"github.com/minwonhaeso/esc-server/internal/http/handler"
	"github.com/minwonhaeso/esc-server/internal/http/middleware"
	"github.com/minwonhaeso/esc-server/internal/http/router"
	"github.com/minwonhaeso/esc-server/internal/observability"
	"github.com/minwonhaeso/esc-server/internal/repository"
	"github.com/minwonhaeso/esc-server/internal/security"
	"github.com/minwonhaeso/esc-server/internal/service"
)

const searchCachePrefix = "stadium_search"

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var InfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideAvatarStorage,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewMemberRepository,
	repository.NewEmailVerificationRepository,
	repository.NewOAuthRepository,
	repository.NewStadiumRepository,
	repository.NewStadiumLikeRepository,
	repository.NewStadiumDocumentRepository,
	repository.NewTransactor,
	provideSideStore,
	repository.NewRefreshTokenStore,
	repository.NewLogoutAccessTokenStore,
)

var SecuritySet = wire.NewSet(
	provideJWTManager,
	security.NewArgon2Hasher,
	wire.Bind(new(security.PasswordHasher), new(*security.Argon2Hasher)),
	wire.Bind(new(service.TokenIssuer), new(*security.JWTManager)),
)

var ServiceSet = wire.NewSet(
	provideTokenService,
	service.NewMailer,
	provideMemberService,
	provideOAuthProvider,
	service.NewOAuthService,
	service.NewStadiumLikeService,
	provideSearchCache,
	provideStadiumSearchService,
	wire.Bind(new(service.MemberServiceInterface), new(*service.MemberService)),
	wire.Bind(new(service.OAuthServiceInterface), new(*service.OAuthService)),
	wire.Bind(new(service.StadiumLikeServiceInterface), new(*service.StadiumLikeService)),
	wire.Bind(new(service.StadiumSearchServiceInterface), new(*service.StadiumSearchService)),
)

var HTTPSet = wire.NewSet(
	provideMemberHandler,
	provideOAuthHandler,
	handler.NewStadiumHandler,
	provideRateLimiters,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

// provideRuntimeDB opens the database and brings the schema up to date
// before the server accepts traffic.
func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// provideRedisClient takes the logger so the metrics hook is installed after
// the meter provider exists.
func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if !cfg.RedisEnabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, logger)
	return client
}

// provideAvatarStorage returns nil when storage is disabled; uploads then
// fail with ErrStorageDisabled.
func provideAvatarStorage(cfg *config.Config) (*service.MinIOAvatarStorage, error) {
	if !cfg.StorageEnabled {
		return nil, nil
	}
	return service.NewMinIOAvatarStorage(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL, cfg.AvatarMaxBytes)
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient, avatars *service.MinIOAvatarStorage) *health.ProbeRunner {
	var bucket health.Checker
	if avatars != nil {
		bucket = health.NewBucketChecker(avatars, avatars.BucketName())
	}
	return health.NewProbeRunner(
		cfg.ReadinessProbeTimeout,
		0,
		health.NewDBChecker(db),
		health.NewRedisChecker(redisClient),
		bucket,
	)
}

// provideSideStore keeps refresh tokens and the logout denylist in Redis.
// Without Redis the process-local store is used, which only suits a single
// instance.
func provideSideStore(redisClient redis.UniversalClient, logger *slog.Logger) repository.SideStore {
	if redisClient == nil {
		logger.Warn("redis disabled, session side-store is process local")
		return repository.NewMemorySideStore()
	}
	return repository.NewRedisSideStore(redisClient)
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTAccessSecret, cfg.JWTRefreshSecret)
}

func provideTokenService(
	cfg *config.Config,
	issuer service.TokenIssuer,
	refreshTokens repository.RefreshTokenStore,
	denylist repository.LogoutAccessTokenStore,
) *service.TokenService {
	return service.NewTokenService(issuer, refreshTokens, denylist, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, cfg.JWTReissueThreshold)
}

func provideMemberService(
	cfg *config.Config,
	members repository.MemberRepository,
	verifications repository.EmailVerificationRepository,
	tx repository.Transactor,
	hasher security.PasswordHasher,
	tokens *service.TokenService,
	mailer service.Mailer,
	avatars *service.MinIOAvatarStorage,
) *service.MemberService {
	var storage service.AvatarStorage
	if avatars != nil {
		storage = avatars
	}
	return service.NewMemberService(members, verifications, tx, hasher, tokens, mailer, storage, cfg.EmailVerificationTTL)
}

func provideOAuthProvider(cfg *config.Config) service.OAuthProvider {
	if !cfg.AuthGoogleEnabled {
		return nil
	}
	return service.NewGoogleOAuthProvider(cfg)
}

func provideSearchCache(cfg *config.Config, redisClient redis.UniversalClient) service.SearchCacheStore {
	switch {
	case !cfg.SearchCacheEnabled:
		return service.NewNoopSearchCacheStore()
	case redisClient != nil:
		return service.NewRedisSearchCacheStore(redisClient, searchCachePrefix)
	default:
		return service.NewInMemorySearchCacheStore()
	}
}

func provideStadiumSearchService(cfg *config.Config, docs repository.StadiumDocumentRepository, cache service.SearchCacheStore, logger *slog.Logger) *service.StadiumSearchService {
	return service.NewStadiumSearchService(docs, cache, cfg.SearchCacheTTL, logger)
}

func provideMemberHandler(cfg *config.Config, members service.MemberServiceInterface, tokens *service.TokenService) *handler.MemberHandler {
	return handler.NewMemberHandler(members, tokens, cfg.AvatarMaxBytes)
}

func provideOAuthHandler(cfg *config.Config, oauth service.OAuthServiceInterface) *handler.OAuthHandler {
	return handler.NewOAuthHandler(oauth, cfg.StateSigningSecret, !cfg.IsLocalLike())
}

type rateLimiters struct {
	api   *middleware.RateLimiter
	login *middleware.RateLimiter
	mail  *middleware.RateLimiter
}

func provideRateLimiters(cfg *config.Config, redisClient redis.UniversalClient) rateLimiters {
	return rateLimiters{
		api:   buildRateLimiter(cfg, redisClient, "api", cfg.APIRateLimitPerMin),
		login: buildRateLimiter(cfg, redisClient, "login", cfg.LoginRateLimitPerMin),
		mail:  buildRateLimiter(cfg, redisClient, "mail", cfg.MailRateLimitPerMin),
	}
}

func buildRateLimiter(cfg *config.Config, redisClient redis.UniversalClient, scope string, perMin int) *middleware.RateLimiter {
	if !cfg.RateLimitRedisEnabled || redisClient == nil {
		return middleware.NewRateLimiter(perMin, time.Minute, scope)
	}
	mode := middleware.FailClosed
	if cfg.RateLimitFailOpen {
		mode = middleware.FailOpen
	}
	limiter := middleware.NewRedisFixedWindowLimiter(redisClient, "rl:"+scope)
	return middleware.NewDistributedRateLimiter(limiter, perMin, time.Minute, mode, scope)
}

func provideRouterDependencies(
	cfg *config.Config,
	logger *slog.Logger,
	memberHandler *handler.MemberHandler,
	oauthHandler *handler.OAuthHandler,
	stadiumHandler *handler.StadiumHandler,
	tokens *service.TokenService,
	limiters rateLimiters,
	readiness *health.ProbeRunner,
) router.Dependencies {
	return router.Dependencies{
		MemberHandler:    memberHandler,
		OAuthHandler:     oauthHandler,
		StadiumHandler:   stadiumHandler,
		TokenValidator:   tokens,
		Logger:           logger,
		CORSOrigins:      cfg.CORSAllowedOrigins,
		BodyLimitBytes:   cfg.BodyLimitBytes,
		AvatarMaxBytes:   cfg.AvatarMaxBytes,
		APIRateLimiter:   limiters.api,
		LoginRateLimiter: limiters.login,
		MailRateLimiter:  limiters.mail,
		Readiness:        readiness,
		EnableOTelHTTP:   cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	readiness *health.ProbeRunner,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient, readiness)
}

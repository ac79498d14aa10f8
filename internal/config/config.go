package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string

	DatabaseDriver string
	DatabaseURL    string

	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTIssuer           string
	JWTAudience         string
	JWTAccessSecret     string
	JWTRefreshSecret    string
	JWTAccessTTL        time.Duration
	JWTRefreshTTL       time.Duration
	JWTReissueThreshold time.Duration

	EmailVerificationTTL time.Duration
	MailDriver           string
	MailFrom             string
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string
	SMTPTimeout          time.Duration

	AuthGoogleEnabled  bool
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	StateSigningSecret string

	StorageEnabled bool
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	AvatarMaxBytes int64

	SearchCacheEnabled bool
	SearchCacheTTL     time.Duration

	CORSAllowedOrigins    []string
	BodyLimitBytes        int64
	LoginRateLimitPerMin  int
	MailRateLimitPerMin   int
	APIRateLimitPerMin    int
	RateLimitRedisEnabled bool
	RateLimitFailOpen     bool

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string

	ReadinessProbeTimeout        time.Duration
	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	googleClientID := os.Getenv("GOOGLE_OAUTH_CLIENT_ID")
	googleClientSecret := os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET")
	googleEnabled := getEnvBool("AUTH_GOOGLE_ENABLED", true)
	if _, explicitlySet := os.LookupEnv("AUTH_GOOGLE_ENABLED"); !explicitlySet &&
		(googleClientID == "" || googleClientSecret == "") && isLocalLikeEnv(env) {
		googleEnabled = false
	}

	cfg := &Config{
		Env:                env,
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		DatabaseDriver:     strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisEnabled:       getEnvBool("REDIS_ENABLED", true),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		JWTIssuer:          getEnv("JWT_ISSUER", "esc-server"),
		JWTAudience:        getEnv("JWT_AUDIENCE", "esc-server-api"),
		JWTAccessSecret:    os.Getenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret:   os.Getenv("JWT_REFRESH_SECRET"),
		MailDriver:         strings.ToLower(getEnv("MAIL_DRIVER", "log")),
		MailFrom:           getEnv("MAIL_FROM", "no-reply@esc.local"),
		SMTPHost:           os.Getenv("SMTP_HOST"),
		SMTPPort:           getEnvInt("SMTP_PORT", 587),
		SMTPUsername:       os.Getenv("SMTP_USERNAME"),
		SMTPPassword:       os.Getenv("SMTP_PASSWORD"),
		AuthGoogleEnabled:  googleEnabled,
		GoogleClientID:     googleClientID,
		GoogleClientSecret: googleClientSecret,
		GoogleRedirectURL:  getEnv("GOOGLE_OAUTH_REDIRECT_URL", "http://localhost:8080/api/v1/auth/google/callback"),
		StateSigningSecret: os.Getenv("OAUTH_STATE_SECRET"),
		StorageEnabled:     getEnvBool("STORAGE_ENABLED", false),
		MinIOEndpoint:      os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey:     os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey:     os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:        getEnv("MINIO_BUCKET", "avatars"),
		MinIOUseSSL:        getEnvBool("MINIO_USE_SSL", false),
		AvatarMaxBytes:     int64(getEnvInt("AVATAR_MAX_BYTES", 5<<20)),
		SearchCacheEnabled: getEnvBool("SEARCH_CACHE_ENABLED", true),

		CORSAllowedOrigins:    splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		BodyLimitBytes:        int64(getEnvInt("BODY_LIMIT_BYTES", 1<<20)),
		LoginRateLimitPerMin:  getEnvInt("RATE_LIMIT_LOGIN_PER_MIN", 20),
		MailRateLimitPerMin:   getEnvInt("RATE_LIMIT_MAIL_PER_MIN", 5),
		APIRateLimitPerMin:    getEnvInt("API_RATE_LIMIT_PER_MIN", 120),
		RateLimitRedisEnabled: getEnvBool("RATE_LIMIT_REDIS_ENABLED", true),
		RateLimitFailOpen:     getEnvBool("RATE_LIMIT_FAIL_OPEN", true),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "esc-server"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", true),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", true),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", true),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	durations := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"JWT_ACCESS_TTL", "30m", &cfg.JWTAccessTTL},
		{"JWT_REFRESH_TTL", "168h", &cfg.JWTRefreshTTL},
		{"JWT_REISSUE_THRESHOLD", "72h", &cfg.JWTReissueThreshold},
		{"EMAIL_VERIFICATION_TTL", "2h", &cfg.EmailVerificationTTL},
		{"SMTP_TIMEOUT", "10s", &cfg.SMTPTimeout},
		{"SEARCH_CACHE_TTL", "30s", &cfg.SearchCacheTTL},
		{"OTEL_METRICS_EXPORT_INTERVAL", "10s", &cfg.OTELMetricsExportInterval},
		{"READINESS_PROBE_TIMEOUT", "1s", &cfg.ReadinessProbeTimeout},
		{"SHUTDOWN_TIMEOUT", "20s", &cfg.ShutdownTimeout},
		{"SHUTDOWN_HTTP_DRAIN_TIMEOUT", "10s", &cfg.ShutdownHTTPDrainTimeout},
		{"SHUTDOWN_OBSERVABILITY_TIMEOUT", "8s", &cfg.ShutdownObservabilityTimeout},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dest = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, "DATABASE_DRIVER must be one of postgres, sqlite")
	}
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	minSecret := 32
	if isLocalLikeEnv(c.Env) {
		minSecret = 16
	}
	if len(c.JWTAccessSecret) < minSecret {
		errs = append(errs, fmt.Sprintf("JWT_ACCESS_SECRET must be at least %d chars", minSecret))
	}
	if len(c.JWTRefreshSecret) < minSecret {
		errs = append(errs, fmt.Sprintf("JWT_REFRESH_SECRET must be at least %d chars", minSecret))
	}
	if c.JWTAccessSecret == c.JWTRefreshSecret {
		errs = append(errs, "JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.JWTAccessTTL <= 0 || c.JWTAccessTTL > 24*time.Hour {
		errs = append(errs, "JWT_ACCESS_TTL must be between 1s and 24h")
	}
	if c.JWTRefreshTTL <= c.JWTAccessTTL {
		errs = append(errs, "JWT_REFRESH_TTL must be greater than JWT_ACCESS_TTL")
	}
	if c.JWTReissueThreshold <= 0 || c.JWTReissueThreshold >= c.JWTRefreshTTL {
		errs = append(errs, "JWT_REISSUE_THRESHOLD must be > 0 and below JWT_REFRESH_TTL")
	}
	if c.EmailVerificationTTL <= 0 {
		errs = append(errs, "EMAIL_VERIFICATION_TTL must be > 0")
	}
	switch c.MailDriver {
	case "log":
	case "smtp":
		if c.SMTPHost == "" {
			errs = append(errs, "SMTP_HOST is required when MAIL_DRIVER=smtp")
		}
		if c.SMTPPort <= 0 {
			errs = append(errs, "SMTP_PORT must be > 0")
		}
	default:
		errs = append(errs, "MAIL_DRIVER must be one of log, smtp")
	}
	if c.AuthGoogleEnabled {
		if c.GoogleClientID == "" {
			errs = append(errs, "GOOGLE_OAUTH_CLIENT_ID is required when AUTH_GOOGLE_ENABLED=true")
		}
		if c.GoogleClientSecret == "" {
			errs = append(errs, "GOOGLE_OAUTH_CLIENT_SECRET is required when AUTH_GOOGLE_ENABLED=true")
		}
		if len(c.StateSigningSecret) < 16 {
			errs = append(errs, "OAUTH_STATE_SECRET must be at least 16 chars when AUTH_GOOGLE_ENABLED=true")
		}
	}
	if c.StorageEnabled {
		if c.MinIOEndpoint == "" || c.MinIOAccessKey == "" || c.MinIOSecretKey == "" {
			errs = append(errs, "MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when STORAGE_ENABLED=true")
		}
		if c.MinIOBucket == "" {
			errs = append(errs, "MINIO_BUCKET is required when STORAGE_ENABLED=true")
		}
	}
	if c.AvatarMaxBytes <= 0 {
		errs = append(errs, "AVATAR_MAX_BYTES must be > 0")
	}
	if c.SearchCacheEnabled && c.SearchCacheTTL <= 0 {
		errs = append(errs, "SEARCH_CACHE_TTL must be > 0 when SEARCH_CACHE_ENABLED=true")
	}
	if c.BodyLimitBytes <= 0 {
		errs = append(errs, "BODY_LIMIT_BYTES must be > 0")
	}
	if c.LoginRateLimitPerMin <= 0 {
		errs = append(errs, "RATE_LIMIT_LOGIN_PER_MIN must be > 0")
	}
	if c.MailRateLimitPerMin <= 0 {
		errs = append(errs, "RATE_LIMIT_MAIL_PER_MIN must be > 0")
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	if c.RedisEnabled && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when REDIS_ENABLED=true")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if c.ReadinessProbeTimeout <= 0 {
		errs = append(errs, "READINESS_PROBE_TIMEOUT must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// IsLocalLike reports whether the service runs in a developer or test profile.
func (c *Config) IsLocalLike() bool { return isLocalLikeEnv(c.Env) }

func isLocalLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev", "local", "test":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}

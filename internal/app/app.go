package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/minwonhaeso/esc-server/internal/config"
	"github.com/minwonhaeso/esc-server/internal/health"
	"github.com/minwonhaeso/esc-server/internal/observability"
)

type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	DB            *gorm.DB
	Redis         redis.UniversalClient
	Readiness     *health.ProbeRunner

	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	readiness *health.ProbeRunner,
) *App {
	return &App{
		Config:                       cfg,
		Logger:                       logger,
		Server:                       server,
		Observability:                runtime,
		DB:                           db,
		Redis:                        redisClient,
		Readiness:                    readiness,
		ShutdownTimeout:              cfg.ShutdownTimeout,
		ShutdownHTTPDrainTimeout:     cfg.ShutdownHTTPDrainTimeout,
		ShutdownObservabilityTimeout: cfg.ShutdownObservabilityTimeout,
	}
}

package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/minwonhaeso/esc-server/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "esc-server"

type AppMetrics struct {
	memberOperationCounter       metric.Int64Counter
	memberOperationDuration      metric.Float64Histogram
	accessTokenValidationCounter metric.Int64Counter
	sessionStoreCounter          metric.Int64Counter
	mailDeliveryCounter          metric.Int64Counter
	stadiumLikeCounter           metric.Int64Counter
	searchCacheCounter           metric.Int64Counter
	oauthGoogleReqDuration       metric.Float64Histogram
	oauthGoogleErrorsCounter     metric.Int64Counter
	rateLimitDecisionCounter     metric.Int64Counter
	middlewareValidationCounter  metric.Int64Counter
	rateLimitRetryAfter          metric.Float64Histogram
	healthCheckResultCounter     metric.Int64Counter
	healthCheckDuration          metric.Float64Histogram
	databaseStartupCounter       metric.Int64Counter
	databaseStartupDuration      metric.Float64Histogram
	repositoryOpsCounter         metric.Int64Counter
	toolCommandRuns              metric.Int64Counter
	toolCommandDuration          metric.Float64Histogram
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "member.operation.duration"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	m, err := newAppMetrics(mp.Meter(meterName))
	if err != nil {
		return nil, err
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func newAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	var firstErr error
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return c
	}
	seconds := func(name, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithUnit("s"), metric.WithDescription(desc))
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return h
	}

	m := &AppMetrics{
		memberOperationCounter:       counter("member.operation.events", "Member lifecycle operations by outcome"),
		memberOperationDuration:      seconds("member.operation.duration", "Duration of member lifecycle operations in seconds"),
		accessTokenValidationCounter: counter("auth.access_token.validation.events", "Access token validation results"),
		sessionStoreCounter:          counter("session.store.operations", "Refresh token and denylist store operations"),
		mailDeliveryCounter:          counter("mail.delivery.events", "Verification and password mail deliveries"),
		stadiumLikeCounter:           counter("stadium.like.events", "Stadium like toggles"),
		searchCacheCounter:           counter("stadium.search.cache.events", "Stadium search cache hits, misses and invalidations"),
		oauthGoogleReqDuration:       seconds("auth.oauth.google.request.duration", "Duration of Google OAuth upstream calls in seconds"),
		oauthGoogleErrorsCounter:     counter("auth.oauth.google.errors", "Google OAuth failures by stage"),
		rateLimitDecisionCounter:     counter("http.rate_limit.decisions", "Rate limiter allow/deny decisions"),
		middlewareValidationCounter:  counter("http.middleware.validation.events", "CORS and body limit validation outcomes"),
		rateLimitRetryAfter:          seconds("http.rate_limit.retry_after", "Retry-after duration in seconds for throttled requests"),
		healthCheckResultCounter:     counter("health.check.results", "Readiness check results"),
		healthCheckDuration:          seconds("health.check.duration", "Readiness check duration in seconds"),
		databaseStartupCounter:       counter("database.startup.events", "Database migrate and seed outcomes"),
		databaseStartupDuration:      seconds("database.startup.duration", "Database migrate and seed duration in seconds"),
		repositoryOpsCounter:         counter("repository.operations", "Repository operations by entity and outcome"),
		toolCommandRuns:              counter("tool.command.runs", "CLI tool command runs"),
		toolCommandDuration:          seconds("tool.command.duration", "CLI tool command duration in seconds"),
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return m, nil
}

func currentMetrics() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

func RecordMemberOperation(ctx context.Context, operation, outcome string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.memberOperationCounter.Add(ctx, 1, attrs)
	m.memberOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

func RecordAccessTokenValidation(ctx context.Context, outcome, source string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.accessTokenValidationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("source", source),
	))
}

func RecordSessionStoreOperation(ctx context.Context, store, operation, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.sessionStoreCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("store", store),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordMailDelivery(ctx context.Context, purpose, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.mailDeliveryCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("purpose", purpose),
		attribute.String("outcome", outcome),
	))
}

func RecordStadiumLike(ctx context.Context, likeType, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.stadiumLikeCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", likeType),
		attribute.String("outcome", outcome),
	))
}

func RecordSearchCacheEvent(ctx context.Context, event string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.searchCacheCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
}

func RecordGoogleOAuthRequestDuration(ctx context.Context, stage, status string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.oauthGoogleReqDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	))
}

func RecordGoogleOAuthError(ctx context.Context, stage string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.oauthGoogleErrorsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

func RecordRateLimitDecision(ctx context.Context, scope, outcome, mode, keyType string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.rateLimitDecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
		attribute.String("mode", mode),
		attribute.String("key_type", keyType),
	))
}

func RecordRateLimitRetryAfter(ctx context.Context, scope, reason string, retryAfter time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.rateLimitRetryAfter.Record(ctx, retryAfter.Seconds(), metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("reason", reason),
	))
}

func RecordMiddlewareValidationEvent(ctx context.Context, middleware, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.middlewareValidationCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("middleware", middleware),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.healthCheckResultCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckDuration(ctx context.Context, check string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.healthCheckDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("check", check)))
}

func RecordDatabaseStartupEvent(ctx context.Context, phase, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.databaseStartupCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.String("outcome", outcome),
	))
}

func RecordDatabaseStartupDuration(ctx context.Context, phase string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.databaseStartupDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("phase", phase)))
}

func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.repositoryOpsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordToolCommandRun(ctx context.Context, tool, command, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.toolCommandRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	))
}

func RecordToolCommandDuration(ctx context.Context, tool, command, outcome string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.toolCommandDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	))
}

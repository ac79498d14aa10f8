package observability

import (
	"context"
	"errors"
	"log/slog"

	"github.com/minwonhaeso/esc-server/internal/config"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Runtime owns the OTel providers so shutdown can flush them in one place.
type Runtime struct {
	LoggerProvider *sdklog.LoggerProvider
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider
}

func InitRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{}
	lp, err := InitLogs(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	rt.LoggerProvider = lp

	mp, err := InitMetrics(ctx, cfg, logger)
	if err != nil {
		_ = rt.Shutdown(ctx)
		return nil, err
	}
	rt.MeterProvider = mp

	tp, err := InitTracing(ctx, cfg, logger)
	if err != nil {
		_ = rt.Shutdown(ctx)
		return nil, err
	}
	rt.TracerProvider = tp
	return rt, nil
}

// Shutdown flushes traces, then metrics, then logs.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.TracerProvider != nil {
		if err := r.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if r.MeterProvider != nil {
		if err := r.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if r.LoggerProvider != nil {
		if err := r.LoggerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

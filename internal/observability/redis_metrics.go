package observability

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var redisInstrumentationOnce sync.Once

// InstrumentRedisClient installs a command metrics hook on the client once per process.
func InstrumentRedisClient(client redis.UniversalClient, logger *slog.Logger) {
	if client == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	redisInstrumentationOnce.Do(func() {
		hook, err := newRedisMetricsHook(otel.Meter(meterName))
		if err != nil {
			logger.Warn("redis observability instrumentation disabled", "error", err)
			return
		}
		client.AddHook(hook)
		logger.Info("redis observability instrumentation enabled")
	})
}

type redisMetricsHook struct {
	cmdTotal   metric.Int64Counter
	cmdLatency metric.Float64Histogram
}

func newRedisMetricsHook(meter metric.Meter) (*redisMetricsHook, error) {
	cmdTotal, err := meter.Int64Counter(
		"redis.command.total",
		metric.WithDescription("Redis commands by keyspace and status"),
	)
	if err != nil {
		return nil, err
	}
	cmdLatency, err := meter.Float64Histogram(
		"redis.command.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Redis command latency in seconds"),
	)
	if err != nil {
		return nil, err
	}
	return &redisMetricsHook{cmdTotal: cmdTotal, cmdLatency: cmdLatency}, nil
}

func (h *redisMetricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *redisMetricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.record(ctx, cmd, err, time.Since(start))
		return err
	}
}

func (h *redisMetricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		elapsed := time.Since(start)
		for _, cmd := range cmds {
			h.record(ctx, cmd, cmd.Err(), elapsed)
		}
		return err
	}
}

func (h *redisMetricsHook) record(ctx context.Context, cmd redis.Cmder, err error, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("command", strings.ToLower(cmd.Name())),
		attribute.String("keyspace", redisKeyspace(cmd)),
		attribute.String("status", redisCommandStatus(err)),
	)
	h.cmdTotal.Add(ctx, 1, attrs)
	h.cmdLatency.Record(ctx, elapsed.Seconds(), attrs)
}

func redisCommandStatus(err error) string {
	switch err {
	case nil:
		return "success"
	case redis.Nil:
		return "miss"
	default:
		return "error"
	}
}

// redisKeyspace maps a command's first key to the store that owns it, using
// the prefix before the first colon.
func redisKeyspace(cmd redis.Cmder) string {
	args := cmd.Args()
	if len(args) < 2 {
		return "none"
	}
	key, ok := args[1].(string)
	if !ok || key == "" {
		return "none"
	}
	prefix, _, found := strings.Cut(key, ":")
	if !found {
		return "other"
	}
	switch prefix {
	case "refresh_token", "logout_access_token", "stadium_search", "rl":
		return prefix
	default:
		return "other"
	}
}

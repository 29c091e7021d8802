package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/cryptex"
)

// instrumentationName identifies engine telemetry to the meter provider.
const instrumentationName = "github.com/fyrsmithlabs/cryptex/engine"

// metrics holds the engine's OpenTelemetry instruments. Instrument
// construction failures log a warning and leave the instrument nil; the
// record methods skip nil instruments, so telemetry trouble never fails an
// engine call.
type metrics struct {
	logger *zap.Logger

	sanitizeTotal    metric.Int64Counter
	sanitizeDuration metric.Float64Histogram
	secretsDetected  metric.Int64Counter
	resolveTotal     metric.Int64Counter
	cacheHits        metric.Int64Counter
	cacheMisses      metric.Int64Counter
}

func newMetrics(provider metric.MeterProvider, logger *zap.Logger) *metrics {
	m := &metrics{logger: logger}
	m.init(provider.Meter(instrumentationName,
		metric.WithInstrumentationVersion(cryptex.Version),
	))
	return m
}

func (m *metrics) init(meter metric.Meter) {
	var err error

	m.sanitizeTotal, err = meter.Int64Counter(
		"cryptex.engine.sanitize.total",
		metric.WithDescription("Total number of sanitize calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		m.logger.Warn("failed to create sanitize counter", zap.Error(err))
	}

	m.sanitizeDuration, err = meter.Float64Histogram(
		"cryptex.engine.sanitize.duration_seconds",
		metric.WithDescription("Duration of sanitize calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1),
	)
	if err != nil {
		m.logger.Warn("failed to create sanitize duration histogram", zap.Error(err))
	}

	m.secretsDetected, err = meter.Int64Counter(
		"cryptex.engine.secrets.detected_total",
		metric.WithDescription("Total number of secret values masked during sanitization"),
		metric.WithUnit("{secret}"),
	)
	if err != nil {
		m.logger.Warn("failed to create secrets detected counter", zap.Error(err))
	}

	m.resolveTotal, err = meter.Int64Counter(
		"cryptex.engine.resolve.total",
		metric.WithDescription("Total number of resolve calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		m.logger.Warn("failed to create resolve counter", zap.Error(err))
	}

	m.cacheHits, err = meter.Int64Counter(
		"cryptex.engine.context.cache_hits_total",
		metric.WithDescription("Sanitization context cache hits"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		m.logger.Warn("failed to create cache hits counter", zap.Error(err))
	}

	m.cacheMisses, err = meter.Int64Counter(
		"cryptex.engine.context.cache_misses_total",
		metric.WithDescription("Sanitization context cache misses"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		m.logger.Warn("failed to create cache misses counter", zap.Error(err))
	}
}

// recordSanitize records one sanitize call and the secrets it masked.
func (m *metrics) recordSanitize(ctx context.Context, duration time.Duration, found int, err error) {
	attrs := metric.WithAttributes(attribute.Bool("error", err != nil))

	if m.sanitizeTotal != nil {
		m.sanitizeTotal.Add(ctx, 1, attrs)
	}
	if m.sanitizeDuration != nil {
		m.sanitizeDuration.Record(ctx, duration.Seconds(), attrs)
	}
	if found > 0 && m.secretsDetected != nil {
		m.secretsDetected.Add(ctx, int64(found))
	}
}

// recordResolve records one resolve call.
func (m *metrics) recordResolve(ctx context.Context, err error) {
	if m.resolveTotal != nil {
		m.resolveTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("error", err != nil)))
	}
}

func (m *metrics) recordCacheHit(ctx context.Context) {
	if m.cacheHits != nil {
		m.cacheHits.Add(ctx, 1)
	}
}

func (m *metrics) recordCacheMiss(ctx context.Context) {
	if m.cacheMisses != nil {
		m.cacheMisses.Add(ctx, 1)
	}
}

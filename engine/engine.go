package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	ttlcache "github.com/jellydator/ttlcache/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/cryptex"
	"github.com/fyrsmithlabs/cryptex/pattern"
)

const (
	// DefaultCacheTTL is how long a sanitization context stays resolvable
	// unless configured otherwise.
	DefaultCacheTTL = 10 * time.Minute

	// DefaultCacheCapacity is the default bound on retained contexts.
	// The oldest context is evicted when the cache is full.
	DefaultCacheCapacity = 1000
)

// config collects constructor options. It is validated once, after all
// options have been applied.
type config struct {
	registry      *pattern.Registry
	logger        *zap.Logger
	meterProvider metric.MeterProvider
	cacheTTL      time.Duration
	cacheCapacity uint64
	autoDetect    bool
	warnAfter     time.Duration
}

func defaultConfig() *config {
	return &config{
		registry:      pattern.Default(),
		logger:        zap.NewNop(),
		meterProvider: otel.GetMeterProvider(),
		cacheTTL:      DefaultCacheTTL,
		cacheCapacity: DefaultCacheCapacity,
	}
}

func (c *config) validate() error {
	if c.registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	if c.logger == nil {
		return fmt.Errorf("logger cannot be nil")
	}
	if c.meterProvider == nil {
		return fmt.Errorf("meter provider cannot be nil")
	}
	if c.cacheTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %v", c.cacheTTL)
	}
	if c.cacheCapacity == 0 {
		return fmt.Errorf("cache capacity must be positive")
	}
	if c.warnAfter < 0 {
		return fmt.Errorf("latency warning threshold cannot be negative, got %v", c.warnAfter)
	}
	return nil
}

// Option configures an Engine.
type Option func(*config)

// WithRegistry sets the pattern registry the engine resolves secret names
// against. Defaults to pattern.Default().
func WithRegistry(r *pattern.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithLogger sets the logger for debug views and degradation warnings.
// Defaults to a no-op logger; the engine never constructs its own.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithMeterProvider sets the OpenTelemetry provider backing the engine's
// instruments. Defaults to the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		c.meterProvider = mp
	}
}

// WithCacheTTL bounds how long sanitization contexts stay resolvable.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.cacheTTL = ttl
	}
}

// WithCacheCapacity bounds how many sanitization contexts are retained at
// once.
func WithCacheCapacity(n uint64) Option {
	return func(c *config) {
		c.cacheCapacity = n
	}
}

// WithAutoDetect enables scanning with the gitleaks default rule set in
// addition to the named patterns. Building the rule set is expensive, so it
// happens once, inside New.
func WithAutoDetect(enabled bool) Option {
	return func(c *config) {
		c.autoDetect = enabled
	}
}

// WithLatencyWarning makes the engine log a warning whenever a sanitize
// call takes longer than threshold. Zero (the default) disables the check;
// slow calls are never an error.
func WithLatencyWarning(threshold time.Duration) Option {
	return func(c *config) {
		c.warnAfter = threshold
	}
}

// Engine performs two-way substitution: Sanitize masks secrets behind
// placeholders for anything AI-visible, Resolve and SanitizeResponse work
// against the retained bindings of an earlier sanitization. One engine may
// serve any number of concurrent calls; the only shared mutable state is
// the context cache, which manages its own locking.
type Engine struct {
	registry  *pattern.Registry
	logger    *zap.Logger
	metrics   *metrics
	detector  *detector
	cache     *ttlcache.Cache[string, *Sanitized]
	warnAfter time.Duration

	closed   atomic.Bool
	stopOnce sync.Once
}

// New returns an engine ready for concurrent use. The cache janitor
// goroutine it starts runs until Close.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, &cryptex.Error{Op: "init", Err: err}
	}

	e := &Engine{
		registry:  cfg.registry,
		logger:    cfg.logger,
		metrics:   newMetrics(cfg.meterProvider, cfg.logger),
		warnAfter: cfg.warnAfter,
	}

	if cfg.autoDetect {
		d, err := newDetector()
		if err != nil {
			return nil, &cryptex.Error{Op: "init", Err: fmt.Errorf("auto-detect rules: %w", err)}
		}
		e.detector = d
	}

	e.cache = ttlcache.New[string, *Sanitized](
		ttlcache.WithTTL[string, *Sanitized](cfg.cacheTTL),
		ttlcache.WithCapacity[string, *Sanitized](cfg.cacheCapacity),
	)
	go e.cache.Start()

	return e, nil
}

// MustNew is like New but panics on error. It is intended for package-level
// engines built from fixed options.
func MustNew(opts ...Option) *Engine {
	e, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Registry returns the pattern registry this engine resolves names against.
func (e *Engine) Registry() *pattern.Registry {
	return e.registry
}

// Close stops the context cache janitor and marks the engine unusable.
// Subsequent engine calls fail with cryptex.ErrEngineClosed. Close is
// idempotent.
func (e *Engine) Close() error {
	e.stopOnce.Do(func() {
		e.closed.Store(true)
		e.cache.Stop()
	})
	return nil
}

// check rejects calls on a closed engine.
func (e *Engine) check(op string) error {
	if e.closed.Load() {
		return &cryptex.Error{Op: op, Err: cryptex.ErrEngineClosed}
	}
	return nil
}

// lookupContext fetches a cached sanitization context, recording cache
// traffic. A hit refreshes the context's TTL.
func (e *Engine) lookupContext(ctx context.Context, op, contextID string) (*Sanitized, error) {
	item := e.cache.Get(contextID)
	if item == nil {
		e.metrics.recordCacheMiss(ctx)
		return nil, &cryptex.Error{Op: op, Name: contextID, Err: cryptex.ErrContextNotFound}
	}
	e.metrics.recordCacheHit(ctx)
	return item.Value(), nil
}

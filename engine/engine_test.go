package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fyrsmithlabs/cryptex"
	"github.com/fyrsmithlabs/cryptex/pattern"
)

// newTestEngine builds an engine and closes it when the test ends.
func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestNewDefaults(t *testing.T) {
	e := newTestEngine(t)
	assert.Same(t, pattern.Default(), e.Registry())
	assert.Nil(t, e.detector)
	assert.Equal(t, time.Duration(0), e.warnAfter)
}

func TestNewOptionValidation(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"nil registry", []Option{WithRegistry(nil)}},
		{"nil logger", []Option{WithLogger(nil)}},
		{"nil meter provider", []Option{WithMeterProvider(nil)}},
		{"zero cache ttl", []Option{WithCacheTTL(0)}},
		{"negative cache ttl", []Option{WithCacheTTL(-time.Minute)}},
		{"zero cache capacity", []Option{WithCacheCapacity(0)}},
		{"negative latency threshold", []Option{WithLatencyWarning(-time.Millisecond)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.opts...)
			require.Error(t, err)
			assert.Nil(t, e)

			var cerr *cryptex.Error
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, "init", cerr.Op)
		})
	}
}

func TestMustNewPanics(t *testing.T) {
	assert.Panics(t, func() {
		MustNew(WithCacheTTL(-time.Second))
	})
	assert.NotPanics(t, func() {
		e := MustNew()
		_ = e.Close()
	})
}

func TestCloseRejectsFurtherCalls(t *testing.T) {
	e, err := New()
	require.NoError(t, err)
	ctx := context.Background()

	s, err := e.Sanitize(ctx, "nothing secret here")
	require.NoError(t, err)

	require.NoError(t, e.Close())
	require.NoError(t, e.Close(), "close is idempotent")

	_, err = e.Sanitize(ctx, "anything")
	assert.ErrorIs(t, err, cryptex.ErrEngineClosed)

	_, err = e.Resolve(ctx, "anything", s.ContextID)
	assert.ErrorIs(t, err, cryptex.ErrEngineClosed)

	_, err = e.SanitizeResponse(ctx, "anything", s.ContextID)
	assert.ErrorIs(t, err, cryptex.ErrEngineClosed)

	err = e.SanitizeError(ctx, assert.AnError)
	assert.ErrorIs(t, err, cryptex.ErrEngineClosed)
}

func TestContextExpires(t *testing.T) {
	e := newTestEngine(t, WithCacheTTL(30*time.Millisecond))
	ctx := context.Background()

	s, err := e.Sanitize(ctx, "call sk-abc123def456ghi789jkl012mno345pq", pattern.OpenAIKey)
	require.NoError(t, err)

	time.Sleep(120 * time.Millisecond)

	_, err = e.Resolve(ctx, s.Data, s.ContextID)
	require.Error(t, err)
	assert.ErrorIs(t, err, cryptex.ErrContextNotFound)
}

func TestContextEvictedAtCapacity(t *testing.T) {
	e := newTestEngine(t, WithCacheCapacity(1))
	ctx := context.Background()

	first, err := e.Sanitize(ctx, "first payload")
	require.NoError(t, err)
	second, err := e.Sanitize(ctx, "second payload")
	require.NoError(t, err)

	_, err = e.Resolve(ctx, first.Data, first.ContextID)
	assert.ErrorIs(t, err, cryptex.ErrContextNotFound)

	got, err := e.Resolve(ctx, second.Data, second.ContextID)
	require.NoError(t, err)
	assert.Equal(t, "second payload", got)
}

func TestContextHitRefreshesTTL(t *testing.T) {
	e := newTestEngine(t, WithCacheTTL(80*time.Millisecond))
	ctx := context.Background()

	s, err := e.Sanitize(ctx, "keep me around")
	require.NoError(t, err)

	// Touch the context before each expiry; it must outlive several TTLs.
	for i := 0; i < 4; i++ {
		time.Sleep(40 * time.Millisecond)
		_, err = e.Resolve(ctx, s.Data, s.ContextID)
		require.NoError(t, err)
	}
}

func TestLatencyWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	e := newTestEngine(t,
		WithLogger(zap.New(core)),
		WithLatencyWarning(time.Nanosecond),
	)

	s, err := e.Sanitize(context.Background(), "some payload")
	require.NoError(t, err)

	warned := logs.FilterMessage("sanitize latency above threshold").All()
	require.Len(t, warned, 1)
	assert.Equal(t, zapcore.WarnLevel, warned[0].Level)
	assert.Equal(t, s.ContextID, warned[0].ContextMap()["context_id"])
}

func TestLatencyWarningDisabledByDefault(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	e := newTestEngine(t, WithLogger(zap.New(core)))

	_, err := e.Sanitize(context.Background(), "some payload")
	require.NoError(t, err)
	assert.Zero(t, logs.Len())
}

func TestWithRegistryIsolation(t *testing.T) {
	r := pattern.New()
	require.NoError(t, r.Register(pattern.MustCompile("badge", `badge-\d{4}`, "{{BADGE}}")))
	e := newTestEngine(t, WithRegistry(r))
	ctx := context.Background()

	s, err := e.Sanitize(ctx, "scan badge-1234 at the door", "badge")
	require.NoError(t, err)
	assert.Equal(t, "scan {{BADGE}} at the door", s.Data)

	// Builtin names live in the default registry, not this one.
	_, err = e.Sanitize(ctx, "sk-abc123def456ghi789jkl012mno345pq", pattern.OpenAIKey)
	assert.ErrorIs(t, err, cryptex.ErrPatternNotFound)
}

package protect

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/cryptex"
	"github.com/fyrsmithlabs/cryptex/engine"
	"github.com/fyrsmithlabs/cryptex/pattern"
)

// Observer receives the AI-visible view of each guarded call after the
// target has returned. Observers run synchronously on the calling
// goroutine; hand the Call off if the work is slow.
type Observer func(ctx context.Context, call *Call)

// Call is the AI-visible view of one guarded invocation. It contains
// placeholders, never original secret values.
type Call struct {
	// Func is the wrapped function's name.
	Func string

	// Args holds the sanitized argument list, rendered the way
	// engine.Sanitize renders structured data.
	Args []any

	// ContextID keys the sanitization context for this call.
	ContextID string

	// Found is the number of masked spans across all arguments.
	Found int

	// Err is the sanitized error message when the target failed, empty
	// otherwise.
	Err string

	// Duration is how long the target ran.
	Duration time.Duration
}

type config struct {
	engine         *engine.Engine
	logger         *zap.Logger
	observer       Observer
	sanitizeOutput bool
	requireMatch   bool
	autoDetect     bool
}

func defaultConfig() *config {
	return &config{logger: zap.NewNop()}
}

// Option configures a Guard.
type Option func(*config)

// WithEngine makes the guard use a shared engine instead of building its
// own. The caller keeps ownership: Guard.Close leaves a shared engine
// running.
func WithEngine(e *engine.Engine) Option {
	return func(c *config) {
		c.engine = e
	}
}

// WithLogger sets the logger for call-view debug output. When the guard
// builds its own engine the logger is passed through to it.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithObserver registers a callback that receives the completed Call view
// of every guarded invocation.
func WithObserver(fn Observer) Option {
	return func(c *config) {
		c.observer = fn
	}
}

// WithSanitizedOutput makes guarded calls sanitize their results and error
// messages before returning them. Off by default: the call side is the
// execution side and normally needs real values.
func WithSanitizedOutput(enabled bool) Option {
	return func(c *config) {
		c.sanitizeOutput = enabled
	}
}

// WithRequireMatch makes guarded calls fail before the target runs unless
// every declared pattern matched at least one argument.
func WithRequireMatch(enabled bool) Option {
	return func(c *config) {
		c.requireMatch = enabled
	}
}

// WithAutoDetect makes the guard's own engine scan arguments with the
// gitleaks rule set in addition to the declared patterns. Cannot be
// combined with WithEngine; configure auto-detection on the shared engine
// instead.
func WithAutoDetect(enabled bool) Option {
	return func(c *config) {
		c.autoDetect = enabled
	}
}

// Guard declares which patterns a set of wrapped functions masks and holds
// everything a call needs. Guards are immutable after construction and safe
// for concurrent use.
//
// Construction never fails loudly: an invalid configuration produces a
// guard whose Validate returns the error and whose calls all fail with it
// before any target runs.
type Guard struct {
	names          []string
	engine         *engine.Engine
	ownsEngine     bool
	logger         *zap.Logger
	observer       Observer
	sanitizeOutput bool
	requireMatch   bool

	err error
}

// Secrets builds a guard masking the named patterns. Names resolve against
// the guard's engine registry at construction, so an unknown name surfaces
// from Validate and from the first wrapped call, never from inside the
// target.
func Secrets(names []string, opts ...Option) *Guard {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	g := &Guard{
		names:          append([]string(nil), names...),
		engine:         cfg.engine,
		logger:         cfg.logger,
		observer:       cfg.observer,
		sanitizeOutput: cfg.sanitizeOutput,
		requireMatch:   cfg.requireMatch,
	}

	switch {
	case cfg.logger == nil:
		g.err = &cryptex.Error{Op: "protect", Err: errors.New("logger cannot be nil")}
	case len(g.names) == 0 && !cfg.autoDetect:
		g.err = &cryptex.Error{Op: "protect", Err: errors.New("no pattern names and auto-detection disabled")}
	case cfg.engine != nil && cfg.autoDetect:
		g.err = &cryptex.Error{Op: "protect", Err: errors.New("auto-detection must be configured on the shared engine")}
	}
	if g.err != nil {
		return g
	}

	if g.engine == nil {
		e, err := engine.New(
			engine.WithLogger(g.logger),
			engine.WithAutoDetect(cfg.autoDetect),
		)
		if err != nil {
			g.err = err
			return g
		}
		g.engine = e
		g.ownsEngine = true
	}

	if _, err := g.engine.Registry().Resolve(g.names...); err != nil {
		g.err = err
	}
	return g
}

// APIKeys guards the built-in OpenAI and Anthropic key patterns.
func APIKeys(opts ...Option) *Guard {
	return Secrets([]string{pattern.OpenAIKey, pattern.AnthropicKey}, opts...)
}

// Files guards the built-in user home path pattern.
func Files(opts ...Option) *Guard {
	return Secrets([]string{pattern.FilePath}, opts...)
}

// Tokens guards the built-in GitHub token pattern.
func Tokens(opts ...Option) *Guard {
	return Secrets([]string{pattern.GitHubToken}, opts...)
}

// Database guards the built-in database URL pattern.
func Database(opts ...Option) *Guard {
	return Secrets([]string{pattern.DatabaseURL}, opts...)
}

// All guards every built-in pattern.
func All(opts ...Option) *Guard {
	names := make([]string, 0, len(pattern.Builtins()))
	for _, p := range pattern.Builtins() {
		names = append(names, p.Name())
	}
	return Secrets(names, opts...)
}

// Validate returns the construction error, if any. Calling it is optional;
// wrapped calls surface the same error.
func (g *Guard) Validate() error {
	return g.err
}

// Names returns a copy of the declared pattern names.
func (g *Guard) Names() []string {
	return append([]string(nil), g.names...)
}

// Engine returns the engine backing this guard.
func (g *Guard) Engine() *engine.Engine {
	return g.engine
}

// Close releases the guard's own engine. A shared engine passed through
// WithEngine is left running.
func (g *Guard) Close() error {
	if g.ownsEngine && g.engine != nil {
		return g.engine.Close()
	}
	return nil
}

// SanitizeCall builds the AI-visible view of a call without invoking
// anything. It is the building block for integrations that cannot use the
// Func wrappers, such as dynamic tool dispatch.
func (g *Guard) SanitizeCall(ctx context.Context, fn string, args ...any) (*Call, error) {
	return g.sanitizeCall(ctx, fn, args)
}

// sanitizeCall is the shared pre-invocation path: mask Secret-typed
// arguments, sanitize the argument list, enforce the match requirement and
// assemble the Call view.
func (g *Guard) sanitizeCall(ctx context.Context, fn string, args []any) (*Call, error) {
	if g.err != nil {
		return nil, g.err
	}

	view := make([]any, len(args))
	for i, arg := range args {
		if _, ok := arg.(cryptex.Secret); ok {
			view[i] = cryptex.Redacted
			continue
		}
		view[i] = arg
	}

	s, err := g.engine.Sanitize(ctx, view, g.names...)
	if err != nil {
		return nil, err
	}

	if g.requireMatch {
		for _, name := range g.names {
			if s.ByRule[name] == 0 {
				return nil, &cryptex.Error{Op: "call", Name: name, Err: cryptex.ErrNoMatch}
			}
		}
	}

	call := &Call{
		Func:      fn,
		ContextID: s.ContextID,
		Found:     s.Found,
	}
	if sanitized, ok := s.Data.([]any); ok {
		call.Args = sanitized
	}

	g.logger.Debug("sanitized call view",
		zap.String("func", fn),
		zap.String("context_id", call.ContextID),
		zap.Int("found", call.Found),
	)
	return call, nil
}

func (g *Guard) observe(ctx context.Context, call *Call) {
	if g.observer != nil {
		g.observer(ctx, call)
	}
}

package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	ttlcache "github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/cryptex"
	"github.com/fyrsmithlabs/cryptex/internal/substitute"
)

// Sanitize builds the AI-visible view of data, masking every match of the
// named patterns (and, when auto-detection is on, every gitleaks finding).
// Strings are sanitized directly; any other value is rendered through a
// JSON round-trip and sanitized leaf by leaf, so data must be a string or
// JSON-marshalable.
//
// Every name is resolved before any matching work happens; an unknown name
// fails with cryptex.ErrPatternNotFound. The view is cached under its fresh
// context ID for later Resolve and SanitizeResponse calls.
func (e *Engine) Sanitize(ctx context.Context, data any, names ...string) (*Sanitized, error) {
	if err := e.check("sanitize"); err != nil {
		return nil, err
	}
	start := time.Now()

	rules, err := e.namedRules(names)
	if err != nil {
		e.metrics.recordSanitize(ctx, time.Since(start), 0, err)
		return nil, err
	}

	s := &Sanitized{
		Placeholders: make(map[string]string),
		ByRule:       make(map[string]int),
		ContextID:    uuid.NewString(),
		CreatedAt:    time.Now(),
	}

	if text, ok := data.(string); ok {
		s.Data = e.sanitizeText(text, rules, s)
	} else {
		node, derr := decode(data)
		if derr != nil {
			werr := &cryptex.Error{Op: "sanitize", Err: derr}
			e.metrics.recordSanitize(ctx, time.Since(start), 0, werr)
			return nil, werr
		}
		s.Data = substitute.TransformStrings(node, func(text string) string {
			return e.sanitizeText(text, rules, s)
		})
	}

	e.cache.Set(s.ContextID, s, ttlcache.DefaultTTL)

	elapsed := time.Since(start)
	e.metrics.recordSanitize(ctx, elapsed, s.Found, nil)
	if e.warnAfter > 0 && elapsed > e.warnAfter {
		e.logger.Warn("sanitize latency above threshold",
			zap.Duration("elapsed", elapsed),
			zap.Duration("threshold", e.warnAfter),
			zap.String("context_id", s.ContextID),
		)
	}
	e.logger.Debug("sanitized data",
		zap.String("context_id", s.ContextID),
		zap.Int("found", s.Found),
	)
	return s, nil
}

// SanitizeError returns an error whose message has every pattern match
// replaced by its placeholder while Unwrap still reaches the original
// chain, so errors.Is and errors.As keep working. With no names it scans
// with every registered pattern: error messages are a leak path, so the
// default is the widest net. Errors containing no matches are returned
// unchanged; a nil err stays nil.
func (e *Engine) SanitizeError(ctx context.Context, err error, names ...string) error {
	if err == nil {
		return nil
	}
	if cerr := e.check("sanitize_error"); cerr != nil {
		return cerr
	}

	var rules []substitute.Rule
	if len(names) == 0 {
		rules = e.allRules()
	} else {
		var rerr error
		rules, rerr = e.namedRules(names)
		if rerr != nil {
			return rerr
		}
	}

	scratch := &Sanitized{
		Placeholders: make(map[string]string),
		ByRule:       make(map[string]int),
	}
	msg := e.sanitizeText(err.Error(), rules, scratch)
	if scratch.Found == 0 {
		return err
	}

	e.logger.Debug("sanitized error message", zap.Int("found", scratch.Found))
	return &redactedError{msg: msg, cause: err}
}

// sanitizeText masks one string, recording bindings and per-rule counts
// into s. Named rules are collected before detector findings so that a
// named pattern wins any tie for the same span.
func (e *Engine) sanitizeText(text string, rules []substitute.Rule, s *Sanitized) string {
	matches := substitute.Collect(text, rules)
	if e.detector != nil {
		matches = append(matches, e.detector.collect(text)...)
	}
	merged := substitute.Merge(matches)
	if len(merged) == 0 {
		return text
	}
	for _, m := range merged {
		s.Placeholders[m.Placeholder] = m.Value
		s.ByRule[m.Rule]++
	}
	s.Found += len(merged)
	return substitute.Apply(text, merged)
}

// namedRules resolves names in declaration order, failing on the first
// unknown name before any matching work happens.
func (e *Engine) namedRules(names []string) ([]substitute.Rule, error) {
	patterns, err := e.registry.Resolve(names...)
	if err != nil {
		return nil, err
	}
	rules := make([]substitute.Rule, 0, len(patterns))
	for _, p := range patterns {
		rules = append(rules, p.Rule())
	}
	return rules, nil
}

// allRules snapshots every registered pattern as a substitution rule.
func (e *Engine) allRules() []substitute.Rule {
	patterns := e.registry.All()
	rules := make([]substitute.Rule, 0, len(patterns))
	for _, p := range patterns {
		rules = append(rules, p.Rule())
	}
	return rules
}

// decode renders a non-string value through a JSON round-trip so
// substitution sees each string leaf on its own, never regex input that
// spans value boundaries.
func decode(data any) (any, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode data: %w", err)
	}
	var node any
	if err := json.Unmarshal(b, &node); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return node, nil
}

// redactedError replaces an error's message while keeping the original
// chain reachable through Unwrap.
type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.cause }

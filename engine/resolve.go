package engine

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/cryptex"
	"github.com/fyrsmithlabs/cryptex/internal/substitute"
)

// Resolve replaces placeholders in data with the original values recorded
// under contextID. Strings are resolved directly; any other value is
// rebuilt through a JSON round-trip with every string leaf resolved, so the
// result is a string, or a tree of map[string]any, []any and JSON scalars.
//
// Fails with cryptex.ErrContextNotFound when the context was never created,
// expired, or was evicted.
func (e *Engine) Resolve(ctx context.Context, data any, contextID string) (any, error) {
	if err := e.check("resolve"); err != nil {
		return nil, err
	}

	s, err := e.lookupContext(ctx, "resolve", contextID)
	if err != nil {
		e.metrics.recordResolve(ctx, err)
		return nil, err
	}

	bindings := orderBindings(s.Placeholders, func(b binding) string { return b.placeholder })
	resolved := 0
	restore := func(text string) string {
		for _, b := range bindings {
			if n := strings.Count(text, b.placeholder); n > 0 {
				text = strings.ReplaceAll(text, b.placeholder, b.value)
				resolved += n
			}
		}
		return text
	}

	out, err := e.rewrite("resolve", contextID, data, restore)
	if err != nil {
		e.metrics.recordResolve(ctx, err)
		return nil, err
	}

	e.metrics.recordResolve(ctx, nil)
	e.logger.Debug("resolved placeholders",
		zap.String("context_id", contextID),
		zap.Int("resolved", resolved),
	)
	return out, nil
}

// SanitizeResponse masks any original values from the stored context that
// leaked into data, reusing the placeholders recorded at sanitization time.
// The shape of the result follows the same rules as Resolve.
func (e *Engine) SanitizeResponse(ctx context.Context, data any, contextID string) (any, error) {
	if err := e.check("sanitize_response"); err != nil {
		return nil, err
	}

	s, err := e.lookupContext(ctx, "sanitize_response", contextID)
	if err != nil {
		return nil, err
	}

	bindings := orderBindings(s.Placeholders, func(b binding) string { return b.value })
	masked := 0
	mask := func(text string) string {
		for _, b := range bindings {
			if n := strings.Count(text, b.value); n > 0 {
				text = strings.ReplaceAll(text, b.value, b.placeholder)
				masked += n
			}
		}
		return text
	}

	out, err := e.rewrite("sanitize_response", contextID, data, mask)
	if err != nil {
		return nil, err
	}

	if masked > 0 {
		e.logger.Debug("masked leaked values in response",
			zap.String("context_id", contextID),
			zap.Int("masked", masked),
		)
	}
	return out, nil
}

// rewrite applies fn to data the way Sanitize renders it: directly for
// strings, leaf by leaf through a JSON round-trip for everything else.
func (e *Engine) rewrite(op, contextID string, data any, fn func(string) string) (any, error) {
	if text, ok := data.(string); ok {
		return fn(text), nil
	}
	node, err := decode(data)
	if err != nil {
		return nil, &cryptex.Error{Op: op, Name: contextID, Err: err}
	}
	return substitute.TransformStrings(node, fn), nil
}

// binding is one placeholder-to-value pair from a sanitization context.
type binding struct {
	placeholder string
	value       string
}

// orderBindings flattens a placeholder map into a slice ordered by the
// given key, longest first. Replacement must see longer keys before any
// key they contain, and map iteration order is not deterministic.
func orderBindings(placeholders map[string]string, key func(binding) string) []binding {
	bindings := make([]binding, 0, len(placeholders))
	for placeholder, value := range placeholders {
		bindings = append(bindings, binding{placeholder: placeholder, value: value})
	}
	sort.Slice(bindings, func(i, j int) bool {
		ki, kj := key(bindings[i]), key(bindings[j])
		if len(ki) != len(kj) {
			return len(ki) > len(kj)
		}
		return ki < kj
	})
	return bindings
}

package protect

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/fyrsmithlabs/cryptex"
)

// Func1 wraps a one-argument function. Every call builds a sanitized view
// before fn runs with the original value; the view goes to the guard's
// observer and debug log.
func Func1[A, R any](g *Guard, fn func(A) (R, error)) func(A) (R, error) {
	name := funcName(fn)
	return func(a A) (R, error) {
		return guardedCall(context.Background(), g, name, []any{a}, func() (R, error) {
			return fn(a)
		})
	}
}

// Func2 wraps a two-argument function.
func Func2[A, B, R any](g *Guard, fn func(A, B) (R, error)) func(A, B) (R, error) {
	name := funcName(fn)
	return func(a A, b B) (R, error) {
		return guardedCall(context.Background(), g, name, []any{a, b}, func() (R, error) {
			return fn(a, b)
		})
	}
}

// Func3 wraps a three-argument function.
func Func3[A, B, C, R any](g *Guard, fn func(A, B, C) (R, error)) func(A, B, C) (R, error) {
	name := funcName(fn)
	return func(a A, b B, c C) (R, error) {
		return guardedCall(context.Background(), g, name, []any{a, b, c}, func() (R, error) {
			return fn(a, b, c)
		})
	}
}

// Func1Ctx wraps a context-aware one-argument function. The caller's
// context flows through sanitization, the target and the observer.
func Func1Ctx[A, R any](g *Guard, fn func(context.Context, A) (R, error)) func(context.Context, A) (R, error) {
	name := funcName(fn)
	return func(ctx context.Context, a A) (R, error) {
		return guardedCall(ctx, g, name, []any{a}, func() (R, error) {
			return fn(ctx, a)
		})
	}
}

// Func2Ctx wraps a context-aware two-argument function.
func Func2Ctx[A, B, R any](g *Guard, fn func(context.Context, A, B) (R, error)) func(context.Context, A, B) (R, error) {
	name := funcName(fn)
	return func(ctx context.Context, a A, b B) (R, error) {
		return guardedCall(ctx, g, name, []any{a, b}, func() (R, error) {
			return fn(ctx, a, b)
		})
	}
}

// Func3Ctx wraps a context-aware three-argument function.
func Func3Ctx[A, B, C, R any](g *Guard, fn func(context.Context, A, B, C) (R, error)) func(context.Context, A, B, C) (R, error) {
	name := funcName(fn)
	return func(ctx context.Context, a A, b B, c C) (R, error) {
		return guardedCall(ctx, g, name, []any{a, b, c}, func() (R, error) {
			return fn(ctx, a, b, c)
		})
	}
}

// guardedCall is the single invocation path behind every wrapper: sanitize
// the view, run the target with the original arguments, sanitize outputs
// when configured, then hand the completed view to the observer.
func guardedCall[R any](ctx context.Context, g *Guard, name string, args []any, invoke func() (R, error)) (R, error) {
	var zero R

	call, err := g.sanitizeCall(ctx, name, args)
	if err != nil {
		return zero, err
	}

	start := time.Now()
	out, callErr := invoke()
	call.Duration = time.Since(start)

	if callErr != nil {
		masked := g.engine.SanitizeError(ctx, callErr, g.names...)
		call.Err = masked.Error()
		g.observe(ctx, call)
		if g.sanitizeOutput {
			return zero, masked
		}
		return out, callErr
	}

	if g.sanitizeOutput {
		rebuilt, merr := maskResult[R](ctx, g, out, call.ContextID)
		if merr != nil {
			g.observe(ctx, call)
			return zero, merr
		}
		out = rebuilt
	}

	g.observe(ctx, call)
	return out, nil
}

// maskResult rebuilds the target's result with every value from the call's
// sanitization context masked. When the masked value cannot be expressed as
// R again, the call fails; a result never leaves unmasked once output
// sanitization was requested.
func maskResult[R any](ctx context.Context, g *Guard, out R, contextID string) (R, error) {
	var zero R

	masked, err := g.engine.SanitizeResponse(ctx, out, contextID)
	if err != nil {
		return zero, err
	}
	if typed, ok := masked.(R); ok {
		return typed, nil
	}

	// The JSON round-trip widened the value; marshal it back into R.
	b, err := json.Marshal(masked)
	if err != nil {
		return zero, &cryptex.Error{Op: "sanitize_response", Name: contextID, Err: fmt.Errorf("encode result: %w", err)}
	}
	var rebuilt R
	if err := json.Unmarshal(b, &rebuilt); err != nil {
		return zero, &cryptex.Error{Op: "sanitize_response", Name: contextID, Err: fmt.Errorf("rebuild result: %w", err)}
	}
	return rebuilt, nil
}

// funcName resolves fn's symbol name for views and logs, trimmed of its
// package path.
func funcName(fn any) string {
	f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer())
	if f == nil {
		return "func"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

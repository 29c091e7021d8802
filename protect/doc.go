// Package protect wraps functions with secret masking: each call is
// sanitized into an AI-visible view while the target function runs with the
// original argument values.
//
// A Guard declares which patterns to mask and carries the engine that does
// the work. The generic Func wrappers produce drop-in replacements for the
// functions they wrap:
//
//	guard := protect.Secrets([]string{pattern.OpenAIKey})
//	defer guard.Close()
//
//	fetch := protect.Func1(guard, fetchUser)
//	user, err := fetch("sk-...")  // fetchUser sees the real key
//
// The view of every call (function name, sanitized arguments, context ID)
// goes to the guard's observer and debug log; this package never talks to an
// AI provider itself. Presets cover the built-in pattern groups: APIKeys,
// Files, Tokens, Database and All.
package protect

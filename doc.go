// Package cryptex masks secrets in function calls made on behalf of AI and
// LLM integrations. A thread-safe pattern registry maps secret-category
// names to detection regexes and display placeholders, and call guards
// build a sanitized, AI-visible view of every protected invocation while
// the wrapped function runs with the original, unmodified values.
//
// The library ships in four pieces:
//
//   - pattern: the registry and the built-in pattern table
//   - engine: the substitution engine (sanitize, resolve, response masking)
//   - protect: typed call guards and convenience presets
//   - this root package: the shared error taxonomy and the Secret string
//     type that redacts itself through fmt and serialization
//
// Nothing here persists state or reads configuration. Registries live in
// process memory, substitution is reversible only through values the
// caller already holds, and every knob is a constructor option.
package cryptex

// Package engine implements the substitution engine behind cryptex call
// guards. An Engine builds sanitized views of data by replacing every match
// of the requested patterns with its placeholder, retains the
// placeholder-to-value bindings in a bounded in-memory context cache, and
// can later restore the original values or re-mask them in a response.
//
// # Sanitization contexts
//
// Every Sanitize call produces a Sanitized view with a fresh context ID.
// The view is cached under that ID until it expires (WithCacheTTL) or is
// evicted to stay within capacity (WithCacheCapacity). Resolve and
// SanitizeResponse consult the cached view; once it is gone they fail with
// cryptex.ErrContextNotFound. Nothing is ever written outside process
// memory.
//
// # Auto-detection
//
// With WithAutoDetect enabled, the engine runs the gitleaks default rule
// set over every string it sanitizes and masks findings beyond the named
// patterns. Auto-detected values are masked with placeholders derived from
// the gitleaks rule ID, so a "github-pat" finding becomes "{{GITHUB_PAT}}".
// When a named pattern and a detector rule claim the same span, the named
// pattern wins.
//
// # Telemetry
//
// Engines instrument themselves through the OpenTelemetry metric API using
// the provider given with WithMeterProvider (the global provider by
// default) and log through the injected zap logger. Telemetry failures
// degrade to warnings; they never fail a sanitize call.
package engine

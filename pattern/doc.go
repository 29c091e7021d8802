// Package pattern defines named secret-detection patterns and the
// registries that hold them.
//
// A Pattern couples a regular expression with the literal placeholder that
// stands in for its matches in sanitized text. Patterns are grouped into a
// Registry, which is safe for concurrent use. The package maintains a
// process-wide default registry, pre-seeded with the built-in patterns, that
// backs the package-level Register, Override, Lookup, Names and All
// functions.
//
// Patterns are immutable once compiled. There is no way to remove a pattern
// from a registry; callers either add new names or explicitly replace an
// existing one with Override.
package pattern

package pattern

import (
	"fmt"
	"regexp"

	"github.com/fyrsmithlabs/cryptex"
	"github.com/fyrsmithlabs/cryptex/internal/substitute"
)

// namePattern constrains pattern names to lowercase snake_case identifiers.
var namePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// Pattern is a named, compiled secret-detection rule. Every occurrence of
// the expression in sanitized text is replaced by the placeholder.
//
// The zero value is not usable; obtain Patterns from Compile, MustCompile or
// a registry.
type Pattern struct {
	name        string
	expr        string
	placeholder string
	description string

	re *regexp.Regexp
}

// Compile validates the name and placeholder, compiles expr as an RE2
// regular expression and returns the resulting Pattern.
//
// The returned error wraps cryptex.ErrInvalidName when the name is not a
// lowercase snake_case identifier, cryptex.ErrInvalidPattern when expr is
// empty or does not compile, and cryptex.ErrInvalidPlaceholder when the
// placeholder is empty.
func Compile(name, expr, placeholder string) (Pattern, error) {
	if !namePattern.MatchString(name) {
		return Pattern{}, &cryptex.Error{Op: "compile", Name: name, Err: cryptex.ErrInvalidName}
	}
	if expr == "" {
		return Pattern{}, &cryptex.Error{Op: "compile", Name: name, Err: fmt.Errorf("%w: empty expression", cryptex.ErrInvalidPattern)}
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, &cryptex.Error{Op: "compile", Name: name, Err: fmt.Errorf("%w: %v", cryptex.ErrInvalidPattern, err)}
	}
	if placeholder == "" {
		return Pattern{}, &cryptex.Error{Op: "compile", Name: name, Err: fmt.Errorf("%w: empty placeholder", cryptex.ErrInvalidPlaceholder)}
	}
	return Pattern{name: name, expr: expr, placeholder: placeholder, re: re}, nil
}

// MustCompile is like Compile but panics on error. It is intended for
// package-level pattern tables where the inputs are fixed.
func MustCompile(name, expr, placeholder string) Pattern {
	p, err := Compile(name, expr, placeholder)
	if err != nil {
		panic(err)
	}
	return p
}

// Describe returns a copy of the Pattern with its description set.
func (p Pattern) Describe(text string) Pattern {
	p.description = text
	return p
}

// Name returns the registry name of the pattern.
func (p Pattern) Name() string { return p.name }

// Expr returns the regular expression source.
func (p Pattern) Expr() string { return p.expr }

// Placeholder returns the literal text substituted for each match.
func (p Pattern) Placeholder() string { return p.placeholder }

// Description returns the optional human-readable description.
func (p Pattern) Description() string { return p.description }

// Regexp returns the compiled expression.
func (p Pattern) Regexp() *regexp.Regexp { return p.re }

// Match reports whether s contains at least one occurrence of the pattern.
func (p Pattern) Match(s string) bool { return p.re.MatchString(s) }

// Apply replaces every occurrence of the pattern in s with the placeholder.
// The placeholder is inserted literally; it is not expanded.
func (p Pattern) Apply(s string) string {
	return p.re.ReplaceAllLiteralString(s, p.placeholder)
}

// Rule converts the pattern into a substitution rule.
func (p Pattern) Rule() substitute.Rule {
	return substitute.Rule{Name: p.name, Regex: p.re, Placeholder: p.placeholder}
}

// String implements fmt.Stringer. It never exposes matched values.
func (p Pattern) String() string {
	return fmt.Sprintf("%s => %s", p.name, p.placeholder)
}

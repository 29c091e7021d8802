package pattern

import (
	"sort"
	"sync"

	"github.com/fyrsmithlabs/cryptex"
)

// Registry is a concurrency-safe collection of named patterns. Patterns can
// be added and replaced but never removed.
type Registry struct {
	mu       sync.RWMutex
	patterns map[string]Pattern
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{patterns: make(map[string]Pattern)}
}

// NewWithDefaults returns a registry seeded with the built-in patterns.
func NewWithDefaults() *Registry {
	r := New()
	for _, p := range Builtins() {
		r.patterns[p.name] = p
	}
	return r
}

// Register adds p to the registry. Registering a name that is already
// present fails with cryptex.ErrDuplicatePattern; use Override to replace an
// existing pattern. The registry is left unchanged on error.
func (r *Registry) Register(p Pattern) error {
	if p.re == nil {
		return &cryptex.Error{Op: "register", Name: p.name, Err: cryptex.ErrInvalidPattern}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patterns[p.name]; ok {
		return &cryptex.Error{Op: "register", Name: p.name, Err: cryptex.ErrDuplicatePattern}
	}
	r.patterns[p.name] = p
	return nil
}

// Override adds p to the registry, replacing any existing pattern with the
// same name.
func (r *Registry) Override(p Pattern) error {
	if p.re == nil {
		return &cryptex.Error{Op: "override", Name: p.name, Err: cryptex.ErrInvalidPattern}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patterns[p.name] = p
	return nil
}

// Lookup returns the pattern registered under name. The error wraps
// cryptex.ErrPatternNotFound when the name is unknown.
func (r *Registry) Lookup(name string) (Pattern, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patterns[name]
	if !ok {
		return Pattern{}, &cryptex.Error{Op: "lookup", Name: name, Err: cryptex.ErrPatternNotFound}
	}
	return p, nil
}

// Resolve looks up every name and returns the patterns in the given order.
// It fails on the first unknown name without resolving the rest, so callers
// either get the full set or an error naming the missing pattern.
func (r *Registry) Resolve(names ...string) ([]Pattern, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Pattern, 0, len(names))
	for _, name := range names {
		p, ok := r.patterns[name]
		if !ok {
			return nil, &cryptex.Error{Op: "resolve", Name: name, Err: cryptex.ErrPatternNotFound}
		}
		out = append(out, p)
	}
	return out, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.patterns[name]
	return ok
}

// Names returns the registered pattern names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.patterns))
	for name := range r.patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns a snapshot of every registered pattern, sorted by name.
// Mutating the returned slice does not affect the registry.
func (r *Registry) All() []Pattern {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Pattern, 0, len(r.patterns))
	for _, p := range r.patterns {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Len returns the number of registered patterns.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.patterns)
}

// defaultRegistry backs the package-level convenience functions. It is
// seeded once at init and shared for the lifetime of the process.
var defaultRegistry = NewWithDefaults()

// Default returns the process-wide registry used by the package-level
// functions and, unless configured otherwise, by engines and guards.
func Default() *Registry { return defaultRegistry }

// Register compiles the pattern and adds it to the default registry.
func Register(name, expr, placeholder string) error {
	p, err := Compile(name, expr, placeholder)
	if err != nil {
		return err
	}
	return defaultRegistry.Register(p)
}

// Override compiles the pattern and adds it to the default registry,
// replacing any existing pattern with the same name.
func Override(name, expr, placeholder string) error {
	p, err := Compile(name, expr, placeholder)
	if err != nil {
		return err
	}
	return defaultRegistry.Override(p)
}

// Lookup returns the named pattern from the default registry.
func Lookup(name string) (Pattern, error) { return defaultRegistry.Lookup(name) }

// Names returns the default registry's pattern names in sorted order.
func Names() []string { return defaultRegistry.Names() }

// All returns a snapshot of the default registry's patterns.
func All() []Pattern { return defaultRegistry.All() }

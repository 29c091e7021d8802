package engine

import "time"

// Sanitized is the AI-visible view of one piece of data. The engine caches
// every view under its ContextID so Resolve and SanitizeResponse can work
// against it later; treat a returned view as read-only.
type Sanitized struct {
	// Data is the sanitized rendering: the input string with every match
	// replaced by its placeholder, or, for structured input, the decoded
	// value tree with every string leaf sanitized.
	Data any

	// Placeholders maps each placeholder to the original value it replaced.
	// When two distinct values share a placeholder, the binding recorded
	// last wins, so resolution restores only one of them.
	Placeholders map[string]string

	// ByRule counts masked spans per pattern name. Auto-detected findings
	// are keyed by their gitleaks rule ID ("github-pat"); rule IDs carry
	// hyphens, which registry names cannot, so the keys never collide.
	ByRule map[string]int

	// ContextID keys this view in the engine's context cache.
	ContextID string

	// CreatedAt records when the view was built.
	CreatedAt time.Time

	// Found is the total number of masked spans across all of Data.
	Found int
}

// Lookup returns the original value recorded for placeholder.
func (s *Sanitized) Lookup(placeholder string) (string, bool) {
	value, ok := s.Placeholders[placeholder]
	return value, ok
}

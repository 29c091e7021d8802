// Package substitute implements the low-level replacement mechanics shared
// by the pattern registry and the sanitization engine: match collection
// across multiple rules, overlap resolution, placeholder application, and
// string-leaf traversal of structured values.
package substitute

import (
	"regexp"
	"sort"
)

// Rule pairs a compiled detection regex with the literal placeholder that
// replaces its matches.
type Rule struct {
	Name        string
	Regex       *regexp.Regexp
	Placeholder string
}

// Match is one replacement span located in the input text.
type Match struct {
	Start       int
	End         int
	Rule        string
	Placeholder string
	Value       string // original matched text
}

// Collect finds every match of every rule in text. Zero-width matches are
// ignored. The result follows rule order, may contain overlapping spans, and
// must pass through Merge before Apply.
func Collect(text string, rules []Rule) []Match {
	var matches []Match
	for _, rule := range rules {
		for _, span := range rule.Regex.FindAllStringIndex(text, -1) {
			if span[0] == span[1] {
				continue
			}
			matches = append(matches, Match{
				Start:       span[0],
				End:         span[1],
				Rule:        rule.Name,
				Placeholder: rule.Placeholder,
				Value:       text[span[0]:span[1]],
			})
		}
	}
	return matches
}

// Merge resolves overlapping spans. Matches are ordered by start position
// with longer spans winning ties, and any span overlapping an already-kept
// span is dropped. The sort is stable, so when two rules produce the same
// span the one collected first wins. The result is ascending and
// overlap-free.
func Merge(matches []Match) []Match {
	if len(matches) <= 1 {
		return matches
	}

	sorted := make([]Match, len(matches))
	copy(sorted, matches)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End > sorted[j].End
	})

	merged := []Match{sorted[0]}
	for _, m := range sorted[1:] {
		if m.Start < merged[len(merged)-1].End {
			continue
		}
		merged = append(merged, m)
	}
	return merged
}

// Apply replaces every span with its placeholder, working right to left so
// earlier indices stay valid. matches must be merged.
func Apply(text string, matches []Match) string {
	out := text
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		if m.Start < 0 || m.End > len(out) || m.Start >= m.End {
			continue
		}
		out = out[:m.Start] + m.Placeholder + out[m.End:]
	}
	return out
}

// TransformStrings applies fn to every string leaf of a decoded JSON tree
// (string, map[string]any, []any) and returns the rebuilt tree. Map keys and
// non-string scalars pass through untouched.
func TransformStrings(node any, fn func(string) string) any {
	switch v := node.(type) {
	case string:
		return fn(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, value := range v {
			out[key] = TransformStrings(value, fn)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, value := range v {
			out[i] = TransformStrings(value, fn)
		}
		return out
	default:
		return node
	}
}

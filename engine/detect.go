package engine

import (
	"strings"

	"github.com/zricethezav/gitleaks/v8/detect"

	"github.com/fyrsmithlabs/cryptex/internal/substitute"
)

// detector locates secrets beyond the named patterns using the gitleaks
// default rule set.
type detector struct {
	inner *detect.Detector
}

// newDetector compiles the gitleaks default configuration. Construction is
// expensive, so an engine builds one detector and shares it across calls;
// scanning itself holds no mutable state.
func newDetector() (*detector, error) {
	d, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, err
	}
	return &detector{inner: d}, nil
}

// collect returns a substitution match for every occurrence of every secret
// the rule set finds in text. Matches are keyed by the gitleaks rule ID and
// masked with a placeholder derived from it.
func (d *detector) collect(text string) []substitute.Match {
	var matches []substitute.Match
	seen := make(map[string]struct{})
	for _, finding := range d.inner.DetectString(text) {
		secret := finding.Secret
		if secret == "" {
			continue
		}
		// One finding per occurrence; scan each distinct secret once.
		key := finding.RuleID + "\x00" + secret
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		placeholder := rulePlaceholder(finding.RuleID)
		for from := 0; ; {
			i := strings.Index(text[from:], secret)
			if i < 0 {
				break
			}
			start := from + i
			matches = append(matches, substitute.Match{
				Start:       start,
				End:         start + len(secret),
				Rule:        finding.RuleID,
				Placeholder: placeholder,
				Value:       secret,
			})
			from = start + len(secret)
		}
	}
	return matches
}

// rulePlaceholder derives the masking placeholder for a gitleaks rule ID:
// "github-pat" masks as "{{GITHUB_PAT}}".
func rulePlaceholder(ruleID string) string {
	return "{{" + strings.ToUpper(strings.ReplaceAll(ruleID, "-", "_")) + "}}"
}

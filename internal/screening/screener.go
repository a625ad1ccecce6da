package screening

import "strings"

// DefaultBlockedTerms is the built-in disallowed-term set, used when no
// override is configured.
var DefaultBlockedTerms = []string{"badword", "nasty"}

// Screener checks submitted text against a fixed set of disallowed terms.
// Matching is case-insensitive substring matching with no word-boundary
// awareness; substring false positives are an accepted limitation.
type Screener struct {
	terms []string
}

func NewScreener(terms []string) *Screener {
	lowered := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			lowered = append(lowered, t)
		}
	}
	return &Screener{terms: lowered}
}

// Screen returns the first disallowed term found in text, or ("", false) when
// the text is clean. No side effects.
func (s *Screener) Screen(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, term := range s.terms {
		if strings.Contains(lowered, term) {
			return term, true
		}
	}
	return "", false
}

package intent

import "github.com/cloudflare/ahocorasick"

// KeywordRule maps a set of keywords to one canonical label.
type KeywordRule struct {
	Label    string
	Keywords []string
}

// KeywordTable is an ordered association list of keyword sets to labels.
// All keywords are matched in a single Aho-Corasick pass; when several rules
// hit, the one declared first wins, so more specific phrases must be listed
// before their generic substrings. Lookups are safe for concurrent use.
type KeywordTable struct {
	matcher  *ahocorasick.Matcher
	owners   []int // pattern index -> rule index
	rules    []KeywordRule
	fallback string
}

// NewKeywordTable builds the matcher for rules. A keyword listed under more
// than one rule belongs to the earliest of them.
func NewKeywordTable(rules []KeywordRule, fallback string) *KeywordTable {
	t := &KeywordTable{rules: rules, fallback: fallback}

	seen := make(map[string]bool)
	var patterns [][]byte
	for ri, rule := range rules {
		for _, kw := range rule.Keywords {
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			patterns = append(patterns, []byte(kw))
			t.owners = append(t.owners, ri)
		}
	}
	if len(patterns) > 0 {
		t.matcher = ahocorasick.NewMatcher(patterns)
	}
	return t
}

// Labels returns the rule labels in priority order followed by the fallback.
func (t *KeywordTable) Labels() []string {
	labels := make([]string, 0, len(t.rules)+1)
	for _, r := range t.rules {
		labels = append(labels, r.Label)
	}
	return append(labels, t.fallback)
}

// Lookup returns the label of the highest priority rule matching text.
func (t *KeywordTable) Lookup(text string) (string, bool) {
	if t.matcher == nil {
		return "", false
	}
	hits := t.matcher.MatchThreadSafe([]byte(text))

	best := -1
	for _, idx := range hits {
		if idx < 0 || idx >= len(t.owners) {
			continue
		}
		if r := t.owners[idx]; best == -1 || r < best {
			best = r
		}
	}
	if best == -1 {
		return "", false
	}
	return t.rules[best].Label, true
}

// Classify is Lookup with the table's fallback label.
func (t *KeywordTable) Classify(text string) string {
	if label, ok := t.Lookup(text); ok {
		return label
	}
	return t.fallback
}

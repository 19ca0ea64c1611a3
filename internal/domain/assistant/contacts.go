package assistant

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultContactThreshold is the minimum similarity for a known contact to
// be suggested.
const DefaultContactThreshold = 70

// ContactMatch is a known contact similar to an extracted name.
type ContactMatch struct {
	Name     string
	Score    int // 0-100, higher is closer
	Distance int // Levenshtein distance in runes
}

// ContactResolver matches extracted names ("王", "李娜") against the owner's
// known contacts ("王建国", "李娜").
type ContactResolver struct {
	names []string
}

// NewContactResolver builds a resolver over names, dropping blanks and
// duplicates while keeping order.
func NewContactResolver(names []string) *ContactResolver {
	seen := make(map[string]bool, len(names))
	r := &ContactResolver{names: make([]string, 0, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		r.names = append(r.names, n)
	}
	return r
}

// Resolve returns the best known contact scoring at least threshold, or nil.
// Ties keep the earlier contact.
func (r *ContactResolver) Resolve(name string, threshold int) *ContactMatch {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	var best *ContactMatch
	bestScore := threshold - 1
	for _, candidate := range r.names {
		score := contactScore(name, candidate)
		if score > bestScore {
			bestScore = score
			best = &ContactMatch{
				Name:     candidate,
				Score:    score,
				Distance: fuzzy.LevenshteinDistance(name, candidate),
			}
		}
	}
	return best
}

// Rank returns every known contact with its score against name, best first.
func (r *ContactResolver) Rank(name string) []ContactMatch {
	out := make([]ContactMatch, 0, len(r.names))
	for _, candidate := range r.names {
		out = append(out, ContactMatch{
			Name:     candidate,
			Score:    contactScore(name, candidate),
			Distance: fuzzy.LevenshteinDistance(name, candidate),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// contactScore combines containment, edit distance and subsequence rank.
func contactScore(a, b string) int {
	if a == b {
		return 100
	}

	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la == 0 || lb == 0 {
		return 0
	}

	if strings.Contains(b, a) {
		return 75 + 25*la/lb
	}
	if strings.Contains(a, b) {
		return 75 + 25*lb/la
	}

	maxLen := max(la, lb)
	distance := fuzzy.LevenshteinDistance(a, b)
	score := 100 * (maxLen - distance) / maxLen

	// a is a subsequence of b, e.g. 王国 in 王建国
	if rank := fuzzy.RankMatch(a, b); rank >= 0 {
		if s := 60 - rank*40/lb; s > score {
			score = s
		}
	}
	return score
}

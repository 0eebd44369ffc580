package geo

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Acceptance thresholds. Empirically chosen; treat as tunable.
//
// Short candidates ("NYC", "LA") are maximally ambiguous, so they face the
// strictest bar: high similarity, containment and a well-known place.
// Longer candidates get accepted on containment alone or on moderate
// similarity, with a low importance floor to filter noise hits.
const (
	shortCandidateLen  = 4
	shortSimilarityMin = 0.8
	shortImportanceMin = 0.4
	similarityMin      = 0.65
	importanceMin      = 0.2
)

// Similarity is a normalized edit-distance score in [0,1]. Symmetric in
// its arguments.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return float64(maxLen-dist) / float64(maxLen)
}

// Matches reports whether a geocoder hit is a credible resolution of the
// candidate the user typed. It compares the candidate against the first
// comma segment of the display name; plain edit distance alone would
// falsely accept too many unrelated places, so containment and the
// provider's importance score gate the decision.
func Matches(candidate, displayName string, importance float64) bool {
	cand := strings.ToLower(strings.TrimSpace(candidate))
	name := strings.ToLower(CanonicalName(displayName))
	if cand == "" || name == "" {
		return false
	}

	sim := Similarity(cand, name)
	contained := strings.Contains(name, cand) || strings.Contains(cand, name)

	if utf8.RuneCountInString(cand) < shortCandidateLen {
		return contained && sim >= shortSimilarityMin && importance >= shortImportanceMin
	}
	return (contained || sim >= similarityMin) && importance >= importanceMin
}

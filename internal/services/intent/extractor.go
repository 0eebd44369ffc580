package intent

import (
	"regexp"
	"strings"
)

// stopWords are filtered out of extracted candidate spans: articles,
// prepositions, pronouns and the verbs people wrap around a place name.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {},
	"i": {}, "i'm": {}, "im": {}, "me": {}, "my": {}, "we": {}, "our": {},
	"you": {}, "your": {}, "it": {}, "its": {}, "there": {}, "here": {},
	"is": {}, "are": {}, "was": {}, "am": {}, "be": {}, "been": {},
	"what": {}, "what's": {}, "whats": {}, "let's": {}, "lets": {},
	"go": {}, "going": {}, "gonna": {}, "visit": {}, "visiting": {},
	"tell": {}, "about": {}, "plan": {}, "planning": {}, "want": {},
	"wanna": {}, "like": {}, "can": {}, "will": {}, "please": {},
	"to": {}, "in": {}, "at": {}, "of": {}, "on": {}, "for": {},
	"with": {}, "and": {}, "or": {}, "so": {},
}

// indicatorWords signal that a location name likely follows.
var indicatorWords = map[string]struct{}{
	"to": {}, "in": {}, "at": {}, "near": {}, "around": {},
	"visit": {}, "visiting": {},
}

// Phrase rules capture up to the next clause boundary. Ordered by
// specificity: the redundant "going to go to" phrasing has to win before
// the plain "going to" rule can misfire on it.
var (
	reGoingToGoTo = regexp.MustCompile(`(?i)going to go to\s+([^,.!?;]+)`)
	reGoingTo     = regexp.MustCompile(`(?i)going to\s+([^,.!?;]+)`)
	reInAt        = regexp.MustCompile(`(?i)\b(?:in|at)\s+([^,.!?;]+)`)
	reTo          = regexp.MustCompile(`(?i)\bto\s+([^,.!?;]+)`)
	rePunct       = regexp.MustCompile(`[.,!?;:"']`)
)

// Extract produces an ordered list of candidate location strings from raw
// query text. Earlier rules are higher-confidence; the list is never empty
// (the final fallback is the whole query with punctuation stripped).
func Extract(query string) []string {
	query = strings.TrimSpace(query)
	lower := strings.ToLower(query)

	var candidates []string
	seen := map[string]struct{}{}
	add := func(c string) {
		c = strings.TrimSpace(c)
		if c == "" {
			return
		}
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		candidates = append(candidates, c)
	}

	if m := reGoingToGoTo.FindStringSubmatch(query); m != nil {
		add(cleanSpan(m[1]))
	}
	if m := reGoingTo.FindStringSubmatch(query); m != nil {
		span := m[1]
		// "going to go to X" leaves "go to X" in this capture; skip the
		// leading verb so both rules agree on the name.
		span = strings.TrimPrefix(span, "go to ")
		add(cleanSpan(span))
	}
	if m := reInAt.FindStringSubmatch(query); m != nil {
		add(cleanSpan(m[1]))
	}
	// A bare "to X" only counts when the query has no "going to": otherwise
	// this would re-match the trailing "to" of the rules above.
	if !strings.Contains(lower, "going to") {
		if m := reTo.FindStringSubmatch(query); m != nil {
			add(cleanSpan(m[1]))
		}
	}
	if c := scanForIndicator(query); c != "" {
		add(c)
	}
	if c := lastTokens(query, 5); c != "" {
		add(c)
	}
	add(strings.TrimSpace(rePunct.ReplaceAllString(query, "")))

	if len(candidates) == 0 {
		candidates = append(candidates, query)
	}
	return candidates
}

// cleanSpan strips terminal punctuation and stop words from a captured span.
// Leading stop words are skipped; after the first real token is kept, the
// next stop word ends the span, so "Paris and what places should I visit"
// reduces to "Paris" instead of swallowing the following clause. If
// filtering empties the span entirely, the raw capture is kept: a real
// place name must never be discarded just because it collides with the
// stop list.
func cleanSpan(span string) string {
	span = strings.TrimSpace(span)
	tokens := strings.Fields(span)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		word := strings.Trim(tok, `.,!?;:"'`)
		if word == "" {
			continue
		}
		if _, stop := stopWords[strings.ToLower(word)]; stop {
			if len(kept) > 0 {
				break
			}
			continue
		}
		kept = append(kept, word)
	}
	if len(kept) == 0 {
		return strings.Trim(span, `.,!?;:"' `)
	}
	return strings.Join(kept, " ")
}

// scanForIndicator walks the query token by token looking for a location
// indicator and takes up to the next 5 tokens as the candidate. A "to"
// immediately after "going" is skipped; the phrase rules own that case.
func scanForIndicator(query string) string {
	tokens := strings.Fields(query)
	for i, tok := range tokens {
		word := strings.ToLower(strings.Trim(tok, `.,!?;:"'`))
		if _, ok := indicatorWords[word]; !ok {
			continue
		}
		if word == "to" && i > 0 {
			prev := strings.ToLower(strings.Trim(tokens[i-1], `.,!?;:"'`))
			if prev == "going" {
				continue
			}
		}
		end := i + 1 + 5
		if end > len(tokens) {
			end = len(tokens)
		}
		if i+1 >= end {
			continue
		}
		return cleanSpan(strings.Join(tokens[i+1:end], " "))
	}
	return ""
}

// lastTokens returns the trailing n tokens of the query, stop-word-filtered.
func lastTokens(query string, n int) string {
	tokens := strings.Fields(query)
	if len(tokens) > n {
		tokens = tokens[len(tokens)-n:]
	}
	return cleanSpan(strings.Join(tokens, " "))
}

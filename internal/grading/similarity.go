package grading

import "strings"

// stopWords are excluded from keyword feedback so that matched-term lists
// carry only meaningful vocabulary.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
}

func tokenize(s string) []string {
	return strings.Fields(strings.ToLower(s))
}

// TokenContainment computes the lexical token-containment similarity between
// a reference text and a candidate text: the fraction of reference tokens
// that appear as a substring of at least one candidate token. The result is
// in [0,1]; an empty reference yields 0.
func TokenContainment(reference, candidate string) float64 {
	matched, total := containmentCounts(reference, candidate)
	if total == 0 {
		return 0
	}
	return float64(matched) / float64(total)
}

func containmentCounts(reference, candidate string) (matched, total int) {
	refTokens := tokenize(reference)
	candTokens := tokenize(candidate)
	for _, ref := range refTokens {
		for _, cand := range candTokens {
			if strings.Contains(cand, ref) {
				matched++
				break
			}
		}
	}
	return matched, len(refTokens)
}

// MatchedKeywords returns the reference tokens, stop words excluded, that the
// candidate covers under the same containment rule. Used for feedback only.
func MatchedKeywords(reference, candidate string) []string {
	candTokens := tokenize(candidate)
	var matched []string
	seen := make(map[string]bool)
	for _, ref := range tokenize(reference) {
		if stopWords[ref] || seen[ref] {
			continue
		}
		for _, cand := range candTokens {
			if strings.Contains(cand, ref) {
				matched = append(matched, ref)
				seen[ref] = true
				break
			}
		}
	}
	return matched
}

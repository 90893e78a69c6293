package match

import (
	"strings"
)

// Score computes a 0..1 similarity between a billed item name and a catalog
// item name.
//
//   - exact case-insensitive equality scores 1
//   - substring containment either direction scores shorter/longer length
//   - otherwise both strings are tokenized into words longer than 2 chars
//     and the score is the fraction of query words with a containment hit
//     in the target
//
// The token-containment heuristic is deliberately simple; match quality
// only has to be good enough to clear the acceptance threshold, and the
// two-pass category strategy in Matcher does the heavy lifting.
func Score(query, target string) float64 {
	q := normalizeName(query)
	t := normalizeName(target)
	if q == "" || t == "" {
		return 0
	}
	if q == t {
		return 1
	}

	if strings.Contains(q, t) || strings.Contains(t, q) {
		shorter, longer := len(q), len(t)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		return float64(shorter) / float64(longer)
	}

	qWords := significantWords(q)
	if len(qWords) == 0 {
		return 0
	}
	tWords := significantWords(t)

	hits := 0
	for _, qw := range qWords {
		for _, tw := range tWords {
			if strings.Contains(qw, tw) || strings.Contains(tw, qw) {
				hits++
				break
			}
		}
	}
	return float64(hits) / float64(len(qWords))
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var wordSeparators = func(r rune) bool {
	switch r {
	case ' ', '\t', '-', '_', '/', ',', '.', '(', ')', '[', ']':
		return true
	}
	return false
}

func significantWords(s string) []string {
	var out []string
	for _, w := range strings.FieldsFunc(s, wordSeparators) {
		if len(w) > 2 {
			out = append(out, w)
		}
	}
	return out
}

package dedup

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonAlnum    = regexp.MustCompile(`[^a-z0-9\s]`)
	numberToken = regexp.MustCompile(`\d[\d,]*`)
	stopWords   = map[string]struct{}{
		"the": {}, "a": {}, "an": {}, "in": {}, "on": {}, "at": {}, "to": {},
		"for": {}, "of": {}, "and": {}, "or": {}, "as": {}, "by": {}, "with": {},
	}
)

// minSignificantNumber is the smallest numeric token treated as an event signature.
const minSignificantNumber = 5

type termSet map[string]struct{}

// KeyTerms lower-cases a title, strips punctuation and drops stop-words and short tokens.
func KeyTerms(title string) []string {
	cleaned := nonAlnum.ReplaceAllString(strings.ToLower(title), "")
	fields := strings.Fields(cleaned)
	terms := make([]string, 0, len(fields))
	for _, word := range fields {
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

func newTermSet(title string) termSet {
	set := termSet{}
	for _, term := range KeyTerms(title) {
		set[term] = struct{}{}
	}
	return set
}

// TitleSimilarity is the Jaccard index of the two titles' key-term sets, 0 when either is empty.
func TitleSimilarity(a, b string) float64 {
	return jaccard(newTermSet(a), newTermSet(b))
}

func jaccard(a, b termSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for term := range a {
		if _, ok := b[term]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// SignificantNumbers extracts numeric tokens >= 5 from a title ("1,200" counts as 1200).
func SignificantNumbers(title string) map[int]struct{} {
	out := map[int]struct{}{}
	for _, raw := range numberToken.FindAllString(title, -1) {
		n, err := strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
		if err != nil || n < minSignificantNumber {
			continue
		}
		out[n] = struct{}{}
	}
	return out
}

// ShareSignificantNumber reports whether both titles mention the same number >= 5.
func ShareSignificantNumber(a, b string) bool {
	return sharesNumber(SignificantNumbers(a), SignificantNumbers(b))
}

func sharesNumber(a, b map[int]struct{}) bool {
	for n := range a {
		if _, ok := b[n]; ok {
			return true
		}
	}
	return false
}

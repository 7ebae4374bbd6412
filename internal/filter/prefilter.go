package filter

import "strings"

// PreFilter is the cheap keyword gate applied before any classifier call.
type PreFilter struct {
	keywords Keywords
}

// NewPreFilter wires an immutable keyword set.
func NewPreFilter(keywords Keywords) *PreFilter {
	return &PreFilter{keywords: keywords}
}

// IsIncidentCandidate rejects any exclusion match, then requires both a violence
// indicator and a context indicator. Matching is case-insensitive substring.
func (f *PreFilter) IsIncidentCandidate(text string) bool {
	lowered := strings.ToLower(text)
	if containsAny(lowered, f.keywords.exclusions) {
		return false
	}
	return containsAny(lowered, f.keywords.violence) && containsAny(lowered, f.keywords.context)
}

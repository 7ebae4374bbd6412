package domain

// ClassificationPath records which extractor produced a result.
type ClassificationPath string

const (
	PathAI       ClassificationPath = "ai"
	PathFallback ClassificationPath = "fallback"
)

// Classification is the outcome of classifying one article.
// A nil Incident is a deliberate rejection explained by Reason.
type Classification struct {
	Incident *CandidateIncident
	Path     ClassificationPath
	Reason   string
}

// Accepted reports whether the classifier produced an incident.
func (c Classification) Accepted() bool {
	return c.Incident != nil
}

package classify

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"IncidentScanner/internal/domain"
	"IncidentScanner/internal/filter"
)

const (
	maxTitleLength   = 70
	maxSummaryLength = 200
	maxCount         = 1000
)

var (
	fatalityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d[\d,]*)\s+(?:[a-z]+\s+){0,2}(?:killed|dead|died|slain|murdered|lost their lives)`),
		regexp.MustCompile(`(?:kill|kills|killed|killing|murder|murders|murdered|slay|slew)\s+(?:at least\s+|about\s+|over\s+|no fewer than\s+)?(\d[\d,]*)`),
		regexp.MustCompile(`death toll\s+(?:rises\s+to\s+|hits\s+|of\s+)?(\d[\d,]*)`),
	}
	injuryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d[\d,]*)\s+(?:[a-z]+\s+){0,2}(?:injured|wounded)`),
		regexp.MustCompile(`(?:injure|injures|injured|wound|wounds|wounded)\s+(?:at least\s+|about\s+|over\s+)?(\d[\d,]*)`),
	}
	abductionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d[\d,]*)\s+(?:[a-z]+\s+){0,2}(?:kidnapped|abducted|taken hostage|held hostage)`),
		regexp.MustCompile(`(?:kidnap|kidnaps|kidnapped|abduct|abducts|abducted)\s+(?:at least\s+|about\s+|over\s+)?(\d[\d,]*)`),
	}
)

var typeMarkers = []struct {
	terms []string
	kind  domain.IncidentType
}{
	{[]string{"boko haram", "iswap", "terrorist", "ansaru", "jihadist", "insurgent", "lakurawa", "suicide bomb"}, domain.TypeTerrorism},
	{[]string{"bandit", "kidnap", "abduct"}, domain.TypeBanditry},
	{[]string{"cultist", "cult clash", "cult war", "rival cult"}, domain.TypeCultClash},
	// Security forces count only as a party to the violence, not when quoted
	// ("police said").
	{[]string{
		"army base", "military base", "army barracks", "military formation", "army checkpoint",
		"police station", "police division", "police checkpoint", "police patrol", "policemen",
		"police officers", "soldiers killed", "killed soldiers",
		"clash with police", "clashed with police", "police clash",
		"clash with soldiers", "clashed with soldiers", "clash with troops", "clashed with troops",
	}, domain.TypePoliceClash},
}

// Fallback is the deterministic extractor used when the AI path is unavailable or fails.
type Fallback struct {
	keywords filter.Keywords
	accepted map[domain.IncidentType]struct{}
	jitter   float64
	rnd      func() float64
	now      func() time.Time
}

func newFallback(keywords filter.Keywords, accepted map[domain.IncidentType]struct{}, jitter float64, rnd func() float64, now func() time.Time) *Fallback {
	return &Fallback{keywords: keywords, accepted: accepted, jitter: jitter, rnd: rnd, now: now}
}

// Classify extracts an incident from the article text with regular expressions.
func (f *Fallback) Classify(article domain.Article) domain.Classification {
	result := domain.Classification{Path: domain.PathFallback}

	if reason := screenTitle(article.Title); reason != "" {
		result.Reason = reason
		return result
	}
	text := strings.ToLower(article.Text())
	if reason := screenText(text); reason != "" {
		result.Reason = reason
		return result
	}
	if !f.keywords.MatchViolence(text) {
		result.Reason = ReasonNoViolence
		return result
	}

	fatalities := extractCount(text, fatalityPatterns)
	injuries := extractCount(text, injuryPatterns)
	abducted := extractCount(text, abductionPatterns)
	if fatalities+injuries+abducted == 0 {
		result.Reason = ReasonNoCasualties
		return result
	}

	kind := inferType(text)
	if !isAccepted(f.accepted, kind) {
		result.Reason = ReasonTypeNotAccepted
		return result
	}

	state := ResolveState(article.Text())
	occurred := article.PublishedAt
	if occurred.IsZero() {
		occurred = f.now()
	}

	result.Incident = &domain.CandidateIncident{
		Title:        truncate(article.Title, maxTitleLength),
		Summary:      truncate(article.Content, maxSummaryLength),
		OccurredAt:   occurred,
		State:        state,
		Coordinates:  Jitter(Centroid(state), f.jitter, f.rnd),
		Fatalities:   fatalities,
		Injuries:     injuries,
		Abducted:     abducted,
		IncidentType: kind,
		Severity:     domain.SeverityFor(fatalities, fatalities+injuries+abducted),
		SourceURL:    article.URL,
		Sources:      sourcesOf(article),
	}
	return result
}

// extractCount returns the largest plausible number matched by any pattern.
func extractCount(lowered string, patterns []*regexp.Regexp) int {
	best := 0
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(lowered, -1) {
			n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
			if err != nil || n >= maxCount {
				continue
			}
			if n > best {
				best = n
			}
		}
	}
	return best
}

func inferType(lowered string) domain.IncidentType {
	for _, marker := range typeMarkers {
		if containsAny(lowered, marker.terms) {
			return marker.kind
		}
	}
	return domain.TypeUnknownGunmen
}

func isAccepted(accepted map[domain.IncidentType]struct{}, kind domain.IncidentType) bool {
	if len(accepted) == 0 {
		return true
	}
	_, ok := accepted[kind]
	return ok
}

func sourcesOf(article domain.Article) []string {
	if article.SourceName == "" {
		return nil
	}
	return []string{article.SourceName}
}

package dedup

import (
	"fmt"
	"strings"
	"time"

	"IncidentScanner/internal/domain"
)

// Reason explains why a candidate was flagged.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonFingerprint Reason = "fingerprint"
	ReasonSameEvent   Reason = "same_event"
)

// Fingerprint is the coarse event key "YYYY-MM-DD:state:fatalities:abducted".
func Fingerprint(occurredAt time.Time, state string, fatalities, abducted int) string {
	return fmt.Sprintf("%s:%s:%d:%d",
		occurredAt.UTC().Format("2006-01-02"),
		strings.ToLower(strings.TrimSpace(state)),
		fatalities,
		abducted,
	)
}

func candidateFingerprint(c domain.CandidateIncident) string {
	return Fingerprint(c.OccurredAt, c.State, c.Fatalities, c.Abducted)
}

func summaryFingerprint(s domain.IncidentSummary) string {
	return Fingerprint(s.OccurredAt, s.State, s.Fatalities, s.Abducted)
}

// KnownSet is the run-scoped union of store-fetched and in-run accepted incidents.
// It is owned by a single run loop and is not safe for concurrent use.
type KnownSet struct {
	items        []domain.IncidentSummary
	fingerprints map[string]int
}

// NewKnownSet seeds the set with incidents read back from the store.
func NewKnownSet(seed []domain.IncidentSummary) *KnownSet {
	k := &KnownSet{
		items:        make([]domain.IncidentSummary, 0, len(seed)),
		fingerprints: make(map[string]int, len(seed)),
	}
	for _, s := range seed {
		k.Add(s)
	}
	return k
}

// Add appends an incident; call it right after an insert so later candidates see it.
func (k *KnownSet) Add(s domain.IncidentSummary) {
	fp := summaryFingerprint(s)
	if _, ok := k.fingerprints[fp]; !ok {
		k.fingerprints[fp] = len(k.items)
	}
	k.items = append(k.items, s)
}

// Len returns the number of known incidents.
func (k *KnownSet) Len() int {
	return len(k.items)
}

// Items returns a copy of the known incidents in insertion order.
func (k *KnownSet) Items() []domain.IncidentSummary {
	return append([]domain.IncidentSummary(nil), k.items...)
}

func (k *KnownSet) lookup(fp string) (domain.IncidentSummary, bool) {
	idx, ok := k.fingerprints[fp]
	if !ok {
		return domain.IncidentSummary{}, false
	}
	return k.items[idx], true
}

// IncidentOptions tunes the weighted duplicate score.
type IncidentOptions struct {
	DateWindowDays    int
	CasualtyTolerance int
	DuplicateScore    int
}

// DefaultIncidentOptions mirrors the production configuration.
func DefaultIncidentOptions() IncidentOptions {
	return IncidentOptions{DateWindowDays: 3, CasualtyTolerance: 2, DuplicateScore: 3}
}

// Verdict is the outcome of a duplicate check. Score is the best score seen.
type Verdict struct {
	Duplicate bool
	Reason    Reason
	Score     int
	Match     *domain.IncidentSummary
}

// IncidentChecker decides whether a candidate repeats a known incident.
type IncidentChecker struct {
	opts IncidentOptions
}

// NewIncidentChecker builds a checker; zero options fall back to defaults.
func NewIncidentChecker(opts IncidentOptions) *IncidentChecker {
	def := DefaultIncidentOptions()
	if opts.DateWindowDays <= 0 {
		opts.DateWindowDays = def.DateWindowDays
	}
	if opts.CasualtyTolerance < 0 {
		opts.CasualtyTolerance = def.CasualtyTolerance
	}
	if opts.DuplicateScore <= 0 {
		opts.DuplicateScore = def.DuplicateScore
	}
	return &IncidentChecker{opts: opts}
}

// Check runs the fingerprint short-circuit, then weighted scoring against
// known incidents inside the date window with the same or unknown state.
func (c *IncidentChecker) Check(candidate domain.CandidateIncident, known *KnownSet) Verdict {
	if known == nil || known.Len() == 0 {
		return Verdict{}
	}

	if match, ok := known.lookup(candidateFingerprint(candidate)); ok {
		return Verdict{Duplicate: true, Reason: ReasonFingerprint, Match: &match}
	}

	var (
		best      int
		bestMatch *domain.IncidentSummary
	)
	for i := range known.items {
		existing := known.items[i]
		if !c.comparable(candidate, existing) {
			continue
		}
		score := c.Score(candidate, existing)
		if score > best {
			best = score
			bestMatch = &known.items[i]
		}
	}

	if best >= c.opts.DuplicateScore && bestMatch != nil {
		match := *bestMatch
		return Verdict{Duplicate: true, Reason: ReasonSameEvent, Score: best, Match: &match}
	}
	return Verdict{Score: best}
}

func (c *IncidentChecker) comparable(candidate domain.CandidateIncident, existing domain.IncidentSummary) bool {
	if dayDistance(candidate.OccurredAt, existing.OccurredAt) > c.opts.DateWindowDays {
		return false
	}
	return sameOrUnknownState(candidate.State, existing.State)
}

// Score sums the additive duplicate signals between a candidate and one known incident.
// Per-field casualty matches are skipped when they only restate an exact total match.
func (c *IncidentChecker) Score(candidate domain.CandidateIncident, existing domain.IncidentSummary) int {
	score := 0

	switch sim := TitleSimilarity(candidate.Title, existing.Title); {
	case sim >= 0.5:
		score += 3
	case sim >= 0.3:
		score++
	}

	total, existingTotal := candidate.Casualties(), existing.Casualties()
	totalsEqual := total == existingTotal
	switch {
	case totalsEqual:
		score += 2
	case abs(total-existingTotal) <= c.opts.CasualtyTolerance:
		score++
	}

	if candidate.Fatalities > 0 && candidate.Fatalities == existing.Fatalities &&
		!(totalsEqual && candidate.Fatalities == total) {
		score += 2
	}
	if candidate.Abducted > 0 && candidate.Abducted == existing.Abducted &&
		!(totalsEqual && candidate.Abducted == total) {
		score += 2
	}

	if area := normalizeName(candidate.LocalArea); area != "" && area == normalizeName(existing.LocalArea) {
		score += 2
	}

	if candidate.IncidentType != "" && candidate.IncidentType == existing.IncidentType {
		score++
	}

	if ShareSignificantNumber(candidate.Title, existing.Title) {
		score += 2
	}

	return score
}

func sameOrUnknownState(a, b string) bool {
	a, b = normalizeName(a), normalizeName(b)
	if a == "" || b == "" {
		return true
	}
	return a == b
}

func normalizeName(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == strings.ToLower(domain.UnknownState) {
		return ""
	}
	return v
}

func dayDistance(a, b time.Time) int {
	da := time.Date(a.UTC().Year(), a.UTC().Month(), a.UTC().Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.UTC().Year(), b.UTC().Month(), b.UTC().Day(), 0, 0, 0, 0, time.UTC)
	return abs(int(da.Sub(db).Hours() / 24))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

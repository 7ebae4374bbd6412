package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IncidentScanner/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFingerprintIgnoresOtherFields(t *testing.T) {
	t.Parallel()

	a := domain.CandidateIncident{
		Title: "Gunmen kill 5 in Plateau", OccurredAt: time.Date(2025, 3, 4, 21, 30, 0, 0, time.UTC),
		State: " Plateau ", Fatalities: 5, Injuries: 2, Abducted: 1, LocalArea: "Bokkos",
	}
	b := domain.CandidateIncident{
		Title: "Something else", OccurredAt: day(2025, 3, 4),
		State: "plateau", Fatalities: 5, Injuries: 9, Abducted: 1, IncidentType: domain.TypeBanditry,
	}

	assert.Equal(t, "2025-03-04:plateau:5:1", candidateFingerprint(a))
	assert.Equal(t, candidateFingerprint(a), candidateFingerprint(b))
	assert.Equal(t, candidateFingerprint(a), candidateFingerprint(a))
}

func TestCheckIsIdempotentWithinRun(t *testing.T) {
	t.Parallel()

	checker := NewIncidentChecker(DefaultIncidentOptions())
	known := NewKnownSet(nil)
	candidate := domain.CandidateIncident{
		Title: "Bandits kill 7 in Katsina", OccurredAt: day(2025, 2, 1),
		State: "Katsina", Fatalities: 7,
	}

	first := checker.Check(candidate, known)
	assert.False(t, first.Duplicate)
	known.Add(candidate.ToSummary("1"))

	second := checker.Check(candidate, known)
	assert.True(t, second.Duplicate)
	assert.Equal(t, ReasonFingerprint, second.Reason)
	known.Add(candidate.ToSummary("2"))

	third := checker.Check(candidate, known)
	assert.True(t, third.Duplicate)
	require.NotNil(t, third.Match)
	assert.Equal(t, "1", third.Match.ID)
}

func TestCheckInsufficientSignalIsNotDuplicate(t *testing.T) {
	t.Parallel()

	checker := NewIncidentChecker(DefaultIncidentOptions())
	known := NewKnownSet([]domain.IncidentSummary{{
		ID: "k1", Title: "Farmers attacked in village",
		OccurredAt: day(2025, 1, 11), State: "Niger", Fatalities: 2,
	}})
	candidate := domain.CandidateIncident{
		Title: "Farmers killed in Mokwa", OccurredAt: day(2025, 1, 10),
		State: "Niger", Fatalities: 2,
	}

	require.InDelta(t, 0.2, TitleSimilarity(candidate.Title, known.Items()[0].Title), 0.001)

	verdict := checker.Check(candidate, known)
	assert.False(t, verdict.Duplicate)
	assert.Equal(t, 2, verdict.Score)
}

func TestCheckSameEventScoring(t *testing.T) {
	t.Parallel()

	checker := NewIncidentChecker(DefaultIncidentOptions())
	known := NewKnownSet([]domain.IncidentSummary{{
		ID: "k1", Title: "Gunmen kill 32 in Benue village",
		OccurredAt: day(2025, 6, 14), State: "Benue", Fatalities: 32,
	}})
	candidate := domain.CandidateIncident{
		Title: "Yelwata attack: death toll rises to 32", OccurredAt: day(2025, 6, 15),
		State: "Benue", Fatalities: 32, Injuries: 10,
	}

	verdict := checker.Check(candidate, known)
	assert.True(t, verdict.Duplicate)
	assert.Equal(t, ReasonSameEvent, verdict.Reason)
	require.NotNil(t, verdict.Match)
	assert.Equal(t, "k1", verdict.Match.ID)
}

func TestCheckOutsideWindowOrStateIsIgnored(t *testing.T) {
	t.Parallel()

	checker := NewIncidentChecker(DefaultIncidentOptions())
	base := domain.IncidentSummary{
		ID: "k1", Title: "Gunmen kill 32 in Benue village",
		OccurredAt: day(2025, 6, 14), State: "Benue", Fatalities: 32,
	}
	candidate := domain.CandidateIncident{
		Title: "Gunmen kill 32 in Benue village", OccurredAt: day(2025, 6, 20),
		State: "Benue", Fatalities: 32, Injuries: 1,
	}

	assert.False(t, checker.Check(candidate, NewKnownSet([]domain.IncidentSummary{base})).Duplicate)

	candidate.OccurredAt = day(2025, 6, 15)
	candidate.State = "Plateau"
	assert.False(t, checker.Check(candidate, NewKnownSet([]domain.IncidentSummary{base})).Duplicate)

	candidate.State = domain.UnknownState
	assert.True(t, checker.Check(candidate, NewKnownSet([]domain.IncidentSummary{base})).Duplicate)
}

func TestScoreComponents(t *testing.T) {
	t.Parallel()

	checker := NewIncidentChecker(DefaultIncidentOptions())
	existing := domain.IncidentSummary{
		Title: "Bandits abduct 15 in Zamfara", State: "Zamfara",
		Fatalities: 3, Abducted: 15, LocalArea: "Maru", IncidentType: domain.TypeBanditry,
	}

	cases := []struct {
		name      string
		candidate domain.CandidateIncident
		want      int
	}{
		{
			name:      "nothing shared",
			candidate: domain.CandidateIncident{Title: "Quiet afternoon", Fatalities: 40},
			want:      0,
		},
		{
			name:      "casualty tolerance",
			candidate: domain.CandidateIncident{Title: "Quiet afternoon", Fatalities: 4, Abducted: 16},
			want:      1,
		},
		{
			name:      "split casualties equal",
			candidate: domain.CandidateIncident{Title: "Quiet afternoon", Fatalities: 3, Abducted: 15},
			want:      2 + 2 + 2,
		},
		{
			name: "area type and number",
			candidate: domain.CandidateIncident{
				Title: "15 villagers taken", LocalArea: "maru ", IncidentType: domain.TypeBanditry,
			},
			want: 2 + 1 + 2,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, checker.Score(tc.candidate, existing))
		})
	}
}

func TestKnownSetItemsIsCopy(t *testing.T) {
	t.Parallel()

	known := NewKnownSet([]domain.IncidentSummary{{ID: "a"}})
	items := known.Items()
	items[0].ID = "mutated"

	assert.Equal(t, "a", known.Items()[0].ID)
	assert.Equal(t, 1, known.Len())
}

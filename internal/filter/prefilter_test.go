package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreFilterRequiresViolenceAndContext(t *testing.T) {
	t.Parallel()

	f := NewPreFilter(DefaultKeywords())

	cases := []struct {
		name string
		text string
		want bool
	}{
		{"bandit raid", "Bandits killed 12 villagers in Zamfara overnight", true},
		{"insurgent ambush", "ISWAP ambush troops near Damboa", true},
		{"violence without context", "Two killed as trailer rams into shop", false},
		{"context without violence", "Governor of Benue commissions new market", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, f.IsIncidentCandidate(tc.text))
		})
	}
}

func TestPreFilterExclusionWins(t *testing.T) {
	t.Parallel()

	f := NewPreFilter(DefaultKeywords())

	assert.False(t, f.IsIncidentCandidate("Manchester United match result"))
	assert.False(t, f.IsIncidentCandidate("Manchester United striker killed the rally as troops of fans invaded Benue pitch"))
	assert.False(t, f.IsIncidentCandidate("Gunmen killed two in road accident near Kaduna"))
}

func TestPreFilterExclusionsDoNotMatchInsideWords(t *testing.T) {
	t.Parallel()

	f := NewPreFilter(DefaultKeywords())

	cases := []struct {
		name string
		text string
		want bool
	}{
		{"spiritual", "Bandits killed 12 worshippers in Zamfara, including the village spiritual leader", true},
		{"normalisation", "Gunmen killed 9 in Katsina despite calls for normalisation of security", true},
		{"formalities", "Boko Haram attack kills 20 in Borno, formalities aside, says official", true},
		{"bodies", "Gunmen killed 7 in Plateau; bodies at the mortuary awaiting burial", true},
		{"ritual killing", "Gunmen arrested over ritual killing of two in Kogi", false},
		{"mali", "Jihadists killed 30 soldiers in Mali's central region, says militia", false},
		{"obituary age", "Retired general who fought bandits dies at age 90 in Kaduna", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, f.IsIncidentCandidate(tc.text))
		})
	}
}

func TestPreFilterIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	f := NewPreFilter(DefaultKeywords())

	assert.True(t, f.IsIncidentCandidate("GUNMEN ATTACK VILLAGE IN PLATEAU"))
}

func TestNewKeywordsOverrides(t *testing.T) {
	t.Parallel()

	kw := NewKeywords([]string{" Torched ", "torched"}, []string{"Herders"}, nil)
	f := NewPreFilter(kw)

	assert.Equal(t, []string{"torched"}, kw.Violence())
	assert.True(t, f.IsIncidentCandidate("Herders torched farmland"))
	assert.False(t, f.IsIncidentCandidate("Bandits killed many in Zamfara"))
	assert.NotEmpty(t, kw.Exclusions())
}

func TestKeywordsAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	kw := DefaultKeywords()
	list := kw.Context()
	list[0] = "mutated"

	assert.NotEqual(t, "mutated", kw.Context()[0])
}

package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyTerms(t *testing.T) {
	t.Parallel()

	got := KeyTerms("Gunmen kill 32 in Benue: the attack on Yelwata, with troops")
	assert.Equal(t, []string{"gunmen", "kill", "benue", "attack", "yelwata", "troops"}, got)
}

func TestTitleSimilarity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1.0, TitleSimilarity("Bandits attack Zamfara village", "bandits ATTACK zamfara village!"))
	assert.Equal(t, 0.0, TitleSimilarity("", "Bandits attack Zamfara village"))
	assert.Equal(t, 0.0, TitleSimilarity("of the in", "Bandits attack"))
	assert.InDelta(t, 0.8, TitleSimilarity(
		"Bandits attack Zamfara village",
		"Bandits attack Zamfara village at dawn",
	), 0.001)
}

func TestTitleSimilarityIsSymmetric(t *testing.T) {
	t.Parallel()

	titles := []string{
		"32 killed in Benue village raid",
		"Benue: Gunmen kill 32 in overnight attack",
		"ISWAP fighters overrun military base in Borno",
		"Troops repel ISWAP attack on Borno base",
		"",
		"Kidnappers abduct 20 worshippers in Kaduna church",
	}

	for _, a := range titles {
		for _, b := range titles {
			assert.Equal(t, TitleSimilarity(a, b), TitleSimilarity(b, a), "%q vs %q", a, b)
		}
	}
}

func TestSignificantNumbers(t *testing.T) {
	t.Parallel()

	got := SignificantNumbers("Bandits kill 4, abduct 1,200 in 3 villages; 32 missing")
	assert.Equal(t, map[int]struct{}{1200: {}, 32: {}}, got)

	assert.True(t, ShareSignificantNumber("32 killed in Benue village raid", "Benue: Gunmen kill 32 in overnight attack"))
	assert.False(t, ShareSignificantNumber("3 killed in Benue", "Gunmen kill 3 in Benue"))
}

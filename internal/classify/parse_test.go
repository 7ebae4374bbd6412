package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtraction(t *testing.T) {
	t.Parallel()

	x, err := parseExtraction("Here you go:\n```json\n{\"is_security_incident\": \"true\", \"fatalities\": 5.0, \"injuries\": -2, \"kidnapped\": \"unknown\"}\n```")
	require.NoError(t, err)
	assert.True(t, bool(x.IsSecurityIncident))
	assert.Equal(t, flexInt(5), x.Fatalities)
	assert.Equal(t, flexInt(0), x.Injuries)
	assert.Equal(t, flexInt(0), x.Kidnapped)
}

func TestParseExtractionBoundsCounts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want flexInt
	}{
		{"huge float", `{"fatalities": 1e20}`, 0},
		{"negative number", `{"fatalities": -7}`, 0},
		{"negative string", `{"fatalities": "-3"}`, 0},
		{"year-sized number", `{"fatalities": 2024}`, 0},
		{"year-sized string", `{"fatalities": "2024 deaths"}`, 0},
		{"largest accepted", `{"fatalities": 999}`, 999},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			x, err := parseExtraction(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, x.Fatalities)
		})
	}
}

func TestParseExtractionMalformed(t *testing.T) {
	t.Parallel()

	_, err := parseExtraction("no json here")
	assert.ErrorIs(t, err, ErrMalformedResponse)

	_, err = parseExtraction(`{"fatalities": [1, 2]}`)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseEventDate(t *testing.T) {
	t.Parallel()

	published := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC), parseEventDate("2025-06-08", published))
	assert.Equal(t, published, parseEventDate("", published))
	assert.Equal(t, published, parseEventDate("last Tuesday", published))
	assert.Equal(t, published, parseEventDate("2025-07-01", published), "future dates clamp to publication")
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "abc", truncate("  abc  ", 5))
	assert.Equal(t, "日本語", truncate("日本語テキスト", 3))
}

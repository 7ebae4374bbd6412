package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"IncidentScanner/internal/domain"
)

func TestResolveState(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		want string
	}{
		{"Gunmen attack community in Akwa Ibom", "Akwa Ibom"},
		{"Clash in Cross River leaves 3 dead", "Cross River"},
		{"Troops repel attack in Niger State", "Niger"},
		{"Niger Republic border patrol attacked", domain.UnknownState},
		{"Explosion rocks Abuja suburb", "FCT"},
		{"Residents of Kano and Kaduna flee", "Kano"},
		{"Attack reported in Edo", "Edo"},
		{"Gunmen killed 6 in the Niger Delta creeks of Bayelsa", "Bayelsa"},
		{"Niger Delta militants blow up pipeline", domain.UnknownState},
		{"Gunmen kill 3 in Warri, Delta State", "Delta"},
		{"Police in Lagosians club", domain.UnknownState},
		{"Nothing to see here", domain.UnknownState},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ResolveState(tc.text), tc.text)
	}
}

func TestCanonicalState(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Borno", CanonicalState("Borno State"))
	assert.Equal(t, "FCT", CanonicalState("Abuja"))
	assert.Equal(t, "FCT", CanonicalState("Federal Capital Territory"))
	assert.Equal(t, "Akwa Ibom", CanonicalState(" akwa ibom "))
	assert.Equal(t, domain.UnknownState, CanonicalState("Atlantis"))
	assert.Equal(t, domain.UnknownState, CanonicalState(""))
}

func TestCentroidAndJitter(t *testing.T) {
	t.Parallel()

	assert.Equal(t, stateCentroids["FCT"], Centroid(domain.UnknownState))

	base := Centroid("Kano")
	low := Jitter(base, 0.2, func() float64 { return 0 })
	high := Jitter(base, 0.2, func() float64 { return 0.999999 })

	assert.InDelta(t, base.Lat-0.2, low.Lat, 1e-9)
	assert.InDelta(t, base.Lng-0.2, low.Lng, 1e-9)
	assert.InDelta(t, base.Lat+0.2, high.Lat, 1e-5)
	assert.Equal(t, base, Jitter(base, 0, func() float64 { return 0.9 }))
}

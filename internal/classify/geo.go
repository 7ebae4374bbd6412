package classify

import (
	"regexp"
	"sort"
	"strings"

	"IncidentScanner/internal/domain"
)

const capitalTerritory = "FCT"

// stateCentroids holds approximate centroids for the 36 states and the FCT.
var stateCentroids = map[string]domain.Coordinates{
	"Abia":        {Lat: 5.4527, Lng: 7.5248},
	"Adamawa":     {Lat: 9.3265, Lng: 12.3984},
	"Akwa Ibom":   {Lat: 5.0377, Lng: 7.9128},
	"Anambra":     {Lat: 6.2209, Lng: 6.9370},
	"Bauchi":      {Lat: 10.3158, Lng: 9.8442},
	"Bayelsa":     {Lat: 4.7719, Lng: 6.0699},
	"Benue":       {Lat: 7.3369, Lng: 8.7404},
	"Borno":       {Lat: 11.8333, Lng: 13.1500},
	"Cross River": {Lat: 5.9631, Lng: 8.3300},
	"Delta":       {Lat: 5.7040, Lng: 5.9339},
	"Ebonyi":      {Lat: 6.2649, Lng: 8.0137},
	"Edo":         {Lat: 6.6342, Lng: 5.9304},
	"Ekiti":       {Lat: 7.7190, Lng: 5.3110},
	"Enugu":       {Lat: 6.4584, Lng: 7.5464},
	"FCT":         {Lat: 9.0765, Lng: 7.3986},
	"Gombe":       {Lat: 10.2897, Lng: 11.1673},
	"Imo":         {Lat: 5.5720, Lng: 7.0588},
	"Jigawa":      {Lat: 12.2280, Lng: 9.5616},
	"Kaduna":      {Lat: 10.5105, Lng: 7.4165},
	"Kano":        {Lat: 12.0022, Lng: 8.5920},
	"Katsina":     {Lat: 13.0059, Lng: 7.6000},
	"Kebbi":       {Lat: 12.4539, Lng: 4.1975},
	"Kogi":        {Lat: 7.7337, Lng: 6.6906},
	"Kwara":       {Lat: 8.9669, Lng: 4.3874},
	"Lagos":       {Lat: 6.5244, Lng: 3.3792},
	"Nasarawa":    {Lat: 8.5380, Lng: 8.3220},
	"Niger":       {Lat: 9.9309, Lng: 5.5983},
	"Ogun":        {Lat: 7.1608, Lng: 3.3489},
	"Ondo":        {Lat: 7.2500, Lng: 5.1931},
	"Osun":        {Lat: 7.5629, Lng: 4.5200},
	"Oyo":         {Lat: 8.1574, Lng: 3.6147},
	"Plateau":     {Lat: 9.2182, Lng: 9.5175},
	"Rivers":      {Lat: 4.8156, Lng: 7.0498},
	"Sokoto":      {Lat: 13.0533, Lng: 5.2476},
	"Taraba":      {Lat: 7.9994, Lng: 10.7740},
	"Yobe":        {Lat: 12.2939, Lng: 11.4390},
	"Zamfara":     {Lat: 12.1704, Lng: 6.6600},
}

// aliases map alternative spellings onto canonical state names.
var aliases = map[string]string{
	"abuja":                     capitalTerritory,
	"fct":                       capitalTerritory,
	"federal capital territory": capitalTerritory,
	"nassarawa":                 "Nasarawa",
	"akwa-ibom":                 "Akwa Ibom",
	"cross-river":               "Cross River",
}

type statePattern struct {
	state string
	re    *regexp.Regexp
}

// statePatterns are ordered longest name first so "Cross River" wins over "Rivers"-like overlaps.
var statePatterns = buildStatePatterns()

func buildStatePatterns() []statePattern {
	names := make([]string, 0, len(stateCentroids)+len(aliases))
	canonical := map[string]string{}
	for state := range stateCentroids {
		if state == capitalTerritory {
			continue
		}
		key := strings.ToLower(state)
		names = append(names, key)
		canonical[key] = state
	}
	for alias, state := range aliases {
		if alias == "fct" {
			continue
		}
		names = append(names, alias)
		canonical[alias] = state
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	patterns := make([]statePattern, 0, len(names)+1)
	for _, name := range names {
		expr := `\b` + regexp.QuoteMeta(name) + `\b`
		if name == "niger" {
			// The neighbouring country shares the name; require a qualifier.
			expr = `\bniger\s+(?:state|community)\b`
		}
		patterns = append(patterns, statePattern{state: canonical[name], re: regexp.MustCompile(expr)})
	}
	patterns = append(patterns, statePattern{state: capitalTerritory, re: regexp.MustCompile(`\bfct\b`)})
	return patterns
}

// nigerDelta names the region, not Delta State.
var nigerDelta = regexp.MustCompile(`\bniger\s+delta\b`)

// ResolveState finds the state mentioned earliest in text, or "Unknown".
func ResolveState(text string) string {
	lowered := nigerDelta.ReplaceAllStringFunc(strings.ToLower(text), func(m string) string {
		return strings.Repeat(" ", len(m))
	})
	best, bestPos := domain.UnknownState, -1
	for _, p := range statePatterns {
		loc := p.re.FindStringIndex(lowered)
		if loc == nil {
			continue
		}
		if bestPos == -1 || loc[0] < bestPos {
			best, bestPos = p.state, loc[0]
		}
	}
	return best
}

// CanonicalState normalizes a provider-supplied state name ("Borno State", "abuja") or returns "Unknown".
func CanonicalState(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimSuffix(key, " state")
	key = strings.TrimSpace(key)
	if key == "" {
		return domain.UnknownState
	}
	if state, ok := aliases[key]; ok {
		return state
	}
	for state := range stateCentroids {
		if strings.ToLower(state) == key {
			return state
		}
	}
	return domain.UnknownState
}

// Centroid returns the state's centroid; unknown states fall back to the capital territory.
func Centroid(state string) domain.Coordinates {
	if c, ok := stateCentroids[state]; ok {
		return c
	}
	return stateCentroids[capitalTerritory]
}

// Jitter offsets each axis by up to ±halfWidth degrees using rnd in [0,1).
func Jitter(c domain.Coordinates, halfWidth float64, rnd func() float64) domain.Coordinates {
	if rnd == nil || halfWidth <= 0 {
		return c
	}
	return domain.Coordinates{
		Lat: c.Lat + (rnd()*2-1)*halfWidth,
		Lng: c.Lng + (rnd()*2-1)*halfWidth,
	}
}

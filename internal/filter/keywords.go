package filter

import "strings"

// Keywords is the immutable vocabulary used by the pre-filter and the fallback classifier.
// Build it once at start-up with NewKeywords; the lists are copied and lower-cased.
type Keywords struct {
	violence   []string
	context    []string
	exclusions []string
}

// NewKeywords normalizes the lists. A nil or empty list falls back to the compiled default.
func NewKeywords(violence, context, exclusions []string) Keywords {
	return Keywords{
		violence:   normalize(violence, defaultViolence),
		context:    normalize(context, defaultContext),
		exclusions: normalize(exclusions, defaultExclusions),
	}
}

// DefaultKeywords returns the compiled-in vocabulary.
func DefaultKeywords() Keywords {
	return NewKeywords(nil, nil, nil)
}

// Violence returns a copy of the violence indicators.
func (k Keywords) Violence() []string { return append([]string(nil), k.violence...) }

// Context returns a copy of the context indicators.
func (k Keywords) Context() []string { return append([]string(nil), k.context...) }

// Exclusions returns a copy of the exclusion terms.
func (k Keywords) Exclusions() []string { return append([]string(nil), k.exclusions...) }

// MatchViolence reports whether lowered text contains any violence indicator.
func (k Keywords) MatchViolence(lowered string) bool {
	return containsAny(lowered, k.violence)
}

func normalize(list, fallback []string) []string {
	if len(list) == 0 {
		list = fallback
	}
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, term := range list {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out
}

func containsAny(lowered string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

var defaultViolence = []string{
	"killed", "kill", "dead", "death toll", "slain", "murdered", "massacre",
	"shot dead", "gunned down", "beheaded", "attack", "attacked", "ambush",
	"raid", "invaded", "kidnap", "abduct", "hostage", "ransom",
	"injured", "wounded", "casualt", "bomb", "explosive device", "explosion", "suicide",
	"set ablaze", "razed",
}

var defaultContext = []string{
	// armed groups
	"boko haram", "iswap", "islamic state west africa", "ansaru", "lakurawa",
	"bandit", "terrorist", "insurgent", "jihadist", "militant", "militia",
	"gunmen", "armed men", "herdsmen", "herders", "fulani", "cultist",
	"ipob", "eastern security network",
	// security forces in combat
	"troops", "soldiers", "vigilante", "civilian jtf",
	// hotspots
	"borno", "yobe", "adamawa", "zamfara", "katsina", "kaduna", "sokoto",
	"kebbi", "niger state", "benue", "plateau", "taraba", "nasarawa",
	"kwara", "kogi", "imo state", "anambra", "ebonyi", "southern kaduna",
	"sambisa", "lake chad",
}

// defaultExclusions are matched as substrings, so every term must not occur inside ordinary words.
var defaultExclusions = []string{
	// sports
	"premier league", "champions league", "super eagles", "afcon", "football",
	"match result", "manchester united", "arsenal fc", "chelsea", "barcelona",
	"real madrid", "striker", "transfer window",
	// entertainment
	"nollywood", "bbnaija", "big brother", "album", "movie", "actress",
	"music video", "box office",
	// markets and politics
	"stock market", "naira exchange rate", "crude oil price", "inflation rate",
	"election tribunal", "primaries", "campaign rally",
	// obituaries and ordinary deaths
	"obituary", "passes away", "passed away", "dies at age", "died at the age", "laid to rest",
	// accidents
	"road accident", "auto crash", "car crash", "tanker explosion",
	"boat mishap", "building collapse", "fire outbreak", "drowned",
	// ordinary crime
	"armed robbery", "robbers", "fraud", "efcc", "internet fraud", "yahoo boys",
	"domestic violence", "ritual killing", "ritualist",
	// foreign news
	"gaza", "israel", "ukraine", "russia", "sudan", "burkina faso", "in mali", "mali's", "malian",
}

package classify

import "strings"

// Rejection reasons reported in domain.Classification.Reason.
const (
	ReasonNotIncident     = "not_incident"
	ReasonFollowUp        = "follow_up"
	ReasonNoCasualties    = "no_casualties"
	ReasonTypeNotAccepted = "type_not_accepted"
	ReasonReleaseOrRescue = "release_or_rescue"
	ReasonArrest          = "arrest"
	ReasonReaction        = "reaction"
	ReasonAnalysis        = "analysis"
	ReasonNoViolence      = "no_violence"
)

var (
	releaseTerms  = []string{"released", "freed", "rescue", "regain freedom", "regained freedom", "regains freedom", "now free", "reunite"}
	arrestTerms   = []string{"arrest", "nabbed", "apprehend", "parade suspect", "arraign"}
	attackTerms   = []string{"kill", "attack", "dead", "shot", "murder", "massacre", "slain", "bomb"}
	reactionTerms = []string{"condemn", "decry", "decries", "lament", "react to", "reacts to", "response to", "vow to", "vows to", "mourns"}
	analysisTerms = []string{"analysis:", "opinion:", "editorial:", "explainer:", "interview:"}
)

// screenTitle applies the acceptance policy that does not need casualty data:
// rescues, releases and arrests without attack phrasing are not new incidents,
// and neither are reactions or analysis pieces.
func screenTitle(title string) string {
	lowered := strings.ToLower(title)
	switch {
	case containsAny(lowered, analysisTerms):
		return ReasonAnalysis
	case containsAny(lowered, reactionTerms):
		return ReasonReaction
	case containsAny(lowered, attackTerms):
		return ""
	case containsAny(lowered, releaseTerms):
		return ReasonReleaseOrRescue
	case containsAny(lowered, arrestTerms):
		return ReasonArrest
	}
	return ""
}

// screenText is the release/arrest guard over a whole article body.
func screenText(text string) string {
	lowered := strings.ToLower(text)
	if containsAny(lowered, attackTerms) {
		return ""
	}
	switch {
	case containsAny(lowered, releaseTerms):
		return ReasonReleaseOrRescue
	case containsAny(lowered, arrestTerms):
		return ReasonArrest
	}
	return ""
}

func containsAny(lowered string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

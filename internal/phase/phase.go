// Package phase decides which handler processes the next user turn.
// Resolution is a pure function of the derived turn count, the session
// flags, and the utterance text; it performs no I/O.
package phase

import (
	"strings"

	"mentor/internal/session"
)

// Route names the handler for a user turn.
type Route int

const (
	RouteName Route = iota
	RouteEducation
	RouteDomain
	RouteAnswer
	RouteRoadmapDecision
	RouteDomainDecision
	RouteFeedback
	RouteChat
)

func (r Route) String() string {
	switch r {
	case RouteName:
		return "name"
	case RouteEducation:
		return "education"
	case RouteDomain:
		return "domain"
	case RouteAnswer:
		return "answer"
	case RouteRoadmapDecision:
		return "roadmap-decision"
	case RouteDomainDecision:
		return "domain-decision"
	case RouteFeedback:
		return "feedback"
	default:
		return "chat"
	}
}

// Closed yes/no vocabularies. An offer reply outside both sets falls
// through to free-form routing and the offer is abandoned.
var (
	yesTokens = map[string]struct{}{
		"yes": {}, "y": {}, "yeah": {}, "yep": {}, "sure": {},
		"definitely": {}, "ok": {}, "okay": {},
	}
	noTokens = map[string]struct{}{
		"no": {}, "n": {}, "nope": {}, "never": {}, "not really": {}, "nah": {},
	}
)

// IsYes reports whether text is an affirmative offer reply.
func IsYes(text string) bool {
	_, ok := yesTokens[normalize(text)]
	return ok
}

// IsNo reports whether text is a negative offer reply.
func IsNo(text string) bool {
	_, ok := noTokens[normalize(text)]
	return ok
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

var feedbackWords = []string{"feedback", "suggestion", "experience"}

// looksLikeFeedback applies the post-assessment feedback heuristic:
// feedback-ish keywords, or anything longer than a short reply.
func looksLikeFeedback(text string) bool {
	lower := normalize(text)
	for _, w := range feedbackWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return len(lower) > 10
}

// Resolve maps a user turn to its route. turn is the count of user
// entries in the transcript including the current one.
//
// The offer-decision checks run before the feedback heuristic so a bare
// "yes" to a pending offer is never misread as feedback.
func Resolve(turn int, st session.State, text string) Route {
	if !st.AssessmentComplete {
		switch {
		case turn == 1:
			return RouteName
		case turn == 2:
			return RouteEducation
		case turn >= 3 && st.Domain == "":
			return RouteDomain
		default:
			return RouteAnswer
		}
	}

	if st.RoadmapOfferPending && (IsYes(text) || IsNo(text)) {
		return RouteRoadmapDecision
	}
	if st.DomainOfferPending && (IsYes(text) || IsNo(text)) {
		return RouteDomainDecision
	}
	if !st.FeedbackGiven && looksLikeFeedback(text) {
		return RouteFeedback
	}
	return RouteChat
}

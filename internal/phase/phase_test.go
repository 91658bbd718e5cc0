package phase

import (
	"testing"

	"mentor/internal/session"
)

func TestResolve_PreAssessment(t *testing.T) {
	cases := []struct {
		name string
		turn int
		st   session.State
		text string
		want Route
	}{
		{"turn one is name", 1, session.State{}, "hi, I'm Ada", RouteName},
		{"turn two is education", 2, session.State{}, "BSc computer science", RouteEducation},
		{"turn three without domain", 3, session.State{}, "backend", RouteDomain},
		{"turn four without domain re-prompts", 4, session.State{}, "basket weaving", RouteDomain},
		{"turn three with domain chosen by button", 3, session.State{Domain: "backend"}, "yes", RouteAnswer},
		{"turn four is answer", 4, session.State{Domain: "backend"}, "yes", RouteAnswer},
		{"failed name still consumed the turn", 2, session.State{}, "Ada", RouteEducation},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Resolve(c.turn, c.st, c.text); got != c.want {
				t.Errorf("Resolve(%d, %+v, %q) = %v, want %v", c.turn, c.st, c.text, got, c.want)
			}
		})
	}
}

func TestResolve_PostAssessment(t *testing.T) {
	done := session.State{AssessmentComplete: true}
	roadmapPending := done
	roadmapPending.RoadmapOfferPending = true
	switchPending := done
	switchPending.DomainOfferPending = true
	fedBack := done
	fedBack.FeedbackGiven = true

	cases := []struct {
		name string
		st   session.State
		text string
		want Route
	}{
		{"yes answers roadmap offer", roadmapPending, "yes", RouteRoadmapDecision},
		{"nope answers roadmap offer", roadmapPending, "Nope", RouteRoadmapDecision},
		{"yes answers switch offer", switchPending, "sure", RouteDomainDecision},
		{"feedback keyword", done, "some feedback for you", RouteFeedback},
		{"long message is feedback", done, "this was a really useful conversation", RouteFeedback},
		{"short question is chat", done, "thanks!", RouteChat},
		{"feedback already given goes to chat", fedBack, "more feedback here maybe", RouteChat},

		// Offer decisions outrank the feedback heuristic.
		{"yes with offer pending is not feedback", roadmapPending, "definitely", RouteRoadmapDecision},
		// A non-yes/no reply abandons the offer and routes free-form.
		{"long reply while offer pending is feedback", roadmapPending, "actually tell me about my weak areas", RouteFeedback},
		{"short reply while offer pending is chat", roadmapPending, "hmm", RouteChat},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Resolve(9, c.st, c.text); got != c.want {
				t.Errorf("Resolve(%+v, %q) = %v, want %v", c.st, c.text, got, c.want)
			}
		})
	}
}

func TestYesNoVocabulary(t *testing.T) {
	for _, s := range []string{"yes", "Y", " Yeah ", "yep", "sure", "definitely", "ok", "OKAY"} {
		if !IsYes(s) {
			t.Errorf("IsYes(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"no", "N", "nope", "never", "not really", "NAH"} {
		if !IsNo(s) {
			t.Errorf("IsNo(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"yes please", "maybe", "", "ok fine"} {
		if IsYes(s) || IsNo(s) {
			t.Errorf("%q should be neither yes nor no", s)
		}
	}
}

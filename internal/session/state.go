// Package session holds the mutable record of conversation progress.
// The state is owned by the orchestrator and mutated only by its route
// handlers; turn count deliberately lives in the transcript, not here.
package session

// State tracks where the conversation stands. A zero SessionID means the
// client is degraded read-only (session creation failed or not yet run).
type State struct {
	SessionID          string
	AssessmentComplete bool
	FeedbackGiven      bool

	// Offer gates. At most one may be open at a time: the next user
	// utterance answers a just-asked closed question instead of being
	// treated as free text.
	RoadmapOfferPending bool
	DomainOfferPending  bool

	// OfferedDomain carries the domain behind an open post-assessment
	// switch offer ("want a frontend roadmap instead?").
	OfferedDomain string

	// Domain is the assessed domain once chosen (button or free text).
	Domain string

	// Name as captured at the name-collection phase. The education
	// handler still re-extracts from the transcript; this copy exists
	// for message personalization only.
	Name string

	TTSEnabled bool
}

// New returns the initial post-createSession state.
func New(sessionID string, tts bool) State {
	return State{SessionID: sessionID, TTSEnabled: tts}
}

// Active reports whether outgoing turns are accepted.
func (s State) Active() bool {
	return s.SessionID != ""
}

// OfferOpen reports whether any closed question is awaiting an answer.
func (s State) OfferOpen() bool {
	return s.RoadmapOfferPending || s.DomainOfferPending
}

// ArmRoadmapOffer opens the roadmap offer, closing any other open offer.
func (s *State) ArmRoadmapOffer() {
	s.ClearOffers()
	s.RoadmapOfferPending = true
}

// ArmDomainOffer opens a domain offer. Before assessment this is the
// catalog button row; after assessment, domain carries the switch target.
func (s *State) ArmDomainOffer(domain string) {
	s.ClearOffers()
	s.DomainOfferPending = true
	s.OfferedDomain = domain
}

// ClearOffers closes every open offer.
func (s *State) ClearOffers() {
	s.RoadmapOfferPending = false
	s.DomainOfferPending = false
	s.OfferedDomain = ""
}

package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mentor/internal/chatlog"
	"mentor/internal/gateway"
	"mentor/internal/reveal"
)

// fakeGateway scripts backend responses and records calls.
type fakeGateway struct {
	mu sync.Mutex

	startErr    error
	infoErr     error
	answerResp  gateway.AnswerResponse
	answerErr   error
	chatResp    gateway.ChatResponse
	chatErr     error
	feedback    gateway.FeedbackResponse
	feedbackErr error
	roadmapResp gateway.RoadmapResponse
	roadmapErr  error
	detailResp  gateway.DetailedRoadmap
	detailErr   error

	infoCalls    []gateway.PersonalInfo
	answers      []string
	chats        []string
	feedbacks    []string
	roadmapCalls int
	detailCalls  []string
}

func (f *fakeGateway) CreateSession(context.Context) (string, error) {
	if f.startErr != nil {
		return "", f.startErr
	}
	return "s-1", nil
}

func (f *fakeGateway) SubmitPersonalInfo(_ context.Context, info gateway.PersonalInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoCalls = append(f.infoCalls, info)
	return f.infoErr
}

func (f *fakeGateway) SubmitAnswer(_ context.Context, _ string, answer string) (gateway.AnswerResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, answer)
	return f.answerResp, f.answerErr
}

func (f *fakeGateway) SubmitFeedback(_ context.Context, _ string, feedback string) (gateway.FeedbackResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedbacks = append(f.feedbacks, feedback)
	return f.feedback, f.feedbackErr
}

func (f *fakeGateway) Chat(_ context.Context, _ string, message string) (gateway.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chats = append(f.chats, message)
	return f.chatResp, f.chatErr
}

func (f *fakeGateway) RequestRoadmap(context.Context, string) (gateway.RoadmapResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roadmapCalls++
	return f.roadmapResp, f.roadmapErr
}

func (f *fakeGateway) RequestDetailedRoadmap(_ context.Context, domain string) (gateway.DetailedRoadmap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls = append(f.detailCalls, domain)
	return f.detailResp, f.detailErr
}

func (f *fakeGateway) DownloadRoadmapArtifact(context.Context, string) ([]byte, error) {
	return []byte("pdf"), nil
}

// fakeNarrator records narrated texts.
type fakeNarrator struct {
	mu        sync.Mutex
	spoken    []string
	cancelled int
	enabled   bool
}

func (n *fakeNarrator) Enqueue(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.spoken = append(n.spoken, text)
}

func (n *fakeNarrator) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

func (n *fakeNarrator) CancelAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled++
}

const (
	testTyping = 100 * time.Millisecond
	testGap    = 100 * time.Millisecond
)

func newTestOrchestrator(gw *fakeGateway) (*Orchestrator, *reveal.ManualClock, *chatlog.Transcript) {
	clock := reveal.NewManualClock()
	tr := chatlog.New()
	q := reveal.NewQueue(clock, tr)
	o := New(gw, tr, q, &fakeNarrator{}, Delays{Typing: testTyping, Gap: testGap}, false, nil)
	return o, clock, tr
}

func contents(tr *chatlog.Transcript) []string {
	var out []string
	for _, e := range tr.Entries() {
		out = append(out, e.Content)
	}
	return out
}

func lastEntry(t *testing.T, tr *chatlog.Transcript) chatlog.Entry {
	t.Helper()
	entries := tr.Entries()
	if len(entries) == 0 {
		t.Fatal("transcript is empty")
	}
	return entries[len(entries)-1]
}

func mustStart(t *testing.T, o *Orchestrator) {
	t.Helper()
	if err := o.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

func submit(t *testing.T, o *Orchestrator, clock *reveal.ManualClock, text string) {
	t.Helper()
	if err := o.Submit(context.Background(), text); err != nil {
		t.Fatalf("Submit(%q): %v", text, err)
	}
	clock.Advance(time.Second) // drain the typed lane
}

func TestStart_Greets(t *testing.T) {
	o, _, tr := newTestOrchestrator(&fakeGateway{})
	mustStart(t, o)

	e := lastEntry(t, tr)
	if e.Content != msgGreeting || e.Sender != chatlog.SenderAssistant {
		t.Errorf("greeting entry = %+v", e)
	}
	if !o.State().Active() {
		t.Error("session not active after Start")
	}
}

func TestStart_FailureDegradesReadOnly(t *testing.T) {
	gw := &fakeGateway{startErr: errors.New("connection refused")}
	o, _, tr := newTestOrchestrator(gw)

	if err := o.Start(context.Background()); err == nil {
		t.Fatal("Start should fail")
	}
	if got := lastEntry(t, tr).Content; got != msgConnectivity {
		t.Errorf("connectivity message = %q", got)
	}
	if err := o.Submit(context.Background(), "hello"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Submit while degraded = %v, want ErrNoSession", err)
	}
}

func TestSubmit_EmptyInput(t *testing.T) {
	o, _, _ := newTestOrchestrator(&fakeGateway{})
	mustStart(t, o)
	if err := o.Submit(context.Background(), "   "); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("got %v, want ErrEmptyInput", err)
	}
}

func TestOnboardingFlow(t *testing.T) {
	gw := &fakeGateway{
		answerResp: gateway.AnswerResponse{Message: "Great choice!", Question: "Do you know REST?"},
	}
	o, clock, tr := newTestOrchestrator(gw)
	mustStart(t, o)

	// Turn 1: name.
	submit(t, o, clock, "hi, I'm Ada")
	if got := lastEntry(t, tr).Content; got != "Nice to meet you, Ada! What's your educational background?" {
		t.Errorf("name reply = %q", got)
	}
	if o.State().Name != "Ada" {
		t.Errorf("Name = %q, want Ada", o.State().Name)
	}

	// Turn 2: education. Name is re-extracted from the turn-one entry.
	submit(t, o, clock, "BSc computer science")
	if len(gw.infoCalls) != 1 {
		t.Fatalf("personal info calls = %d, want 1", len(gw.infoCalls))
	}
	if gw.infoCalls[0].Name != "Ada" || gw.infoCalls[0].Education != "BSc computer science" {
		t.Errorf("personal info = %+v", gw.infoCalls[0])
	}
	e := lastEntry(t, tr)
	if e.Content != msgDomainPrompt || e.Kind != chatlog.KindDomainOffer {
		t.Errorf("domain prompt entry = %+v", e)
	}

	// Turn 3: domain by free text.
	submit(t, o, clock, "backend please")
	if len(gw.answers) != 1 || gw.answers[0] != "backend" {
		t.Errorf("answers = %v, want [backend]", gw.answers)
	}
	if o.State().Domain != "backend" {
		t.Errorf("Domain = %q", o.State().Domain)
	}
	got := contents(tr)
	if got[len(got)-2] != "Great choice!" || got[len(got)-1] != "Do you know REST?" {
		t.Errorf("tail = %v", got[len(got)-2:])
	}
}

func TestNameReprompt(t *testing.T) {
	o, clock, tr := newTestOrchestrator(&fakeGateway{})
	mustStart(t, o)

	submit(t, o, clock, "what do you want to know exactly")
	if got := lastEntry(t, tr).Content; got != msgNameUnclear {
		t.Errorf("reply = %q, want re-prompt", got)
	}
	if o.State().Name != "" {
		t.Errorf("Name = %q, want empty", o.State().Name)
	}
}

func TestEducationFailureIsNonBlocking(t *testing.T) {
	gw := &fakeGateway{infoErr: errors.New("boom")}
	o, clock, tr := newTestOrchestrator(gw)
	mustStart(t, o)

	submit(t, o, clock, "Ada")
	submit(t, o, clock, "self taught")

	e := lastEntry(t, tr)
	if e.Content != msgDomainPromptFallback || e.Kind != chatlog.KindDomainOffer {
		t.Errorf("fallback entry = %+v", e)
	}
}

func TestUnknownDomainReprompts(t *testing.T) {
	gw := &fakeGateway{
		answerResp: gateway.AnswerResponse{Message: "ok", Question: "q1"},
	}
	o, clock, tr := newTestOrchestrator(gw)
	mustStart(t, o)
	submit(t, o, clock, "Ada")
	submit(t, o, clock, "BSc")

	submit(t, o, clock, "basket weaving")
	e := lastEntry(t, tr)
	if e.Content != msgDomainUnknown || e.Kind != chatlog.KindDomainOffer {
		t.Errorf("unknown-domain entry = %+v", e)
	}
	if len(gw.answers) != 0 {
		t.Errorf("gateway called for unknown domain: %v", gw.answers)
	}

	// The next turn is still a domain selection.
	submit(t, o, clock, "devops")
	if len(gw.answers) != 1 || gw.answers[0] != "devops" {
		t.Errorf("answers = %v, want [devops]", gw.answers)
	}
}

func TestGotItSuppression(t *testing.T) {
	gw := &fakeGateway{
		answerResp: gateway.AnswerResponse{Message: "Got it!", Question: "Next question?"},
	}
	o, clock, tr := newTestOrchestrator(gw)
	startAssessment(t, o, clock, gw)

	before := tr.Len()
	submit(t, o, clock, "yes")
	added := contents(tr)[before:]
	// User echo plus the question only; the filler ack is dropped.
	if len(added) != 2 || added[1] != "Next question?" {
		t.Errorf("added entries = %v", added)
	}
}

// startAssessment drives the conversation to the answering phase.
func startAssessment(t *testing.T, o *Orchestrator, clock *reveal.ManualClock, gw *fakeGateway) {
	t.Helper()
	mustStart(t, o)
	submit(t, o, clock, "Ada")
	submit(t, o, clock, "BSc")
	submit(t, o, clock, "backend")
}

func TestCompletion_ChainedRevealOrder(t *testing.T) {
	gw := &fakeGateway{
		answerResp: gateway.AnswerResponse{Message: "q", Question: "q"},
	}
	o, clock, tr := newTestOrchestrator(gw)
	startAssessment(t, o, clock, gw)

	rec := &gateway.Recommendations{Level: "Intermediate", Domain: "backend"}
	gw.mu.Lock()
	gw.answerResp = gateway.AnswerResponse{
		Message:         "That completes your assessment!",
		Completed:       true,
		Recommendations: rec,
	}
	gw.mu.Unlock()

	before := tr.Len()
	if err := o.Submit(context.Background(), "yes"); err != nil {
		t.Fatal(err)
	}

	// Entries land one gap apart, in fixed order.
	clock.Advance(testGap)
	clock.Advance(testGap)
	clock.Advance(testGap)
	clock.Advance(testGap)

	added := tr.Entries()[before:]
	if len(added) != 5 { // echo + 4 chained
		t.Fatalf("added %d entries: %v", len(added), contents(tr)[before:])
	}
	if added[1].Content != "That completes your assessment!" {
		t.Errorf("first chained = %+v", added[1])
	}
	if added[2].Kind != chatlog.KindAssessmentResult || added[2].Payload != rec {
		t.Errorf("card entry = %+v", added[2])
	}
	if added[3].Content != msgEncouragement {
		t.Errorf("third chained = %+v", added[3])
	}
	if added[4].Kind != chatlog.KindRoadmapOffer {
		t.Errorf("offer entry = %+v", added[4])
	}

	st := o.State()
	if !st.AssessmentComplete || !st.RoadmapOfferPending {
		t.Errorf("state after completion = %+v", st)
	}
}

// completeAssessment drives the conversation past a completed assessment.
func completeAssessment(t *testing.T, o *Orchestrator, clock *reveal.ManualClock, gw *fakeGateway) {
	t.Helper()
	startAssessment(t, o, clock, gw)
	gw.mu.Lock()
	gw.answerResp = gateway.AnswerResponse{
		Message:         "Done!",
		Completed:       true,
		Recommendations: &gateway.Recommendations{Domain: "backend"},
	}
	gw.mu.Unlock()
	submit(t, o, clock, "yes")
}

func TestRoadmapDecision_Yes(t *testing.T) {
	rm := &gateway.DetailedRoadmap{Title: "Backend Roadmap"}
	gw := &fakeGateway{
		answerResp:  gateway.AnswerResponse{Message: "q", Question: "q"},
		roadmapResp: gateway.RoadmapResponse{Message: "Here is your roadmap.", Roadmap: rm},
	}
	o, clock, tr := newTestOrchestrator(gw)
	completeAssessment(t, o, clock, gw)

	submit(t, o, clock, "yes")
	if gw.roadmapCalls != 1 {
		t.Fatalf("roadmap calls = %d, want 1", gw.roadmapCalls)
	}
	e := lastEntry(t, tr)
	if e.Kind != chatlog.KindRoadmapDetail || e.Payload != rm {
		t.Errorf("detail entry = %+v", e)
	}
	if o.State().OfferOpen() {
		t.Error("offer still open after acceptance")
	}
}

func TestRoadmapDecision_No(t *testing.T) {
	gw := &fakeGateway{answerResp: gateway.AnswerResponse{Message: "q", Question: "q"}}
	o, clock, tr := newTestOrchestrator(gw)
	completeAssessment(t, o, clock, gw)

	submit(t, o, clock, "nope")
	if gw.roadmapCalls != 0 {
		t.Errorf("roadmap calls = %d, want 0", gw.roadmapCalls)
	}
	if got := lastEntry(t, tr).Content; got != msgRoadmapDeclined {
		t.Errorf("decline reply = %q", got)
	}
	if o.State().OfferOpen() {
		t.Error("offer still open after decline")
	}
}

func TestRoadmapFailureKeepsOfferOpen(t *testing.T) {
	gw := &fakeGateway{
		answerResp: gateway.AnswerResponse{Message: "q", Question: "q"},
		roadmapErr: errors.New("timeout"),
	}
	o, clock, tr := newTestOrchestrator(gw)
	completeAssessment(t, o, clock, gw)

	submit(t, o, clock, "yes")
	if got := lastEntry(t, tr).Content; got != msgRoadmapApology {
		t.Errorf("apology = %q", got)
	}
	// The same yes can be retried.
	if !o.State().RoadmapOfferPending {
		t.Error("offer closed despite failure")
	}
}

func TestOfferAbandonedByFreeText(t *testing.T) {
	gw := &fakeGateway{
		answerResp: gateway.AnswerResponse{Message: "q", Question: "q"},
		feedback:   gateway.FeedbackResponse{Message: "Thanks for the feedback!"},
	}
	o, clock, _ := newTestOrchestrator(gw)
	completeAssessment(t, o, clock, gw)

	// Long non-yes/no reply: the offer dies silently, text routes as feedback.
	submit(t, o, clock, "honestly the questions felt a bit easy")
	if o.State().OfferOpen() {
		t.Error("abandoned offer still open")
	}
	if len(gw.feedbacks) != 1 {
		t.Errorf("feedback calls = %v", gw.feedbacks)
	}
	if !o.State().FeedbackGiven {
		t.Error("FeedbackGiven not set")
	}
}

func TestChat_DomainSwitchOffer(t *testing.T) {
	gw := &fakeGateway{
		answerResp: gateway.AnswerResponse{Message: "q", Question: "q"},
		feedback:   gateway.FeedbackResponse{Message: "thanks"},
	}
	o, clock, tr := newTestOrchestrator(gw)
	completeAssessment(t, o, clock, gw)
	submit(t, o, clock, "nice feedback here indeed") // consume the feedback turn

	gw.mu.Lock()
	gw.chatResp = gateway.ChatResponse{
		Reply:        "Interested in a frontend roadmap instead?",
		SwitchDomain: "frontend",
	}
	gw.mu.Unlock()

	submit(t, o, clock, "hmm")
	e := lastEntry(t, tr)
	if e.Kind != chatlog.KindDomainOffer {
		t.Errorf("switch offer entry = %+v", e)
	}
	st := o.State()
	if !st.DomainOfferPending || st.OfferedDomain != "frontend" {
		t.Errorf("state = %+v", st)
	}

	// Accepting runs the switch through chat, then fetches the roadmap.
	rm := gateway.DetailedRoadmap{Title: "Frontend Roadmap"}
	gw.mu.Lock()
	gw.chatResp = gateway.ChatResponse{Reply: "Switching you to frontend.", GenerateRoadmap: "frontend"}
	gw.detailResp = rm
	gw.mu.Unlock()

	submit(t, o, clock, "yes")
	if len(gw.detailCalls) != 1 || gw.detailCalls[0] != "frontend" {
		t.Errorf("detail calls = %v", gw.detailCalls)
	}
	if o.State().Domain != "frontend" {
		t.Errorf("Domain = %q, want frontend", o.State().Domain)
	}
	if e := lastEntry(t, tr); e.Kind != chatlog.KindRoadmapDetail {
		t.Errorf("detail entry = %+v", e)
	}
}

func TestAnswerFailureLeavesStateUnchanged(t *testing.T) {
	gw := &fakeGateway{
		answerResp: gateway.AnswerResponse{Message: "q", Question: "q"},
	}
	o, clock, tr := newTestOrchestrator(gw)
	startAssessment(t, o, clock, gw)

	gw.mu.Lock()
	gw.answerErr = errors.New("503")
	gw.mu.Unlock()
	before := o.State()

	submit(t, o, clock, "yes")
	if got := lastEntry(t, tr).Content; got != msgAnswerApology {
		t.Errorf("apology = %q", got)
	}
	if after := o.State(); after != before {
		t.Errorf("state changed on failure:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestChooseDomain_EchoesImmediately(t *testing.T) {
	gw := &fakeGateway{
		answerResp: gateway.AnswerResponse{Message: "ok", Question: "q1"},
	}
	o, clock, tr := newTestOrchestrator(gw)
	mustStart(t, o)
	submit(t, o, clock, "Ada")
	submit(t, o, clock, "BSc")

	if err := o.ChooseDomain(context.Background(), "Machine Learning"); err != nil {
		t.Fatal(err)
	}
	// The echo lands before any timer fires.
	e := lastEntry(t, tr)
	if e.Sender != chatlog.SenderUser || e.Content != "Machine Learning" {
		t.Errorf("echo entry = %+v", e)
	}
	if gw.answers[len(gw.answers)-1] != "machine learning" {
		t.Errorf("answers = %v", gw.answers)
	}
	clock.Advance(time.Second)
	if o.State().Domain != "machine learning" {
		t.Errorf("Domain = %q", o.State().Domain)
	}
}

func TestRestart_SuppressesStaleRevealsAndResets(t *testing.T) {
	gw := &fakeGateway{
		answerResp: gateway.AnswerResponse{Message: "ok", Question: "q1"},
	}
	o, clock, tr := newTestOrchestrator(gw)
	mustStart(t, o)

	// Leave a typed reply pending, then restart before it lands.
	if err := o.Submit(context.Background(), "Ada"); err != nil {
		t.Fatal(err)
	}
	if err := o.Restart(context.Background()); err != nil {
		t.Fatal(err)
	}
	clock.Advance(5 * time.Second)

	got := contents(tr)
	if len(got) != 1 || got[0] != msgGreeting {
		t.Errorf("transcript after restart = %v, want just the greeting", got)
	}
	if tr.Entries()[0].Seq != 1 {
		t.Errorf("seq after restart = %d, want 1", tr.Entries()[0].Seq)
	}
	st := o.State()
	if st.Name != "" || st.Domain != "" || st.AssessmentComplete {
		t.Errorf("state not reset: %+v", st)
	}
	if tr.UserTurns() != 0 {
		t.Errorf("UserTurns = %d after restart", tr.UserTurns())
	}
}

func TestSubmit_CancelsNarration(t *testing.T) {
	gw := &fakeGateway{answerResp: gateway.AnswerResponse{Message: "ok", Question: "q"}}
	clock := reveal.NewManualClock()
	tr := chatlog.New()
	q := reveal.NewQueue(clock, tr)
	nar := &fakeNarrator{}
	o := New(gw, tr, q, nar, Delays{Typing: testTyping, Gap: testGap}, false, nil)
	mustStart(t, o)

	submit(t, o, clock, "Ada")
	if nar.cancelled == 0 {
		t.Error("outgoing turn did not cancel narration")
	}
}

// Package orchestrator drives the conversation: one user input at a
// time, routed by phase, dispatched to the gateway, and revealed through
// the presentation queue. It owns the session state and the transcript;
// nothing else mutates either.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mentor/internal/chatlog"
	"mentor/internal/extract"
	"mentor/internal/gateway"
	"mentor/internal/phase"
	"mentor/internal/reveal"
	"mentor/internal/session"
)

var (
	// ErrEmptyInput means the utterance was blank; nothing was done.
	ErrEmptyInput = errors.New("empty input")
	// ErrNoSession means the client is degraded read-only; the user must
	// restart before submitting turns.
	ErrNoSession = errors.New("no active session")
)

// Delays paces delayed reveals.
type Delays struct {
	Typing time.Duration // delay before a typed message lands
	Gap    time.Duration // gap between chained entries
}

// DefaultDelays match the original client's pacing.
func DefaultDelays() Delays {
	return Delays{Typing: 600 * time.Millisecond, Gap: 900 * time.Millisecond}
}

// Orchestrator serializes turns: each Submit runs to completion,
// including the awaited gateway call, before the next is accepted.
type Orchestrator struct {
	mu         sync.Mutex
	gw         gateway.Client
	transcript *chatlog.Transcript
	queue      *reveal.Queue
	speech     narrator
	state      session.State
	delays     Delays
	ttsDefault bool
	log        *zap.Logger
}

// narrator is the slice of the speech queue the orchestrator touches.
type narrator interface {
	Enqueue(text string)
	SetEnabled(enabled bool)
	CancelAll()
}

func New(gw gateway.Client, transcript *chatlog.Transcript, queue *reveal.Queue, speech narrator, delays Delays, ttsDefault bool, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	o := &Orchestrator{
		gw:         gw,
		transcript: transcript,
		queue:      queue,
		speech:     speech,
		delays:     delays,
		ttsDefault: ttsDefault,
		log:        log.Named("orchestrator"),
	}
	queue.SetNarrator(speech.Enqueue)
	return o
}

// State returns a copy of the session state.
func (o *Orchestrator) State() session.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Transcript returns a snapshot of the conversation log.
func (o *Orchestrator) Transcript() []chatlog.Entry {
	return o.transcript.Entries()
}

// Typing reports whether a delayed reveal is pending.
func (o *Orchestrator) Typing() bool {
	return o.queue.Typing()
}

// Start creates the session and greets the user. On failure the client
// stays read-only behind a fixed connectivity message; there is no
// retry, the user must restart.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	id, err := o.gw.CreateSession(ctx)
	if err != nil {
		o.state = session.State{}
		o.queue.Immediate(assistantText(msgConnectivity))
		o.log.Warn("session creation failed", zap.Error(err))
		return fmt.Errorf("create session: %w", err)
	}
	o.state = session.New(id, o.ttsDefault)
	o.speech.SetEnabled(o.ttsDefault)
	o.queue.Immediate(assistantText(msgGreeting))
	o.log.Info("session started", zap.String("session", id))
	return nil
}

// Restart tears down all state, the transcript, pending reveals and any
// in-flight speech, then creates a fresh session.
func (o *Orchestrator) Restart(ctx context.Context) error {
	o.mu.Lock()
	o.queue.Reset()
	o.speech.CancelAll()
	o.transcript.Reset()
	o.state = session.State{}
	o.mu.Unlock()
	o.log.Info("conversation restarted")
	return o.Start(ctx)
}

// SetNarration toggles spoken narration. Past messages are never spoken
// retroactively; disabling cancels current playback.
func (o *Orchestrator) SetNarration(enabled bool) {
	o.mu.Lock()
	o.state.TTSEnabled = enabled
	o.mu.Unlock()
	o.speech.SetEnabled(enabled)
}

// Submit processes one user utterance end to end. The user entry is
// always appended immediately; gateway failures surface as route
// apologies and leave session state untouched.
func (o *Orchestrator) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.state.Active() {
		return ErrNoSession
	}

	// A new outgoing turn interrupts narration of older replies.
	o.speech.CancelAll()

	o.queue.Immediate(reveal.Item{Content: text, Sender: chatlog.SenderUser, Kind: chatlog.KindText})

	turn := o.transcript.UserTurns()
	route := phase.Resolve(turn, o.state, text)
	o.log.Debug("turn routed", zap.Int("turn", turn), zap.Stringer("route", route))

	// A pending post-assessment offer answered with anything but yes/no
	// is silently abandoned; the turn proceeds under its free-form route.
	if o.state.AssessmentComplete && o.state.OfferOpen() &&
		route != phase.RouteRoadmapDecision && route != phase.RouteDomainDecision {
		o.state.ClearOffers()
	}

	switch route {
	case phase.RouteName:
		o.handleName(text)
	case phase.RouteEducation:
		o.handleEducation(ctx, text)
	case phase.RouteDomain:
		o.handleDomain(ctx, text)
	case phase.RouteAnswer:
		o.handleAnswer(ctx, text)
	case phase.RouteRoadmapDecision:
		o.handleRoadmapDecision(ctx, text)
	case phase.RouteDomainDecision:
		o.handleDomainDecision(ctx, text)
	case phase.RouteFeedback:
		o.handleFeedback(ctx, text)
	default:
		o.handleChat(ctx, text)
	}
	return nil
}

// ChooseDomain handles a domain button press: the echo must appear
// right away, so it bypasses the typed lane, then routes straight to the
// answer endpoint.
func (o *Orchestrator) ChooseDomain(ctx context.Context, domain string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.state.Active() {
		return ErrNoSession
	}
	o.speech.CancelAll()
	o.queue.Immediate(reveal.Item{Content: domain, Sender: chatlog.SenderUser, Kind: chatlog.KindText})
	o.selectDomain(ctx, strings.ToLower(domain))
	return nil
}

// DownloadRoadmap fetches the roadmap PDF artifact for a domain. The
// caller decides where the bytes land; failures are terminal (no retry).
func (o *Orchestrator) DownloadRoadmap(ctx context.Context, domain string) ([]byte, error) {
	return o.gw.DownloadRoadmapArtifact(ctx, domain)
}

// --- route handlers (caller holds o.mu) ---

func (o *Orchestrator) handleName(text string) {
	candidate := extract.Name(text)
	if !extract.ValidName(candidate) {
		// Extraction failure is a re-prompt, not an error.
		o.typed(assistantText(msgNameUnclear))
		return
	}
	o.state.Name = candidate
	o.typed(assistantText(fmt.Sprintf(msgNiceToMeet, candidate)))
}

func (o *Orchestrator) handleEducation(ctx context.Context, text string) {
	// Re-extract the name from the turn-one entry; the transcript is the
	// source of truth, valid or not.
	name := ""
	if first, ok := o.transcript.FirstUserEntry(); ok {
		name = extract.Name(first.Content)
	}
	o.state.Name = name

	msg := msgDomainPrompt
	err := o.gw.SubmitPersonalInfo(ctx, gateway.PersonalInfo{
		SessionID: o.state.SessionID,
		Name:      name,
		Education: text,
	})
	if err != nil {
		// The one non-blocking gateway failure: the conversation moves on.
		o.log.Warn("personal info submission failed", zap.Error(err))
		msg = msgDomainPromptFallback
	}
	o.state.ArmDomainOffer("")
	o.typed(reveal.Item{Content: msg, Sender: chatlog.SenderAssistant, Kind: chatlog.KindDomainOffer})
}

func (o *Orchestrator) handleDomain(ctx context.Context, text string) {
	domain, ok := extract.Domain(text, extract.Catalog)
	if !ok {
		// Re-ask and re-arm the options; routing stays on domain
		// selection until a catalog domain is chosen.
		o.state.ArmDomainOffer("")
		o.typed(reveal.Item{Content: msgDomainUnknown, Sender: chatlog.SenderAssistant, Kind: chatlog.KindDomainOffer})
		return
	}
	o.selectDomain(ctx, domain)
}

func (o *Orchestrator) selectDomain(ctx context.Context, domain string) {
	resp, err := o.gw.SubmitAnswer(ctx, o.state.SessionID, domain)
	if err != nil {
		o.log.Warn("domain selection failed", zap.Error(err))
		o.typed(assistantText(msgDomainApology))
		return
	}
	o.state.Domain = domain
	o.state.ClearOffers()
	if resp.Message != "" {
		o.typed(assistantText(resp.Message))
	}
	if resp.Question != "" {
		o.queue.Typed(assistantText(resp.Question), o.delays.Gap)
	}
}

func (o *Orchestrator) handleAnswer(ctx context.Context, text string) {
	resp, err := o.gw.SubmitAnswer(ctx, o.state.SessionID, text)
	if err != nil {
		o.log.Warn("answer submission failed", zap.Error(err))
		o.typed(assistantText(msgAnswerApology))
		return
	}

	if resp.Completed {
		o.state.AssessmentComplete = true
		o.state.ArmRoadmapOffer()
		// Fixed-order reveal: completion text, result card, encouragement,
		// roadmap offer. Gaps are additive, so order holds under any
		// timer interleaving.
		o.queue.Chained([]reveal.Item{
			assistantText(resp.Message),
			{Sender: chatlog.SenderAssistant, Kind: chatlog.KindAssessmentResult, Payload: resp.Recommendations},
			assistantText(msgEncouragement),
			{Content: fmt.Sprintf(msgRoadmapOffer, o.state.Domain), Sender: chatlog.SenderAssistant, Kind: chatlog.KindRoadmapOffer},
		}, o.delays.Gap)
		return
	}

	if resp.Message != "" && resp.Message != "Got it!" {
		o.typed(assistantText(resp.Message))
	}
	if resp.Question != "" {
		o.queue.Typed(assistantText(resp.Question), o.delays.Gap)
	}
}

func (o *Orchestrator) handleRoadmapDecision(ctx context.Context, text string) {
	if phase.IsNo(text) {
		o.state.ClearOffers()
		o.typed(assistantText(msgRoadmapDeclined))
		return
	}

	resp, err := o.gw.RequestRoadmap(ctx, o.state.SessionID)
	if err != nil {
		// Offer stays open so the same yes can be retried.
		o.log.Warn("roadmap request failed", zap.Error(err))
		o.typed(assistantText(msgRoadmapApology))
		return
	}
	o.state.ClearOffers()
	o.typed(reveal.Item{Content: resp.Message, Sender: chatlog.SenderAssistant, Kind: chatlog.KindRoadmapSummary})
	if resp.Roadmap != nil {
		o.queue.Typed(reveal.Item{Sender: chatlog.SenderAssistant, Kind: chatlog.KindRoadmapDetail, Payload: resp.Roadmap}, o.delays.Gap)
	}
}

func (o *Orchestrator) handleDomainDecision(ctx context.Context, text string) {
	if phase.IsNo(text) {
		o.state.ClearOffers()
		o.typed(assistantText(fmt.Sprintf(msgSwitchDeclined, o.state.Domain)))
		return
	}

	resp, err := o.gw.Chat(ctx, o.state.SessionID, text)
	if err != nil {
		o.log.Warn("domain switch failed", zap.Error(err))
		o.typed(assistantText(msgChatApology))
		return
	}
	o.state.ClearOffers()
	if resp.Text() != "" {
		o.typed(assistantText(resp.Text()))
	}
	if resp.GenerateRoadmap != "" {
		roadmap, err := o.gw.RequestDetailedRoadmap(ctx, resp.GenerateRoadmap)
		if err != nil {
			o.log.Warn("detailed roadmap failed", zap.Error(err))
			o.typed(assistantText(msgRoadmapApology))
			return
		}
		o.state.Domain = resp.GenerateRoadmap
		o.queue.Typed(reveal.Item{Sender: chatlog.SenderAssistant, Kind: chatlog.KindRoadmapDetail, Payload: &roadmap}, o.delays.Gap)
	}
}

func (o *Orchestrator) handleFeedback(ctx context.Context, text string) {
	resp, err := o.gw.SubmitFeedback(ctx, o.state.SessionID, text)
	if err != nil {
		o.log.Warn("feedback submission failed", zap.Error(err))
		o.typed(assistantText(msgFeedbackApology))
		return
	}
	o.state.FeedbackGiven = true
	o.typed(assistantText(resp.Message))
	if len(resp.Docs) > 0 {
		o.queue.Typed(reveal.Item{Sender: chatlog.SenderAssistant, Kind: chatlog.KindDocLinks, Payload: resp.Docs}, o.delays.Gap)
	}
}

func (o *Orchestrator) handleChat(ctx context.Context, text string) {
	resp, err := o.gw.Chat(ctx, o.state.SessionID, text)
	if err != nil {
		o.log.Warn("chat failed", zap.Error(err))
		o.typed(assistantText(msgChatApology))
		return
	}

	kind := chatlog.KindText
	if resp.SwitchDomain != "" {
		// The reply itself is the switch offer.
		o.state.ArmDomainOffer(resp.SwitchDomain)
		kind = chatlog.KindDomainOffer
	}
	if resp.Text() != "" {
		o.typed(reveal.Item{Content: resp.Text(), Sender: chatlog.SenderAssistant, Kind: kind})
	}
	if len(resp.Docs) > 0 {
		o.queue.Typed(reveal.Item{Sender: chatlog.SenderAssistant, Kind: chatlog.KindDocLinks, Payload: resp.Docs}, o.delays.Gap)
	}
}

func (o *Orchestrator) typed(it reveal.Item) {
	o.queue.Typed(it, o.delays.Typing)
}

func assistantText(content string) reveal.Item {
	return reveal.Item{Content: content, Sender: chatlog.SenderAssistant, Kind: chatlog.KindText}
}

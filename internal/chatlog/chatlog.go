// Package chatlog holds the conversation transcript: an append-only,
// sequence-ordered record of everything shown in the chat. The sequence
// key is the sole ordering authority; delayed reveals may resolve out of
// call order but land in sequence order.
package chatlog

import "sync"

// Sender identifies who produced a transcript entry.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Kind tags the presentation type of an entry. Closed set.
type Kind string

const (
	KindText             Kind = "text"
	KindAssessmentResult Kind = "assessment-result"
	KindRoadmapSummary   Kind = "roadmap-summary"
	KindRoadmapDetail    Kind = "roadmap-detail"
	KindDocLinks         Kind = "doc-links"
	KindRoadmapOffer     Kind = "roadmap-offer"
	KindDomainOffer      Kind = "domain-offer"
)

// Entry is a single transcript record. Immutable once appended.
type Entry struct {
	Content string
	Sender  Sender
	Kind    Kind
	Payload any
	Seq     uint64
}

// Transcript is the single live conversation log. Appends may arrive from
// reveal timers as well as the submit path, so access is locked.
type Transcript struct {
	mu      sync.Mutex
	entries []Entry
	nextSeq uint64
}

func New() *Transcript {
	return &Transcript{}
}

// Append assigns the next sequence key and records the entry.
func (t *Transcript) Append(e Entry) Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.nextSeq++
	e.Seq = t.nextSeq
	t.entries = append(t.entries, e)
	return e
}

// Entries returns a snapshot copy in sequence order.
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// UserTurns counts user entries. Turn count is always derived here, never
// stored, so it cannot drift from the transcript.
func (t *Transcript) UserTurns() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, e := range t.entries {
		if e.Sender == SenderUser {
			n++
		}
	}
	return n
}

// FirstUserEntry returns the earliest user entry, used by the education
// phase to re-extract the name given at turn one.
func (t *Transcript) FirstUserEntry() (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range t.entries {
		if e.Sender == SenderUser {
			return e, true
		}
	}
	return Entry{}, false
}

// Reset discards all entries and restarts sequence numbering. Only the
// session restart path calls this.
func (t *Transcript) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
	t.nextSeq = 0
}

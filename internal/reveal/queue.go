// Package reveal serializes assistant output into the transcript in
// narrative order. Some output is appended synchronously (option echoes,
// errors) and some is deliberately delayed to simulate composition time;
// the queue guarantees intended order regardless of timer firing order,
// and suppresses entries scheduled before a restart.
package reveal

import (
	"sync"
	"time"

	"mentor/internal/chatlog"
)

// Item is a presentation unit owned by the queue until it is flushed
// into the transcript.
type Item struct {
	Content string
	Sender  chatlog.Sender
	Kind    chatlog.Kind
	Payload any
}

// Queue schedules items against a single live transcript.
//
// Typed and chained items share one FIFO lane: each new delayed item is
// scheduled relative to the tail of the lane, so delays are additive and
// deterministic, and only one "typing" indicator is ever pending.
// Immediate items bypass the lane and may overtake pending typed items.
type Queue struct {
	mu         sync.Mutex
	clock      Clock
	transcript *chatlog.Transcript

	gen     uint64    // bumped on Reset; stale timers check it and drop
	tail    time.Time // when the last scheduled delayed item lands
	pending int       // delayed items not yet flushed

	updates chan struct{}
	narrate func(string)
}

func NewQueue(clock Clock, transcript *chatlog.Transcript) *Queue {
	return &Queue{
		clock:      clock,
		transcript: transcript,
		updates:    make(chan struct{}, 1),
	}
}

// SetNarrator installs a callback invoked with the text of every
// assistant entry as it lands in the transcript. The speech queue hangs
// off this; display never blocks on it.
func (q *Queue) SetNarrator(f func(string)) {
	q.mu.Lock()
	q.narrate = f
	q.mu.Unlock()
}

// Updates signals (coalesced) whenever the transcript gains an entry or
// the typing indicator changes.
func (q *Queue) Updates() <-chan struct{} {
	return q.updates
}

// Typing reports whether a delayed item is pending, i.e. the typing
// indicator should be visible.
func (q *Queue) Typing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending > 0
}

// Immediate appends at the next sequence slot with no delay.
func (q *Queue) Immediate(it Item) {
	q.mu.Lock()
	narrate := q.append(it)
	q.mu.Unlock()
	q.afterAppend(it, narrate)
}

// Typed schedules one item behind everything already in the delayed
// lane. Strict FIFO: a second typed item enqueued while one is pending
// starts after the first completes, never interleaved.
func (q *Queue) Typed(it Item, delay time.Duration) {
	q.mu.Lock()
	q.schedule(it, delay)
	q.mu.Unlock()
	q.signal()
}

// Chained schedules a fixed-order sequence with gap between consecutive
// entries. Each entry's delay is relative to the previous entry's
// scheduled time, not to enqueue time, so total latency is additive.
// The first entry lands gap after the current lane tail.
func (q *Queue) Chained(items []Item, gap time.Duration) {
	q.mu.Lock()
	for _, it := range items {
		q.schedule(it, gap)
	}
	q.mu.Unlock()
	q.signal()
}

// Reset discards the visible effects of every pending timer. Entries
// scheduled before a restart must never land after teardown.
func (q *Queue) Reset() {
	q.mu.Lock()
	q.gen++
	q.pending = 0
	q.tail = time.Time{}
	q.mu.Unlock()
	q.signal()
}

// schedule places it at the lane tail plus delay. Caller holds q.mu.
func (q *Queue) schedule(it Item, delay time.Duration) {
	now := q.clock.Now()
	start := q.tail
	if start.Before(now) {
		start = now
	}
	due := start.Add(delay)
	q.tail = due
	q.pending++
	gen := q.gen
	q.clock.AfterFunc(due.Sub(now), func() {
		q.flush(gen, it)
	})
}

func (q *Queue) flush(gen uint64, it Item) {
	q.mu.Lock()
	if gen != q.gen {
		q.mu.Unlock()
		return
	}
	q.pending--
	narrate := q.append(it)
	q.mu.Unlock()
	q.afterAppend(it, narrate)
}

// append writes into the transcript. Caller holds q.mu so entries land
// in scheduling order. Returns the narrator to invoke, if any.
func (q *Queue) append(it Item) func(string) {
	q.transcript.Append(chatlog.Entry{
		Content: it.Content,
		Sender:  it.Sender,
		Kind:    it.Kind,
		Payload: it.Payload,
	})
	if it.Sender == chatlog.SenderAssistant && it.Content != "" {
		return q.narrate
	}
	return nil
}

func (q *Queue) afterAppend(it Item, narrate func(string)) {
	if narrate != nil {
		narrate(it.Content)
	}
	q.signal()
}

func (q *Queue) signal() {
	select {
	case q.updates <- struct{}{}:
	default:
	}
}

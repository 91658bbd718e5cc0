// Package speech runs the optional narration queue: a strict FIFO of
// utterances, independent of message display. One utterance plays to
// completion before the next starts, except explicit cancellation, which
// stops the current utterance immediately and drops the rest.
package speech

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Queue feeds a Speaker from a single worker goroutine. Enqueue never
// blocks; toggling narration off or cancelling flushes everything.
type Queue struct {
	speaker Speaker
	opts    Options
	log     *zap.Logger

	mu      sync.Mutex
	enabled bool
	items   []string
	cancel  context.CancelFunc // cancels the utterance being spoken
	closed  bool

	wake chan struct{}
	done chan struct{}
}

func NewQueue(speaker Speaker, opts Options, log *zap.Logger) *Queue {
	if log == nil {
		log = zap.NewNop()
	}
	q := &Queue{
		speaker: speaker,
		opts:    opts,
		log:     log,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go q.run()
	return q
}

// SetEnabled toggles narration. Disabling cancels current playback and
// flushes the queue; enabling affects only messages enqueued afterwards.
func (q *Queue) SetEnabled(enabled bool) {
	q.mu.Lock()
	q.enabled = enabled
	q.mu.Unlock()
	if !enabled {
		q.CancelAll()
	}
}

func (q *Queue) Enabled() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.enabled
}

// Enqueue adds text to the narration FIFO. No-op while disabled.
func (q *Queue) Enqueue(text string) {
	q.mu.Lock()
	if !q.enabled || q.closed || text == "" {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, text)
	q.mu.Unlock()
	q.poke()
}

// CancelAll stops the current utterance and drops everything queued.
func (q *Queue) CancelAll() {
	q.mu.Lock()
	q.items = nil
	cancel := q.cancel
	q.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Close stops the worker. The queue is unusable afterwards.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.items = nil
	cancel := q.cancel
	q.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	q.poke()
	<-q.done
}

func (q *Queue) poke() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return
		}
		if len(q.items) == 0 {
			q.mu.Unlock()
			<-q.wake
			continue
		}
		text := q.items[0]
		q.items = q.items[1:]
		ctx, cancel := context.WithCancel(context.Background())
		q.cancel = cancel
		opts := q.opts
		q.mu.Unlock()

		if err := q.speaker.Speak(ctx, text, opts); err != nil && ctx.Err() == nil {
			q.log.Warn("narration failed", zap.Error(err))
		}

		q.mu.Lock()
		q.cancel = nil
		q.mu.Unlock()
		cancel()
	}
}

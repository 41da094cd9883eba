package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Anas-Rajpoot/Bx-Buy-Sell-marketplace-sub004/pkg/log"
)

// Emitter decouples audit emission from the request path. Emit never
// blocks beyond a buffered-channel enqueue and never surfaces an error:
// a slow or unavailable sink must not delay or fail chat or moderation
// operations. Each triggering action yields at most one emission attempt.
type Emitter struct {
	ch      chan Event
	sink    Sink
	dropped atomic.Uint64

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewEmitter creates an emitter draining into sink with the given buffer.
func NewEmitter(sink Sink, buffer int) *Emitter {
	if buffer < 1 {
		buffer = 256
	}
	return &Emitter{
		ch:   make(chan Event, buffer),
		sink: sink,
	}
}

// Start launches the background drain loop.
func (e *Emitter) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	e.cancel = cancel

	e.wg.Add(1)
	go e.drain(ctx)
}

// Emit enqueues an audit event. On a full buffer the event is dropped
// and counted; the caller is never blocked or failed.
func (e *Emitter) Emit(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	select {
	case e.ch <- ev:
	default:
		n := e.dropped.Add(1)
		l := log.L()
		l.Warn().Str("action", ev.Action).Uint64("dropped_total", n).Msg("audit buffer full, event dropped")
	}
}

// Dropped returns the number of events dropped due to a full buffer.
func (e *Emitter) Dropped() uint64 {
	return e.dropped.Load()
}

// Stop flushes buffered events and closes the sink.
func (e *Emitter) Stop() {
	e.once.Do(func() {
		if e.cancel != nil {
			e.cancel()
		}
		close(e.ch)
		e.wg.Wait()
		if err := e.sink.Close(); err != nil {
			l := log.L()
			l.Warn().Err(err).Msg("failed to close audit sink")
		}
	})
}

func (e *Emitter) drain(ctx context.Context) {
	defer e.wg.Done()

	for ev := range e.ch {
		// Sink failures are logged and swallowed: audit delivery is
		// best-effort and must never become a correctness dependency.
		if err := e.sink.Write(ctx, ev); err != nil {
			l := log.L()
			l.Warn().Err(err).Str("action", ev.Action).Msg("audit sink write failed")
		}
	}
}

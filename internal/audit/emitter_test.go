package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memorySink struct {
	mu     sync.Mutex
	events []Event
	err    error
	closed bool
}

func (s *memorySink) Write(_ context.Context, ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *memorySink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *memorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func TestEmitterDeliversEvents(t *testing.T) {
	sink := &memorySink{}
	e := NewEmitter(sink, 16)
	e.Start(context.Background())

	e.Emit(Event{Action: ActionPostMessage, ActorID: "alice"})
	e.Emit(Event{Action: ActionUpdateStatus, ActorID: "mod-1"})
	e.Stop()

	events := sink.Events()
	require.Len(t, events, 2)
	assert.Equal(t, ActionPostMessage, events[0].Action)
	assert.Equal(t, ActionUpdateStatus, events[1].Action)
	assert.False(t, events[0].Timestamp.IsZero())
	assert.True(t, sink.closed)
}

func TestEmitterDropsOnFullBuffer(t *testing.T) {
	sink := &memorySink{}
	e := NewEmitter(sink, 1)
	// Not started: nothing drains, so the buffer fills immediately.

	e.Emit(Event{Action: ActionAuth})
	e.Emit(Event{Action: ActionAuth})
	e.Emit(Event{Action: ActionAuth})

	assert.Equal(t, uint64(2), e.Dropped())
}

func TestEmitterSwallowsSinkErrors(t *testing.T) {
	sink := &memorySink{err: errors.New("broker down")}
	e := NewEmitter(sink, 16)
	e.Start(context.Background())

	// Emit must not block or panic on a failing sink.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			e.Emit(Event{Action: ActionDisconnect})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("emit blocked on failing sink")
	}
	e.Stop()
}

func TestEmitterStopIdempotent(t *testing.T) {
	sink := &memorySink{}
	e := NewEmitter(sink, 4)
	e.Start(context.Background())

	e.Stop()
	e.Stop()
	assert.True(t, sink.closed)
}

package lifecycle

import (
	"context"
	"sync"
	"time"
)

// fakeChannel is a hand-rolled ChannelAdapter test double, following the
// teacher's internal/mocks.NetConn responder pattern: attach/detach
// behaviour is injectable per test, defaulting to "succeeds and moves
// to the obvious next state".
type fakeChannel struct {
	mu          sync.Mutex
	state       ChannelState
	errorReason error
	attachFunc  func(ctx context.Context) error
	detachFunc  func(ctx context.Context) error
	attachCalls int
	detachCalls int

	events *broadcaster[ChannelEvent]
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		state:  ChannelStateInitialized,
		events: newBroadcaster[ChannelEvent](),
	}
}

func (f *fakeChannel) Attach(ctx context.Context) error {
	f.mu.Lock()
	f.attachCalls++
	fn := f.attachFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	f.setState(ChannelStateAttached, nil)
	return nil
}

func (f *fakeChannel) Detach(ctx context.Context) error {
	f.mu.Lock()
	f.detachCalls++
	fn := f.detachFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(ctx)
	}
	f.setState(ChannelStateDetached, nil)
	return nil
}

func (f *fakeChannel) State() ChannelState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeChannel) ErrorReason() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errorReason
}

func (f *fakeChannel) Subscribe() (<-chan ChannelEvent, func()) {
	id, ch := f.events.Subscribe(16)
	return ch, func() { f.events.Unsubscribe(id) }
}

// setState updates the fake's observable state and publishes a matching
// state-change event (event == the new state, never UPDATE).
func (f *fakeChannel) setState(state ChannelState, reason error) {
	f.mu.Lock()
	prev := f.state
	f.state = state
	f.errorReason = reason
	f.mu.Unlock()

	f.events.Publish(ChannelEvent{
		Current:  state,
		Previous: prev,
		Event:    ChannelEventType(state),
		Reason:   reason,
		Resumed:  true,
	})
}

// emit publishes an arbitrary event, used to simulate UPDATE events and
// resumed=false transitions directly. A non-UPDATE event also moves the
// fake's state and error reason to the event's Current and Reason.
func (f *fakeChannel) emit(ev ChannelEvent) {
	f.mu.Lock()
	if ev.Event != ChannelEventUpdate {
		f.state = ev.Current
		f.errorReason = ev.Reason
	}
	f.mu.Unlock()
	f.events.Publish(ev)
}

func (f *fakeChannel) attachCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attachCalls
}

func (f *fakeChannel) detachCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detachCalls
}

// fakeClock records every requested sleep and returns immediately,
// letting retry-loop tests run without real time passing.
type fakeClock struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()
}

func (c *fakeClock) sleepCalls() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.sleeps))
	copy(out, c.sleeps)
	return out
}

package lifecycle

import "context"

// ChannelAdapter is the manager's view of the underlying realtime
// channel: an operation surface plus an event stream of state changes.
// internal/realtime.Channel is the production implementation; tests use
// a hand-rolled fake.
type ChannelAdapter interface {
	// Attach asks the channel to attach and blocks until it settles.
	Attach(ctx context.Context) error
	// Detach asks the channel to detach and blocks until it settles.
	Detach(ctx context.Context) error
	// State returns the channel's current state.
	State() ChannelState
	// ErrorReason returns the error associated with the channel's
	// current state, if any.
	ErrorReason() error
	// Subscribe returns a channel of state-change events and an
	// unsubscribe function. The returned event channel is closed when
	// unsubscribe is called.
	Subscribe() (events <-chan ChannelEvent, unsubscribe func())
}

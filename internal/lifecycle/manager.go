package lifecycle

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// BufferingPolicy controls how many events a subscriber's channel can
// buffer before new events are dropped for that subscriber.
type BufferingPolicy struct {
	BufferSize int
}

// DefaultBufferingPolicy matches the teacher's default segment sizing
// in spirit: small, bounded, enough for a subscriber to keep up with a
// burst of status changes without the publisher ever blocking.
var DefaultBufferingPolicy = BufferingPolicy{BufferSize: 8}

// Manager is the room lifecycle manager described by spec.md §2-§9. It
// serialises ATTACH/DETACH/RELEASE against a single ChannelAdapter,
// derives room status from the channel's state stream, gates presence
// operations, and surfaces discontinuities.
//
// All of Manager's mutable state is owned by its own mutex; there is no
// separate "room context" goroutine because Go's mutexes make that
// unnecessary, but the single-writer discipline the spec describes is
// preserved: status, the attach/detach flags and the operation-in-
// progress indicator are only ever read and written while mu is held.
type Manager struct {
	mu                   sync.Mutex
	status               RoomStatus
	hasAttachedOnce      bool
	isExplicitlyDetached bool
	operationInProgress  bool

	channel ChannelAdapter
	clock   Clock
	log     *logrus.Entry

	serializer    *serializer
	statusStream  *broadcaster[RoomStatusChange]
	discontinuity *broadcaster[*ErrorInfo]

	unsubscribeChannel func()
	stopped            chan struct{}
	stopOnce           sync.Once
}

// NewManager builds a Manager wired to channel, starting from
// RoomStatusInitialized. It immediately subscribes to the channel's
// event stream; that subscription's goroutine stops once PerformRelease
// takes the room to RELEASED.
func NewManager(channel ChannelAdapter, clock Clock, log *logrus.Entry) *Manager {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	m := &Manager{
		status:        RoomStatus{Current: RoomStatusInitialized},
		channel:       channel,
		clock:         clock,
		log:           log,
		serializer:    newSerializer(),
		statusStream:  newBroadcaster[RoomStatusChange](),
		discontinuity: newBroadcaster[*ErrorInfo](),
		stopped:       make(chan struct{}),
	}

	events, unsubscribe := channel.Subscribe()
	m.unsubscribeChannel = unsubscribe
	go m.runChannelEventLoop(events)

	return m
}

// Status returns the current room status.
func (m *Manager) Status() RoomStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// OnRoomStatusChange subscribes to the room-status-change stream and
// returns an unsubscribe function.
func (m *Manager) OnRoomStatusChange(policy BufferingPolicy) (<-chan RoomStatusChange, func()) {
	id, ch := m.statusStream.Subscribe(policy.BufferSize)
	return ch, func() { m.statusStream.Unsubscribe(id) }
}

// OnDiscontinuity subscribes to the discontinuity stream and returns an
// unsubscribe function.
func (m *Manager) OnDiscontinuity(policy BufferingPolicy) (<-chan *ErrorInfo, func()) {
	id, ch := m.discontinuity.Subscribe(policy.BufferSize)
	return ch, func() { m.discontinuity.Unsubscribe(id) }
}

// SubscribeWaiting exposes the serialiser's internal waiting-operation
// event stream, for tests and debug introspection only.
func (m *Manager) SubscribeWaiting(bufferSize int) (uint64, <-chan WaitEvent) {
	return m.serializer.subscribeWaiting(bufferSize)
}

// UnsubscribeWaiting detaches a waiting-event subscription created by
// SubscribeWaiting.
func (m *Manager) UnsubscribeWaiting(id uint64) {
	m.serializer.unsubscribeWaiting(id)
}

// withOperationFlag runs body with operationInProgress held true for
// its duration, so the channel event handler ignores channel-driven
// status writes while a lifecycle operation owns the room (spec §4.6).
func (m *Manager) withOperationFlag(body func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		m.mu.Lock()
		m.operationInProgress = true
		m.mu.Unlock()
		defer func() {
			m.mu.Lock()
			m.operationInProgress = false
			m.mu.Unlock()
		}()
		return body(ctx)
	}
}

// PerformAttach implements spec.md §4.2.
func (m *Manager) PerformAttach(ctx context.Context) error {
	return m.serializer.run(ctx, OperationAttach, m.withOperationFlag(func(ctx context.Context) error {
		m.mu.Lock()
		status := m.status.Current
		m.mu.Unlock()

		switch status {
		case RoomStatusAttached:
			return nil
		case RoomStatusReleasing, RoomStatusReleased:
			return errInvalidStatusFor(OperationAttach, status)
		}

		m.setStatus(RoomStatusAttaching, nil)

		if err := m.channel.Attach(ctx); err != nil {
			m.setStatus(roomStatusFromChannelState(m.channel.State()), err)
			return err
		}

		m.mu.Lock()
		m.isExplicitlyDetached = false
		m.hasAttachedOnce = true
		m.mu.Unlock()

		m.setStatus(RoomStatusAttached, nil)
		return nil
	}))
}

// PerformDetach implements spec.md §4.3.
func (m *Manager) PerformDetach(ctx context.Context) error {
	return m.serializer.run(ctx, OperationDetach, m.withOperationFlag(func(ctx context.Context) error {
		m.mu.Lock()
		status := m.status.Current
		m.mu.Unlock()

		switch status {
		case RoomStatusDetached:
			return nil
		case RoomStatusReleasing, RoomStatusReleased, RoomStatusFailed:
			return errInvalidStatusFor(OperationDetach, status)
		}

		m.setStatus(RoomStatusDetaching, nil)

		if err := m.channel.Detach(ctx); err != nil {
			m.setStatus(roomStatusFromChannelState(m.channel.State()), err)
			return err
		}

		m.mu.Lock()
		m.isExplicitlyDetached = true
		m.mu.Unlock()

		m.setStatus(RoomStatusDetached, nil)
		return nil
	}))
}

// PerformRelease implements spec.md §4.4. It never fails.
func (m *Manager) PerformRelease(ctx context.Context) {
	_ = m.serializer.run(ctx, OperationRelease, m.withOperationFlag(func(ctx context.Context) error {
		m.mu.Lock()
		status := m.status.Current
		m.mu.Unlock()

		if status == RoomStatusReleased {
			return nil
		}
		if status == RoomStatusDetached || status == RoomStatusInitialized {
			m.setStatus(RoomStatusReleased, nil)
			m.shutdown()
			return nil
		}

		m.setStatus(RoomStatusReleasing, nil)

		if m.channel.State() != ChannelStateFailed {
			if err := retryDetachUntilSettled(ctx, m.channel, m.clock); err != nil {
				m.log.WithError(err).Debug("release: detach did not settle cleanly, channel reached a terminal state")
			}
		}

		m.setStatus(RoomStatusReleased, nil)
		m.shutdown()
		return nil
	}))
}

// WaitToBeAbleToPerformPresenceOperations implements spec.md §4.5.
func (m *Manager) WaitToBeAbleToPerformPresenceOperations(ctx context.Context, feature string) error {
	m.mu.Lock()
	status := m.status.Current
	if status == RoomStatusAttached {
		m.mu.Unlock()
		return nil
	}
	if status != RoomStatusAttaching {
		m.mu.Unlock()
		return errPresenceGateNotAttached(feature)
	}

	id, ch := m.statusStream.Subscribe(1)
	m.mu.Unlock()
	defer m.statusStream.Unsubscribe(id)

	select {
	case change, ok := <-ch:
		if !ok {
			return errPresenceGateNotAttached(feature)
		}
		if change.Current == RoomStatusAttached {
			return nil
		}
		return errPresenceGateAttachFailed(feature, change.Current, change.Error)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// setStatus transitions the stored room status and publishes a
// RoomStatusChange, unless the room is already in status (invariant:
// never emit a spurious same-status event) or the room has already
// terminally released.
func (m *Manager) setStatus(status RoomLifecycle, cause error) {
	m.mu.Lock()
	prev := m.status
	if prev.Current == RoomStatusReleased || prev.Current == status {
		m.mu.Unlock()
		return
	}
	m.status = RoomStatus{Current: status, Error: cause}
	m.mu.Unlock()

	m.log.WithFields(logrus.Fields{
		"previous": prev.Current,
		"current":  status,
	}).Info("room status changed")

	m.statusStream.Publish(RoomStatusChange{
		Previous: prev.Current,
		Current:  status,
		Error:    cause,
	})
}

// runChannelEventLoop is the channel state handler of spec.md §4.6/§4.7:
// it derives discontinuities from every relevant event, and writes room
// status from channel state-change events, but only when no lifecycle
// operation is in progress.
func (m *Manager) runChannelEventLoop(events <-chan ChannelEvent) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.handleChannelEvent(ev)
		case <-m.stopped:
			return
		}
	}
}

func (m *Manager) handleChannelEvent(ev ChannelEvent) {
	m.mu.Lock()
	hasAttachedOnce := m.hasAttachedOnce
	isExplicitlyDetached := m.isExplicitlyDetached
	inProgress := m.operationInProgress
	m.mu.Unlock()

	if shouldEmitDiscontinuity(ev, hasAttachedOnce, isExplicitlyDetached) {
		discErr := NewDiscontinuityError(ev.Reason)
		m.log.WithField("reason", ev.Reason).Warn("discontinuity detected")
		m.discontinuity.Publish(discErr)
	}

	if inProgress {
		return
	}
	if ev.Event == ChannelEventUpdate {
		return
	}

	m.setStatus(roomStatusFromChannelState(ev.Current), ev.Reason)
}

// shutdown stops the channel event subscription and closes all
// broadcasters. Called once the room has reached RELEASED.
func (m *Manager) shutdown() {
	m.stopOnce.Do(func() {
		close(m.stopped)
		if m.unsubscribeChannel != nil {
			m.unsubscribeChannel()
		}
		m.statusStream.CloseAll()
		m.discontinuity.CloseAll()
	})
}

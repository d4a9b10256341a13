package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ably/ably-chat-go/internal/lifecycle"
	"github.com/ably/ably-chat-go/internal/protocol"
	"github.com/ably/ably-chat-go/internal/pubsub"
)

// Channel is the production lifecycle.ChannelAdapter: a single named
// channel multiplexed over one Connection. Its attach/detach/mux-loop
// shape is ported from the teacher's link.go (attach sends a
// performative and waits for the matching response; muxHandleFrame
// dispatches frames that arrive outside of an attach/detach wait), with
// AMQP's PerformAttach/PerformDetach frames replaced by
// protocol.ProtocolMessage.
type Channel struct {
	name string
	conn Connection
	log  *logrus.Entry

	mu          sync.Mutex
	state       lifecycle.ChannelState
	errorReason error

	pendingAttach chan error
	pendingDetach chan error

	events   *pubsub.Broadcaster[lifecycle.ChannelEvent]
	messages *pubsub.Broadcaster[protocol.Message]
	presence *pubsub.Broadcaster[protocol.PresenceMessage]

	closeOnce sync.Once
	done      chan struct{}
}

// NewChannel wraps conn as a named channel. It starts the background
// mux loop immediately; callers should call Attach before relying on
// the channel being usable.
func NewChannel(name string, conn Connection, log *logrus.Entry) *Channel {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	c := &Channel{
		name:     name,
		conn:     conn,
		log:      log.WithField("channel", name),
		state:    lifecycle.ChannelStateInitialized,
		events:   pubsub.New[lifecycle.ChannelEvent](),
		messages: pubsub.New[protocol.Message](),
		presence: pubsub.New[protocol.PresenceMessage](),
		done:     make(chan struct{}),
	}
	go c.mux()
	return c
}

// Attach implements lifecycle.ChannelAdapter.
func (c *Channel) Attach(ctx context.Context) error {
	c.mu.Lock()
	if c.state == lifecycle.ChannelStateAttached {
		c.mu.Unlock()
		return nil
	}
	c.pendingAttach = make(chan error, 1)
	pending := c.pendingAttach
	c.mu.Unlock()

	c.setState(lifecycle.ChannelStateAttaching, nil, lifecycle.ChannelEventAttaching, true)

	if err := c.send(ctx, &protocol.ProtocolMessage{Action: protocol.ActionAttach, Channel: c.name}); err != nil {
		c.setState(lifecycle.ChannelStateFailed, err, lifecycle.ChannelEventFailed, true)
		return err
	}

	select {
	case err := <-pending:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return fmt.Errorf("realtime: connection closed while attaching")
	}
}

// Detach implements lifecycle.ChannelAdapter.
func (c *Channel) Detach(ctx context.Context) error {
	c.mu.Lock()
	if c.state == lifecycle.ChannelStateDetached {
		c.mu.Unlock()
		return nil
	}
	c.pendingDetach = make(chan error, 1)
	pending := c.pendingDetach
	c.mu.Unlock()

	c.setState(lifecycle.ChannelStateDetaching, nil, lifecycle.ChannelEventDetaching, true)

	if err := c.send(ctx, &protocol.ProtocolMessage{Action: protocol.ActionDetach, Channel: c.name}); err != nil {
		c.setState(lifecycle.ChannelStateFailed, err, lifecycle.ChannelEventFailed, true)
		return err
	}

	select {
	case err := <-pending:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return fmt.Errorf("realtime: connection closed while detaching")
	}
}

// State implements lifecycle.ChannelAdapter.
func (c *Channel) State() lifecycle.ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ErrorReason implements lifecycle.ChannelAdapter.
func (c *Channel) ErrorReason() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errorReason
}

// Subscribe implements lifecycle.ChannelAdapter.
func (c *Channel) Subscribe() (<-chan lifecycle.ChannelEvent, func()) {
	id, ch := c.events.Subscribe(16)
	return ch, func() { c.events.Unsubscribe(id) }
}

// SubscribeMessages lets feature packages (messages.go) receive inbound
// chat payloads without reaching into the mux loop themselves.
func (c *Channel) SubscribeMessages() (<-chan protocol.Message, func()) {
	id, ch := c.messages.Subscribe(32)
	return ch, func() { c.messages.Unsubscribe(id) }
}

// SubscribePresence lets the presence feature package receive inbound
// presence updates.
func (c *Channel) SubscribePresence() (<-chan protocol.PresenceMessage, func()) {
	id, ch := c.presence.Subscribe(32)
	return ch, func() { c.presence.Unsubscribe(id) }
}

// Publish sends a chat payload on the channel.
func (c *Channel) Publish(ctx context.Context, msg protocol.Message) error {
	return c.send(ctx, &protocol.ProtocolMessage{
		Action:   protocol.ActionMessage,
		Channel:  c.name,
		Messages: []protocol.Message{msg},
	})
}

// PublishPresence sends a presence update on the channel.
func (c *Channel) PublishPresence(ctx context.Context, msg protocol.PresenceMessage) error {
	return c.send(ctx, &protocol.ProtocolMessage{
		Action:   protocol.ActionPresence,
		Channel:  c.name,
		Presence: []protocol.PresenceMessage{msg},
	})
}

// Close tears down the mux loop and the underlying connection.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *Channel) send(ctx context.Context, msg *protocol.ProtocolMessage) error {
	payload, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, payload)
}

// setState updates state/errorReason and publishes a matching
// lifecycle.ChannelEvent. resumed mirrors the wire ack's Resumed flag
// for ATTACHED/UPDATE transitions driven from the mux loop; calls from
// Attach/Detach use the caller's own request, not a resumed session, so
// those pass resumed explicitly too (true meaning "no discontinuity
// implied by this local transition").
func (c *Channel) setState(state lifecycle.ChannelState, reason error, event lifecycle.ChannelEventType, resumed bool) {
	c.mu.Lock()
	prev := c.state
	c.state = state
	c.errorReason = reason
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{"previous": prev, "current": state}).Debug("channel state changed")

	c.events.Publish(lifecycle.ChannelEvent{
		Current:  state,
		Previous: prev,
		Event:    event,
		Reason:   reason,
		Resumed:  resumed,
	})
}

// mux is the background read loop: it dispatches inbound
// ProtocolMessages either to a pending attach/detach waiter or to the
// message/presence/state-change broadcasters, following the shape of
// the teacher's link.muxHandleFrame.
func (c *Channel) mux() {
	for {
		select {
		case <-c.done:
			return
		default:
		}

		payload, err := c.conn.Read(context.Background())
		if err != nil {
			c.handleFatal(err)
			return
		}

		msg, err := protocol.Decode(payload)
		if err != nil {
			c.log.WithError(err).Warn("discarding malformed frame")
			continue
		}

		c.handleFrame(msg)
	}
}

func (c *Channel) handleFrame(msg *protocol.ProtocolMessage) {
	switch msg.Action {
	case protocol.ActionAttached:
		c.mu.Lock()
		pending := c.pendingAttach
		c.pendingAttach = nil
		c.mu.Unlock()

		c.setState(lifecycle.ChannelStateAttached, nil, lifecycle.ChannelEventAttached, msg.Resumed)
		if pending != nil {
			pending <- nil
		}

	case protocol.ActionDetached:
		c.mu.Lock()
		pending := c.pendingDetach
		c.pendingDetach = nil
		c.mu.Unlock()

		var err error
		if msg.Error != nil {
			err = errorFromWire(msg.Error)
		}
		c.setState(lifecycle.ChannelStateDetached, err, lifecycle.ChannelEventDetached, true)
		if pending != nil {
			pending <- err
		}

	case protocol.ActionError:
		err := errorFromWire(msg.Error)
		c.mu.Lock()
		pendingAttach := c.pendingAttach
		pendingDetach := c.pendingDetach
		c.pendingAttach = nil
		c.pendingDetach = nil
		c.mu.Unlock()

		c.setState(lifecycle.ChannelStateFailed, err, lifecycle.ChannelEventFailed, true)
		if pendingAttach != nil {
			pendingAttach <- err
		}
		if pendingDetach != nil {
			pendingDetach <- err
		}

	case protocol.ActionSync:
		c.setState(lifecycle.ChannelStateAttached, nil, lifecycle.ChannelEventUpdate, msg.Resumed)

	case protocol.ActionMessage:
		for _, m := range msg.Messages {
			c.messages.Publish(m)
		}

	case protocol.ActionPresence:
		for _, p := range msg.Presence {
			c.presence.Publish(p)
		}

	case protocol.ActionHeartbeat:
		// no-op: keeps the connection alive, nothing for the channel to do.

	default:
		c.log.WithField("action", msg.Action).Warn("unhandled frame")
	}
}

func (c *Channel) handleFatal(err error) {
	c.mu.Lock()
	pendingAttach := c.pendingAttach
	pendingDetach := c.pendingDetach
	c.pendingAttach = nil
	c.pendingDetach = nil
	c.mu.Unlock()

	c.setState(lifecycle.ChannelStateFailed, err, lifecycle.ChannelEventFailed, true)
	if pendingAttach != nil {
		pendingAttach <- err
	}
	if pendingDetach != nil {
		pendingDetach <- err
	}
}

func errorFromWire(details *protocol.ErrorDetails) error {
	if details == nil {
		return nil
	}
	return &lifecycle.ErrorInfo{
		Code:       lifecycle.ErrorCode(details.Code),
		StatusCode: details.StatusCode,
		Message:    details.Message,
	}
}

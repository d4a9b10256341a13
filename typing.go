package ablychat

import (
	"context"

	"github.com/ably/ably-chat-go/internal/protocol"
	"github.com/ably/ably-chat-go/internal/realtime"
)

const (
	typingStartedName = "typing.started"
	typingStoppedName = "typing.stopped"
)

// TypingEvent reports that a client started or stopped typing.
type TypingEvent struct {
	ClientID string
	Started  bool
}

// TypingFeature is Room.Typing(). Typing indicators ride the same
// message channel as chat messages, discriminated by Name, since the
// realtime transport has no dedicated typing frame.
type TypingFeature struct {
	channel *realtime.Channel
}

// Start announces that clientID has started typing.
func (f *TypingFeature) Start(ctx context.Context, clientID string) error {
	return f.channel.Publish(ctx, protocol.Message{ClientID: clientID, Name: typingStartedName})
}

// Stop announces that clientID has stopped typing.
func (f *TypingFeature) Stop(ctx context.Context, clientID string) error {
	return f.channel.Publish(ctx, protocol.Message{ClientID: clientID, Name: typingStoppedName})
}

// Subscribe streams typing start/stop events.
func (f *TypingFeature) Subscribe() (<-chan TypingEvent, func()) {
	wireCh, unsubscribe := f.channel.SubscribeMessages()
	out := make(chan TypingEvent, cap(wireCh))
	go func() {
		defer close(out)
		for wire := range wireCh {
			switch wire.Name {
			case typingStartedName:
				out <- TypingEvent{ClientID: wire.ClientID, Started: true}
			case typingStoppedName:
				out <- TypingEvent{ClientID: wire.ClientID, Started: false}
			}
		}
	}()
	return out, unsubscribe
}

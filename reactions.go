package ablychat

import (
	"context"

	"github.com/ably/ably-chat-go/internal/protocol"
	"github.com/ably/ably-chat-go/internal/realtime"
)

const reactionName = "reaction"

// Reaction is a single room-level reaction (an emoji "ping", not
// attached to any particular message).
type Reaction struct {
	ClientID string
	Emoji    string
}

// ReactionsFeature is Room.Reactions(), modelled the same way as
// TypingFeature: reactions ride the message channel, discriminated by
// Name, carrying the emoji as the message payload.
type ReactionsFeature struct {
	channel *realtime.Channel
}

// Send publishes a reaction from clientID.
func (f *ReactionsFeature) Send(ctx context.Context, clientID, emoji string) error {
	return f.channel.Publish(ctx, protocol.Message{
		ClientID: clientID,
		Name:     reactionName,
		Data:     []byte(emoji),
	})
}

// Subscribe streams incoming reactions.
func (f *ReactionsFeature) Subscribe() (<-chan Reaction, func()) {
	wireCh, unsubscribe := f.channel.SubscribeMessages()
	out := make(chan Reaction, cap(wireCh))
	go func() {
		defer close(out)
		for wire := range wireCh {
			if wire.Name != reactionName {
				continue
			}
			out <- Reaction{ClientID: wire.ClientID, Emoji: string(wire.Data)}
		}
	}()
	return out, unsubscribe
}

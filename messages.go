package ablychat

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ably/ably-chat-go/internal/protocol"
	"github.com/ably/ably-chat-go/internal/realtime"
	"github.com/ably/ably-chat-go/internal/rest"
)

// Message is the public chat message DTO, decoded from the opaque
// protocol.Message payload the wire codec carries (spec.md §1's "DTO
// encoders/decoders").
type Message struct {
	ID       string
	ClientID string
	Text     string
	Metadata map[string]string
}

func messageToWire(clientID, text string, metadata map[string]string) (protocol.Message, error) {
	data, err := json.Marshal(text)
	if err != nil {
		return protocol.Message{}, fmt.Errorf("ablychat: encoding message text: %w", err)
	}
	return protocol.Message{ClientID: clientID, Data: data, Extras: metadata}, nil
}

func messageFromWire(m protocol.Message) (Message, error) {
	var text string
	if err := json.Unmarshal(m.Data, &text); err != nil {
		return Message{}, fmt.Errorf("ablychat: decoding message text: %w", err)
	}
	return Message{ID: m.ID, ClientID: m.ClientID, Text: text, Metadata: m.Extras}, nil
}

// MessagesFeature is Room.Messages(): send/subscribe/history for chat
// messages. It does not participate in the presence gate (spec.md
// §4.5 names presence operations specifically). Send publishes on the
// underlying channel whatever the room or channel status is.
type MessagesFeature struct {
	channel  *realtime.Channel
	rest     *rest.Client
	roomName string
}

// Send publishes a chat message with the given clientID and text.
func (f *MessagesFeature) Send(ctx context.Context, clientID, text string, metadata map[string]string) error {
	wire, err := messageToWire(clientID, text, metadata)
	if err != nil {
		return err
	}
	return f.channel.Publish(ctx, wire)
}

// Subscribe streams incoming chat messages.
func (f *MessagesFeature) Subscribe() (<-chan Message, func()) {
	wireCh, unsubscribe := f.channel.SubscribeMessages()
	out := make(chan Message, cap(wireCh))
	go func() {
		defer close(out)
		for wire := range wireCh {
			msg, err := messageFromWire(wire)
			if err != nil {
				continue
			}
			out <- msg
		}
	}()
	return out, unsubscribe
}

// History fetches past messages for the room via the REST history
// endpoint (spec.md §7: consumers use this to refill state after a
// discontinuity).
func (f *MessagesFeature) History(ctx context.Context, opts rest.HistoryOptions) ([]Message, error) {
	wire, err := f.rest.History(ctx, f.roomName, opts)
	if err != nil {
		return nil, err
	}
	messages := make([]Message, 0, len(wire))
	for _, w := range wire {
		msg, err := messageFromWire(w)
		if err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

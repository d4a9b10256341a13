package ablychat

import (
	"context"
	"encoding/json"

	"github.com/ably/ably-chat-go/internal/lifecycle"
	"github.com/ably/ably-chat-go/internal/protocol"
	"github.com/ably/ably-chat-go/internal/realtime"
)

// PresenceMember is a single presence update delivered to subscribers.
type PresenceMember struct {
	ClientID string
	Action   string
	Data     map[string]string
}

// PresenceFeature is Room.Presence(). Every operation first waits on
// the manager's presence gate (spec.md §4.5): it blocks while the room
// is ATTACHING, fails immediately for any other non-ATTACHED status,
// and proceeds immediately once the room is ATTACHED.
type PresenceFeature struct {
	manager *lifecycle.Manager
	channel *realtime.Channel
}

func (f *PresenceFeature) publish(ctx context.Context, action, clientID string, data map[string]string) error {
	if err := f.manager.WaitToBeAbleToPerformPresenceOperations(ctx, string(FeaturePresence)); err != nil {
		return err
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return f.channel.PublishPresence(ctx, protocol.PresenceMessage{
		ClientID: clientID,
		Action:   action,
		Data:     payload,
	})
}

// Enter announces clientID as present in the room.
func (f *PresenceFeature) Enter(ctx context.Context, clientID string, data map[string]string) error {
	return f.publish(ctx, "enter", clientID, data)
}

// Update updates clientID's presence data without leaving.
func (f *PresenceFeature) Update(ctx context.Context, clientID string, data map[string]string) error {
	return f.publish(ctx, "update", clientID, data)
}

// Leave announces clientID has left the room.
func (f *PresenceFeature) Leave(ctx context.Context, clientID string, data map[string]string) error {
	return f.publish(ctx, "leave", clientID, data)
}

// Subscribe streams presence member updates.
func (f *PresenceFeature) Subscribe() (<-chan PresenceMember, func()) {
	wireCh, unsubscribe := f.channel.SubscribePresence()
	out := make(chan PresenceMember, cap(wireCh))
	go func() {
		defer close(out)
		for wire := range wireCh {
			var data map[string]string
			_ = json.Unmarshal(wire.Data, &data)
			out <- PresenceMember{ClientID: wire.ClientID, Action: wire.Action, Data: data}
		}
	}()
	return out, unsubscribe
}

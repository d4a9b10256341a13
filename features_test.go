package ablychat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ably/ably-chat-go/internal/protocol"
)

func TestMessagesSendAndSubscribe(t *testing.T) {
	conn := newFakeConn(attachResponder)
	room := newTestRoom("room:general", conn)
	require.NoError(t, room.Attach(context.Background()))

	messages := room.Messages()
	incoming, unsub := messages.Subscribe()
	defer unsub()

	conn.push(&protocol.ProtocolMessage{
		Action:  protocol.ActionMessage,
		Channel: "room:general",
		Messages: []protocol.Message{
			{ID: "m1", ClientID: "bob", Data: []byte(`"hello"`)},
		},
	})

	select {
	case got := <-incoming:
		assert.Equal(t, "bob", got.ClientID)
		assert.Equal(t, "hello", got.Text)
	case <-time.After(time.Second):
		t.Fatal("expected a message")
	}
}

func TestPresenceGateBlocksUntilAttached(t *testing.T) {
	release := make(chan struct{})
	conn := newFakeConn(func(msg *protocol.ProtocolMessage) *protocol.ProtocolMessage {
		switch msg.Action {
		case protocol.ActionAttach:
			<-release
			return &protocol.ProtocolMessage{Action: protocol.ActionAttached, Channel: msg.Channel, Resumed: true}
		case protocol.ActionDetach:
			return &protocol.ProtocolMessage{Action: protocol.ActionDetached, Channel: msg.Channel}
		}
		return nil
	})
	room := newTestRoom("room:general", conn)

	attachErrCh := make(chan error, 1)
	go func() { attachErrCh <- room.Attach(context.Background()) }()

	require.Eventually(t, func() bool {
		return room.Status() == RoomStatusAttaching
	}, time.Second, time.Millisecond)

	presenceErrCh := make(chan error, 1)
	go func() {
		presenceErrCh <- room.Presence().Enter(context.Background(), "alice", map[string]string{"status": "online"})
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)

	require.NoError(t, <-attachErrCh)

	select {
	case err := <-presenceErrCh:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("expected presence Enter to unblock once attached")
	}
}

func TestTypingStartStop(t *testing.T) {
	conn := newFakeConn(attachResponder)
	room := newTestRoom("room:general", conn)
	require.NoError(t, room.Attach(context.Background()))

	typing := room.Typing()
	events, unsub := typing.Subscribe()
	defer unsub()

	conn.push(&protocol.ProtocolMessage{
		Action:   protocol.ActionMessage,
		Channel:  "room:general",
		Messages: []protocol.Message{{ClientID: "bob", Name: typingStartedName}},
	})

	select {
	case ev := <-events:
		assert.Equal(t, "bob", ev.ClientID)
		assert.True(t, ev.Started)
	case <-time.After(time.Second):
		t.Fatal("expected a typing event")
	}
}

func TestReactionsSendAndSubscribe(t *testing.T) {
	conn := newFakeConn(attachResponder)
	room := newTestRoom("room:general", conn)
	require.NoError(t, room.Attach(context.Background()))

	reactions := room.Reactions()
	events, unsub := reactions.Subscribe()
	defer unsub()

	conn.push(&protocol.ProtocolMessage{
		Action:   protocol.ActionMessage,
		Channel:  "room:general",
		Messages: []protocol.Message{{ClientID: "bob", Name: reactionName, Data: []byte("🎉")}},
	})

	select {
	case ev := <-events:
		assert.Equal(t, "bob", ev.ClientID)
		assert.Equal(t, "🎉", ev.Emoji)
	case <-time.After(time.Second):
		t.Fatal("expected a reaction")
	}
}

func TestOccupancySubscribe(t *testing.T) {
	conn := newFakeConn(attachResponder)
	room := newTestRoom("room:general", conn)
	require.NoError(t, room.Attach(context.Background()))

	occupancy := room.Occupancy()
	events, unsub := occupancy.Subscribe()
	defer unsub()

	conn.push(&protocol.ProtocolMessage{
		Action:  protocol.ActionMessage,
		Channel: "room:general",
		Messages: []protocol.Message{
			{Name: occupancyName, Data: []byte(`{"connections":3,"presenceMembers":2}`)},
		},
	})

	select {
	case got := <-events:
		assert.Equal(t, 3, got.Connections)
		assert.Equal(t, 2, got.Presence)
	case <-time.After(time.Second):
		t.Fatal("expected an occupancy snapshot")
	}
}

package realtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ably/ably-chat-go/internal/lifecycle"
	"github.com/ably/ably-chat-go/internal/protocol"
)

// fakeConn is an in-memory Connection: writes are handed to a
// responder function, which may push frames back via the inbox, mimicking
// the teacher's mocks.NewNetConn responder pattern.
type fakeConn struct {
	mu        sync.Mutex
	inbox     chan []byte
	responder func(msg *protocol.ProtocolMessage) *protocol.ProtocolMessage
	closed    bool
}

func newFakeConn(responder func(msg *protocol.ProtocolMessage) *protocol.ProtocolMessage) *fakeConn {
	return &fakeConn{inbox: make(chan []byte, 16), responder: responder}
}

func (f *fakeConn) Write(ctx context.Context, data []byte) error {
	msg, err := protocol.Decode(data)
	if err != nil {
		return err
	}
	if resp := f.responder(msg); resp != nil {
		wire, err := protocol.Encode(resp)
		if err != nil {
			return err
		}
		f.inbox <- wire
	}
	return nil
}

func (f *fakeConn) Read(ctx context.Context) ([]byte, error) {
	select {
	case data := <-f.inbox:
		return data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeConn) push(msg *protocol.ProtocolMessage) {
	wire, _ := protocol.Encode(msg)
	f.inbox <- wire
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestChannelAttachDetach(t *testing.T) {
	conn := newFakeConn(func(msg *protocol.ProtocolMessage) *protocol.ProtocolMessage {
		switch msg.Action {
		case protocol.ActionAttach:
			return &protocol.ProtocolMessage{Action: protocol.ActionAttached, Channel: msg.Channel, Resumed: true}
		case protocol.ActionDetach:
			return &protocol.ProtocolMessage{Action: protocol.ActionDetached, Channel: msg.Channel}
		}
		return nil
	})

	ch := NewChannel("room:general", conn, nil)
	defer ch.Close()

	require.NoError(t, ch.Attach(context.Background()))
	assert.Equal(t, lifecycle.ChannelStateAttached, ch.State())

	require.NoError(t, ch.Detach(context.Background()))
	assert.Equal(t, lifecycle.ChannelStateDetached, ch.State())
}

func TestChannelAttachErrorReachesCaller(t *testing.T) {
	conn := newFakeConn(func(msg *protocol.ProtocolMessage) *protocol.ProtocolMessage {
		if msg.Action == protocol.ActionAttach {
			return &protocol.ProtocolMessage{
				Action:  protocol.ActionError,
				Channel: msg.Channel,
				Error:   &protocol.ErrorDetails{Code: 50000, StatusCode: 500, Message: "boom"},
			}
		}
		return nil
	})

	ch := NewChannel("room:general", conn, nil)
	defer ch.Close()

	err := ch.Attach(context.Background())
	require.Error(t, err)
	assert.Equal(t, lifecycle.ChannelStateFailed, ch.State())

	var info *lifecycle.ErrorInfo
	require.ErrorAs(t, err, &info)
	assert.Equal(t, 50000, int(info.Code))
}

func TestChannelDeliversMessages(t *testing.T) {
	conn := newFakeConn(func(msg *protocol.ProtocolMessage) *protocol.ProtocolMessage {
		if msg.Action == protocol.ActionAttach {
			return &protocol.ProtocolMessage{Action: protocol.ActionAttached, Channel: msg.Channel, Resumed: true}
		}
		return nil
	})

	ch := NewChannel("room:general", conn, nil)
	defer ch.Close()
	require.NoError(t, ch.Attach(context.Background()))

	msgs, unsub := ch.SubscribeMessages()
	defer unsub()

	conn.push(&protocol.ProtocolMessage{
		Action:   protocol.ActionMessage,
		Channel:  "room:general",
		Messages: []protocol.Message{{ID: "m1", ClientID: "bob", Data: []byte(`"hi"`)}},
	})

	select {
	case got := <-msgs:
		assert.Equal(t, "bob", got.ClientID)
	case <-time.After(time.Second):
		t.Fatal("expected a message")
	}
}

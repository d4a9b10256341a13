package ablychat

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ably/ably-chat-go/internal/realtime"
)

func newTestRoom(name string, conn *fakeConn) *Room {
	channel := realtime.NewChannel(name, conn, logrus.NewEntry(logrus.New()))
	return newRoom(name, channel, nil, logrus.NewEntry(logrus.New()))
}

func TestRoomAttachDetach(t *testing.T) {
	conn := newFakeConn(attachResponder)
	room := newTestRoom("room:general", conn)

	require.NoError(t, room.Attach(context.Background()))
	assert.Equal(t, RoomStatusAttached, room.Status())

	require.NoError(t, room.Detach(context.Background()))
	assert.Equal(t, RoomStatusDetached, room.Status())
}

func TestRoomStatusChangeStream(t *testing.T) {
	conn := newFakeConn(attachResponder)
	room := newTestRoom("room:general", conn)

	changes, unsub := room.OnStatusChange(DefaultBufferingPolicy)
	defer unsub()

	require.NoError(t, room.Attach(context.Background()))

	select {
	case change := <-changes:
		assert.Equal(t, RoomStatusAttaching, change.Current)
	case <-time.After(time.Second):
		t.Fatal("expected an attaching status change")
	}
}

func TestRoomReleaseIsTerminal(t *testing.T) {
	conn := newFakeConn(attachResponder)
	room := newTestRoom("room:general", conn)

	require.NoError(t, room.Attach(context.Background()))
	room.Release(context.Background())
	assert.Equal(t, RoomStatusReleased, room.Status())

	err := room.Attach(context.Background())
	require.Error(t, err)
}

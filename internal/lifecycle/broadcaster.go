package lifecycle

import "github.com/ably/ably-chat-go/internal/pubsub"

// broadcaster is a thin alias over the shared pubsub.Broadcaster,
// used for both the room-status-change stream and the discontinuity
// stream.
type broadcaster[T any] = pubsub.Broadcaster[T]

func newBroadcaster[T any]() *broadcaster[T] {
	return pubsub.New[T]()
}

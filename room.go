package ablychat

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ably/ably-chat-go/internal/lifecycle"
	"github.com/ably/ably-chat-go/internal/realtime"
	"github.com/ably/ably-chat-go/internal/rest"
)

// Room wires a lifecycle.Manager to a realtime.Channel and exposes the
// feature façades callers actually use. A Room is always obtained from
// a Client, which guarantees at most one Room (and hence one Manager)
// exists per room name at a time (spec.md §5).
type Room struct {
	name    string
	manager *lifecycle.Manager
	channel *realtime.Channel
	rest    *rest.Client
	log     *logrus.Entry
}

func newRoom(name string, channel *realtime.Channel, restClient *rest.Client, log *logrus.Entry) *Room {
	log = log.WithField("room", name)
	return &Room{
		name:    name,
		manager: lifecycle.NewManager(channel, lifecycle.NewSystemClock(), log),
		channel: channel,
		rest:    restClient,
		log:     log,
	}
}

// Name returns the room's name.
func (r *Room) Name() string { return r.name }

// Status returns the room's current lifecycle status.
func (r *Room) Status() RoomStatus {
	return r.manager.Status().Current
}

// OnStatusChange subscribes to room status changes.
func (r *Room) OnStatusChange(policy BufferingPolicy) (<-chan RoomStatusChange, func()) {
	return r.manager.OnRoomStatusChange(policy)
}

// OnDiscontinuity subscribes to the room's discontinuity stream. A
// discontinuity event is an invitation to refresh state via History on
// each feature that cares, not an automatic refresh: spec.md §7 leaves
// recovery to the caller.
func (r *Room) OnDiscontinuity(policy BufferingPolicy) (<-chan *ErrorInfo, func()) {
	return r.manager.OnDiscontinuity(policy)
}

// Attach attaches the room, per spec.md §4.2.
func (r *Room) Attach(ctx context.Context) error {
	return r.manager.PerformAttach(ctx)
}

// Detach detaches the room, per spec.md §4.3.
func (r *Room) Detach(ctx context.Context) error {
	return r.manager.PerformDetach(ctx)
}

// Release releases the room. It never fails (spec.md §4.4); once it
// returns the room is unusable and must be discarded by the caller.
func (r *Room) Release(ctx context.Context) {
	r.manager.PerformRelease(ctx)
}

// Messages returns the room's messages feature façade.
func (r *Room) Messages() *MessagesFeature {
	return &MessagesFeature{channel: r.channel, rest: r.rest, roomName: r.name}
}

// Presence returns the room's presence feature façade.
func (r *Room) Presence() *PresenceFeature {
	return &PresenceFeature{manager: r.manager, channel: r.channel}
}

// Typing returns the room's typing feature façade.
func (r *Room) Typing() *TypingFeature {
	return &TypingFeature{channel: r.channel}
}

// Reactions returns the room's reactions feature façade.
func (r *Room) Reactions() *ReactionsFeature {
	return &ReactionsFeature{channel: r.channel}
}

// Occupancy returns the room's occupancy feature façade.
func (r *Room) Occupancy() *OccupancyFeature {
	return &OccupancyFeature{channel: r.channel}
}

package ablychat

import (
	"encoding/json"

	"github.com/ably/ably-chat-go/internal/realtime"
)

const occupancyName = "occupancy.snapshot"

// OccupancyMetrics is a snapshot of how many clients are connected to
// and present in a room.
type OccupancyMetrics struct {
	Connections int `json:"connections"`
	Presence    int `json:"presenceMembers"`
}

// OccupancyFeature is Room.Occupancy(): a read-only stream of periodic
// occupancy snapshots the realtime transport pushes down the message
// channel, discriminated by Name like typing and reactions.
type OccupancyFeature struct {
	channel *realtime.Channel
}

// Subscribe streams occupancy snapshots as they arrive.
func (f *OccupancyFeature) Subscribe() (<-chan OccupancyMetrics, func()) {
	wireCh, unsubscribe := f.channel.SubscribeMessages()
	out := make(chan OccupancyMetrics, cap(wireCh))
	go func() {
		defer close(out)
		for wire := range wireCh {
			if wire.Name != occupancyName {
				continue
			}
			var metrics OccupancyMetrics
			if err := json.Unmarshal(wire.Data, &metrics); err != nil {
				continue
			}
			out <- metrics
		}
	}()
	return out, unsubscribe
}

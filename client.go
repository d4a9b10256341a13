package ablychat

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ably/ably-chat-go/internal/logging"
	"github.com/ably/ably-chat-go/internal/realtime"
	"github.com/ably/ably-chat-go/internal/rest"
)

// Client is the chat client factory and room registry (spec.md §1's
// "surrounding material" glue, and §5's "Shared resources": at most one
// Manager, and hence one Room, exists per room name while the client is
// alive).
type Client struct {
	opts *ClientOptions
	log  *logrus.Logger
	rest *rest.Client
	dial func(ctx context.Context, url string) (realtime.Connection, error)

	mu    sync.Mutex
	rooms map[string]*Room
}

// NewClient builds a Client from opts. A zero ClientOptions is valid;
// defaults() fills in the attach timeout and log level.
func NewClient(opts ClientOptions) *Client {
	opts.defaults()
	return &Client{
		opts:  &opts,
		log:   logging.New(logging.Options{Level: opts.LogLevel}),
		rest:  rest.NewClient(opts.RESTURL, opts.APIKey),
		dial:  realtime.Dial,
		rooms: make(map[string]*Room),
	}
}

// Rooms returns the room-by-name GetOrCreate operation spec.md §5
// describes: calling it twice for the same name returns the same Room,
// never two competing Managers over the same channel.
func (c *Client) Rooms() *RoomRegistry {
	return (*RoomRegistry)(c)
}

// RoomRegistry is Client's room-management surface, split out as its
// own named type purely so callers write client.Rooms().Get(...)
// rather than overloading Client itself with registry methods.
type RoomRegistry Client

// Get returns the Room for name, dialling a fresh realtime connection
// and constructing its Manager the first time name is requested, and
// returning the existing Room on every subsequent call.
func (reg *RoomRegistry) Get(ctx context.Context, name string) (*Room, error) {
	c := (*Client)(reg)

	c.mu.Lock()
	if room, ok := c.rooms[name]; ok {
		c.mu.Unlock()
		return room, nil
	}
	c.mu.Unlock()

	conn, err := c.dial(ctx, c.opts.RealtimeURL)
	if err != nil {
		return nil, fmt.Errorf("ablychat: dialling realtime connection for room %q: %w", name, err)
	}
	channel := realtime.NewChannel(name, conn, logging.ForRoom(c.log, name))

	c.mu.Lock()
	defer c.mu.Unlock()
	if room, ok := c.rooms[name]; ok {
		_ = channel.Close()
		return room, nil
	}
	room := newRoom(name, channel, c.rest, logging.ForRoom(c.log, name))
	c.rooms[name] = room
	return room, nil
}

// Release releases and forgets the Room called name, if one exists.
// After Release returns, a subsequent Get for the same name builds a
// fresh Room with a fresh Manager.
func (reg *RoomRegistry) Release(ctx context.Context, name string) {
	c := (*Client)(reg)

	c.mu.Lock()
	room, ok := c.rooms[name]
	delete(c.rooms, name)
	c.mu.Unlock()

	if !ok {
		return
	}
	room.Release(ctx)
	_ = room.channel.Close()
}

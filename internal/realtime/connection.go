// Package realtime is the concrete ChannelAdapter the lifecycle manager
// drives: a channel multiplexed over a single websocket connection,
// modelled on the teacher's link.go mux loop (attach/muxHandleFrame/
// muxClose) but built around the msgpack ProtocolMessage wire shape in
// internal/protocol instead of AMQP performatives.
package realtime

import (
	"context"

	"nhooyr.io/websocket"
)

// Connection is the minimal transport surface Channel needs. It exists
// so tests can substitute a fake instead of dialling a real websocket,
// the same seam the teacher's mocks.NewNetConn gives link/session tests.
type Connection interface {
	Write(ctx context.Context, data []byte) error
	Read(ctx context.Context) ([]byte, error)
	Close() error
}

// wsConnection adapts *websocket.Conn to Connection.
type wsConnection struct {
	conn *websocket.Conn
}

// Dial opens a websocket connection to the realtime transport endpoint.
func Dial(ctx context.Context, url string) (Connection, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &wsConnection{conn: conn}, nil
}

func (c *wsConnection) Write(ctx context.Context, data []byte) error {
	return c.conn.Write(ctx, websocket.MessageBinary, data)
}

func (c *wsConnection) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.Read(ctx)
	return data, err
}

func (c *wsConnection) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "closed")
}

// Package protocol defines the wire messages exchanged with the
// realtime transport and their msgpack codec. It plays the role the
// teacher's frames.go plays for AMQP performatives, but for a much
// smaller, chat-shaped protocol.
package protocol

// Action discriminates a ProtocolMessage, the unit of exchange over the
// realtime connection.
type Action string

const (
	ActionHeartbeat Action = "heartbeat"
	ActionAttach    Action = "attach"
	ActionAttached  Action = "attached"
	ActionDetach    Action = "detach"
	ActionDetached  Action = "detached"
	ActionMessage   Action = "message"
	ActionPresence  Action = "presence"
	ActionSync      Action = "sync"
	ActionError     Action = "error"
)

// ErrorDetails is the wire shape of an error carried inside a
// ProtocolMessage, decoded into an ErrorInfo by the caller.
type ErrorDetails struct {
	Code       int    `codec:"code"`
	StatusCode int    `codec:"statusCode"`
	Message    string `codec:"message"`
}

// Message is a single chat payload (a message/reaction/typing/occupancy
// event body, left opaque here since DTO shaping for each feature is
// the feature package's concern, not the transport's).
type Message struct {
	ID       string            `codec:"id"`
	ClientID string            `codec:"clientId"`
	Name     string             `codec:"name,omitempty"`
	Data     []byte            `codec:"data"`
	Extras   map[string]string `codec:"extras,omitempty"`
}

// PresenceMessage is a single presence member update.
type PresenceMessage struct {
	ID       string `codec:"id"`
	ClientID string `codec:"clientId"`
	Action   string `codec:"action"`
	Data     []byte `codec:"data"`
}

// ProtocolMessage is the unit of exchange between the client and the
// realtime transport: attach/detach requests and acks, inbound
// messages/presence, and channel-level errors all travel as one of
// these, discriminated by Action.
type ProtocolMessage struct {
	Action        Action             `codec:"action"`
	Channel       string             `codec:"channel"`
	ChannelSerial string             `codec:"channelSerial,omitempty"`
	Resumed       bool               `codec:"resumed,omitempty"`
	Messages      []Message          `codec:"messages,omitempty"`
	Presence      []PresenceMessage  `codec:"presence,omitempty"`
	Error         *ErrorDetails      `codec:"error,omitempty"`
}

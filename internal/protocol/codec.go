package protocol

import (
	"bytes"

	"github.com/ugorji/go/codec"
)

var msgpackHandle = &codec.MsgpackHandle{}

func init() {
	msgpackHandle.MapType = nil
	msgpackHandle.RawToString = true
}

// Encode serialises a ProtocolMessage to msgpack, the wire format the
// realtime transport exchanges over the websocket connection.
func Encode(msg *ProtocolMessage) ([]byte, error) {
	var buf bytes.Buffer
	enc := codec.NewEncoder(&buf, msgpackHandle)
	if err := enc.Encode(msg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserialises a msgpack payload into a ProtocolMessage.
func Decode(payload []byte) (*ProtocolMessage, error) {
	var msg ProtocolMessage
	dec := codec.NewDecoderBytes(payload, msgpackHandle)
	if err := dec.Decode(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrEmptyFrame   = errors.New("empty frame")
	ErrMissingType  = errors.New("message has no type field")
	ErrNotAnObject  = errors.New("frame is not a JSON object")
	ErrInvalidFrame = errors.New("invalid frame")
)

// Encode marshals a message for the wire. The message must carry its type
// tag already (constructors and the sync layer set it on the embedded
// Envelope).
func Encode(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return data, nil
}

// PeekEnvelope decodes only the envelope fields of a frame, leaving the
// type-specific fields untouched. It is the first step at every demux
// point; a frame that fails here is dropped, not fatal.
func PeekEnvelope(data []byte) (Envelope, error) {
	if len(data) == 0 {
		return Envelope{}, ErrEmptyFrame
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	if env.Type == "" {
		return Envelope{}, ErrMissingType
	}
	return env, nil
}

// DecodeAs unmarshals a frame into a concrete message type.
func DecodeAs[T any](data []byte) (T, error) {
	var out T
	if len(data) == 0 {
		return out, ErrEmptyFrame
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	return out, nil
}

// StampRoom fills in roomCode on an outbound frame when the caller left it
// empty, so room-scoped messages cannot be sent unscoped by mistake. A
// roomCode already present is preserved.
func StampRoom(data []byte, roomCode string) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnObject, err)
	}
	if existing, ok := fields["roomCode"]; ok && string(existing) != `""` {
		return data, nil
	}
	code, err := json.Marshal(roomCode)
	if err != nil {
		return nil, err
	}
	fields["roomCode"] = code
	return json.Marshal(fields)
}

// StampSender rewrites a frame so that senderId is the server-assigned
// identity of the connection it arrived on, regardless of what the client
// wrote. All other fields are preserved verbatim; the relay never
// interprets them.
func StampSender(data []byte, senderID string) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAnObject, err)
	}
	id, err := json.Marshal(senderID)
	if err != nil {
		return nil, err
	}
	fields["senderId"] = id
	return json.Marshal(fields)
}

// Package protocol defines the wire message catalog shared by the relay
// server and the client synchronization layer.
//
// Every frame on the wire is a single JSON text message with a flat
// envelope:
//
//	{ "type": "...", "roomCode": "...", "senderId": "...", ...fields }
//
// The "type" field selects the message variant. The server interprets only
// the room-lifecycle types (host, join, autoJoin, leave); every other type
// is relayed opaquely to the sender's room with "senderId" stamped by the
// server, or to a single member when "targetId" is present.
//
// Design rules:
//
//   - The catalog is closed: all known type tags are declared as Type*
//     constants and dispatched exhaustively at one demux point per process.
//     Unknown tags are logged and ignored, never treated as errors, so old
//     peers tolerate new message types.
//   - senderId is always server-assigned. Clients must not trust a senderId
//     written by a peer; StampSender overwrites it during relay.
//   - Receivers must drop any relayed message whose senderId equals their
//     own client identity (self-echo suppression). The originating action
//     was already applied locally when it happened.
//
// Vector and quaternion values marshal as plain JSON arrays ([x,y,z] and
// [x,y,z,w]) to stay compatible with browser clients.
package protocol

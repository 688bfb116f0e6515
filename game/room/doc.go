// Package room owns the relay server's only mutable tables: the room
// table (code to member set) and the client table (client to room code).
//
// The Registry is constructed explicitly and injected into the relay
// handler; nothing in this package is ambient state. Rooms are ephemeral:
// a room exists from the host request that creates it until its member set
// becomes empty, and nothing is persisted.
//
// Host rules:
//
//   - An explicit host request makes the requester the room's host.
//   - autoJoin prefers the oldest room with spare capacity; when none
//     exists it creates a room and the creator becomes host, so host-gated
//     features work in matchmade rooms too.
//   - When the host leaves, the longest-standing remaining member is
//     promoted.
//
// The registry serializes all access through one lock, so it is safe both
// from the relay's run loop and from the REST handlers that read it.
package room

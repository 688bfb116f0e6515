// Package websocket implements the relay server: the WebSocket transport
// that assigns client identities, tracks room membership, and relays game
// traffic between room members.
//
// The relay holds no game simulation state. It interprets exactly five
// message types (host, join, autoJoin, leave, plus the implicit connect
// and disconnect) and forwards everything else verbatim to the sender's
// room with senderId stamped. Messages carrying a targetId are routed to
// that single member instead of being broadcast.
//
// Architecture:
//
// A single run loop owns the connection set; each connection gets a read
// and a write goroutine, mirroring the usual gorilla hub layout. All room
// table mutation happens on the run loop path, and the room.Registry is
// additionally lock-protected so the REST and MCP observers can read it
// from their own goroutines.
//
// Failure semantics:
//
//   - Malformed frames are logged and dropped; the connection stays open.
//   - Frames from a connection not in any room are dropped silently.
//   - A slow consumer whose send buffer fills is disconnected rather than
//     allowed to stall the room.
//
// Usage:
//
//	registry := room.NewRegistry(capacity)
//	relay := websocket.NewRelay(registry)
//	go relay.Run()
//	http.HandleFunc("/ws", relay.ServeWS)
package websocket

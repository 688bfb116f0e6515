// Package sync is the client-side synchronization layer: it maintains a
// local belief about remote entities (players, bullets, birds, spheres,
// scores) built entirely from relayed messages, and turns local actions
// into wire messages.
//
// Threading model:
//
// The Session is single-threaded by contract, mirroring a browser event
// loop. One background goroutine reads WebSocket frames into a queue;
// everything else (dispatch, entity mutation, interpolation, the pose
// stream) happens on the caller's thread, either inside a blocking
// request (Connect, HostRoom, JoinRoom, AutoJoin) or inside Advance, which
// the render loop calls once per frame. No Session method may be called
// concurrently with another.
//
// Authority:
//
//   - Players: spawned on join, destroyed on their owner's disconnect,
//     position streamed by the owner at a fixed interval.
//   - Bullets: any client spawns its own; peers simulate the identical
//     straight-line motion locally from the one-time spawn parameters.
//     Only the shooter broadcasts destruction.
//   - Birds: host-only spawn; every client evaluates the same closed-form
//     orbit of age, with spawn-time rebasing when a host correction
//     implies more than a second of drift.
//   - Scores: only the shooter's own client emits the authoritative total
//     for a kill it is credited with; received totals apply
//     last-writer-wins.
//
// Self-echo suppression is applied before any handler runs: a relayed
// frame whose senderId equals the local identity describes an action that
// was already applied locally, and processing it again would duplicate
// entities.
package sync

// Package service defines the observer-facing view of the relay: the
// RoomDirectory interface plus the info types it returns.
//
// The relay implements RoomDirectory; the REST API and the MCP admin
// surface consume it. Keeping the interface here lets both transports be
// tested against lightweight fakes without standing up a real relay.
package service

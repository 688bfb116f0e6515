// Package api provides HTTP REST API handlers for the Skyshot sync server.
//
// The api package implements:
//   - RESTful endpoints for room observability and administration
//   - Server statistics
//   - Server profile listing
//   - WebSocket upgrade handling
//   - Static file serving
//
// Endpoints:
//
// Rooms:
//   - GET /api/rooms - List active rooms
//   - GET /api/rooms/{code} - Get one room's membership and timing
//   - DELETE /api/rooms/{code} - Evict every member and delete the room
//
// Stats:
//   - GET /api/stats - Room, client, and relay counters
//
// Configuration:
//   - GET /api/configs - List available server profiles
//   - GET /api/configs/{name} - Get one profile
//
// Health:
//   - GET /healthz - Liveness probe
//
// Game traffic never flows through REST: clients speak the wire protocol
// over /ws and the REST surface only observes the room table.
//
// Request/Response Format:
//
// All endpoints accept and return JSON. Room codes are case-insensitive
// in URLs and normalized to upper case.
//
// Usage:
//
//	server := api.NewServer(relay, configManager, relay.ServeWS)
//	http.ListenAndServe(":8080", server)
//
// Error Handling:
//
// Errors are returned as JSON with appropriate HTTP status codes:
//
//	{
//	  "error": "error message"
//	}
package api

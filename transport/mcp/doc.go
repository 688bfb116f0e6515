// Package mcp provides a Model Context Protocol surface for the Skyshot
// sync server.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for room observability and administration
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - list_rooms: List all active rooms with membership
//   - get_room: Get one room's details by code
//   - close_room: Evict every member and delete a room
//   - server_stats: Relay counters, uptime, connection counts
//   - list_configs: List available server profiles
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: Direct stdio communication for local MCP clients
//   - HTTP: HTTP endpoint for remote MCP integration
//
// Architecture:
//
// The MCP layer is a thin proxy over the REST API: every tool call is
// translated into an HTTP request against the running server. Game
// traffic itself never flows through MCP; rooms exchange frames over the
// WebSocket relay and the tools only observe and administer the room
// table.
//
// Usage:
//
//	// Stdio mode
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP mode
//	httpServer := server.NewStreamableHTTPServer(client.GetMCPServer())
//	http.Handle("/mcp", httpServer)
package mcp

package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/skyshot-game/skyshot/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Skyshot Sync Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Skyshot Sync Server - MCP Interface

This is a thin client that proxies all requests to the REST API server.

WHAT THIS SERVER DOES:
Skyshot is a room-based realtime relay for a WebXR multiplayer shooting
game. Players connect over WebSocket, form rooms with short codes, and
exchange pose and entity traffic that the server relays without
interpreting. These tools observe and administer the room table; they do
not participate in game traffic.

AVAILABLE TOOLS:
- list_rooms: List all active rooms with membership
- get_room: Get one room's details by code
- close_room: Evict every member and delete a room
- server_stats: Relay counters, uptime, connection counts
- list_configs: List available server profiles

Room codes are 6 characters, A-Z and 0-9, case-insensitive.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List all active rooms with their membership and hosts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_room",
		Description: "Get details of a specific room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code": map[string]interface{}{
					"type":        "string",
					"description": "Room code to retrieve",
				},
			},
			Required: []string{"code"},
		},
	}, c.handleGetRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "close_room",
		Description: "Evict every member and delete a room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"code": map[string]interface{}{
					"type":        "string",
					"description": "Room code to close",
				},
				"reason": map[string]interface{}{
					"type":        "string",
					"description": "Why the room is being closed (for the operator log)",
				},
			},
			Required: []string{"code"},
		},
	}, c.handleCloseRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Get relay counters: rooms, clients, connections, messages relayed, uptime",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerStats)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available server profiles",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)
}

func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var resp struct {
		Count int                 `json:"count"`
		Rooms []*service.RoomInfo `json:"rooms"`
	}
	err := c.apiCall("GET", "/api/rooms", nil, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if resp.Count == 0 {
		return mcp.NewToolResultText("No active rooms."), nil
	}

	result := fmt.Sprintf("Active Rooms (%d):\n\n", resp.Count)
	for _, room := range resp.Rooms {
		result += formatRoomInfo(room) + "\n"
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	code, _ := args["code"].(string)

	var room service.RoomInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/rooms/%s", strings.ToUpper(code)), nil, &room)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRoomInfo(&room)), nil
}

func (c *Client) handleCloseRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	code, _ := args["code"].(string)
	reason, _ := args["reason"].(string)

	// The reason is operator-side context only; the API does not need it
	_ = reason

	var resp map[string]string
	err := c.apiCall("DELETE", fmt.Sprintf("/api/rooms/%s", strings.ToUpper(code)), nil, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(resp["message"]), nil
}

func (c *Client) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var stats service.ServerStats
	err := c.apiCall("GET", "/api/stats", nil, &stats)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf(`Server Stats:
• Rooms: %d
• Clients in rooms: %d
• Open connections: %d
• Messages relayed: %d
• Uptime: %s`,
		stats.Rooms, stats.Clients, stats.Connections, stats.MessagesRelayed,
		stats.Uptime.Round(time.Second))

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	err := c.apiCall("GET", "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(configs) == 0 {
		return mcp.NewToolResultText("No server profiles available."), nil
	}

	result := "Available Profiles:\n\n"
	for _, config := range configs {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Room capacity: %d\n\n",
			config.Name, config.ConfigID, config.Description, config.RoomCapacity)
	}

	return mcp.NewToolResultText(result), nil
}

// Formatting helpers

func formatRoomInfo(room *service.RoomInfo) string {
	members := strings.Join(room.Members, ", ")
	if members == "" {
		members = "(none)"
	}
	return fmt.Sprintf(`Room %s
• Host: %s
• Members: %d/%d
• Identities: %s
• Created: %s`,
		room.Code, room.HostID, room.MemberCount, room.Capacity, members,
		room.CreatedAt.Format(time.RFC3339))
}

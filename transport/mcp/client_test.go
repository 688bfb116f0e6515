package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/skyshot-game/skyshot/game/service"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	// Create a test server that returns a known response
	expectedResponse := map[string]interface{}{
		"code":    "GAME42",
		"host_id": "host-1",
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expectedResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	err := client.apiCall("GET", "/api/rooms/GAME42", nil, &response)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	// Check that we got the expected response
	if response["code"] != expectedResponse["code"] {
		t.Errorf("Expected code %v, got %v", expectedResponse["code"], response["code"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	err := client.apiCall("GET", "/api/rooms", nil, nil)
	if err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api/rooms", nil, nil)
	if err == nil {
		t.Error("Expected error for HTTP 500 response")
	}
	if !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error' in error message, got: %v", err)
	}
}

func TestClient_apiCall_JSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "room not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api/rooms/NOSUCH", nil, nil)
	if err == nil {
		t.Fatal("Expected error for HTTP 404 response")
	}
	if err.Error() != "room not found" {
		t.Errorf("Expected API error message to surface, got: %v", err)
	}
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result with content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestClient_handleListRooms(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" || r.URL.Path != "/api/rooms" {
			t.Errorf("Expected GET /api/rooms, got %s %s", r.Method, r.URL.Path)
		}

		resp := map[string]interface{}{
			"count": 1,
			"rooms": []*service.RoomInfo{
				{
					Code:        "GAME42",
					HostID:      "host-1",
					CreatedAt:   time.Now(),
					MemberCount: 2,
					Members:     []string{"host-1", "player-2"},
					Capacity:    4,
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "list_rooms",
			Arguments: map[string]interface{}{},
		},
	}

	result, err := client.handleListRooms(context.Background(), request)
	if err != nil {
		t.Fatalf("handleListRooms failed: %v", err)
	}

	text := textContent(t, result)
	if !strings.Contains(text, "GAME42") {
		t.Errorf("Expected room code in result, got: %s", text)
	}
	if !strings.Contains(text, "host-1") {
		t.Errorf("Expected host identity in result, got: %s", text)
	}
}

func TestClient_handleGetRoom(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" || r.URL.Path != "/api/rooms/GAME42" {
			t.Errorf("Expected GET /api/rooms/GAME42, got %s %s", r.Method, r.URL.Path)
		}

		resp := service.RoomInfo{
			Code:        "GAME42",
			HostID:      "host-1",
			CreatedAt:   time.Now(),
			MemberCount: 1,
			Members:     []string{"host-1"},
			Capacity:    4,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "get_room",
			Arguments: map[string]interface{}{"code": "game42"},
		},
	}

	result, err := client.handleGetRoom(context.Background(), request)
	if err != nil {
		t.Fatalf("handleGetRoom failed: %v", err)
	}

	text := textContent(t, result)
	if !strings.Contains(text, "Members: 1/4") {
		t.Errorf("Expected membership in result, got: %s", text)
	}
}

func TestClient_handleCloseRoom(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "DELETE" || r.URL.Path != "/api/rooms/GAME42" {
			t.Errorf("Expected DELETE /api/rooms/GAME42, got %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Room GAME42 closed"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "close_room",
			Arguments: map[string]interface{}{"code": "GAME42", "reason": "stale room"},
		},
	}

	result, err := client.handleCloseRoom(context.Background(), request)
	if err != nil {
		t.Fatalf("handleCloseRoom failed: %v", err)
	}

	text := textContent(t, result)
	if !strings.Contains(text, "closed") {
		t.Errorf("Expected close confirmation, got: %s", text)
	}
}

func TestClient_handleServerStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := service.ServerStats{
			Rooms:           3,
			Clients:         7,
			Connections:     8,
			MessagesRelayed: 4242,
			Uptime:          90 * time.Second,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "server_stats",
			Arguments: map[string]interface{}{},
		},
	}

	result, err := client.handleServerStats(context.Background(), request)
	if err != nil {
		t.Fatalf("handleServerStats failed: %v", err)
	}

	text := textContent(t, result)
	expectedFields := []string{
		"Rooms: 3",
		"Clients in rooms: 7",
		"Open connections: 8",
		"Messages relayed: 4242",
	}
	for _, field := range expectedFields {
		if !strings.Contains(text, field) {
			t.Errorf("Expected field '%s' in stats output, got: %s", field, text)
		}
	}
}

func TestFormatRoomInfo(t *testing.T) {
	room := &service.RoomInfo{
		Code:        "GAME42",
		HostID:      "host-1",
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		MemberCount: 2,
		Members:     []string{"host-1", "player-2"},
		Capacity:    4,
	}

	result := formatRoomInfo(room)

	expectedFields := []string{
		"Room GAME42",
		"Host: host-1",
		"Members: 2/4",
		"host-1, player-2",
	}
	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got: %s", field, result)
		}
	}
}

func TestClient_Integration(t *testing.T) {
	// Integration test that verifies the client can be created and initialized without errors
	client := NewClient("http://localhost:8080")

	if client == nil {
		t.Fatal("Failed to create client")
	}

	// Test that the MCP server has been properly configured with tools
	if client.mcpServer == nil {
		t.Fatal("MCP server not initialized")
	}

	if client.baseURL == "" {
		t.Error("Base URL not set")
	}

	if client.httpClient == nil {
		t.Error("HTTP client not initialized")
	}
}

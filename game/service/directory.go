package service

import (
	"context"
	"time"
)

// RoomInfo describes one room to observers. Positions are client-held, so
// the directory exposes membership and timing only.
type RoomInfo struct {
	Code        string    `json:"code"`
	HostID      string    `json:"host_id"`
	CreatedAt   time.Time `json:"created_at"`
	MemberCount int       `json:"member_count"`
	Members     []string  `json:"members"`
	Capacity    int       `json:"capacity"`
}

// ServerStats summarizes the relay process.
type ServerStats struct {
	Rooms           int           `json:"rooms"`
	Clients         int           `json:"clients"`
	Connections     int           `json:"connections"`
	MessagesRelayed uint64        `json:"messages_relayed"`
	Uptime          time.Duration `json:"uptime"`
	StartedAt       time.Time     `json:"started_at"`
}

// ConfigInfo describes one server profile available on disk.
type ConfigInfo struct {
	Filename     string `json:"filename"`
	ConfigID     string `json:"config_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	RoomCapacity int    `json:"room_capacity"`
}

// RoomDirectory is the read/admin surface over the relay's room table.
type RoomDirectory interface {
	ListRooms(ctx context.Context) ([]*RoomInfo, error)
	GetRoom(ctx context.Context, code string) (*RoomInfo, error)
	// CloseRoom evicts every member and deletes the room. Members receive
	// an error message before their membership is dropped.
	CloseRoom(ctx context.Context, code string) error
	Stats(ctx context.Context) (*ServerStats, error)
}

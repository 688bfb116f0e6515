package config

import (
	"fmt"
	"time"

	"github.com/skyshot-game/skyshot/game/sync"
)

// Validation bounds for server profiles.
const (
	MinRoomCapacity = 2
	MaxRoomCapacity = 16

	MinPoseIntervalMs = 10
	MaxPoseIntervalMs = 1000

	MinTimeoutMs = 500
	MaxTimeoutMs = 60000
)

// ServerConfig is one named server profile loaded from JSON. A profile
// bundles the room sizing and the sync timings handed to headless clients.
type ServerConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// RoomCapacity is the maximum number of members per room.
	RoomCapacity int `json:"room_capacity"`

	// PoseIntervalMs is the local pose streaming interval.
	PoseIntervalMs int `json:"pose_interval_ms"`

	// RequestTimeoutMs bounds every request/confirm exchange.
	RequestTimeoutMs int `json:"request_timeout_ms"`

	// BulletLifespanMs is how long bullets live without a reported hit.
	BulletLifespanMs int `json:"bullet_lifespan_ms"`

	// BirdLifespanMs is how long targets live without a kill.
	BirdLifespanMs int `json:"bird_lifespan_ms"`

	// BirdCorrectionIntervalMs is how often the host rebroadcasts target
	// ages for drift correction.
	BirdCorrectionIntervalMs int `json:"bird_correction_interval_ms"`
}

// ValidateServerConfig validates a server profile for correctness
func ValidateServerConfig(config *ServerConfig) error {
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.RoomCapacity < MinRoomCapacity || config.RoomCapacity > MaxRoomCapacity {
		return fmt.Errorf("config validation: room_capacity must be between %d and %d, got %d",
			MinRoomCapacity, MaxRoomCapacity, config.RoomCapacity)
	}

	if config.PoseIntervalMs < MinPoseIntervalMs || config.PoseIntervalMs > MaxPoseIntervalMs {
		return fmt.Errorf("config validation: pose_interval_ms must be between %d and %d, got %d",
			MinPoseIntervalMs, MaxPoseIntervalMs, config.PoseIntervalMs)
	}

	if config.RequestTimeoutMs < MinTimeoutMs || config.RequestTimeoutMs > MaxTimeoutMs {
		return fmt.Errorf("config validation: request_timeout_ms must be between %d and %d, got %d",
			MinTimeoutMs, MaxTimeoutMs, config.RequestTimeoutMs)
	}

	if config.BulletLifespanMs <= 0 {
		return fmt.Errorf("config validation: bullet_lifespan_ms must be positive, got %d", config.BulletLifespanMs)
	}
	if config.BirdLifespanMs <= 0 {
		return fmt.Errorf("config validation: bird_lifespan_ms must be positive, got %d", config.BirdLifespanMs)
	}
	if config.BirdCorrectionIntervalMs <= 0 {
		return fmt.Errorf("config validation: bird_correction_interval_ms must be positive, got %d",
			config.BirdCorrectionIntervalMs)
	}
	if config.BirdCorrectionIntervalMs >= config.BirdLifespanMs {
		return fmt.Errorf("config validation: bird_correction_interval_ms (%d) must be below bird_lifespan_ms (%d)",
			config.BirdCorrectionIntervalMs, config.BirdLifespanMs)
	}

	return nil
}

// SyncOptions converts the profile's timings into client sync options.
func (c *ServerConfig) SyncOptions() sync.Options {
	return sync.Options{
		PoseInterval:           time.Duration(c.PoseIntervalMs) * time.Millisecond,
		RequestTimeout:         time.Duration(c.RequestTimeoutMs) * time.Millisecond,
		BulletLifespan:         time.Duration(c.BulletLifespanMs) * time.Millisecond,
		BirdLifespan:           time.Duration(c.BirdLifespanMs) * time.Millisecond,
		BirdCorrectionInterval: time.Duration(c.BirdCorrectionIntervalMs) * time.Millisecond,
	}
}

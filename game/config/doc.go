// Package config provides server profile management for the Skyshot sync
// server.
//
// The config package handles:
//   - Loading server profiles from JSON files
//   - Profile validation and verification
//   - Default profile management
//   - Profile discovery and listing
//
// Profile Format:
//
// Server profiles are stored as JSON files in the configs directory. Each
// profile defines:
//   - Room capacity (maximum members per room)
//   - Pose streaming interval in milliseconds
//   - Request timeout for room operations
//   - Entity lifespans and the host's drift-correction interval
//
// Available Profiles:
//
// The package ships with profiles for different deployment shapes:
//   - default: 4-player rooms with 20Hz pose streaming
//   - duo: 2-player rooms for head-to-head play
//   - squad: 8-player rooms with a relaxed pose rate
//   - stress: large rooms and aggressive timings for load testing
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific profile
//	profile, err := manager.LoadConfig("duo")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Get default profile
//	defaultProfile := manager.GetDefault()
//
//	// List available profiles
//	profiles, err := manager.ListConfigs()
//
// Validation:
//
// All profiles are validated for:
//   - Room capacity within the supported range
//   - Pose interval and timeout bounds
//   - Positive entity lifespans
//   - Correction interval below the target lifespan
package config

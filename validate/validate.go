// Command validate provides a small CLI that validates server profile JSON
// files in the ../configs directory. It checks:
//   - JSON structure and required fields
//   - Room capacity bounds
//   - Pose streaming and request timeout bounds
//   - Entity lifespan sanity (bullets, birds, correction interval)
//   - Duplicate profile display names across files
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skyshot-game/skyshot/game/config"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateProfile loads and validates a single server profile JSON file.
// Unlike config.ValidateServerConfig, which stops at the first problem, this
// accumulates every error so a report shows all of them at once.
func validateProfile(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var profile config.ServerConfig
	if err := json.Unmarshal(data, &profile); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	// Validate identity fields
	if profile.Name == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "Missing required field: name")
	}
	if profile.Description == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "Missing required field: description")
	}

	// Validate room sizing
	if profile.RoomCapacity < config.MinRoomCapacity || profile.RoomCapacity > config.MaxRoomCapacity {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("room_capacity must be between %d and %d, got %d",
			config.MinRoomCapacity, config.MaxRoomCapacity, profile.RoomCapacity))
	}

	// Validate timing bounds
	if profile.PoseIntervalMs < config.MinPoseIntervalMs || profile.PoseIntervalMs > config.MaxPoseIntervalMs {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("pose_interval_ms must be between %d and %d, got %d",
			config.MinPoseIntervalMs, config.MaxPoseIntervalMs, profile.PoseIntervalMs))
	}
	if profile.RequestTimeoutMs < config.MinTimeoutMs || profile.RequestTimeoutMs > config.MaxTimeoutMs {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("request_timeout_ms must be between %d and %d, got %d",
			config.MinTimeoutMs, config.MaxTimeoutMs, profile.RequestTimeoutMs))
	}

	// Validate entity lifespans
	if profile.BulletLifespanMs <= 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("bullet_lifespan_ms must be positive, got %d", profile.BulletLifespanMs))
	}
	if profile.BirdLifespanMs <= 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("bird_lifespan_ms must be positive, got %d", profile.BirdLifespanMs))
	}
	if profile.BirdCorrectionIntervalMs <= 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("bird_correction_interval_ms must be positive, got %d", profile.BirdCorrectionIntervalMs))
	}
	if profile.BirdCorrectionIntervalMs > 0 && profile.BirdLifespanMs > 0 &&
		profile.BirdCorrectionIntervalMs >= profile.BirdLifespanMs {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("bird_correction_interval_ms (%d) must be below bird_lifespan_ms (%d)",
			profile.BirdCorrectionIntervalMs, profile.BirdLifespanMs))
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", profile.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Room capacity: %d", profile.RoomCapacity))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Pose interval: %dms", profile.PoseIntervalMs))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Request timeout: %dms", profile.RequestTimeoutMs))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Bullet lifespan: %dms", profile.BulletLifespanMs))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Bird lifespan: %dms (correction every %dms)",
			profile.BirdLifespanMs, profile.BirdCorrectionIntervalMs))
	}

	return result
}

// findDuplicateNames checks every valid profile for display names used by
// more than one file. Duplicate names make -profile output ambiguous in the
// configs listing even though the files themselves are valid.
func findDuplicateNames(files []string) []string {
	seen := make(map[string]string)
	var duplicates []string

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			continue
		}
		var profile config.ServerConfig
		if err := json.Unmarshal(data, &profile); err != nil || profile.Name == "" {
			continue
		}

		base := filepath.Base(file)
		if other, exists := seen[profile.Name]; exists {
			duplicates = append(duplicates, fmt.Sprintf("Name %q used by both %s and %s", profile.Name, other, base))
		} else {
			seen[profile.Name] = base
		}
	}

	return duplicates
}

// main scans ../configs for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateProfile(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	if duplicates := findDuplicateNames(files); len(duplicates) > 0 {
		allValid = false
		fmt.Printf("\n%s\n", strings.Repeat("=", 40))
		for _, dup := range duplicates {
			fmt.Println("❌ " + dup)
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All profiles are valid!")
	} else {
		fmt.Println("❌ Some profiles have errors")
		os.Exit(1)
	}
}

package main

import (
	"os"
	"testing"
)

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName == "" {
		t.Error("AppName should not be empty")
	}

	expectedVersion := "1.0.0"
	if Version != expectedVersion {
		t.Errorf("Expected version %s, got %s", expectedVersion, Version)
	}

	expectedAppName := "Skyshot Sync Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestGetConfigDirDefault(t *testing.T) {
	original := os.Getenv("CONFIG_DIR")
	defer os.Setenv("CONFIG_DIR", original)

	os.Unsetenv("CONFIG_DIR")
	if dir := getConfigDirDefault(); dir != "configs" {
		t.Errorf("Expected default config dir 'configs', got %q", dir)
	}

	os.Setenv("CONFIG_DIR", "/tmp/profiles")
	if dir := getConfigDirDefault(); dir != "/tmp/profiles" {
		t.Errorf("Expected config dir from environment, got %q", dir)
	}
}

func TestInitializeServices(t *testing.T) {
	// Test with default config directory
	originalConfigDir := *configDir
	*configDir = "configs"
	defer func() { *configDir = originalConfigDir }()

	// Create config directory if it doesn't exist for test
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	relay, configManager, err := initializeServices()
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	if relay == nil {
		t.Fatal("Expected relay to be initialized")
	}
	if configManager == nil {
		t.Fatal("Expected config manager to be initialized")
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	// Test with non-existent config directory
	originalConfigDir := *configDir
	*configDir = "/non/existent/path"
	defer func() { *configDir = originalConfigDir }()

	_, _, err := initializeServices()
	if err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestInitializeServices_UnknownProfile(t *testing.T) {
	originalConfigDir := *configDir
	originalProfile := *profile
	*configDir = "configs"
	*profile = "no-such-profile"
	defer func() {
		*configDir = originalConfigDir
		*profile = originalProfile
	}()

	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}

	_, _, err := initializeServices()
	if err == nil {
		t.Error("Expected error for unknown profile")
	}
}

func TestFlagDefaults(t *testing.T) {
	// Test that flags have reasonable defaults
	if *port <= 0 || *port > 65535 {
		t.Errorf("Invalid default port: %d", *port)
	}

	if *host == "" {
		t.Error("Host should have a default value")
	}

	if *configDir == "" {
		t.Error("Config directory should have a default value")
	}
}

// Note: We can't easily test main(), runHTTPServer(), and runStdioMCPWithInternalServer()
// without significant mocking or refactoring, as they start servers and block.
// These functions would be better tested in integration tests that start actual servers
// and test their endpoints.

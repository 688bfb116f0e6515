package main

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWanderPoseStaysOnCircle(t *testing.T) {
	for _, elapsed := range []float64{0, 1.5, 10, 123.4} {
		pose := wanderPose(0, elapsed)
		radius := math.Hypot(pose.Position[0], pose.Position[2])
		if math.Abs(radius-4) > 1e-9 {
			t.Errorf("Expected walk radius 4 at elapsed %v, got %v", elapsed, radius)
		}
	}
}

func TestWanderPoseHeadHeight(t *testing.T) {
	pose := wanderPose(2, 3)

	if pose.HeadPosition[1] != 1.6 {
		t.Errorf("Expected head height 1.6, got %v", pose.HeadPosition[1])
	}
	if pose.HeadPosition[0] != pose.Position[0] || pose.HeadPosition[2] != pose.Position[2] {
		t.Error("Expected head to sit above the body position")
	}
}

func TestWanderPoseSpreadsBots(t *testing.T) {
	a := wanderPose(0, 5)
	b := wanderPose(1, 5)

	if a.Position.Dist(b.Position) < 0.1 {
		t.Errorf("Expected bots at distinct positions, got %v and %v", a.Position, b.Position)
	}
}

func TestRandomOrbitWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 100; i++ {
		orbit := randomOrbit(rng)

		if orbit.Radius < 3 || orbit.Radius > 8 {
			t.Errorf("Orbit radius out of bounds: %v", orbit.Radius)
		}
		if orbit.AngularSpeed <= 0 {
			t.Errorf("Expected positive angular speed, got %v", orbit.AngularSpeed)
		}
		if orbit.BaseHeight < 8 || orbit.BaseHeight > 12 {
			t.Errorf("Base height out of bounds: %v", orbit.BaseHeight)
		}
		if orbit.BobAmplitude <= 0 || orbit.BobFrequency <= 0 {
			t.Error("Expected positive bob parameters")
		}
	}
}

func TestResolveOptions_NoProfile(t *testing.T) {
	opts, err := resolveOptions("", "")
	if err != nil {
		t.Fatalf("Expected no error without a profile, got %v", err)
	}

	if opts.PoseInterval != 0 {
		t.Errorf("Expected zero options without a profile, got pose interval %v", opts.PoseInterval)
	}
}

func TestResolveOptions_MissingDir(t *testing.T) {
	_, err := resolveOptions("/non/existent/path", "default")
	if err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestResolveOptions_Profile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "loadbot_configs_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	profileJSON := `{
		"name": "Duo",
		"description": "Two-player rooms with fast poses",
		"room_capacity": 2,
		"pose_interval_ms": 33,
		"request_timeout_ms": 3000,
		"bullet_lifespan_ms": 2000,
		"bird_lifespan_ms": 20000,
		"bird_correction_interval_ms": 4000
	}`
	if err := os.WriteFile(filepath.Join(tmpDir, "duo.json"), []byte(profileJSON), 0644); err != nil {
		t.Fatalf("Failed to write profile: %v", err)
	}

	opts, err := resolveOptions(tmpDir, "duo")
	if err != nil {
		t.Fatalf("Failed to resolve options: %v", err)
	}

	if opts.PoseInterval != 33*time.Millisecond {
		t.Errorf("Expected pose interval 33ms, got %v", opts.PoseInterval)
	}
	if opts.BulletLifespan != 2*time.Second {
		t.Errorf("Expected bullet lifespan 2s, got %v", opts.BulletLifespan)
	}
}

func TestResolveOptions_UnknownProfile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "loadbot_configs_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	_, err = resolveOptions(tmpDir, "missing")
	if err == nil {
		t.Error("Expected error for unknown profile")
	}
}

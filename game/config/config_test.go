package config

import (
	"testing"
	"time"
)

func TestSyncOptions(t *testing.T) {
	config := createValidConfig()
	opts := config.SyncOptions()

	if opts.PoseInterval != 50*time.Millisecond {
		t.Errorf("Expected pose interval 50ms, got %v", opts.PoseInterval)
	}
	if opts.RequestTimeout != 5*time.Second {
		t.Errorf("Expected request timeout 5s, got %v", opts.RequestTimeout)
	}
	if opts.BulletLifespan != 3*time.Second {
		t.Errorf("Expected bullet lifespan 3s, got %v", opts.BulletLifespan)
	}
	if opts.BirdLifespan != 30*time.Second {
		t.Errorf("Expected bird lifespan 30s, got %v", opts.BirdLifespan)
	}
	if opts.BirdCorrectionInterval != 5*time.Second {
		t.Errorf("Expected correction interval 5s, got %v", opts.BirdCorrectionInterval)
	}
}

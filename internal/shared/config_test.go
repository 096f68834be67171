package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.API.BatchSize != 50 {
		t.Errorf("expected batch size 50, got %d", config.API.BatchSize)
	}
	if config.API.MaxRetries != 3 {
		t.Errorf("expected 3 retries, got %d", config.API.MaxRetries)
	}
	if config.Playlists.ReleaseRadarTargetSize != 40 {
		t.Errorf("expected target size 40, got %d", config.Playlists.ReleaseRadarTargetSize)
	}
	if config.Video.LongVideoThresholdMinutes != 10 {
		t.Errorf("expected 10 minute threshold, got %d", config.Video.LongVideoThresholdMinutes)
	}
	if len(config.Stats.WeekDeltas) != 4 {
		t.Errorf("expected 4 week deltas, got %v", config.Stats.WeekDeltas)
	}

	if err := config.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := "[api]\nmax_retries = 5\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if config.API.MaxRetries != 5 {
			t.Errorf("override not applied, got %d", config.API.MaxRetries)
		}
		if config.API.BatchSize != 50 {
			t.Errorf("default lost, got %d", config.API.BatchSize)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("not toml ["), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("out-of-range values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := "[api]\nbatch_size = 0\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestConfigDurations(t *testing.T) {
	config := DefaultConfig()

	if got := config.BaseDelay(); got != time.Second {
		t.Errorf("expected 1s base delay, got %v", got)
	}
	if got := config.MaxBackoff(); got != 32*time.Second {
		t.Errorf("expected 32s max backoff, got %v", got)
	}
	if got := config.ProbeTimeout(); got != 5*time.Second {
		t.Errorf("expected 5s probe timeout, got %v", got)
	}
	if got := config.AgingWindow(); got != 7*24*time.Hour {
		t.Errorf("expected one week aging window, got %v", got)
	}
}

func TestCreateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("CreateConfigFile failed: %v", err)
	}
	if _, err := LoadConfig(path); err != nil {
		t.Errorf("generated file must load cleanly: %v", err)
	}
	if err := CreateConfigFile(path); err == nil {
		t.Error("expected an error when the file exists")
	}
}

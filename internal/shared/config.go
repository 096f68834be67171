package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API       APIConfig       `toml:"api"`
	Network   NetworkConfig   `toml:"network"`
	Playlists PlaylistsConfig `toml:"playlists"`
	Video     VideoConfig     `toml:"video"`
	Stats     StatsConfig     `toml:"stats"`
	Data      DataConfig      `toml:"data"`
}

// APIConfig contains request batching and retry settings.
type APIConfig struct {
	// BatchSize is the page size for list requests and the chunk size for
	// batched video/channel lookups.
	BatchSize int `toml:"batch_size"`
	// MaxRetries bounds attempts per playlist insertion on transient errors.
	MaxRetries int `toml:"max_retries"`
	// BaseDelaySeconds seeds the exponential backoff between retries.
	BaseDelaySeconds int `toml:"base_delay_seconds"`
	// MaxBackoffSeconds caps the backoff delay.
	MaxBackoffSeconds int `toml:"max_backoff_seconds"`
	// RequestsPerSecond throttles all Data API calls.
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// NetworkConfig contains settings for non-API network calls.
type NetworkConfig struct {
	// TimeoutSeconds bounds the shorts detection probe.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// PlaylistsConfig contains balancing settings for the release radar.
type PlaylistsConfig struct {
	// ReleaseRadarTargetSize is the capacity the balancer fills up to.
	ReleaseRadarTargetSize int `toml:"release_radar_target_size"`
	// RelisteningAgeWeeks is the minimum age of a re-listening entry before
	// it is eligible for transfer back into the radar.
	RelisteningAgeWeeks int `toml:"relistening_age_weeks"`
}

// VideoConfig contains video classification settings.
type VideoConfig struct {
	// LongVideoThresholdMinutes separates releases from long-form content.
	LongVideoThresholdMinutes int `toml:"long_video_threshold_minutes"`
}

// StatsConfig contains historical statistics settings.
type StatsConfig struct {
	// WeekDeltas lists the offsets (in weeks after release) at which video
	// metrics are re-captured.
	WeekDeltas []int `toml:"week_deltas"`
}

// DataConfig contains local data locations.
type DataConfig struct {
	// Dir holds the JSON reference files and the failure queue.
	Dir string `toml:"dir"`
	// HistoryPath is the sqlite database for historical stats.
	HistoryPath string `toml:"history_path"`
}

// LoadConfig reads, parses, and validates a TOML configuration file.
// Settings absent from the file keep their embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate rejects out-of-range values at load time instead of letting them
// fail mid-run.
func (c *Config) Validate() error {
	checks := []struct {
		ok   bool
		desc string
	}{
		{c.API.BatchSize > 0, "api.batch_size must be positive"},
		{c.API.MaxRetries > 0, "api.max_retries must be positive"},
		{c.API.BaseDelaySeconds > 0, "api.base_delay_seconds must be positive"},
		{c.API.MaxBackoffSeconds >= c.API.BaseDelaySeconds, "api.max_backoff_seconds must be at least base_delay_seconds"},
		{c.API.RequestsPerSecond > 0, "api.requests_per_second must be positive"},
		{c.Network.TimeoutSeconds > 0, "network.timeout_seconds must be positive"},
		{c.Playlists.ReleaseRadarTargetSize > 0, "playlists.release_radar_target_size must be positive"},
		{c.Playlists.RelisteningAgeWeeks >= 0, "playlists.relistening_age_weeks must be >= 0"},
		{c.Video.LongVideoThresholdMinutes > 0, "video.long_video_threshold_minutes must be positive"},
		{len(c.Stats.WeekDeltas) > 0, "stats.week_deltas must not be empty"},
		{c.Data.Dir != "", "data.dir must be set"},
		{c.Data.HistoryPath != "", "data.history_path must be set"},
	}

	for _, check := range checks {
		if !check.ok {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, check.desc)
		}
	}

	for _, delta := range c.Stats.WeekDeltas {
		if delta <= 0 {
			return fmt.Errorf("%w: stats.week_deltas entries must be positive, got %d", ErrInvalidConfig, delta)
		}
	}

	return nil
}

// BaseDelay returns the backoff seed as a duration.
func (c *Config) BaseDelay() time.Duration {
	return time.Duration(c.API.BaseDelaySeconds) * time.Second
}

// MaxBackoff returns the backoff cap as a duration.
func (c *Config) MaxBackoff() time.Duration {
	return time.Duration(c.API.MaxBackoffSeconds) * time.Second
}

// ProbeTimeout returns the shorts probe timeout as a duration.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Network.TimeoutSeconds) * time.Second
}

// AgingWindow returns the re-listening eligibility age as a duration.
func (c *Config) AgingWindow() time.Duration {
	return time.Duration(c.Playlists.RelisteningAgeWeeks) * 7 * 24 * time.Hour
}

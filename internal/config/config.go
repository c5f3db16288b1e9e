// ABOUTME: Player configuration loaded from YAML
// ABOUTME: Provides defaults, per-section validation and duration helpers
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete player configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Audio      AudioConfig      `yaml:"audio"`
	Buffer     BufferConfig     `yaml:"buffer"`
	Connection ConnectionConfig `yaml:"connection"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	UI         UIConfig         `yaml:"ui"`
}

// ServerConfig identifies the stream to listen to
type ServerConfig struct {
	Address string `yaml:"address"` // host:port, empty means discover via mDNS
	Path    string `yaml:"path"`
	Name    string `yaml:"name"` // player name advertised over mDNS
}

// AudioConfig contains output parameters
type AudioConfig struct {
	SampleRate    int  `yaml:"sample_rate"`
	VisualSamples int  `yaml:"visual_samples"`
	Volume        int  `yaml:"volume"`
	Disabled      bool `yaml:"disabled"` // play into the null sink
}

// BufferConfig tunes the jitter estimator and the playback scheduler
type BufferConfig struct {
	MinSeconds float64 `yaml:"min_seconds"`
	MaxSeconds float64 `yaml:"max_seconds"`
	TailFactor float64 `yaml:"tail_factor"`
	WindowSize int     `yaml:"window_size"`
}

// ConnectionConfig contains liveness timings in milliseconds
type ConnectionConfig struct {
	HeartbeatIntervalMs int  `yaml:"heartbeat_interval_ms"`
	HeartbeatTimeoutMs  int  `yaml:"heartbeat_timeout_ms"`
	ReconnectIntervalMs int  `yaml:"reconnect_interval_ms"`
	Autoplay            bool `yaml:"autoplay"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// UIConfig controls the terminal UI
type UIConfig struct {
	Enabled         bool `yaml:"enabled"`
	StatsIntervalMs int  `yaml:"stats_interval_ms"`
	ShowStats       bool `yaml:"show_stats"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Path: "/",
			Name: defaultName(),
		},
		Audio: AudioConfig{
			SampleRate:    44100,
			VisualSamples: 2048,
			Volume:        100,
		},
		Buffer: BufferConfig{
			MinSeconds: 0.15,
			MaxSeconds: 1.2,
			TailFactor: 4,
			WindowSize: 2000,
		},
		Connection: ConnectionConfig{
			HeartbeatIntervalMs: 1000,
			HeartbeatTimeoutMs:  3000,
			ReconnectIntervalMs: 2000,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "livelisten.log",
		},
		Metrics: MetricsConfig{
			Address: ":9464",
		},
		UI: UIConfig{
			Enabled:         true,
			StatsIntervalMs: 500,
		},
	}
}

func defaultName() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		return "livelisten"
	}
	return hostname + "-livelisten"
}

// Load reads a YAML file over the defaults and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}

	if err := c.Buffer.Validate(); err != nil {
		return fmt.Errorf("buffer config: %w", err)
	}

	if err := c.Connection.Validate(); err != nil {
		return fmt.Errorf("connection config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}

	if err := c.UI.Validate(); err != nil {
		return fmt.Errorf("ui config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	if s.Path == "" || s.Path[0] != '/' {
		return fmt.Errorf("path must start with '/', got '%s'", s.Path)
	}
	if s.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return nil
}

// Validate validates audio configuration
func (a *AudioConfig) Validate() error {
	if a.SampleRate < 8000 || a.SampleRate > 192000 {
		return fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %d", a.SampleRate)
	}
	if a.VisualSamples < 1 {
		return fmt.Errorf("visual_samples must be at least 1, got %d", a.VisualSamples)
	}
	if a.Volume < 0 || a.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", a.Volume)
	}
	return nil
}

// Validate validates buffer configuration
func (b *BufferConfig) Validate() error {
	if b.MinSeconds <= 0 {
		return fmt.Errorf("min_seconds must be positive, got %f", b.MinSeconds)
	}
	if b.MaxSeconds < b.MinSeconds {
		return fmt.Errorf("max_seconds (%f) must not be less than min_seconds (%f)",
			b.MaxSeconds, b.MinSeconds)
	}
	if b.TailFactor <= 0 {
		return fmt.Errorf("tail_factor must be positive, got %f", b.TailFactor)
	}
	if b.WindowSize < 2 {
		return fmt.Errorf("window_size must be at least 2, got %d", b.WindowSize)
	}
	return nil
}

// Validate validates connection configuration
func (c *ConnectionConfig) Validate() error {
	if c.HeartbeatIntervalMs < 1 {
		return fmt.Errorf("heartbeat_interval_ms must be positive, got %d", c.HeartbeatIntervalMs)
	}
	if c.HeartbeatTimeoutMs < c.HeartbeatIntervalMs {
		return fmt.Errorf("heartbeat_timeout_ms (%d) must be at least heartbeat_interval_ms (%d)",
			c.HeartbeatTimeoutMs, c.HeartbeatIntervalMs)
	}
	if c.ReconnectIntervalMs < 1 {
		return fmt.Errorf("reconnect_interval_ms must be positive, got %d", c.ReconnectIntervalMs)
	}
	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}
	return nil
}

// Validate validates metrics configuration
func (m *MetricsConfig) Validate() error {
	if m.Enabled && m.Address == "" {
		return fmt.Errorf("address cannot be empty when metrics are enabled")
	}
	return nil
}

// Validate validates UI configuration
func (u *UIConfig) Validate() error {
	if u.StatsIntervalMs < 50 {
		return fmt.Errorf("stats_interval_ms must be at least 50, got %d", u.StatsIntervalMs)
	}
	return nil
}

// HeartbeatInterval returns the heartbeat check period
func (c *ConnectionConfig) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatIntervalMs) * time.Millisecond
}

// HeartbeatTimeout returns the silence after which the link is dropped
func (c *ConnectionConfig) HeartbeatTimeout() time.Duration {
	return time.Duration(c.HeartbeatTimeoutMs) * time.Millisecond
}

// ReconnectInterval returns the retry period
func (c *ConnectionConfig) ReconnectInterval() time.Duration {
	return time.Duration(c.ReconnectIntervalMs) * time.Millisecond
}

// StatsInterval returns the UI refresh period
func (u *UIConfig) StatsInterval() time.Duration {
	return time.Duration(u.StatsIntervalMs) * time.Millisecond
}

// Package config loads the mudra runtime configuration from JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ayusman/mudra/internal/gesture"
)

// Defaults for the non-classifier settings.
const (
	DefaultOSCHost     = "127.0.0.1"
	DefaultOSCPort     = 12000
	DefaultCameraID    = 0
	DefaultFPS         = 15
	DefaultFrameWidth  = 640
	DefaultFrameHeight = 480
	DefaultListen      = ":8080"
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config is the root configuration. Every field is optional; the Get*
// accessors fall back to defaults for fields not present in the file.
type Config struct {
	// Classifier thresholds
	WaveDelta    *float64 `json:"wave_delta,omitempty"`
	WaveCount    *int     `json:"wave_count,omitempty"`
	ClapDistance *float64 `json:"clap_distance,omitempty"`
	PeaceSpread  *float64 `json:"peace_spread,omitempty"`
	ClapMode     *string  `json:"clap_mode,omitempty"`
	MaxHands     *int     `json:"max_hands,omitempty"`

	// Transport
	OSCHost *string `json:"osc_host,omitempty"`
	OSCPort *int    `json:"osc_port,omitempty"`

	// Capture
	CameraID    *int `json:"camera_id,omitempty"`
	FPS         *int `json:"fps,omitempty"`
	FrameWidth  *int `json:"frame_width,omitempty"`
	FrameHeight *int `json:"frame_height,omitempty"`

	Listen *string `json:"listen,omitempty"`
	DBPath *string `json:"db_path,omitempty"`
}

// Load reads a Config from a JSON file and validates it.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the configured values. Threshold problems are reported
// with gesture.ErrInvalidThresholds.
func (c *Config) Validate() error {
	if err := c.Thresholds().Validate(); err != nil {
		return err
	}
	if port := c.GetOSCPort(); port <= 0 || port > 65535 {
		return fmt.Errorf("osc_port must be between 1 and 65535, got %d", port)
	}
	if c.GetFPS() <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.GetFPS())
	}
	if c.GetFrameWidth() <= 0 || c.GetFrameHeight() <= 0 {
		return fmt.Errorf("frame size must be positive, got %dx%d", c.GetFrameWidth(), c.GetFrameHeight())
	}
	return nil
}

// HasThresholds reports whether the file sets any classifier threshold.
func (c *Config) HasThresholds() bool {
	return c.WaveDelta != nil || c.WaveCount != nil || c.ClapDistance != nil ||
		c.PeaceSpread != nil || c.ClapMode != nil || c.MaxHands != nil
}

// Thresholds returns the classifier thresholds, defaulting unset fields.
func (c *Config) Thresholds() gesture.Thresholds {
	return c.ApplyThresholds(gesture.DefaultThresholds())
}

// ApplyThresholds overlays the thresholds set in the file onto base.
func (c *Config) ApplyThresholds(base gesture.Thresholds) gesture.Thresholds {
	if c.WaveDelta != nil {
		base.WaveDelta = *c.WaveDelta
	}
	if c.WaveCount != nil {
		base.WaveCount = *c.WaveCount
	}
	if c.ClapDistance != nil {
		base.ClapDistance = *c.ClapDistance
	}
	if c.PeaceSpread != nil {
		base.PeaceSpread = *c.PeaceSpread
	}
	if c.ClapMode != nil {
		base.ClapMode = gesture.ClapMode(*c.ClapMode)
	}
	if c.MaxHands != nil {
		base.MaxHands = *c.MaxHands
	}
	return base
}

func (c *Config) GetOSCHost() string {
	if c.OSCHost == nil || *c.OSCHost == "" {
		return DefaultOSCHost
	}
	return *c.OSCHost
}

func (c *Config) GetOSCPort() int {
	if c.OSCPort == nil {
		return DefaultOSCPort
	}
	return *c.OSCPort
}

func (c *Config) GetCameraID() int {
	if c.CameraID == nil {
		return DefaultCameraID
	}
	return *c.CameraID
}

func (c *Config) GetFPS() int {
	if c.FPS == nil {
		return DefaultFPS
	}
	return *c.FPS
}

func (c *Config) GetFrameWidth() int {
	if c.FrameWidth == nil {
		return DefaultFrameWidth
	}
	return *c.FrameWidth
}

func (c *Config) GetFrameHeight() int {
	if c.FrameHeight == nil {
		return DefaultFrameHeight
	}
	return *c.FrameHeight
}

func (c *Config) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return DefaultListen
	}
	return *c.Listen
}

// GetDBPath returns the configured database path, or "" to use the default location.
func (c *Config) GetDBPath() string {
	if c.DBPath == nil {
		return ""
	}
	return *c.DBPath
}

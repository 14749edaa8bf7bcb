package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the complete recorder configuration
type Config struct {
	InstanceID       string        `yaml:"instance_id"`
	OutputDir        string        `yaml:"output_dir"`         // empty: ~/Videos or ~/ScreenRecordings
	ShutdownTimeoutS int           `yaml:"shutdown_timeout_s"` // Graceful shutdown timeout in seconds (default: 5)
	Capture          CaptureConfig `yaml:"capture"`
	Encoder          EncoderConfig `yaml:"encoder"`
	HTTP             HTTPConfig    `yaml:"http"`
	MQTT             MQTTConfig    `yaml:"mqtt"`
	Catalog          CatalogConfig `yaml:"catalog"`
	Log              LogConfig     `yaml:"log"`
}

// CaptureConfig contains capture settings
type CaptureConfig struct {
	Backend string `yaml:"backend"` // synthetic, ffmpeg, gstreamer
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	FPS     int    `yaml:"fps"`
	Display string `yaml:"display"` // X11 display (linux)
	FFmpeg  string `yaml:"ffmpeg"`  // ffmpeg binary
}

// EncoderConfig contains encoder settings
type EncoderConfig struct {
	Backend     string `yaml:"backend"` // ffmpeg, gstreamer, raw
	Codec       string `yaml:"codec"`
	Preset      string `yaml:"preset"`
	CRF         int    `yaml:"crf"`
	BitrateKbps uint   `yaml:"bitrate_kbps"` // gstreamer backend
	Extension   string `yaml:"extension"`    // container extension, derived from backend when empty
	LogStderr   bool   `yaml:"log_stderr"`   // keep ffmpeg stderr next to the output
}

// HTTPConfig contains the status server settings
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// MQTTConfig contains MQTT broker settings
type MQTTConfig struct {
	Enabled bool            `yaml:"enabled"`
	Broker  string          `yaml:"broker"`
	Topics  MQTTTopics      `yaml:"topics"`
	QoS     map[string]byte `yaml:"qos"`
}

// MQTTTopics contains topic names
type MQTTTopics struct {
	Control   string `yaml:"control"`
	Events    string `yaml:"events"`
	Responses string `yaml:"responses"`
}

// CatalogConfig contains the recordings index settings
type CatalogConfig struct {
	Path string `yaml:"path"` // empty disables the catalog
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Default returns a validated configuration usable without a file.
func Default() *Config {
	cfg := &Config{InstanceID: "screenrec"}
	if err := Validate(cfg); err != nil {
		panic(fmt.Sprintf("config: default configuration invalid: %v", err))
	}
	return cfg
}

// Load reads and parses a YAML configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

package config

import (
	"fmt"
	"regexp"
	"strings"
)

var instanceIDPattern = regexp.MustCompile(`^[a-z0-9\-]+$`)

// Validate checks the configuration and fills defaults in place
func Validate(cfg *Config) error {
	if cfg.InstanceID == "" {
		return fmt.Errorf("instance_id is required")
	}
	if !instanceIDPattern.MatchString(cfg.InstanceID) {
		return fmt.Errorf("instance_id must match pattern [a-z0-9-]+")
	}

	if cfg.ShutdownTimeoutS <= 0 {
		cfg.ShutdownTimeoutS = 5
	}

	if err := validateCapture(&cfg.Capture); err != nil {
		return err
	}
	if err := validateEncoder(&cfg.Encoder); err != nil {
		return err
	}

	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8090"
	}

	if cfg.MQTT.Enabled {
		if cfg.MQTT.Broker == "" {
			return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
		}
		if cfg.MQTT.Topics.Control == "" {
			cfg.MQTT.Topics.Control = fmt.Sprintf("screenrec/control/%s", cfg.InstanceID)
		}
		if cfg.MQTT.Topics.Events == "" {
			cfg.MQTT.Topics.Events = fmt.Sprintf("screenrec/events/%s", cfg.InstanceID)
		}
		if cfg.MQTT.Topics.Responses == "" {
			cfg.MQTT.Topics.Responses = fmt.Sprintf("screenrec/responses/%s", cfg.InstanceID)
		}
		if cfg.MQTT.QoS == nil {
			cfg.MQTT.QoS = map[string]byte{
				"control":   1,
				"responses": 1,
				"events":    0,
			}
		}
		for name, qos := range cfg.MQTT.QoS {
			if qos > 2 {
				return fmt.Errorf("mqtt.qos.%s must be 0, 1 or 2, got %d", name, qos)
			}
		}
	}

	switch cfg.Log.Level {
	case "":
		cfg.Log.Level = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "":
		cfg.Log.Format = "json"
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", cfg.Log.Format)
	}

	return nil
}

func validateCapture(c *CaptureConfig) error {
	switch c.Backend {
	case "":
		c.Backend = "ffmpeg"
	case "synthetic", "ffmpeg", "gstreamer":
	default:
		return fmt.Errorf("capture.backend must be synthetic, ffmpeg or gstreamer, got %q", c.Backend)
	}

	if c.Width == 0 {
		c.Width = 1280
	}
	if c.Height == 0 {
		c.Height = 720
	}
	if c.Width < 0 || c.Height < 0 || c.Width%2 != 0 || c.Height%2 != 0 {
		return fmt.Errorf("capture resolution must be positive and even, got %dx%d", c.Width, c.Height)
	}

	if c.FPS == 0 {
		c.FPS = 30
	}
	if c.FPS < 1 || c.FPS > 120 {
		return fmt.Errorf("capture.fps must be between 1 and 120, got %d", c.FPS)
	}

	if c.Display == "" {
		c.Display = ":0.0"
	}
	if c.FFmpeg == "" {
		c.FFmpeg = "ffmpeg"
	}
	return nil
}

func validateEncoder(e *EncoderConfig) error {
	switch e.Backend {
	case "":
		e.Backend = "ffmpeg"
	case "ffmpeg", "gstreamer", "raw":
	default:
		return fmt.Errorf("encoder.backend must be ffmpeg, gstreamer or raw, got %q", e.Backend)
	}

	if e.Codec == "" {
		e.Codec = "libx264"
	}
	if e.Preset == "" {
		e.Preset = "veryfast"
	}
	if e.CRF == 0 {
		e.CRF = 23
	}
	if e.CRF < 0 || e.CRF > 51 {
		return fmt.Errorf("encoder.crf must be between 0 and 51, got %d", e.CRF)
	}
	if e.BitrateKbps == 0 {
		e.BitrateKbps = 4000
	}

	if e.Extension == "" {
		switch e.Backend {
		case "gstreamer":
			e.Extension = ".mkv"
		case "raw":
			e.Extension = ".rgb"
		default:
			e.Extension = ".mp4"
		}
	}
	if !strings.HasPrefix(e.Extension, ".") {
		e.Extension = "." + e.Extension
	}
	return nil
}

// Package config loads runtime settings from an optional JSON file and the
// environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Beastly713/steganoweb/pkg/stego"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "steganoweb.json"

// Duration is a time.Duration that unmarshals from strings like "45s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// AIConfig configures the optional external enhancement service.
type AIConfig struct {
	Enabled  bool     `json:"enabled"`
	APIKey   string   `json:"api_key"`
	Model    string   `json:"model"`
	Endpoint string   `json:"endpoint"` // base URL override, empty for the public API
	Timeout  Duration `json:"timeout"`
}

// Config represents the configuration file structure.
type Config struct {
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`

	MaxMessageChars  int `json:"max_message_chars"`
	MaxDecodedLength int `json:"max_decoded_length"`
	ScanCeilingBits  int `json:"scan_ceiling_bits"`
	MaxEncodeBytes   int `json:"max_encode_bytes"`
	MaxDecodeBytes   int `json:"max_decode_bytes"`

	AI AIConfig `json:"ai"`
}

// Default returns the built-in settings.
func Default() *Config {
	lim := stego.DefaultLimits()
	return &Config{
		LogLevel:         "info",
		LogFormat:        "console",
		MaxMessageChars:  lim.MaxMessageChars,
		MaxDecodedLength: lim.MaxDecodedLength,
		ScanCeilingBits:  lim.ScanCeilingBits,
		MaxEncodeBytes:   lim.MaxEncodeBytes,
		MaxDecodeBytes:   lim.MaxDecodeBytes,
		AI: AIConfig{
			Model:   "models/gemini-2.0-flash",
			Timeout: Duration(45 * time.Second),
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath
	}

	file, err := os.Open(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to open config %s: %w", path, err)
	default:
		defer file.Close()
		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("STEGANOWEB_LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup("STEGANOWEB_ENABLE_AI"); ok {
		c.AI.Enabled = strings.EqualFold(v, "true")
	}
	if v, ok := lookup("STEGANOWEB_AI_API_KEY"); ok {
		c.AI.APIKey = v
	}
	if v, ok := lookup("STEGANOWEB_AI_MODEL"); ok && v != "" {
		c.AI.Model = v
	}
	if v, ok := lookup("STEGANOWEB_AI_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STEGANOWEB_AI_TIMEOUT: %w", err)
		}
		c.AI.Timeout = Duration(d)
	}
	if v, ok := lookup("STEGANOWEB_MAX_MESSAGE_CHARS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STEGANOWEB_MAX_MESSAGE_CHARS: %w", err)
		}
		c.MaxMessageChars = n
	}
	return nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	limits := map[string]int{
		"max_message_chars":  c.MaxMessageChars,
		"max_decoded_length": c.MaxDecodedLength,
		"scan_ceiling_bits":  c.ScanCeilingBits,
		"max_encode_bytes":   c.MaxEncodeBytes,
		"max_decode_bytes":   c.MaxDecodeBytes,
	}
	for name, v := range limits {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}
	if c.AI.Enabled && c.AI.APIKey == "" {
		return errors.New("ai is enabled but no api key is configured")
	}
	if c.AI.Timeout <= 0 {
		return errors.New("ai timeout must be positive")
	}
	return nil
}

// Limits maps the configured bounds onto the codec's limits.
func (c *Config) Limits() stego.Limits {
	return stego.Limits{
		MaxMessageChars:  c.MaxMessageChars,
		MaxDecodedLength: c.MaxDecodedLength,
		ScanCeilingBits:  c.ScanCeilingBits,
		MaxEncodeBytes:   c.MaxEncodeBytes,
		MaxDecodeBytes:   c.MaxDecodeBytes,
	}
}

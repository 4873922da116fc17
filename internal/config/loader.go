package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Engine names accepted in Config.Engine.
const (
	EngineHeadless   = "headless"
	EnginePlaywright = "playwright"
	EngineNone       = "none"
)

// Defaults for unspecified fields.
const (
	DefaultAddr             = ":8089"
	DefaultEngine           = EngineHeadless
	DefaultInstanceID       = "wv_default"
	DefaultPurgeIntervalSec = 5
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "console"
)

// Config holds runtime parameters for the daemon.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Addr              string `json:"addr" yaml:"addr" toml:"addr"`
	Engine            string `json:"engine" yaml:"engine" toml:"engine"`
	DefaultInstanceID string `json:"default_instance_id" yaml:"default_instance_id" toml:"default_instance_id"`
	DefaultURL        string `json:"default_url" yaml:"default_url" toml:"default_url"`
	UserDataDir       string `json:"user_data_dir" yaml:"user_data_dir" toml:"user_data_dir"`
	// StatePath selects the persistence backend by extension (.db, .yaml, .json).
	// Empty disables persistence.
	StatePath        string `json:"state_path" yaml:"state_path" toml:"state_path"`
	PurgeIntervalSec int    `json:"purge_interval_sec" yaml:"purge_interval_sec" toml:"purge_interval_sec"`
	// FindAutoActivate selects the first match when an engine reports matches
	// without an active one. Nil means enabled.
	FindAutoActivate *bool    `json:"find_auto_activate" yaml:"find_auto_activate" toml:"find_auto_activate"`
	ExternalPatterns []string `json:"external_patterns" yaml:"external_patterns" toml:"external_patterns"`
	TitleBase        string   `json:"title_base" yaml:"title_base" toml:"title_base"`
	TitleMaxTab      int      `json:"title_max_tab" yaml:"title_max_tab" toml:"title_max_tab"`

	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`

	CORSEnabled        bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`

	PlaywrightHeadful bool `json:"playwright_headful" yaml:"playwright_headful" toml:"playwright_headful"`
	PlaywrightInstall bool `json:"playwright_install" yaml:"playwright_install" toml:"playwright_install"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Defaults returns a config with every default applied.
func Defaults() Config {
	return Config{}.WithDefaults()
}

// WithDefaults fills unspecified fields.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Engine == "" {
		c.Engine = DefaultEngine
	}
	c.Engine = strings.ToLower(c.Engine)
	if c.DefaultInstanceID == "" {
		c.DefaultInstanceID = DefaultInstanceID
	}
	if c.PurgeIntervalSec == 0 {
		c.PurgeIntervalSec = DefaultPurgeIntervalSec
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	return c
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch c.Engine {
	case EngineHeadless, EnginePlaywright, EngineNone:
	default:
		return fmt.Errorf("unknown engine %q", c.Engine)
	}
	if c.PurgeIntervalSec < 0 {
		return fmt.Errorf("purge_interval_sec must be >= 0, got %d", c.PurgeIntervalSec)
	}
	if c.TitleMaxTab < 0 {
		return fmt.Errorf("title_max_tab must be >= 0, got %d", c.TitleMaxTab)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	if strings.TrimSpace(c.DefaultInstanceID) != c.DefaultInstanceID {
		return fmt.Errorf("default_instance_id must not have surrounding spaces")
	}
	return nil
}

// PurgeInterval converts PurgeIntervalSec; 0 disables periodic purging.
func (c Config) PurgeInterval() time.Duration {
	return time.Duration(c.PurgeIntervalSec) * time.Second
}

// AutoActivate reports whether the first find match is selected implicitly.
func (c Config) AutoActivate() bool {
	return c.FindAutoActivate == nil || *c.FindAutoActivate
}

// Package config holds the application configuration, loaded with viper from
// a config file and DRAGMATE_-prefixed environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger"`
	Browser     BrowserConfig     `mapstructure:"browser"`
	Interaction InteractionConfig `mapstructure:"interaction"`
}

// LoggerConfig controls the zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	ServiceName string `mapstructure:"service_name"`
	AddSource   bool   `mapstructure:"add_source"`

	// LogFile enables a rotating JSON file sink when non-empty.
	LogFile    string `mapstructure:"log_file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// BrowserConfig controls the headless browser process and its sessions.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless"`
	IgnoreTLSErrors   bool          `mapstructure:"ignore_tls_errors"`
	Args              []string      `mapstructure:"args"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"`
	PostLoadWait      time.Duration `mapstructure:"post_load_wait"`
}

// InteractionConfig carries the default selectors for an interaction group.
// The attach command's flags override them per run.
type InteractionConfig struct {
	DraggableSelector string `mapstructure:"draggable_selector"`
	TargetSelector    string `mapstructure:"target_selector"`
	ScopeSelector     string `mapstructure:"scope_selector"`
}

// SetDefaults registers every default on the viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "dragmate")
	v.SetDefault("logger.max_size_mb", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age_days", 14)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.navigation_timeout", 45*time.Second)
	v.SetDefault("browser.post_load_wait", 500*time.Millisecond)

	v.SetDefault("interaction.draggable_selector", ".draggable")
	v.SetDefault("interaction.target_selector", ".drop-target")
	v.SetDefault("interaction.scope_selector", "body")
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the rest of the program cannot work with.
func (c *Config) Validate() error {
	switch c.Logger.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	if c.Interaction.DraggableSelector == "" {
		return fmt.Errorf("interaction.draggable_selector must not be empty")
	}
	if c.Interaction.TargetSelector == "" {
		return fmt.Errorf("interaction.target_selector must not be empty")
	}
	if c.Interaction.ScopeSelector == "" {
		return fmt.Errorf("interaction.scope_selector must not be empty")
	}
	if c.Browser.NavigationTimeout < 0 || c.Browser.PostLoadWait < 0 {
		return fmt.Errorf("browser timeouts must not be negative")
	}
	return nil
}

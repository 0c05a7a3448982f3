package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server ServerConfig
	Auth   AuthConfig
	UI     UIConfig
	Log    LogConfig
}

// ServerConfig points at the dashboard server.
type ServerConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// AuthConfig holds credential persistence settings.
type AuthConfig struct {
	TokenPath string `mapstructure:"token_path"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Theme string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path  string
	Level string
}

// Load reads configuration from file and env. Env var overrides use prefix EVODASH_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("auth.token_path", filepath.Join(os.Getenv("HOME"), ".local", "share", "evodash", "token"))
	v.SetDefault("ui.theme", "dark")
	v.SetDefault("log.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "evodash", "evodash.log"))
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("EVODASH_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "evodash"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("EVODASH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed. Used by the TUI settings view for non-sensitive preferences (the
// token lives in its own file, never here).
func Save(cfg Config) error {
	path := os.Getenv("EVODASH_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "evodash", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("server.base_url", cfg.Server.BaseURL)
	v.Set("server.timeout_seconds", cfg.Server.TimeoutSeconds)
	v.Set("auth.token_path", cfg.Auth.TokenPath)
	v.Set("ui.theme", cfg.UI.Theme)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

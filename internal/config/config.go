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
	Service ServiceConfig
	Cache   CacheConfig
	UI      UIConfig
}

// ServiceConfig identifies the hosted auth/database project. Both fields
// are required; Load fails without them.
type ServiceConfig struct {
	URL     string
	AnonKey string `mapstructure:"anon_key"`
}

// CacheConfig holds local sqlite settings.
type CacheConfig struct {
	Path string
}

// UIConfig holds presentation settings.
type UIConfig struct {
	GymName    string `mapstructure:"gym_name"`
	DateFormat string `mapstructure:"date_format"`
}

// Load reads configuration from file and env. Env var overrides use prefix
// GYMDESK_ (e.g. GYMDESK_SERVICE_URL, GYMDESK_SERVICE_ANON_KEY).
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("cache.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "gymdesk", "cache.db"))
	v.SetDefault("service.url", "")
	v.SetDefault("service.anon_key", "")
	v.SetDefault("ui.gym_name", "Gymdesk")
	v.SetDefault("ui.date_format", "02/01/2006")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("GYMDESK_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "gymdesk"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("GYMDESK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Service.URL == "" {
		return Config{}, fmt.Errorf("service.url is required (config.toml or GYMDESK_SERVICE_URL)")
	}
	if c.Service.AnonKey == "" {
		return Config{}, fmt.Errorf("service.anon_key is required (config.toml or GYMDESK_SERVICE_ANON_KEY)")
	}
	return c, nil
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all server settings. Values come from config.yaml if one is
// present, overridden by NETPLAY_* environment variables, with defaults
// suitable for local development
type Config struct {
	// Addr is the host:port the HTTP server listens on
	Addr string `mapstructure:"addr"`
	// LogLevel is the minimum slog level: debug, info, warn, error
	LogLevel string `mapstructure:"log_level"`
	// AdminToken guards the admin endpoints; empty disables them
	AdminToken string `mapstructure:"admin_token"`
	// AllowedOrigins is the CORS / websocket origin allowlist; "*" allows all
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	Auth struct {
		// Secret is the shared HS256 secret tokens are verified against.
		// Empty disables token verification entirely (guest-only mode)
		Secret string `mapstructure:"secret"`
		// Audience is the expected aud claim
		Audience string `mapstructure:"audience"`
		// HandshakeTimeout bounds identity resolution before a websocket upgrade
		HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`
	} `mapstructure:"auth"`

	Rooms struct {
		// Max is the total room cap, including the default room
		Max int `mapstructure:"max"`
		// DefaultLabel is the display label of the always-present default room
		DefaultLabel string `mapstructure:"default_label"`
	} `mapstructure:"rooms"`

	Storage struct {
		// Type selects the profile store backend: memory, redis or sqlite
		Type string `mapstructure:"type"`
		// RedisURL is the connection URL when type is redis
		RedisURL string `mapstructure:"redis_url"`
		// SQLitePath is the database file when type is sqlite
		SQLitePath string `mapstructure:"sqlite_path"`
	} `mapstructure:"storage"`
}

const envVarPrefix = "NETPLAY"

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("admin_token", "")
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.audience", "authenticated")
	v.SetDefault("auth.handshake_timeout", 5*time.Second)
	v.SetDefault("rooms.max", 10)
	v.SetDefault("rooms.default_label", "Main Room")
	v.SetDefault("storage.type", "memory")
	v.SetDefault("storage.redis_url", "redis://localhost:6379")
	v.SetDefault("storage.sqlite_path", "netplay.db")
}

// Load reads configuration from config.yaml in the given paths (current
// directory if none are given). A missing config file is not an error; the
// defaults and environment complete the picture
func Load(configPaths ...string) (*Config, error) {
	v := viper.New()

	if len(configPaths) == 0 {
		configPaths = []string{"."}
	}
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)

	v.SetEnvPrefix(envVarPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Bind nested keys so e.g. rooms.max can be set via NETPLAY_ROOMS_MAX
	for _, k := range v.AllKeys() {
		envVar := envVarPrefix + "_" + strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := v.BindEnv(k, envVar); err != nil {
			return nil, fmt.Errorf("binding %s to %s: %w", k, envVar, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// Default returns the configuration that Load would produce with no config
// file and no environment overrides
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	// Guaranteed to succeed: defaults were set via typed values above
	_ = v.Unmarshal(cfg)
	return cfg
}

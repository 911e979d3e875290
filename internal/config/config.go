package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"tradefeed/internal/asset"
	"tradefeed/internal/logger"
)

var ErrInvalidConfig = errors.New("invalid config")

type Server struct {
	Port              string `mapstructure:"port"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec"`
}

type Backend struct {
	Name                  string `mapstructure:"name"`
	URL                   string `mapstructure:"url"`
	MaxRequestsPerMinute  int    `mapstructure:"max_requests_per_minute"`
	Burst                 int    `mapstructure:"burst"`
	MinRequestIntervalSec int    `mapstructure:"min_request_interval_sec"`
}

type Config struct {
	Server  Server        `mapstructure:"server"`
	Backend Backend       `mapstructure:"backend"`
	Log     logger.Config `mapstructure:"log"`
	Assets  []asset.Asset `mapstructure:"assets"`
}

// RequestTimeout is the per-request deadline for the server and CLI.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSec) * time.Second
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 10},
		Backend: Backend{
			Name:                 "Backend",
			MaxRequestsPerMinute: 60,
			Burst:                5,
		},
		Log: logger.DefaultConfig(),
	}
}

var envBindings = map[string]string{
	"server.port":                      "PORT",
	"server.request_timeout_sec":       "REQUEST_TIMEOUT_SEC",
	"backend.url":                      "BACKEND_URL",
	"backend.max_requests_per_minute":  "BACKEND_MAX_RPM",
	"backend.burst":                    "BACKEND_BURST",
	"backend.min_request_interval_sec": "BACKEND_MIN_INTERVAL_SEC",
	"log.level":                        "LOG_LEVEL",
	"log.format":                       "LOG_FORMAT",
}

// Load reads the config file at path, or config.yaml / config.json from the
// working directory when path is empty. Environment variables override file
// values. The result is validated before it is returned.
func Load(path string) (Config, error) {
	v := viper.New()
	def := Default()
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.request_timeout_sec", def.Server.RequestTimeoutSec)
	v.SetDefault("backend.name", def.Backend.Name)
	v.SetDefault("backend.max_requests_per_minute", def.Backend.MaxRequestsPerMinute)
	v.SetDefault("backend.burst", def.Backend.Burst)
	v.SetDefault("backend.min_request_interval_sec", def.Backend.MinRequestIntervalSec)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path == "" {
		for _, candidate := range []string{"config.yaml", "config.json"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.Backend.URL = strings.TrimSpace(cfg.Backend.URL)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("%w: backend.url (BACKEND_URL) is required", ErrInvalidConfig)
	}
	if len(c.Assets) == 0 {
		return fmt.Errorf("%w: at least one asset is required", ErrInvalidConfig)
	}
	if c.Server.RequestTimeoutSec <= 0 {
		return fmt.Errorf("%w: server.request_timeout_sec must be positive", ErrInvalidConfig)
	}
	if c.Backend.MaxRequestsPerMinute < 0 || c.Backend.Burst < 0 || c.Backend.MinRequestIntervalSec < 0 {
		return fmt.Errorf("%w: backend rate limits must not be negative", ErrInvalidConfig)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full server configuration, loaded from a YAML file.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Remote  RemoteConfig  `yaml:"remote"`
	Session SessionConfig `yaml:"session"`
	Collage CollageConfig `yaml:"collage"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type StorageConfig struct {
	Root     string `yaml:"root"`
	Database string `yaml:"database"`
}

// RemoteConfig configures the optional S3-compatible mirror. An empty
// Endpoint disables mirroring entirely.
type RemoteConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type SessionConfig struct {
	TimeoutMillis  int `yaml:"timeout_millis"`
	UTCOffsetHours int `yaml:"utc_offset_hours"`
}

type CollageConfig struct {
	Strategy         string `yaml:"strategy"` // "grid" or "scatter"
	Quality          int    `yaml:"quality"`
	BackfillDelaySec int    `yaml:"backfill_delay_sec"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Addr: ":8080"},
		Storage: StorageConfig{Root: "./photos", Database: "./photobooth.db"},
		Session: SessionConfig{TimeoutMillis: 10000, UTCOffsetHours: 0},
		Collage: CollageConfig{Strategy: "grid", Quality: 90, BackfillDelaySec: 15},
	}
}

// Load reads the YAML config at path, falling back to defaults for any
// omitted field. A missing file is not an error; the defaults are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Session.TimeoutMillis <= 0 {
		cfg.Session.TimeoutMillis = 10000
	}
	if cfg.Collage.Quality <= 0 || cfg.Collage.Quality > 100 {
		cfg.Collage.Quality = 90
	}
	if cfg.Collage.Strategy != "grid" && cfg.Collage.Strategy != "scatter" {
		return nil, fmt.Errorf("unknown collage strategy %q", cfg.Collage.Strategy)
	}
	return cfg, nil
}

// SessionTimeout returns the session window as a duration.
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.Session.TimeoutMillis) * time.Millisecond
}

// BackfillDelay returns how long the startup sweep waits before running.
func (c *Config) BackfillDelay() time.Duration {
	return time.Duration(c.Collage.BackfillDelaySec) * time.Second
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all process settings. Values come from an optional YAML file
// and are then overridden by environment variables, so containers can run
// without a config file at all.
type Config struct {
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Bus struct {
		CommandsChannel string `yaml:"commands_channel"`
		EventsChannel   string `yaml:"events_channel"`
	} `yaml:"bus"`

	Snapshot struct {
		Depth      int `yaml:"depth"`
		TTLSeconds int `yaml:"ttl_seconds"`
	} `yaml:"snapshot"`

	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() *Config {
	cfg := &Config{}
	cfg.Redis.Addr = "localhost:6379"
	cfg.Bus.CommandsChannel = "engine:commands"
	cfg.Bus.EventsChannel = "engine:events"
	cfg.Snapshot.Depth = 10
	cfg.Snapshot.TTLSeconds = 5
	cfg.HTTP.Addr = ":8080"
	cfg.Log.Level = "info"
	return cfg
}

// Load reads the YAML file at path (missing file is fine) and applies
// environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if cfg.Snapshot.Depth <= 0 {
		return nil, fmt.Errorf("snapshot depth must be positive, got %d", cfg.Snapshot.Depth)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		}
	}
	if v := os.Getenv("COMMANDS_CHANNEL"); v != "" {
		c.Bus.CommandsChannel = v
	}
	if v := os.Getenv("EVENTS_CHANNEL"); v != "" {
		c.Bus.EventsChannel = v
	}
	if v := os.Getenv("SNAPSHOT_DEPTH"); v != "" {
		if depth, err := strconv.Atoi(v); err == nil {
			c.Snapshot.Depth = depth
		}
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API      APIConfig      `yaml:"api"`
	Session  SessionConfig  `yaml:"session"`
	Redis    RedisConfig    `yaml:"redis"`
	Degraded DegradedConfig `yaml:"degraded"`
	Stub     StubConfig     `yaml:"stub"`
	Kafka    KafkaConfig    `yaml:"kafka"`
}

type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// SessionConfig selects where the persisted session lives. Backend is
// either "file" or "redis".
type SessionConfig struct {
	Backend string `yaml:"backend"`
	File    string `yaml:"file"`
	Key     string `yaml:"key"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// DegradedConfig is the single seam for the synthetic-fallback behavior.
// When disabled, backend failures propagate to the caller.
type DegradedConfig struct {
	Enabled bool `yaml:"enabled"`
}

type StubConfig struct {
	Address         string `yaml:"address"`
	JWTSecret       string `yaml:"jwt_secret"`
	TokenTTLMinutes int    `yaml:"token_ttl_minutes"`
}

func (s StubConfig) TokenTTL() time.Duration {
	return time.Duration(s.TokenTTLMinutes) * time.Minute
}

type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	BookingTopic string   `yaml:"booking_topic"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8080/api"
	}
	if c.API.TimeoutSeconds == 0 {
		c.API.TimeoutSeconds = 10
	}
	if c.Session.Backend == "" {
		c.Session.Backend = "file"
	}
	if c.Session.File == "" {
		c.Session.File = "session.json"
	}
	if c.Session.Key == "" {
		c.Session.Key = "aerodesk:session"
	}
	if c.Stub.Address == "" {
		c.Stub.Address = ":8080"
	}
	if c.Stub.JWTSecret == "" {
		c.Stub.JWTSecret = "dev-only-secret"
	}
	if c.Stub.TokenTTLMinutes == 0 {
		c.Stub.TokenTTLMinutes = 60
	}
}

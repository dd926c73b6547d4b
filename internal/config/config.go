package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	SessionStoreMemory = "memory"
	SessionStoreSQLite = "sqlite"
)

type Config struct {
	Server   ServerConfig
	API      APIConfig
	Session  SessionConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Kafka    KafkaConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Port     string `env:"PORT" envDefault:"8080"`
	Timezone string `env:"TIMEZONE" envDefault:"Local"`
}

// APIConfig points at the upstream REST API that owns every business rule.
type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL" envDefault:"https://localhost:7154"`
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"10s"`
}

type SessionConfig struct {
	Store        string        `env:"SESSION_STORE" envDefault:"memory"`
	SQLitePath   string        `env:"SESSION_SQLITE_PATH" envDefault:"./data/sessions.db"`
	IdleTimeout  time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	CookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"infiniteleaf_session"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
}

type SecurityConfig struct {
	// JWTSecret is optional; when empty upstream tokens are only inspected for expiry.
	JWTSecret string `env:"JWT_SECRET"`
}

type LoggingConfig struct {
	Directory string `env:"LOG_DIRECTORY" envDefault:"./logs"`
	Level     string `env:"LOG_LEVEL" envDefault:"info"`
	Format    string `env:"LOG_FORMAT" envDefault:"text"`
}

type KafkaConfig struct {
	Brokers     []string `env:"KAFKA_BROKERS" envSeparator:","`
	GroupID     string   `env:"KAFKA_GROUP_ID" envDefault:"infiniteleaf-web"`
	TopicPrefix string   `env:"KAFKA_TOPIC_PREFIX" envDefault:"infiniteleaf."`
}

type MetricsConfig struct {
	Enabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// Load reads the process environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	c.Session.Store = strings.ToLower(strings.TrimSpace(c.Session.Store))

	brokers := make([]string, 0, len(c.Kafka.Brokers))
	for _, b := range c.Kafka.Brokers {
		if trimmed := strings.TrimSpace(b); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	c.Kafka.Brokers = brokers
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty")
	}
	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreSQLite:
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.Session.Store)
	}
	if c.Session.IdleTimeout <= 0 {
		return fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves TIMEZONE; datetime form inputs are interpreted in it.
func (c *Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Server.Timezone)
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// KafkaEnabled reports whether change events should flow through kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

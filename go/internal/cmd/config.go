package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/friendlies/go/internal/notify"
)

const (
	backendMemory   = "memory"
	backendPostgres = "postgres"
	backendMongo    = "mongo"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Notify  NotifyConfig  `yaml:"notify"`
}

type ServerConfig struct {
	Port            string        `yaml:"port" env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"LOG_PRETTY"`
}

// StorageConfig picks the persistence backend. Postgres settings come from dbconfig.
type StorageConfig struct {
	Backend       string `yaml:"backend" env:"STORAGE_BACKEND"`
	MongoURI      string `yaml:"mongo_uri" env:"MONGO_URI"`
	MongoDatabase string `yaml:"mongo_database" env:"MONGO_DATABASE"`
}

type NotifyConfig struct {
	Log       bool               `yaml:"log" env:"NOTIFY_LOG"`
	Websocket WebsocketConfig    `yaml:"websocket"`
	NATS      NATSConfig         `yaml:"nats"`
	Retry     notify.RetryConfig `yaml:"retry"`
}

type WebsocketConfig struct {
	Enabled bool             `yaml:"enabled" env:"NOTIFY_WEBSOCKET"`
	Hub     notify.HubConfig `yaml:"hub"`
}

type NATSConfig struct {
	Enabled   bool                   `yaml:"enabled" env:"NOTIFY_NATS"`
	JetStream notify.JetStreamConfig `yaml:"jetstream"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     10 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
		Storage: StorageConfig{
			Backend:       backendMemory,
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "friendlies",
		},
		Notify: NotifyConfig{
			Log:       true,
			Websocket: WebsocketConfig{Enabled: true, Hub: notify.DefaultHubConfig()},
			NATS:      NATSConfig{JetStream: notify.DefaultJetStreamConfig()},
			Retry:     notify.DefaultRetryConfig(),
		},
	}
}

// loadConfig layers defaults, the YAML file at path (when present) and environment overrides
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("failed to parse env overrides: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case backendMemory, backendPostgres, backendMongo:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Notify.Retry.MaxRetries < 0 {
		return fmt.Errorf("notify retry max_retries must not be negative")
	}
	return nil
}

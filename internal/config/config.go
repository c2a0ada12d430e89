package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v9"
	"github.com/hashicorp/go-multierror"
)

const (
	DefaultServerAddress         = ":8787"
	DefaultStore                 = "redis"
	DefaultProvider              = "openai"
	DefaultMaxTokens             = 1024
	DefaultTemperature   float32 = 0.7
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig               `json:"basic_config"`
	Chat        ChatConfig                `json:"chat"`
	Providers   map[string]ProviderConfig `json:"providers"`
	Redis       RedisConfig               `json:"redis"`
	Databases   map[string]DatabaseConfig `json:"databases"`
}

type BasicConfig struct {
	ServerAddress string `json:"server_address" env:"VP_SERVER_ADDRESS"`
	// Store selects the key-value backend: redis, sqlite3, mysql or memory.
	Store    string `json:"store" env:"VP_STORE"`
	LogLevel string `json:"log_level" env:"VP_LOG_LEVEL"`
}

// ChatConfig tunes the model call made on every chat turn.
type ChatConfig struct {
	Provider    string  `json:"provider" env:"VP_PROVIDER"`
	MaxTokens   int     `json:"max_tokens" env:"VP_MAX_TOKENS"`
	Temperature float32 `json:"temperature" env:"VP_TEMPERATURE"`
	// ModelTimeoutSeconds bounds each model call; zero leaves it to the request context.
	ModelTimeoutSeconds int `json:"model_timeout_seconds" env:"VP_MODEL_TIMEOUT_SECONDS"`
	// Model and APIKey override the selected provider's entry.
	Model  string `json:"-" env:"VP_MODEL"`
	APIKey string `json:"-" env:"VP_API_KEY"`
}

type ProviderConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
}

type RedisConfig struct {
	Host     string `json:"host" env:"VP_REDIS_HOST"`
	Port     int    `json:"port" env:"VP_REDIS_PORT"`
	Username string `json:"username" env:"VP_REDIS_USERNAME"`
	Password string `json:"password" env:"VP_REDIS_PASSWORD"`
	DB       int    `json:"db" env:"VP_REDIS_DB"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	Params   string `json:"params"`
}

// Load reads configuration from the provided path (defaults to config.json),
// then applies VP_* environment overrides. A missing default file is not an
// error so the service can be configured from the environment alone.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = "config.json"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	var cfg Config
	file, err := os.Open(absPath)
	switch {
	case err == nil:
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env overrides: %w", err)
	}
	cfg.applyDefaults()

	if db, ok := cfg.Databases["sqlite3"]; ok && db.DSN != "" && !isSpecialSQLiteDSN(db.DSN) && !filepath.IsAbs(db.DSN) {
		db.DSN = filepath.Join(filepath.Dir(absPath), db.DSN)
		cfg.Databases["sqlite3"] = db
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.BasicConfig.ServerAddress == "" {
		c.BasicConfig.ServerAddress = DefaultServerAddress
	}
	c.BasicConfig.Store = strings.ToLower(strings.TrimSpace(c.BasicConfig.Store))
	if c.BasicConfig.Store == "" {
		c.BasicConfig.Store = DefaultStore
	}
	if c.BasicConfig.LogLevel == "" {
		c.BasicConfig.LogLevel = "info"
	}
	c.Chat.Provider = strings.ToLower(strings.TrimSpace(c.Chat.Provider))
	if c.Chat.Provider == "" {
		c.Chat.Provider = DefaultProvider
	}
	if c.Chat.MaxTokens == 0 {
		c.Chat.MaxTokens = DefaultMaxTokens
	}
	if c.Chat.Temperature == 0 {
		c.Chat.Temperature = DefaultTemperature
	}
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	prov := c.Providers[c.Chat.Provider]
	if c.Chat.Model != "" {
		prov.Model = c.Chat.Model
	}
	if c.Chat.APIKey != "" {
		prov.APIKey = c.Chat.APIKey
	}
	c.Providers[c.Chat.Provider] = prov
	if c.Redis.Host == "" {
		c.Redis.Host = "127.0.0.1"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	switch c.BasicConfig.Store {
	case "memory", "redis":
	case "sqlite", "sqlite3", "mysql":
		if _, ok := c.Databases[c.BasicConfig.Store]; !ok {
			result = multierror.Append(result, fmt.Errorf("database config for %s not found", c.BasicConfig.Store))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unsupported store: %s", c.BasicConfig.Store))
	}

	prov := c.Providers[c.Chat.Provider]
	if prov.Model == "" {
		result = multierror.Append(result, fmt.Errorf("provider %s: model must be configured", c.Chat.Provider))
	}
	if c.Chat.MaxTokens < 0 {
		result = multierror.Append(result, errors.New("max_tokens cannot be negative"))
	}
	if c.Chat.Temperature < 0 || c.Chat.Temperature > 2 {
		result = multierror.Append(result, fmt.Errorf("temperature %.2f out of range [0, 2]", c.Chat.Temperature))
	}
	if c.Chat.ModelTimeoutSeconds < 0 {
		result = multierror.Append(result, errors.New("model_timeout_seconds cannot be negative"))
	}

	return result.ErrorOrNil()
}

func isSpecialSQLiteDSN(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(dsn, "file:")
}

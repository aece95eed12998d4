package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	Framework FrameworkConfig
	Redis     RedisConfig
	Database  DatabaseConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port           string        `envconfig:"SERVER_PORT" default:"8000"`
	Host           string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ReadTimeout    time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout   time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"120s"`
	RequestTimeout time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"120s"`
}

type LLMConfig struct {
	Provider    string  `envconfig:"LLM_PROVIDER" default:"openai"`
	APIKey      string  `envconfig:"LLM_API_KEY"`
	APIEndpoint string  `envconfig:"LLM_ENDPOINT" default:"https://api.openai.com/v1"`
	Model       string  `envconfig:"LLM_MODEL" default:"gpt-4o-mini"`
	APIVersion  string  `envconfig:"LLM_API_VERSION" default:"2024-06-01"`
	MaxTokens   int64   `envconfig:"LLM_MAX_TOKENS" default:"4000"`
	Temperature float64 `envconfig:"LLM_TEMPERATURE" default:"0.3"`
}

type FrameworkConfig struct {
	// Backend is "file" or "redis"
	Backend string `envconfig:"FRAMEWORK_BACKEND" default:"file"`
	Path    string `envconfig:"FRAMEWORK_PATH" default:"data/framework.json"`
	// Optional YAML/JSON/TOML document replacing the built-in default
	Seed string `envconfig:"FRAMEWORK_SEED"`
}

type RedisConfig struct {
	Address  string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	Key      string `envconfig:"REDIS_KEY" default:"aop:framework"`
}

type DatabaseConfig struct {
	Path string `envconfig:"DATABASE_PATH" default:"data/aop.db"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"console"`
}

// LoadConfig reads configuration from the environment, after merging any
// .env file found in the working directory. Variables already set win.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

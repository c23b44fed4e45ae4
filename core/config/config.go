package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"instaforce.app/engine/core/db"
)

type Config struct {
	OTel     OTelConfig
	LLM      LLMConfig
	Deploy   DeployConfig
	Pipeline PipelineConfig
	Env      string
	Port     string
	DB       db.Config
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// PipelineConfig locates the Redis stream that carries run requests
// from the API server to the worker.
type PipelineConfig struct {
	RedisURL       string
	RedisStream    string
	RedisGroup     string
	RedisDLQStream string
	RedisConsumer  string
}

type LLMConfig struct {
	Provider    string // "openai" or "anthropic"
	APIKey      string
	BaseURL     string // Optional: for custom endpoints
	Model       string
	MaxTokens   int
	Temperature *float64 // nil = provider default
}

// DeployConfig drives the sf CLI. A missing executable or alias is not a
// load error; the deploy stage reports it when it runs.
type DeployConfig struct {
	Executable  string
	TargetAlias string
	WorkDir     string
	Wait        int // minutes, passed to -w
}

type ServiceType string

const (
	ServiceTypeServer ServiceType = "server"
	ServiceTypeWorker ServiceType = "worker"
	ServiceTypeCLI    ServiceType = "cli"
)

// Load loads configuration from environment variables.
// In development, it loads from service-specific .env files:
//   - .env.server for the API server
//   - .env.worker for the background worker
//   - .env.cli for the instaforce command
//
// Falls back to .env if service-specific file doesn't exist.
func Load(serviceType ServiceType) (Config, error) {
	if getEnv("INSTAFORCE_ENV", "development") == "development" {
		envFile := fmt.Sprintf(".env.%s", serviceType)
		if err := godotenv.Load(envFile); err != nil {
			_ = godotenv.Load(".env")
		}
	}

	cfg := Config{
		Env:  getEnv("INSTAFORCE_ENV", "development"),
		Port: getEnv("PORT", "8080"),
		DB: db.Config{
			DSN:      getEnv("DATABASE_URL", ""),
			MaxConns: getEnvInt32("DB_MAX_CONNS", 10),
			MinConns: getEnvInt32("DB_MIN_CONNS", 2),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "instaforce-"+string(serviceType)),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		Pipeline: PipelineConfig{
			RedisURL:       getEnv("REDIS_URL", ""),
			RedisStream:    getEnv("REDIS_STREAM", "instaforce_runs"),
			RedisGroup:     getEnv("REDIS_CONSUMER_GROUP", "instaforce_workers"),
			RedisDLQStream: getEnv("REDIS_DLQ_STREAM", "instaforce_runs_dlq"),
			RedisConsumer:  getEnv("REDIS_CONSUMER_NAME", string(serviceType)),
		},
		LLM: LLMConfig{
			Provider:    getEnv("LLM_PROVIDER", "openai"),
			APIKey:      getEnv("LLM_API_KEY", getEnv("OPENAI_API_KEY", "")),
			BaseURL:     getEnv("LLM_BASE_URL", ""),
			Model:       getEnv("LLM_MODEL", "gpt-4o"),
			MaxTokens:   getEnvInt("LLM_MAX_TOKENS", 0),
			Temperature: getEnvFloatPtr("LLM_TEMPERATURE"),
		},
		Deploy: DeployConfig{
			Executable:  getEnv("SF_EXE", "sf"),
			TargetAlias: strings.TrimSpace(getEnv("SF_USERNAME_ALIAS", "")),
			WorkDir:     getEnv("STAGING_DIR", "deploy"),
			Wait:        getEnvInt("SF_DEPLOY_WAIT", 60),
		},
	}

	if serviceType == ServiceTypeServer || serviceType == ServiceTypeWorker {
		if cfg.DB.DSN == "" {
			return Config{}, fmt.Errorf("DATABASE_URL is required")
		}
		if cfg.Pipeline.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL is required")
		}
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c LLMConfig) Enabled() bool {
	return c.APIKey != "" && (c.Provider == "openai" || c.Provider == "anthropic")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt32(key string, fallback int32) int32 {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(i)
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloatPtr(key string) *float64 {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &f
}

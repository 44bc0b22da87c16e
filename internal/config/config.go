package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DatabaseURL       string `yaml:"database_url"`
	RedisURL          string `yaml:"redis_url"`
	RabbitMQURL       string `yaml:"rabbitmq_url"`
	RabbitMQPrefetch  int    `yaml:"rabbitmq_prefetch"`
	ServerPort        string `yaml:"server_port"`
	FrontendURL       string `yaml:"frontend_url"`
	DeepSeekKey       string `yaml:"deepseek_api_key"`
	DeepSeekBaseURL   string `yaml:"deepseek_base_url"`
	AIModel           string `yaml:"ai_model"`
	SupabaseURL       string `yaml:"supabase_url"`
	SupabaseAnonKey   string `yaml:"supabase_anon_key"`
	SupabaseJWTSecret string `yaml:"supabase_jwt_secret"`
	EnableHSTS        bool   `yaml:"enable_hsts"`
	ServerDebugMode   bool   `yaml:"server_debug_mode"`
	WorkerDebugMode   bool   `yaml:"worker_debug_mode"`
	OTELEnabled       bool   `yaml:"otel_enabled"`
	OTELEndpoint      string `yaml:"otel_endpoint"`
}

// Load loads configuration from an optional YAML file (CONFIG_FILE) with
// environment variables taking precedence. DEEPSEEK_API_KEY is deliberately
// not required here: a missing key is surfaced per-request as a
// configuration error, not at startup.
func Load() (*Config, error) {
	cfg := &Config{
		RedisURL:         "redis://localhost:6379/0",
		RabbitMQPrefetch: 1,
		ServerPort:       "8080",
		FrontendURL:      "http://localhost:3000",
		DeepSeekBaseURL:  "https://api.deepseek.com",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg.DatabaseURL, "DATABASE_URL")
	applyEnv(&cfg.RedisURL, "REDIS_URL")
	applyEnv(&cfg.RabbitMQURL, "RABBITMQ_URL")
	applyEnvInt(&cfg.RabbitMQPrefetch, "RABBITMQ_PREFETCH")
	applyEnv(&cfg.ServerPort, "SERVER_PORT")
	applyEnv(&cfg.FrontendURL, "FRONTEND_URL")
	applyEnv(&cfg.DeepSeekKey, "DEEPSEEK_API_KEY")
	applyEnv(&cfg.DeepSeekBaseURL, "DEEPSEEK_BASE_URL")
	applyEnv(&cfg.AIModel, "AI_MODEL")
	applyEnv(&cfg.SupabaseURL, "SUPABASE_URL")
	applyEnv(&cfg.SupabaseAnonKey, "SUPABASE_ANON_KEY")
	applyEnv(&cfg.SupabaseJWTSecret, "SUPABASE_JWT_SECRET")
	applyEnvBool(&cfg.EnableHSTS, "ENABLE_HSTS")
	applyEnvBool(&cfg.ServerDebugMode, "SERVER_DEBUG_MODE")
	applyEnvBool(&cfg.WorkerDebugMode, "WORKER_DEBUG_MODE")
	applyEnvBool(&cfg.OTELEnabled, "OTEL_ENABLED")
	applyEnv(&cfg.OTELEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required for rate limiting")
	}

	return cfg, nil
}

func applyEnv(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func applyEnvBool(dst *bool, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value == "true" || value == "1" || value == "yes"
	}
}

func applyEnvInt(dst *int, key string) {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			*dst = intValue
		}
	}
}

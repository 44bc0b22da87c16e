package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("CONFIG_FILE", "")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error when DATABASE_URL is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/realtorgpt")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("DEEPSEEK_BASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.ServerPort)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("Expected default Redis URL, got %s", cfg.RedisURL)
	}
	if cfg.DeepSeekBaseURL != "https://api.deepseek.com" {
		t.Errorf("Expected default DeepSeek base URL, got %s", cfg.DeepSeekBaseURL)
	}
	if cfg.RabbitMQPrefetch != 1 {
		t.Errorf("Expected default prefetch 1, got %d", cfg.RabbitMQPrefetch)
	}
}

func TestLoad_MissingDeepSeekKeyIsNotFatal(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/realtorgpt")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DEEPSEEK_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DeepSeekKey != "" {
		t.Errorf("Expected empty DeepSeek key, got %q", cfg.DeepSeekKey)
	}
}

func TestLoad_ConfigFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("database_url: postgres://file/db\nserver_port: \"9090\"\nai_model: deepseek-chat\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("AI_MODEL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Env wins over file; file wins over defaults.
	if cfg.DatabaseURL != "postgres://env/db" {
		t.Errorf("Expected env DATABASE_URL to win, got %s", cfg.DatabaseURL)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("Expected file server_port 9090, got %s", cfg.ServerPort)
	}
	if cfg.AIModel != "deepseek-chat" {
		t.Errorf("Expected file ai_model, got %s", cfg.AIModel)
	}
}

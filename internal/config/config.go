package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	LogConfig     logger.LogConfig `json:"log_config"`
	Database      DatabaseConfig   `json:"database"`
	Redis         RedisConfig      `json:"redis"`
	AI            AIConfig         `json:"ai"`
	Batch         BatchConfig      `json:"batch"`
	QueryCache    QueryCacheConfig `json:"query_cache"`
	EmbedCache    EmbedCacheConfig `json:"embed_cache"`
	CORSAllowlist []string         `json:"cors_allowlist"`
	// MaxUploadBytes caps the accepted PDF size. 0 means 32MB.
	MaxUploadBytes int64 `json:"max_upload_bytes"`
	// ChatRateLimitSeconds is the per-client window on the chat route.
	ChatRateLimitSeconds int `json:"chat_rate_limit_seconds"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type RedisConfig struct {
	// Addr empty means an in-process query cache is used instead.
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type AIConfig struct {
	Provider string `json:"provider"`
	// Model drives generation, EmbedModel drives embeddings.
	Model      string `json:"model"`
	EmbedModel string `json:"embed_model"`
	// MaxConcurrent bounds simultaneous generation calls. Matched to the
	// provider's own concurrency ceiling.
	MaxConcurrent  int         `json:"max_concurrent"`
	TimeoutSeconds int         `json:"timeout_seconds"`
	Data           interface{} `json:"data"`
}

type BatchConfig struct {
	Size          int `json:"size"`
	MaxAgeSeconds int `json:"max_age_seconds"`
}

type QueryCacheConfig struct {
	TTLSeconds int `json:"ttl_seconds"`
}

type EmbedCacheConfig struct {
	Size       int `json:"size"`
	TTLMinutes int `json:"ttl_minutes"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.AI.Provider == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	if cfg.AI.Model == "" {
		return nil, fmt.Errorf("ai.model is required")
	}
	if cfg.AI.EmbedModel == "" {
		return nil, fmt.Errorf("ai.embed_model is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.AI.MaxConcurrent <= 0 {
		cfg.AI.MaxConcurrent = 5
	}
	if cfg.AI.TimeoutSeconds <= 0 {
		cfg.AI.TimeoutSeconds = 60
	}
	if cfg.Batch.Size <= 0 {
		cfg.Batch.Size = 10
	}
	if cfg.Batch.MaxAgeSeconds <= 0 {
		cfg.Batch.MaxAgeSeconds = 60
	}
	if cfg.QueryCache.TTLSeconds <= 0 {
		cfg.QueryCache.TTLSeconds = 300
	}
	if cfg.EmbedCache.Size <= 0 {
		cfg.EmbedCache.Size = 10000
	}
	if cfg.EmbedCache.TTLMinutes <= 0 {
		cfg.EmbedCache.TTLMinutes = 120
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}
	return &cfg, nil
}

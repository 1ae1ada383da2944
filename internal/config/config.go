// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	GeminiKeys         []string `yaml:"gemini_keys"`
	GeminiURL          string   `yaml:"gemini_url"`
	GeminiModel        string   `yaml:"gemini_model"`
	OpenRouterKey      string   `yaml:"openrouter_key"`
	OpenRouterURL      string   `yaml:"openrouter_url"`
	OpenRouterModel    string   `yaml:"openrouter_model"`
	MaxOutputTokens    int      `yaml:"max_output_tokens"`
	Temperature        float64  `yaml:"temperature"`
	HistoryTokenBudget int      `yaml:"history_token_budget"`
}

type ChatConfig struct {
	TypingDelayMin time.Duration `yaml:"typing_delay_min"`
	TypingDelayMax time.Duration `yaml:"typing_delay_max"`
	HistoryWindow  int           `yaml:"history_window"`
	SessionIdleTTL time.Duration `yaml:"session_idle_ttl"`
}

type MediaConfig struct {
	BaseURL     string `yaml:"base_url"`
	ServiceKey  string `yaml:"service_key"`
	ImageBucket string `yaml:"image_bucket"`
	VideoBucket string `yaml:"video_bucket"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Chat     ChatConfig     `yaml:"chat"`
	Media    MediaConfig    `yaml:"media"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.AI.GeminiModel == "" {
		cfg.AI.GeminiModel = "gemini-2.0-flash"
	}
	if cfg.AI.OpenRouterURL == "" {
		cfg.AI.OpenRouterURL = "https://openrouter.ai/api/v1"
	}
	if cfg.AI.OpenRouterModel == "" {
		cfg.AI.OpenRouterModel = "minimax/minimax-m2:free"
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 150
	}
	if cfg.AI.Temperature <= 0 {
		cfg.AI.Temperature = 0.9
	}
	if cfg.AI.HistoryTokenBudget <= 0 {
		cfg.AI.HistoryTokenBudget = 512
	}
	if cfg.Chat.TypingDelayMin <= 0 {
		cfg.Chat.TypingDelayMin = time.Second
	}
	if cfg.Chat.TypingDelayMax <= 0 {
		cfg.Chat.TypingDelayMax = 3 * time.Second
	}
	if cfg.Chat.HistoryWindow <= 0 {
		cfg.Chat.HistoryWindow = 10
	}
	if cfg.Chat.SessionIdleTTL <= 0 {
		cfg.Chat.SessionIdleTTL = 30 * time.Minute
	}
	if cfg.Media.ImageBucket == "" {
		cfg.Media.ImageBucket = "chat-images"
	}
	if cfg.Media.VideoBucket == "" {
		cfg.Media.VideoBucket = "chat-videos"
	}

	// Minimal validation. Dev mode runs without any backing services.
	if !dev {
		if cfg.Database.URL == "" {
			return nil, errors.New("database.url is required")
		}
		if len(cfg.AI.GeminiKeys) == 0 && cfg.AI.OpenRouterKey == "" {
			return nil, errors.New("at least one of ai.gemini_keys or ai.openrouter_key is required")
		}
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

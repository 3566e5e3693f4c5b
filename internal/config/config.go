package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port string `env:"STYLIST_PORT" envDefault:"3000"`

	// Storage
	MongoURI        string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase   string `env:"STYLIST_MONGO_DB" envDefault:"fashion_ai"`
	MongoCollection string `env:"STYLIST_MONGO_COLLECTION" envDefault:"conversations"`
	FallbackDir     string `env:"STYLIST_FALLBACK_DIR" envDefault:"./conversations"`

	// LLM
	GeminiAPIKey    string  `env:"GEMINI_API_KEY"`
	ModelName       string  `env:"STYLIST_MODEL_NAME" envDefault:"gemini-2.0-flash"`
	Temperature     float64 `env:"STYLIST_TEMPERATURE" envDefault:"0.4"`
	TopP            float64 `env:"STYLIST_TOP_P" envDefault:"1"`
	TopK            int     `env:"STYLIST_TOP_K" envDefault:"32"`
	MaxOutputTokens int     `env:"STYLIST_MAX_OUTPUT_TOKENS" envDefault:"4096"`
	StreamReplies   bool    `env:"STYLIST_STREAM_REPLIES" envDefault:"false"`
	UseMockLLM      bool    `env:"STYLIST_USE_MOCK_LLM" envDefault:"false"`

	// Conversation
	// HistoryWindow limits how many exchanges are submitted to the model
	// (persona seed always included). 0 means the full transcript.
	HistoryWindow int `env:"STYLIST_HISTORY_WINDOW" envDefault:"0"`

	// Uploads
	MaxImageBytes int64 `env:"STYLIST_MAX_IMAGE_BYTES" envDefault:"5242880"`

	// HTTP
	AllowedOrigins []string `env:"STYLIST_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://127.0.0.1:5500,http://localhost:3000,http://127.0.0.1:5501"`
	StaticDir      string   `env:"STYLIST_STATIC_DIR"`
	RequestTimeout int      `env:"STYLIST_REQUEST_TIMEOUT_SECONDS" envDefault:"120"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if !cfg.UseMockLLM && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY must be set unless STYLIST_USE_MOCK_LLM is enabled")
	}

	return cfg, nil
}

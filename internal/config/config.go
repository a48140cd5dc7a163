// Package config provides environment configuration for the API server.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	UploadMaxBytes     int64

	// MongoDB settings
	MongoURL            string
	DatabaseName        string
	MongoConnectTimeout time.Duration

	// LLM settings
	LLMProvider       string
	GroqAPIKey        string
	GroqModel         string
	GroqBaseURL       string
	OpenAIAPIKey      string
	OpenAIModel       string
	AnthropicAPIKey   string
	AnthropicModel    string
	LLMTemperature    float64
	LLMMaxTokens      int
	CompletionTimeout time.Duration

	// NATS settings
	NATSURL   string
	NATSToken string

	// Logging
	LogLevel  string
	LogFormat string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Completion describes the selected completion provider.
type Completion struct {
	Provider  string
	APIKey    string
	KeyEnvVar string
	Model     string
	BaseURL   string
}

// Load reads an optional .env file and then configuration from environment
// variables. A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return FromEnv(), nil
}

// FromEnv reads configuration from environment variables only.
func FromEnv() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8000"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
		UploadMaxBytes:     int64(getIntEnv("UPLOAD_MAX_BYTES", 10<<20)),

		// MongoDB
		MongoURL:            getEnv("MONGODB_URL", "mongodb://localhost:27017"),
		DatabaseName:        getEnv("DATABASE_NAME", "ai_conversations"),
		MongoConnectTimeout: getDurationEnv("MONGODB_CONNECT_TIMEOUT", 10*time.Second),

		// LLM
		LLMProvider:       strings.ToLower(getEnv("LLM_PROVIDER", "groq")),
		GroqAPIKey:        getEnv("GROQ_API_KEY", ""),
		GroqModel:         getEnv("GROQ_MODEL", "gemma2-9b-it"),
		GroqBaseURL:       getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AnthropicAPIKey:   getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:    getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-20241022"),
		LLMTemperature:    getFloatEnv("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:      getIntEnv("LLM_MAX_TOKENS", 2048),
		CompletionTimeout: getDurationEnv("COMPLETION_TIMEOUT", 0),

		// NATS
		NATSURL:   getEnv("NATS_URL", ""),
		NATSToken: getEnv("NATS_TOKEN", ""),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

// Completion returns the settings of the configured provider. Unknown
// provider names fall back to groq.
func (c *Config) Completion() Completion {
	switch c.LLMProvider {
	case "openai":
		return Completion{Provider: "openai", APIKey: c.OpenAIAPIKey, KeyEnvVar: "OPENAI_API_KEY", Model: c.OpenAIModel}
	case "anthropic":
		return Completion{Provider: "anthropic", APIKey: c.AnthropicAPIKey, KeyEnvVar: "ANTHROPIC_API_KEY", Model: c.AnthropicModel}
	default:
		return Completion{Provider: "groq", APIKey: c.GroqAPIKey, KeyEnvVar: "GROQ_API_KEY", Model: c.GroqModel, BaseURL: c.GroqBaseURL}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

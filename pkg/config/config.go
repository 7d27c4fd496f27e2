package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Server
	Port        string
	AppName     string
	FrontendURL string
	LogLevel    string

	// Snyk
	SnykBaseURL        string
	SnykAPIToken       string
	SnykOrgID          string
	SnykGroupID        string
	SnykAPIVersion     string
	SnykHTTPTimeout    time.Duration
	SnykRateLimitRPS   float64
	SnykRateLimitBurst int

	// Cache
	CacheMaxRecords int // 0 = unbounded

	// Ollama chat endpoint (empty URL = AI disabled)
	OllamaChatURL   string
	OllamaChatModel string
	OllamaChatToken string // Bearer token for Ollama Cloud (empty = local)

	// MCP
	MCPEnabled bool
	MCPPort    string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:        envOrDefault("PORT", "3001"),
		AppName:     envOrDefault("APP_NAME", "Snyk Audit Dashboard"),
		FrontendURL: envOrDefault("FRONTEND_URL", "http://localhost:3000"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),

		SnykBaseURL:        envOrDefault("SNYK_BASE_URL", "https://api.snyk.io/rest"),
		SnykAPIToken:       os.Getenv("SNYK_API_TOKEN"),
		SnykOrgID:          os.Getenv("SNYK_ORG_ID"),
		SnykGroupID:        os.Getenv("SNYK_GROUP_ID"),
		SnykAPIVersion:     envOrDefault("SNYK_API_VERSION", "2024-10-15"),
		SnykHTTPTimeout:    envOrDefaultDuration("SNYK_HTTP_TIMEOUT", 30*time.Second),
		SnykRateLimitRPS:   envOrDefaultFloat("SNYK_RATE_LIMIT_RPS", 20),
		SnykRateLimitBurst: envOrDefaultInt("SNYK_RATE_LIMIT_BURST", 5),

		CacheMaxRecords: envOrDefaultInt("CACHE_MAX_RECORDS", 0),

		OllamaChatURL:   os.Getenv("OLLAMA_CHAT_URL"),
		OllamaChatModel: envOrDefault("OLLAMA_CHAT_MODEL", "qwen3"),
		OllamaChatToken: os.Getenv("OLLAMA_CHAT_TOKEN"),

		MCPEnabled: envOrDefaultBool("MCP_ENABLED", false),
		MCPPort:    envOrDefault("MCP_PORT", "3002"),
	}
}

// AIEnabled reports whether a chat endpoint is configured.
func (c *Config) AIEnabled() bool {
	return c.OllamaChatURL != ""
}

// SlogLevel maps LogLevel onto a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func envOrDefaultBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return fallback
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port     string
	LogLevel string

	// Gemini
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	ModelTimeout  time.Duration

	// Extraction behaviour
	StructuredOutput bool
	StrictFields     bool

	// HTTP
	MaxRequestBytes  int64
	CORSAllowOrigins []string
}

func Load() (*Config, error) {
	// Best effort, for local development.
	loadEnvFiles(".env")

	timeout, err := time.ParseDuration(getEnv("MODEL_TIMEOUT", "60s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("MODEL_TIMEOUT must be a positive duration, got %q", os.Getenv("MODEL_TIMEOUT"))
	}

	maxBytes, err := strconv.ParseInt(getEnv("MAX_REQUEST_BYTES", "10485760"), 10, 64)
	if err != nil || maxBytes <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BYTES must be a positive integer, got %q", os.Getenv("MAX_REQUEST_BYTES"))
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:    strings.TrimRight(getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"), "/"),
		ModelTimeout:     timeout,
		StructuredOutput: getBool("STRUCTURED_OUTPUT", true),
		StrictFields:     getBool("STRICT_FIELDS", false),
		MaxRequestBytes:  maxBytes,
		CORSAllowOrigins: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

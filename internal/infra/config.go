package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv              string
	Port                string
	GeminiAPIKey        string
	GeminiModel         string
	GeminiBaseURL       string
	GeminiAPIVersion    string
	OutputDir           string
	UploadDir           string
	IndexPath           string
	MaxUploadBytes      int64
	CORSAllowedOrigins  []string
	HTTPReadTimeout     time.Duration
	HTTPWriteTimeout    time.Duration
	HTTPIdleTimeout     time.Duration
	HTTPShutdownTimeout time.Duration
}

const (
	DefaultPort           = "3000"
	DefaultGeminiModel    = "gemini-2.5-flash-image"
	DefaultMaxUploadBytes = 50 << 20
)

// LoadConfig loads configuration from environment variables and applies defaults where needed.
// GEMINI_API_KEY is deliberately not checked here; a missing key surfaces on
// the first generation call.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", DefaultPort),
		GeminiAPIKey:        strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:         getEnv("GEMINI_MODEL", DefaultGeminiModel),
		GeminiBaseURL:       os.Getenv("GEMINI_BASE_URL"),
		GeminiAPIVersion:    os.Getenv("GEMINI_API_VERSION"),
		OutputDir:           getEnv("OUTPUT_DIR", "."),
		UploadDir:           getEnv("UPLOAD_DIR", "uploads"),
		IndexPath:           getEnv("INDEX_PATH", "index.html"),
		MaxUploadBytes:      int64(getEnvInt("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),
		CORSAllowedOrigins:  splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 60)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 120)),
		HTTPShutdownTimeout: time.Second * time.Duration(getEnvInt("HTTP_SHUTDOWN_TIMEOUT_SECONDS", 10)),
	}

	if p, err := strconv.Atoi(cfg.Port); err != nil || p <= 0 || p > 65535 {
		return nil, fmt.Errorf("PORT must be a valid TCP port, got %q", cfg.Port)
	}

	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

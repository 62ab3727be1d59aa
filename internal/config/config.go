package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Upstream translation engine
	EngineURL    string
	EngineAPIKey string
	EngineRPS    float64
	EngineBurst  int

	// Session gate (optional; static allow when unset)
	AuthURL    string
	AuthAPIKey string

	// Auth for our own API
	APIKey string

	// Chunking
	ChunkLimit   int
	MaxTextChars int

	// Scheduling and retry
	Concurrency    int
	MaxAttempts    int
	BackoffBase    time.Duration
	BackoffMax     time.Duration
	RequestTimeout time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL        time.Duration
	SweepInterval time.Duration
	QueueCapacity int

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8085"),

		EngineURL:    envOr("ENGINE_URL", "http://localhost:8080"),
		EngineAPIKey: os.Getenv("ENGINE_API_KEY"),
		EngineRPS:    envFloat("ENGINE_RPS", 10),
		EngineBurst:  envInt("ENGINE_BURST", 5),

		AuthURL:    os.Getenv("AUTH_URL"),
		AuthAPIKey: os.Getenv("AUTH_API_KEY"),

		APIKey: os.Getenv("API_KEY"),

		ChunkLimit:   envInt("CHUNK_LIMIT", 2000),
		MaxTextChars: envInt("MAX_TEXT_CHARS", 1000000),

		Concurrency:    envInt("TRANSLATE_CONCURRENCY", 3),
		MaxAttempts:    envInt("MAX_ATTEMPTS", 3),
		BackoffBase:    envDuration("BACKOFF_BASE", 1*time.Second),
		BackoffMax:     envDuration("BACKOFF_MAX", 16*time.Second),
		RequestTimeout: envDuration("REQUEST_TIMEOUT", 30*time.Second),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL:        envDuration("JOB_TTL", 24*time.Hour),
		SweepInterval: envDuration("SWEEP_INTERVAL", 10*time.Minute),
		QueueCapacity: envInt("QUEUE_CAPACITY", 100),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.EngineRPS <= 0 {
		cfg.EngineRPS = 10
	}
	if cfg.EngineBurst <= 0 {
		cfg.EngineBurst = 5
	}
	if cfg.ChunkLimit <= 0 {
		cfg.ChunkLimit = 2000
	}
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = 1000000
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 3
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = 1 * time.Second
	}
	if cfg.BackoffMax < cfg.BackoffBase {
		cfg.BackoffMax = 16 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 24 * time.Hour
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 10 * time.Minute
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 100
	}

	return cfg
}

func (c Config) Validate() error {
	if c.EngineAPIKey == "" {
		return fmt.Errorf("ENGINE_API_KEY is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required")
	}
	if c.AuthURL != "" && c.AuthAPIKey == "" {
		return fmt.Errorf("AUTH_API_KEY is required when AUTH_URL is set")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

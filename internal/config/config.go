package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all runtime configuration. It is built once in main and
// passed down explicitly; packages never read the environment themselves.
type Config struct {
	// Model settings
	GeminiModel string

	// Extraction pacing and retry policy
	PageDelay        time.Duration
	RetryBaseDelay   time.Duration
	RetryMaxAttempts int

	// Currency normalization
	FXBaseURL       string
	DefaultCurrency string

	// Filer identity used for invoice classification
	FilerCompany string
	FilerTRN     string

	// HTTP API
	Port string

	// Document storage
	GCSBucket string

	// Ledger sink (optional; disabled when project is empty)
	BigQueryProject string
	BigQueryDataset string

	// Job persistence (optional; in-memory store when empty)
	JobStorePath string
}

// Load reads configuration from the environment, loading a local .env
// file first when present.
func Load(log zerolog.Logger) *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		PageDelay:        getDuration("PAGE_DELAY", 10*time.Second),
		RetryBaseDelay:   getDuration("RETRY_BASE_DELAY", 15*time.Second),
		RetryMaxAttempts: getInt("RETRY_MAX_ATTEMPTS", 7),
		FXBaseURL:        getEnv("FX_BASE_URL", "https://open.er-api.com/v6"),
		DefaultCurrency:  getEnv("DEFAULT_CURRENCY", "AED"),
		FilerCompany:     getEnv("FILER_COMPANY", ""),
		FilerTRN:         getEnv("FILER_TRN", ""),
		Port:             getEnv("PORT", "8080"),
		GCSBucket:        getEnv("GCS_BUCKET", ""),
		BigQueryProject:  getEnv("BIGQUERY_PROJECT", ""),
		BigQueryDataset:  getEnv("BIGQUERY_DATASET", "ledger"),
		JobStorePath:     getEnv("JOB_STORE_PATH", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

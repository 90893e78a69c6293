package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Invoice  InvoiceConfig
	Vision   VisionConfig
	OCR      OCRConfig
	Match    MatchConfig
}

// DatabaseConfig holds the optional analysis-history database configuration.
// An empty DSN disables persistence entirely.
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// InvoiceConfig holds the tier-1 structured-invoice backend configuration.
// An empty APIKey means the tier is not configured and the cascade skips it.
type InvoiceConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// VisionConfig holds the tier-2/tier-3 language-model backend configuration.
type VisionConfig struct {
	Provider    string // "openai" | "gemini"
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	DPI           int
	Timeout       time.Duration
}

// MatchConfig carries the price-matching and classification heuristics.
// These constants are empirically tuned; keep them adjustable via env.
type MatchConfig struct {
	AcceptThreshold   float64 // minimum fuzzy score to accept a match
	HighConfidence    float64 // same-category score that stops the search early
	CategoryBoost     float64 // bonus applied when categories coincide
	SuspiciousRatio   float64 // overcharge/ceiling ratio beyond which an item is suspicious
	MaxPlausiblePrice float64 // sanitizer ceiling for non-medical-looking items
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Invoice: InvoiceConfig{
			BaseURL: getEnv("INVOICE_API_URL", ""),
			APIKey:  getEnv("INVOICE_API_KEY", ""),
			Timeout: getEnvAsDuration("INVOICE_TIMEOUT", 30*time.Second),
		},
		Vision: VisionConfig{
			Provider:    getEnv("VISION_PROVIDER", "openai"),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			APIKey:      getEnv("VISION_API_KEY", os.Getenv("OPENAI_API_KEY")),
			Model:       getEnv("VISION_MODEL", "gpt-4o-mini"),
			Temperature: getEnvAsFloat32("VISION_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("VISION_TIMEOUT", 45*time.Second),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			Timeout:       getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
		},
		Match: MatchConfig{
			AcceptThreshold:   getEnvAsFloat64("MATCH_ACCEPT_THRESHOLD", 0.4),
			HighConfidence:    getEnvAsFloat64("MATCH_HIGH_CONFIDENCE", 0.7),
			CategoryBoost:     getEnvAsFloat64("MATCH_CATEGORY_BOOST", 0.1),
			SuspiciousRatio:   getEnvAsFloat64("SUSPICIOUS_RATIO", 1.0),
			MaxPlausiblePrice: getEnvAsFloat64("SANITIZE_MAX_PRICE", 100000),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the parts of the configuration that have no safe default.
func (c *Config) Validate() error {
	if c.Match.AcceptThreshold <= 0 || c.Match.AcceptThreshold >= 1 {
		return NewAppError("CONFIG_ERROR", "MATCH_ACCEPT_THRESHOLD must be in (0,1)", ErrInvalidInput)
	}
	if c.Match.HighConfidence < c.Match.AcceptThreshold {
		return NewAppError("CONFIG_ERROR", "MATCH_HIGH_CONFIDENCE must be >= MATCH_ACCEPT_THRESHOLD", ErrInvalidInput)
	}
	if c.Vision.Provider != "openai" && c.Vision.Provider != "gemini" {
		return NewAppError("CONFIG_ERROR", "VISION_PROVIDER must be openai or gemini", ErrInvalidInput)
	}
	return nil
}

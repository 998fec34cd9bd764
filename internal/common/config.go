package common

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Oracle OracleConfig
	OCR    OCRConfig
	Schema string // "full" | "basic"
}

// OracleConfig holds extraction-oracle (LLM) configuration
type OracleConfig struct {
	Provider    string // "gemini" | "openai"
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	DPI           int
	MaxPages      int
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is applied first if present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	provider := getEnv("ORACLE_PROVIDER", "gemini")
	apiKeyEnv := "GOOGLE_API_KEY"
	defaultModel := "gemini-1.5-flash-latest"
	if provider == "openai" {
		apiKeyEnv = "OPENAI_API_KEY"
		defaultModel = "gpt-4o-mini"
	}

	return &Config{
		Oracle: OracleConfig{
			Provider:    provider,
			Model:       getEnv("ORACLE_MODEL", defaultModel),
			APIKey:      getEnv(apiKeyEnv, ""),
			BaseURL:     getEnv("ORACLE_BASE_URL", ""),
			Temperature: getEnvAsFloat32("ORACLE_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("ORACLE_TIMEOUT", 45*time.Second),
		},
		OCR: OCRConfig{
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		Schema: getEnv("INVOICE_SCHEMA", "full"),
	}
}

// Validate validates the loaded configuration. When offline is true the
// oracle is never called, so a missing API key is fine.
func (c *Config) Validate(offline bool) error {
	if !offline && c.Oracle.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "oracle API key is required (GOOGLE_API_KEY or OPENAI_API_KEY)", ErrInvalidInput)
	}
	if c.Oracle.Provider != "gemini" && c.Oracle.Provider != "openai" {
		return NewAppError("CONFIG_ERROR", "ORACLE_PROVIDER must be gemini or openai", ErrInvalidInput)
	}
	return nil
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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

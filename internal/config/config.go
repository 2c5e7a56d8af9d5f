package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	// PresignExpiry bounds the lifetime of download URLs.
	PresignExpiry time.Duration
}

// RedisConfig configures the per-file processing lock.
// An empty URL selects the in-process lock.
type RedisConfig struct {
	URL     string
	LockTTL time.Duration
}

// RasterConfig selects and configures the PDF rendering backend.
type RasterConfig struct {
	Backend     string // "poppler" or "mupdf"
	PopplerPath string // directory holding pdftoppm; empty means $PATH
	DPI         int
}

// OCRConfig configures the Tesseract engine.
type OCRConfig struct {
	Languages      []string
	TessdataPrefix string
}

// LLMConfig configures the OpenAI-compatible chat completion endpoint.
type LLMConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Timezone string
	// TempDir receives working copies of PDFs during validation and processing; empty means os.TempDir.
	TempDir  string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Redis    RedisConfig
	Raster   RasterConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Log      LogConfig
}

const (
	RasterBackendPoppler = "poppler"
	RasterBackendMuPDF   = "mupdf"
)

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
		TempDir:  getEnv("RECEIPT_TEMP_DIR", ""),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:      getEnv("MINIO_ENDPOINT", ""),
			AccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:     getEnv("MINIO_SECRET_KEY", ""),
			Bucket:        getEnv("MINIO_BUCKET", ""),
			UseSSL:        getEnvBool("MINIO_USE_SSL", false),
			PresignExpiry: getEnvDuration("MINIO_PRESIGN_EXPIRY", 15*time.Minute),
		},
		Redis: RedisConfig{
			URL:     getEnv("REDIS_URL", ""),
			LockTTL: getEnvDuration("PROCESS_LOCK_TTL", 10*time.Minute),
		},
		Raster: RasterConfig{
			Backend:     strings.ToLower(getEnv("RASTER_BACKEND", RasterBackendPoppler)),
			PopplerPath: getEnv("POPPLER_PATH", ""),
			DPI:         getEnvInt("RASTER_DPI", 300),
		},
		OCR: OCRConfig{
			Languages:      getEnvList("TESSERACT_LANGUAGES", []string{"eng"}),
			TessdataPrefix: getEnv("TESSDATA_PREFIX", ""),
		},
		LLM: LLMConfig{
			APIKey:     getEnv("OPENAI_API_KEY", ""),
			BaseURL:    getEnv("OPENAI_URL", ""),
			Model:      getEnv("MODEL_ID", "gpt-4o-mini"),
			MaxRetries: getEnvInt("LLM_MAX_RETRIES", 0),
			Timeout:    getEnvDuration("LLM_TIMEOUT", 60*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// Validate checks the settings the extraction pipeline cannot run without.
func (c *AppConfig) Validate() error {
	if c.LLM.APIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("LLM_MAX_RETRIES must not be negative, got %d", c.LLM.MaxRetries)
	}
	switch c.Raster.Backend {
	case RasterBackendPoppler, RasterBackendMuPDF:
	default:
		return fmt.Errorf("unsupported RASTER_BACKEND %q", c.Raster.Backend)
	}
	if c.MinIO.PresignExpiry <= 0 || c.MinIO.PresignExpiry > 7*24*time.Hour {
		return fmt.Errorf("MINIO_PRESIGN_EXPIRY must be between 1s and 7 days, got %s", c.MinIO.PresignExpiry)
	}
	if c.Raster.DPI <= 0 {
		return fmt.Errorf("RASTER_DPI must be positive, got %d", c.Raster.DPI)
	}
	return nil
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

// getEnvList splits a comma or plus separated list ("eng+deu", "eng,deu").
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '+' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

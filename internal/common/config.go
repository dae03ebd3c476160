package common

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Extractor ExtractorConfig
	LLM       LLMConfig
	Storage   StorageConfig
	Queue     QueueConfig
	AMQP      AMQPConfig
	Log       LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
	AutoMigrate      bool
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	GRPCAddr        string
	ShutdownTimeout time.Duration
}

// ExtractorConfig holds text-extraction configuration
type ExtractorConfig struct {
	Pdftotext     string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	Timeout       time.Duration
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Provider          string // openai | gemini
	Model             string
	APIKey            string
	BaseURL           string
	Temperature       float32
	Timeout           time.Duration
	RetryAttempts     int
	RetryBaseDelay    time.Duration
	RequestsPerSecond float64
	Burst             int
	FirstLines        int
	LastLines         int
	MaxChars          int
	Lenient           bool
}

// StorageConfig holds blob fetch configuration
type StorageConfig struct {
	HTTPTimeout        time.Duration
	MaxBytes           int64
	S3Region           string
	S3Endpoint         string
	S3AccessKey        string
	S3SecretKey        string
	GCSCredentialsFile string
}

// QueueConfig sizes the in-process parse queue
type QueueConfig struct {
	Workers        int
	Size           int
	ProcessTimeout time.Duration
}

// AMQPConfig enables the parse-request bus when URL is set
type AMQPConfig struct {
	URL      string
	Exchange string
	Queue    string
}

// LogConfig controls the process logger
type LogConfig struct {
	Level   string
	Format  string
	Compact bool
}

// LoadConfig loads configuration from environment variables, reading a .env
// file first when one is present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, NewAppError("CONFIG_ERROR", "failed to read .env", err)
	}
	provider := strings.ToLower(getEnv("LLM_PROVIDER", "openai"))
	defaultModel := "gpt-5-mini"
	if provider == "gemini" {
		defaultModel = "gemini-2.5-flash"
	}
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
			AutoMigrate:      getEnvAsBool("DB_AUTO_MIGRATE", true),
		},
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
			GRPCAddr:        getEnv("GRPC_ADDR", ":8081"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Extractor: ExtractorConfig{
			Pdftotext:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "spa+eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			Timeout:       getEnvAsDuration("EXTRACT_TIMEOUT", 60*time.Second),
		},
		LLM: LLMConfig{
			Provider:          provider,
			Model:             getEnv("LLM_MODEL", defaultModel),
			APIKey:            getEnv("LLM_API_KEY", getEnv("OPENAI_API_KEY", "")),
			BaseURL:           getEnv("OPENAI_BASE_URL", ""),
			Temperature:       getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			Timeout:           getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			RetryAttempts:     getEnvAsInt("LLM_RETRY_ATTEMPTS", 3),
			RetryBaseDelay:    getEnvAsDuration("LLM_RETRY_BASE_DELAY", 500*time.Millisecond),
			RequestsPerSecond: getEnvAsFloat("LLM_REQUESTS_PER_SECOND", 2),
			Burst:             getEnvAsInt("LLM_BURST", 4),
			FirstLines:        getEnvAsInt("LLM_FIRST_LINES", 60),
			LastLines:         getEnvAsInt("LLM_LAST_LINES", 40),
			MaxChars:          getEnvAsInt("LLM_MAX_CHARS", 8000),
			Lenient:           getEnvAsBool("LLM_LENIENT", true),
		},
		Storage: StorageConfig{
			HTTPTimeout:        getEnvAsDuration("FETCH_TIMEOUT", 30*time.Second),
			MaxBytes:           int64(getEnvAsInt("FETCH_MAX_BYTES", 25<<20)),
			S3Region:           getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:         getEnv("S3_ENDPOINT", ""),
			S3AccessKey:        getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey:        getEnv("S3_SECRET_KEY", ""),
			GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		},
		Queue: QueueConfig{
			Workers:        getEnvAsInt("QUEUE_WORKERS", 4),
			Size:           getEnvAsInt("QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("QUEUE_PROCESS_TIMEOUT", 3*time.Minute),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "bills"),
			Queue:    getEnv("AMQP_QUEUE", "bills.parse"),
		},
		Log: LogConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Format:  getEnv("LOG_FORMAT", "text"),
			Compact: getEnvAsBool("LOG_COMPACT", false),
		},
	}, nil
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("DB_URL", c.Database.DSN, Required).
		Field("LLM_PROVIDER", c.LLM.Provider, OneOf("openai", "gemini")).
		Field("LLM_MODEL", c.LLM.Model, Required).
		Field("LLM_RETRY_ATTEMPTS", c.LLM.RetryAttempts, Positive).
		Field("LLM_RETRY_BASE_DELAY", c.LLM.RetryBaseDelay, Positive).
		Field("LLM_MAX_CHARS", c.LLM.MaxChars, Positive).
		Field("QUEUE_WORKERS", c.Queue.Workers, Positive).
		Field("HTTP_ADDR", c.Server.HTTPAddr, Required).
		Field("LOG_FORMAT", c.Log.Format, OneOf("text", "json"))
	// Gemini may authenticate through GOOGLE_API_KEY or ADC instead.
	if c.LLM.Provider == "openai" {
		v.Field("LLM_API_KEY", c.LLM.APIKey, Required)
	}
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}

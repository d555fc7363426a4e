package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload" // Loads .env into the environment if present.
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NewRelic  NewRelicConfig
	PayHere   PayHereConfig
	SMS       SMSConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// PayHereConfig holds payment gateway configuration.
type PayHereConfig struct {
	MerchantID     string
	MerchantSecret string
	Sandbox        bool
	NotifyURL      string
	Currency       string
	NodeID         int64
	StickyTerminal bool
}

// SMSConfig holds QuickSend SMS gateway configuration.
type SMSConfig struct {
	BaseURL    string
	UserEmail  string
	APIKey     string
	SenderID   string
	Timeout    time.Duration
	RatePerSec float64
	Workers    int
	QueueSize  int
}

// Enabled reports whether SMS credentials are configured.
func (c SMSConfig) Enabled() bool {
	return c.UserEmail != "" && c.APIKey != ""
}

// StorageConfig holds receipt upload configuration.
type StorageConfig struct {
	Region   string
	Bucket   string
	MaxBytes int64
}

// RateLimitConfig holds limits for the status polling endpoint.
type RateLimitConfig struct {
	StatusRPS   float64
	StatusBurst int
}

// CORSConfig holds allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "fees"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "fee-portal"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		PayHere: PayHereConfig{
			MerchantID:     getEnv("MERCHANT_ID", ""),
			MerchantSecret: getEnv("MERCHANT_SECRET", ""),
			Sandbox:        getEnv("PAYHERE_MODE", "sandbox") == "sandbox",
			NotifyURL:      getEnv("PAYHERE_NOTIFY_URL", ""),
			Currency:       getEnv("PAYHERE_CURRENCY", "LKR"),
			NodeID:         int64(getIntEnv("PAYHERE_NODE_ID", 1)),
			StickyTerminal: getBoolEnv("PAYHERE_STICKY_TERMINAL", true),
		},
		SMS: SMSConfig{
			BaseURL:    getEnv("SMS_BASE_URL", "https://quicksend.lk/Client/api.php"),
			UserEmail:  getEnv("SMS_USER_EMAIL", ""),
			APIKey:     getEnv("SMS_API_KEY", ""),
			SenderID:   getEnv("SMS_SENDER_ID", "QKSendDemo"),
			Timeout:    getDurationEnv("SMS_TIMEOUT", 10*time.Second),
			RatePerSec: getPositiveFloatEnv("SMS_RATE_PER_SEC", 5),
			Workers:    getIntEnv("SMS_WORKERS", 2),
			QueueSize:  getIntEnv("SMS_QUEUE_SIZE", 256),
		},
		Storage: StorageConfig{
			Region:   getEnv("AWS_REGION", "us-east-1"),
			Bucket:   getEnv("AWS_S3_BUCKET", ""),
			MaxBytes: int64(getIntEnv("UPLOAD_MAX_BYTES", 10<<20)),
		},
		RateLimit: RateLimitConfig{
			StatusRPS:   getPositiveFloatEnv("STATUS_RATE_RPS", 20),
			StatusBurst: getIntEnv("STATUS_RATE_BURST", 40),
		},
		CORS: CORSConfig{
			AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
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
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getPositiveFloatEnv is getFloatEnv for rates, where zero or less would stall
// every caller.
func getPositiveFloatEnv(key string, defaultValue float64) float64 {
	if v := getFloatEnv(key, defaultValue); v > 0 {
		return v
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated value, dropping empty entries.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

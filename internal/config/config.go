package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Storage backends understood by StorageConfig.Backend.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendMinIO    = "minio"
	BackendPostgres = "postgres"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int // 0 lets OpenSlotDB pick the slot default
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StorageConfig selects where the portfolio slot is persisted.
type StorageConfig struct {
	Backend string
	// Key is the single fixed slot name the portfolio is stored under.
	Key string
	// Dir is the directory used by the file backend.
	Dir string
}

// UploadConfig holds limits applied by the presentation layer and the state manager.
type UploadConfig struct {
	TimeoutSec     int
	BodyLimitMB    int
	ProjectSoftCap int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost       string
	Port          string
	Timezone      string
	NotifyHistory int
	PreviewTitle  string
	Storage       StorageConfig
	Upload        UploadConfig
	Database      DatabaseConfig
	MinIO         MinIOConfig
	Redis         RedisConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:       getEnv("APP_HOST", "localhost:8080"),
		Port:          getEnv("PORT", "8080"),
		Timezone:      getEnv("APP_TIMEZONE", "UTC"),
		NotifyHistory: getEnvInt("NOTIFY_HISTORY", 50),
		PreviewTitle:  getEnv("PREVIEW_TITLE", "Portfolio"),
		Storage: StorageConfig{
			Backend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendFile)),
			Key:     getEnv("STORAGE_KEY", "portfolio_files"),
			Dir:     getEnv("STORAGE_DIR", "data"),
		},
		Upload: UploadConfig{
			TimeoutSec:     getEnvInt("UPLOAD_TIMEOUT_SEC", 60),
			BodyLimitMB:    getEnvInt("UPLOAD_BODY_LIMIT_MB", 64),
			ProjectSoftCap: getEnvInt("PROJECT_SOFT_CAP", 10),
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 0),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 0),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			Prefix:    getEnv("MINIO_PREFIX", "portfolio/"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// UploadTimeout is the bound on a single encode step; zero disables it.
func (c *AppConfig) UploadTimeout() time.Duration {
	if c.Upload.TimeoutSec <= 0 {
		return 0
	}
	return time.Duration(c.Upload.TimeoutSec) * time.Second
}

// BodyLimit is the maximum accepted request body in bytes.
func (c *AppConfig) BodyLimit() int {
	return c.Upload.BodyLimitMB * 1024 * 1024
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

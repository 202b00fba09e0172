package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=erp port=5432 sslmode=disable"

type Config struct {
	HTTPPort       string
	AppEnv         string // production | development
	DatabaseDSN    string
	StorageDriver  string // postgres | memory
	JWTSecret      string
	CORSOrigins    string
	RequestTimeout time.Duration

	PhotoDriver      string // fs | s3
	PhotoPath        string // fs root
	PhotoS3Bucket    string
	PhotoS3Region    string
	PhotoS3Endpoint  string // MinIO and other S3 compatibles
	PhotoS3PathStyle bool

	RedisAddr      string // idempotency is off when empty
	RedisPassword  string
	IdempotencyTTL time.Duration

	// Warnings lists insecure defaults; main logs them once the logger exists.
	Warnings []string
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		AppEnv:          getEnv("APP_ENV", "development"),
		DatabaseDSN:     getEnv("DATABASE_DSN", defaultDSN),
		StorageDriver:   strings.ToLower(getEnv("STORAGE_DRIVER", "postgres")),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		CORSOrigins:     getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		PhotoDriver:     strings.ToLower(getEnv("PHOTO_DRIVER", "fs")),
		PhotoPath:       getEnv("PHOTO_PATH", "./photos"),
		PhotoS3Bucket:   getEnv("PHOTO_S3_BUCKET", ""),
		PhotoS3Region:   getEnv("PHOTO_S3_REGION", "us-east-1"),
		PhotoS3Endpoint: getEnv("PHOTO_S3_ENDPOINT", ""),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
	}

	var err error
	if cfg.PhotoS3PathStyle, err = getBool("PHOTO_S3_PATH_STYLE", false); err != nil {
		return nil, err
	}
	if cfg.IdempotencyTTL, err = getDuration("IDEMPOTENCY_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET must be at least 32 characters")
	}
	switch cfg.StorageDriver {
	case "postgres", "memory":
	default:
		return nil, fmt.Errorf("STORAGE_DRIVER %q: want postgres or memory", cfg.StorageDriver)
	}
	switch cfg.PhotoDriver {
	case "fs":
	case "s3":
		if cfg.PhotoS3Bucket == "" {
			return nil, errors.New("PHOTO_S3_BUCKET is required when PHOTO_DRIVER=s3")
		}
	default:
		return nil, fmt.Errorf("PHOTO_DRIVER %q: want fs or s3", cfg.PhotoDriver)
	}

	if cfg.StorageDriver == "postgres" && cfg.DatabaseDSN == defaultDSN {
		cfg.Warnings = append(cfg.Warnings, "DATABASE_DSN uses the default value, set your own Postgres connection for production")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		cfg.Warnings = append(cfg.Warnings, "CORS_ALLOWED_ORIGINS uses the default value, set your own domain for production")
	}
	if cfg.StorageDriver == "memory" && cfg.IsProduction() {
		cfg.Warnings = append(cfg.Warnings, "STORAGE_DRIVER=memory in production, data is lost on restart")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

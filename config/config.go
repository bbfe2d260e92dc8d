package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	JWTSecret     string
	AllowedOrigin string
	// Catalog API (upstream)
	CatalogAPIURL     string
	CatalogAPITimeout time.Duration
	CatalogAPIRPS     float64
	CatalogAPIBurst   int
	// Draft Store (optional; empty DB_DSN keeps drafts in memory)
	DBUrl             string
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration
	SessionTTL        time.Duration
	// R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2AccessKeySecret string
	R2BucketName      string
	R2PublicURL       string
	// Upload Configuration
	MaxUploadSizeMB   int64
	R2UploadTimeout   time.Duration
	UploadConcurrency int
}

func LoadConfig() *Config {
	// CONFIG_FILE wins; otherwise .env is optional since containers rely on real env vars.
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it, relying on system env vars")
	}

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		JWTSecret:     getEnv("JWT_SECRET", "default_secret_CHANGE_ME"),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),

		CatalogAPIURL:     getEnv("CATALOG_API_URL", ""),
		CatalogAPITimeout: getDurationEnv("CATALOG_API_TIMEOUT", 15*time.Second),
		CatalogAPIRPS:     getFloatEnv("CATALOG_API_RPS", 20),
		CatalogAPIBurst:   getIntEnv("CATALOG_API_BURST", 40),

		DBUrl:             getEnv("DB_DSN", ""),
		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 10),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 2),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", time.Minute*15),
		SessionTTL:        getDurationEnv("SESSION_TTL", 12*time.Hour),

		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2AccessKeySecret: getEnv("R2_ACCESS_KEY_SECRET", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),

		// Upload defaults: 25MB max (videos), 60s timeout, 4 files in flight
		MaxUploadSizeMB:   getInt64Env("MAX_UPLOAD_SIZE_MB", 25),
		R2UploadTimeout:   getDurationEnv("R2_UPLOAD_TIMEOUT", 60*time.Second),
		UploadConcurrency: getIntEnv("UPLOAD_CONCURRENCY", 4),
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("CRITICAL: %v", err)
	}
	if cfg.JWTSecret == "default_secret_CHANGE_ME" {
		log.Println("WARNING: Using default JWT secret. Setting up for failure in production.")
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.CatalogAPIURL == "" {
		return fmt.Errorf("CATALOG_API_URL environment variable is required")
	}
	if c.R2BucketName == "" || c.R2PublicURL == "" {
		return fmt.Errorf("R2_BUCKET_NAME and R2_PUBLIC_URL are required for media uploads")
	}
	if c.UploadConcurrency < 1 {
		return fmt.Errorf("UPLOAD_CONCURRENCY must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getInt64Env(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
		log.Printf("Invalid int64 for %s, using fallback", key)
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid float for %s, using fallback", key)
	}
	return fallback
}

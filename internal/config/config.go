package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"omegavideos/internal/logging"
)

// Storage drivers
const (
	StorageDriverLocal = "local"
	StorageDriverR2    = "r2"
)

// Fan-out modes
const (
	FanoutModeSync   = "sync"
	FanoutModeStream = "stream"
)

// ErrMissingJWTSecret is returned when JWT_SECRET is not configured.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	ServerPort string

	JWTSecret         string
	AccessTokenMaxAge int
	CookieSecure      bool

	StorageDriver         string
	LocalStorageRoot      string
	LocalStoragePublicURL string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string

	DefaultAvatarURL string

	FanoutMode  string
	RedisURL    string
	WorkerCount int

	// TrendingCacheTTL in seconds; 0 disables the trending cache.
	TrendingCacheTTL int

	LogLevel  string
	LogFormat string

	CORSAllowedOrigins []string
	RateLimitPerMinute int
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		logging.Info().Msg("No .env file found or error loading it, relying on environment variables")
	}

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSLMODE", "require"),

		ServerPort: getEnv("SERVER_PORT", "8080"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AccessTokenMaxAge: getEnvInt("ACCESS_TOKEN_MAX_AGE", 604800),
		CookieSecure:      getEnvBool("COOKIE_SECURE", false),

		StorageDriver:         strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverLocal)),
		LocalStorageRoot:      getEnv("LOCAL_STORAGE_ROOT", "./uploads"),
		LocalStoragePublicURL: getEnv("LOCAL_STORAGE_PUBLIC_URL", "/uploads"),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),

		DefaultAvatarURL: os.Getenv("DEFAULT_AVATAR_URL"),

		FanoutMode:  strings.ToLower(getEnv("FANOUT_MODE", FanoutModeSync)),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		WorkerCount: getEnvInt("WORKER_COUNT", 2),

		TrendingCacheTTL: getEnvInt("TRENDING_CACHE_TTL", 0),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	return cfg, nil
}

// RedisRequired reports whether any component needs Redis.
func (c *Config) RedisRequired() bool {
	return c.FanoutMode == FanoutModeStream || c.TrendingCacheTTL > 0
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// getEnvInt falls back on missing, malformed or non-positive values.
func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

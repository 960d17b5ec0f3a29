package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	devJWTSecret = "dev-only-insecure-secret"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in production")

type Config struct {
	AppEnv  string
	APIPort string

	JWTKey          []byte
	AdminTokenTTL   time.Duration
	CreatorTokenTTL time.Duration
	CookieSecure    bool

	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSslMode     string
	DBConnStr     string
	DBAutoMigrate bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RatingLocation *time.Location
	RatingLockTTL  time.Duration
	IPHashSalt     string

	PublicRateLimitRPS   int
	PublicRateLimitBurst int

	NotifyQueueName   string
	NotifyWebhookURL  string
	NotifyMaxAttempts int
}

// Load reads .env (if present) and the process environment once. The result is
// meant to be built in main and handed to constructors explicitly.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, relying on environment variables")
	}

	cfg := &Config{
		AppEnv:          strings.ToLower(getEnv("APP_ENV", EnvDevelopment)),
		APIPort:         getEnv("API_PORT", "8080"),
		AdminTokenTTL:   getEnvAsDuration("ADMIN_TOKEN_TTL", 7*24*time.Hour),
		CreatorTokenTTL: getEnvAsDuration("CREATOR_TOKEN_TTL", 30*24*time.Hour),
		CookieSecure:    getEnvAsBool("COOKIE_SECURE", false),

		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "showcase"),
		DBPassword:    getEnv("DB_PASSWORD", "password"),
		DBName:        getEnv("DB_NAME", "showcase"),
		DBSslMode:     getEnv("DB_SSLMODE", "disable"),
		DBAutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", true),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		RatingLockTTL: getEnvAsDuration("RATING_LOCK_TTL", 5*time.Second),
		IPHashSalt:    getEnv("IP_HASH_SALT", ""),

		PublicRateLimitRPS:   getEnvAsInt("PUBLIC_RATE_LIMIT_RPS", 2),
		PublicRateLimitBurst: getEnvAsInt("PUBLIC_RATE_LIMIT_BURST", 10),

		NotifyQueueName:   getEnv("NOTIFY_QUEUE_NAME", "contact_notifications"),
		NotifyWebhookURL:  getEnv("NOTIFY_WEBHOOK_URL", ""),
		NotifyMaxAttempts: getEnvAsInt("NOTIFY_MAX_ATTEMPTS", 3),
	}

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		if cfg.IsProduction() {
			return nil, ErrMissingJWTSecret
		}
		slog.Warn("JWT_SECRET not set, using development secret")
		secret = devJWTSecret
	}
	cfg.JWTKey = []byte(secret)

	loc, err := time.LoadLocation(getEnv("RATING_TIMEZONE", "UTC"))
	if err != nil {
		return nil, err
	}
	cfg.RatingLocation = loc

	if url := getEnv("DATABASE_URL", ""); url != "" {
		cfg.DBConnStr = url
	} else {
		cfg.DBConnStr = "host=" + cfg.DBHost +
			" port=" + cfg.DBPort +
			" user=" + cfg.DBUser +
			" password=" + cfg.DBPassword +
			" dbname=" + cfg.DBName +
			" sslmode=" + cfg.DBSslMode
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return fallback
}

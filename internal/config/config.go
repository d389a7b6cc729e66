package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"family-recipes-go/pkg/logger"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required outside development")

const developmentJWTSecret = "dev-only-insecure-secret"

type Config struct {
	Env            string
	HTTP           HTTPConfig
	DB             DBConfig
	Auth           AuthConfig
	FrontendURL    string
	Redis          RedisConfig
	Photos         PhotosConfig
	MetricsEnabled bool
}

type HTTPConfig struct {
	Port           string
	AllowedOrigins []string
	RequestTimeout time.Duration
}

type DBConfig struct {
	DSN             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	TimeZone        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

type RedisConfig struct {
	URL                string
	LoginLimit         int
	LoginWindow        time.Duration
	RecipeCreateLimit  int
	RecipeCreateWindow time.Duration
}

type PhotosConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
	PresignTTL    time.Duration
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func Load(log logger.Logger) (Config, error) {
	if err := loadDotEnv(log); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Env: getEnv("ENV", "development"),
		HTTP: HTTPConfig{
			Port:           getEnv("HTTP_PORT", "8080"),
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
			RequestTimeout: getEnvDuration("HTTP_REQUEST_TIMEOUT", 30*time.Second),
		},
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "family_recipes"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			TokenTTL:   getEnvDuration("JWT_TTL", 7*24*time.Hour),
			BcryptCost: getEnvInt("BCRYPT_COST", 10),
		},
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:8080"), "/"),
		Redis: RedisConfig{
			URL:                getEnv("REDIS_URL", ""),
			LoginLimit:         getEnvInt("RATE_LIMIT_LOGIN", 10),
			LoginWindow:        getEnvDuration("RATE_LIMIT_LOGIN_WINDOW", 15*time.Minute),
			RecipeCreateLimit:  getEnvInt("RATE_LIMIT_RECIPE_CREATE", 60),
			RecipeCreateWindow: getEnvDuration("RATE_LIMIT_RECIPE_CREATE_WINDOW", time.Hour),
		},
		Photos: PhotosConfig{
			Bucket:        getEnv("PHOTOS_BUCKET", ""),
			Region:        getEnv("PHOTOS_REGION", "us-east-1"),
			Endpoint:      getEnv("PHOTOS_ENDPOINT", ""),
			PublicBaseURL: strings.TrimRight(getEnv("PHOTOS_PUBLIC_BASE_URL", ""), "/"),
			PresignTTL:    getEnvDuration("PHOTOS_PRESIGN_TTL", 15*time.Minute),
		},
		MetricsEnabled: getEnvBool("METRICS_ENABLED", true),
	}

	if cfg.Auth.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return Config{}, ErrMissingJWTSecret
		}
		log.Warn("config: JWT_SECRET not set, using development secret")
		cfg.Auth.JWTSecret = developmentJWTSecret
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return fallback
	}
	return items
}

func (c DBConfig) GetDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.TimeZone
}

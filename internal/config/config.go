package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"family-directory-go/pkg/logger"
)

type Config struct {
	HTTPPort       string
	Env            string
	AllowedOrigins []string
	DB             DBConfig
	Session        SessionConfig
	Media          MediaConfig
	Seed           SeedConfig
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

type SessionConfig struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// MediaConfig configures the optional object storage used for media
// uploads. Upload URLs are disabled when Endpoint is empty.
type MediaConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
	UseSSL        bool
	PresignTTL    time.Duration
}

// SeedConfig bootstraps an initial admin account so the very first
// invite can be issued. Skipped when AdminUsername is empty.
type SeedConfig struct {
	AdminUsername string
	AdminPassword string
	InviteEmail   string
}

func Load(log logger.Logger) (Config, error) {
	if err := loadDotEnv(log); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	return Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		DB: DBConfig{
			DSN:             getEnv("DB_DSN", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "family_directory"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			TimeZone:        getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Session: SessionConfig{
			CookieName: getEnv("SESSION_COOKIE_NAME", "family_directory_session"),
			TTL:        getEnvDuration("SESSION_TTL", 7*24*time.Hour),
			Secure:     getEnvBool("SESSION_COOKIE_SECURE", false),
		},
		Media: MediaConfig{
			Endpoint:      getEnv("MEDIA_S3_ENDPOINT", ""),
			AccessKey:     getEnv("MEDIA_S3_ACCESS_KEY", ""),
			SecretKey:     getEnv("MEDIA_S3_SECRET_KEY", ""),
			Bucket:        getEnv("MEDIA_S3_BUCKET", "family-media"),
			PublicBaseURL: getEnv("MEDIA_PUBLIC_BASE_URL", ""),
			UseSSL:        getEnvBool("MEDIA_S3_USE_SSL", true),
			PresignTTL:    getEnvDuration("MEDIA_UPLOAD_URL_TTL", 15*time.Minute),
		},
		Seed: SeedConfig{
			AdminUsername: getEnv("SEED_ADMIN_USERNAME", ""),
			AdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
			InviteEmail:   getEnv("SEED_INVITE_EMAIL", ""),
		},
	}, nil
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
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			result = append(result, item)
		}
	}
	if len(result) == 0 {
		return fallback
	}
	return result
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

// Enabled reports whether object storage is configured.
func (c MediaConfig) Enabled() bool {
	return c.Endpoint != ""
}

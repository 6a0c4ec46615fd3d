package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Uploads  UploadConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// DatabaseConfig holds postgres configuration
type DatabaseConfig struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	ConnectTimeout     time.Duration
	SlowQueryThreshold time.Duration
	MigrationsPath     string
}

// RedisConfig holds cache configuration. Redis is optional;
// when URL is empty the in-memory cache is used.
type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret  string
	JWTExpiry  time.Duration
	BCryptCost int
	// How long an authenticated user's role/status may be served
	// from cache before being re-read from the database.
	IdentityCacheTTL time.Duration
}

// UploadConfig holds local file upload configuration
type UploadConfig struct {
	Dir          string
	MaxSizeBytes int64
	PublicPath   string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment, with .env as a
// development convenience.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("ENVIRONMENT", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     env,
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CORSOrigins:     getSliceEnv("CORS_ORIGINS", []string{"http://localhost:5173"}),
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime:    getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime:    getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			ConnectTimeout:     getDurationEnv("DB_CONNECT_TIMEOUT", 30*time.Second),
			SlowQueryThreshold: getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 200*time.Millisecond),
			MigrationsPath:     getEnv("DB_MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:        getEnv("JWT_SECRET", ""),
			JWTExpiry:        getDurationEnv("JWT_EXPIRY", 7*24*time.Hour),
			BCryptCost:       getIntEnv("BCRYPT_COST", 12),
			IdentityCacheTTL: getDurationEnv("AUTH_IDENTITY_CACHE_TTL", 30*time.Second),
		},
		Uploads: UploadConfig{
			Dir:          getEnv("UPLOAD_DIR", "uploads"),
			MaxSizeBytes: int64(getIntEnv("UPLOAD_MAX_SIZE_BYTES", 5*1024*1024)),
			PublicPath:   getEnv("UPLOAD_PUBLIC_PATH", "/uploads"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", defaultLogLevel(env)),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	if c.Auth.BCryptCost < 10 || c.Auth.BCryptCost > 15 {
		return fmt.Errorf("BCRYPT_COST must be between 10 and 15, got %d", c.Auth.BCryptCost)
	}
	if c.Uploads.MaxSizeBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_SIZE_BYTES must be positive")
	}
	return nil
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// Addr returns the listen address for the HTTP server
func (s *ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

func defaultLogLevel(env string) string {
	if env == "production" {
		return "info"
	}
	return "debug"
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

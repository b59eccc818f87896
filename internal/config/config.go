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

const (
	defaultAccessSecret  = "dev-access-secret"
	defaultRefreshSecret = "dev-refresh-secret"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Media     MediaConfig
	Events    EventsConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	BodyLimitBytes        int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values. URL wins over Addr when both are set.
type RedisConfig struct {
	URL      string
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	AccessSecret          string
	RefreshSecret         string
	AccessTokenTTLMinutes int
	RefreshTokenTTLDays   int
	BcryptCost            int
}

// CacheConfig controls the Redis response cache.
type CacheConfig struct {
	Enabled    bool
	Prefix     string
	TTLSeconds int
}

// RateLimitConfig controls the token bucket on auth routes.
type RateLimitConfig struct {
	Enabled  bool
	Capacity int
	// RefillPerSecond tokens are added to each bucket every second.
	RefillPerSecond float64
}

// MediaConfig selects and configures the product image store.
type MediaConfig struct {
	Driver         string
	MaxUploadBytes int64

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
	S3UsePathStyle  bool
}

// EventsConfig configures outbound event forwarding.
type EventsConfig struct {
	RabbitMQURL string
	Exchange    string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	refill, err := strconv.ParseFloat(getEnv("RATE_LIMIT_REFILL_PER_SECOND", "0.2"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REFILL_PER_SECOND: %w", err)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = os.Getenv("POSTGRES_DSN")
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "cijene-api"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BodyLimitBytes:        getEnvAsInt("HTTP_BODY_LIMIT_BYTES", 6*1024*1024),
		},
		Postgres: PostgresConfig{
			DSN:            dsn,
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			AccessSecret:          getEnv("JWT_SECRET_KEY", defaultAccessSecret),
			RefreshSecret:         getEnv("JWT_REFRESH_SECRET_KEY", defaultRefreshSecret),
			AccessTokenTTLMinutes: getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRE_MINUTES", 30),
			RefreshTokenTTLDays:   getEnvAsInt("JWT_REFRESH_TOKEN_EXPIRE_DAYS", 30),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Cache: CacheConfig{
			Enabled:    getEnvAsBool("USE_CACHE", true),
			Prefix:     getEnv("CACHE_PREFIX", "cijene-me:"),
			TTLSeconds: getEnvAsInt("CACHE_TTL_SECONDS", 3600),
		},
		RateLimit: RateLimitConfig{
			Enabled:         getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Capacity:        getEnvAsInt("RATE_LIMIT_CAPACITY", 10),
			RefillPerSecond: refill,
		},
		Media: MediaConfig{
			Driver:              strings.ToLower(getEnv("MEDIA_DRIVER", "")),
			MaxUploadBytes:      int64(getEnvAsInt("MEDIA_MAX_UPLOAD_BYTES", 5*1024*1024)),
			CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
			CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
			CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
			CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "products"),
			S3Bucket:            os.Getenv("S3_BUCKET"),
			S3Region:            getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:          os.Getenv("S3_ENDPOINT"),
			S3AccessKey:         os.Getenv("S3_ACCESS_KEY"),
			S3SecretKey:         os.Getenv("S3_SECRET_KEY"),
			S3PublicBaseURL:     os.Getenv("S3_PUBLIC_BASE_URL"),
			S3UsePathStyle:      getEnvAsBool("S3_USE_PATH_STYLE", false),
		},
		Events: EventsConfig{
			RabbitMQURL: os.Getenv("RABBITMQ_URL"),
			Exchange:    getEnv("RABBITMQ_EXCHANGE", "cijene.events"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.AccessTokenTTLMinutes <= 0 {
		return errors.New("JWT_ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.Auth.RefreshTokenTTLDays <= 0 {
		return errors.New("JWT_REFRESH_TOKEN_EXPIRE_DAYS must be positive")
	}
	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		return errors.New("JWT_SECRET_KEY and JWT_REFRESH_SECRET_KEY must differ")
	}
	if c.App.Env == "production" &&
		(c.Auth.AccessSecret == defaultAccessSecret || c.Auth.RefreshSecret == defaultRefreshSecret) {
		return errors.New("default JWT secrets are not allowed in production")
	}
	switch c.Media.Driver {
	case "", "cloudinary", "s3":
	default:
		return fmt.Errorf("unknown MEDIA_DRIVER %q", c.Media.Driver)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

func (a AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

func (a AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshTokenTTLDays) * 24 * time.Hour
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

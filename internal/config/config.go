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

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Gemini   GeminiConfig
	Sweep    SweepConfig
	Upload   UploadConfig
	Result   ResultConfig
	Kafka    KafkaConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	PublicBaseURL         string
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

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines the shared secrets guarding operational endpoints.
type AuthConfig struct {
	CronSecret           string
	AdminJWTSecret       string
	AdminTokenTTLMinutes int
	AdminUsername        string
	AdminPasswordHash    string
	BcryptCost           int
}

// StorageConfig points at the Supabase object store.
type StorageConfig struct {
	SupabaseURL        string
	SupabaseServiceKey string
	Bucket             string
}

// GeminiConfig configures the hosted generative models.
type GeminiConfig struct {
	APIKey             string
	ImageModel         string
	TextModel          string
	MaxAttempts        int
	RetryDelaySeconds  int
	CallTimeoutSeconds int
}

// SweepConfig tunes the queue drain. BatchSize trades throughput against the
// wall-clock budget of a single scheduled invocation.
type SweepConfig struct {
	BatchSize         int
	Concurrency       int
	StaleAfterMinutes int
	LockTTLSeconds    int
	IntervalSeconds   int
}

// UploadConfig bounds accepted portraits.
type UploadConfig struct {
	MaxBytes     int
	TargetBytes  int
	MaxDimension int
}

// ResultConfig controls how generated images are stored.
type ResultConfig struct {
	Format  string
	Quality int
}

// KafkaConfig enables forwarding lifecycle events.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	batchSize := getEnvAsInt("SWEEP_BATCH_SIZE", 5)
	if batchSize <= 0 {
		return nil, fmt.Errorf("invalid SWEEP_BATCH_SIZE: %d", batchSize)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "hairstyle-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			PublicBaseURL:         strings.TrimRight(getEnv("APP_PUBLIC_BASE_URL", ""), "/"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			BodyLimitBytes:        getEnvAsInt("HTTP_BODY_LIMIT_BYTES", 16*1024*1024),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			CronSecret:           os.Getenv("CRON_SECRET"),
			AdminJWTSecret:       os.Getenv("ADMIN_JWT_SECRET"),
			AdminTokenTTLMinutes: getEnvAsInt("ADMIN_TOKEN_TTL_MINUTES", 60),
			AdminUsername:        getEnv("ADMIN_USERNAME", "admin"),
			AdminPasswordHash:    os.Getenv("ADMIN_PASSWORD_HASH"),
			BcryptCost:           getEnvAsInt("BCRYPT_COST", 12),
		},
		Storage: StorageConfig{
			SupabaseURL:        strings.TrimRight(os.Getenv("SUPABASE_URL"), "/"),
			SupabaseServiceKey: os.Getenv("SUPABASE_SERVICE_KEY"),
			Bucket:             getEnv("SUPABASE_BUCKET", "images"),
		},
		Gemini: GeminiConfig{
			APIKey:             os.Getenv("GEMINI_API_KEY"),
			ImageModel:         getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
			TextModel:          getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
			MaxAttempts:        getEnvAsInt("GEMINI_MAX_ATTEMPTS", 3),
			RetryDelaySeconds:  getEnvAsInt("GEMINI_RETRY_DELAY_SECONDS", 2),
			CallTimeoutSeconds: getEnvAsInt("GEMINI_CALL_TIMEOUT_SECONDS", 0),
		},
		Sweep: SweepConfig{
			BatchSize:         batchSize,
			Concurrency:       getEnvAsInt("SWEEP_CONCURRENCY", batchSize),
			StaleAfterMinutes: getEnvAsInt("SWEEP_STALE_AFTER_MINUTES", 15),
			LockTTLSeconds:    getEnvAsInt("SWEEP_LOCK_TTL_SECONDS", 300),
			IntervalSeconds:   getEnvAsInt("SWEEP_INTERVAL_SECONDS", 0),
		},
		Upload: UploadConfig{
			MaxBytes:     getEnvAsInt("UPLOAD_MAX_BYTES", 10*1024*1024),
			TargetBytes:  getEnvAsInt("UPLOAD_TARGET_BYTES", 1024*1024),
			MaxDimension: getEnvAsInt("UPLOAD_MAX_DIMENSION", 2048),
		},
		Result: ResultConfig{
			Format:  strings.ToLower(getEnv("RESULT_FORMAT", "webp")),
			Quality: getEnvAsInt("RESULT_QUALITY", 90),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_TOPIC", "hairstyle_suggestions"),
		},
	}

	return cfg, nil
}

// Validate checks the secrets the API process cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.CronSecret == "" {
		errs = append(errs, errors.New("CRON_SECRET is required"))
	}
	if c.Storage.SupabaseURL == "" {
		errs = append(errs, errors.New("SUPABASE_URL is required"))
	}
	if c.Storage.SupabaseServiceKey == "" {
		errs = append(errs, errors.New("SUPABASE_SERVICE_KEY is required"))
	}
	if c.Gemini.APIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is required"))
	}
	if c.Result.Format != "webp" && c.Result.Format != "png" {
		errs = append(errs, fmt.Errorf("unsupported RESULT_FORMAT %q", c.Result.Format))
	}
	return errors.Join(errs...)
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

// AdminTokenTTL returns how long minted admin tokens stay valid.
func (a AuthConfig) AdminTokenTTL() time.Duration {
	return time.Duration(a.AdminTokenTTLMinutes) * time.Minute
}

// RetryDelay returns the pause between rate-limited attempts.
func (g GeminiConfig) RetryDelay() time.Duration {
	return time.Duration(g.RetryDelaySeconds) * time.Second
}

// CallTimeout returns the per-call deadline, zero meaning none.
func (g GeminiConfig) CallTimeout() time.Duration {
	if g.CallTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(g.CallTimeoutSeconds) * time.Second
}

// StaleAfter returns how long a row may stay GENERATING before it is failed.
func (s SweepConfig) StaleAfter() time.Duration {
	if s.StaleAfterMinutes <= 0 {
		return 0
	}
	return time.Duration(s.StaleAfterMinutes) * time.Minute
}

// LockTTL returns the expiry of the sweep lock.
func (s SweepConfig) LockTTL() time.Duration {
	return time.Duration(s.LockTTLSeconds) * time.Second
}

// Interval returns the in-process sweep period, zero meaning disabled.
func (s SweepConfig) Interval() time.Duration {
	if s.IntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(s.IntervalSeconds) * time.Second
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

func getEnvAsList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

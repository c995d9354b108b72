package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Chat         ChatConfig
	Session      SessionConfig
	Taxonomy     TaxonomyConfig
	Routing      RoutingConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
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

// ChatConfig tunes the conversation engine.
type ChatConfig struct {
	AssistantName             string
	SearchConfidenceThreshold float64
	FallbackURL               string
	FallbackTimeoutSeconds    int
	ApproverName              string
}

// SessionConfig controls the conversation session store.
type SessionConfig struct {
	TTLMinutes           int
	EvictionIntervalSecs int
}

// TaxonomyConfig locates the issue catalog.
type TaxonomyConfig struct {
	Path  string
	Watch bool
}

// RoutingConfig tunes the ticket routing engine.
type RoutingConfig struct {
	DefaultSLAHours      int
	SLASweepIntervalSecs int
}

// NotificationConfig holds stub notification endpoints.
type NotificationConfig struct {
	EmailFrom  string
	WebhookURL string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	threshold, err := strconv.ParseFloat(getEnv("CHAT_SEARCH_CONFIDENCE_THRESHOLD", "0.35"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CHAT_SEARCH_CONFIDENCE_THRESHOLD: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "support-desk"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Chat: ChatConfig{
			AssistantName:             getEnv("CHAT_ASSISTANT_NAME", "Eve"),
			SearchConfidenceThreshold: threshold,
			FallbackURL:               getEnv("CHAT_FALLBACK_URL", ""),
			FallbackTimeoutSeconds:    getEnvAsInt("CHAT_FALLBACK_TIMEOUT_SECONDS", 10),
			ApproverName:              getEnv("CHAT_APPROVER_NAME", "Maheshwar"),
		},
		Session: SessionConfig{
			TTLMinutes:           getEnvAsInt("SESSION_TTL_MINUTES", 60),
			EvictionIntervalSecs: getEnvAsInt("SESSION_EVICTION_INTERVAL_SECONDS", 300),
		},
		Taxonomy: TaxonomyConfig{
			Path:  getEnv("TAXONOMY_PATH", "data/taxonomy.json"),
			Watch: getEnvAsBool("TAXONOMY_WATCH", true),
		},
		Routing: RoutingConfig{
			DefaultSLAHours:      getEnvAsInt("ROUTING_DEFAULT_SLA_HOURS", 24),
			SLASweepIntervalSecs: getEnvAsInt("ROUTING_SLA_SWEEP_INTERVAL_SECONDS", 300),
		},
		Notification: NotificationConfig{
			EmailFrom:  getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
		},
	}

	return cfg, nil
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

// TTL returns the session time-to-live duration.
func (s SessionConfig) TTL() time.Duration {
	if s.TTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.TTLMinutes) * time.Minute
}

// EvictionInterval returns how often expired sessions are swept.
func (s SessionConfig) EvictionInterval() time.Duration {
	if s.EvictionIntervalSecs <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(s.EvictionIntervalSecs) * time.Second
}

// FallbackTimeout bounds calls to the fallback responder.
func (c ChatConfig) FallbackTimeout() time.Duration {
	if c.FallbackTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.FallbackTimeoutSeconds) * time.Second
}

// SLASweepInterval returns how often the breach sweeper runs.
func (r RoutingConfig) SLASweepInterval() time.Duration {
	if r.SLASweepIntervalSecs <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(r.SLASweepIntervalSecs) * time.Second
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

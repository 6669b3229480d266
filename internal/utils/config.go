package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const DefaultBackendBaseURL = "https://debate-bot-vh9a.onrender.com"

type Config struct {
	ServerPort string
	Backend    BackendConfig
	Session    SessionConfig
	Logging    LoggingConfig
	DevBackend DevBackendConfig
}

type BackendConfig struct {
	BaseURL string
	// Timeout bounds each outbound call. Zero leaves calls unbounded.
	Timeout time.Duration
}

type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

type LoggingConfig struct {
	Level        string
	Encoding     string
	Development  bool
	EnableCaller bool
	ServiceName  string
}

type DevBackendConfig struct {
	Port     string
	Store    string
	Postgres PostgresConfig
	Mongo    MongoConfig
}

type PostgresConfig struct {
	DSN               string
	Host              string
	Port              int
	User              string
	Password          string
	Database          string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	ConnectTimeout    time.Duration
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

func LoadConfig() (*Config, error) {
	pgPort, _ := strconv.Atoi(envOrDefault("POSTGRES_PORT", "5432"))

	cfg := &Config{
		ServerPort: envOrDefault("PORT", "8080"),
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(envOrDefault("BACKEND_BASE_URL", DefaultBackendBaseURL), "/"),
			Timeout: parseDuration(envOrDefault("BACKEND_TIMEOUT", "0s"), 0),
		},
		Session: SessionConfig{
			Secret:     envOrDefault("SESSION_SECRET", "dev-secret"),
			TTL:        parseDuration(envOrDefault("SESSION_TTL", "12h"), 12*time.Hour),
			CookieName: envOrDefault("SESSION_COOKIE", "debate_session"),
			Secure:     parseBool(envOrDefault("SESSION_SECURE", "false"), false),
		},
		Logging: LoggingConfig{
			Level:        strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
			Encoding:     strings.ToLower(envOrDefault("LOG_ENCODING", "console")),
			Development:  parseBool(envOrDefault("LOG_DEVELOPMENT", "false"), false),
			EnableCaller: parseBool(envOrDefault("LOG_CALLER", "false"), false),
			ServiceName:  envOrDefault("SERVICE_NAME", "debate-hub"),
		},
		DevBackend: DevBackendConfig{
			Port:  envOrDefault("DEV_BACKEND_PORT", "8090"),
			Store: strings.ToLower(envOrDefault("DEV_BACKEND_STORE", "memory")),
			Postgres: PostgresConfig{
				DSN:               os.Getenv("POSTGRES_DSN"),
				Host:              envOrDefault("POSTGRES_HOST", "localhost"),
				Port:              pgPort,
				User:              envOrDefault("POSTGRES_USER", "postgres"),
				Password:          envOrDefault("POSTGRES_PASSWORD", "postgres"),
				Database:          envOrDefault("POSTGRES_DB", "debate"),
				MaxConns:          parseInt32(envOrDefault("POSTGRES_MAX_CONNS", "8"), 8),
				MinConns:          parseInt32(envOrDefault("POSTGRES_MIN_CONNS", "1"), 1),
				MaxConnLifetime:   parseDuration(envOrDefault("POSTGRES_MAX_CONN_LIFETIME", "1h"), time.Hour),
				MaxConnIdleTime:   parseDuration(envOrDefault("POSTGRES_MAX_CONN_IDLE", "30m"), 30*time.Minute),
				HealthCheckPeriod: parseDuration(envOrDefault("POSTGRES_HEALTH_CHECK_PERIOD", "1m"), time.Minute),
				ConnectTimeout:    parseDuration(envOrDefault("POSTGRES_CONNECT_TIMEOUT", "5s"), 5*time.Second),
			},
			Mongo: MongoConfig{
				URI:            envOrDefault("MONGO_URI", "mongodb://localhost:27017"),
				Database:       envOrDefault("MONGO_DATABASE", "debate"),
				ConnectTimeout: parseDuration(envOrDefault("MONGO_CONNECT_TIMEOUT", "5s"), 5*time.Second),
			},
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("config: BACKEND_BASE_URL must be an http(s) url, got %q", c.Backend.BaseURL)
	}

	switch c.DevBackend.Store {
	case "memory", "postgres", "mongo":
	default:
		return fmt.Errorf("config: unsupported DEV_BACKEND_STORE %q", c.DevBackend.Store)
	}

	return nil
}

func (c PostgresConfig) BuildDSN() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", c.User, c.Password, c.Host, c.Port, c.Database)
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

func parseInt32(value string, fallback int32) int32 {
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return int32(i)
}

func parseBool(value string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return v
}

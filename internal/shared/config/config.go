package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	App       AppConfig
	JWT       JWTConfig
	Firebase  FirebaseConfig
	Realtime  RealtimeConfig
	Shopping  ShoppingConfig
	TLS       TLSConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	AllowedHosts []string
}

type AppConfig struct {
	Env   string
	Debug bool
}

type JWTConfig struct {
	Secret string
}

type FirebaseConfig struct {
	ProjectID       string
	CredentialsFile string
}

type RealtimeConfig struct {
	Path              string
	HeartbeatInterval time.Duration
	SendQueueSize     int
	AllowedOrigins    []string
}

type ShoppingConfig struct {
	DefaultDays int
}

type TLSConfig struct {
	Enabled      bool
	CertPath     string
	KeyPath      string
	RedirectHTTP bool
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	MetricsPort  string
}

func Load() (*Config, error) {
	heartbeat, err := time.ParseDuration(getEnv("REALTIME_HEARTBEAT_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REALTIME_HEARTBEAT_INTERVAL: %w", err)
	}
	sendQueue, err := strconv.Atoi(getEnv("REALTIME_SEND_QUEUE", "16"))
	if err != nil {
		return nil, fmt.Errorf("invalid REALTIME_SEND_QUEUE: %w", err)
	}
	defaultDays, err := strconv.Atoi(getEnv("SHOPPING_DEFAULT_DAYS", "7"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHOPPING_DEFAULT_DAYS: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Host:         getEnv("HOST", "0.0.0.0"),
			AllowedHosts: getListEnv("ALLOWED_HOSTS"),
		},
		App: AppConfig{
			Env:   getEnv("APP_ENV", "production"),
			Debug: getBoolEnv("APP_DEBUG", false),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Firebase: FirebaseConfig{
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
		},
		Realtime: RealtimeConfig{
			Path:              getEnv("REALTIME_PATH", "/api/ws"),
			HeartbeatInterval: heartbeat,
			SendQueueSize:     sendQueue,
			AllowedOrigins:    getListEnv("REALTIME_ALLOWED_ORIGINS"),
		},
		Shopping: ShoppingConfig{
			DefaultDays: defaultDays,
		},
		TLS: TLSConfig{
			Enabled:      getBoolEnv("TLS_ENABLED", false),
			CertPath:     getEnv("TLS_CERT_PATH", ""),
			KeyPath:      getEnv("TLS_KEY_PATH", ""),
			RedirectHTTP: getBoolEnv("TLS_REDIRECT_HTTP", false),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "household-api"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4317"),
			MetricsPort:  getEnv("METRICS_PORT", "9090"),
		},
	}

	// Fall back to the CORS list so one variable covers both.
	if len(cfg.Realtime.AllowedOrigins) == 0 {
		cfg.Realtime.AllowedOrigins = cfg.Server.AllowedHosts
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if !strings.HasPrefix(c.Realtime.Path, "/") {
		return fmt.Errorf("REALTIME_PATH must start with /")
	}
	if c.Realtime.HeartbeatInterval <= 0 {
		return fmt.Errorf("REALTIME_HEARTBEAT_INTERVAL must be positive")
	}
	if c.Realtime.SendQueueSize <= 0 {
		return fmt.Errorf("REALTIME_SEND_QUEUE must be positive")
	}
	if c.Shopping.DefaultDays < 1 {
		return fmt.Errorf("SHOPPING_DEFAULT_DAYS must be at least 1")
	}

	if c.TLS.Enabled {
		if c.TLS.CertPath == "" {
			return fmt.Errorf("TLS_CERT_PATH is required when TLS_ENABLED=true")
		}
		if c.TLS.KeyPath == "" {
			return fmt.Errorf("TLS_KEY_PATH is required when TLS_ENABLED=true")
		}
	}
	return nil
}

// IsDevelopment reports whether APP_ENV selects development defaults.
func (c *AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept: true, false, 1, 0, yes, no (case-insensitive)
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}

// getListEnv splits a comma-separated variable, dropping blanks.
func getListEnv(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

package config

import (
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultServerAddr     = ":8080"
	defaultWebhookBaseURL = "http://localhost:5678/webhook"
	defaultWebhookTimeout = 30 * time.Second
	defaultLocale         = "en-US"
	defaultRefreshPolicy  = "isolated"
	defaultZipkinURL      = "http://localhost:9411/api/v2/spans"
	defaultServiceName    = "applydash"
	devSessionSecret      = "applydash-development-session-secret"
)

// Provider exposes read access to the application configuration.
type Provider interface {
	GetServerAddr() string
	GetSessionSecret() string
	GetWebhookTimeout() time.Duration
	GetRefreshPolicy() string
	GetLocale() string
	GetEndpointsFile() string
	GetTracing() Tracing
	Endpoints() *Endpoints
}

// Tracing holds the OpenTelemetry exporter settings.
type Tracing struct {
	Enabled     bool
	ServiceName string
	ZipkinURL   string
}

// Config holds all configuration for the application.
type Config struct {
	ServerAddr     string
	SessionSecret  string
	WebhookBaseURL string
	WebhookTimeout time.Duration
	RefreshPolicy  string
	Locale         string
	EndpointsFile  string
	Tracing        Tracing

	endpoints *Endpoints
}

// New loads configuration from a .env file (if present) and the environment.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		// slog is not configured yet at this point.
		log.Println("No .env file found, relying on environment variables")
	}
	return Load(os.Getenv)
}

// Load builds a Config from getenv. Every value has a compiled-in default,
// so the dashboard runs against a local workflow engine with no setup.
func Load(getenv func(string) string) *Config {
	cfg := &Config{
		ServerAddr:     valueOr(getenv("SERVER_ADDR"), defaultServerAddr),
		SessionSecret:  getenv("SESSION_SECRET"),
		WebhookBaseURL: valueOr(getenv("WEBHOOK_BASE_URL"), defaultWebhookBaseURL),
		WebhookTimeout: durationOr(getenv("WEBHOOK_TIMEOUT"), defaultWebhookTimeout),
		RefreshPolicy:  valueOr(getenv("REFRESH_POLICY"), defaultRefreshPolicy),
		Locale:         valueOr(getenv("APP_LOCALE"), defaultLocale),
		EndpointsFile:  getenv("ENDPOINTS_FILE"),
		Tracing: Tracing{
			Enabled:     boolOr(getenv("TRACING_ENABLED"), false),
			ServiceName: valueOr(getenv("TRACING_SERVICE_NAME"), defaultServiceName),
			ZipkinURL:   valueOr(getenv("TRACING_ZIPKIN_URL"), defaultZipkinURL),
		},
	}

	if cfg.SessionSecret == "" {
		slog.Warn("SESSION_SECRET is not set, using the development secret")
		cfg.SessionSecret = devSessionSecret
	}

	cfg.endpoints = NewEndpoints(cfg.WebhookBaseURL, getenv)
	return cfg
}

func (c *Config) GetServerAddr() string            { return c.ServerAddr }
func (c *Config) GetSessionSecret() string         { return c.SessionSecret }
func (c *Config) GetWebhookTimeout() time.Duration { return c.WebhookTimeout }
func (c *Config) GetRefreshPolicy() string         { return c.RefreshPolicy }
func (c *Config) GetLocale() string                { return c.Locale }
func (c *Config) GetEndpointsFile() string         { return c.EndpointsFile }
func (c *Config) GetTracing() Tracing              { return c.Tracing }

// Endpoints returns the live endpoint table.
func (c *Config) Endpoints() *Endpoints { return c.endpoints }

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func durationOr(v string, fallback time.Duration) time.Duration {
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("Ignoring invalid duration", "value", v, "default", fallback)
		return fallback
	}
	return d
}

func boolOr(v string, fallback bool) bool {
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

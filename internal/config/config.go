package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"github.com/spf13/viper"
)

// Config holds all configuration for the service. Every key is read from the
// environment; sections are flattened so the env names stay unprefixed.
type Config struct {
	ServiceName string `mapstructure:"SERVICE_NAME"`
	Environment string `mapstructure:"ENVIRONMENT"`

	HTTP      HTTPConfig      `mapstructure:",squash"`
	GRPC      GRPCConfig      `mapstructure:",squash"`
	Mongo     MongoConfig     `mapstructure:",squash"`
	MinIO     MinIOConfig     `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	NATS      NATSConfig      `mapstructure:",squash"`
	SMTP      SMTPConfig      `mapstructure:",squash"`
	Auth      AuthConfig      `mapstructure:",squash"`
	Log       LogConfig       `mapstructure:",squash"`
	Telemetry TelemetryConfig `mapstructure:",squash"`
}

type HTTPConfig struct {
	Port            string        `mapstructure:"HTTP_PORT"`
	ReadTimeout     time.Duration `mapstructure:"HTTP_READ_TIMEOUT"`
	WriteTimeout    time.Duration `mapstructure:"HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"HTTP_SHUTDOWN_TIMEOUT"`
	MaxUploadMB     int64         `mapstructure:"HTTP_MAX_UPLOAD_MB"`
	// CORSAllowedOrigins is a comma separated list.
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

func (c HTTPConfig) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

type GRPCConfig struct {
	Port string `mapstructure:"GRPC_PORT"`
}

type MongoConfig struct {
	URI      string `mapstructure:"MONGO_URI"`
	Database string `mapstructure:"MONGO_DATABASE"`
	User     string `mapstructure:"MONGO_USER"`
	Password string `mapstructure:"MONGO_PASSWORD"`
}

type MinIOConfig struct {
	Endpoint  string `mapstructure:"MINIO_ENDPOINT"`
	AccessKey string `mapstructure:"MINIO_ACCESS_KEY"`
	SecretKey string `mapstructure:"MINIO_SECRET_KEY"`
	Bucket    string `mapstructure:"MINIO_BUCKET"`
	UseSSL    bool   `mapstructure:"MINIO_USE_SSL"`
	// PublicURL overrides the base of returned object URLs, e.g. a CDN.
	PublicURL string `mapstructure:"MINIO_PUBLIC_URL"`
}

// RedisConfig is optional: an empty Addr disables caching.
type RedisConfig struct {
	Addr     string        `mapstructure:"REDIS_ADDR"`
	Password string        `mapstructure:"REDIS_PASSWORD"`
	DB       int           `mapstructure:"REDIS_DB"`
	TTL      time.Duration `mapstructure:"CACHE_TTL"`
}

// NATSConfig is optional: an empty URL disables event publishing.
type NATSConfig struct {
	URL string `mapstructure:"NATS_URL"`
}

// SMTPConfig is optional: listing notifications are sent only when Host and
// NotifyEmail are both set.
type SMTPConfig struct {
	Host        string `mapstructure:"SMTP_HOST"`
	Port        int    `mapstructure:"SMTP_PORT"`
	User        string `mapstructure:"SMTP_USER"`
	Password    string `mapstructure:"SMTP_PASSWORD"`
	From        string `mapstructure:"SMTP_FROM"`
	NotifyEmail string `mapstructure:"NOTIFY_EMAIL"`
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.NotifyEmail != ""
}

// AuthConfig is optional: without a secret write routes are open.
type AuthConfig struct {
	JWTSecret string `mapstructure:"JWT_SECRET"`
}

type LogConfig struct {
	Level      string `mapstructure:"LOG_LEVEL"`
	Format     string `mapstructure:"LOG_FORMAT"`
	OutputFile string `mapstructure:"LOG_OUTPUT_FILE"`
}

func (c LogConfig) Logger() logger.Config {
	return logger.Config{Level: c.Level, Format: c.Format, OutputFile: c.OutputFile}
}

type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

var defaults = map[string]interface{}{
	"SERVICE_NAME":                "property-service",
	"ENVIRONMENT":                 "development",
	"HTTP_PORT":                   "8080",
	"HTTP_READ_TIMEOUT":           "15s",
	"HTTP_WRITE_TIMEOUT":          "60s",
	"HTTP_SHUTDOWN_TIMEOUT":       "10s",
	"HTTP_MAX_UPLOAD_MB":          50,
	"CORS_ALLOWED_ORIGINS":        "*",
	"GRPC_PORT":                   "50051",
	"MONGO_URI":                   "mongodb://localhost:27017",
	"MONGO_DATABASE":              "real_estate",
	"MONGO_USER":                  "",
	"MONGO_PASSWORD":              "",
	"MINIO_ENDPOINT":              "localhost:9000",
	"MINIO_ACCESS_KEY":            "",
	"MINIO_SECRET_KEY":            "",
	"MINIO_BUCKET":                "property-images",
	"MINIO_USE_SSL":               false,
	"MINIO_PUBLIC_URL":            "",
	"REDIS_ADDR":                  "",
	"REDIS_PASSWORD":              "",
	"REDIS_DB":                    0,
	"CACHE_TTL":                   "10m",
	"NATS_URL":                    "",
	"SMTP_HOST":                   "",
	"SMTP_PORT":                   587,
	"SMTP_USER":                   "",
	"SMTP_PASSWORD":               "",
	"SMTP_FROM":                   "noreply@property-service.local",
	"NOTIFY_EMAIL":                "",
	"JWT_SECRET":                  "",
	"LOG_LEVEL":                   "info",
	"LOG_FORMAT":                  "json",
	"LOG_OUTPUT_FILE":             "",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "",
}

// Load reads the configuration from the environment. A .env file, if any, is
// loaded into the environment by main before this is called.
func Load() (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Mongo.URI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.Mongo.Database == "" {
		errs = append(errs, errors.New("MONGO_DATABASE is required"))
	}
	if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
		errs = append(errs, errors.New("MINIO_ENDPOINT and MINIO_BUCKET are required"))
	}
	if c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "" {
		errs = append(errs, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required"))
	}
	if c.HTTP.Port == "" {
		errs = append(errs, errors.New("HTTP_PORT is required"))
	}
	if c.HTTP.MaxUploadMB <= 0 {
		errs = append(errs, errors.New("HTTP_MAX_UPLOAD_MB must be positive"))
	}
	return errors.Join(errs...)
}

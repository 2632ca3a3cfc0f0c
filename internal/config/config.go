// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	IdleTimeout        time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// RawDSN, when set, takes precedence over the individual fields.
	RawDSN     string
	Debug      bool
	Migrations bool
	Seed       bool
}

type AppConfig struct {
	Environment                string
	ArchitectCommissionDefault decimal.Decimal
	DiscountAuthThreshold      decimal.Decimal
}

type AuthConfig struct {
	SessionSecret    string
	DiscountTokenTTL time.Duration
	PermissionTTL    time.Duration
}

type StorageConfig struct {
	MediaRoot string
	ImageTTL  time.Duration
}

type LogConfig struct {
	Level       string
	ServiceName string
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("SERVER_READ_TIMEOUT", "15s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "30s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "60s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "orcamentos")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("DB_DEBUG", false)
	v.SetDefault("MIGRATIONS", false)
	v.SetDefault("DB_SEED", false)

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("ARCHITECT_COMMISSION_DEFAULT", "0")
	v.SetDefault("DISCOUNT_AUTH_THRESHOLD", "15")

	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("DISCOUNT_TOKEN_TTL", "15m")
	v.SetDefault("PERMISSION_CACHE_TTL", "1m")

	v.SetDefault("MEDIA_ROOT", "./media")
	v.SetDefault("IMAGE_TTL", "168h")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVICE_NAME", "orcamentos")
}

// Load reads the configuration from environment variables.
// Precedence: explicit env var > .env file (if loaded by main) > default.
func Load() (*Config, error) {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	commission, err := decimal.NewFromString(v.GetString("ARCHITECT_COMMISSION_DEFAULT"))
	if err != nil {
		return nil, fmt.Errorf("ARCHITECT_COMMISSION_DEFAULT: %w", err)
	}
	threshold, err := decimal.NewFromString(v.GetString("DISCOUNT_AUTH_THRESHOLD"))
	if err != nil {
		return nil, fmt.Errorf("DISCOUNT_AUTH_THRESHOLD: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               v.GetString("PORT"),
			ReadTimeout:        v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:       v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:        v.GetDuration("SERVER_IDLE_TIMEOUT"),
			ShutdownTimeout:    v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
			CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetString("DB_PORT"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			Name:       v.GetString("DB_NAME"),
			SSLMode:    v.GetString("DB_SSLMODE"),
			RawDSN:     v.GetString("DATABASE_DSN"),
			Debug:      v.GetBool("DB_DEBUG"),
			Migrations: v.GetBool("MIGRATIONS"),
			Seed:       v.GetBool("DB_SEED"),
		},
		App: AppConfig{
			Environment:                v.GetString("APP_ENV"),
			ArchitectCommissionDefault: commission,
			DiscountAuthThreshold:      threshold,
		},
		Auth: AuthConfig{
			SessionSecret:    v.GetString("SESSION_SECRET"),
			DiscountTokenTTL: v.GetDuration("DISCOUNT_TOKEN_TTL"),
			PermissionTTL:    v.GetDuration("PERMISSION_CACHE_TTL"),
		},
		Storage: StorageConfig{
			MediaRoot: v.GetString("MEDIA_ROOT"),
			ImageTTL:  v.GetDuration("IMAGE_TTL"),
		},
		Log: LogConfig{
			Level:       v.GetString("LOG_LEVEL"),
			ServiceName: v.GetString("SERVICE_NAME"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.App.DiscountAuthThreshold.IsNegative() || c.App.DiscountAuthThreshold.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("DISCOUNT_AUTH_THRESHOLD must be between 0 and 100")
	}
	if c.IsProduction() && c.Auth.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required in production")
	}
	return nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool { return strings.EqualFold(c.App.Environment, "production") }

// DSN returns the key=value connection string.
func (d DatabaseConfig) DSN() string {
	if d.RawDSN != "" {
		return d.RawDSN
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// URL returns the postgres:// form used by golang-migrate.
func (d DatabaseConfig) URL() string {
	if d.RawDSN != "" && strings.Contains(d.RawDSN, "://") {
		return d.RawDSN
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

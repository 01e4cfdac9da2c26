package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	OAuth2Google OAuth2GoogleConfig
	SMTP         SMTPConfig
	Storage      StorageConfig
	Demo         DemoConfig
	Cron         CronConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Port           int
	Env            string
	LogLevel       string
	FrontendURL    string
	AllowedOrigins []string
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Enabled reports whether Google sign-in is configured.
func (c OAuth2GoogleConfig) Enabled() bool {
	return c.ClientID != ""
}

// SMTPConfig holds outgoing mail settings. An empty Host disables sending.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type StorageConfig struct {
	Type     string
	BasePath string
	BaseURL  string
}

// DemoConfig controls the development-only demo login.
type DemoConfig struct {
	Enabled bool
}

type CronConfig struct {
	Enabled              bool
	MarkAbsentInterval   time.Duration
	TokenCleanupInterval time.Duration
}

// defaults are the values used when neither the environment nor .env sets
// a key. Keys are the lower-cased environment variable names.
var defaults = map[string]string{
	"db_host":     "localhost",
	"db_port":     "5432",
	"db_user":     "postgres",
	"db_name":     "hris_attendance",
	"db_ssl_mode": "disable",

	"app_name":             "hris-attendance",
	"app_port":             "8080",
	"app_env":              "development",
	"log_level":            "info",
	"frontend_url":         "http://localhost:3000",
	"cors_allowed_origins": "http://localhost:3000",

	"jwt_access_expiration_time":  "1h",
	"jwt_refresh_expiration_time": "168h",

	"smtp_port":      "587",
	"smtp_from":      "no-reply@localhost",
	"smtp_from_name": "HRIS Attendance",

	"storage_type":      "local",
	"storage_base_path": "./uploads",
	"storage_base_url":  "http://localhost:8080/uploads",

	"demo_login_enabled":          "false",
	"cron_enabled":                "true",
	"cron_mark_absent_interval":   "1h",
	"cron_token_cleanup_interval": "24h",
}

// Load reads .env when present, then the process environment, and validates
// the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
		slog.Debug("No .env file found, using process environment")
	}

	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	r := &reader{v: v}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     r.str("db_host"),
			Port:     r.integer("db_port"),
			User:     r.str("db_user"),
			Password: r.str("db_password"),
			Name:     r.str("db_name"),
			SSLMode:  r.str("db_ssl_mode"),
		},
		App: AppConfig{
			Name:           r.str("app_name"),
			Port:           r.integer("app_port"),
			Env:            r.str("app_env"),
			LogLevel:       r.str("log_level"),
			FrontendURL:    r.str("frontend_url"),
			AllowedOrigins: splitList(r.str("cors_allowed_origins")),
		},
		JWT: JWTConfig{
			Secret:            r.str("jwt_secret_key"),
			AccessExpiration:  r.str("jwt_access_expiration_time"),
			RefreshExpiration: r.str("jwt_refresh_expiration_time"),
		},
		OAuth2Google: OAuth2GoogleConfig{
			ClientID:     r.str("client_id"),
			ClientSecret: r.str("client_secret"),
			RedirectURL:  r.str("redirect_url"),
			Scopes:       splitList(r.str("scopes")),
		},
		SMTP: SMTPConfig{
			Host:     r.str("smtp_host"),
			Port:     r.integer("smtp_port"),
			Username: r.str("smtp_username"),
			Password: r.str("smtp_password"),
			From:     r.str("smtp_from"),
			FromName: r.str("smtp_from_name"),
		},
		Storage: StorageConfig{
			Type:     r.str("storage_type"),
			BasePath: r.str("storage_base_path"),
			BaseURL:  r.str("storage_base_url"),
		},
		Demo: DemoConfig{Enabled: r.boolean("demo_login_enabled")},
		Cron: CronConfig{
			Enabled:              r.boolean("cron_enabled"),
			MarkAbsentInterval:   r.duration("cron_mark_absent_interval"),
			TokenCleanupInterval: r.duration("cron_token_cleanup_interval"),
		},
	}
	if r.err != nil {
		return nil, r.err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// reader converts viper values and keeps the first conversion error, named
// after the environment variable.
type reader struct {
	v   *viper.Viper
	err error
}

func (r *reader) str(key string) string {
	return strings.TrimSpace(r.v.GetString(key))
}

func (r *reader) fail(key string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("invalid %s: %w", strings.ToUpper(key), err)
	}
}

func (r *reader) integer(key string) int {
	n, err := strconv.Atoi(r.str(key))
	if err != nil {
		r.fail(key, err)
	}
	return n
}

func (r *reader) boolean(key string) bool {
	b, err := strconv.ParseBool(r.str(key))
	if err != nil {
		r.fail(key, err)
	}
	return b
}

func (r *reader) duration(key string) time.Duration {
	d, err := time.ParseDuration(r.str(key))
	if err != nil {
		r.fail(key, err)
	}
	return d
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME is invalid: %w", err)
	}
	if _, err := time.ParseDuration(c.JWT.RefreshExpiration); err != nil {
		return fmt.Errorf("JWT_REFRESH_EXPIRATION_TIME is invalid: %w", err)
	}

	// Google sign-in is optional, but a partial setup is a mistake
	if c.OAuth2Google.Enabled() {
		if c.OAuth2Google.ClientSecret == "" {
			return fmt.Errorf("CLIENT_SECRET is required")
		}
		if c.OAuth2Google.RedirectURL == "" {
			return fmt.Errorf("REDIRECT_URL is required")
		}
		if len(c.OAuth2Google.Scopes) == 0 {
			return fmt.Errorf("SCOPES is required")
		}
	}

	if c.Demo.Enabled && !c.IsDevelopment() {
		return fmt.Errorf("DEMO_LOGIN_ENABLED is only allowed when APP_ENV=development")
	}
	return nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// splitList splits a comma separated value, dropping blank items.
func splitList(value string) []string {
	result := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}

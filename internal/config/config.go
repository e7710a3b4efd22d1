package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// DevSecretKey signs cookies when SECRET_KEY is unset outside prod.
const DevSecretKey = "dev-only-secret-key-do-not-use-in-production"

type Config struct {
	Env       string `mapstructure:"BLOG_ENV"`
	HTTPAddr  string `mapstructure:"BLOG_HTTP_ADDR"`
	SecretKey string `mapstructure:"SECRET_KEY"`
	AdminID   int64  `mapstructure:"BLOG_ADMIN_ID"`
	LogLevel  string `mapstructure:"BLOG_LOG_LEVEL"` // empty: debug in dev, info in prod

	Database DBConfig       `mapstructure:",squash"`
	Session  SessionConfig  `mapstructure:",squash"`
	API      APIConfig      `mapstructure:",squash"`
	Security SecurityConfig `mapstructure:",squash"`
	Mail     MailConfig     `mapstructure:",squash"`
}

type DBConfig struct {
	Driver string `mapstructure:"BLOG_DB_DRIVER"` // "sqlite3", "pgx"
	DSN    string `mapstructure:"DATABASE_URI"`
}

type SessionConfig struct {
	Backend  string        `mapstructure:"BLOG_SESSION_BACKEND"` // "sql", "redis"
	RedisURL string        `mapstructure:"BLOG_REDIS_URL"`
	TTL      time.Duration `mapstructure:"BLOG_SESSION_TTL"`
}

type APIConfig struct {
	Secret             string   `mapstructure:"BLOG_API_SECRET"`
	CORSAllowedOrigins []string `mapstructure:"BLOG_CORS_ALLOWED_ORIGINS"`
}

type SecurityConfig struct {
	RateLimitRPM int `mapstructure:"BLOG_RATE_LIMIT_RPM"`
}

type MailConfig struct {
	Host     string        `mapstructure:"MAIL_HOST"`
	Port     int           `mapstructure:"MAIL_PORT"`
	Username string        `mapstructure:"MAIL_USERNAME"`
	Password string        `mapstructure:"MAIL_PASSWORD"`
	To       string        `mapstructure:"MAIL_TO"`
	Timeout  time.Duration `mapstructure:"MAIL_TIMEOUT"`
}

func loadDotEnvFiles() {
	for _, path := range []string{".env", filepath.Join("..", ".env")} {
		if _, err := os.Stat(path); err == nil {
			_ = gotenv.Load(path) // variables already in the environment win
		}
	}
}

func Load() (*Config, error) {
	loadDotEnvFiles()

	v := viper.New()
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("BLOG_ENV", "dev")
	v.SetDefault("BLOG_HTTP_ADDR", ":5001")
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("BLOG_ADMIN_ID", 1)
	v.SetDefault("BLOG_LOG_LEVEL", "")
	v.SetDefault("BLOG_DB_DRIVER", "sqlite3")
	v.SetDefault("DATABASE_URI", "posts.db")
	v.SetDefault("BLOG_SESSION_BACKEND", "sql")
	v.SetDefault("BLOG_REDIS_URL", "redis://127.0.0.1:6379/0")
	v.SetDefault("BLOG_SESSION_TTL", "720h")
	v.SetDefault("BLOG_API_SECRET", "")
	v.SetDefault("BLOG_CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("BLOG_RATE_LIMIT_RPM", 30)
	v.SetDefault("MAIL_HOST", "smtp.gmail.com")
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("MAIL_USERNAME", "")
	v.SetDefault("MAIL_PASSWORD", "")
	v.SetDefault("MAIL_TO", "")
	v.SetDefault("MAIL_TIMEOUT", "10s")

	if origins := v.GetString("BLOG_CORS_ALLOWED_ORIGINS"); origins != "" {
		v.Set("BLOG_CORS_ALLOWED_ORIGINS", strings.Split(origins, ","))
	} else {
		v.Set("BLOG_CORS_ALLOWED_ORIGINS", []string{})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.SecretKey == "" {
		cfg.SecretKey = DevSecretKey
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite3", "pgx":
	default:
		return fmt.Errorf("invalid BLOG_DB_DRIVER %q (must be sqlite3 or pgx)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("DATABASE_URI is required")
	}
	switch c.Session.Backend {
	case "sql", "redis":
	default:
		return fmt.Errorf("invalid BLOG_SESSION_BACKEND %q (must be sql or redis)", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("BLOG_SESSION_TTL must be positive")
	}
	if c.IsProd() && c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required in prod")
	}
	if c.AdminID <= 0 {
		return fmt.Errorf("BLOG_ADMIN_ID must be positive")
	}
	if c.Security.RateLimitRPM <= 0 {
		return fmt.Errorf("BLOG_RATE_LIMIT_RPM must be positive")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

// MailEnabled reports whether relay credentials and a recipient are configured.
func (m MailConfig) MailEnabled() bool {
	return m.Host != "" && m.Username != "" && m.Password != "" && m.To != ""
}

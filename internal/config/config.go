package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is loaded once at startup and never mutated afterwards.
type Config struct {
	Port          string
	LogLevel      string
	PublicBaseURL string

	Database DatabaseConfig
	JWT      JWTConfig
	SMTP     SMTPSettings
	Redis    RedisConfig

	ResetTokenTTL time.Duration
}

type DatabaseConfig struct {
	Driver      string // "postgres" or "sqlite"
	PostgresURL string
	SQLitePath  string
}

type JWTConfig struct {
	Secret          string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	VerificationTTL time.Duration
}

type SMTPSettings struct {
	Enabled    bool
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	FromName   string
	UseSSL     bool
	RequireTLS bool
}

// RedisConfig switches the reset token store from process memory to Redis when Enabled.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// Load reads an optional .env file, then environment variables on top of the defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:          v.GetString("PORT"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		PublicBaseURL: strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),
		Database: DatabaseConfig{
			Driver:      strings.ToLower(v.GetString("DB_DRIVER")),
			PostgresURL: v.GetString("POSTGRES_URL"),
			SQLitePath:  v.GetString("SQLITE_PATH"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			Issuer:          v.GetString("JWT_ISSUER"),
			AccessTokenTTL:  v.GetDuration("ACCESS_TOKEN_TTL"),
			RefreshTokenTTL: v.GetDuration("REFRESH_TOKEN_TTL"),
			VerificationTTL: v.GetDuration("VERIFICATION_TOKEN_TTL"),
		},
		SMTP: SMTPSettings{
			Enabled:    v.GetBool("SMTP_ENABLED"),
			Host:       v.GetString("SMTP_HOST"),
			Port:       v.GetInt("SMTP_PORT"),
			Username:   v.GetString("SMTP_USERNAME"),
			Password:   v.GetString("SMTP_PASSWORD"),
			From:       v.GetString("SMTP_FROM"),
			FromName:   v.GetString("SMTP_FROM_NAME"),
			UseSSL:     v.GetBool("SMTP_USE_SSL"),
			RequireTLS: v.GetBool("SMTP_REQUIRE_TLS"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		ResetTokenTTL: v.GetDuration("RESET_TOKEN_TTL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.PostgresURL == "" {
			return errors.New("config: POSTGRES_URL is required for the postgres driver")
		}
	case "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.SMTP.Enabled && c.SMTP.Host == "" {
		return errors.New("config: SMTP_HOST is required when SMTP is enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("SQLITE_PATH", "./data/tourbook.sqlite")

	v.SetDefault("JWT_ISSUER", "tourbook")
	v.SetDefault("ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h")
	v.SetDefault("VERIFICATION_TOKEN_TTL", "24h")
	v.SetDefault("RESET_TOKEN_TTL", "15m")

	v.SetDefault("SMTP_ENABLED", false)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM_NAME", "Tourbook")
	v.SetDefault("SMTP_USE_SSL", false)
	v.SetDefault("SMTP_REQUIRE_TLS", true)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_DB", 0)
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

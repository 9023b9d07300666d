package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	BaseURL                string        `env:"AUTHSESSION_BASE_URL" default:"http://localhost:8123/api"`
	StoreURL               string        `env:"AUTHSESSION_STORE_URL" default:"~/.authsession/token.json"`
	RedisURL               string        `env:"AUTHSESSION_REDIS_URL"`
	RedisKey               string        `env:"AUTHSESSION_REDIS_KEY" default:"authsession:token"`
	CookieJar              string        `env:"AUTHSESSION_COOKIE_JAR"`
	TokenTTL               time.Duration `env:"AUTHSESSION_TOKEN_TTL" default:"168h"` // 7 days
	Timeout                time.Duration `env:"AUTHSESSION_TIMEOUT" default:"60s"`
	LoginPath              string        `env:"AUTHSESSION_LOGIN_PATH" default:"/user/login"`
	NoAuthPath             string        `env:"AUTHSESSION_NO_AUTH_PATH" default:"/no-auth"`
	ClearOnUnauthenticated bool          `env:"AUTHSESSION_CLEAR_ON_UNAUTHENTICATED" default:"true"`
	LogLevel               string        `env:"LOG_LEVEL" default:"info"`
	LogFormat              string        `env:"LOG_FORMAT" default:"text"`
}

// BasePath returns the path component of BaseURL, e.g. /api
func (c *Config) BasePath() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	return strings.TrimSuffix(u.Path, "/")
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	cfg.StoreURL = expandHome(cfg.StoreURL)
	cfg.CookieJar = expandHome(cfg.CookieJar)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func expandHome(location string) string {
	if !strings.HasPrefix(location, "~/") {
		return location
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return location
	}
	return filepath.Join(home, location[2:])
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("AUTHSESSION_BASE_URL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("AUTHSESSION_BASE_URL must be an http(s) URL, got %q", cfg.BaseURL)
	}
	if cfg.StoreURL == "" && cfg.RedisURL == "" {
		return fmt.Errorf("AUTHSESSION_STORE_URL or AUTHSESSION_REDIS_URL is required")
	}
	if cfg.TokenTTL < 0 {
		return fmt.Errorf("AUTHSESSION_TOKEN_TTL must not be negative")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("AUTHSESSION_TIMEOUT must be positive")
	}
	for name, value := range map[string]string{
		"AUTHSESSION_LOGIN_PATH":   cfg.LoginPath,
		"AUTHSESSION_NO_AUTH_PATH": cfg.NoAuthPath,
	} {
		if !strings.HasPrefix(value, "/") {
			return fmt.Errorf("%s must start with /", name)
		}
	}
	return nil
}

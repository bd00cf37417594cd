// Package config loads runtime settings for the QuickAid server from the
// environment, with development defaults for everything that is safe to
// default. Secrets (JWT key, OAuth client credentials) have no defaults and
// must be provided.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env        string `mapstructure:"ENV"`  // "development" or "production"
	ListenAddr string `mapstructure:"ADDR"` // bind address for the HTTP server

	DBType string `mapstructure:"DB_TYPE"` // sqlite or postgres
	DSN    string `mapstructure:"DSN"`

	JWTSecret  string        `mapstructure:"JWT_SECRET"`
	SessionTTL time.Duration `mapstructure:"SESSION_TTL"`
	// SessionSliding re-issues the session cookie on every authenticated
	// request, turning the fixed 12h window into a sliding one.
	SessionSliding bool `mapstructure:"SESSION_SLIDING"`

	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `mapstructure:"GOOGLE_CALLBACK_URL"`

	// ClientURL is the base URL of the web client, used in email links and
	// OAuth redirects.
	ClientURL  string `mapstructure:"CLIENT_URL"`
	CORSOrigin string `mapstructure:"CORS_ORIGIN"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	FromEmail    string `mapstructure:"FROM_EMAIL"`
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load builds a Config from environment variables, applying defaults first.
func Load() (*Config, error) {
	viper.SetDefault("ENV", "development")
	viper.SetDefault("ADDR", ":3500")
	viper.SetDefault("DB_TYPE", "sqlite")
	viper.SetDefault("DSN", "quickaid.db")
	viper.SetDefault("SESSION_TTL", 12*time.Hour)
	viper.SetDefault("SESSION_SLIDING", false)
	viper.SetDefault("CLIENT_URL", "http://localhost:5173")
	viper.SetDefault("CORS_ORIGIN", "http://localhost:5173")
	viper.SetDefault("SMTP_PORT", 587)

	// AutomaticEnv only surfaces keys viper already knows about, so the
	// no-default settings are registered explicitly.
	for _, key := range []string{
		"DSN", "JWT_SECRET",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_CALLBACK_URL",
		"SMTP_HOST", "SMTP_USER", "SMTP_PASSWORD", "FROM_EMAIL",
	} {
		_ = viper.BindEnv(key)
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("environment variable JWT_SECRET is missing")
	}
	return &cfg, nil
}

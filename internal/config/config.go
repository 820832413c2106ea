package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all environment configuration for the server.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`
	Env  string `env:"APP_ENV" envDefault:"development"`

	MongoURI   string `env:"MONGODB_URI,required"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"natours"`

	JWTSecret    string        `env:"JWT_SECRET,required"`
	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN" envDefault:"2160h"`

	MailerSendAPIKey string `env:"MAILERSEND_API_KEY"`
	MailFromName     string `env:"MAIL_FROM_NAME" envDefault:"Natours Admin"`

	SMTPHost string `env:"SMTP_HOST"`
	SMTPPort int    `env:"SMTP_PORT" envDefault:"1025"`
	SMTPFrom string `env:"SMTP_FROM" envDefault:"admin@natours.io"`
	SMTPUser string `env:"SMTP_USER"`
	SMTPPass string `env:"SMTP_PASS"`

	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"100"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1h"`
}

// Load parses environment variables into a Config.
// The connection string may carry a <password> placeholder that is
// substituted with DB_PASSWORD, so the secret can live in a separate
// environment variable.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.MongoURI = strings.Replace(cfg.MongoURI, "<password>", cfg.DBPassword, 1)
	return cfg, nil
}

// IsProduction reports whether the server runs in production mode.
// Production suppresses stack traces and raw error detail in responses.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

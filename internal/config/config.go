// Package config loads the configuration surface from the environment, and
// optionally from a YAML file for the local CLI.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/radamanthiss/transaction-api/internal/domain"
	"github.com/radamanthiss/transaction-api/internal/email"
)

// Config is the full configuration surface. Every execution-mode decision is
// made from this one struct at wiring time.
type Config struct {
	Mode   domain.Mode `yaml:"mode"`
	Region string      `yaml:"region"`

	SenderEmail       string `yaml:"sender_email"`
	FallbackRecipient string `yaml:"fallback_recipient"`

	AccountsTable     string `yaml:"accounts_table"`
	TransactionsTable string `yaml:"transactions_table"`

	// Locale selects month-name rendering, e.g. "es_ES" or "en-US".
	Locale string `yaml:"locale"`

	SMTP SMTPConfig `yaml:"smtp"`
}

// SMTPConfig is the local-mode email transport.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Email converts to the dispatcher's transport settings.
func (c SMTPConfig) Email() email.SMTPConfig {
	return email.SMTPConfig{Host: c.Host, Port: c.Port, User: c.User, Password: c.Password}
}

// FromEnv reads configuration from the environment. Variable names match the
// deployed Lambda environment. The result is not validated: callers fix the
// execution mode first (it can arrive in the triggering event) and then call
// Validate.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Mode:              domain.Mode(envOr("RUNNING_TYPE", string(domain.ModeProd))),
		Region:            os.Getenv("AWS_REGION"),
		SenderEmail:       os.Getenv("SENDER_EMAIL"),
		FallbackRecipient: os.Getenv("RECIPIENT_EMAIL"),
		AccountsTable:     os.Getenv("DYNAMODB_ACCOUNTS_TABLE_NAME"),
		TransactionsTable: os.Getenv("DYNAMODB_TRANSACTIONS_TABLE_NAME"),
		Locale:            os.Getenv("MONTH_LOCALE"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_SERVER"),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
	}

	if portStr := os.Getenv("SMTP_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SMTP_PORT %q: %w", portStr, err)
		}
		cfg.SMTP.Port = port
	}
	return cfg, nil
}

// Load reads a YAML configuration file (local CLI path).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Mode == "" {
		cfg.Mode = domain.ModeLocal
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks mode-specific requirements: the live path needs its AWS
// surface, the local path needs an SMTP transport and a fallback recipient.
func (c *Config) Validate() error {
	if !domain.ValidateMode(c.Mode) {
		return fmt.Errorf("invalid mode %q (want %q or %q)", c.Mode, domain.ModeLocal, domain.ModeProd)
	}
	if c.SenderEmail == "" {
		return fmt.Errorf("sender email is required")
	}

	switch c.Mode {
	case domain.ModeProd:
		if c.AccountsTable == "" || c.TransactionsTable == "" {
			return fmt.Errorf("prod mode requires accounts and transactions table names")
		}
	case domain.ModeLocal:
		if c.SMTP.Host == "" || c.SMTP.Port == 0 {
			return fmt.Errorf("local mode requires SMTP host and port")
		}
		if c.FallbackRecipient == "" {
			return fmt.Errorf("local mode requires a fallback recipient")
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Package config loads program configuration from defaults, an optional YAML
// file, and CAMPSHARE_* environment overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TwilioConfig holds SMS provider credentials. All three fields must be set
// for real delivery; otherwise messages are logged.
type TwilioConfig struct {
	AccountSID  string `yaml:"account_sid"`
	AuthToken   string `yaml:"auth_token"`
	PhoneNumber string `yaml:"phone_number"`
}

// SendGridConfig holds email provider credentials. Without an API key,
// emails are logged.
type SendGridConfig struct {
	APIKey      string `yaml:"api_key"`
	SenderEmail string `yaml:"sender_email"`
	SenderName  string `yaml:"sender_name"`
}

// Config captures every tunable of the program.
type Config struct {
	// Backend selects the storage implementation: "file", "sqlite", or
	// "memory".
	Backend string `yaml:"backend"`
	// StoragePath is the document directory for the file backend.
	StoragePath string `yaml:"storage_path"`
	// SQLiteDSN is the database location for the sqlite backend.
	SQLiteDSN string `yaml:"sqlite_dsn"`
	// PollInterval is the reconciliation poll cadence.
	PollInterval time.Duration `yaml:"poll_interval"`
	// AppURL appears in invitation emails as the login link base.
	AppURL   string         `yaml:"app_url"`
	LogLevel string         `yaml:"log_level"`
	Twilio   TwilioConfig   `yaml:"twilio"`
	SendGrid SendGridConfig `yaml:"sendgrid"`
}

func defaults() Config {
	return Config{
		Backend:      "file",
		StoragePath:  "data",
		SQLiteDSN:    "file:campshare.db",
		PollInterval: time.Minute,
		AppURL:       "http://localhost:8080",
		LogLevel:     "info",
		SendGrid: SendGridConfig{
			SenderEmail: "noreply@campshare.app",
			SenderName:  "Camp Share",
		},
	}
}

// Load builds the configuration. A missing file at path is fine; defaults
// and environment overrides still apply. An empty path skips the file step.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Backend, "CAMPSHARE_BACKEND")
	setString(&cfg.StoragePath, "CAMPSHARE_STORAGE_PATH")
	setString(&cfg.SQLiteDSN, "CAMPSHARE_SQLITE_DSN")
	setString(&cfg.AppURL, "CAMPSHARE_APP_URL")
	setString(&cfg.LogLevel, "CAMPSHARE_LOG_LEVEL")
	setString(&cfg.Twilio.AccountSID, "CAMPSHARE_TWILIO_ACCOUNT_SID")
	setString(&cfg.Twilio.AuthToken, "CAMPSHARE_TWILIO_AUTH_TOKEN")
	setString(&cfg.Twilio.PhoneNumber, "CAMPSHARE_TWILIO_PHONE_NUMBER")
	setString(&cfg.SendGrid.APIKey, "CAMPSHARE_SENDGRID_API_KEY")
	setString(&cfg.SendGrid.SenderEmail, "CAMPSHARE_SENDER_EMAIL")
	setString(&cfg.SendGrid.SenderName, "CAMPSHARE_SENDER_NAME")

	if value := strings.TrimSpace(os.Getenv("CAMPSHARE_POLL_INTERVAL")); value != "" {
		if interval, err := time.ParseDuration(value); err == nil && interval > 0 {
			cfg.PollInterval = interval
		}
	}
}

func setString(target *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*target = value
	}
}

func (c Config) validate() error {
	invalid := make([]string, 0, 2)

	switch c.Backend {
	case "file", "sqlite", "memory":
	default:
		invalid = append(invalid, "backend")
	}
	if c.Backend == "file" && c.StoragePath == "" {
		invalid = append(invalid, "storage_path")
	}
	if c.Backend == "sqlite" && c.SQLiteDSN == "" {
		invalid = append(invalid, "sqlite_dsn")
	}
	if c.PollInterval <= 0 {
		invalid = append(invalid, "poll_interval")
	}

	if len(invalid) > 0 {
		return fmt.Errorf("config: invalid values for: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// PollSpec renders the poll interval as a cron schedule.
func (c Config) PollSpec() string {
	return "@every " + c.PollInterval.String()
}

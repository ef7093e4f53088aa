package initializers

import (
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

type rawConfig struct {
	DBURL          string `long:"db-url" env:"DB_URL" description:"Postgres connection string" required:"true"`
	SkipMigrations bool   `long:"skip-migrations" env:"SKIP_MIGRATIONS" description:"Do not apply pending schema migrations on start-up"`
	Port           string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	Secret         string `long:"secret" env:"SECRET" description:"HMAC key used to sign session tokens" required:"true"`

	PublishTimezone string `long:"publish-timezone" env:"PUBLISH_TIMEZONE" description:"IANA zone whose midnight scheduled content goes live at (empty keeps 06:00 UTC)"`
	SweepInterval   int    `long:"sweep-interval" env:"SWEEP_INTERVAL" default:"0" description:"Seconds between background auto-publish sweeps (0 disables)"`
	RequestTimeout  int    `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"15" description:"Per-request backend timeout in seconds"`
	CORSOrigins     string `long:"cors-origins" env:"CORS_ORIGINS" default:"*" description:"Comma separated list of allowed browser origins"`

	ResendAPIKey         string `long:"resend-api-key" env:"RESEND_API_KEY" description:"Resend API key for moderation alerts"`
	ResendFromEmail      string `long:"resend-from-email" env:"RESEND_FROM_EMAIL" description:"Sender address for outgoing email"`
	ModerationAlertEmail string `long:"moderation-alert-email" env:"MODERATION_ALERT_EMAIL" description:"Where new moderation queue items are reported"`

	FirebaseAuthEnabled bool   `long:"firebase-auth" env:"FIREBASE_AUTH_ENABLED" description:"Accept Firebase ID tokens at /auth/firebase"`
	FirebaseCredentials string `long:"firebase-credentials" env:"FIREBASE_SERVICE_ACCOUNT_PATH" description:"Path to a Firebase service account file (ADC when empty)"`
}

// Config is the resolved application configuration.
type Config struct {
	DBURL          string
	SkipMigrations bool
	Port           string
	Secret         string

	PublishLocation *time.Location
	SweepInterval   time.Duration
	RequestTimeout  time.Duration
	CORSOrigins     []string

	ResendAPIKey         string
	ResendFromEmail      string
	ModerationAlertEmail string

	FirebaseAuthEnabled bool
	FirebaseCredentials string
}

var AppConfig *Config

// LoadConfig parses flags and environment into AppConfig. It returns nil, nil
// when help was requested.
func LoadConfig(args []string) (*Config, error) {
	var raw rawConfig

	parser := flags.NewParser(&raw, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg, err := raw.resolve()
	if err != nil {
		return nil, err
	}

	AppConfig = cfg
	return cfg, nil
}

func (raw rawConfig) resolve() (*Config, error) {
	if raw.DBURL == "" || raw.Secret == "" {
		return nil, fmt.Errorf("DB_URL and SECRET must not be empty")
	}

	cfg := &Config{
		DBURL:                raw.DBURL,
		SkipMigrations:       raw.SkipMigrations,
		Port:                 raw.Port,
		Secret:               raw.Secret,
		SweepInterval:        time.Duration(raw.SweepInterval) * time.Second,
		RequestTimeout:       time.Duration(raw.RequestTimeout) * time.Second,
		ResendAPIKey:         raw.ResendAPIKey,
		ResendFromEmail:      raw.ResendFromEmail,
		ModerationAlertEmail: raw.ModerationAlertEmail,
		FirebaseAuthEnabled:  raw.FirebaseAuthEnabled,
		FirebaseCredentials:  raw.FirebaseCredentials,
	}

	if raw.PublishTimezone != "" {
		loc, err := time.LoadLocation(raw.PublishTimezone)
		if err != nil {
			return nil, fmt.Errorf("invalid PUBLISH_TIMEZONE %q: %w", raw.PublishTimezone, err)
		}
		cfg.PublishLocation = loc
	}

	if raw.SweepInterval < 0 {
		return nil, fmt.Errorf("SWEEP_INTERVAL must not be negative")
	}
	if raw.RequestTimeout <= 0 {
		return nil, fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	for _, origin := range strings.Split(raw.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	return cfg, nil
}

package config

import (
	"errors"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment        string `envconfig:"ENV" default:"development"`
	Port               string `envconfig:"PORT" default:"8080"`
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`

	// Allowed CORS origin and the base URL used in password reset links.
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:3000"`
	ClientURL   string `envconfig:"CLIENT_URL" default:"http://localhost:3000"`

	// Auth settings
	JWTSecret          string `envconfig:"JWT_SECRET"`
	RefreshTokenSecret string `envconfig:"REFRESH_TOKEN_SECRET"`
	AccessTokenTTLMin  int    `envconfig:"ACCESS_TOKEN_TTL_MIN" default:"60"`
	RefreshTokenTTLHr  int    `envconfig:"REFRESH_TOKEN_TTL_HR" default:"168"`
	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`

	// Generative AI settings
	GeminiAPIKey        string `envconfig:"GEMINI_API_KEY"`
	GeminiModel         string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	AIRequestTimeoutSec int    `envconfig:"AI_REQUEST_TIMEOUT_SEC" default:"60"`

	// Content aggregator settings
	DevToBaseURL             string `envconfig:"DEVTO_BASE_URL" default:"https://dev.to/api"`
	RSS2JSONBaseURL          string `envconfig:"RSS2JSON_BASE_URL" default:"https://api.rss2json.com/v1/api.json"`
	MediumFeedBaseURL        string `envconfig:"MEDIUM_FEED_BASE_URL" default:"https://medium.com/feed/tag"`
	ContentRequestTimeoutSec int    `envconfig:"CONTENT_REQUEST_TIMEOUT_SEC" default:"10"`

	// GCP settings. SecretsProjectID enables Secret Manager lookups for empty secrets.
	GCPProjectID      string `envconfig:"GCP_PROJECT_ID"`
	SecretsProjectID  string `envconfig:"SECRETS_PROJECT_ID"`
	PubSubEventsTopic string `envconfig:"PUBSUB_EVENTS_TOPIC"`
	// PubSubEmulatorHost is only read by cmd/setup-pubsub-local; the client
	// library picks it up from the environment on its own.
	PubSubEmulatorHost string `envconfig:"PUBSUB_EMULATOR_HOST"`

	// Mail settings
	SendGridAPIKey  string `envconfig:"SENDGRID_API_KEY"`
	MailFromName    string `envconfig:"MAIL_FROM_NAME" default:"SkillPath"`
	MailFromAddress string `envconfig:"MAIL_FROM_ADDRESS" default:"no-reply@skillpath.dev"`

	// Email worker settings
	EmailQueueName           string `envconfig:"EMAIL_QUEUE_NAME" default:"email_queue"`
	EmailPollTimeoutSec      int    `envconfig:"EMAIL_POLL_TIMEOUT_SEC" default:"30"`
	EmailPollMaxMsg          int    `envconfig:"EMAIL_POLL_MAX_MSG" default:"1"`
	EmailMaxRetries          int    `envconfig:"EMAIL_MAX_RETRIES" default:"5"`
	EmailBackoffInitialSec   int    `envconfig:"EMAIL_BACKOFF_INITIAL_SEC" default:"1"`
	EmailBackoffMaxSec       int    `envconfig:"EMAIL_BACKOFF_MAX_SEC" default:"60"`
	EmailDeadLetterQueueName string `envconfig:"EMAIL_DEAD_LETTER_QUEUE_NAME" default:"email_queue_dlq"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether internal error details may be returned to clients.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// RefreshSecret falls back to the access token secret when no dedicated one is set.
func (c *Config) RefreshSecret() string {
	if c.RefreshTokenSecret != "" {
		return c.RefreshTokenSecret
	}
	return c.JWTSecret
}

// Validate checks settings that can only be verified after secrets are resolved.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

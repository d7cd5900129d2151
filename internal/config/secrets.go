package config

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// AccessFunc returns the latest payload of the named secret.
type AccessFunc func(ctx context.Context, name string) (string, error)

// secretBindings maps Secret Manager secret ids to the config fields they fill.
func (c *Config) secretBindings() map[string]*string {
	return map[string]*string{
		"jwt-secret":           &c.JWTSecret,
		"refresh-token-secret": &c.RefreshTokenSecret,
		"gemini-api-key":       &c.GeminiAPIKey,
		"sendgrid-api-key":     &c.SendGridAPIKey,
	}
}

// ResolveSecrets fills empty secret fields from GCP Secret Manager when
// SECRETS_PROJECT_ID is set. Values already present in the environment win.
func ResolveSecrets(ctx context.Context, cfg *Config) error {
	if cfg.SecretsProjectID == "" {
		return nil
	}
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create Secret Manager client: %w", err)
	}
	defer client.Close()

	access := func(ctx context.Context, name string) (string, error) {
		res, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
		if err != nil {
			return "", err
		}
		return string(res.Payload.Data), nil
	}
	return resolveWith(ctx, cfg, access)
}

func resolveWith(ctx context.Context, cfg *Config, access AccessFunc) error {
	for id, field := range cfg.secretBindings() {
		if *field != "" {
			continue
		}
		name := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", cfg.SecretsProjectID, id)
		value, err := access(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to access secret %s: %w", id, err)
		}
		*field = value
	}
	return nil
}

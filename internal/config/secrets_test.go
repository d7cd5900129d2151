package config

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWithFillsOnlyEmptyFields(t *testing.T) {
	cfg := &Config{SecretsProjectID: "proj", JWTSecret: "from-env"}
	var requested []string
	access := func(_ context.Context, name string) (string, error) {
		requested = append(requested, name)
		parts := strings.Split(name, "/")
		return "sm-" + parts[3], nil
	}

	require.NoError(t, resolveWith(context.Background(), cfg, access))

	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, "sm-gemini-api-key", cfg.GeminiAPIKey)
	assert.Equal(t, "sm-sendgrid-api-key", cfg.SendGridAPIKey)
	assert.Equal(t, "sm-refresh-token-secret", cfg.RefreshTokenSecret)
	assert.Len(t, requested, 3)
	assert.Contains(t, requested, "projects/proj/secrets/gemini-api-key/versions/latest")
}

func TestResolveWithPropagatesErrors(t *testing.T) {
	cfg := &Config{SecretsProjectID: "proj"}
	access := func(context.Context, string) (string, error) {
		return "", errors.New("permission denied")
	}
	err := resolveWith(context.Background(), cfg, access)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestResolveSecretsNoProjectIsNoop(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ResolveSecrets(context.Background(), cfg))
	assert.Empty(t, cfg.JWTSecret)
}

func TestRefreshSecretFallback(t *testing.T) {
	cfg := &Config{JWTSecret: "a"}
	assert.Equal(t, "a", cfg.RefreshSecret())
	cfg.RefreshTokenSecret = "b"
	assert.Equal(t, "b", cfg.RefreshSecret())
}

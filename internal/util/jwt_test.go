package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	now := time.Now()
	tok, err := IssueJWT("user-1", "ada@example.com", TokenTypeAccess, "s3cret", time.Hour, now)
	require.NoError(t, err)

	claims, err := ValidateJWT(tok, TokenTypeAccess, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestValidateRejects(t *testing.T) {
	now := time.Now()
	access, err := IssueJWT("user-1", "", TokenTypeAccess, "s3cret", time.Hour, now)
	require.NoError(t, err)
	expired, err := IssueJWT("user-1", "", TokenTypeAccess, "s3cret", time.Minute, now.Add(-time.Hour))
	require.NoError(t, err)

	_, err = ValidateJWT(access, TokenTypeAccess, "other")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateJWT(access, TokenTypeRefresh, "s3cret")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateJWT(expired, TokenTypeAccess, "s3cret")
	assert.ErrorIs(t, err, ErrExpiredToken)

	_, err = ValidateJWT("not-a-token", TokenTypeAccess, "s3cret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

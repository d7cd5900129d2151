package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"skillpath/internal/model"
	"skillpath/internal/util"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTokens = TokenSettings{AccessSecret: "access", RefreshSecret: "refresh", AccessTTL: time.Hour, RefreshTTL: 7 * 24 * time.Hour}

func newUserSvc(google GoogleVerifier) (*userService, *fakeUserRepo, *fakeMail) {
	repo := &fakeUserRepo{}
	mail := &fakeMail{}
	svc := NewUserService(repo, google, mail, testTokens, "http://localhost:3000/", zerolog.Nop()).(*userService)
	return svc, repo, mail
}

func TestRegisterLoginRefreshLogout(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newUserSvc(&fakeGoogle{})

	res, err := svc.Register(ctx, "ada", "Ada@Example.com", "Secret123")
	require.NoError(t, err)
	assert.True(t, res.IsNewUser)
	assert.Equal(t, "ada@example.com", res.User.Email)

	claims, err := util.ValidateJWT(res.Token, util.TokenTypeAccess, "access")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.Subject)

	_, err = svc.Register(ctx, "other", "ada@example.com", "Secret123")
	assert.ErrorIs(t, err, ErrEmailTaken)
	_, err = svc.Register(ctx, "ADA", "new@example.com", "Secret123")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Login(ctx, "ada@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "Secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	login, err := svc.Login(ctx, "ada@example.com", "Secret123")
	require.NoError(t, err)
	assert.False(t, login.IsNewUser)

	// The earlier refresh token was superseded by the login.
	_, err = svc.Refresh(ctx, res.RefreshToken)
	if res.RefreshToken != login.RefreshToken {
		assert.ErrorIs(t, err, ErrInvalidRefreshToken)
	}
	refreshed, err := svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Token)
	assert.Equal(t, "ada", refreshed.User.Username)

	_, err = svc.Refresh(ctx, login.Token)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	require.NoError(t, svc.Logout(ctx, login.User.ID))
	_, err = svc.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestForgotAndResetPassword(t *testing.T) {
	ctx := context.Background()
	svc, repo, mail := newUserSvc(&fakeGoogle{})
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.clock = func() time.Time { return now }

	_, err := svc.Register(ctx, "ada", "ada@example.com", "Secret123")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ForgotPassword(ctx, "ghost@example.com"), ErrUserNotFound)
	require.NoError(t, svc.ForgotPassword(ctx, "ada@example.com"))

	require.Len(t, mail.sent, 1)
	token := *repo.users[0].ResetPasswordToken
	assert.Len(t, token, 40)
	assert.Contains(t, mail.sent[0].TextBody, "http://localhost:3000/reset-password/"+token)

	assert.ErrorIs(t, svc.ResetPassword(ctx, "bogus", "NewSecret1"), ErrInvalidResetToken)

	now = now.Add(2 * time.Hour)
	assert.ErrorIs(t, svc.ResetPassword(ctx, token, "NewSecret1"), ErrInvalidResetToken)

	now = now.Add(-90 * time.Minute)
	require.NoError(t, svc.ResetPassword(ctx, token, "NewSecret1"))
	_, err = svc.Login(ctx, "ada@example.com", "NewSecret1")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.ResetPassword(ctx, token, "NewSecret2"), ErrInvalidResetToken)
}

func TestGoogleLogin(t *testing.T) {
	ctx := context.Background()
	google := &fakeGoogle{identity: &GoogleIdentity{Subject: "g-1", Email: "ada@example.com", EmailVerified: true}}
	svc, repo, _ := newUserSvc(google)

	_, err := svc.GoogleLogin(ctx, "tok", "ada@example.com", "")
	assert.ErrorIs(t, err, ErrUsernameRequired)
	_, err = svc.GoogleLogin(ctx, "tok", "ada@example.com", " ab ")
	assert.ErrorIs(t, err, ErrUsernameTooShort)

	res, err := svc.GoogleLogin(ctx, "tok", "ada@example.com", "ada")
	require.NoError(t, err)
	assert.True(t, res.IsNewUser)
	require.NotNil(t, repo.users[0].GoogleID)
	assert.Equal(t, "g-1", *repo.users[0].GoogleID)

	again, err := svc.GoogleLogin(ctx, "tok", "ada@example.com", "")
	require.NoError(t, err)
	assert.False(t, again.IsNewUser)

	google.identity = &GoogleIdentity{Subject: "g-2", Email: "ada@example.com", EmailVerified: true}
	_, err = svc.GoogleLogin(ctx, "tok", "ada@example.com", "")
	assert.ErrorIs(t, err, ErrAccountConflict)

	google.identity = &GoogleIdentity{Subject: "g-3", Email: "bob@example.com", EmailVerified: true}
	_, err = svc.GoogleLogin(ctx, "tok", "bob@example.com", "Ada")
	var taken *UsernameTakenError
	require.ErrorAs(t, err, &taken)
	assert.True(t, strings.HasPrefix(taken.Suggested, "Ada"))
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.GoogleLogin(ctx, "tok", "mallory@example.com", "mallory")
	assert.ErrorIs(t, err, ErrEmailMismatch)

	google.identity = &GoogleIdentity{Subject: "g-4", Email: "eve@example.com"}
	_, err = svc.GoogleLogin(ctx, "tok", "eve@example.com", "eve")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	google.err = fmt.Errorf("%w: expired", ErrInvalidGoogleToken)
	_, err = svc.GoogleLogin(ctx, "tok", "eve@example.com", "eve")
	assert.ErrorIs(t, err, ErrInvalidGoogleToken)
}

func TestGoogleLoginLinksPasswordAccount(t *testing.T) {
	ctx := context.Background()
	google := &fakeGoogle{identity: &GoogleIdentity{Subject: "g-9", Email: "ada@example.com", EmailVerified: true}}
	svc, repo, _ := newUserSvc(google)
	_, err := svc.Register(ctx, "ada", "ada@example.com", "Secret123")
	require.NoError(t, err)

	res, err := svc.GoogleLogin(ctx, "tok", "ada@example.com", "")
	require.NoError(t, err)
	assert.False(t, res.IsNewUser)
	require.NotNil(t, repo.users[0].GoogleID)
	assert.Equal(t, "g-9", *repo.users[0].GoogleID)
}

func TestUsageAll(t *testing.T) {
	usage := newFakeUsageRepo()
	now := time.Now()
	usage.fill("u1", model.FeatureCareerTrack, now, 3)
	usage.fill("u1", model.FeatureChatbot, now, 4)
	svc := NewUsageService(usersWith("u1"), usage, zerolog.Nop())

	all, err := svc.All(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.False(t, all[model.FeatureCareerTrack].CanUse)
	assert.Equal(t, 0, all[model.FeatureCareerTrack].RemainingCount)
	assert.Equal(t, 6, all[model.FeatureChatbot].RemainingCount)
	assert.Equal(t, 10, all[model.FeatureRoadmap].RemainingCount)
	assert.Equal(t, 3, all[model.FeatureAISuggestions].RemainingCount)
}

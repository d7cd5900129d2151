package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	mrand "math/rand/v2"
	"strings"
	"time"

	"skillpath/internal/mailer"
	"skillpath/internal/model"
	"skillpath/internal/repository"
	"skillpath/internal/util"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already registered")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	ErrEmailMismatch    = errors.New("token email does not match")
	ErrEmailNotVerified = errors.New("email not verified by google")
	ErrUsernameRequired = errors.New("username is required for registration")
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")
	ErrAccountConflict  = errors.New("email registered with a different google account")
)

const (
	resetTokenTTL     = time.Hour
	minGoogleUsername = 3
)

// UsernameTakenError carries an alternative the client can offer instead.
type UsernameTakenError struct {
	Suggested string
}

func (e *UsernameTakenError) Error() string { return ErrUsernameTaken.Error() }
func (e *UsernameTakenError) Unwrap() error { return ErrUsernameTaken }

type TokenSettings struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type AuthResult struct {
	Token        string
	RefreshToken string
	User         *model.User
	IsNewUser    bool
}

// UserService owns accounts, sessions and password recovery.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GoogleLogin(ctx context.Context, idToken, email, username string) (*AuthResult, error)
	Exists(ctx context.Context, email string) (bool, error)
	Get(ctx context.Context, id string) (*model.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	// Refresh issues a new access token; RefreshToken is left empty.
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	Logout(ctx context.Context, userID string) error
}

type userService struct {
	repo      repository.UserRepository
	google    GoogleVerifier
	mail      mailer.Enqueuer
	tokens    TokenSettings
	clientURL string
	logger    zerolog.Logger
	clock     func() time.Time
}

func NewUserService(
	repo repository.UserRepository,
	google GoogleVerifier,
	mail mailer.Enqueuer,
	tokens TokenSettings,
	clientURL string,
	logger zerolog.Logger,
) UserService {
	return &userService{
		repo:      repo,
		google:    google,
		mail:      mail,
		tokens:    tokens,
		clientURL: strings.TrimRight(clientURL, "/"),
		logger:    logger.With().Str("service", "UserService").Logger(),
		clock:     time.Now,
	}
}

func (s *userService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("looking up email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	taken, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("looking up username: %w", err)
	}
	if taken != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	u := &model.User{Username: username, Email: email, PasswordHash: string(hash)}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrUsernameTaken
		}
		s.logger.Error().Err(err).Str("email", email).Msg("Failed to create user")
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return s.startSession(ctx, u, true)
}

func (s *userService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("looking up email: %w", err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.startSession(ctx, u, false)
}

func (s *userService) GoogleLogin(ctx context.Context, idToken, email, username string) (*AuthResult, error) {
	email = normalizeEmail(email)
	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Google token verification failed")
		if errors.Is(err, ErrInvalidGoogleToken) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidGoogleToken, err)
	}
	if normalizeEmail(identity.Email) != email {
		return nil, ErrEmailMismatch
	}
	if !identity.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("looking up email: %w", err)
	}
	if u != nil {
		if u.GoogleID != nil && *u.GoogleID != identity.Subject {
			return nil, ErrAccountConflict
		}
		if u.GoogleID == nil {
			if err := s.repo.LinkGoogleID(ctx, u.ID, identity.Subject); err != nil {
				return nil, fmt.Errorf("linking google account: %w", err)
			}
			sub := identity.Subject
			u.GoogleID = &sub
		}
		return s.startSession(ctx, u, false)
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len([]rune(username)) < minGoogleUsername {
		return nil, ErrUsernameTooShort
	}
	taken, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("looking up username: %w", err)
	}
	if taken != nil {
		return nil, &UsernameTakenError{Suggested: fmt.Sprintf("%s%d", username, mrand.IntN(1000))}
	}

	// Google accounts never log in with a password; store an unguessable one.
	secret, err := randomHex(32)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	sub := identity.Subject
	u = &model.User{Username: username, Email: email, PasswordHash: string(hash), GoogleID: &sub}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return s.startSession(ctx, u, true)
}

func (s *userService) Exists(ctx context.Context, email string) (bool, error) {
	u, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("looking up email: %w", err)
	}
	return u != nil, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *userService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("looking up email: %w", err)
	}
	if u == nil {
		return ErrUserNotFound
	}
	token, err := randomHex(20)
	if err != nil {
		return err
	}
	if err := s.repo.SetResetToken(ctx, u.ID, token, s.clock().Add(resetTokenTTL)); err != nil {
		return fmt.Errorf("storing reset token: %w", err)
	}
	resetURL := s.clientURL + "/reset-password/" + token
	if err := s.mail.Enqueue(ctx, mailer.PasswordResetMessage(u.Email, u.Username, resetURL)); err != nil {
		s.logger.Error().Err(err).Str("user_id", u.ID).Msg("Failed to queue password reset email")
		return fmt.Errorf("queueing reset email: %w", err)
	}
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, token, password string) error {
	u, err := s.repo.GetUserByResetToken(ctx, token, s.clock())
	if err != nil {
		return fmt.Errorf("looking up reset token: %w", err)
	}
	if u == nil {
		return ErrInvalidResetToken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, u.ID, string(hash)); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}

func (s *userService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := util.ValidateJWT(refreshToken, util.TokenTypeRefresh, s.tokens.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}
	u, err := s.repo.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	// Only the most recently issued refresh token is honoured; logout clears it.
	if u == nil || u.RefreshToken == nil || *u.RefreshToken != refreshToken {
		return nil, ErrInvalidRefreshToken
	}
	access, err := util.IssueJWT(u.ID, u.Email, util.TokenTypeAccess, s.tokens.AccessSecret, s.tokens.AccessTTL, s.clock())
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: access, User: u}, nil
}

func (s *userService) Logout(ctx context.Context, userID string) error {
	if err := s.repo.SetRefreshToken(ctx, userID, nil); err != nil {
		return fmt.Errorf("clearing refresh token: %w", err)
	}
	return nil
}

func (s *userService) startSession(ctx context.Context, u *model.User, isNew bool) (*AuthResult, error) {
	now := s.clock()
	access, err := util.IssueJWT(u.ID, u.Email, util.TokenTypeAccess, s.tokens.AccessSecret, s.tokens.AccessTTL, now)
	if err != nil {
		return nil, err
	}
	refresh, err := util.IssueJWT(u.ID, "", util.TokenTypeRefresh, s.tokens.RefreshSecret, s.tokens.RefreshTTL, now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetRefreshToken(ctx, u.ID, &refresh); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}
	u.RefreshToken = &refresh
	return &AuthResult{Token: access, RefreshToken: refresh, User: u, IsNewUser: isNew}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating random token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

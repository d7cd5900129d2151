package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"skillpath/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDuplicateUser = errors.New("duplicate_user")

// UserRepository persists accounts. Getters return nil, nil when nothing matches.
type UserRepository interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error)
	SetRefreshToken(ctx context.Context, id string, token *string) error
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	LinkGoogleID(ctx context.Context, id, googleID string) error
}

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) UserRepository {
	return &userRepo{pool: pool}
}

const userColumns = `id, username, email, password_hash, google_id, refresh_token,
	reset_password_token, reset_password_expires, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.GoogleID, &u.RefreshToken,
		&u.ResetPasswordToken, &u.ResetPasswordExpires, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) CreateUser(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users (username, email, password_hash, google_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, q, u.Username, u.Email, u.PasswordHash, u.GoogleID).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("creating user %s: %w", u.Email, err)
	}
	return nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	return u, nil
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

func (r *userRepo) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username))
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return u, nil
}

func (r *userRepo) GetUserByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE reset_password_token = $1 AND reset_password_expires > $2`
	u, err := scanUser(r.pool.QueryRow(ctx, q, token, now))
	if err != nil {
		return nil, fmt.Errorf("getting user by reset token: %w", err)
	}
	return u, nil
}

func (r *userRepo) SetRefreshToken(ctx context.Context, id string, token *string) error {
	const q = `UPDATE users SET refresh_token = $2, updated_at = now() WHERE id = $1`
	if _, err := r.pool.Exec(ctx, q, id, token); err != nil {
		return fmt.Errorf("updating refresh token for user %s: %w", id, err)
	}
	return nil
}

func (r *userRepo) SetResetToken(ctx context.Context, id, token string, expires time.Time) error {
	const q = `UPDATE users SET reset_password_token = $2, reset_password_expires = $3, updated_at = now() WHERE id = $1`
	if _, err := r.pool.Exec(ctx, q, id, token, expires); err != nil {
		return fmt.Errorf("storing reset token for user %s: %w", id, err)
	}
	return nil
}

// UpdatePassword also invalidates any pending reset token.
func (r *userRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const q = `
		UPDATE users
		SET password_hash = $2, reset_password_token = NULL, reset_password_expires = NULL, updated_at = now()
		WHERE id = $1
	`
	if _, err := r.pool.Exec(ctx, q, id, passwordHash); err != nil {
		return fmt.Errorf("updating password for user %s: %w", id, err)
	}
	return nil
}

func (r *userRepo) LinkGoogleID(ctx context.Context, id, googleID string) error {
	const q = `UPDATE users SET google_id = $2, updated_at = now() WHERE id = $1 AND google_id IS NULL`
	if _, err := r.pool.Exec(ctx, q, id, googleID); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("linking google account for user %s: %w", id, err)
	}
	return nil
}

package auth

import (
	"context"
	"errors"

	"github.com/tabdeel/pulse/internal/users"
)

var (
	// ErrInvalidCredentials covers unknown emails, wrong passwords and disabled users alike.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrResetTokenInvalid is returned for an unknown, used or expired reset token.
	ErrResetTokenInvalid = errors.New("auth: reset token invalid or expired")
)

// Directory is the slice of the user directory the auth flows need.
type Directory interface {
	FindByEmail(email string) (users.User, bool)
	Get(id int64) (users.User, bool)
	SetPassword(id int64, hash string) error
}

// ResetMailer queues the password reset email.
type ResetMailer interface {
	EnqueuePasswordResetEmail(ctx context.Context, to, name, token string) error
}

// TokenStore issues single-use password reset tokens.
type TokenStore interface {
	Issue(ctx context.Context, userID int64) (string, error)
	Consume(ctx context.Context, token string) (int64, error)
}

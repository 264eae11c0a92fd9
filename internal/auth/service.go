package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/tabdeel/pulse/internal/users"
)

// Service wraps authentication business rules.
type Service struct {
	directory  Directory
	tokens     TokenStore
	mailer     ResetMailer
	logger     *slog.Logger
	bcryptCost int
}

// NewService constructs a new Service.
func NewService(directory Directory, tokens TokenStore, mailer ResetMailer, logger *slog.Logger, bcryptCost int) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{directory: directory, tokens: tokens, mailer: mailer, logger: logger, bcryptCost: bcryptCost}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (users.User, error) {
	user, ok := s.directory.FindByEmail(email)
	if !ok {
		return users.User{}, ErrInvalidCredentials
	}
	if user.Status != users.StatusActive || user.PasswordHash == "" {
		return users.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return users.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// RequestPasswordReset sends a reset link when email belongs to a user. Unknown
// emails succeed silently.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, ok := s.directory.FindByEmail(strings.TrimSpace(email))
	if !ok {
		s.logger.Info("password reset for unknown email")
		return nil
	}
	return s.EnqueuePasswordReset(ctx, user.ID, user.Email, user.Name)
}

// EnqueuePasswordReset issues a token and queues the reset email.
func (s *Service) EnqueuePasswordReset(ctx context.Context, userID int64, email, name string) error {
	token, err := s.tokens.Issue(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.mailer.EnqueuePasswordResetEmail(ctx, email, name, token); err != nil {
		return fmt.Errorf("auth: enqueue reset email: %w", err)
	}
	return nil
}

// ResetPassword consumes token and stores the new password.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	userID, err := s.tokens.Consume(ctx, token)
	if err != nil {
		return err
	}
	if _, ok := s.directory.Get(userID); !ok {
		return ErrResetTokenInvalid
	}
	hash, err := users.HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	return s.directory.SetPassword(userID, hash)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/faycal55/respira/internal/auth"
	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/internal/repository"
	apperrors "github.com/faycal55/respira/pkg/errors"
)

const bcryptCost = 12

// MinPasswordLength matches the sign-up form.
const MinPasswordLength = 6

// AuthService implements registration, login and token lifecycle.
type AuthService struct {
	users    repository.UserRepository
	tokens   repository.RefreshTokenRepository
	resets   repository.PasswordResetRepository
	jwt      *auth.JWTManager
	events   EventPublisher
	logger   *slog.Logger
	resetTTL time.Duration
	cost     int
	now      func() time.Time
}

func NewAuthService(
	users repository.UserRepository,
	tokens repository.RefreshTokenRepository,
	resets repository.PasswordResetRepository,
	jwt *auth.JWTManager,
	events EventPublisher,
	resetTTL time.Duration,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		resets:   resets,
		jwt:      jwt,
		events:   events,
		logger:   logger,
		resetTTL: resetTTL,
		cost:     bcryptCost,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
}

type LoginInput struct {
	Email    string
	Password string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperrors.InvalidInput(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

// Register creates the account and its profile, then signs the user in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Session, error) {
	email := normalizeEmail(in.Email)
	firstName := strings.TrimSpace(in.FirstName)
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.InvalidInput("email is invalid")
	}
	if firstName == "" {
		return nil, apperrors.InvalidInput("first name is required")
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := &domain.Profile{ID: user.ID, FirstName: firstName, CreatedAt: now, UpdatedAt: now}

	if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.events.PublishUserRegistered(ctx, user, firstName); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered", slog.String("user_id", user.ID))
	return &domain.Session{User: *user, Tokens: *tokens}, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*domain.Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if in.Password == "" {
		return nil, apperrors.InvalidInput("password is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperrors.Unauthorized("invalid email or password")
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("user_id", user.ID))
	return &domain.Session{User: *user, Tokens: *tokens}, nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.InvalidInput("refresh token is required")
	}

	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	hash := auth.HashToken(refreshToken)
	stored, err := s.tokens.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("refresh token not found")
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	if stored.RevokedAt != nil {
		return nil, apperrors.Unauthorized("refresh token has been revoked")
	}
	if s.now().After(stored.ExpiresAt) {
		return nil, apperrors.Unauthorized("refresh token has expired")
	}

	if err := s.tokens.Revoke(ctx, hash); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Lost a race with a concurrent refresh of the same token.
			return nil, apperrors.Unauthorized("refresh token has been revoked")
		}
		return nil, fmt.Errorf("revoke refresh token: %w", err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("account no longer exists")
		}
		return nil, fmt.Errorf("get user for token refresh: %w", err)
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "tokens refreshed", slog.String("user_id", user.ID))
	return tokens, nil
}

// Logout revokes refreshToken, or every token of the user when it is empty.
func (s *AuthService) Logout(ctx context.Context, userID, refreshToken string) error {
	if refreshToken == "" {
		if err := s.tokens.RevokeByUserID(ctx, userID); err != nil {
			return fmt.Errorf("revoke refresh tokens: %w", err)
		}
		s.logger.InfoContext(ctx, "user logged out everywhere", slog.String("user_id", userID))
		return nil
	}

	hash := auth.HashToken(refreshToken)
	stored, err := s.tokens.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get refresh token: %w", err)
	}
	if stored.UserID != userID {
		return apperrors.Forbidden("refresh token belongs to another account")
	}
	if err := s.tokens.Revoke(ctx, hash); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged out", slog.String("user_id", userID))
	return nil
}

// ForgotPassword stores a single-use reset token and hands the raw token to
// the mailer via an event. Unknown emails succeed silently.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.InfoContext(ctx, "password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}

	token, err := auth.NewResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	reset := &domain.PasswordReset{
		UserID:    user.ID,
		TokenHash: auth.HashToken(token),
		ExpiresAt: s.now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.events.PublishPasswordReset(ctx, user.ID, user.Email, token); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.password_reset event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset requested", slog.String("user_id", user.ID))
	return nil
}

// ResetPassword consumes a reset token, sets the new password and signs the
// user out of every device.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return apperrors.InvalidInput("reset token is required")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash := auth.HashToken(token)
	reset, err := s.resets.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Unauthorized("invalid reset token")
		}
		return fmt.Errorf("get reset token: %w", err)
	}
	now := s.now()
	if reset.UsedAt != nil || now.After(reset.ExpiresAt) {
		return apperrors.Gone("reset token has expired")
	}
	if err := s.resets.MarkUsed(ctx, hash, now); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Gone("reset token has expired")
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	pw, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, reset.UserID, string(pw)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.tokens.RevokeByUserID(ctx, reset.UserID); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke refresh tokens after password reset",
			slog.String("user_id", reset.UserID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset completed", slog.String("user_id", reset.UserID))
	return nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	access, err := s.jwt.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, expiresAt, err := s.jwt.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.tokens.Create(ctx, user.ID, auth.HashToken(refresh), expiresAt); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

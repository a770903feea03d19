package repository

import (
	"context"
	"time"

	"github.com/faycal55/respira/internal/domain"
)

// UserRepository persists accounts.
type UserRepository interface {
	// CreateWithProfile inserts the user and its empty profile row atomically.
	CreateWithProfile(ctx context.Context, user *domain.User, profile *domain.Profile) error

	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// ProfileRepository persists the one profile row of each user.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	Update(ctx context.Context, profile *domain.Profile) error
}

// RefreshTokenRepository stores refresh token hashes.
type RefreshTokenRepository interface {
	Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeByUserID(ctx context.Context, userID string) error
}

// PasswordResetRepository stores single-use reset token hashes.
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *domain.PasswordReset) error
	GetByHash(ctx context.Context, tokenHash string) (*domain.PasswordReset, error)
	// MarkUsed fails with NotFound when the token was already used.
	MarkUsed(ctx context.Context, tokenHash string, at time.Time) error
}

// ConversationRepository persists conversations.
type ConversationRepository interface {
	Create(ctx context.Context, c *domain.Conversation) error
	GetByID(ctx context.Context, id string) (*domain.Conversation, error)
	// ListByUser returns a page of conversations, most recently updated first,
	// and the total count.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Conversation, int, error)
}

// MessageRepository persists chat messages.
type MessageRepository interface {
	// Create inserts the message and bumps the conversation's updated_at.
	Create(ctx context.Context, m *domain.Message) error
	// ListByConversation returns the messages in ascending created_at order.
	ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error)
}

type SubscriptionRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Subscription, error)
}

type BreathingSessionRepository interface {
	Create(ctx context.Context, s *domain.BreathingSession) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.BreathingSession, int, error)
}

type SupportRequestRepository interface {
	Create(ctx context.Context, r *domain.SupportRequest) error
}

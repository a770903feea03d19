package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/faycal55/respira/internal/domain"
)

// --- Repositories ---

type mockUserRepository struct{ mock.Mock }

func (m *mockUserRepository) CreateWithProfile(ctx context.Context, u *domain.User, p *domain.Profile) error {
	return m.Called(ctx, u, p).Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

type mockRefreshTokenRepository struct{ mock.Mock }

func (m *mockRefreshTokenRepository) Create(ctx context.Context, userID, hash string, expiresAt time.Time) error {
	return m.Called(ctx, userID, hash, expiresAt).Error(0)
}

func (m *mockRefreshTokenRepository) GetByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RefreshToken), args.Error(1)
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, hash string) error {
	return m.Called(ctx, hash).Error(0)
}

func (m *mockRefreshTokenRepository) RevokeByUserID(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockPasswordResetRepository struct{ mock.Mock }

func (m *mockPasswordResetRepository) Create(ctx context.Context, r *domain.PasswordReset) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockPasswordResetRepository) GetByHash(ctx context.Context, hash string) (*domain.PasswordReset, error) {
	args := m.Called(ctx, hash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PasswordReset), args.Error(1)
}

func (m *mockPasswordResetRepository) MarkUsed(ctx context.Context, hash string, at time.Time) error {
	return m.Called(ctx, hash, at).Error(0)
}

type mockProfileRepository struct{ mock.Mock }

func (m *mockProfileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *mockProfileRepository) Update(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}

type mockConversationRepository struct{ mock.Mock }

func (m *mockConversationRepository) Create(ctx context.Context, c *domain.Conversation) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockConversationRepository) GetByID(ctx context.Context, id string) (*domain.Conversation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Conversation), args.Error(1)
}

func (m *mockConversationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Conversation, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Conversation), args.Int(1), args.Error(2)
}

type mockMessageRepository struct{ mock.Mock }

func (m *mockMessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockMessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]domain.Message, error) {
	args := m.Called(ctx, conversationID)
	return args.Get(0).([]domain.Message), args.Error(1)
}

type mockSubscriptionRepository struct{ mock.Mock }

func (m *mockSubscriptionRepository) GetByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Subscription), args.Error(1)
}

type mockSupportRepository struct{ mock.Mock }

func (m *mockSupportRepository) Create(ctx context.Context, r *domain.SupportRequest) error {
	return m.Called(ctx, r).Error(0)
}

type mockBreathingRepository struct{ mock.Mock }

func (m *mockBreathingRepository) Create(ctx context.Context, s *domain.BreathingSession) error {
	return m.Called(ctx, s).Error(0)
}

func (m *mockBreathingRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.BreathingSession, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.BreathingSession), args.Int(1), args.Error(2)
}

// --- Collaborators ---

type mockEvents struct{ mock.Mock }

func (m *mockEvents) PublishUserRegistered(ctx context.Context, u *domain.User, firstName string) error {
	return m.Called(ctx, u, firstName).Error(0)
}

func (m *mockEvents) PublishPasswordReset(ctx context.Context, userID, email, token string) error {
	return m.Called(ctx, userID, email, token).Error(0)
}

func (m *mockEvents) PublishSupportRequested(ctx context.Context, r *domain.SupportRequest) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockEvents) PublishBreathingCompleted(ctx context.Context, s *domain.BreathingSession) error {
	return m.Called(ctx, s).Error(0)
}

type mockAI struct{ mock.Mock }

func (m *mockAI) Complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type mockSpeech struct{ mock.Mock }

func (m *mockSpeech) Synthesize(ctx context.Context, text, voiceID string) (string, error) {
	args := m.Called(ctx, text, voiceID)
	return args.String(0), args.Error(1)
}

func (m *mockSpeech) Transcribe(ctx context.Context, audio, language string) (string, error) {
	args := m.Called(ctx, audio, language)
	return args.String(0), args.Error(1)
}

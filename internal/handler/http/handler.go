package http

import (
	"context"

	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/internal/service"
	"github.com/faycal55/respira/pkg/pagination"
)

// The handlers depend on these narrow views of the services.

type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (*domain.Session, error)
	Login(ctx context.Context, in service.LoginInput) (*domain.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Logout(ctx context.Context, userID, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type ProfileService interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	Update(ctx context.Context, userID string, in domain.ProfileUpdate) (*domain.Profile, error)
}

type ConversationService interface {
	List(ctx context.Context, userID string, p pagination.Params) (pagination.Result[domain.Conversation], error)
	Create(ctx context.Context, userID, title string) (*domain.Conversation, error)
	Messages(ctx context.Context, userID, conversationID string) ([]domain.Message, error)
	AddMessage(ctx context.Context, userID, conversationID string, in service.AddMessageInput) (*domain.Message, error)
}

type FunctionsService interface {
	Chat(ctx context.Context, userID string, req domain.ChatRequest) (*domain.ChatResponse, error)
	TextToSpeech(ctx context.Context, req domain.TTSRequest) (*domain.TTSResponse, error)
	SpeechToText(ctx context.Context, req domain.STTRequest) (*domain.STTResponse, error)
	CheckSubscription(ctx context.Context, userID string) (*domain.SubscriptionStatus, error)
	ContactSupport(ctx context.Context, userID string, in domain.SupportRequest) (*domain.SupportRequest, error)
}

type BreathingService interface {
	Record(ctx context.Context, userID string, in service.RecordSessionInput) (*domain.BreathingSession, error)
	History(ctx context.Context, userID string, p pagination.Params) (pagination.Result[domain.BreathingSession], error)
}

// Services bundles everything NewRouter mounts.
type Services struct {
	Auth          AuthService
	Profiles      ProfileService
	Conversations ConversationService
	Functions     FunctionsService
	Breathing     BreathingService
}

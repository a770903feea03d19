// Package service holds the business rules of the Respira API.
package service

import (
	"context"

	"github.com/faycal55/respira/internal/domain"
)

// EventPublisher is the subset of *event.Producer the services use. Publish
// failures are logged by the caller, never returned to the client.
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User, firstName string) error
	PublishPasswordReset(ctx context.Context, userID, email, token string) error
	PublishSupportRequested(ctx context.Context, req *domain.SupportRequest) error
	PublishBreathingCompleted(ctx context.Context, s *domain.BreathingSession) error
}

// ChatCompleter produces the assistant's reply.
type ChatCompleter interface {
	Complete(ctx context.Context, req domain.ChatRequest) (string, error)
}

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) (string, error)
}

type SpeechTranscriber interface {
	Transcribe(ctx context.Context, audioBase64, language string) (string, error)
}

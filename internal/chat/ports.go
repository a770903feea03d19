package chat

import (
	"context"

	"github.com/faycal55/respira/internal/domain"
)

// ConversationService is the row storage for conversations and messages.
type ConversationService interface {
	ListConversations(ctx context.Context) ([]domain.Conversation, error)
	CreateConversation(ctx context.Context, title string) (*domain.Conversation, error)
	ListMessages(ctx context.Context, conversationID string) ([]domain.Message, error)
	AddMessage(ctx context.Context, conversationID string, role domain.Role, content string) (*domain.Message, error)
}

// Functions invokes the AI companion.
type Functions interface {
	Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)
}

// Alerter shows a blocking message to the user.
type Alerter interface {
	Alert(title, message string)
}

type AlertFunc func(title, message string)

func (f AlertFunc) Alert(title, message string) { f(title, message) }

// Speaker reads an assistant reply aloud when voice is enabled.
type Speaker interface {
	Speak(ctx context.Context, text, voiceID string) error
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/internal/repository"
	apperrors "github.com/faycal55/respira/pkg/errors"
	"github.com/faycal55/respira/pkg/pagination"
)

// DefaultTitle names conversations created without a title.
func DefaultTitle(t time.Time) string {
	return "Conversation du " + t.Format("02/01/2006")
}

// ConversationService manages a user's conversations and their messages.
// Conversations of other users are reported as not found.
type ConversationService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	logger        *slog.Logger
	now           func() time.Time
}

func NewConversationService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	logger *slog.Logger,
) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

type AddMessageInput struct {
	Role     domain.Role
	Content  string
	AudioURL string
}

func (s *ConversationService) List(ctx context.Context, userID string, p pagination.Params) (pagination.Result[domain.Conversation], error) {
	items, total, err := s.conversations.ListByUser(ctx, userID, p.PerPage, p.Offset)
	if err != nil {
		return pagination.Result[domain.Conversation]{}, fmt.Errorf("list conversations: %w", err)
	}
	return pagination.NewResult(items, total, p), nil
}

func (s *ConversationService) Create(ctx context.Context, userID, title string) (*domain.Conversation, error) {
	now := s.now()
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle(now)
	}

	c := &domain.Conversation{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.conversations.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	s.logger.InfoContext(ctx, "conversation created",
		slog.String("user_id", userID),
		slog.String("conversation_id", c.ID),
	)
	return c, nil
}

func (s *ConversationService) Messages(ctx context.Context, userID, conversationID string) ([]domain.Message, error) {
	if _, err := s.owned(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return msgs, nil
}

// AddMessage appends to the transcript and bumps the conversation's
// updated_at so it sorts first.
func (s *ConversationService) AddMessage(ctx context.Context, userID, conversationID string, in AddMessageInput) (*domain.Message, error) {
	if in.Role != domain.RoleUser && in.Role != domain.RoleAssistant {
		return nil, apperrors.InvalidInput("role must be user or assistant")
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperrors.InvalidInput("content is required")
	}
	if _, err := s.owned(ctx, userID, conversationID); err != nil {
		return nil, err
	}

	m := &domain.Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		Role:           in.Role,
		Content:        content,
		AudioURL:       in.AudioURL,
		CreatedAt:      s.now(),
	}
	if in.Role == domain.RoleUser {
		m.UserID = userID
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("add message: %w", err)
	}
	return m, nil
}

func (s *ConversationService) owned(ctx context.Context, userID, conversationID string) (*domain.Conversation, error) {
	c, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	if c.UserID != userID {
		return nil, apperrors.NotFound("conversation", conversationID)
	}
	return c, nil
}

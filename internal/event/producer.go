package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/faycal55/respira/internal/domain"
	pkgkafka "github.com/faycal55/respira/pkg/kafka"
	"github.com/faycal55/respira/pkg/logger"
)

// Kafka topics for Respira domain events.
var (
	TopicUserRegistered     = pkgkafka.Topic("user", "registered")
	TopicPasswordReset      = pkgkafka.Topic("user", "password_reset")
	TopicSupportRequested   = pkgkafka.Topic("support", "requested")
	TopicBreathingCompleted = pkgkafka.Topic("breathing", "completed")
)

const (
	AggregateTypeUser      = "user"
	AggregateTypeSupport   = "support_request"
	AggregateTypeBreathing = "breathing_session"
)

const SourceAPI = "respira-api"

type UserRegisteredData struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
}

// PasswordResetData carries the raw reset token so the mailer can build the
// link. Only its hash is stored.
type PasswordResetData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

type SupportRequestedData struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id,omitempty"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type BreathingCompletedData struct {
	SessionID      string `json:"session_id"`
	UserID         string `json:"user_id"`
	TechniqueID    string `json:"technique_id"`
	Cycles         int    `json:"cycles"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
}

// Producer publishes Respira domain events.
type Producer struct {
	kafka  pkgkafka.Publisher
	logger *slog.Logger
}

func NewProducer(kafka pkgkafka.Publisher, logger *slog.Logger) *Producer {
	return &Producer{kafka: kafka, logger: logger}
}

func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User, firstName string) error {
	return p.publish(ctx, TopicUserRegistered, user.ID, AggregateTypeUser, UserRegisteredData{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: firstName,
	})
}

func (p *Producer) PublishPasswordReset(ctx context.Context, userID, email, token string) error {
	return p.publish(ctx, TopicPasswordReset, userID, AggregateTypeUser, PasswordResetData{
		UserID: userID,
		Email:  email,
		Token:  token,
	})
}

func (p *Producer) PublishSupportRequested(ctx context.Context, req *domain.SupportRequest) error {
	return p.publish(ctx, TopicSupportRequested, req.ID, AggregateTypeSupport, SupportRequestedData{
		ID:      req.ID,
		UserID:  req.UserID,
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
}

func (p *Producer) PublishBreathingCompleted(ctx context.Context, s *domain.BreathingSession) error {
	return p.publish(ctx, TopicBreathingCompleted, s.ID, AggregateTypeBreathing, BreathingCompletedData{
		SessionID:      s.ID,
		UserID:         s.UserID,
		TechniqueID:    s.TechniqueID,
		Cycles:         s.Cycles,
		ElapsedSeconds: s.ElapsedSeconds,
	})
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	evt, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceAPI, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)
	return nil
}

package support

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/faycal55/respira/internal/event"
	pkgkafka "github.com/faycal55/respira/pkg/kafka"
)

// Handler turns events into mails.
type Handler struct {
	mailer       Mailer
	supportEmail string
	logger       *slog.Logger
}

func NewHandler(mailer Mailer, supportEmail string, logger *slog.Logger) *Handler {
	return &Handler{mailer: mailer, supportEmail: supportEmail, logger: logger}
}

// Topics lists what the handler consumes.
func Topics() []string {
	return []string{event.TopicSupportRequested, event.TopicPasswordReset, event.TopicUserRegistered}
}

func (h *Handler) Handle(ctx context.Context, e *pkgkafka.Event) error {
	switch e.EventType {
	case event.TopicSupportRequested:
		return h.handleSupportRequested(ctx, e)
	case event.TopicPasswordReset:
		return h.handlePasswordReset(ctx, e)
	case event.TopicUserRegistered:
		return h.handleUserRegistered(ctx, e)
	default:
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", e.EventType),
			slog.String("event_id", e.EventID),
		)
		return nil
	}
}

func (h *Handler) handleSupportRequested(ctx context.Context, e *pkgkafka.Event) error {
	var data event.SupportRequestedData
	if err := e.UnmarshalData(&data); err != nil {
		return fmt.Errorf("decode support request: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Demande n° %s\n", data.ID)
	fmt.Fprintf(&b, "De : %s <%s>\n", data.Name, data.Email)
	if data.UserID != "" {
		fmt.Fprintf(&b, "Compte : %s\n", data.UserID)
	}
	fmt.Fprintf(&b, "\n%s\n", data.Message)

	return h.send(ctx, Mail{
		To:      h.supportEmail,
		ReplyTo: data.Email,
		Subject: "[Respira] " + data.Subject,
		Body:    b.String(),
	})
}

func (h *Handler) handlePasswordReset(ctx context.Context, e *pkgkafka.Event) error {
	var data event.PasswordResetData
	if err := e.UnmarshalData(&data); err != nil {
		return fmt.Errorf("decode password reset: %w", err)
	}

	body := "Bonjour,\n\n" +
		"Vous avez demandé la réinitialisation de votre mot de passe Respira.\n" +
		"Saisissez ce code dans l'application :\n\n" + data.Token + "\n\n" +
		"Si vous n'êtes pas à l'origine de cette demande, ignorez ce message.\n"

	return h.send(ctx, Mail{
		To:      data.Email,
		ReplyTo: h.supportEmail,
		Subject: "Réinitialisation de votre mot de passe",
		Body:    body,
	})
}

func (h *Handler) handleUserRegistered(ctx context.Context, e *pkgkafka.Event) error {
	var data event.UserRegisteredData
	if err := e.UnmarshalData(&data); err != nil {
		return fmt.Errorf("decode user registration: %w", err)
	}

	return h.send(ctx, Mail{
		To:      data.Email,
		ReplyTo: h.supportEmail,
		Subject: "Bienvenue sur Respira",
		Body: fmt.Sprintf("Bonjour %s,\n\nBienvenue sur Respira. Prenez une grande inspiration, "+
			"nous sommes là pour vous accompagner.\n", data.FirstName),
	})
}

func (h *Handler) send(ctx context.Context, m Mail) error {
	if err := h.mailer.Send(ctx, m); err != nil {
		return fmt.Errorf("%s mailer: %w", h.mailer.Name(), err)
	}
	return nil
}

// ConsumerConfig configures NewConsumers.
type ConsumerConfig struct {
	Brokers []string
	GroupID string
}

// NewConsumers creates one consumer per topic. Every consumer dedupes by
// event id through store and dead-letters what it cannot deliver.
func NewConsumers(cfg ConsumerConfig, h *Handler, store pkgkafka.IdempotencyStore, dlq *pkgkafka.DLQ, logger *slog.Logger) []*pkgkafka.Consumer {
	handle := pkgkafka.Idempotent(store, h.Handle, logger)

	consumers := make([]*pkgkafka.Consumer, 0, len(Topics()))
	for _, topic := range Topics() {
		c := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
			Brokers: cfg.Brokers,
			GroupID: cfg.GroupID,
			Topic:   topic,
		}, handle, logger)
		if dlq != nil {
			c.WithDLQ(dlq)
		}
		consumers = append(consumers, c)
	}
	return consumers
}

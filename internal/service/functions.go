package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/internal/repository"
	apperrors "github.com/faycal55/respira/pkg/errors"
)

// FunctionsService backs the remote functions invoked by the app.
type FunctionsService struct {
	ai            ChatCompleter
	tts           SpeechSynthesizer
	stt           SpeechTranscriber
	subscriptions repository.SubscriptionRepository
	support       repository.SupportRequestRepository
	events        EventPublisher
	logger        *slog.Logger
	now           func() time.Time
}

func NewFunctionsService(
	ai ChatCompleter,
	tts SpeechSynthesizer,
	stt SpeechTranscriber,
	subscriptions repository.SubscriptionRepository,
	support repository.SupportRequestRepository,
	events EventPublisher,
	logger *slog.Logger,
) *FunctionsService {
	return &FunctionsService{
		ai:            ai,
		tts:           tts,
		stt:           stt,
		subscriptions: subscriptions,
		support:       support,
		events:        events,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Chat forwards the transcript to the model. An empty answer is returned as
// is; the app decides how to present it.
func (s *FunctionsService) Chat(ctx context.Context, userID string, req domain.ChatRequest) (*domain.ChatResponse, error) {
	req.UserText = strings.TrimSpace(req.UserText)
	if req.UserText == "" {
		return nil, apperrors.InvalidInput("userText is required")
	}

	start := s.now()
	answer, err := s.ai.Complete(ctx, req)
	if err != nil {
		s.logger.ErrorContext(ctx, "ai chat failed",
			slog.String("user_id", userID),
			slog.String("model", req.Model),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	if answer == "" {
		s.logger.WarnContext(ctx, "ai returned an empty answer", slog.String("model", req.Model))
	}

	s.logger.InfoContext(ctx, "ai chat answered",
		slog.String("user_id", userID),
		slog.String("theme", req.Theme),
		slog.Int("history", len(req.History)),
		slog.Duration("duration", s.now().Sub(start)),
	)
	return &domain.ChatResponse{Answer: answer}, nil
}

func (s *FunctionsService) TextToSpeech(ctx context.Context, req domain.TTSRequest) (*domain.TTSResponse, error) {
	voice := req.VoiceID
	if voice == "" {
		voice = domain.DefaultVoiceID
	}
	audio, err := s.tts.Synthesize(ctx, req.Text, voice)
	if err != nil {
		return nil, err
	}
	return &domain.TTSResponse{AudioContent: audio}, nil
}

func (s *FunctionsService) SpeechToText(ctx context.Context, req domain.STTRequest) (*domain.STTResponse, error) {
	text, err := s.stt.Transcribe(ctx, req.Audio, string(req.Language))
	if err != nil {
		return nil, err
	}
	return &domain.STTResponse{Text: text}, nil
}

// CheckSubscription reports whether the user currently has access to the
// premium plan. Users without a row are simply not subscribed.
func (s *FunctionsService) CheckSubscription(ctx context.Context, userID string) (*domain.SubscriptionStatus, error) {
	sub, err := s.subscriptions.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return &domain.SubscriptionStatus{Subscribed: false}, nil
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	end := sub.CurrentPeriodEnd
	return &domain.SubscriptionStatus{
		Subscribed:       sub.Active(s.now()),
		PlanID:           sub.PlanID,
		CurrentPeriodEnd: &end,
	}, nil
}

// ContactSupport stores the request and queues it for the support mailer.
// userID is empty for anonymous submissions.
func (s *FunctionsService) ContactSupport(ctx context.Context, userID string, in domain.SupportRequest) (*domain.SupportRequest, error) {
	req := &domain.SupportRequest{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      strings.TrimSpace(in.Name),
		Email:     normalizeEmail(in.Email),
		Subject:   strings.TrimSpace(in.Subject),
		Message:   strings.TrimSpace(in.Message),
		CreatedAt: s.now(),
	}
	if err := s.support.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("store support request: %w", err)
	}

	if err := s.events.PublishSupportRequested(ctx, req); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish support.requested event",
			slog.String("request_id", req.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "support request received", slog.String("request_id", req.ID))
	return req, nil
}

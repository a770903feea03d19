package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/internal/repository"
	apperrors "github.com/faycal55/respira/pkg/errors"
	"github.com/faycal55/respira/pkg/pagination"
)

// TechniqueLookup resolves technique ids; *catalog.Catalog implements it.
type TechniqueLookup interface {
	Technique(id string) (*domain.BreathingTechnique, error)
}

type BreathingService struct {
	sessions   repository.BreathingSessionRepository
	techniques TechniqueLookup
	events     EventPublisher
	logger     *slog.Logger
	now        func() time.Time
}

func NewBreathingService(
	sessions repository.BreathingSessionRepository,
	techniques TechniqueLookup,
	events EventPublisher,
	logger *slog.Logger,
) *BreathingService {
	return &BreathingService{
		sessions:   sessions,
		techniques: techniques,
		events:     events,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type RecordSessionInput struct {
	TechniqueID    string
	Cycles         int
	ElapsedSeconds int
	Completed      bool
}

// Record logs one session. Elapsed time cannot exceed the technique's total
// duration since sessions stop at the hard cutoff.
func (s *BreathingService) Record(ctx context.Context, userID string, in RecordSessionInput) (*domain.BreathingSession, error) {
	technique, err := s.techniques.Technique(in.TechniqueID)
	if err != nil {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown technique %q", in.TechniqueID))
	}
	if in.Cycles < 0 || in.ElapsedSeconds < 0 {
		return nil, apperrors.InvalidInput("cycles and elapsed seconds must not be negative")
	}
	if in.ElapsedSeconds > technique.TotalDuration {
		return nil, apperrors.InvalidInput(fmt.Sprintf("elapsed seconds exceed the %d second session", technique.TotalDuration))
	}

	session := &domain.BreathingSession{
		ID:             uuid.New().String(),
		UserID:         userID,
		TechniqueID:    technique.ID,
		Cycles:         in.Cycles,
		ElapsedSeconds: in.ElapsedSeconds,
		Completed:      in.Completed,
		CreatedAt:      s.now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("record breathing session: %w", err)
	}

	if session.Completed {
		if err := s.events.PublishBreathingCompleted(ctx, session); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish breathing.completed event",
				slog.String("session_id", session.ID),
				slog.String("error", err.Error()),
			)
		}
	}
	return session, nil
}

func (s *BreathingService) History(ctx context.Context, userID string, p pagination.Params) (pagination.Result[domain.BreathingSession], error) {
	items, total, err := s.sessions.ListByUser(ctx, userID, p.PerPage, p.Offset)
	if err != nil {
		return pagination.Result[domain.BreathingSession]{}, fmt.Errorf("list breathing sessions: %w", err)
	}
	return pagination.NewResult(items, total, p), nil
}

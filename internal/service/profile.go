package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/internal/repository"
	apperrors "github.com/faycal55/respira/pkg/errors"
)

type ProfileService struct {
	profiles repository.ProfileRepository
	logger   *slog.Logger
}

func NewProfileService(profiles repository.ProfileRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, logger: logger}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// Update applies the non-nil fields of in. An empty string clears an
// optional field; the first name cannot be cleared.
func (s *ProfileService) Update(ctx context.Context, userID string, in domain.ProfileUpdate) (*domain.Profile, error) {
	p, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile for update: %w", err)
	}

	if in.FirstName != nil {
		v := strings.TrimSpace(*in.FirstName)
		if v == "" {
			return nil, apperrors.InvalidInput("first name must not be empty")
		}
		p.FirstName = v
	}
	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	apply(&p.LastName, in.LastName)
	apply(&p.Phone, in.Phone)
	apply(&p.City, in.City)
	apply(&p.Country, in.Country)

	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.logger.InfoContext(ctx, "profile updated", slog.String("user_id", userID))
	return p, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/pkg/database"
	apperrors "github.com/faycal55/respira/pkg/errors"
)

// SubscriptionRepository implements repository.SubscriptionRepository.
type SubscriptionRepository struct {
	db database.DBTX
}

func NewSubscriptionRepository(db database.DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID string) (_ *domain.Subscription, err error) {
	const q = `
		SELECT user_id, plan_id, status, current_period_end
		FROM subscriptions
		WHERE user_id = $1`
	ctx, end := database.TraceQuery(ctx, "GetSubscription", q)
	defer func() { end(err) }()

	var s domain.Subscription
	err = r.db.QueryRow(ctx, q, userID).Scan(&s.UserID, &s.PlanID, &s.Status, &s.CurrentPeriodEnd)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan subscription: %w", err)
	}
	return &s, nil
}

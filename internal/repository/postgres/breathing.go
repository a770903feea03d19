package postgres

import (
	"context"
	"fmt"

	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/pkg/database"
)

// BreathingSessionRepository implements repository.BreathingSessionRepository.
type BreathingSessionRepository struct {
	db database.DBTX
}

func NewBreathingSessionRepository(db database.DBTX) *BreathingSessionRepository {
	return &BreathingSessionRepository{db: db}
}

func (r *BreathingSessionRepository) Create(ctx context.Context, s *domain.BreathingSession) (err error) {
	const q = `
		INSERT INTO breathing_sessions (id, user_id, technique_id, cycles, elapsed_seconds, completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	ctx, end := database.TraceQuery(ctx, "CreateBreathingSession", q)
	defer func() { end(err) }()

	if _, err = r.db.Exec(ctx, q, s.ID, s.UserID, s.TechniqueID, s.Cycles, s.ElapsedSeconds, s.Completed, s.CreatedAt); err != nil {
		return fmt.Errorf("insert breathing session: %w", err)
	}
	return nil
}

func (r *BreathingSessionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) (_ []domain.BreathingSession, _ int, err error) {
	const countQuery = `SELECT COUNT(*) FROM breathing_sessions WHERE user_id = $1`
	const listQuery = `
		SELECT id, user_id, technique_id, cycles, elapsed_seconds, completed, created_at
		FROM breathing_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`
	ctx, end := database.TraceQuery(ctx, "ListBreathingSessions", listQuery)
	defer func() { end(err) }()

	var total int
	if err = r.db.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count breathing sessions: %w", err)
	}

	rows, err := r.db.Query(ctx, listQuery, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list breathing sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]domain.BreathingSession, 0)
	for rows.Next() {
		var s domain.BreathingSession
		if err = rows.Scan(&s.ID, &s.UserID, &s.TechniqueID, &s.Cycles, &s.ElapsedSeconds, &s.Completed, &s.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan breathing session row: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate breathing sessions: %w", err)
	}
	return sessions, total, nil
}

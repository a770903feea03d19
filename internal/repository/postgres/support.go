package postgres

import (
	"context"
	"fmt"

	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/pkg/database"
)

// SupportRequestRepository keeps a copy of every contact form submission.
type SupportRequestRepository struct {
	db database.DBTX
}

func NewSupportRequestRepository(db database.DBTX) *SupportRequestRepository {
	return &SupportRequestRepository{db: db}
}

func (r *SupportRequestRepository) Create(ctx context.Context, req *domain.SupportRequest) (err error) {
	const q = `
		INSERT INTO support_requests (id, user_id, name, email, subject, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	ctx, end := database.TraceQuery(ctx, "CreateSupportRequest", q)
	defer func() { end(err) }()

	if _, err = r.db.Exec(ctx, q,
		req.ID,
		nullable(req.UserID),
		req.Name,
		req.Email,
		req.Subject,
		req.Message,
		req.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert support request: %w", err)
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/pkg/database"
	apperrors "github.com/faycal55/respira/pkg/errors"
)

// RefreshTokenRepository implements repository.RefreshTokenRepository.
type RefreshTokenRepository struct {
	db database.DBTX
}

func NewRefreshTokenRepository(db database.DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (err error) {
	const q = `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	ctx, end := database.TraceQuery(ctx, "CreateRefreshToken", q)
	defer func() { end(err) }()

	if _, err = r.db.Exec(ctx, q, uuid.New().String(), userID, tokenHash, expiresAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (_ *domain.RefreshToken, err error) {
	const q = `
		SELECT id, user_id, token_hash, expires_at, created_at, revoked_at
		FROM refresh_tokens
		WHERE token_hash = $1`
	ctx, end := database.TraceQuery(ctx, "GetRefreshToken", q)
	defer func() { end(err) }()

	var t domain.RefreshToken
	err = r.db.QueryRow(ctx, q, tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt, &t.RevokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan refresh token: %w", err)
	}
	return &t, nil
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, tokenHash string) (err error) {
	const q = `UPDATE refresh_tokens SET revoked_at = $1 WHERE token_hash = $2 AND revoked_at IS NULL`
	ctx, end := database.TraceQuery(ctx, "RevokeRefreshToken", q)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, q, time.Now().UTC(), tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *RefreshTokenRepository) RevokeByUserID(ctx context.Context, userID string) (err error) {
	const q = `UPDATE refresh_tokens SET revoked_at = $1 WHERE user_id = $2 AND revoked_at IS NULL`
	ctx, end := database.TraceQuery(ctx, "RevokeUserRefreshTokens", q)
	defer func() { end(err) }()

	if _, err = r.db.Exec(ctx, q, time.Now().UTC(), userID); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return nil
}

// PasswordResetRepository implements repository.PasswordResetRepository.
type PasswordResetRepository struct {
	db database.DBTX
}

func NewPasswordResetRepository(db database.DBTX) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Create(ctx context.Context, reset *domain.PasswordReset) (err error) {
	const q = `
		INSERT INTO password_resets (token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)`
	ctx, end := database.TraceQuery(ctx, "CreatePasswordReset", q)
	defer func() { end(err) }()

	if _, err = r.db.Exec(ctx, q, reset.TokenHash, reset.UserID, reset.ExpiresAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("insert password reset: %w", err)
	}
	return nil
}

func (r *PasswordResetRepository) GetByHash(ctx context.Context, tokenHash string) (_ *domain.PasswordReset, err error) {
	const q = `
		SELECT user_id, token_hash, expires_at, used_at
		FROM password_resets
		WHERE token_hash = $1`
	ctx, end := database.TraceQuery(ctx, "GetPasswordReset", q)
	defer func() { end(err) }()

	var pr domain.PasswordReset
	err = r.db.QueryRow(ctx, q, tokenHash).Scan(&pr.UserID, &pr.TokenHash, &pr.ExpiresAt, &pr.UsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan password reset: %w", err)
	}
	return &pr, nil
}

func (r *PasswordResetRepository) MarkUsed(ctx context.Context, tokenHash string, at time.Time) (err error) {
	const q = `UPDATE password_resets SET used_at = $1 WHERE token_hash = $2 AND used_at IS NULL`
	ctx, end := database.TraceQuery(ctx, "UsePasswordReset", q)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, q, at, tokenHash)
	if err != nil {
		return fmt.Errorf("mark password reset used: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

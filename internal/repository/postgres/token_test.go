package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faycal55/respira/internal/domain"
	apperrors "github.com/faycal55/respira/pkg/errors"
)

func TestRefreshTokenRepository_CreateAndGet(t *testing.T) {
	mock := newMock(t)
	repo := NewRefreshTokenRepository(mock)
	expires := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(pgxmock.AnyArg(), "u-1", "hash-1", expires, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Create(context.Background(), "u-1", "hash-1", expires))

	created := expires.Add(-time.Hour)
	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE token_hash =").
		WithArgs("hash-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "token_hash", "expires_at", "created_at", "revoked_at"}).
			AddRow("t-1", "u-1", "hash-1", expires, created, nil))

	got, err := repo.GetByHash(context.Background(), "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.UserID)
	assert.Nil(t, got.RevokedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepository_GetByHash_NotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewRefreshTokenRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM refresh_tokens").
		WithArgs("nope").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByHash(context.Background(), "nope")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestRefreshTokenRepository_Revoke(t *testing.T) {
	mock := newMock(t)
	repo := NewRefreshTokenRepository(mock)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").
		WithArgs(pgxmock.AnyArg(), "hash-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.Revoke(context.Background(), "hash-1"))

	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at").
		WithArgs(pgxmock.AnyArg(), "hash-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	err := repo.Revoke(context.Background(), "hash-1")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound), "already revoked tokens cannot be revoked twice")

	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at .+ WHERE user_id").
		WithArgs(pgxmock.AnyArg(), "u-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	require.NoError(t, repo.RevokeByUserID(context.Background(), "u-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetRepository(t *testing.T) {
	mock := newMock(t)
	repo := NewPasswordResetRepository(mock)
	expires := time.Now().UTC().Add(time.Hour).Truncate(time.Microsecond)
	reset := &domain.PasswordReset{UserID: "u-1", TokenHash: "reset-hash", ExpiresAt: expires}

	mock.ExpectExec("INSERT INTO password_resets").
		WithArgs("reset-hash", "u-1", expires, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Create(context.Background(), reset))

	mock.ExpectQuery("SELECT .+ FROM password_resets WHERE token_hash =").
		WithArgs("reset-hash").
		WillReturnRows(pgxmock.NewRows([]string{"user_id", "token_hash", "expires_at", "used_at"}).
			AddRow("u-1", "reset-hash", expires, nil))
	got, err := repo.GetByHash(context.Background(), "reset-hash")
	require.NoError(t, err)
	assert.Equal(t, reset, got)

	usedAt := time.Now().UTC()
	mock.ExpectExec("UPDATE password_resets SET used_at").
		WithArgs(usedAt, "reset-hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.MarkUsed(context.Background(), "reset-hash", usedAt))

	mock.ExpectExec("UPDATE password_resets SET used_at").
		WithArgs(usedAt, "reset-hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	err = repo.MarkUsed(context.Background(), "reset-hash", usedAt)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/faycal55/respira/internal/domain"
	"github.com/faycal55/respira/pkg/database"
	apperrors "github.com/faycal55/respira/pkg/errors"
)

// UserRepository implements repository.UserRepository.
type UserRepository struct {
	db database.DBTX
}

func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateWithProfile(ctx context.Context, u *domain.User, p *domain.Profile) (err error) {
	const insertUser = `
		INSERT INTO users (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	const insertProfile = `
		INSERT INTO profiles (id, first_name, last_name, phone, city, country, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	ctx, end := database.TraceQuery(ctx, "CreateUser", insertUser)
	defer func() { end(err) }()

	err = database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, insertUser, u.ID, u.Email, u.PasswordHash, u.CreatedAt, u.UpdatedAt); err != nil {
			if isUniqueViolation(err) {
				return apperrors.AlreadyExists("user", "email", u.Email)
			}
			return fmt.Errorf("insert user: %w", err)
		}
		if _, err := tx.Exec(ctx, insertProfile,
			p.ID,
			nullable(p.FirstName),
			nullable(p.LastName),
			nullable(p.Phone),
			nullable(p.City),
			nullable(p.Country),
			p.CreatedAt,
			p.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		return nil
	})
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const q = `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = $1`
	return r.scanUser(ctx, "GetUserByID", q, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `
		SELECT id, email, password_hash, created_at, updated_at
		FROM users
		WHERE lower(email) = lower($1)`
	return r.scanUser(ctx, "GetUserByEmail", q, email)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) (err error) {
	const q = `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3`
	ctx, end := database.TraceQuery(ctx, "UpdateUserPassword", q)
	defer func() { end(err) }()

	ct, err := r.db.Exec(ctx, q, passwordHash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}

func (r *UserRepository) scanUser(ctx context.Context, op, query string, arg any) (_ *domain.User, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	var u domain.User
	err = r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// ProfileRepository implements repository.ProfileRepository.
type ProfileRepository struct {
	db database.DBTX
}

func NewProfileRepository(db database.DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Get(ctx context.Context, userID string) (_ *domain.Profile, err error) {
	const q = `
		SELECT id, first_name, last_name, phone, city, country, created_at, updated_at
		FROM profiles
		WHERE id = $1`
	ctx, end := database.TraceQuery(ctx, "GetProfile", q)
	defer func() { end(err) }()

	var p domain.Profile
	var first, last, phone, city, country *string
	err = r.db.QueryRow(ctx, q, userID).Scan(&p.ID, &first, &last, &phone, &city, &country, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("profile", userID)
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	p.FirstName, p.LastName, p.Phone, p.City, p.Country = deref(first), deref(last), deref(phone), deref(city), deref(country)
	return &p, nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *domain.Profile) (err error) {
	const q = `
		UPDATE profiles
		SET first_name = $1, last_name = $2, phone = $3, city = $4, country = $5, updated_at = $6
		WHERE id = $7`
	ctx, end := database.TraceQuery(ctx, "UpdateProfile", q)
	defer func() { end(err) }()

	p.UpdatedAt = time.Now().UTC()
	ct, err := r.db.Exec(ctx, q,
		nullable(p.FirstName),
		nullable(p.LastName),
		nullable(p.Phone),
		nullable(p.City),
		nullable(p.Country),
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("profile", p.ID)
	}
	return nil
}

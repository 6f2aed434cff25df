package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/models"
)

type UserRepo struct {
	DB DBTX
}

const createUser = `-- name: CreateUser
INSERT INTO users (name, email, password_hash)
VALUES ($1, $2, $3)
RETURNING id, created_at, updated_at, name, email, password_hash, email_verified, theme
`

func (r *UserRepo) CreateUser(ctx context.Context, name string, email string, hashedPassword string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser, name, email, hashedPassword)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return user, apperrors.ErrEmailTaken
		}
		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT id, created_at, updated_at, name, email, password_hash, email_verified, theme
FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, userID)
	return collectUser(rows)
}

const getUserByEmail = `-- name: GetUserByEmail
SELECT id, created_at, updated_at, name, email, password_hash, email_verified, theme
FROM users
WHERE lower(email) = lower($1)
`

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByEmail, email)
	return collectUser(rows)
}

const getUserForUpdate = `-- name: GetUserForUpdate
SELECT id, created_at, updated_at, name, email, password_hash, email_verified, theme
FROM users
WHERE id = $1
FOR UPDATE
`

func (r *UserRepo) GetUserForUpdate(ctx context.Context, userID uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserForUpdate, userID)
	return collectUser(rows)
}

const updateProfile = `-- name: UpdateProfile
UPDATE users
SET name = $2, email = $3, updated_at = now()
WHERE id = $1
RETURNING id, created_at, updated_at, name, email, password_hash, email_verified, theme
`

func (r *UserRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, name string, email string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, updateProfile, userID, name, email)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return user, apperrors.ErrEmailTaken
		}
		return user, fmt.Errorf("db error: %w", err)
	}
}

const updateTheme = `-- name: UpdateTheme
UPDATE users
SET theme = $2, updated_at = now()
WHERE id = $1
RETURNING id, created_at, updated_at, name, email, password_hash, email_verified, theme
`

func (r *UserRepo) UpdateTheme(ctx context.Context, userID uuid.UUID, theme string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, updateTheme, userID, theme)
	return collectUser(rows)
}

const setEmailVerified = `-- name: SetEmailVerified
UPDATE users
SET email_verified = true, updated_at = now()
WHERE id = $1
RETURNING id
`

func (r *UserRepo) SetEmailVerified(ctx context.Context, userID uuid.UUID) error {
	rows, _ := r.DB.Query(ctx, setEmailVerified, userID)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[uuid.UUID])

	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrUserNotFound
	}
	return err
}

const setPasswordHash = `-- name: SetPasswordHash
UPDATE users
SET password_hash = $2, updated_at = now()
WHERE id = $1
RETURNING id
`

func (r *UserRepo) SetPasswordHash(ctx context.Context, userID uuid.UUID, hash string) error {
	rows, _ := r.DB.Query(ctx, setPasswordHash, userID, hash)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[uuid.UUID])

	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrUserNotFound
	}
	return err
}

const deleteUser = `-- name: DeleteUser
DELETE FROM users
WHERE id = $1
`

func (r *UserRepo) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteUser, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Name, &u.Email, &u.HashedPassword, &u.EmailVerified, &u.Theme)
	return u, err
}

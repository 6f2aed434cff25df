package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/models"
)

type VerificationCodeRepo struct {
	DB DBTX
}

const saveCode = `-- name: SaveVerificationCode
INSERT INTO verification_codes (id, user_id, purpose, code, created_at, expires_at, consumed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`

func (r *VerificationCodeRepo) Save(ctx context.Context, code models.VerificationCode) error {
	rows, _ := r.DB.Query(ctx, saveCode, code.ID, code.UserID, code.Purpose, code.Code, code.CreatedAt, code.ExpiresAt, code.ConsumedAt)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const getActiveCode = `-- name: GetActiveVerificationCode
SELECT id, user_id, purpose, code, created_at, expires_at, consumed_at
FROM verification_codes
WHERE user_id = $1 AND purpose = $2 AND consumed_at IS NULL
`

// Return the outstanding code of the user and purpose.
// The partial unique index guarantees there is at most one
func (r *VerificationCodeRepo) GetActive(ctx context.Context, userID uuid.UUID, purpose string) (models.VerificationCode, error) {
	rows, _ := r.DB.Query(ctx, getActiveCode, userID, purpose)
	code, err := pgx.CollectOneRow(rows, rowToCode)

	switch {
	case err == nil:
		return code, nil
	case errors.Is(err, pgx.ErrNoRows):
		return code, fmt.Errorf("repo error: %w", apperrors.ErrCodeInvalid)
	default:
		return code, fmt.Errorf("db error: %w", err)
	}
}

const consumeCode = `-- name: ConsumeVerificationCode
UPDATE verification_codes
SET consumed_at = now()
WHERE id = $1 AND consumed_at IS NULL
`

// Consume the code once
// Consuming an already consumed code is an error, never an overwrite
func (r *VerificationCodeRepo) Consume(ctx context.Context, codeID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, consumeCode, codeID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo error: %w", apperrors.ErrCodeInvalid)
	}
	return nil
}

const consumeActiveCodes = `-- name: ConsumeActiveVerificationCodes
UPDATE verification_codes
SET consumed_at = now()
WHERE user_id = $1 AND purpose = $2 AND consumed_at IS NULL
`

func (r *VerificationCodeRepo) ConsumeActive(ctx context.Context, userID uuid.UUID, purpose string) (int64, error) {
	tag, err := r.DB.Exec(ctx, consumeActiveCodes, userID, purpose)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}

const deleteExpiredCodes = `-- name: DeleteExpiredVerificationCodes
DELETE FROM verification_codes
WHERE expires_at < $1
`

func (r *VerificationCodeRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteExpiredCodes, before)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}

func rowToCode(row pgx.CollectableRow) (models.VerificationCode, error) {
	var c models.VerificationCode
	err := row.Scan(&c.ID, &c.UserID, &c.Purpose, &c.Code, &c.CreatedAt, &c.ExpiresAt, &c.ConsumedAt)
	return c, err
}

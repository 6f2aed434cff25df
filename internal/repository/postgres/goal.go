package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/models"
)

type SavingsGoalRepo struct {
	DB DBTX
}

const upsertGoal = `-- name: UpsertSavingsGoal
INSERT INTO savings_goals (id, user_id, month, year, target_amount, description)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, month, year)
DO UPDATE SET
    target_amount = EXCLUDED.target_amount,
    description = EXCLUDED.description,
    updated_at = now()
RETURNING id, user_id, created_at, updated_at, month, year, target_amount, current_amount, description
`

func (r *SavingsGoalRepo) Upsert(ctx context.Context, goal models.SavingsGoal) (models.SavingsGoal, error) {
	if goal.ID == uuid.Nil {
		goal.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, upsertGoal, goal.ID, goal.UserID, goal.Month, goal.Year, goal.TargetAmount, goal.Description)
	saved, err := pgx.CollectOneRow(rows, rowToGoal)
	if err != nil {
		return saved, fmt.Errorf("db error: %w", err)
	}
	return saved, nil
}

const getGoalByMonth = `-- name: GetSavingsGoalByMonth
SELECT id, user_id, created_at, updated_at, month, year, target_amount, current_amount, description
FROM savings_goals
WHERE user_id = $1 AND month = $2 AND year = $3
`

func (r *SavingsGoalRepo) GetByMonth(ctx context.Context, userID uuid.UUID, month int, year int) (models.SavingsGoal, error) {
	rows, _ := r.DB.Query(ctx, getGoalByMonth, userID, month, year)
	goal, err := pgx.CollectOneRow(rows, rowToGoal)

	switch {
	case err == nil:
		return goal, nil
	case errors.Is(err, pgx.ErrNoRows):
		return goal, apperrors.ErrGoalNotFound
	default:
		return goal, fmt.Errorf("db error: %w", err)
	}
}

const listGoals = `-- name: ListSavingsGoals
SELECT id, user_id, created_at, updated_at, month, year, target_amount, current_amount, description
FROM savings_goals
WHERE user_id = $1
ORDER BY year DESC, month DESC
`

func (r *SavingsGoalRepo) List(ctx context.Context, userID uuid.UUID) ([]models.SavingsGoal, error) {
	rows, _ := r.DB.Query(ctx, listGoals, userID)
	goals, err := pgx.CollectRows(rows, rowToGoal)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return goals, nil
}

const deleteGoal = `-- name: DeleteSavingsGoal
DELETE FROM savings_goals
WHERE user_id = $1 AND id = $2
`

func (r *SavingsGoalRepo) Delete(ctx context.Context, userID uuid.UUID, goalID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteGoal, userID, goalID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrGoalNotFound
	}
	return nil
}

const setGoalCurrentAmount = `-- name: SetSavingsGoalCurrentAmount
UPDATE savings_goals
SET current_amount = $4, updated_at = now()
WHERE user_id = $1 AND month = $2 AND year = $3
`

func (r *SavingsGoalRepo) SetCurrentAmount(ctx context.Context, userID uuid.UUID, month int, year int, amount decimal.Decimal) error {
	tag, err := r.DB.Exec(ctx, setGoalCurrentAmount, userID, month, year, amount)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrGoalNotFound
	}
	return nil
}

func rowToGoal(row pgx.CollectableRow) (models.SavingsGoal, error) {
	var g models.SavingsGoal
	err := row.Scan(&g.ID, &g.UserID, &g.CreatedAt, &g.UpdatedAt, &g.Month, &g.Year, &g.TargetAmount, &g.CurrentAmount, &g.Description)
	return g, err
}

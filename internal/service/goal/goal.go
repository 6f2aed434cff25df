package goal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/centavo-app/centavo/internal/models"
	"github.com/centavo-app/centavo/internal/repository"
)

// Savings goal service
// One goal per (user, month, year), current amount derived from the
// month's income minus expense
type GoalService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) (*GoalService, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}
	return &GoalService{storage: storage}, nil
}

// Upsert creates or replaces the month's goal and recomputes
// its current amount from the transactions already recorded
func (s *GoalService) Upsert(ctx context.Context, userID uuid.UUID, month int, year int, target decimal.Decimal, description string) (models.SavingsGoal, error) {
	goal, err := s.storage.Goal().Upsert(ctx, models.SavingsGoal{
		UserID:       userID,
		Month:        month,
		Year:         year,
		TargetAmount: target,
		Description:  description,
	})
	if err != nil {
		return goal, err
	}

	saved, err := s.monthSavings(ctx, userID, month, year)
	if err != nil {
		return goal, err
	}

	if err := s.storage.Goal().SetCurrentAmount(ctx, userID, month, year, saved); err != nil {
		return goal, err
	}
	goal.CurrentAmount = saved

	return goal, nil
}

func (s *GoalService) GetByMonth(ctx context.Context, userID uuid.UUID, month int, year int) (models.SavingsGoal, error) {
	return s.storage.Goal().GetByMonth(ctx, userID, month, year)
}

// Current returns the goal of the running month
func (s *GoalService) Current(ctx context.Context, userID uuid.UUID) (models.SavingsGoal, error) {
	now := time.Now()
	return s.GetByMonth(ctx, userID, int(now.Month()), now.Year())
}

func (s *GoalService) List(ctx context.Context, userID uuid.UUID) ([]models.SavingsGoal, error) {
	return s.storage.Goal().List(ctx, userID)
}

func (s *GoalService) Delete(ctx context.Context, userID uuid.UUID, goalID uuid.UUID) error {
	return s.storage.Goal().Delete(ctx, userID, goalID)
}

func (s *GoalService) monthSavings(ctx context.Context, userID uuid.UUID, month int, year int) (decimal.Decimal, error) {
	income, expense, err := s.storage.Transaction().MonthTotals(ctx, userID, month, year)
	if err != nil {
		return decimal.Zero, err
	}

	saved := income.Sub(expense)
	if saved.IsNegative() {
		saved = decimal.Zero
	}
	return saved, nil
}

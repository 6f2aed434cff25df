package transaction

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/models"
	"github.com/centavo-app/centavo/internal/repository"
)

// Transaction service
// CRUD plus keeping the month's savings goal progress in sync
type TransactionService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) (*TransactionService, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}
	return &TransactionService{storage: storage}, nil
}

func (s *TransactionService) Create(ctx context.Context, tr models.Transaction) (models.Transaction, error) {
	if err := s.checkCategory(ctx, tr); err != nil {
		return models.Transaction{}, err
	}

	created, err := s.storage.Transaction().Create(ctx, tr)
	if err != nil {
		return created, err
	}

	s.syncGoal(ctx, created.UserID, created.Date.Month(), created.Date.Year())
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, userID uuid.UUID, trID uuid.UUID) (models.Transaction, error) {
	return s.storage.Transaction().Get(ctx, userID, trID)
}

func (s *TransactionService) Update(ctx context.Context, tr models.Transaction) (models.Transaction, error) {
	if err := s.checkCategory(ctx, tr); err != nil {
		return models.Transaction{}, err
	}

	previous, err := s.storage.Transaction().Get(ctx, tr.UserID, tr.ID)
	if err != nil {
		return models.Transaction{}, err
	}

	updated, err := s.storage.Transaction().Update(ctx, tr)
	if err != nil {
		return updated, err
	}

	// A moved date touches two months' goals
	s.syncGoal(ctx, updated.UserID, previous.Date.Month(), previous.Date.Year())
	s.syncGoal(ctx, updated.UserID, updated.Date.Month(), updated.Date.Year())
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID uuid.UUID, trID uuid.UUID) error {
	previous, err := s.storage.Transaction().Get(ctx, userID, trID)
	if err != nil {
		return err
	}

	if err := s.storage.Transaction().Delete(ctx, userID, trID); err != nil {
		return err
	}

	s.syncGoal(ctx, userID, previous.Date.Month(), previous.Date.Year())
	return nil
}

func (s *TransactionService) List(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) (models.TransactionPage, error) {
	return s.storage.Transaction().List(ctx, userID, filter)
}

// Transactions may reference only the user's own categories
func (s *TransactionService) checkCategory(ctx context.Context, tr models.Transaction) error {
	if tr.CategoryID == nil {
		return nil
	}

	_, err := s.storage.Category().Get(ctx, tr.UserID, *tr.CategoryID)
	return err
}

// Recompute the month's goal from its transactions.
// Months without a goal are fine, everything else is best effort:
// a failed sync never fails the transaction mutation itself
func (s *TransactionService) syncGoal(ctx context.Context, userID uuid.UUID, month time.Month, year int) {
	income, expense, err := s.storage.Transaction().MonthTotals(ctx, userID, int(month), year)
	if err != nil {
		return
	}

	saved := income.Sub(expense)
	if saved.IsNegative() {
		saved = decimal.Zero
	}

	err = s.storage.Goal().SetCurrentAmount(ctx, userID, int(month), year, saved)
	if err != nil && !errors.Is(err, apperrors.ErrGoalNotFound) {
		return
	}
}

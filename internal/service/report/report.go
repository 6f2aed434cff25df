package report

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/centavo-app/centavo/internal/models"
	"github.com/centavo-app/centavo/internal/repository"
)

// Report service
// Read-only aggregates over transactions: dashboard numbers, the yearly
// chart series and file exports
type ReportService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) (*ReportService, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}
	return &ReportService{storage: storage}, nil
}

type Dashboard struct {
	Income     decimal.Decimal
	Expense    decimal.Decimal
	Balance    decimal.Decimal
	ByCategory []repository.CategoryAmount
	Recent     []models.Transaction
}

const recentTransactionsLimit = 5

func (s *ReportService) Dashboard(ctx context.Context, userID uuid.UUID, month int, year int) (Dashboard, error) {
	var d Dashboard

	income, expense, err := s.storage.Transaction().MonthTotals(ctx, userID, month, year)
	if err != nil {
		return d, err
	}
	d.Income = income
	d.Expense = expense
	d.Balance = income.Sub(expense)

	d.ByCategory, err = s.storage.Transaction().CategoryBreakdown(ctx, userID, month, year)
	if err != nil {
		return d, err
	}

	page, err := s.storage.Transaction().List(ctx, userID, models.TransactionFilter{
		Month:    month,
		Year:     year,
		Page:     1,
		PageSize: recentTransactionsLimit,
	})
	if err != nil {
		return d, err
	}
	d.Recent = page.Items

	return d, nil
}

// Chart returns the income and expense series per month of the year
func (s *ReportService) Chart(ctx context.Context, userID uuid.UUID, year int) ([]repository.MonthAmount, error) {
	return s.storage.Transaction().MonthlySeries(ctx, userID, year)
}

// Export renders every transaction of the user into the requested format
func (s *ReportService) Export(ctx context.Context, userID uuid.UUID, format Format) (Document, error) {
	transactions, err := s.storage.Transaction().ListAll(ctx, userID)
	if err != nil {
		return Document{}, err
	}

	return Render(format, transactions)
}

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
	"github.com/centavo-app/centavo/internal/repository"
)

type TransactionRepo struct {
	DB DBTX
}

const createTransaction = `-- name: CreateTransaction
INSERT INTO transactions (id, user_id, category_id, type, amount, description, date, is_recurring)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, user_id, category_id, created_at, type, amount, description, date, is_recurring
`

func (r *TransactionRepo) Create(ctx context.Context, tr models.Transaction) (models.Transaction, error) {
	if tr.ID == uuid.Nil {
		tr.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createTransaction, tr.ID, tr.UserID, tr.CategoryID, tr.Type, tr.Amount, tr.Description, tr.Date, tr.IsRecurring)
	created, err := pgx.CollectOneRow(rows, rowToTransaction)
	if err != nil {
		return created, fmt.Errorf("db error: %w", err)
	}
	return created, nil
}

const getTransaction = `-- name: GetTransaction
SELECT id, user_id, category_id, created_at, type, amount, description, date, is_recurring
FROM transactions
WHERE user_id = $1 AND id = $2
`

func (r *TransactionRepo) Get(ctx context.Context, userID uuid.UUID, trID uuid.UUID) (models.Transaction, error) {
	rows, _ := r.DB.Query(ctx, getTransaction, userID, trID)
	tr, err := pgx.CollectOneRow(rows, rowToTransaction)

	switch {
	case err == nil:
		return tr, nil
	case errors.Is(err, pgx.ErrNoRows):
		return tr, apperrors.ErrTransactionNotFound
	default:
		return tr, fmt.Errorf("db error: %w", err)
	}
}

const updateTransaction = `-- name: UpdateTransaction
UPDATE transactions
SET category_id = $3, type = $4, amount = $5, description = $6, date = $7, is_recurring = $8
WHERE user_id = $1 AND id = $2
RETURNING id, user_id, category_id, created_at, type, amount, description, date, is_recurring
`

func (r *TransactionRepo) Update(ctx context.Context, tr models.Transaction) (models.Transaction, error) {
	rows, _ := r.DB.Query(ctx, updateTransaction, tr.UserID, tr.ID, tr.CategoryID, tr.Type, tr.Amount, tr.Description, tr.Date, tr.IsRecurring)
	updated, err := pgx.CollectOneRow(rows, rowToTransaction)

	switch {
	case err == nil:
		return updated, nil
	case errors.Is(err, pgx.ErrNoRows):
		return updated, apperrors.ErrTransactionNotFound
	default:
		return updated, fmt.Errorf("db error: %w", err)
	}
}

const deleteTransaction = `-- name: DeleteTransaction
DELETE FROM transactions
WHERE user_id = $1 AND id = $2
`

func (r *TransactionRepo) Delete(ctx context.Context, userID uuid.UUID, trID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteTransaction, userID, trID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

const listTransactions = `-- name: ListTransactions
SELECT id, user_id, category_id, created_at, type, amount, description, date, is_recurring
FROM transactions
WHERE user_id = $1
  AND ($2 = '' OR type = $2)
  AND ($3::uuid IS NULL OR category_id = $3)
  AND ($4 = 0 OR EXTRACT(MONTH FROM date) = $4)
  AND ($5 = 0 OR EXTRACT(YEAR FROM date) = $5)
ORDER BY date DESC, created_at DESC
LIMIT $6 OFFSET $7
`

const countTransactions = `-- name: CountTransactions
SELECT count(*)
FROM transactions
WHERE user_id = $1
  AND ($2 = '' OR type = $2)
  AND ($3::uuid IS NULL OR category_id = $3)
  AND ($4 = 0 OR EXTRACT(MONTH FROM date) = $4)
  AND ($5 = 0 OR EXTRACT(YEAR FROM date) = $5)
`

func (r *TransactionRepo) List(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) (models.TransactionPage, error) {
	page := models.TransactionPage{Page: filter.Page, PageSize: filter.PageSize}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.PageSize < 1 {
		page.PageSize = 10
	}
	offset := (page.Page - 1) * page.PageSize

	rows, _ := r.DB.Query(ctx, listTransactions,
		userID, filter.Type, filter.CategoryID, filter.Month, filter.Year, page.PageSize, offset)
	items, err := pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return page, fmt.Errorf("db error: %w", err)
	}
	page.Items = items

	rows, _ = r.DB.Query(ctx, countTransactions,
		userID, filter.Type, filter.CategoryID, filter.Month, filter.Year)
	page.Total, err = pgx.CollectOneRow(rows, pgx.RowTo[int64])
	if err != nil {
		return page, fmt.Errorf("db error: %w", err)
	}

	return page, nil
}

const listAllTransactions = `-- name: ListAllTransactions
SELECT id, user_id, category_id, created_at, type, amount, description, date, is_recurring
FROM transactions
WHERE user_id = $1
ORDER BY date DESC, created_at DESC
`

func (r *TransactionRepo) ListAll(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	rows, _ := r.DB.Query(ctx, listAllTransactions, userID)
	items, err := pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

const monthTotals = `-- name: MonthTotals
SELECT
    COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0) AS income,
    COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0) AS expense
FROM transactions
WHERE user_id = $1
  AND EXTRACT(MONTH FROM date) = $2
  AND EXTRACT(YEAR FROM date) = $3
`

func (r *TransactionRepo) MonthTotals(ctx context.Context, userID uuid.UUID, month int, year int) (decimal.Decimal, decimal.Decimal, error) {
	var income, expense decimal.Decimal
	err := r.DB.QueryRow(ctx, monthTotals, userID, month, year).Scan(&income, &expense)
	if err != nil {
		return income, expense, fmt.Errorf("db error: %w", err)
	}
	return income, expense, nil
}

const categoryBreakdown = `-- name: CategoryBreakdown
SELECT t.category_id, COALESCE(c.name, 'uncategorized'), SUM(t.amount)
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id
WHERE t.user_id = $1
  AND t.type = 'expense'
  AND EXTRACT(MONTH FROM t.date) = $2
  AND EXTRACT(YEAR FROM t.date) = $3
GROUP BY t.category_id, c.name
ORDER BY SUM(t.amount) DESC
`

func (r *TransactionRepo) CategoryBreakdown(ctx context.Context, userID uuid.UUID, month int, year int) ([]repository.CategoryAmount, error) {
	rows, _ := r.DB.Query(ctx, categoryBreakdown, userID, month, year)
	breakdown, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.CategoryAmount, error) {
		var ca repository.CategoryAmount
		err := row.Scan(&ca.CategoryID, &ca.CategoryName, &ca.Amount)
		return ca, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return breakdown, nil
}

const monthlySeries = `-- name: MonthlySeries
SELECT
    EXTRACT(MONTH FROM date)::int AS month,
    COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0) AS income,
    COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0) AS expense
FROM transactions
WHERE user_id = $1 AND EXTRACT(YEAR FROM date) = $2
GROUP BY 1
ORDER BY 1
`

// Income and expense sums for every month of the year
// Months without transactions are filled with zeroes, so always 12 entries
func (r *TransactionRepo) MonthlySeries(ctx context.Context, userID uuid.UUID, year int) ([]repository.MonthAmount, error) {
	rows, _ := r.DB.Query(ctx, monthlySeries, userID, year)
	got, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (repository.MonthAmount, error) {
		var ma repository.MonthAmount
		err := row.Scan(&ma.Month, &ma.Income, &ma.Expense)
		return ma, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	series := make([]repository.MonthAmount, 12)
	for i := range series {
		series[i] = repository.MonthAmount{Month: i + 1, Income: decimal.Zero, Expense: decimal.Zero}
	}
	for _, ma := range got {
		if ma.Month >= 1 && ma.Month <= 12 {
			series[ma.Month-1] = ma
		}
	}

	return series, nil
}

func rowToTransaction(row pgx.CollectableRow) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.CategoryID, &t.CreatedAt, &t.Type, &t.Amount, &t.Description, &t.Date, &t.IsRecurring)
	return t, err
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/centavo-app/centavo/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If email is taken already (case-insensitive) has to return apperrors.ErrEmailTaken
	CreateUser(ctx context.Context, name string, email string, hashedPassword string) (models.User, error)

	// Get user by id or email (email match is case-insensitive)
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Get user by id locking the row for the rest of the transaction.
	// Credential updates go through this to stay serialized per account.
	GetUserForUpdate(ctx context.Context, userID uuid.UUID) (models.User, error)

	UpdateProfile(ctx context.Context, userID uuid.UUID, name string, email string) (models.User, error)
	UpdateTheme(ctx context.Context, userID uuid.UUID, theme string) (models.User, error)
	SetEmailVerified(ctx context.Context, userID uuid.UUID) error
	SetPasswordHash(ctx context.Context, userID uuid.UUID, hash string) error

	// Delete user and (via fk cascade) everything the user owns.
	// Deleting twice must return apperrors.ErrUserNotFound, not fail
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// RefreshToken repository interface
type RefreshTokenRepo interface {
	// Save issued token
	Save(ctx context.Context, token models.RefreshToken) error

	// Return the token even if it is expired or revoked
	// If missing must return apperrors.ErrRefreshTokenNotFound
	Get(ctx context.Context, tokenString string) (models.RefreshToken, error)

	// Mark token revoked
	// Must not overwrite 'revokedAt' if the token is revoked already
	Revoke(ctx context.Context, tokenString string) (revokedAt time.Time, err error)

	// Revoke every live token of the user, returns how many were revoked
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// VerificationCode repository interface
type VerificationCodeRepo interface {
	// Save new code. The caller is expected to consume prior active codes
	// of the same purpose in the same transaction first
	Save(ctx context.Context, code models.VerificationCode) error

	// Return the single unconsumed code of the user and purpose
	// If there is none must return apperrors.ErrCodeInvalid
	GetActive(ctx context.Context, userID uuid.UUID, purpose string) (models.VerificationCode, error)

	// Mark code consumed, must be a no-op returning apperrors.ErrCodeInvalid
	// when the code is consumed already
	Consume(ctx context.Context, codeID uuid.UUID) error

	// Consume every outstanding code of the user and purpose
	ConsumeActive(ctx context.Context, userID uuid.UUID, purpose string) (int64, error)

	// Drop codes expired before the given moment
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Category repository interface
type CategoryRepo interface {
	Create(ctx context.Context, category models.Category) (models.Category, error)

	// List categories of the user, optionally narrowed by type, names ascending
	List(ctx context.Context, userID uuid.UUID, categoryType string) ([]models.Category, error)

	// Get category scoped to the user
	// Rows of other users must surface as apperrors.ErrCategoryNotFound
	Get(ctx context.Context, userID uuid.UUID, categoryID uuid.UUID) (models.Category, error)
	Update(ctx context.Context, category models.Category) (models.Category, error)
	Delete(ctx context.Context, userID uuid.UUID, categoryID uuid.UUID) error
}

// Transaction repository interface
type TransactionRepo interface {
	Create(ctx context.Context, tr models.Transaction) (models.Transaction, error)
	Get(ctx context.Context, userID uuid.UUID, trID uuid.UUID) (models.Transaction, error)
	Update(ctx context.Context, tr models.Transaction) (models.Transaction, error)
	Delete(ctx context.Context, userID uuid.UUID, trID uuid.UUID) error

	// Paginated listing, newest first
	List(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) (models.TransactionPage, error)

	// Everything the user has, for report export
	ListAll(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)

	// Sum of income and expense amounts for the month
	MonthTotals(ctx context.Context, userID uuid.UUID, month int, year int) (income decimal.Decimal, expense decimal.Decimal, err error)

	// Expense sums grouped by category for the month
	CategoryBreakdown(ctx context.Context, userID uuid.UUID, month int, year int) ([]CategoryAmount, error)

	// Income and expense sums per month of the year, 12 entries
	MonthlySeries(ctx context.Context, userID uuid.UUID, year int) ([]MonthAmount, error)
}

type CategoryAmount struct {
	CategoryID   *uuid.UUID
	CategoryName string
	Amount       decimal.Decimal
}

type MonthAmount struct {
	Month   int
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// SavingsGoal repository interface
type SavingsGoalRepo interface {
	// Insert or update goal of the (user, month, year)
	Upsert(ctx context.Context, goal models.SavingsGoal) (models.SavingsGoal, error)

	// If there is no goal for the month must return apperrors.ErrGoalNotFound
	GetByMonth(ctx context.Context, userID uuid.UUID, month int, year int) (models.SavingsGoal, error)

	// All goals of the user, newest month first
	List(ctx context.Context, userID uuid.UUID) ([]models.SavingsGoal, error)
	Delete(ctx context.Context, userID uuid.UUID, goalID uuid.UUID) error
	SetCurrentAmount(ctx context.Context, userID uuid.UUID, month int, year int, amount decimal.Decimal) error
}

// Storage bundles every repository over a single connection or transaction
type Storage interface {
	User() UserRepo
	Refresh() RefreshTokenRepo
	Code() VerificationCodeRepo
	Category() CategoryRepo
	Transaction() TransactionRepo
	Goal() SavingsGoalRepo

	// Run fn in a database transaction. The storage passed to fn
	// operates on that transaction
	InTx(ctx context.Context, fn func(s Storage) error) error
}

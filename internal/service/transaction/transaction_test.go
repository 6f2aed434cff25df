package transaction

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/models"
	"github.com/centavo-app/centavo/internal/repository"
	"github.com/centavo-app/centavo/internal/repository/postgres"
	"github.com/centavo-app/centavo/internal/testutil"
)

func Test_TransactionService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withTx := func(t *testing.T, fn func(s *TransactionService, st repository.Storage, user models.User)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)

			user, err := storage.User().CreateUser(t.Context(), "Tx Owner", "tx-owner@example.com", "hash")
			require.NoError(t, err)

			service, err := NewService(storage)
			require.NoError(t, err)

			fn(service, storage, user)
		})
	}

	date := func(month time.Month, day int) time.Time {
		return time.Date(2025, month, day, 0, 0, 0, 0, time.UTC)
	}

	transaction := func(userID uuid.UUID, trType string, amount string, day time.Time) models.Transaction {
		return models.Transaction{
			UserID: userID,
			Type:   trType,
			Amount: decimal.RequireFromString(amount),
			Date:   day,
		}
	}

	goalCurrent := func(t *testing.T, st repository.Storage, userID uuid.UUID, month int) decimal.Decimal {
		t.Helper()
		goal, err := st.Goal().GetByMonth(t.Context(), userID, month, 2025)
		require.NoError(t, err)
		return goal.CurrentAmount
	}

	t.Run("create updates month goal", func(t *testing.T) {
		withTx(t, func(s *TransactionService, st repository.Storage, user models.User) {
			_, err := st.Goal().Upsert(t.Context(), models.SavingsGoal{
				UserID: user.ID, Month: 6, Year: 2025,
				TargetAmount: decimal.RequireFromString("500"),
			})
			require.NoError(t, err)

			_, err = s.Create(t.Context(), transaction(user.ID, models.TransactionTypeIncome, "300", date(time.June, 5)))
			require.NoError(t, err)
			_, err = s.Create(t.Context(), transaction(user.ID, models.TransactionTypeExpense, "100", date(time.June, 10)))
			require.NoError(t, err)

			assert.True(t, goalCurrent(t, st, user.ID, 6).Equal(decimal.RequireFromString("200")))
		})
	})

	t.Run("create without goal succeeds", func(t *testing.T) {
		withTx(t, func(s *TransactionService, st repository.Storage, user models.User) {
			created, err := s.Create(t.Context(), transaction(user.ID, models.TransactionTypeIncome, "300", date(time.June, 5)))

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, created.ID)
		})
	})

	t.Run("create rejects foreign category", func(t *testing.T) {
		withTx(t, func(s *TransactionService, st repository.Storage, user models.User) {
			other, err := st.User().CreateUser(t.Context(), "Other", "tx-other@example.com", "hash")
			require.NoError(t, err)
			category, err := st.Category().Create(t.Context(), models.Category{
				UserID: other.ID, Name: "Private", Type: models.TransactionTypeExpense,
			})
			require.NoError(t, err)

			tr := transaction(user.ID, models.TransactionTypeExpense, "50", date(time.June, 5))
			tr.CategoryID = &category.ID
			_, err = s.Create(t.Context(), tr)

			assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
		})
	})

	t.Run("update across months syncs both goals", func(t *testing.T) {
		withTx(t, func(s *TransactionService, st repository.Storage, user models.User) {
			for _, month := range []int{6, 7} {
				_, err := st.Goal().Upsert(t.Context(), models.SavingsGoal{
					UserID: user.ID, Month: month, Year: 2025,
					TargetAmount: decimal.RequireFromString("500"),
				})
				require.NoError(t, err)
			}

			created, err := s.Create(t.Context(), transaction(user.ID, models.TransactionTypeIncome, "300", date(time.June, 5)))
			require.NoError(t, err)
			require.True(t, goalCurrent(t, st, user.ID, 6).Equal(decimal.RequireFromString("300")))

			moved := created
			moved.Date = date(time.July, 5)
			_, err = s.Update(t.Context(), moved)
			require.NoError(t, err)

			assert.True(t, goalCurrent(t, st, user.ID, 6).IsZero(), "old month must be recomputed")
			assert.True(t, goalCurrent(t, st, user.ID, 7).Equal(decimal.RequireFromString("300")))
		})
	})

	t.Run("delete recomputes goal", func(t *testing.T) {
		withTx(t, func(s *TransactionService, st repository.Storage, user models.User) {
			_, err := st.Goal().Upsert(t.Context(), models.SavingsGoal{
				UserID: user.ID, Month: 6, Year: 2025,
				TargetAmount: decimal.RequireFromString("500"),
			})
			require.NoError(t, err)

			created, err := s.Create(t.Context(), transaction(user.ID, models.TransactionTypeIncome, "300", date(time.June, 5)))
			require.NoError(t, err)

			require.NoError(t, s.Delete(t.Context(), user.ID, created.ID))

			assert.True(t, goalCurrent(t, st, user.ID, 6).IsZero())
		})
	})

	t.Run("negative savings clamp to zero", func(t *testing.T) {
		withTx(t, func(s *TransactionService, st repository.Storage, user models.User) {
			_, err := st.Goal().Upsert(t.Context(), models.SavingsGoal{
				UserID: user.ID, Month: 6, Year: 2025,
				TargetAmount: decimal.RequireFromString("500"),
			})
			require.NoError(t, err)

			_, err = s.Create(t.Context(), transaction(user.ID, models.TransactionTypeExpense, "100", date(time.June, 5)))
			require.NoError(t, err)

			assert.True(t, goalCurrent(t, st, user.ID, 6).IsZero())
		})
	})

	t.Run("delete unknown transaction", func(t *testing.T) {
		withTx(t, func(s *TransactionService, st repository.Storage, user models.User) {
			err := s.Delete(t.Context(), user.ID, uuid.New())

			assert.ErrorIs(t, err, apperrors.ErrTransactionNotFound)
		})
	})
}

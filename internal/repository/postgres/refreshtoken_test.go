package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/models"
	"github.com/centavo-app/centavo/internal/testutil"
)

func Test_RefreshTokenRepo(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	newToken := func(t *testing.T, tx pgx.Tx, value string) models.RefreshToken {
		t.Helper()
		users := UserRepo{DB: tx}
		user, err := users.CreateUser(t.Context(), "Token Owner", value+"@example.com", "hash")
		require.NoError(t, err)

		return models.RefreshToken{
			ID:        uuid.New(),
			UserID:    user.ID,
			Token:     value,
			CreatedAt: time.Now(),
			ExpiresAt: time.Now().Add(time.Hour),
		}
	}

	t.Run("save and get", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}
			token := newToken(t, tx, "save-and-get")

			err := r.Save(t.Context(), token)
			require.NoError(t, err)

			got, err := r.Get(t.Context(), token.Token)

			require.NoError(t, err)
			assert.Equal(t, token.ID, got.ID)
			assert.Equal(t, token.UserID, got.UserID)
			assert.Nil(t, got.RevokedAt)
		})
	})

	t.Run("get not found", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}

			_, err := r.Get(t.Context(), "does-not-exist")

			assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("revoke", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}
			token := newToken(t, tx, "revoke-me")
			require.NoError(t, r.Save(t.Context(), token))

			revokedAt, err := r.Revoke(t.Context(), token.Token)

			require.NoError(t, err)
			assert.WithinDuration(t, time.Now(), revokedAt, time.Second)

			got, err := r.Get(t.Context(), token.Token)
			require.NoError(t, err)
			require.NotNil(t, got.RevokedAt)
		})
	})

	t.Run("revoke twice keeps first timestamp", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}
			token := newToken(t, tx, "revoke-twice")
			require.NoError(t, r.Save(t.Context(), token))

			first, err := r.Revoke(t.Context(), token.Token)
			require.NoError(t, err)

			second, err := r.Revoke(t.Context(), token.Token)
			require.NoError(t, err)

			assert.True(t, first.Equal(second), "second revoke must not move revoked_at")
		})
	})

	t.Run("revoke not found", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}

			_, err := r.Revoke(t.Context(), "does-not-exist")

			assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})

	t.Run("revoke all for user", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}
			token := newToken(t, tx, "revoke-all-1")
			require.NoError(t, r.Save(t.Context(), token))

			second := token
			second.ID = uuid.New()
			second.Token = "revoke-all-2"
			require.NoError(t, r.Save(t.Context(), second))

			n, err := r.RevokeAllForUser(t.Context(), token.UserID)

			require.NoError(t, err)
			assert.EqualValues(t, 2, n)
		})
	})

	t.Run("tokens removed with user", func(t *testing.T) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			r := RefreshTokenRepo{DB: tx}
			users := UserRepo{DB: tx}
			token := newToken(t, tx, "cascade")
			require.NoError(t, r.Save(t.Context(), token))

			require.NoError(t, users.DeleteUser(t.Context(), token.UserID))

			_, err := r.Get(t.Context(), token.Token)
			assert.ErrorIs(t, err, apperrors.ErrRefreshTokenNotFound)
		})
	})
}

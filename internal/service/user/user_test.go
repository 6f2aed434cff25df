package user

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/models"
	"github.com/centavo-app/centavo/internal/repository"
	"github.com/centavo-app/centavo/internal/repository/postgres"
	"github.com/centavo-app/centavo/internal/service/auth"
	"github.com/centavo-app/centavo/internal/service/verification"
	"github.com/centavo-app/centavo/internal/testutil"
)

func Test_UserService(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	hasher := auth.DefaultHasher

	withTx := func(t *testing.T, fn func(s *UserService, st repository.Storage, user models.User)) {
		testutil.InTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)

			hash, err := hasher.Hash("Password1")
			require.NoError(t, err)
			user, err := storage.User().CreateUser(t.Context(), "Profile User", "profile@example.com", hash)
			require.NoError(t, err)

			codes, err := verification.NewService(verification.Config{}, storage)
			require.NoError(t, err)

			service, err := NewService(hasher, codes, storage)
			require.NoError(t, err)

			fn(service, storage, user)
		})
	}

	t.Run("get profile", func(t *testing.T) {
		withTx(t, func(s *UserService, st repository.Storage, user models.User) {
			got, err := s.GetProfile(t.Context(), user.ID)

			require.NoError(t, err)
			assert.Equal(t, user.Email, got.Email)
		})
	})

	t.Run("update profile", func(t *testing.T) {
		withTx(t, func(s *UserService, st repository.Storage, user models.User) {
			got, err := s.UpdateProfile(t.Context(), user.ID, "Renamed", "renamed@example.com")

			require.NoError(t, err)
			assert.Equal(t, "Renamed", got.Name)
			assert.Equal(t, "renamed@example.com", got.Email)
		})
	})

	t.Run("update profile email taken", func(t *testing.T) {
		withTx(t, func(s *UserService, st repository.Storage, user models.User) {
			_, err := st.User().CreateUser(t.Context(), "Other", "taken@example.com", "hash")
			require.NoError(t, err)

			_, err = s.UpdateProfile(t.Context(), user.ID, "Me", "taken@example.com")

			assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
		})
	})

	t.Run("update theme", func(t *testing.T) {
		withTx(t, func(s *UserService, st repository.Storage, user models.User) {
			got, err := s.UpdateTheme(t.Context(), user.ID, models.ThemeDark)

			require.NoError(t, err)
			assert.Equal(t, models.ThemeDark, got.Theme)
		})
	})

	t.Run("change password", func(t *testing.T) {
		t.Run("ok", func(t *testing.T) {
			withTx(t, func(s *UserService, st repository.Storage, user models.User) {
				err := s.ChangePassword(t.Context(), user.ID, "Password1", "Password2")
				require.NoError(t, err)

				got, err := st.User().GetUserByID(t.Context(), user.ID)
				require.NoError(t, err)
				assert.NoError(t, hasher.Compare(got.HashedPassword, "Password2"))
			})
		})

		t.Run("revokes refresh tokens", func(t *testing.T) {
			withTx(t, func(s *UserService, st repository.Storage, user models.User) {
				token := models.RefreshToken{
					ID:        uuid.New(),
					UserID:    user.ID,
					Token:     "pre-change-session",
					CreatedAt: time.Now(),
					ExpiresAt: time.Now().Add(time.Hour),
				}
				require.NoError(t, st.Refresh().Save(t.Context(), token))

				require.NoError(t, s.ChangePassword(t.Context(), user.ID, "Password1", "Password2"))

				got, err := st.Refresh().Get(t.Context(), token.Token)
				require.NoError(t, err)
				assert.NotNil(t, got.RevokedAt, "sessions opened with the old password must be revoked")
			})
		})

		t.Run("wrong current password", func(t *testing.T) {
			withTx(t, func(s *UserService, st repository.Storage, user models.User) {
				err := s.ChangePassword(t.Context(), user.ID, "WrongPassword1", "Password2")

				assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

				got, err := st.User().GetUserByID(t.Context(), user.ID)
				require.NoError(t, err)
				assert.NoError(t, hasher.Compare(got.HashedPassword, "Password1"), "password must stay unchanged")
			})
		})
	})

	t.Run("account deletion", func(t *testing.T) {
		t.Run("otp flow", func(t *testing.T) {
			withTx(t, func(s *UserService, st repository.Storage, user models.User) {
				otp, err := s.RequestDeletionOtp(t.Context(), user.ID)
				require.NoError(t, err)

				require.NoError(t, s.DeleteAccount(t.Context(), user.ID, otp.Code))

				_, err = st.User().GetUserByID(t.Context(), user.ID)
				assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
			})
		})

		t.Run("wrong otp keeps account", func(t *testing.T) {
			withTx(t, func(s *UserService, st repository.Storage, user models.User) {
				otp, err := s.RequestDeletionOtp(t.Context(), user.ID)
				require.NoError(t, err)

				wrong := "000000"
				if wrong == otp.Code {
					wrong = "000001"
				}

				err = s.DeleteAccount(t.Context(), user.ID, wrong)
				assert.ErrorIs(t, err, apperrors.ErrCodeInvalid)

				_, err = st.User().GetUserByID(t.Context(), user.ID)
				assert.NoError(t, err, "account must survive a wrong otp")
			})
		})

		t.Run("deletion is terminal", func(t *testing.T) {
			withTx(t, func(s *UserService, st repository.Storage, user models.User) {
				otp, err := s.RequestDeletionOtp(t.Context(), user.ID)
				require.NoError(t, err)
				require.NoError(t, s.DeleteAccount(t.Context(), user.ID, otp.Code))

				err = s.DeleteAccount(t.Context(), user.ID, otp.Code)

				assert.Error(t, err, "repeated delete of a gone account must fail")
			})
		})

		t.Run("admin delete without otp", func(t *testing.T) {
			withTx(t, func(s *UserService, st repository.Storage, user models.User) {
				require.NoError(t, s.DeleteUser(t.Context(), user.ID))

				err := s.DeleteUser(t.Context(), user.ID)
				assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
			})
		})
	})
}

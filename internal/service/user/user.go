package user

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/models"
	"github.com/centavo-app/centavo/internal/repository"
	"github.com/centavo-app/centavo/internal/service/auth"
	"github.com/centavo-app/centavo/internal/service/verification"
)

// User service
// Profile and credential mutations plus the OTP guarded account deletion
type UserService struct {
	hasher  auth.PasswordHasher
	codes   *verification.Service
	storage repository.Storage
}

func NewService(hasher auth.PasswordHasher, codes *verification.Service, storage repository.Storage) (*UserService, error) {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	if codes == nil || storage == nil {
		return nil, errors.New("verification service and storage must not be nil")
	}

	return &UserService{
		hasher:  hasher,
		codes:   codes,
		storage: storage,
	}, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.storage.User().GetUserByID(ctx, userID)
}

// UpdateProfile renames the account or moves it to another email.
// Taken emails surface as apperrors.ErrEmailTaken
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, name string, email string) (models.User, error) {
	return s.storage.User().UpdateProfile(ctx, userID, name, email)
}

func (s *UserService) UpdateTheme(ctx context.Context, userID uuid.UUID, theme string) (models.User, error) {
	return s.storage.User().UpdateTheme(ctx, userID, theme)
}

// ChangePassword re-verifies the current password before accepting the
// new one and revokes the account's refresh tokens. The user row stays
// locked for the whole transaction so a concurrent reset can't slip in
// between the check and the write
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword string, newPassword string) error {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.storage.InTx(ctx, func(st repository.Storage) error {
		user, err := st.User().GetUserForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if err := s.hasher.Compare(user.HashedPassword, currentPassword); err != nil {
			return apperrors.ErrInvalidCredentials
		}

		if err := st.User().SetPasswordHash(ctx, userID, hash); err != nil {
			return err
		}

		// Sessions opened with the old password die with it
		_, err = st.Refresh().RevokeAllForUser(ctx, userID)
		return err
	})
}

// RequestDeletionOtp issues the one-time code that authorizes deletion
func (s *UserService) RequestDeletionOtp(ctx context.Context, userID uuid.UUID) (models.VerificationCode, error) {
	user, err := s.storage.User().GetUserByID(ctx, userID)
	if err != nil {
		return models.VerificationCode{}, err
	}

	return s.codes.Issue(ctx, user, models.PurposeAccountDelete)
}

// DeleteAccount consumes the OTP and removes the account with everything
// it owns (fk cascade). Terminal and idempotent: repeating the call for
// a gone account yields apperrors.ErrUserNotFound
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID, otp string) error {
	return s.storage.InTx(ctx, func(st repository.Storage) error {
		if err := s.codes.ConsumeIn(ctx, st, userID, models.PurposeAccountDelete, otp); err != nil {
			return err
		}

		return st.User().DeleteUser(ctx, userID)
	})
}

// DeleteUser removes an account without OTP, used by the admin endpoint
func (s *UserService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return s.storage.User().DeleteUser(ctx, userID)
}

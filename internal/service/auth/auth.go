package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/models"
	"github.com/centavo-app/centavo/internal/repository"
	"github.com/centavo-app/centavo/internal/service/auth/tokenmanager"
	"github.com/centavo-app/centavo/internal/service/verification"
)

type Config struct {
	// Hasher to use during registration or login
	// Bcrypt hasher is used when not set
	Hasher PasswordHasher

	// When set users have to verify their email before they may log in
	RequireVerifiedEmail bool
}

// Auth service
// Owns registration, login, token refresh and the code-driven
// verify-email and password-reset flows
type AuthService struct {
	token   *tokenmanager.TokenManager
	hasher  PasswordHasher
	codes   *verification.Service
	storage repository.Storage

	requireVerifiedEmail bool
}

func NewService(cfg Config, token *tokenmanager.TokenManager, codes *verification.Service, storage repository.Storage) (*AuthService, error) {
	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	if token == nil || codes == nil || storage == nil {
		return nil, errors.New("token manager, verification service and storage must not be nil")
	}

	return &AuthService{
		token:                token,
		hasher:               hasher,
		codes:                codes,
		storage:              storage,
		requireVerifiedEmail: cfg.RequireVerifiedEmail,
	}, nil
}

// Register creates an unverified account and sends the first
// email verification code
func (s *AuthService) Register(ctx context.Context, name string, email string, password string) (models.User, error) {
	var user models.User

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err = s.storage.User().CreateUser(ctx, name, email, hash)
	if err != nil {
		return user, err
	}

	// Best effort: account exists even if code delivery failed,
	// the user can always request a new code
	_, _ = s.codes.Issue(ctx, user, models.PurposeEmailVerify)

	return user, nil
}

// Login validates credentials and issues a fresh token pair
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.storage.User().GetUserByEmail(ctx, email)
	if err != nil {
		// Burn comparable time so unknown emails are not discoverable by latency
		_ = s.hasher.Compare("$2a$10$0123456789012345678901uGZwLZkmfFOnAnnHGJPVW5EZGJnXcpa", password)
		return user, pair, apperrors.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return user, pair, apperrors.ErrInvalidCredentials
	}

	if s.requireVerifiedEmail && !user.EmailVerified {
		return user, pair, apperrors.ErrEmailNotVerified
	}

	pair, err = s.token.GeneratePair(ctx, user)
	if err != nil {
		return user, pair, fmt.Errorf("token could not be generated. Err: %w", err)
	}

	return user, pair, nil
}

// Refresh validates the refresh token and mints a new access token.
// The refresh token itself stays valid until expiry or logout
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.IssuedToken, error) {
	var access models.IssuedToken

	token, err := s.token.ValidateRefresh(ctx, refresh)
	if err != nil {
		return access, err
	}

	user, err := s.storage.User().GetUserByID(ctx, token.UserID)
	if err != nil {
		return access, fmt.Errorf("refresh token owner is gone. Err: %w", err)
	}

	return s.token.GenerateAccess(user)
}

// Logout revokes the refresh token, unknown tokens are not an error
func (s *AuthService) Logout(ctx context.Context, refresh string) error {
	err := s.token.RevokeRefresh(ctx, refresh)
	if err != nil && !errors.Is(err, apperrors.ErrRefreshTokenNotFound) {
		return err
	}
	return nil
}

// RequestEmailVerification issues a fresh email verification code.
// Prior outstanding codes stop working
func (s *AuthService) RequestEmailVerification(ctx context.Context, email string) (models.VerificationCode, error) {
	user, err := s.storage.User().GetUserByEmail(ctx, email)
	if err != nil {
		return models.VerificationCode{}, err
	}

	if user.EmailVerified {
		return models.VerificationCode{}, apperrors.ErrEmailVerified
	}

	return s.codes.Issue(ctx, user, models.PurposeEmailVerify)
}

// VerifyEmail consumes the code and marks the account as verified
func (s *AuthService) VerifyEmail(ctx context.Context, email string, code string) error {
	user, err := s.storage.User().GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	return s.storage.InTx(ctx, func(st repository.Storage) error {
		if err := s.codes.ConsumeIn(ctx, st, user.ID, models.PurposeEmailVerify, code); err != nil {
			return err
		}
		return st.User().SetEmailVerified(ctx, user.ID)
	})
}

// ForgotPassword issues a password reset code
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (models.VerificationCode, error) {
	user, err := s.storage.User().GetUserByEmail(ctx, email)
	if err != nil {
		return models.VerificationCode{}, err
	}

	return s.codes.Issue(ctx, user, models.PurposePasswordReset)
}

// ResetPassword consumes the reset code, replaces the credential and
// revokes the account's outstanding refresh tokens.
// The user row is locked for the whole transaction so a concurrent
// password change can't race against a stale read
func (s *AuthService) ResetPassword(ctx context.Context, email string, code string, newPassword string) error {
	user, err := s.storage.User().GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("can't use this as password, error=%w", err)
	}

	return s.storage.InTx(ctx, func(st repository.Storage) error {
		locked, err := st.User().GetUserForUpdate(ctx, user.ID)
		if err != nil {
			return err
		}

		if err := s.codes.ConsumeIn(ctx, st, locked.ID, models.PurposePasswordReset, code); err != nil {
			return err
		}

		if err := st.User().SetPasswordHash(ctx, locked.ID, hash); err != nil {
			return err
		}

		// A reset means the old credential may be compromised,
		// existing sessions must not survive it
		_, err = st.Refresh().RevokeAllForUser(ctx, locked.ID)
		return err
	})
}

// Authenticate resolves an access token to its user
func (s *AuthService) Authenticate(ctx context.Context, access string) (models.User, error) {
	userID, err := s.token.ParseAccess(ctx, access)
	if err != nil {
		return models.User{}, fmt.Errorf("access token invalid. Err: %w", err)
	}

	return s.storage.User().GetUserByID(ctx, userID)
}

package apperrors

import (
	"errors"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email is not verified")
	ErrEmailVerified      = errors.New("email already verified")

	ErrCodeInvalid = errors.New("verification code is invalid")
	ErrCodeExpired = errors.New("verification code is expired")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")
	ErrRefreshTokenRevoked  = errors.New("refresh token is revoked")

	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrGoalNotFound        = errors.New("savings goal not found")

	ErrExportFormatUnknown = errors.New("unknown export format")
)

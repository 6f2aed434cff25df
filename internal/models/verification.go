package models

import (
	"time"

	"github.com/google/uuid"
)

// Purposes a one-time code may be issued for.
// At most one unconsumed code per (user, purpose) exists at any time.
const (
	PurposeEmailVerify   = "email_verify"
	PurposePasswordReset = "password_reset"
	PurposeAccountDelete = "account_delete"
)

type VerificationCode struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Purpose    string
	Code       string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	ConsumedAt *time.Time // nil until used or superseded
}

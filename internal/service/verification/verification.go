package verification

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/models"
	"github.com/centavo-app/centavo/internal/repository"
)

const defaultCodeTTL = 15 * time.Minute

// Sender delivers an issued code to the user out-of-band
type Sender interface {
	Send(ctx context.Context, user models.User, purpose string, code string) error
}

type Config struct {
	// How long an issued code stays valid
	// If not set then default 15 minutes is used
	CodeTTL time.Duration

	// Code delivery, log based sender is used when not set
	Sender Sender
}

type Service struct {
	storage repository.Storage
	sender  Sender
	codeTTL time.Duration
}

func NewService(cfg Config, storage repository.Storage) (*Service, error) {
	if storage == nil {
		return nil, errors.New("storage must not be nil")
	}

	if cfg.CodeTTL == 0 {
		cfg.CodeTTL = defaultCodeTTL
	}
	if cfg.Sender == nil {
		cfg.Sender = noopSender{}
	}

	return &Service{
		storage: storage,
		sender:  cfg.Sender,
		codeTTL: cfg.CodeTTL,
	}, nil
}

// Issue generates a fresh 6 digit code for the user and purpose.
// Any outstanding code of the same purpose is consumed in the same
// transaction, so exactly one code is valid after the call returns
func (s *Service) Issue(ctx context.Context, user models.User, purpose string) (models.VerificationCode, error) {
	value, err := generateCode()
	if err != nil {
		return models.VerificationCode{}, fmt.Errorf("can't generate code. Err: %w", err)
	}

	now := time.Now().Truncate(time.Second)
	code := models.VerificationCode{
		ID:        uuid.New(),
		UserID:    user.ID,
		Purpose:   purpose,
		Code:      value,
		CreatedAt: now,
		ExpiresAt: now.Add(s.codeTTL),
	}

	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		if _, err := st.Code().ConsumeActive(ctx, user.ID, purpose); err != nil {
			return err
		}
		return st.Code().Save(ctx, code)
	})
	if err != nil {
		return models.VerificationCode{}, fmt.Errorf("can't issue code. Err: %w", err)
	}

	// Delivery failures must not roll back issuance, the code is
	// already valid and test endpoints may return it directly
	if err := s.sender.Send(ctx, user, purpose, code.Code); err != nil {
		return code, fmt.Errorf("code issued but not delivered. Err: %w", err)
	}

	return code, nil
}

// Consume checks the presented code and marks it used.
// Expired codes are rejected with apperrors.ErrCodeExpired so the caller
// can tell them apart from wrong ones, both map to a client error
func (s *Service) Consume(ctx context.Context, userID uuid.UUID, purpose string, presented string) error {
	return s.storage.InTx(ctx, func(st repository.Storage) error {
		return s.ConsumeIn(ctx, st, userID, purpose, presented)
	})
}

// ConsumeIn is Consume running on the caller's storage, usually a
// transaction that also carries the mutation the code authorizes
func (s *Service) ConsumeIn(ctx context.Context, st repository.Storage, userID uuid.UUID, purpose string, presented string) error {
	code, err := st.Code().GetActive(ctx, userID, purpose)
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare([]byte(code.Code), []byte(presented)) != 1 {
		return apperrors.ErrCodeInvalid
	}

	if code.ExpiresAt.Before(time.Now()) {
		return apperrors.ErrCodeExpired
	}

	return st.Code().Consume(ctx, code.ID)
}

// CleanupExpired drops codes that expired before now, returns how many
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	return s.storage.Code().DeleteExpired(ctx, time.Now())
}

// 6 random digits, leading zeroes allowed
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

type noopSender struct{}

func (noopSender) Send(ctx context.Context, user models.User, purpose string, code string) error {
	return nil
}

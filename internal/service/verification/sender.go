package verification

import (
	"context"

	"github.com/centavo-app/centavo/internal/logger"
	"github.com/centavo-app/centavo/internal/models"
)

// LogSender dumps issued codes to the log instead of sending email.
// Used in development and by the test automation endpoints
type LogSender struct {
	Logger logger.Logger
}

func (s LogSender) Send(ctx context.Context, user models.User, purpose string, code string) error {
	s.Logger.Info("verification code issued",
		"email", user.Email,
		"purpose", purpose,
		"code", code,
	)
	return nil
}

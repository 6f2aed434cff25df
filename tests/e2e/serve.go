package e2e

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/centavo-app/centavo/internal/handlers"
	"github.com/centavo-app/centavo/internal/logger"
	"github.com/centavo-app/centavo/internal/repository/postgres"
	"github.com/centavo-app/centavo/internal/service/auth"
	"github.com/centavo-app/centavo/internal/service/auth/tokenmanager"
	"github.com/centavo-app/centavo/internal/service/category"
	"github.com/centavo-app/centavo/internal/service/goal"
	"github.com/centavo-app/centavo/internal/service/report"
	"github.com/centavo-app/centavo/internal/service/transaction"
	"github.com/centavo-app/centavo/internal/service/user"
	"github.com/centavo-app/centavo/internal/service/verification"
	"github.com/centavo-app/centavo/internal/testutil"
)

const (
	testAdminUser     = "admin"
	testAdminPassword = "admin-secret"
)

type Services struct {
	AuthService *auth.AuthService
	UserService *user.UserService
}

// Create db transaction and run server with that connection (one
// connection cause one transaction). Codes are exposed in responses so
// flows can be driven end to end without a mailbox
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, services Services)) {
	testutil.InTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)

		tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: "test-secret"}, storage.Refresh())
		require.NoError(t, err, "token manager should be created without errors")

		codes, err := verification.NewService(verification.Config{}, storage)
		require.NoError(t, err, "verification service starting error")

		as, err := auth.NewService(auth.Config{}, tokenManager, codes, storage)
		require.NoError(t, err, "auth service starting error")

		us, err := user.NewService(auth.DefaultHasher, codes, storage)
		require.NoError(t, err, "user service starting error")
		cs, err := category.NewService(storage)
		require.NoError(t, err, "category service starting error")
		ts, err := transaction.NewService(storage)
		require.NoError(t, err, "transaction service starting error")
		gs, err := goal.NewService(storage)
		require.NoError(t, err, "goal service starting error")
		rs, err := report.NewService(storage)
		require.NoError(t, err, "report service starting error")

		router := handlers.NewRouter(
			as, us, cs, ts, gs, rs,
			handlers.Options{
				ExposeCodes:   true,
				AdminUser:     testAdminUser,
				AdminPassword: testAdminPassword,
			},
			logger.NewNoOpLogger(),
		)

		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, Services{
			AuthService: as,
			UserService: us,
		})
	})
}

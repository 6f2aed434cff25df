package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/centavo-app/centavo/internal/db"
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
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	codes  *verification.Service
	logger logger.Logger
}

const codeCleanupPeriod = time.Hour

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	var l logger.Logger
	var err error
	if c.Environment == "dev" {
		l, err = logger.NewTextLogger(c.LogLevel)
	} else {
		l, err = logger.NewJSONLogger(c.LogLevel)
	}
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	storage := postgres.NewStorage(pool)

	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey}, storage.Refresh())
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}

	codes, err := verification.NewService(
		verification.Config{Sender: verification.LogSender{Logger: l}},
		storage,
	)
	if err != nil {
		return nil, fmt.Errorf("error while creating verification service. Err: %w", err)
	}

	authService, err := auth.NewService(
		auth.Config{RequireVerifiedEmail: c.RequireVerifiedEmail},
		tokenManager,
		codes,
		storage,
	)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	userService, err := user.NewService(auth.DefaultHasher, codes, storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating user service. Err: %w", err)
	}
	categoryService, err := category.NewService(storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating category service. Err: %w", err)
	}
	transactionService, err := transaction.NewService(storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating transaction service. Err: %w", err)
	}
	goalService, err := goal.NewService(storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating goal service. Err: %w", err)
	}
	reportService, err := report.NewService(storage)
	if err != nil {
		return nil, fmt.Errorf("error while creating report service. Err: %w", err)
	}

	mux := handlers.NewRouter(
		authService,
		userService,
		categoryService,
		transactionService,
		goalService,
		reportService,
		handlers.Options{
			ExposeCodes:   c.ExposeCodes,
			AdminUser:     c.AdminUser,
			AdminPassword: c.AdminPassword,
		},
		l,
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		codes:      codes,
		logger:     l,
	}, nil
}

// cleanupExpiredCodes periodically drops verification codes past their ttl
func (s *ServerApp) cleanupExpiredCodes(ctx context.Context) {
	ticker := time.NewTicker(codeCleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.codes.CleanupExpired(ctx)
			if err != nil {
				s.logger.Error("Failed to cleanup expired verification codes", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info("Cleaned up expired verification codes", "count", n)
			}
		}
	}
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go s.cleanupExpiredCodes(srvCtx)

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}

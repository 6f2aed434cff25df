package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/centavo-app/centavo/internal/handlers/middleware"
	"github.com/centavo-app/centavo/internal/logger"
	"github.com/centavo-app/centavo/internal/models"
	"github.com/centavo-app/centavo/internal/repository"
	"github.com/centavo-app/centavo/internal/service/report"
)

// Options tune router behavior that is not service wiring
type Options struct {
	// Return issued verification and reset codes in responses.
	// Meant for local and test runs without a mail provider
	ExposeCodes bool

	// Static credentials for the admin endpoints
	AdminUser     string
	AdminPassword string
}

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	userService userService,
	categoryService categoryService,
	transactionService transactionService,
	goalService goalService,
	reportService reportService,
	opts Options,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}
	withAdmin := middleware.BasicAuthMiddleware(opts.AdminUser, opts.AdminPassword)

	apiauth := http.NewServeMux()
	apiauth.Handle("POST /register", handleRegister(authService, logger))
	apiauth.Handle("POST /login", handleLogin(authService, logger))
	apiauth.Handle("POST /token/refresh", handleTokenRefresh(authService, logger))
	apiauth.Handle("POST /logout", handleLogout(authService, logger))
	apiauth.Handle("POST /request-email-verification", handleRequestEmailVerification(authService, opts.ExposeCodes, logger))
	apiauth.Handle("POST /verify-email", handleVerifyEmail(authService, logger))
	apiauth.Handle("POST /forgot-password", handleForgotPassword(authService, opts.ExposeCodes, logger))
	apiauth.Handle("POST /reset-password", handleResetPassword(authService, logger))
	apiauth.Handle("GET /profile", withAuth(handleProfile()))
	apiauth.Handle("DELETE /users/{id}", withAdmin(handleAdminDeleteUser(userService, logger)))

	account := http.NewServeMux()
	account.Handle("POST /deletion/request-otp", withAuth(handleRequestDeletionOtp(userService, logger)))
	account.Handle("POST /delete", withAuth(handleDeleteAccount(userService, logger)))

	usermux := http.NewServeMux()
	usermux.Handle("GET /profile", withAuth(handleProfile()))
	usermux.Handle("PUT /profile", withAuth(handleUpdateProfile(userService, logger)))
	usermux.Handle("PUT /theme", withAuth(handleUpdateTheme(userService, logger)))
	usermux.Handle("PUT /security", withAuth(handleChangePassword(userService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/auth/", http.StripPrefix("/api/auth", apiauth))
	root.Handle("/account/", http.StripPrefix("/account", account))
	root.Handle("/user/", http.StripPrefix("/user", usermux))

	root.Handle("POST /transactions", withAuth(handleCreateTransaction(transactionService, logger)))
	root.Handle("GET /transactions", withAuth(handleListTransactions(transactionService, logger)))
	root.Handle("GET /transactions/{id}", withAuth(handleGetTransaction(transactionService, logger)))
	root.Handle("PUT /transactions/{id}", withAuth(handleUpdateTransaction(transactionService, logger)))
	root.Handle("DELETE /transactions/{id}", withAuth(handleDeleteTransaction(transactionService, logger)))

	// Both singular and plural paths are served, clients historically use either
	for _, prefix := range []string{"/categories", "/category"} {
		root.Handle("POST "+prefix, withAuth(handleCreateCategory(categoryService, logger)))
		root.Handle("GET "+prefix, withAuth(handleListCategories(categoryService, logger)))
		root.Handle("GET "+prefix+"/{id}", withAuth(handleGetCategory(categoryService, logger)))
		root.Handle("PUT "+prefix+"/{id}", withAuth(handleUpdateCategory(categoryService, logger)))
		root.Handle("DELETE "+prefix+"/{id}", withAuth(handleDeleteCategory(categoryService, logger)))
	}

	root.Handle("POST /api/savings-goals", withAuth(handleUpsertGoal(goalService, logger)))
	root.Handle("GET /api/savings-goals", withAuth(handleListGoals(goalService, logger)))
	root.Handle("GET /api/savings-goals/current", withAuth(handleCurrentGoal(goalService, logger)))
	root.Handle("DELETE /api/savings-goals/{id}", withAuth(handleDeleteGoal(goalService, logger)))

	root.Handle("GET /api/dashboard", withAuth(handleDashboard(reportService, logger)))
	root.Handle("GET /api/reports/chart", withAuth(handleChart(reportService, logger)))
	root.Handle("GET /api/reports/export", withAuth(handleExport(reportService, logger)))
	root.Handle("GET /api/export", withAuth(handleExport(reportService, logger)))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Register user with name, email and password
	// Has to return apperrors.ErrEmailTaken if email is already registered
	Register(ctx context.Context, name string, email string, password string) (models.User, error)

	// Login user with email and password
	// Has to return apperrors.ErrInvalidCredentials on bad email or password
	Login(ctx context.Context, email string, password string) (models.User, models.TokenPair, error)

	// Refresh issues a new access token for a valid refresh token.
	// If token expired: has to return apperrors.ErrRefreshTokenExpired
	// If token not found: has to return apperrors.ErrRefreshTokenNotFound
	Refresh(ctx context.Context, refresh string) (models.IssuedToken, error)

	// Logout revokes the refresh token
	Logout(ctx context.Context, refresh string) error

	RequestEmailVerification(ctx context.Context, email string) (models.VerificationCode, error)
	VerifyEmail(ctx context.Context, email string, code string) error
	ForgotPassword(ctx context.Context, email string) (models.VerificationCode, error)
	ResetPassword(ctx context.Context, email string, code string, newPassword string) error

	// Authenticate resolves an access token into a user
	Authenticate(ctx context.Context, access string) (models.User, error)
}

type userService interface {
	UpdateProfile(ctx context.Context, userID uuid.UUID, name string, email string) (models.User, error)
	UpdateTheme(ctx context.Context, userID uuid.UUID, theme string) (models.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword string, newPassword string) error
	RequestDeletionOtp(ctx context.Context, userID uuid.UUID) (models.VerificationCode, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID, otp string) error
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

type categoryService interface {
	Create(ctx context.Context, userID uuid.UUID, name, categoryType, color, icon string) (models.Category, error)
	List(ctx context.Context, userID uuid.UUID, categoryType string) ([]models.Category, error)
	Get(ctx context.Context, userID uuid.UUID, categoryID uuid.UUID) (models.Category, error)
	Update(ctx context.Context, userID uuid.UUID, categoryID uuid.UUID, name, categoryType, color, icon string) (models.Category, error)
	Delete(ctx context.Context, userID uuid.UUID, categoryID uuid.UUID) error
}

type transactionService interface {
	Create(ctx context.Context, tr models.Transaction) (models.Transaction, error)
	Get(ctx context.Context, userID uuid.UUID, trID uuid.UUID) (models.Transaction, error)
	Update(ctx context.Context, tr models.Transaction) (models.Transaction, error)
	Delete(ctx context.Context, userID uuid.UUID, trID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) (models.TransactionPage, error)
}

type goalService interface {
	Upsert(ctx context.Context, userID uuid.UUID, month int, year int, target decimal.Decimal, description string) (models.SavingsGoal, error)
	GetByMonth(ctx context.Context, userID uuid.UUID, month int, year int) (models.SavingsGoal, error)
	Current(ctx context.Context, userID uuid.UUID) (models.SavingsGoal, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.SavingsGoal, error)
	Delete(ctx context.Context, userID uuid.UUID, goalID uuid.UUID) error
}

type reportService interface {
	Dashboard(ctx context.Context, userID uuid.UUID, month int, year int) (report.Dashboard, error)
	Chart(ctx context.Context, userID uuid.UUID, year int) ([]repository.MonthAmount, error)
	Export(ctx context.Context, userID uuid.UUID, format report.Format) (report.Document, error)
}

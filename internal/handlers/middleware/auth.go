package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/centavo-app/centavo/internal/handlers/render"
	"github.com/centavo-app/centavo/internal/handlers/userctx"
	"github.com/centavo-app/centavo/internal/models"
)

type authService interface {
	Authenticate(ctx context.Context, access string) (models.User, error)
}

// AuthMiddleware resolves the Bearer access token into a user.
// Requests without a valid token stop here with 401
func AuthMiddleware(as authService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			access, ok := bearerToken(r)
			if !ok {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := as.Authenticate(r.Context(), access)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}

// BasicAuthMiddleware guards the admin endpoints with static credentials.
// An empty configured password disables the endpoints entirely, so a
// deployment without ADMIN_PASSWORD never accepts `user:` as a credential
func BasicAuthMiddleware(username string, password string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if password == "" || !ok || user != username || pass != password {
				w.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

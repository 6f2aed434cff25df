package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/centavo-app/centavo/internal/handlers/userctx"
	"github.com/centavo-app/centavo/internal/models"
)

// Allow to use a function as auth service
type authFunc func(ctx context.Context, access string) (models.User, error)

func (f authFunc) Authenticate(ctx context.Context, access string) (models.User, error) {
	return f(ctx, access)
}

func TestAuthMiddleware(t *testing.T) {
	// Simple handler that writes the context user's email to the response
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		require.True(t, ok, "middleware must put the user into context")

		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(user.Email))
		require.NoError(t, err)
	})

	newRequest := func(t *testing.T, url string, header string) *http.Response {
		t.Helper()
		req, err := http.NewRequest(http.MethodGet, url+"/test", nil)
		require.NoError(t, err)
		if header != "" {
			req.Header.Set("Authorization", header)
		}

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("auth ok", func(t *testing.T) {
		middleware := AuthMiddleware(authFunc(func(ctx context.Context, access string) (models.User, error) {
			require.Equal(t, "valid-token", access)
			return models.User{Email: "test@example.com"}, nil
		}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		resp := newRequest(t, srv.URL, "Bearer valid-token")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "test@example.com", string(body))
	})

	t.Run("auth fail", func(t *testing.T) {
		middleware := AuthMiddleware(authFunc(func(ctx context.Context, access string) (models.User, error) {
			return models.User{}, errors.New("nope")
		}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		resp := newRequest(t, srv.URL, "Bearer whatever")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.JSONEq(t,
			`{
				"error": "service_error",
				"message": "Unauthorized"
			}`,
			string(body),
		)
	})

	t.Run("missing or malformed header", func(t *testing.T) {
		middleware := AuthMiddleware(authFunc(func(ctx context.Context, access string) (models.User, error) {
			t.Error("service must not be called without a bearer token")
			return models.User{}, errors.New("unexpected call")
		}))

		srv := httptest.NewServer(middleware(handler))
		defer srv.Close()

		for _, header := range []string{"", "Basic dXNlcjpwYXNz", "Bearer", "Bearer "} {
			resp := newRequest(t, srv.URL, header)
			resp.Body.Close() // nolint:errcheck

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "header %q must be rejected", header)
		}
	})
}

func TestBasicAuthMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	middleware := BasicAuthMiddleware("admin", "secret")

	srv := httptest.NewServer(middleware(handler))
	defer srv.Close()

	t.Run("valid credentials", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		req.SetBasicAuth("admin", "secret")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("wrong credentials", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		req.SetBasicAuth("admin", "wrong")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.NotEmpty(t, resp.Header.Get("WWW-Authenticate"))
	})

	t.Run("no credentials", func(t *testing.T) {
		resp, err := http.Get(srv.URL)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("empty configured password disables access", func(t *testing.T) {
		unconfigured := BasicAuthMiddleware("admin", "")

		srv := httptest.NewServer(unconfigured(handler))
		defer srv.Close()

		// An empty password must never be a matchable credential
		req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		req.SetBasicAuth("admin", "")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close() // nolint:errcheck

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

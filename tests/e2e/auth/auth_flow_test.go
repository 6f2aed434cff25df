package auth

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/centavo-app/centavo/internal/testutil"
	"github.com/centavo-app/centavo/tests/e2e"
)

const (
	RegisterURL       = "/api/auth/register"
	LoginURL          = "/api/auth/login"
	RefreshURL        = "/api/auth/token/refresh"
	LogoutURL         = "/api/auth/logout"
	RequestVerifyURL  = "/api/auth/request-email-verification"
	VerifyEmailURL    = "/api/auth/verify-email"
	ForgotPasswordURL = "/api/auth/forgot-password"
	ResetPasswordURL  = "/api/auth/reset-password"
	ProfileURL        = "/api/auth/profile"
)

func postJSON(t *testing.T, url string, data string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(data))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, string(body)
}

func field(t *testing.T, body string, name string) string {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &payload))
	value, ok := payload[name].(string)
	require.Truef(t, ok, "field %q missing in body: %s", name, body)
	return value
}

func Test_AuthFlows(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	e2e.ServeWithTx(pg.Pool, t, func(tx pgx.Tx, srvURL string, s e2e.Services) {
		t.Run("register ok", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				data := `{"name": "Ada Lovelace", "email": "ada@example.com", "password": "Password1"}`

				resp, body := postJSON(t, srvURL+RegisterURL, data)

				require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)
				require.Equal(t, "ada@example.com", field(t, body, "email"))
				require.Equal(t, "Ada Lovelace", field(t, body, "name"))
				require.NotEmpty(t, field(t, body, "id"))
			})
		})

		t.Run("register existing email fails", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				_, err := s.AuthService.Register(t.Context(), "Ada", "ada@example.com", "Password1")
				require.NoError(t, err)

				resp, body := postJSON(t, srvURL+RegisterURL,
					`{"name": "Ada", "email": "ada@example.com", "password": "Password1"}`)

				require.Equalf(t, http.StatusConflict, resp.StatusCode, "not expected code. Body: %s", body)
				require.JSONEq(t, `
					{
						"error": "service_error",
						"message": "Email already registered"
					}`, body)
			})
		})

		t.Run("register weak password fails validation", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				resp, body := postJSON(t, srvURL+RegisterURL,
					`{"name": "Ada", "email": "ada@example.com", "password": "weak"}`)

				require.Equalf(t, http.StatusUnprocessableEntity, resp.StatusCode, "not expected code. Body: %s", body)
				require.Contains(t, body, "validation_failed")
				require.Contains(t, body, "password")
			})
		})

		t.Run("verify email then login and read profile", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				_, err := s.AuthService.Register(t.Context(), "Ada", "flow@example.com", "Password1")
				require.NoError(t, err)

				resp, body := postJSON(t, srvURL+RequestVerifyURL, `{"email": "flow@example.com"}`)
				require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
				code := field(t, body, "verificationToken")

				resp, body = postJSON(t, srvURL+VerifyEmailURL,
					fmt.Sprintf(`{"email": "flow@example.com", "code": %q}`, code))
				require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

				resp, body = postJSON(t, srvURL+LoginURL,
					`{"email": "flow@example.com", "password": "Password1"}`)
				require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
				access := field(t, body, "accessToken")
				require.NotEmpty(t, field(t, body, "refreshToken"))

				req, err := http.NewRequest(http.MethodGet, srvURL+ProfileURL, nil)
				require.NoError(t, err)
				req.Header.Set("Authorization", "Bearer "+access)
				profileResp, err := http.DefaultClient.Do(req)
				require.NoError(t, err)
				profileBody, err := io.ReadAll(profileResp.Body)
				require.NoError(t, err)
				_ = profileResp.Body.Close()

				require.Equal(t, http.StatusOK, profileResp.StatusCode)
				require.Equal(t, "flow@example.com", field(t, string(profileBody), "email"))
			})
		})

		t.Run("verify email wrong code", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				_, err := s.AuthService.Register(t.Context(), "Ada", "wrongcode@example.com", "Password1")
				require.NoError(t, err)

				resp, body := postJSON(t, srvURL+RequestVerifyURL, `{"email": "wrongcode@example.com"}`)
				require.Equal(t, http.StatusOK, resp.StatusCode)
				code := field(t, body, "verificationToken")

				wrong := "000000"
				if wrong == code {
					wrong = "000001"
				}

				resp, body = postJSON(t, srvURL+VerifyEmailURL,
					fmt.Sprintf(`{"email": "wrongcode@example.com", "code": %q}`, wrong))

				require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			})
		})

		t.Run("request verification unknown email", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				resp, body := postJSON(t, srvURL+RequestVerifyURL, `{"email": "ghost@example.com"}`)

				require.Equalf(t, http.StatusNotFound, resp.StatusCode, "not expected code. Body: %s", body)
			})
		})

		t.Run("login wrong password", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				_, err := s.AuthService.Register(t.Context(), "Ada", "badpw@example.com", "Password1")
				require.NoError(t, err)

				resp, body := postJSON(t, srvURL+LoginURL,
					`{"email": "badpw@example.com", "password": "Password2"}`)

				require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
			})
		})

		t.Run("refresh and logout", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				_, err := s.AuthService.Register(t.Context(), "Ada", "tokens@example.com", "Password1")
				require.NoError(t, err)

				_, body := postJSON(t, srvURL+LoginURL,
					`{"email": "tokens@example.com", "password": "Password1"}`)
				refresh := field(t, body, "refreshToken")

				resp, body := postJSON(t, srvURL+RefreshURL,
					fmt.Sprintf(`{"refreshToken": %q}`, refresh))
				require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
				require.NotEmpty(t, field(t, body, "accessToken"))

				resp, body = postJSON(t, srvURL+LogoutURL,
					fmt.Sprintf(`{"refreshToken": %q}`, refresh))
				require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

				resp, body = postJSON(t, srvURL+RefreshURL,
					fmt.Sprintf(`{"refreshToken": %q}`, refresh))
				require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "revoked token must not refresh. Body: %s", body)
			})
		})

		t.Run("password reset flow", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				_, err := s.AuthService.Register(t.Context(), "Ada", "forgot@example.com", "Password1")
				require.NoError(t, err)

				resp, body := postJSON(t, srvURL+ForgotPasswordURL, `{"email": "forgot@example.com"}`)
				require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
				code := field(t, body, "resetToken")

				resp, body = postJSON(t, srvURL+ResetPasswordURL,
					fmt.Sprintf(`{"email": "forgot@example.com", "code": %q, "newPassword": "Password2"}`, code))
				require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

				resp, _ = postJSON(t, srvURL+LoginURL,
					`{"email": "forgot@example.com", "password": "Password1"}`)
				require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "old password must stop working")

				resp, _ = postJSON(t, srvURL+LoginURL,
					`{"email": "forgot@example.com", "password": "Password2"}`)
				require.Equal(t, http.StatusOK, resp.StatusCode, "new password must work")
			})
		})

		t.Run("forgot password unknown email", func(t *testing.T) {
			testutil.InTx(tx, t, func(_ pgx.Tx) {
				resp, body := postJSON(t, srvURL+ForgotPasswordURL, `{"email": "ghost@example.com"}`)

				require.Equalf(t, http.StatusNotFound, resp.StatusCode, "not expected code. Body: %s", body)
			})
		})
	})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/handlers/render"
	"github.com/centavo-app/centavo/internal/logger"
)

type userResponse struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Theme         string    `json:"theme"`
	EmailVerified bool      `json:"emailVerified"`
}

func handleRegister(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Name     string `json:"name" validate:"required,alphaspace,max=100"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,strongpw"`
	}
	type response struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
		Name  string    `json:"name"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := authService.Register(r.Context(), data.Name, data.Email, data.Password)

		switch {
		case err == nil:
			render.JSONWithStatus(w, response{ID: user.ID, Email: user.Email, Name: user.Name}, http.StatusCreated)
		case errors.Is(err, apperrors.ErrEmailTaken):
			render.ServiceError(w, "Email already registered", http.StatusConflict)
		default:
			l.Error("Failed to register user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		AccessToken  string       `json:"accessToken"`
		RefreshToken string       `json:"refreshToken"`
		User         userResponse `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, pair, err := authService.Login(r.Context(), data.Email, data.Password)

		switch {
		case err == nil:
			render.JSON(w, response{
				AccessToken:  pair.Access.Value,
				RefreshToken: pair.Refresh.Value,
				User: userResponse{
					ID:            user.ID,
					Email:         user.Email,
					Name:          user.Name,
					Theme:         user.Theme,
					EmailVerified: user.EmailVerified,
				},
			})
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid email or password", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrEmailNotVerified):
			render.ServiceError(w, "Email is not verified", http.StatusForbidden)
		default:
			l.Error("Failed to login user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleTokenRefresh(authService authService, l logger.Logger) http.Handler {
	type request struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
	type response struct {
		AccessToken string `json:"accessToken"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		access, err := authService.Refresh(r.Context(), data.RefreshToken)

		switch {
		case err == nil:
			render.JSON(w, response{AccessToken: access.Value})
		case errors.Is(err, apperrors.ErrRefreshTokenExpired):
			render.ServiceError(w, "Refresh token expired", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrRefreshTokenRevoked),
			errors.Is(err, apperrors.ErrRefreshTokenNotFound):
			render.ServiceError(w, "Refresh token not found", http.StatusUnauthorized)
		default:
			l.Error("Failed to refresh token", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleLogout(authService authService, l logger.Logger) http.Handler {
	type request struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		err = authService.Logout(r.Context(), data.RefreshToken)
		if err != nil {
			l.Error("Failed to logout", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{Message: "Logged out"})
	})
}

func handleRequestEmailVerification(authService authService, exposeCodes bool, l logger.Logger) http.Handler {
	type request struct {
		Email string `json:"email" validate:"required,email"`
	}
	type response struct {
		Message           string `json:"message"`
		VerificationToken string `json:"verificationToken,omitempty"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		code, err := authService.RequestEmailVerification(r.Context(), data.Email)

		switch {
		case err == nil:
			resp := response{Message: "Verification code sent"}
			if exposeCodes {
				resp.VerificationToken = code.Code
			}
			render.JSON(w, resp)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrEmailVerified):
			render.ServiceError(w, "Email already verified", http.StatusBadRequest)
		default:
			l.Error("Failed to issue verification code", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleVerifyEmail(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email string `json:"email" validate:"required,email"`
		Code  string `json:"code" validate:"required"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		err = authService.VerifyEmail(r.Context(), data.Email, data.Code)

		switch {
		case err == nil:
			render.JSON(w, response{Message: "Email verified"})
		case errors.Is(err, apperrors.ErrCodeExpired):
			render.ServiceError(w, "Verification code expired", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrCodeInvalid):
			render.ServiceError(w, "Invalid verification code", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			l.Error("Failed to verify email", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleForgotPassword(authService authService, exposeCodes bool, l logger.Logger) http.Handler {
	type request struct {
		Email string `json:"email" validate:"required,email"`
	}
	type response struct {
		Message    string `json:"message"`
		ResetToken string `json:"resetToken,omitempty"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		code, err := authService.ForgotPassword(r.Context(), data.Email)

		switch {
		case err == nil:
			resp := response{Message: "Password reset code sent"}
			if exposeCodes {
				resp.ResetToken = code.Code
			}
			render.JSON(w, resp)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			l.Error("Failed to issue reset code", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleResetPassword(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email       string `json:"email" validate:"required,email"`
		Code        string `json:"code" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required,strongpw"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		err = authService.ResetPassword(r.Context(), data.Email, data.Code, data.NewPassword)

		switch {
		case err == nil:
			render.JSON(w, response{Message: "Password updated"})
		case errors.Is(err, apperrors.ErrCodeExpired):
			render.ServiceError(w, "Reset code expired", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrCodeInvalid):
			render.ServiceError(w, "Invalid reset code", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			l.Error("Failed to reset password", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleAdminDeleteUser(userService userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.ServiceError(w, "Invalid user id", http.StatusBadRequest)
			return
		}

		err = userService.DeleteUser(r.Context(), id)

		switch {
		case err == nil:
			w.WriteHeader(http.StatusNoContent)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			l.Error("Failed to delete user", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

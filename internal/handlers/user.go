package handlers

import (
	"errors"
	"net/http"

	"github.com/centavo-app/centavo/internal/apperrors"
	"github.com/centavo-app/centavo/internal/handlers/render"
	"github.com/centavo-app/centavo/internal/handlers/userctx"
	"github.com/centavo-app/centavo/internal/logger"
)

func handleProfile() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, userResponse{
			ID:            user.ID,
			Email:         user.Email,
			Name:          user.Name,
			Theme:         user.Theme,
			EmailVerified: user.EmailVerified,
		})
	})
}

func handleUpdateProfile(userService userService, l logger.Logger) http.Handler {
	type request struct {
		Name  string `json:"name" validate:"required,alphaspace,max=100"`
		Email string `json:"email" validate:"required,email"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		updated, err := userService.UpdateProfile(r.Context(), user.ID, data.Name, data.Email)

		switch {
		case err == nil:
			render.JSON(w, userResponse{
				ID:            updated.ID,
				Email:         updated.Email,
				Name:          updated.Name,
				Theme:         updated.Theme,
				EmailVerified: updated.EmailVerified,
			})
		case errors.Is(err, apperrors.ErrEmailTaken):
			render.ServiceError(w, "Email already registered", http.StatusConflict)
		default:
			l.Error("Failed to update profile", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleUpdateTheme(userService userService, l logger.Logger) http.Handler {
	type request struct {
		Theme string `json:"theme" validate:"required,oneof=light dark system"`
	}
	type response struct {
		Theme string `json:"theme"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		updated, err := userService.UpdateTheme(r.Context(), user.ID, data.Theme)
		if err != nil {
			l.Error("Failed to update theme", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{Theme: updated.Theme})
	})
}

func handleChangePassword(userService userService, l logger.Logger) http.Handler {
	type request struct {
		CurrentPassword string `json:"currentPassword" validate:"required"`
		NewPassword     string `json:"newPassword" validate:"required,strongpw"`
	}
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		err = userService.ChangePassword(r.Context(), user.ID, data.CurrentPassword, data.NewPassword)

		switch {
		case err == nil:
			render.JSON(w, response{Message: "Password updated"})
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Current password is incorrect", http.StatusUnauthorized)
		default:
			l.Error("Failed to change password", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

func handleRequestDeletionOtp(userService userService, l logger.Logger) http.Handler {
	type response struct {
		OtpSent bool `json:"otp_sent"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		_, err := userService.RequestDeletionOtp(r.Context(), user.ID)
		if err != nil {
			l.Error("Failed to issue deletion otp", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{OtpSent: true})
	})
}

func handleDeleteAccount(userService userService, l logger.Logger) http.Handler {
	type request struct {
		Otp string `json:"otp" validate:"required"`
	}
	type response struct {
		Deleted bool `json:"deleted"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		err = userService.DeleteAccount(r.Context(), user.ID, data.Otp)

		switch {
		case err == nil:
			render.JSON(w, response{Deleted: true})
		case errors.Is(err, apperrors.ErrCodeExpired):
			render.ServiceError(w, "Code expired", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrCodeInvalid):
			render.ServiceError(w, "Invalid code", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrUserNotFound):
			// Already deleted, treat repeated confirms as gone
			render.ServiceError(w, "Invalid code", http.StatusBadRequest)
		default:
			l.Error("Failed to delete account", "error", err)
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
	})
}

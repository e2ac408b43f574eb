package handlers

import (
	"errors"
	"net/http"

	"github.com/avolkov/campus/internal/apperrors"
	"github.com/avolkov/campus/internal/handlers/render"
	"github.com/avolkov/campus/internal/handlers/userctx"
	"github.com/avolkov/campus/internal/logger"
	"github.com/avolkov/campus/internal/models"
)

func handleUserMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		render.JSON(w, user)
	})
}

func handleUpdateProfile(s profileService, l logger.Logger) http.Handler {
	type request struct {
		Name  string `json:"name" validate:"omitempty,min=2,max=100"`
		Email string `json:"email" validate:"omitempty,email"`
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

		updated, err := s.UpdateProfile(r.Context(), user.ID, data.Name, data.Email)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "Email already in use", http.StatusConflict)
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrSessionStoreUnavailable):
				render.ServiceError(w, "Service temporary unavailable", http.StatusServiceUnavailable)
			default:
				l.Error("profile update failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, updated)
	})
}

func handleUpdatePassword(s profileService, l logger.Logger) http.Handler {
	type request struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		Password        string `json:"password" validate:"required,min=8"`
		PasswordConfirm string `json:"password_confirm" validate:"required"`
	}
	type response struct {
		Message string            `json:"message"`
		User    models.PublicUser `json:"user"`
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

		updated, err := s.UpdatePassword(r.Context(), user.ID, data.CurrentPassword, data.Password, data.PasswordConfirm)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrMissingFields):
				render.ServiceError(w, "Current and new passwords are required", http.StatusBadRequest)
			case errors.Is(err, apperrors.ErrMissingConfirmation):
				render.ServiceError(w, "Password confirmation is required", http.StatusBadRequest)
			case errors.Is(err, apperrors.ErrPasswordsDontMatch):
				render.ServiceError(w, "Passwords don't match", http.StatusBadRequest)
			case errors.Is(err, apperrors.ErrIncorrectPassword):
				render.ServiceError(w, "Current password is incorrect", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrInvalidUser):
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrSessionStoreUnavailable):
				render.ServiceError(w, "Service temporary unavailable", http.StatusServiceUnavailable)
			default:
				l.Error("password update failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, response{Message: "Password updated successfully", User: updated})
	})
}

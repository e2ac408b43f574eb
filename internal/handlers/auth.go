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

func handleRegister(s authService, l logger.Logger) http.Handler {
	type request struct {
		Name            string `json:"name" validate:"required,min=2,max=100"`
		Email           string `json:"email" validate:"required,email"`
		Password        string `json:"password" validate:"required,min=8"`
		PasswordConfirm string `json:"password_confirm" validate:"required"`
	}
	type response struct {
		Message         string `json:"message"`
		ActivationToken string `json:"activation_token"`
		EmailDelivered  bool   `json:"email_delivered"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		result, err := s.RequestRegistration(r.Context(), models.PendingRegistration{
			Name:            data.Name,
			Email:           data.Email,
			Password:        data.Password,
			PasswordConfirm: data.PasswordConfirm,
		})
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrPasswordsDontMatch):
				render.ServiceError(w, "Passwords don't match", http.StatusBadRequest)
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "User already exists", http.StatusConflict)
			default:
				l.Error("registration failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		render.JSON(w, response{
			Message:         result.Message,
			ActivationToken: result.Token.Value,
			EmailDelivered:  result.EmailDelivered,
		})
	})
}

func handleActivate(s authService, l logger.Logger) http.Handler {
	type request struct {
		ActivationToken string `json:"activation_token" validate:"required"`
		Code            string `json:"code" validate:"required,len=4,numcode"`
	}
	type response struct {
		Message string            `json:"message"`
		User    models.PublicUser `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		result, err := s.ActivateAccount(r.Context(), data.ActivationToken, data.Code)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrTokenExpired):
				render.ServiceError(w, "Activation token expired", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrTokenInvalid):
				render.ServiceError(w, "Activation token invalid", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrActivationCodeMismatch):
				render.ServiceError(w, "Activation code mismatch", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrUserAlreadyExists):
				render.ServiceError(w, "User already exists", http.StatusConflict)
			case errors.Is(err, apperrors.ErrPasswordsDontMatch):
				render.ServiceError(w, "Passwords don't match", http.StatusBadRequest)
			case errors.Is(err, apperrors.ErrSessionStoreUnavailable):
				render.ServiceError(w, "Service temporary unavailable", http.StatusServiceUnavailable)
			default:
				l.Error("account activation failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		setTokens(w, result.Tokens)
		render.JSONWithStatus(w, response{
			Message: "Account activated successfully",
			User:    result.User,
		}, http.StatusCreated)
	})
}

func handleLogin(s authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type response struct {
		Message string            `json:"message"`
		User    models.PublicUser `json:"user"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		result, err := s.Login(r.Context(), data.Email, data.Password)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrMissingCredentials):
				render.ServiceError(w, "Email and password are required", http.StatusBadRequest)
			case errors.Is(err, apperrors.ErrInvalidCredentials):
				render.ServiceError(w, "Invalid email or password", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrSessionStoreUnavailable):
				render.ServiceError(w, "Service temporary unavailable", http.StatusServiceUnavailable)
			default:
				l.Error("login failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		setTokens(w, result.Tokens)
		render.JSON(w, response{Message: "Logged in successfully", User: result.User})
	})
}

func handleLogout(s authService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if err := s.Logout(r.Context(), user.ID); err != nil {
			switch {
			case errors.Is(err, apperrors.ErrSessionStoreUnavailable):
				render.ServiceError(w, "Service temporary unavailable", http.StatusServiceUnavailable)
			default:
				l.Error("logout failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		expireRefreshCookie(w)
		render.JSON(w, response{Message: "Logged out successfully"})
	})
}

func handleTokenRefresh(s authService, l logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refresh, err := readRefresh(r)
		if err != nil {
			render.ServiceError(w, "Refresh token not found", http.StatusUnauthorized)
			return
		}

		pair, err := s.Refresh(r.Context(), refresh)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrTokenExpired):
				render.ServiceError(w, "Refresh token expired", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrSessionNotFound):
				render.ServiceError(w, "Session not found, please log in again", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrPasswordChangedSinceIssuance):
				render.ServiceError(w, "Password was changed, please log in again", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrSessionStoreUnavailable):
				render.ServiceError(w, "Service temporary unavailable", http.StatusServiceUnavailable)
			case errors.Is(err, apperrors.ErrTokenInvalid):
				render.ServiceError(w, "Refresh token invalid", http.StatusUnauthorized)
			default:
				l.Error("token refresh failed", "error", err.Error())
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
			return
		}

		setTokens(w, pair)
		render.JSON(w, response{Message: "Tokens refreshed successfully"})
	})
}

func expireRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

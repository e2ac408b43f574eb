package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/avolkov/campus/internal/handlers/middleware"
	"github.com/avolkov/campus/internal/logger"
	"github.com/avolkov/campus/internal/models"
	"github.com/avolkov/campus/internal/service/auth"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	profileService profileService,
	logger logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	apiauth := http.NewServeMux()

	apiauth.Handle("POST /register", handleRegister(authService, logger))
	apiauth.Handle("POST /activate", handleActivate(authService, logger))
	apiauth.Handle("POST /login", handleLogin(authService, logger))
	apiauth.Handle("POST /logout", withAuth(handleLogout(authService, logger)))
	apiauth.Handle("POST /refresh", handleTokenRefresh(authService, logger))

	root := http.NewServeMux()
	root.Handle("/api/auth/", http.StripPrefix("/api/auth", apiauth))

	root.Handle("GET /api/me", withAuth(handleUserMe()))
	root.Handle("PATCH /api/me", withAuth(handleUpdateProfile(profileService, logger)))
	root.Handle("PATCH /api/me/password", withAuth(handleUpdatePassword(profileService, logger)))

	handler := chain(root,
		middleware.LoggerMiddleware(logger),
	)

	return handler
}

type authService interface {
	// Start the two-phase signup
	// Has to return apperrors.ErrUserAlreadyExists if the email is taken
	RequestRegistration(ctx context.Context, reg models.PendingRegistration) (auth.RegistrationResult, error)

	// Redeem an activation token and start a session
	// Token failures: apperrors.ErrTokenExpired, ErrTokenInvalid, ErrActivationCodeMismatch
	ActivateAccount(ctx context.Context, activationToken string, code string) (auth.AuthResult, error)

	// Has to return apperrors.ErrInvalidCredentials for unknown email and
	// wrong password alike
	Login(ctx context.Context, email string, password string) (auth.AuthResult, error)

	// Delete the session entry, revoking refresh capability
	Logout(ctx context.Context, userID uuid.UUID) error

	// Rotate the pair; requires a live session entry
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)

	// Resolve an access token into the cached session user
	SessionUser(ctx context.Context, accessToken string) (models.PublicUser, error)
}

type profileService interface {
	// Empty name or email leaves the field unchanged
	UpdateProfile(ctx context.Context, userID uuid.UUID, name string, email string) (models.PublicUser, error)

	// Verifies the old password before changing to the new one
	UpdatePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword, confirmPassword string) (models.PublicUser, error)
}

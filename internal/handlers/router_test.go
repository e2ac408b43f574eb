package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avolkov/campus/internal/apperrors"
	"github.com/avolkov/campus/internal/logger"
	"github.com/avolkov/campus/internal/models"
	"github.com/avolkov/campus/internal/service/auth"
)

// Stub for both service interfaces: every call returns the configured
// fields, so tests only exercise routing, binding and error mapping
type stubService struct {
	registration auth.RegistrationResult
	authResult   auth.AuthResult
	pair         models.TokenPair
	user         models.PublicUser
	err          error

	sessionUser models.PublicUser
	sessionErr  error

	loggedOut []uuid.UUID
}

func (s *stubService) RequestRegistration(_ context.Context, _ models.PendingRegistration) (auth.RegistrationResult, error) {
	return s.registration, s.err
}

func (s *stubService) ActivateAccount(_ context.Context, _ string, _ string) (auth.AuthResult, error) {
	return s.authResult, s.err
}

func (s *stubService) Login(_ context.Context, _ string, _ string) (auth.AuthResult, error) {
	return s.authResult, s.err
}

func (s *stubService) Logout(_ context.Context, userID uuid.UUID) error {
	s.loggedOut = append(s.loggedOut, userID)
	return s.err
}

func (s *stubService) Refresh(_ context.Context, _ string) (models.TokenPair, error) {
	return s.pair, s.err
}

func (s *stubService) SessionUser(_ context.Context, _ string) (models.PublicUser, error) {
	return s.sessionUser, s.sessionErr
}

func (s *stubService) UpdateProfile(_ context.Context, _ uuid.UUID, _ string, _ string) (models.PublicUser, error) {
	return s.user, s.err
}

func (s *stubService) UpdatePassword(_ context.Context, _ uuid.UUID, _, _, _ string) (models.PublicUser, error) {
	return s.user, s.err
}

func testPair() models.TokenPair {
	return models.TokenPair{
		Access:  models.IssuedToken{Value: "access-token", ExpiresAt: time.Now().Add(5 * time.Minute)},
		Refresh: models.IssuedToken{Value: "refresh-token", ExpiresAt: time.Now().Add(72 * time.Hour)},
	}
}

func testUser() models.PublicUser {
	return models.PublicUser{
		ID:        uuid.New(),
		Name:      "Ada",
		Email:     "ada@example.com",
		CreatedAt: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
	}
}

func serve(t *testing.T, s *stubService) string {
	t.Helper()

	srv := httptest.NewServer(NewRouter(s, s, logger.NewNoOp()))
	t.Cleanup(srv.Close)
	return srv.URL
}

func doRequest(t *testing.T, method string, url string, body string, configure ...func(*http.Request)) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	for _, fn := range configure {
		fn(req)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	return resp, string(respBody)
}

func asUser(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func withRefreshCookie(value string) func(*http.Request) {
	return func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: value})
	}
}

func Test_AuthHandlers(t *testing.T) {
	t.Parallel()

	validRegister := `{
		"name": "Ada",
		"email": "ada@example.com",
		"password": "StrongEnoughPassword",
		"password_confirm": "StrongEnoughPassword"
	}`

	t.Run("register", func(t *testing.T) {
		t.Run("ok", func(t *testing.T) {
			s := &stubService{registration: auth.RegistrationResult{
				Token:          models.IssuedToken{Value: "activation-token"},
				Message:        "Please check your email: ada@example.com to activate your account!",
				EmailDelivered: true,
			}}
			url := serve(t, s)

			resp, body := doRequest(t, http.MethodPost, url+"/api/auth/register", validRegister)

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"message": "Please check your email: ada@example.com to activate your account!",
					"activation_token": "activation-token",
					"email_delivered": true
				}`, body)
		})

		t.Run("invalid email rejected before the service", func(t *testing.T) {
			url := serve(t, &stubService{})

			resp, body := doRequest(t, http.MethodPost, url+"/api/auth/register", `{
				"name": "Ada",
				"email": "not-an-email",
				"password": "StrongEnoughPassword",
				"password_confirm": "StrongEnoughPassword"
			}`)

			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			assert.Contains(t, body, "validation_failed")
			assert.Contains(t, body, "email")
		})

		t.Run("existing email", func(t *testing.T) {
			url := serve(t, &stubService{err: apperrors.ErrUserAlreadyExists})

			resp, body := doRequest(t, http.MethodPost, url+"/api/auth/register", validRegister)

			require.Equalf(t, http.StatusConflict, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "User already exists"
				}`, body)
		})
	})

	t.Run("activate", func(t *testing.T) {
		t.Run("ok sets both tokens", func(t *testing.T) {
			s := &stubService{authResult: auth.AuthResult{User: testUser(), Tokens: testPair()}}
			url := serve(t, s)

			resp, body := doRequest(t, http.MethodPost, url+"/api/auth/activate", `{
				"activation_token": "activation-token",
				"code": "1234"
			}`)

			require.Equalf(t, http.StatusCreated, resp.StatusCode, "not expected code. Body: %s", body)
			require.Equal(t, "Bearer access-token", resp.Header.Get("Authorization"))

			require.Equal(t, 1, len(resp.Cookies()))
			cookie := resp.Cookies()[0]
			assert.Equal(t, "refresh_token", cookie.Name)
			assert.Equal(t, "refresh-token", cookie.Value)
			assert.True(t, cookie.HttpOnly, "refresh cookie must be http only")
			assert.Equal(t, "/api/auth", cookie.Path)
		})

		t.Run("non numeric code rejected before the service", func(t *testing.T) {
			url := serve(t, &stubService{})

			resp, body := doRequest(t, http.MethodPost, url+"/api/auth/activate", `{
				"activation_token": "activation-token",
				"code": "12ab"
			}`)

			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			assert.Contains(t, body, "validation_failed")
		})

		t.Run("code mismatch", func(t *testing.T) {
			url := serve(t, &stubService{err: apperrors.ErrActivationCodeMismatch})

			resp, body := doRequest(t, http.MethodPost, url+"/api/auth/activate", `{
				"activation_token": "activation-token",
				"code": "1234"
			}`)

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Activation code mismatch"
				}`, body)
		})

		t.Run("expired token", func(t *testing.T) {
			url := serve(t, &stubService{err: apperrors.ErrTokenExpired})

			resp, body := doRequest(t, http.MethodPost, url+"/api/auth/activate", `{
				"activation_token": "activation-token",
				"code": "1234"
			}`)

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})

	t.Run("login", func(t *testing.T) {
		t.Run("ok", func(t *testing.T) {
			user := testUser()
			s := &stubService{authResult: auth.AuthResult{User: user, Tokens: testPair()}}
			url := serve(t, s)

			resp, body := doRequest(t, http.MethodPost, url+"/api/auth/login", `{
				"email": "ada@example.com",
				"password": "StrongEnoughPassword"
			}`)

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.Contains(t, resp.Header.Get("Authorization"), "Bearer")
			require.Equal(t, 1, len(resp.Cookies()))

			var got struct {
				Message string            `json:"message"`
				User    models.PublicUser `json:"user"`
			}
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			assert.Equal(t, user.ID, got.User.ID)
			assert.Equal(t, user.Email, got.User.Email)
		})

		t.Run("invalid credentials", func(t *testing.T) {
			url := serve(t, &stubService{err: apperrors.ErrInvalidCredentials})

			resp, body := doRequest(t, http.MethodPost, url+"/api/auth/login", `{
				"email": "ada@example.com",
				"password": "WrongPassword"
			}`)

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Invalid email or password"
				}`, body)

			require.Equal(t, 0, len(resp.Cookies()), "no cookies should be set on login error")
			require.NotContains(t, resp.Header, "Authorization", "Authorization header should not be set")
		})

		t.Run("session store down", func(t *testing.T) {
			url := serve(t, &stubService{err: apperrors.ErrSessionStoreUnavailable})

			resp, body := doRequest(t, http.MethodPost, url+"/api/auth/login", `{
				"email": "ada@example.com",
				"password": "StrongEnoughPassword"
			}`)

			require.Equalf(t, http.StatusServiceUnavailable, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})

	t.Run("logout", func(t *testing.T) {
		t.Run("ok clears cookie", func(t *testing.T) {
			user := testUser()
			s := &stubService{sessionUser: user}
			url := serve(t, s)

			resp, body := doRequest(t, http.MethodPost, url+"/api/auth/logout", "", asUser("access-token"))

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.Equal(t, []uuid.UUID{user.ID}, s.loggedOut, "logout should be called for the session user")

			require.Equal(t, 1, len(resp.Cookies()))
			cookie := resp.Cookies()[0]
			assert.Equal(t, "refresh_token", cookie.Name)
			assert.Empty(t, cookie.Value, "refresh cookie must be cleared")
			assert.Negative(t, cookie.MaxAge, "refresh cookie must be expired")
		})

		t.Run("without token", func(t *testing.T) {
			url := serve(t, &stubService{sessionErr: apperrors.ErrSessionNotFound})

			resp, body := doRequest(t, http.MethodPost, url+"/api/auth/logout", "")

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})

	t.Run("refresh", func(t *testing.T) {
		t.Run("ok", func(t *testing.T) {
			s := &stubService{pair: testPair()}
			url := serve(t, s)

			resp, body := doRequest(t, http.MethodPost, url+"/api/auth/refresh", "", withRefreshCookie("old-refresh"))

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			require.Contains(t, resp.Header.Get("Authorization"), "Bearer")
			require.Equal(t, 1, len(resp.Cookies()))
			assert.Equal(t, "refresh-token", resp.Cookies()[0].Value, "rotated refresh token should be set")
		})

		t.Run("no cookie", func(t *testing.T) {
			url := serve(t, &stubService{})

			resp, body := doRequest(t, http.MethodPost, url+"/api/auth/refresh", "")

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Refresh token not found"
				}`, body)
		})

		t.Run("dead session", func(t *testing.T) {
			url := serve(t, &stubService{err: apperrors.ErrSessionNotFound})

			resp, body := doRequest(t, http.MethodPost, url+"/api/auth/refresh", "", withRefreshCookie("old-refresh"))

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
		})

		t.Run("password changed since issuance", func(t *testing.T) {
			url := serve(t, &stubService{err: apperrors.ErrPasswordChangedSinceIssuance})

			resp, body := doRequest(t, http.MethodPost, url+"/api/auth/refresh", "", withRefreshCookie("old-refresh"))

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
		})
	})
}

func Test_ProfileHandlers(t *testing.T) {
	t.Parallel()

	t.Run("me", func(t *testing.T) {
		t.Run("ok", func(t *testing.T) {
			user := testUser()
			url := serve(t, &stubService{sessionUser: user})

			resp, body := doRequest(t, http.MethodGet, url+"/api/me", "", asUser("access-token"))

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var got models.PublicUser
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			assert.Equal(t, user.ID, got.ID)
			assert.Equal(t, user.Email, got.Email)
		})

		t.Run("unauthorized", func(t *testing.T) {
			url := serve(t, &stubService{sessionErr: apperrors.ErrTokenInvalid})

			resp, _ := doRequest(t, http.MethodGet, url+"/api/me", "", asUser("garbage"))
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	})

	t.Run("update profile", func(t *testing.T) {
		t.Run("ok", func(t *testing.T) {
			user := testUser()
			updated := user
			updated.Name = "Ada Lovelace"
			url := serve(t, &stubService{sessionUser: user, user: updated})

			resp, body := doRequest(t, http.MethodPatch, url+"/api/me", `{"name": "Ada Lovelace"}`, asUser("access-token"))

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)

			var got models.PublicUser
			require.NoError(t, json.Unmarshal([]byte(body), &got))
			assert.Equal(t, "Ada Lovelace", got.Name)
		})

		t.Run("email taken", func(t *testing.T) {
			url := serve(t, &stubService{sessionUser: testUser(), err: apperrors.ErrUserAlreadyExists})

			resp, body := doRequest(t, http.MethodPatch, url+"/api/me", `{"email": "taken@example.com"}`, asUser("access-token"))

			require.Equalf(t, http.StatusConflict, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Email already in use"
				}`, body)
		})
	})

	t.Run("update password", func(t *testing.T) {
		validBody := `{
			"current_password": "OldPassword123",
			"password": "NewPassword123",
			"password_confirm": "NewPassword123"
		}`

		t.Run("ok", func(t *testing.T) {
			user := testUser()
			url := serve(t, &stubService{sessionUser: user, user: user})

			resp, body := doRequest(t, http.MethodPatch, url+"/api/me/password", validBody, asUser("access-token"))

			require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
			assert.Contains(t, body, "Password updated successfully")
		})

		t.Run("wrong current password", func(t *testing.T) {
			url := serve(t, &stubService{sessionUser: testUser(), err: apperrors.ErrIncorrectPassword})

			resp, body := doRequest(t, http.MethodPatch, url+"/api/me/password", validBody, asUser("access-token"))

			require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
			require.JSONEq(t, `
				{
					"error": "service_error",
					"message": "Current password is incorrect"
				}`, body)
		})

		t.Run("short new password rejected before the service", func(t *testing.T) {
			url := serve(t, &stubService{sessionUser: testUser()})

			resp, body := doRequest(t, http.MethodPatch, url+"/api/me/password", `{
				"current_password": "OldPassword123",
				"password": "short",
				"password_confirm": "short"
			}`, asUser("access-token"))

			require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "not expected code. Body: %s", body)
			assert.Contains(t, body, "validation_failed")
		})
	})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/avolkov/campus/internal/models"
)

const (
	accessHeaderName  = "Authorization"
	accessAuthScheme  = "Bearer"
	refreshCookieName = "refresh_token"

	// Refresh token is only ever needed by the refresh endpoint
	refreshCookiePath = "/api/auth"
)

var errNoToken = errors.New("no token in request")

// setTokens writes the pair to the response: access in the Authorization
// header, refresh in an HttpOnly cookie scoped to the auth endpoints
func setTokens(w http.ResponseWriter, pair models.TokenPair) {
	w.Header().Set(accessHeaderName, accessAuthScheme+" "+pair.Access.Value)

	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.Refresh.Value,
		Path:     refreshCookiePath,
		Expires:  pair.Refresh.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func readRefresh(r *http.Request) (string, error) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return "", errNoToken
	}
	return cookie.Value, nil
}

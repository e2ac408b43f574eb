package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/avolkov/campus/internal/handlers/render"
	"github.com/avolkov/campus/internal/handlers/userctx"
	"github.com/avolkov/campus/internal/models"
)

type sessionResolver interface {
	// Resolve an access token into the cached session user
	SessionUser(ctx context.Context, accessToken string) (models.PublicUser, error)
}

func AuthMiddleware(sessions sessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !found || token == "" {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := sessions.SessionUser(r.Context(), token)
			if err != nil {
				render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

package userctx

import (
	"context"

	"github.com/avolkov/campus/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// Create a new context with the session user
func New(ctx context.Context, u models.PublicUser) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// Extract the session user from the context
func FromContext(ctx context.Context) (models.PublicUser, bool) {
	u, ok := ctx.Value(userKey).(models.PublicUser)
	return u, ok
}

package sessioncache

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/campus/internal/models"
)

// Cache keeps one entry per logged-in user: user id -> sanitized user
// snapshot with a TTL. A live entry is the single source of truth for
// "this user's refresh tokens may still be exchanged" — deleting it
// revokes that capability no matter how long the tokens themselves live.
type Cache interface {
	// Get returns the snapshot for the user
	// Must return apperrors.ErrSessionNotFound when the entry is absent or expired
	Get(ctx context.Context, userID uuid.UUID) (models.PublicUser, error)

	// Set writes the snapshot and (re)starts its TTL
	Set(ctx context.Context, user models.PublicUser, ttl time.Duration) error

	// Delete removes the entry; deleting an absent entry is not an error
	Delete(ctx context.Context, userID uuid.UUID) error
}

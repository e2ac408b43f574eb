package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/avolkov/campus/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user with already hashed password
	// If user with email exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, name string, email string, hashedPassword string) (models.User, error)

	// Get user by id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Update name or email only; empty string leaves the field unchanged
	// On email collision must return apperrors.ErrUserAlreadyExists
	UpdateInfo(ctx context.Context, userID uuid.UUID, name string, email string) (models.User, error)

	// Replace the password hash and stamp password_changed_at
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) (models.User, error)
}

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/avolkov/campus/internal/apperrors"
	"github.com/avolkov/campus/internal/models"
)

// UpdateProfile changes name and/or email. Both empty is a valid no-op.
// After a change the session snapshot is rewritten so in-flight refresh
// calls observe the new state.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, name string, email string) (models.PublicUser, error) {
	if name == "" && email == "" {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return models.PublicUser{}, err
		}
		return user.Public(), nil
	}

	if email != "" {
		owner, err := s.users.GetByEmail(ctx, email)
		switch {
		case err == nil && owner.ID != userID:
			return models.PublicUser{}, apperrors.ErrUserAlreadyExists
		case err != nil && !errors.Is(err, apperrors.ErrUserNotFound):
			return models.PublicUser{}, fmt.Errorf("error while checking email. Err: %w", err)
		}
	}

	user, err := s.users.UpdateInfo(ctx, userID, name, email)
	if err != nil {
		return models.PublicUser{}, err
	}

	if err := s.sessions.Set(ctx, user.Public(), s.sessionTTL); err != nil {
		return models.PublicUser{}, err
	}

	return user.Public(), nil
}

// UpdatePassword verifies the old password, re-hashes the new one and
// rewrites the session snapshot. The fresh password-change instant in the
// snapshot kills every refresh token minted before this call.
func (s *Service) UpdatePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword, confirmPassword string) (models.PublicUser, error) {
	if oldPassword == "" || newPassword == "" {
		return models.PublicUser{}, apperrors.ErrMissingFields
	}
	if confirmPassword == "" {
		return models.PublicUser{}, apperrors.ErrMissingConfirmation
	}
	if newPassword != confirmPassword {
		return models.PublicUser{}, apperrors.ErrPasswordsDontMatch
	}

	user, err := s.users.GetByID(ctx, userID)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.PublicUser{}, apperrors.ErrInvalidUser
	case err != nil:
		return models.PublicUser{}, fmt.Errorf("error while looking up user. Err: %w", err)
	}

	if user.HashedPassword == "" {
		return models.PublicUser{}, apperrors.ErrInvalidUser
	}

	if err := s.users.VerifyPassword(user.HashedPassword, oldPassword); err != nil {
		return models.PublicUser{}, apperrors.ErrIncorrectPassword
	}

	updated, err := s.users.ChangePassword(ctx, userID, newPassword)
	if err != nil {
		return models.PublicUser{}, err
	}

	if err := s.sessions.Set(ctx, updated.Public(), s.sessionTTL); err != nil {
		return models.PublicUser{}, err
	}

	return updated.Public(), nil
}

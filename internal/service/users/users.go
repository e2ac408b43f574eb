package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/avolkov/campus/internal/apperrors"
	"github.com/avolkov/campus/internal/models"
	"github.com/avolkov/campus/internal/repository"
)

// Service owns everything that touches the persisted user record:
// password hashing lives here, never in the protocol layer above.
type Service struct {
	hasher   PasswordHasher
	userRepo repository.UserRepo
}

func NewService(hasher PasswordHasher, userRepo repository.UserRepo) *Service {
	if hasher == nil {
		hasher = DefaultHasher
	}

	return &Service{
		hasher:   hasher,
		userRepo: userRepo,
	}
}

// Create persists a pending registration as a real account.
// Confirms password == confirmation and hashes before the insert.
func (s *Service) Create(ctx context.Context, reg models.PendingRegistration) (models.User, error) {
	var user models.User

	if reg.Password != reg.PasswordConfirm {
		return user, apperrors.ErrPasswordsDontMatch
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	user, err = s.userRepo.CreateUser(ctx, reg.Name, reg.Email, hash)
	if err != nil {
		return user, err
	}

	return user, nil
}

func (s *Service) GetByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return s.userRepo.GetUserByEmail(ctx, email)
}

// UpdateInfo changes name and/or email only. It intentionally skips the
// registration validation pipeline: no secret fields are involved.
func (s *Service) UpdateInfo(ctx context.Context, userID uuid.UUID, name string, email string) (models.User, error) {
	return s.userRepo.UpdateInfo(ctx, userID, name, email)
}

// ChangePassword re-hashes and saves; the repository stamps
// password_changed_at so previously issued refresh tokens die on next use
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) (models.User, error) {
	var user models.User

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	return s.userRepo.UpdatePassword(ctx, userID, hash)
}

// VerifyPassword reports whether candidate matches the stored hash
func (s *Service) VerifyPassword(hashedPassword string, candidate string) error {
	return s.hasher.Compare(hashedPassword, candidate)
}

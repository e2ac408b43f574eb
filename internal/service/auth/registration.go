package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"

	"github.com/avolkov/campus/internal/apperrors"
	"github.com/avolkov/campus/internal/models"
)

// RegistrationResult is returned by RequestRegistration. EmailDelivered is
// the delivery outcome as a separate signal: a failed send never fails the
// registration itself.
type RegistrationResult struct {
	Token          models.IssuedToken
	Message        string
	EmailDelivered bool
}

// RequestRegistration starts the two-phase signup: nothing is persisted,
// the whole pending account lives inside the returned signed token and the
// matching 4-digit code goes out by email.
func (s *Service) RequestRegistration(ctx context.Context, reg models.PendingRegistration) (RegistrationResult, error) {
	var result RegistrationResult

	if reg.Email == "" || reg.Password == "" {
		return result, apperrors.ErrMissingCredentials
	}
	if reg.Password != reg.PasswordConfirm {
		return result, apperrors.ErrPasswordsDontMatch
	}

	_, err := s.users.GetByEmail(ctx, reg.Email)
	switch {
	case err == nil:
		return result, apperrors.ErrUserAlreadyExists
	case !errors.Is(err, apperrors.ErrUserNotFound):
		return result, fmt.Errorf("error while checking email. Err: %w", err)
	}

	code, err := activationCode()
	if err != nil {
		return result, fmt.Errorf("error while generating activation code. Err: %w", err)
	}

	token, err := s.codec.IssueActivation(reg, code)
	if err != nil {
		return result, err
	}

	result = RegistrationResult{
		Token:   token,
		Message: fmt.Sprintf("Please check your email: %s to activate your account!", reg.Email),
	}

	// Delivery gets its own budget so a slow SMTP host can't stall the
	// registration response past the caller's patience
	mailCtx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()

	if err := s.mail.SendActivationCode(mailCtx, reg.Email, reg.Name, code); err != nil {
		s.logger.Warn("activation mail delivery failed", "email", reg.Email, "error", err.Error())
		return result, nil
	}

	result.EmailDelivered = true
	return result, nil
}

// ActivateAccount redeems an activation token. On success the account is
// persisted and a session starts immediately, exactly as after login.
// Replaying a redeemed token fails with ErrUserAlreadyExists.
func (s *Service) ActivateAccount(ctx context.Context, activationToken string, suppliedCode string) (AuthResult, error) {
	reg, code, err := s.codec.VerifyActivation(activationToken)
	if err != nil {
		return AuthResult{}, err
	}

	if subtle.ConstantTimeCompare([]byte(code), []byte(suppliedCode)) != 1 {
		return AuthResult{}, apperrors.ErrActivationCodeMismatch
	}

	user, err := s.users.Create(ctx, reg)
	if err != nil {
		return AuthResult{}, err
	}

	return s.startSession(ctx, user)
}

// activationCode returns a random 4-digit numeric string in [1000, 9999]
func activationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%d", n.Int64()+1000), nil
}
